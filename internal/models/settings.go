package models

// MaintenanceFlag is the site-wide maintenance toggle stored in the
// settings table and read fresh on every public request.
type MaintenanceFlag struct {
	// Enabled turns maintenance mode on for the whole public site.
	Enabled bool `json:"enabled"`
	// Title is the headline shown on the maintenance page.
	Title string `json:"title"`
	// Message is the body text shown on the maintenance page.
	Message string `json:"message"`
}
