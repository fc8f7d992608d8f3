package handlers

import (
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/pixfil/yogapluriel-sub002/internal/constants"
	"github.com/pixfil/yogapluriel-sub002/internal/gate"
)

// maintenanceTemplate renders the static maintenance page. The page is
// intentionally self-contained: no assets, no redirects, nothing the gate
// could interfere with.
var maintenanceTemplate = template.Must(template.New("maintenance").Parse(`<!doctype html>
<html lang="fr">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`))

// maintenancePage is the template payload with defaults applied.
type maintenancePage struct {
	Title   string
	Message string
}

// PageHandler serves the pages that sit behind the gate: the public site
// fallthrough, the maintenance page, and the admin login page. Actual page
// rendering belongs to the site frontend; these handlers exist so the
// gateway is a complete, runnable service on its own.
type PageHandler struct {
	settings gate.SettingsStore
	logger   *logrus.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(settings gate.SettingsStore, logger *logrus.Logger) *PageHandler {
	return &PageHandler{
		settings: settings,
		logger:   logger,
	}
}

// Maintenance renders the maintenance page with the title and message from
// the settings store, falling back to generic copy when the store is
// unreachable. The page must render under exactly the failure conditions
// that enabled it, so errors here are logged and absorbed.
func (h *PageHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	page := maintenancePage{
		Title:   "Site en maintenance",
		Message: "Nous revenons très vite. Merci de votre patience.",
	}

	if flag, err := h.settings.MaintenanceFlag(r.Context()); err == nil && flag != nil {
		if flag.Title != "" {
			page.Title = flag.Title
		}
		if flag.Message != "" {
			page.Message = flag.Message
		}
	} else if err != nil {
		h.logger.WithError(err).Debug("Maintenance page using fallback copy")
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeHTMLUTF8)
	if err := maintenanceTemplate.Execute(w, page); err != nil {
		h.logger.WithError(err).Error("Failed to render maintenance page")
	}
}

// AdminLogin serves the admin login page. The gate always lets this path
// through, so the form stays reachable even when the visitor is locked out.
func (h *PageHandler) AdminLogin(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeHTMLUTF8)
	_, _ = w.Write([]byte(`<!doctype html>
<html lang="fr">
<head><meta charset="utf-8"><title>Connexion</title></head>
<body>
<h1>Espace administration</h1>
<form method="post" action="/admin/login">
<label>Email <input type="email" name="email" required></label>
<label>Mot de passe <input type="password" name="password" required></label>
<button type="submit">Se connecter</button>
</form>
</body>
</html>
`))
}

// Site is the catch-all for public pages that passed the gate. The real
// frontend renders these; the gateway answers with a minimal page so the
// pipeline is observable end to end.
func (h *PageHandler) Site(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeHTMLUTF8)
	_, _ = w.Write([]byte("<!doctype html>\n<html><body><h1>" +
		template.HTMLEscapeString(r.URL.Path) + "</h1></body></html>\n"))
}
