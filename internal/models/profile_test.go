package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixfil/yogapluriel-sub002/internal/models"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  models.Role
	}{
		{name: "super_admin", input: "super_admin", want: models.RoleSuperAdmin},
		{name: "admin", input: "admin", want: models.RoleAdmin},
		{name: "author", input: "author", want: models.RoleAuthor},
		{name: "visitor", input: "visitor", want: models.RoleVisitor},
		{name: "unknown_demoted", input: "root", want: models.RoleVisitor},
		{name: "empty_demoted", input: "", want: models.RoleVisitor},
		{name: "case_sensitive", input: "Admin", want: models.RoleVisitor},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, models.ParseRole(tt.input))
		})
	}
}

func TestProfileCanAccessAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile *models.Profile
		want    bool
	}{
		{name: "nil_profile", profile: nil, want: false},
		{
			name:    "active_admin",
			profile: &models.Profile{Roles: []models.Role{models.RoleAdmin}, Status: models.StatusActive},
			want:    true,
		},
		{
			name:    "active_super_admin",
			profile: &models.Profile{Roles: []models.Role{models.RoleSuperAdmin}, Status: models.StatusActive},
			want:    true,
		},
		{
			name:    "active_author",
			profile: &models.Profile{Roles: []models.Role{models.RoleAuthor}, Status: models.StatusActive},
			want:    true,
		},
		{
			name:    "active_visitor",
			profile: &models.Profile{Roles: []models.Role{models.RoleVisitor}, Status: models.StatusActive},
			want:    false,
		},
		{
			name:    "active_no_roles",
			profile: &models.Profile{Status: models.StatusActive},
			want:    false,
		},
		{
			name:    "inactive_admin",
			profile: &models.Profile{Roles: []models.Role{models.RoleAdmin}, Status: models.StatusInactive},
			want:    false,
		},
		{
			name:    "suspended_super_admin",
			profile: &models.Profile{Roles: []models.Role{models.RoleSuperAdmin}, Status: models.StatusSuspended},
			want:    false,
		},
		{
			name:    "mixed_roles_one_staff",
			profile: &models.Profile{Roles: []models.Role{models.RoleVisitor, models.RoleAuthor}, Status: models.StatusActive},
			want:    true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.profile.CanAccessAdmin())
		})
	}
}

func TestProfileHasAnyRole(t *testing.T) {
	t.Parallel()

	profile := &models.Profile{Roles: []models.Role{models.RoleAuthor, models.RoleVisitor}}

	assert.True(t, profile.HasAnyRole(models.RoleAuthor))
	assert.True(t, profile.HasAnyRole(models.RoleAdmin, models.RoleVisitor))
	assert.False(t, profile.HasAnyRole(models.RoleAdmin, models.RoleSuperAdmin))
	assert.False(t, profile.HasAnyRole())
}
