package models_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixfil/yogapluriel-sub002/internal/models"
)

func TestRedirectRuleRedirectStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		want       int
	}{
		{name: "moved_permanently", statusCode: 301, want: http.StatusMovedPermanently},
		{name: "found", statusCode: 302, want: http.StatusFound},
		{name: "temporary_redirect", statusCode: 307, want: http.StatusTemporaryRedirect},
		{name: "permanent_redirect", statusCode: 308, want: http.StatusPermanentRedirect},
		{name: "zero_falls_back", statusCode: 0, want: http.StatusMovedPermanently},
		{name: "see_other_falls_back", statusCode: 303, want: http.StatusMovedPermanently},
		{name: "non_redirect_falls_back", statusCode: 200, want: http.StatusMovedPermanently},
		{name: "negative_falls_back", statusCode: -1, want: http.StatusMovedPermanently},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rule := &models.RedirectRule{StatusCode: tt.statusCode}
			assert.Equal(t, tt.want, rule.RedirectStatus())
		})
	}
}
