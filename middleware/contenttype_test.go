package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumohq/kumo/app"
)

func TestContentType(t *testing.T) {
	t.Run("config error no allowed types", func(t *testing.T) {
		_, err := ContentType(ContentTypeConfig{})
		assert.ErrorIs(t, err, ErrNoAllowedTypes)
	})

	tests := []struct {
		name        string
		config      ContentTypeConfig
		method      string
		contentType string
		wantCode    int
	}{
		{
			name:        "allowed type passes",
			config:      ContentTypeConfig{AllowedTypes: []string{"application/json"}},
			method:      http.MethodPost,
			contentType: "application/json",
			wantCode:    http.StatusOK,
		},
		{
			name:        "parameters are ignored",
			config:      ContentTypeConfig{AllowedTypes: []string{"application/json"}},
			method:      http.MethodPost,
			contentType: "application/json; charset=utf-8",
			wantCode:    http.StatusOK,
		},
		{
			name:        "matching is case insensitive",
			config:      ContentTypeConfig{AllowedTypes: []string{"Application/JSON"}},
			method:      http.MethodPost,
			contentType: "APPLICATION/json",
			wantCode:    http.StatusOK,
		},
		{
			name:        "disallowed type rejected",
			config:      ContentTypeConfig{AllowedTypes: []string{"application/json"}},
			method:      http.MethodPost,
			contentType: "text/plain",
			wantCode:    http.StatusUnsupportedMediaType,
		},
		{
			name:     "missing content type rejected",
			config:   ContentTypeConfig{AllowedTypes: []string{"application/json"}},
			method:   http.MethodPost,
			wantCode: http.StatusUnsupportedMediaType,
		},
		{
			name:        "malformed content type rejected",
			config:      ContentTypeConfig{AllowedTypes: []string{"application/json"}},
			method:      http.MethodPost,
			contentType: "not a media type;;",
			wantCode:    http.StatusUnsupportedMediaType,
		},
		{
			name:        "get requests are not checked by default",
			config:      ContentTypeConfig{AllowedTypes: []string{"application/json"}},
			method:      http.MethodGet,
			contentType: "text/plain",
			wantCode:    http.StatusOK,
		},
		{
			name:        "custom method list",
			config:      ContentTypeConfig{AllowedTypes: []string{"application/json"}, Methods: []string{http.MethodGet}},
			method:      http.MethodGet,
			contentType: "text/plain",
			wantCode:    http.StatusUnsupportedMediaType,
		},
		{
			name:        "custom method list skips post",
			config:      ContentTypeConfig{AllowedTypes: []string{"application/json"}, Methods: []string{http.MethodGet}},
			method:      http.MethodPost,
			contentType: "text/plain",
			wantCode:    http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, err := ContentType(tt.config)
			require.NoError(t, err)

			b := app.New()
			b.Use(mw)
			b.HandleFunc("/submit", func(*app.Context) (app.Output, error) {
				return app.Text(http.StatusOK, "ok"), nil
			})
			a, err := b.Build()
			require.NoError(t, err)

			req := httptest.NewRequest(tt.method, "/submit", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			a.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
