package middleware_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/residentdesk/residentdesk/internal/api/middleware"
	"github.com/residentdesk/residentdesk/internal/session"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"super admin allowed", "Bearer super-token", http.StatusOK},
		{"admin forbidden", "Bearer admin-token", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			h := middleware.Auth(f.verifier, f.profiles)(middleware.RequireRole(session.RoleSuperAdmin)(okHandler()))

			w := serve(h, tt.token)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	f := newAuthFixture()
	h := middleware.Auth(f.verifier, f.profiles)(middleware.RequireRole(session.RoleAdmin, session.RoleSuperAdmin)(okHandler()))

	assert.Equal(t, http.StatusOK, serve(h, "Bearer admin-token").Code)
	assert.Equal(t, http.StatusOK, serve(h, "Bearer super-token").Code)
}

func TestRequireRole_WithoutPrincipal(t *testing.T) {
	w := serve(middleware.RequireRole(session.RoleSuperAdmin)(okHandler()), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
}
