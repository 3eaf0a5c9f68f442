package middleware

import (
	"net/http"

	"github.com/residentdesk/residentdesk/internal/api/response"
	"github.com/residentdesk/residentdesk/internal/session"
)

// RequireRole returns middleware that rejects principals whose profile role
// is not in the allowed list.
func RequireRole(roles ...session.Role) func(http.Handler) http.Handler {
	allowed := make(map[session.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			p := GetPrincipal(r.Context())
			if p == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is required", requestID)
				return
			}

			if !allowed[p.Profile.Role] {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
