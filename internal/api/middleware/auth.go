package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/residentdesk/residentdesk/internal/api/response"
	"github.com/residentdesk/residentdesk/internal/auth"
	"github.com/residentdesk/residentdesk/internal/session"
)

const principalKey contextKey = "principal"

// TokenVerifier resolves an access token to its live session.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*session.Session, error)
}

// Principal is the authenticated and authorized caller of a request.
type Principal struct {
	Session *session.Session
	Profile *session.Profile
}

// Auth is middleware that requires a bearer token whose session is live and
// whose account has an admin profile. Bad or ended tokens return 401; a
// valid session without a profile returns 403.
func Auth(verifier TokenVerifier, profiles session.ProfileStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token, ok := bearerToken(r)
			if !ok {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is required", requestID)
				return
			}

			sess, err := verifier.Verify(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					response.Err(w, http.StatusUnauthorized, "SESSION_EXPIRED", "Session has expired", requestID)
				case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrSessionRevoked):
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or revoked token", requestID)
				default:
					slog.Error("failed to verify token", "error", err, "requestId", requestID)
					response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				}
				return
			}

			profile, err := profiles.GetProfile(r.Context(), sess.UserID)
			if err != nil {
				if errors.Is(err, session.ErrProfileNotFound) {
					response.Err(w, http.StatusForbidden, "ACCESS_DENIED", session.ErrAuthorizationDenied.Error(), requestID)
					return
				}
				slog.Error("failed to load admin profile", "error", err, "userId", sess.UserID, "requestId", requestID)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				return
			}

			ctx := WithPrincipal(r.Context(), &Principal{Session: sess, Profile: profile})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal retrieves the authenticated Principal from the request context.
func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
