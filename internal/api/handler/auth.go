package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/residentdesk/residentdesk/internal/api/middleware"
	"github.com/residentdesk/residentdesk/internal/api/response"
	"github.com/residentdesk/residentdesk/internal/api/validation"
	"github.com/residentdesk/residentdesk/internal/auth"
	"github.com/residentdesk/residentdesk/internal/profile"
	"github.com/residentdesk/residentdesk/internal/session"
)

// Authenticator opens per-request auth clients and ends sessions.
// It is satisfied by *auth.Service.
type Authenticator interface {
	NewClient(store auth.TokenStore) *auth.Client
	Revoke(ctx context.Context, sessionID uuid.UUID) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
}

type profileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FullName  string `json:"fullName"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type sessionResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expiresAt"`
}

type loginResponse struct {
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType"`
	ExpiresAt   string          `json:"expiresAt"`
	Profile     profileResponse `json:"profile"`
}

type currentSessionResponse struct {
	Session sessionResponse `json:"session"`
	Profile profileResponse `json:"profile"`
}

func toProfileResponse(p *session.Profile) profileResponse {
	return profileResponse{
		ID:        p.ID.String(),
		Email:     p.Email,
		Role:      string(p.Role),
		FullName:  p.FullName,
		CreatedAt: response.Time(p.CreatedAt),
		UpdatedAt: response.Time(p.UpdatedAt),
	}
}

func toSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID.String(),
		UserID:    s.UserID.String(),
		Email:     s.Email,
		ExpiresAt: response.Time(s.ExpiresAt),
	}
}

// AuthHandler handles sign-in, sign-out and the caller's own profile.
type AuthHandler struct {
	auth     Authenticator
	profiles profile.Repository
	gateOpts []session.Option
}

// NewAuthHandler creates a new AuthHandler. gateOpts configure the gate
// each login runs through.
func NewAuthHandler(authn Authenticator, profiles profile.Repository, gateOpts ...session.Option) *AuthHandler {
	return &AuthHandler{
		auth:     authn,
		profiles: profiles,
		gateOpts: gateOpts,
	}
}

// Login handles POST /auth/login. Credentials are checked and the account
// must have an admin profile; otherwise the new session is revoked.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req loginRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	client := h.auth.NewClient(auth.NewMemoryTokenStore(""))
	gate := session.New(client, h.profiles, h.gateOpts...)
	defer gate.Close()

	p, err := gate.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", requestID)
		case errors.Is(err, session.ErrAuthorizationDenied):
			slog.Warn("login denied: no admin profile", "email", req.Email, "error", err)
			response.Err(w, http.StatusForbidden, "ACCESS_DENIED", session.ErrAuthorizationDenied.Error(), requestID)
		default:
			slog.Error("failed to sign in", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign in", requestID)
		}
		return
	}

	sess := client.Current()
	if sess == nil {
		// Revoked between sign-in and now.
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session ended during sign-in", requestID)
		return
	}

	response.Success(w, http.StatusOK, loginResponse{
		AccessToken: sess.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   response.Time(sess.ExpiresAt),
		Profile:     toProfileResponse(p),
	}, requestID)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal := middleware.GetPrincipal(r.Context())

	if err := h.auth.Revoke(r.Context(), principal.Session.ID); err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			response.NoContent(w)
			return
		}
		slog.Error("failed to revoke session", "error", err, "sessionId", principal.Session.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign out", requestID)
		return
	}

	response.NoContent(w)
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal := middleware.GetPrincipal(r.Context())

	response.Success(w, http.StatusOK, currentSessionResponse{
		Session: toSessionResponse(principal.Session),
		Profile: toProfileResponse(principal.Profile),
	}, requestID)
}

// UpdateProfile handles PATCH /auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal := middleware.GetPrincipal(r.Context())

	var req updateProfileRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidateFullName(req.FullName); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p, err := h.profiles.UpdateFullName(r.Context(), principal.Profile.ID, strings.TrimSpace(req.FullName))
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", requestID)
			return
		}
		slog.Error("failed to update profile", "error", err, "id", principal.Profile.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile", requestID)
		return
	}

	response.Success(w, http.StatusOK, toProfileResponse(p), requestID)
}
