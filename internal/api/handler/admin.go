package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/residentdesk/residentdesk/internal/api/middleware"
	"github.com/residentdesk/residentdesk/internal/api/response"
	"github.com/residentdesk/residentdesk/internal/api/validation"
	"github.com/residentdesk/residentdesk/internal/auth"
	"github.com/residentdesk/residentdesk/internal/profile"
	"github.com/residentdesk/residentdesk/internal/session"
)

// AccountCreator creates login accounts. It is satisfied by *auth.Service.
type AccountCreator interface {
	CreateAccount(ctx context.Context, email, password string) (*auth.Account, error)
}

type createAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// AdminHandler handles admin account endpoints.
type AdminHandler struct {
	accounts AccountCreator
	profiles profile.Repository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accounts AccountCreator, profiles profile.Repository) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		profiles: profiles,
	}
}

// Create handles POST /admins.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createAdminRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateCreateAdminRequest(validation.CreateAdminRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	a, err := h.accounts.CreateAccount(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateEmail):
			response.Err(w, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists", requestID)
		case errors.Is(err, auth.ErrWeakPassword):
			response.Err(w, http.StatusBadRequest, "WEAK_PASSWORD", err.Error(), requestID)
		default:
			slog.Error("failed to create account", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create admin", requestID)
		}
		return
	}

	p := &session.Profile{
		ID:       a.ID,
		Email:    a.Email,
		Role:     session.Role(req.Role),
		FullName: strings.TrimSpace(req.FullName),
	}
	if err := h.profiles.Create(r.Context(), p); err != nil {
		if errors.Is(err, profile.ErrDuplicateProfile) {
			response.Err(w, http.StatusConflict, "DUPLICATE_PROFILE", "Admin profile already exists", requestID)
			return
		}
		slog.Error("failed to create admin profile", "error", err, "accountId", a.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create admin", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toProfileResponse(p), requestID)
}

// List handles GET /admins.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		slog.Error("failed to list admin profiles", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list admins", requestID)
		return
	}

	items := make([]profileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, toProfileResponse(&profiles[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, len(items), requestID)
}
