package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/residentdesk/residentdesk/internal/api/middleware"
	"github.com/residentdesk/residentdesk/internal/api/response"
	"github.com/residentdesk/residentdesk/internal/api/validation"
	"github.com/residentdesk/residentdesk/internal/issue"
)

type createIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Unit        string `json:"unit"`
}

type updateIssueStatusRequest struct {
	Status string `json:"status"`
}

type issueResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	SubmittedBy string  `json:"submittedBy"`
	Unit        string  `json:"unit"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	ResolvedAt  *string `json:"resolvedAt"`
}

func toIssueResponse(is *issue.Issue) issueResponse {
	return issueResponse{
		ID:          is.ID.String(),
		Title:       is.Title,
		Description: is.Description,
		Category:    is.Category,
		Priority:    string(is.Priority),
		Status:      string(is.Status),
		SubmittedBy: is.SubmittedBy,
		Unit:        is.Unit,
		CreatedAt:   response.Time(is.CreatedAt),
		UpdatedAt:   response.Time(is.UpdatedAt),
		ResolvedAt:  response.OptionalTime(is.ResolvedAt),
	}
}

// IssueHandler handles maintenance issue endpoints.
type IssueHandler struct {
	repo issue.Repository
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(repo issue.Repository) *IssueHandler {
	return &IssueHandler{repo: repo}
}

// Create handles POST /issues. The caller is recorded as the submitter.
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createIssueRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateCreateIssueRequest(validation.CreateIssueRequest{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	in := issue.NewIssue{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Priority:    issue.Priority(req.Priority),
		Unit:        strings.TrimSpace(req.Unit),
	}
	if p := middleware.GetPrincipal(r.Context()); p != nil {
		in.SubmittedBy = &p.Profile.ID
	}

	created, err := h.repo.Create(r.Context(), in)
	if err != nil {
		slog.Error("failed to create issue", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create issue", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toIssueResponse(created), requestID)
}

// List handles GET /issues.
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	issues, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list issues", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list issues", requestID)
		return
	}

	items := make([]issueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, toIssueResponse(&issues[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, len(items), requestID)
}

// GetByID handles GET /issues/{id}.
func (h *IssueHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	is, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, issue.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Issue not found", requestID)
			return
		}
		slog.Error("failed to get issue", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get issue", requestID)
		return
	}

	response.Success(w, http.StatusOK, toIssueResponse(is), requestID)
}

// UpdateStatus handles PATCH /issues/{id}/status.
func (h *IssueHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	var req updateIssueStatusRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidateIssueStatus(req.Status); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	updated, err := h.repo.UpdateStatus(r.Context(), id, issue.Status(req.Status))
	if err != nil {
		if errors.Is(err, issue.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Issue not found", requestID)
			return
		}
		slog.Error("failed to update issue status", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update issue", requestID)
		return
	}

	response.Success(w, http.StatusOK, toIssueResponse(updated), requestID)
}
