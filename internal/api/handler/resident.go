package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/residentdesk/residentdesk/internal/api/middleware"
	"github.com/residentdesk/residentdesk/internal/api/response"
	"github.com/residentdesk/residentdesk/internal/api/validation"
	"github.com/residentdesk/residentdesk/internal/resident"
)

type createResidentRequest struct {
	FirstName             string  `json:"firstName"`
	LastName              string  `json:"lastName"`
	Email                 string  `json:"email"`
	Phone                 string  `json:"phone"`
	ApartmentNumber       string  `json:"apartmentNumber"`
	Building              string  `json:"building"`
	MoveInDate            string  `json:"moveInDate"`
	MoveOutDate           *string `json:"moveOutDate"`
	EmergencyContactName  string  `json:"emergencyContactName"`
	EmergencyContactPhone string  `json:"emergencyContactPhone"`
	Notes                 *string `json:"notes"`
	Status                string  `json:"status"`
}

type updateResidentRequest struct {
	FirstName             *string `json:"firstName"`
	LastName              *string `json:"lastName"`
	Email                 *string `json:"email"`
	Phone                 *string `json:"phone"`
	ApartmentNumber       *string `json:"apartmentNumber"`
	Building              *string `json:"building"`
	MoveInDate            *string `json:"moveInDate"`
	MoveOutDate           *string `json:"moveOutDate"`
	EmergencyContactName  *string `json:"emergencyContactName"`
	EmergencyContactPhone *string `json:"emergencyContactPhone"`
	Notes                 *string `json:"notes"`
	Status                *string `json:"status"`
}

type residentResponse struct {
	ID                    string  `json:"id"`
	FirstName             string  `json:"firstName"`
	LastName              string  `json:"lastName"`
	Email                 string  `json:"email"`
	Phone                 string  `json:"phone"`
	ApartmentNumber       string  `json:"apartmentNumber"`
	Building              string  `json:"building"`
	MoveInDate            string  `json:"moveInDate"`
	MoveOutDate           *string `json:"moveOutDate"`
	EmergencyContactName  string  `json:"emergencyContactName"`
	EmergencyContactPhone string  `json:"emergencyContactPhone"`
	Notes                 *string `json:"notes"`
	Status                string  `json:"status"`
	CreatedAt             string  `json:"createdAt"`
	UpdatedAt             string  `json:"updatedAt"`
}

type residentStatsResponse struct {
	Total    int                `json:"total"`
	Active   int                `json:"active"`
	Pending  int                `json:"pending"`
	Inactive int                `json:"inactive"`
	Recent   []residentResponse `json:"recent"`
}

func toResidentResponse(res *resident.Resident) residentResponse {
	resp := residentResponse{
		ID:                    res.ID.String(),
		FirstName:             res.FirstName,
		LastName:              res.LastName,
		Email:                 res.Email,
		Phone:                 res.Phone,
		ApartmentNumber:       res.ApartmentNumber,
		Building:              res.Building,
		MoveInDate:            res.MoveInDate.Format(validation.DateLayout),
		EmergencyContactName:  res.EmergencyContactName,
		EmergencyContactPhone: res.EmergencyContactPhone,
		Notes:                 res.Notes,
		Status:                string(res.Status),
		CreatedAt:             response.Time(res.CreatedAt),
		UpdatedAt:             response.Time(res.UpdatedAt),
	}
	if res.MoveOutDate != nil {
		d := res.MoveOutDate.Format(validation.DateLayout)
		resp.MoveOutDate = &d
	}
	return resp
}

func toResidentResponses(residents []resident.Resident) []residentResponse {
	items := make([]residentResponse, 0, len(residents))
	for i := range residents {
		items = append(items, toResidentResponse(&residents[i]))
	}
	return items
}

// ResidentHandler handles resident CRUD endpoints.
type ResidentHandler struct {
	repo resident.Repository
}

// NewResidentHandler creates a new ResidentHandler.
func NewResidentHandler(repo resident.Repository) *ResidentHandler {
	return &ResidentHandler{repo: repo}
}

// Create handles POST /residents.
func (h *ResidentHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createResidentRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateCreateResidentRequest(validation.CreateResidentRequest{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		ApartmentNumber: req.ApartmentNumber,
		Building:        req.Building,
		MoveInDate:      req.MoveInDate,
		MoveOutDate:     req.MoveOutDate,
		Status:          req.Status,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	moveIn, _ := validation.ParseDate(req.MoveInDate) // already validated

	res := &resident.Resident{
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		Email:                 strings.TrimSpace(req.Email),
		Phone:                 strings.TrimSpace(req.Phone),
		ApartmentNumber:       strings.TrimSpace(req.ApartmentNumber),
		Building:              strings.TrimSpace(req.Building),
		MoveInDate:            moveIn,
		EmergencyContactName:  strings.TrimSpace(req.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(req.EmergencyContactPhone),
		Notes:                 req.Notes,
		Status:                resident.Status(req.Status),
	}
	if req.MoveOutDate != nil && *req.MoveOutDate != "" {
		moveOut, _ := validation.ParseDate(*req.MoveOutDate)
		res.MoveOutDate = &moveOut
	}

	if err := h.repo.Create(r.Context(), res); err != nil {
		slog.Error("failed to create resident", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create resident", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toResidentResponse(res), requestID)
}

// List handles GET /residents with optional status, q, page and limit parameters.
func (h *ResidentHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter := resident.ListFilter{
		Page:  1,
		Limit: 20,
	}

	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		s := resident.Status(v)
		if !s.Valid() {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", `status must be "active", "inactive" or "pending"`, requestID)
			return
		}
		filter.Status = &s
	}
	if v := strings.TrimSpace(q.Get("q")); v != "" {
		filter.Query = &v
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "page must be a positive integer", requestID)
			return
		}
		filter.Page = page
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "limit must be a positive integer", requestID)
			return
		}
		filter.Limit = limit
	}

	result, err := h.repo.List(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list residents", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list residents", requestID)
		return
	}

	response.SuccessList(w, http.StatusOK, toResidentResponses(result.Residents), result.Total, result.Page, result.Limit, requestID)
}

// Search handles GET /residents/search?q=.
func (h *ResidentHandler) Search(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "q is required", requestID)
		return
	}

	residents, err := h.repo.Search(r.Context(), q)
	if err != nil {
		slog.Error("failed to search residents", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to search residents", requestID)
		return
	}

	response.SuccessList(w, http.StatusOK, toResidentResponses(residents), len(residents), 1, len(residents), requestID)
}

// Stats handles GET /residents/stats.
func (h *ResidentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		slog.Error("failed to compute resident stats", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load resident stats", requestID)
		return
	}

	response.Success(w, http.StatusOK, residentStatsResponse{
		Total:    stats.Total,
		Active:   stats.Active,
		Pending:  stats.Pending,
		Inactive: stats.Inactive,
		Recent:   toResidentResponses(stats.Recent),
	}, requestID)
}

// GetByID handles GET /residents/{id}.
func (h *ResidentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	res, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, resident.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Resident not found", requestID)
			return
		}
		slog.Error("failed to get resident", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get resident", requestID)
		return
	}

	response.Success(w, http.StatusOK, toResidentResponse(res), requestID)
}

// Update handles PATCH /residents/{id}.
func (h *ResidentHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	var req updateResidentRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	// A lone move-in or move-out date is checked against the stored other one.
	var currentMoveIn, currentMoveOut *time.Time
	if (req.MoveOutDate == nil) != (req.MoveInDate == nil) {
		existing, err := h.repo.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, resident.ErrNotFound) {
				response.Err(w, http.StatusNotFound, "NOT_FOUND", "Resident not found", requestID)
				return
			}
			slog.Error("failed to get resident", "error", err, "id", id)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update resident", requestID)
			return
		}
		currentMoveIn = &existing.MoveInDate
		currentMoveOut = existing.MoveOutDate
	}

	fieldErrors := validation.ValidateUpdateResidentRequest(validation.UpdateResidentRequest{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		ApartmentNumber: req.ApartmentNumber,
		Building:        req.Building,
		MoveInDate:      req.MoveInDate,
		MoveOutDate:     req.MoveOutDate,
		Status:          req.Status,
	}, currentMoveIn, currentMoveOut)
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	fields := resident.UpdateFields{
		FirstName:             trimmed(req.FirstName),
		LastName:              trimmed(req.LastName),
		Email:                 trimmed(req.Email),
		Phone:                 trimmed(req.Phone),
		ApartmentNumber:       trimmed(req.ApartmentNumber),
		Building:              trimmed(req.Building),
		EmergencyContactName:  trimmed(req.EmergencyContactName),
		EmergencyContactPhone: trimmed(req.EmergencyContactPhone),
		Notes:                 req.Notes,
	}
	if req.MoveInDate != nil {
		d, _ := validation.ParseDate(*req.MoveInDate)
		fields.MoveInDate = &d
	}
	if req.MoveOutDate != nil {
		d, _ := validation.ParseDate(*req.MoveOutDate)
		fields.MoveOutDate = &d
	}
	if req.Status != nil {
		s := resident.Status(*req.Status)
		fields.Status = &s
	}

	res, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, resident.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Resident not found", requestID)
			return
		}
		slog.Error("failed to update resident", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update resident", requestID)
		return
	}

	response.Success(w, http.StatusOK, toResidentResponse(res), requestID)
}

// Delete handles DELETE /residents/{id}.
func (h *ResidentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, resident.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Resident not found", requestID)
			return
		}
		slog.Error("failed to delete resident", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete resident", requestID)
		return
	}

	response.NoContent(w)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
