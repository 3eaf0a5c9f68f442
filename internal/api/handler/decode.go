package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/residentdesk/residentdesk/internal/api/response"
)

const maxBodyBytes = 1 << 20 // 1MB limit

// decodeJSON reads the request body into v. On failure it writes a 400
// INVALID_JSON response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, requestID string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return false
	}
	return true
}

// pathID parses the {id} URL parameter. On failure it writes a 400
// INVALID_ID response and returns false.
func pathID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return uuid.Nil, false
	}
	return id, true
}
