package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/residentdesk/residentdesk/internal/api/middleware"
	"github.com/residentdesk/residentdesk/internal/session"
)

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

// asPrincipal attaches a signed-in admin to the request, as the Auth
// middleware would.
func asPrincipal(req *http.Request, p *session.Profile) *http.Request {
	sess := &session.Session{
		ID:        uuid.New(),
		UserID:    p.ID,
		Email:     p.Email,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	ctx := middleware.WithPrincipal(req.Context(), &middleware.Principal{Session: sess, Profile: p})
	return req.WithContext(ctx)
}

func sampleProfile(role session.Role) *session.Profile {
	now := time.Now().UTC()
	return &session.Profile{
		ID:        uuid.New(),
		Email:     "admin@example.com",
		Role:      role,
		FullName:  "Ada Admin",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseEnvelope(t, w)["error"].(map[string]interface{})
	require.True(t, ok, "expected error object, got %s", w.Body.String())
	return errObj["code"].(string)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
