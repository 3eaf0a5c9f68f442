package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	specpkg "github.com/residentdesk/residentdesk/api"
	"github.com/residentdesk/residentdesk/internal/api/handler"
)

func TestOpenAPIHandler_ReturnsJSON(t *testing.T) {
	t.Parallel()

	yamlSpec := []byte(`openapi: "3.0.3"
info:
  title: Test API
  version: "1.0.0"
paths: {}
`)
	h, err := handler.NewOpenAPIHandler(yamlSpec)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), "response should be valid JSON")
	assert.Equal(t, "3.0.3", result["openapi"])
	info := result["info"].(map[string]interface{})
	assert.Equal(t, "Test API", info["title"])
	assert.Contains(t, result, "paths")
}

func TestOpenAPIHandler_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := handler.NewOpenAPIHandler([]byte(`{{{not yaml at all}}}`))

	assert.Error(t, err)
}

func TestOpenAPIHandler_RepeatedRequestsIdentical(t *testing.T) {
	t.Parallel()

	h, err := handler.NewOpenAPIHandler([]byte("openapi: 3.0.3\npaths: {}\n"))
	require.NoError(t, err)

	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	assert.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestOpenAPIHandler_EmbeddedSpec(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, specpkg.OpenAPISpec, "embedded OpenAPI spec should not be empty")

	h, err := handler.NewOpenAPIHandler(specpkg.OpenAPISpec)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), "embedded spec should produce valid JSON")
	info := result["info"].(map[string]interface{})
	assert.Equal(t, "Residentdesk API", info["title"])
	paths := result["paths"].(map[string]interface{})
	assert.Contains(t, paths, "/auth/login")
	assert.Contains(t, paths, "/residents/{id}")
}
