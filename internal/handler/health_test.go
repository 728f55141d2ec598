package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/handler"
	"github.com/pkordes/libris/internal/handler/gen"
)

func TestGetHealth_OK(t *testing.T) {
	rec := do(newHTTPHandler(handler.NewHealthHandler()), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	var body gen.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
}

func TestGetHealth_WrongMethod(t *testing.T) {
	rec := do(newHTTPHandler(handler.NewHealthHandler()), http.MethodPost, "/healthz", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"message":"Method not allowed"}`, rec.Body.String())
}
