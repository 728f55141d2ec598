package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/handler"
	"github.com/pkordes/libris/internal/handler/gen"
)

// newHTTPHandler wires a Server into the production router with logging
// discarded. This mirrors how the serve command wires it.
func newHTTPHandler(srv *handler.Server) http.Handler {
	return handler.NewRouter(srv, handler.RouterConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends one request through h and returns the recorder.
func do(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeError reads the {message} envelope from rec.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp gen.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Message
}
