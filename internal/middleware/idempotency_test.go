package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/middleware"
)

// newIdempotentHandler wraps next with the middleware backed by miniredis.
func newIdempotentHandler(t *testing.T, next http.Handler) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return middleware.NewIdempotencyHandler(rdb, time.Hour, log)(next), mr
}

// countingCreated answers 201 with a body that embeds the call count, so a
// replay is distinguishable from a second execution.
func countingCreated(calls *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":`+strconv.Itoa(int(n))+`}`)
	})
}

func post(h http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/loans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(middleware.IdempotencyKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_NoHeader_PassesThrough(t *testing.T) {
	var calls atomic.Int32
	h, _ := newIdempotentHandler(t, countingCreated(&calls))

	post(h, "", `{}`)
	post(h, "", `{}`)

	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_SameKey_ReplaysFirstResponse(t *testing.T) {
	var calls atomic.Int32
	h, _ := newIdempotentHandler(t, countingCreated(&calls))

	first := post(h, "k-1", `{"bookId":1}`)
	second := post(h, "k-1", `{"bookId":1}`)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, "true", second.Header().Get(middleware.ReplayedHeader))
	assert.Empty(t, first.Header().Get(middleware.ReplayedHeader))
}

func TestIdempotency_DifferentKeys_BothRun(t *testing.T) {
	var calls atomic.Int32
	h, _ := newIdempotentHandler(t, countingCreated(&calls))

	post(h, "k-1", `{}`)
	post(h, "k-2", `{}`)

	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_KeyReusedWithDifferentBody_409(t *testing.T) {
	var calls atomic.Int32
	h, _ := newIdempotentHandler(t, countingCreated(&calls))

	post(h, "k-1", `{"bookId":1}`)
	rec := post(h, "k-1", `{"bookId":2}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotency_InProgress_409(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusCreated)
	})
	h, _ := newIdempotentHandler(t, slow)

	done := make(chan struct{})
	go func() {
		defer close(done)
		post(h, "k-1", `{}`)
	}()
	<-started

	rec := post(h, "k-1", `{}`)
	close(release)
	<-done

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestIdempotency_ServerError_NotStored(t *testing.T) {
	var calls atomic.Int32
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	h, mr := newIdempotentHandler(t, failing)

	post(h, "k-1", `{}`)
	post(h, "k-1", `{}`)

	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, mr.Keys())
}

func TestIdempotency_RecordExpires(t *testing.T) {
	var calls atomic.Int32
	h, mr := newIdempotentHandler(t, countingCreated(&calls))

	post(h, "k-1", `{}`)
	mr.FastForward(2 * time.Hour)
	post(h, "k-1", `{}`)

	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_GET_Ignored(t *testing.T) {
	var calls atomic.Int32
	h, mr := newIdempotentHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/loans", nil)
		req.Header.Set(middleware.IdempotencyKeyHeader, "k-1")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, mr.Keys())
}

func TestIdempotency_RedisDown_503(t *testing.T) {
	var calls atomic.Int32
	h, mr := newIdempotentHandler(t, countingCreated(&calls))
	mr.Close()

	rec := post(h, "k-1", `{}`)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, calls.Load())
}
