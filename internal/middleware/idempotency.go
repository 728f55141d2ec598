package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

// IdempotencyKeyHeader is the request header that opts a POST into replay.
const IdempotencyKeyHeader = "Idempotency-Key"

// ReplayedHeader is set on responses served from a stored record.
const ReplayedHeader = "Idempotent-Replayed"

const (
	// How long the in-progress marker lives if the handler never finishes.
	provisionalLockTTL = 60 * time.Second
	redisOpTimeout     = 2 * time.Second
)

// idempEntry is the JSON value stored under each key.
type idempEntry struct {
	InProgress  bool   `json:"in_progress"`
	Code        int    `json:"code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	BodySHA256  string `json:"body_sha256"`
}

// NewIdempotencyHandler returns a middleware that makes POST requests carrying
// an Idempotency-Key header safe to retry. The first request with a key runs
// normally and its response is stored in Redis for ttl; a repeat with the
// same key and body gets the stored response back. Reusing a key with a
// different body, or while the first request is still running, is a 409.
// Requests without the header, and non-POST requests, pass straight through.
// 5xx responses are not stored so the client can retry them.
func NewIdempotencyHandler(rdb redis.UniversalClient, ttl time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idemKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if r.Method != http.MethodPost || idemKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Buffer & hash body so it can be compared on replay.
			var body []byte
			if r.Body != nil {
				b, err := io.ReadAll(r.Body)
				if err != nil {
					var tooLarge *http.MaxBytesError
					if errors.As(err, &tooLarge) {
						writeJSONMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
						return
					}
					writeJSONMessage(w, http.StatusBadRequest, "Invalid request body")
					return
				}
				body = b
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			bhash := bodyHash(body)

			key := buildKey(r.Method, r.URL.Path, idemKey)
			ctx, cancel := context.WithTimeout(r.Context(), redisOpTimeout)
			defer cancel()

			ok, err := provisionalSet(ctx, rdb, key, idempEntry{InProgress: true, BodySHA256: bhash})
			if err != nil {
				log.ErrorContext(r.Context(), "idempotency store unavailable", "error", err)
				writeJSONMessage(w, http.StatusServiceUnavailable, "idempotency store unavailable")
				return
			}
			if !ok {
				replay(ctx, w, rdb, key, bhash, log)
				return
			}

			// Call next and record the final response.
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			var buf bytes.Buffer
			ww.Tee(&buf)
			next.ServeHTTP(ww, r)

			// The request context may already be done; the record must still land.
			saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(r.Context()), redisOpTimeout)
			defer saveCancel()

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				if err := rdb.Del(saveCtx, key).Err(); err != nil {
					log.WarnContext(r.Context(), "idempotency release failed", "key", key, "error", err)
				}
				return
			}
			final := idempEntry{
				Code:        status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        buf.Bytes(),
				BodySHA256:  bhash,
			}
			if err := saveFinal(saveCtx, rdb, key, final, ttl); err != nil {
				log.WarnContext(r.Context(), "idempotency save failed", "key", key, "error", err)
			}
		})
	}
}

// replay answers a request whose key already exists.
func replay(ctx context.Context, w http.ResponseWriter, rdb redis.UniversalClient, key, bhash string, log *slog.Logger) {
	cur, err := loadEntry(ctx, rdb, key)
	if err != nil {
		log.WarnContext(ctx, "idempotency load failed", "key", key, "error", err)
		writeJSONMessage(w, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
		return
	}
	if cur.BodySHA256 != bhash {
		writeJSONMessage(w, http.StatusConflict, "Idempotency-Key reused with a different body")
		return
	}
	if cur.InProgress {
		writeJSONMessage(w, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
		return
	}

	if cur.ContentType != "" {
		w.Header().Set("Content-Type", cur.ContentType)
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(cur.Code)
	_, _ = w.Write(cur.Body)
}

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func buildKey(method, path, idemKey string) string {
	return "libris:idemp:" + strings.ToLower(method) + ":" + path + ":" + idemKey
}

// ---- Redis helpers ----

func provisionalSet(ctx context.Context, rdb redis.UniversalClient, key string, entry idempEntry) (bool, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func loadEntry(ctx context.Context, rdb redis.UniversalClient, key string) (idempEntry, error) {
	var e idempEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return e, err
	}
	return e, nil
}

func saveFinal(ctx context.Context, rdb redis.UniversalClient, key string, entry idempEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, payload, ttl).Err()
}

func writeJSONMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
