package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/handler/gen"
)

// Messages returned verbatim to clients.
const (
	msgBookNotFound    = "Book not found"
	msgAlreadyBorrowed = "Book is already borrowed"
	msgNoActiveLoan    = "No active loan found for this book"
	msgInternal        = "internal server error"
	msgInvalidBody     = "Invalid request body"
)

// errorBody wraps a message in the API's error envelope.
func errorBody(message string) gen.ErrorResponse {
	return gen.ErrorResponse{Message: message}
}

// validationBody returns an ErrorResponse for a domain validation failure.
// The message is extracted from the wrapped domain.ErrValidation error.
func validationBody(err error) gen.ErrorResponse {
	return errorBody(unwrapMessage(err))
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.BookService.Create: validation error: Title is required" → "Title is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

// writeError writes the JSON error envelope with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody(message))
}

// RequestErrorHandler handles requests the generated layer rejects before a
// handler runs: unbindable path or query parameters and undecodable bodies.
func RequestErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	var paramErr *gen.InvalidParamFormatError
	if errors.As(err, &paramErr) {
		writeError(w, http.StatusBadRequest, "Invalid "+paramErr.ParamName+" parameter")
		return
	}
	writeError(w, http.StatusBadRequest, msgInvalidBody)
}

// NewResponseErrorHandler returns the handler for errors a Server method
// returns instead of a typed response. Those are unexpected by definition:
// the error is logged and the client sees a generic 500.
func NewResponseErrorHandler(log *slog.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
