package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, empty borrower name).
// Handlers should map this to HTTP 400 Bad Request.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an operation would break the one-open-loan-per-book
// rule, e.g. borrowing a book that is already borrowed.
// The API contract maps this to HTTP 400 as well, with its own message.
var ErrConflict = errors.New("conflict")
