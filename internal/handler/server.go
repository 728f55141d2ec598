// Package handler implements the HTTP handlers for the Libris API.
// All handlers are methods on Server, which implements gen.StrictServerInterface.
// Methods are split into domain-specific files (health.go, book.go, etc.) but
// all share the same Server struct so they can access its dependencies.
package handler

import (
	"context"

	"github.com/pkordes/libris/internal/domain"
)

// BookServicer defines the business operations the book handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching a store or the service layer.
type BookServicer interface {
	List(ctx context.Context) ([]domain.Book, error)
	Search(ctx context.Context, query string) ([]domain.Book, error)
	GetByID(ctx context.Context, id int64) (domain.Book, error)
	Create(ctx context.Context, book domain.Book) (domain.Book, error)
	Update(ctx context.Context, id int64, patch domain.BookPatch) (domain.Book, error)
	Delete(ctx context.Context, id int64) error
}

// LoanServicer defines the borrow/return operations the loan handlers depend on.
type LoanServicer interface {
	List(ctx context.Context, f domain.LoanFilter) ([]domain.Loan, error)
	Borrow(ctx context.Context, loan domain.Loan) (domain.Loan, error)
	Return(ctx context.Context, bookID int64) (domain.Loan, error)
}

// ExportServicer produces the loan ledger for GET /api/export.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server implements gen.StrictServerInterface for all API endpoints.
// Wire it through NewRouter, or gen.NewStrictHandler in tests.
type Server struct {
	books  BookServicer
	loans  LoanServicer
	export ExportServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(books BookServicer, loans LoanServicer, export ExportServicer) *Server {
	return &Server{books: books, loans: loans, export: export}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}
