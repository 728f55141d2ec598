// Package repo contains all data access logic for the Libris API.
// It defines the Store capability contract used by the service layer and
// the Postgres implementation of it. Other backends live in sub-packages
// (memory, gormstore). No business logic lives here, only storage and
// type mapping.
package repo

import (
	"context"

	"github.com/pkordes/libris/internal/domain"
)

// BookRepo defines the persistence operations for Books.
type BookRepo interface {
	// ListBooks returns every book in insertion order.
	ListBooks(ctx context.Context) ([]domain.Book, error)

	// GetBook retrieves a single book by id.
	// Returns domain.ErrNotFound if no book with that id exists.
	GetBook(ctx context.Context, id int64) (domain.Book, error)

	// SearchBooks returns the books whose title, author or isbn contains query,
	// compared case-insensitively, in insertion order.
	SearchBooks(ctx context.Context, query string) ([]domain.Book, error)

	// CreateBook stores a new book under the next id and returns it.
	// The status is always domain.StatusAvailable regardless of the input.
	CreateBook(ctx context.Context, book domain.Book) (domain.Book, error)

	// UpdateBook merges patch over the stored book and returns the result.
	// Returns domain.ErrNotFound if no book with that id exists.
	UpdateBook(ctx context.Context, id int64, patch domain.BookPatch) (domain.Book, error)

	// DeleteBook removes a book. Loans referencing it are left untouched.
	// Returns domain.ErrNotFound if it does not exist.
	DeleteBook(ctx context.Context, id int64) error
}

// LoanRepo defines the persistence operations for Loans.
type LoanRepo interface {
	// ListLoans returns all loans in insertion order, or only those for
	// bookID when it is non-nil.
	ListLoans(ctx context.Context, bookID *int64) ([]domain.Loan, error)

	// ListLoansByBorrower returns the loans whose borrower name equals name,
	// compared case-insensitively.
	ListLoansByBorrower(ctx context.Context, name string) ([]domain.Loan, error)

	// CreateLoan opens a loan stamped with the current time and flips the
	// referenced book to borrowed. A missing book is not an error here:
	// existence is checked by the service before calling.
	// Returns domain.ErrConflict if the book already has an open loan; the
	// check is atomic with the insert.
	CreateLoan(ctx context.Context, loan domain.Loan) (domain.Loan, error)

	// ReturnBook closes the open loan for bookID and flips the book back to
	// available. If several loans are open (legacy data), the one with the
	// earliest BorrowedAt (then lowest id) is closed.
	// Returns domain.ErrNotFound if the book has no open loan.
	ReturnBook(ctx context.Context, bookID int64) (domain.Loan, error)
}

// Store is the full capability contract of a Libris data store.
// Every backend (memory, postgres, gorm) satisfies it, so the API layer can be
// wired to any of them without change.
type Store interface {
	BookRepo
	LoanRepo
}
