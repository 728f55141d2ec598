package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/repo"
)

// LoanService implements the borrow/return workflow.
// It holds the books repo as well because borrowing requires checking the
// referenced book's existence and availability first.
type LoanService struct {
	books repo.BookRepo
	loans repo.LoanRepo
}

// NewLoanService constructs a LoanService backed by the provided repos.
func NewLoanService(books repo.BookRepo, loans repo.LoanRepo) *LoanService {
	return &LoanService{books: books, loans: loans}
}

// List returns loans selected by f. A present borrower name takes priority
// over a book id, even when empty; the zero filter lists everything.
func (s *LoanService) List(ctx context.Context, f domain.LoanFilter) ([]domain.Loan, error) {
	var (
		loans []domain.Loan
		err   error
	)
	switch {
	case f.Borrower != nil:
		loans, err = s.loans.ListLoansByBorrower(ctx, *f.Borrower)
	default:
		loans, err = s.loans.ListLoans(ctx, f.BookID)
	}
	if err != nil {
		return nil, fmt.Errorf("service.LoanService.List: %w", err)
	}
	return nonNil(loans), nil
}

// Borrow opens a loan for loan.BookID in the name of loan.BorrowerName.
// Returns domain.ErrValidation for bad input, domain.ErrNotFound when the book
// does not exist, and domain.ErrConflict when it is already borrowed.
func (s *LoanService) Borrow(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	if err := validateLoan(loan); err != nil {
		return domain.Loan{}, fmt.Errorf("service.LoanService.Borrow: %w", err)
	}

	book, err := s.books.GetBook(ctx, loan.BookID)
	if err != nil {
		return domain.Loan{}, fmt.Errorf("service.LoanService.Borrow: %w", err)
	}
	if book.Status == domain.StatusBorrowed {
		return domain.Loan{}, fmt.Errorf("service.LoanService.Borrow: book %d: %w", book.ID, domain.ErrConflict)
	}

	created, err := s.loans.CreateLoan(ctx, domain.Loan{BookID: loan.BookID, BorrowerName: loan.BorrowerName})
	if err != nil {
		return domain.Loan{}, fmt.Errorf("service.LoanService.Borrow: %w", err)
	}
	return created, nil
}

// Return closes the open loan of a book.
// Returns domain.ErrNotFound if the book has no open loan.
func (s *LoanService) Return(ctx context.Context, bookID int64) (domain.Loan, error) {
	loan, err := s.loans.ReturnBook(ctx, bookID)
	if err != nil {
		return domain.Loan{}, fmt.Errorf("service.LoanService.Return: %w", err)
	}
	return loan, nil
}

func validateLoan(l domain.Loan) error {
	var problems []string
	if l.BookID <= 0 {
		problems = append(problems, "bookId must be a positive integer")
	}
	if strings.TrimSpace(l.BorrowerName) == "" {
		problems = append(problems, "Borrower name is required")
	}
	return validationError(problems)
}
