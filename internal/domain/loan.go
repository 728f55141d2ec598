package domain

import (
	"strings"
	"time"
)

// Loan records one borrowing period of one book by one named borrower.
// ReturnedAt is nil while the loan is open.
type Loan struct {
	ID           int64      `json:"id"`
	BookID       int64      `json:"bookId"`
	BorrowerName string     `json:"borrowerName"`
	BorrowedAt   time.Time  `json:"borrowedAt"`
	ReturnedAt   *time.Time `json:"returnedAt"`
}

// Open reports whether the loan has not been returned yet.
func (l Loan) Open() bool {
	return l.ReturnedAt == nil
}

// SameBorrower reports whether name identifies the loan's borrower.
// Borrowers have no entity of their own; identity is the name, compared
// case-insensitively.
func (l Loan) SameBorrower(name string) bool {
	return strings.EqualFold(l.BorrowerName, name)
}

// LoanFilter selects which loans to list. A non-nil Borrower wins over BookID,
// even when it points at "" (which matches nobody); the zero value lists
// every loan.
type LoanFilter struct {
	BookID   *int64
	Borrower *string
}
