package domain

import "time"

// ExportRow is a single row in the loan ledger export: one row per loan, with
// the book's catalog fields repeated on every row.
// BookTitle and BookAuthor are empty when the book has since been deleted.
type ExportRow struct {
	LoanID       int64
	BookID       int64
	BookTitle    string
	BookAuthor   string
	BorrowerName string
	BorrowedAt   time.Time
	ReturnedAt   *time.Time
}
