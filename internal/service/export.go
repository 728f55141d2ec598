package service

import (
	"context"
	"fmt"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/repo"
)

// ExportService assembles the loan ledger: every loan joined with its book.
type ExportService struct {
	books repo.BookRepo
	loans repo.LoanRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(books repo.BookRepo, loans repo.LoanRepo) *ExportService {
	return &ExportService{books: books, loans: loans}
}

// Export returns one ExportRow per loan in loan insertion order.
// Loans whose book has been deleted keep empty title and author.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	books, err := s.books.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	loans, err := s.loans.ListLoans(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	byID := make(map[int64]domain.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	rows := make([]domain.ExportRow, 0, len(loans))
	for _, l := range loans {
		row := domain.ExportRow{
			LoanID:       l.ID,
			BookID:       l.BookID,
			BorrowerName: l.BorrowerName,
			BorrowedAt:   l.BorrowedAt,
			ReturnedAt:   l.ReturnedAt,
		}
		if b, ok := byID[l.BookID]; ok {
			row.BookTitle = b.Title
			row.BookAuthor = b.Author
		}
		rows = append(rows, row)
	}
	return rows, nil
}
