// Package service contains the business logic for the Libris API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No storage code lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/repo"
)

// BookService implements business logic for Book operations.
type BookService struct {
	books repo.BookRepo
}

// NewBookService constructs a BookService backed by the provided BookRepo.
func NewBookService(r repo.BookRepo) *BookService {
	return &BookService{books: r}
}

// List returns all books in insertion order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *BookService) List(ctx context.Context) ([]domain.Book, error) {
	books, err := s.books.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.BookService.List: %w", err)
	}
	return nonNil(books), nil
}

// Search returns the books whose title, author or isbn contains query.
// An empty query is the caller's cue to use List instead; it is passed
// through unchanged here.
func (s *BookService) Search(ctx context.Context, query string) ([]domain.Book, error) {
	books, err := s.books.SearchBooks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service.BookService.Search: %w", err)
	}
	return nonNil(books), nil
}

// GetByID returns a single book.
// Returns domain.ErrNotFound if it does not exist.
func (s *BookService) GetByID(ctx context.Context, id int64) (domain.Book, error) {
	book, err := s.books.GetBook(ctx, id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("service.BookService.GetByID: %w", err)
	}
	return book, nil
}

// Create validates and persists a new book. Any status on the input is
// discarded: new books are always available.
func (s *BookService) Create(ctx context.Context, book domain.Book) (domain.Book, error) {
	if err := validateBook(book); err != nil {
		return domain.Book{}, fmt.Errorf("service.BookService.Create: %w", err)
	}
	book.ID = 0
	book.Status = domain.StatusAvailable

	created, err := s.books.CreateBook(ctx, book)
	if err != nil {
		return domain.Book{}, fmt.Errorf("service.BookService.Create: %w", err)
	}
	return created, nil
}

// Update applies a partial update. Title and author, when present, must be
// non-blank. The status is owned by the loan workflow and is never patched here.
func (s *BookService) Update(ctx context.Context, id int64, patch domain.BookPatch) (domain.Book, error) {
	if err := validatePatch(patch); err != nil {
		return domain.Book{}, fmt.Errorf("service.BookService.Update: %w", err)
	}
	patch.Status = nil

	updated, err := s.books.UpdateBook(ctx, id, patch)
	if err != nil {
		return domain.Book{}, fmt.Errorf("service.BookService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a book. Its loans are kept as history.
// Returns domain.ErrNotFound if it does not exist.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	if err := s.books.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("service.BookService.Delete: %w", err)
	}
	return nil
}

// validateBook enforces the required catalog fields.
// Whitespace-only values are rejected as empty.
func validateBook(b domain.Book) error {
	var problems []string
	if strings.TrimSpace(b.Title) == "" {
		problems = append(problems, "Title is required")
	}
	if strings.TrimSpace(b.Author) == "" {
		problems = append(problems, "Author is required")
	}
	return validationError(problems)
}

func validatePatch(p domain.BookPatch) error {
	var problems []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		problems = append(problems, "Title must not be empty")
	}
	if p.Author != nil && strings.TrimSpace(*p.Author) == "" {
		problems = append(problems, "Author must not be empty")
	}
	return validationError(problems)
}

// validationError folds field problems into one domain.ErrValidation, or nil.
func validationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
