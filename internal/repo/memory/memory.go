// Package memory provides an in-process implementation of repo.Store.
// State lives for the lifetime of the Store value; nothing is persisted.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/repo"
)

// Store keeps books and loans in maps keyed by id, plus id slices that record
// insertion order. Ids come from per-entity counters that only ever grow.
type Store struct {
	mu sync.RWMutex

	books     map[int64]domain.Book
	bookOrder []int64
	nextBook  int64

	loans     map[int64]domain.Loan
	loanOrder []int64
	nextLoan  int64

	now func() time.Time
}

// compile-time check: *Store must satisfy repo.Store.
var _ repo.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of loan timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty Store. Each call yields an isolated instance.
func New(opts ...Option) *Store {
	s := &Store{
		books:    make(map[int64]domain.Book),
		loans:    make(map[int64]domain.Loan),
		nextBook: 1,
		nextLoan: 1,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ListBooks(_ context.Context) ([]domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterBooks(func(domain.Book) bool { return true }), nil
}

func (s *Store) GetBook(_ context.Context, id int64) (domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return domain.Book{}, fmt.Errorf("memory.Store.GetBook: %w", domain.ErrNotFound)
	}
	return b, nil
}

func (s *Store) SearchBooks(_ context.Context, query string) ([]domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	return s.filterBooks(func(b domain.Book) bool {
		return strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			(b.ISBN != "" && strings.Contains(strings.ToLower(b.ISBN), q))
	}), nil
}

func (s *Store) CreateBook(_ context.Context, book domain.Book) (domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book.ID = s.nextBook
	s.nextBook++
	book.Status = domain.StatusAvailable

	s.books[book.ID] = book
	s.bookOrder = append(s.bookOrder, book.ID)
	return book, nil
}

func (s *Store) UpdateBook(_ context.Context, id int64, patch domain.BookPatch) (domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.books[id]
	if !ok {
		return domain.Book{}, fmt.Errorf("memory.Store.UpdateBook: %w", domain.ErrNotFound)
	}
	updated := patch.Apply(existing)
	updated.ID = id
	s.books[id] = updated
	return updated, nil
}

func (s *Store) DeleteBook(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return fmt.Errorf("memory.Store.DeleteBook: %w", domain.ErrNotFound)
	}
	delete(s.books, id)
	for i, bid := range s.bookOrder {
		if bid == id {
			s.bookOrder = append(s.bookOrder[:i], s.bookOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListLoans(_ context.Context, bookID *int64) ([]domain.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterLoans(func(l domain.Loan) bool {
		return bookID == nil || l.BookID == *bookID
	}), nil
}

func (s *Store) ListLoansByBorrower(_ context.Context, name string) ([]domain.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterLoans(func(l domain.Loan) bool { return l.SameBorrower(name) }), nil
}

// CreateLoan records the loan and flips the book to borrowed while holding the
// write lock, so readers never observe one without the other. A book that
// already has an open loan yields domain.ErrConflict.
func (s *Store) CreateLoan(_ context.Context, loan domain.Loan) (domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasOpenLoan(loan.BookID) {
		return domain.Loan{}, fmt.Errorf("memory.Store.CreateLoan: book %d: %w", loan.BookID, domain.ErrConflict)
	}
	loan.BorrowedAt = s.now()
	return s.insertLoan(loan), nil
}

// insertLoan stores loan as open under the next id and marks its book
// borrowed. Callers must hold s.mu for writing.
func (s *Store) insertLoan(loan domain.Loan) domain.Loan {
	loan.ID = s.nextLoan
	s.nextLoan++
	loan.ReturnedAt = nil

	s.loans[loan.ID] = loan
	s.loanOrder = append(s.loanOrder, loan.ID)

	if b, ok := s.books[loan.BookID]; ok {
		b.Status = domain.StatusBorrowed
		s.books[b.ID] = b
	}
	return loan
}

// hasOpenLoan reports whether bookID has an unreturned loan.
// Callers must hold s.mu.
func (s *Store) hasOpenLoan(bookID int64) bool {
	for _, l := range s.loans {
		if l.BookID == bookID && l.Open() {
			return true
		}
	}
	return false
}

func (s *Store) ReturnBook(_ context.Context, bookID int64) (domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		open  domain.Loan
		found bool
	)
	for _, id := range s.loanOrder {
		l := s.loans[id]
		if l.BookID != bookID || !l.Open() {
			continue
		}
		// loanOrder is ascending by id, so only a strictly earlier BorrowedAt
		// displaces the current pick.
		if !found || l.BorrowedAt.Before(open.BorrowedAt) {
			open, found = l, true
		}
	}
	if !found {
		return domain.Loan{}, fmt.Errorf("memory.Store.ReturnBook: %w", domain.ErrNotFound)
	}

	returnedAt := s.now()
	open.ReturnedAt = &returnedAt
	s.loans[open.ID] = open

	if b, ok := s.books[bookID]; ok {
		b.Status = domain.StatusAvailable
		s.books[bookID] = b
	}

	ra := returnedAt
	open.ReturnedAt = &ra
	return open, nil
}

// filterBooks returns the books matching keep in insertion order.
// Callers must hold s.mu.
func (s *Store) filterBooks(keep func(domain.Book) bool) []domain.Book {
	out := []domain.Book{}
	for _, id := range s.bookOrder {
		if b := s.books[id]; keep(b) {
			out = append(out, b)
		}
	}
	return out
}

// filterLoans returns copies of the loans matching keep in insertion order.
// ReturnedAt is copied so callers cannot mutate stored state through it.
// Callers must hold s.mu.
func (s *Store) filterLoans(keep func(domain.Loan) bool) []domain.Loan {
	out := []domain.Loan{}
	for _, id := range s.loanOrder {
		l := s.loans[id]
		if !keep(l) {
			continue
		}
		if l.ReturnedAt != nil {
			ra := *l.ReturnedAt
			l.ReturnedAt = &ra
		}
		out = append(out, l)
	}
	return out
}
