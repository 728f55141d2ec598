package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/domain"
)

// seedOpenLoan stores an open loan directly, bypassing CreateLoan's
// one-open-loan check, so ReturnBook can be tested against several.
func seedOpenLoan(t *testing.T, s *Store, bookID int64, name string, at time.Time) domain.Loan {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLoan(domain.Loan{BookID: bookID, BorrowerName: name, BorrowedAt: at})
}

// ReturnBook closes the loan with the earliest BorrowedAt, whatever its id.
func TestStore_ReturnBook_TieBreakEarliestBorrowedAt(t *testing.T) {
	early := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	s := New()
	ctx := context.Background()

	b, err := s.CreateBook(ctx, domain.Book{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	first := seedOpenLoan(t, s, b.ID, "Alice", late)
	second := seedOpenLoan(t, s, b.ID, "Bob", early)

	closed, err := s.ReturnBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, closed.ID)

	closed, err = s.ReturnBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, closed.ID)

	_, err = s.ReturnBook(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ReturnBook_TieBreakSameInstantLowestID(t *testing.T) {
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s := New()
	ctx := context.Background()

	b, err := s.CreateBook(ctx, domain.Book{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	first := seedOpenLoan(t, s, b.ID, "Alice", at)
	seedOpenLoan(t, s, b.ID, "Bob", at)

	closed, err := s.ReturnBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, closed.ID)
}

func TestStore_WithClockStampsLoans(t *testing.T) {
	at := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return at }))
	ctx := context.Background()

	b, err := s.CreateBook(ctx, domain.Book{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	loan, err := s.CreateLoan(ctx, domain.Loan{BookID: b.ID, BorrowerName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, at, loan.BorrowedAt)

	closed, err := s.ReturnBook(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.ReturnedAt)
	assert.Equal(t, at, *closed.ReturnedAt)
}
