package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/repo/memory"
	"github.com/pkordes/libris/internal/service"
)

// slowLookupStore widens the gap between Borrow's availability check and its
// insert, so concurrent borrows all pass the check before any insert runs.
type slowLookupStore struct {
	*memory.Store
}

func (s slowLookupStore) GetBook(ctx context.Context, id int64) (domain.Book, error) {
	b, err := s.Store.GetBook(ctx, id)
	time.Sleep(time.Millisecond)
	return b, err
}

func TestLoanService_Borrow_ConcurrentOnlyOneWins(t *testing.T) {
	for round := 0; round < 5; round++ {
		store := slowLookupStore{memory.New()}
		svc := service.NewLoanService(store, store)
		ctx := context.Background()
		b, err := store.CreateBook(ctx, domain.Book{Title: "Dune", Author: "Herbert"})
		require.NoError(t, err)

		const n = 16
		errs := make(chan error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Borrow(ctx, domain.Loan{BookID: b.ID, BorrowerName: "Alice"})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		wins := 0
		for err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
		assert.Equal(t, 1, wins, "round %d", round)

		open := 0
		loans, err := store.ListLoans(ctx, &b.ID)
		require.NoError(t, err)
		for _, l := range loans {
			if l.Open() {
				open++
			}
		}
		assert.Equal(t, 1, open, "round %d: open loans for one book", round)
	}
}
