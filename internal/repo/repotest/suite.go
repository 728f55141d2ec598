// Package repotest holds the behavioural contract every repo.Store backend must
// honour, written once and run against each implementation.
package repotest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/repo"
)

// Factory returns a fresh, empty Store for one subtest. Implementations should
// register any teardown with t.Cleanup.
type Factory func(t *testing.T) repo.Store

// Run executes the full conformance suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s repo.Store)
	}{
		{"CreateBook_assignsIDAndAvailableStatus", testCreateBook},
		{"CreateBook_ignoresSuppliedStatus", testCreateBookIgnoresStatus},
		{"ListBooks_insertionOrder", testListBooksOrder},
		{"ListBooks_emptyIsNonNil", testListBooksEmpty},
		{"GetBook_notFound", testGetBookNotFound},
		{"SearchBooks_caseInsensitiveAcrossFields", testSearchBooks},
		{"SearchBooks_literalMatch", testSearchBooksLiteral},
		{"UpdateBook_mergesPatch", testUpdateBook},
		{"UpdateBook_notFound", testUpdateBookNotFound},
		{"DeleteBook_thenGetIsAbsent", testDeleteBook},
		{"DeleteBook_notFound", testDeleteBookNotFound},
		{"DeleteBook_keepsLoans", testDeleteBookKeepsLoans},
		{"IDs_neverReused", testIDsNeverReused},
		{"CreateLoan_flipsBookToBorrowed", testCreateLoan},
		{"CreateLoan_missingBookIsNotAnError", testCreateLoanMissingBook},
		{"CreateLoan_secondOpenLoanConflicts", testCreateLoanSecondOpenConflicts},
		{"ReturnBook_closesLoanAndFlipsBook", testReturnBook},
		{"ReturnBook_noOpenLoan", testReturnBookNoOpenLoan},
		{"ListLoans_filterByBook", testListLoansByBook},
		{"ListLoansByBorrower_caseInsensitiveExact", testListLoansByBorrower},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func book(title, author, isbn string) domain.Book {
	return domain.Book{Title: title, Author: author, ISBN: isbn}
}

func mustCreateBook(t *testing.T, s repo.Store, b domain.Book) domain.Book {
	t.Helper()
	got, err := s.CreateBook(context.Background(), b)
	require.NoError(t, err)
	return got
}

func mustBorrow(t *testing.T, s repo.Store, bookID int64, name string) domain.Loan {
	t.Helper()
	got, err := s.CreateLoan(context.Background(), domain.Loan{BookID: bookID, BorrowerName: name})
	require.NoError(t, err)
	return got
}

func testCreateBook(t *testing.T, s repo.Store) {
	got := mustCreateBook(t, s, domain.Book{Title: "Dune", Author: "Herbert", ISBN: "978-0441013593", Description: "Spice"})

	assert.Positive(t, got.ID)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "Herbert", got.Author)
	assert.Equal(t, "978-0441013593", got.ISBN)
	assert.Equal(t, "Spice", got.Description)
	assert.Equal(t, domain.StatusAvailable, got.Status)
}

func testCreateBookIgnoresStatus(t *testing.T, s repo.Store) {
	in := book("Dune", "Herbert", "")
	in.Status = domain.StatusBorrowed

	got := mustCreateBook(t, s, in)

	assert.Equal(t, domain.StatusAvailable, got.Status)
}

func testListBooksOrder(t *testing.T, s repo.Store) {
	a := mustCreateBook(t, s, book("Zebra", "Z", ""))
	b := mustCreateBook(t, s, book("Apple", "A", ""))
	c := mustCreateBook(t, s, book("Mango", "M", ""))

	got, err := s.ListBooks(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func testListBooksEmpty(t *testing.T, s repo.Store) {
	got, err := s.ListBooks(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func testGetBookNotFound(t *testing.T, s repo.Store) {
	_, err := s.GetBook(context.Background(), 424242)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testSearchBooks(t *testing.T, s repo.Store) {
	ctx := context.Background()
	dune := mustCreateBook(t, s, book("Dune", "Frank Herbert", "9780441013593"))
	foundation := mustCreateBook(t, s, book("Foundation", "Isaac Asimov", "9780553293357"))

	got, err := s.SearchBooks(ctx, "dun")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dune.ID, got[0].ID)

	got, err = s.SearchBooks(ctx, "ASIMOV")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, foundation.ID, got[0].ID)

	got, err = s.SearchBooks(ctx, "0553")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, foundation.ID, got[0].ID)

	got, err = s.SearchBooks(ctx, "978")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.SearchBooks(ctx, "tolkien")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func testSearchBooksLiteral(t *testing.T, s repo.Store) {
	mustCreateBook(t, s, book("Dune", "Herbert", ""))

	got, err := s.SearchBooks(context.Background(), "%")

	require.NoError(t, err)
	assert.Empty(t, got, "pattern characters must match literally")
}

func testUpdateBook(t *testing.T, s repo.Store) {
	created := mustCreateBook(t, s, domain.Book{Title: "Dune", Author: "Herbert", ISBN: "123"})
	title := "Dune Messiah"
	desc := "Second book"

	got, err := s.UpdateBook(context.Background(), created.ID, domain.BookPatch{Title: &title, Description: &desc})

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, "Herbert", got.Author, "unpatched field must be kept")
	assert.Equal(t, "123", got.ISBN)
	assert.Equal(t, "Second book", got.Description)

	fetched, err := s.GetBook(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, got, fetched)
}

func testUpdateBookNotFound(t *testing.T, s repo.Store) {
	title := "x"
	_, err := s.UpdateBook(context.Background(), 424242, domain.BookPatch{Title: &title})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDeleteBook(t *testing.T, s repo.Store) {
	ctx := context.Background()
	created := mustCreateBook(t, s, book("Dune", "Herbert", ""))

	require.NoError(t, s.DeleteBook(ctx, created.ID))

	_, err := s.GetBook(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testDeleteBookNotFound(t *testing.T, s repo.Store) {
	err := s.DeleteBook(context.Background(), 424242)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDeleteBookKeepsLoans(t *testing.T, s repo.Store) {
	ctx := context.Background()
	created := mustCreateBook(t, s, book("Dune", "Herbert", ""))
	loan := mustBorrow(t, s, created.ID, "Alice")

	require.NoError(t, s.DeleteBook(ctx, created.ID))

	loans, err := s.ListLoans(ctx, &created.ID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, loan.ID, loans[0].ID)
}

func testIDsNeverReused(t *testing.T, s repo.Store) {
	ctx := context.Background()
	seenBooks := map[int64]bool{}
	seenLoans := map[int64]bool{}
	var lastBook, lastLoan int64

	for i := 0; i < 3; i++ {
		b := mustCreateBook(t, s, book("Dune", "Herbert", ""))
		assert.False(t, seenBooks[b.ID], "book id %d reused", b.ID)
		assert.Greater(t, b.ID, lastBook)
		seenBooks[b.ID], lastBook = true, b.ID

		l := mustBorrow(t, s, b.ID, "Alice")
		assert.False(t, seenLoans[l.ID], "loan id %d reused", l.ID)
		assert.Greater(t, l.ID, lastLoan)
		seenLoans[l.ID], lastLoan = true, l.ID

		_, err := s.ReturnBook(ctx, b.ID)
		require.NoError(t, err)
		require.NoError(t, s.DeleteBook(ctx, b.ID))
	}
}

func testCreateLoan(t *testing.T, s repo.Store) {
	ctx := context.Background()
	b := mustCreateBook(t, s, book("1984", "Orwell", ""))

	loan := mustBorrow(t, s, b.ID, "Alice")

	assert.Positive(t, loan.ID)
	assert.Equal(t, b.ID, loan.BookID)
	assert.Equal(t, "Alice", loan.BorrowerName)
	assert.False(t, loan.BorrowedAt.IsZero())
	assert.Nil(t, loan.ReturnedAt)

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBorrowed, got.Status)

	loans, err := s.ListLoans(ctx, &b.ID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.True(t, loans[0].Open())
}

func testCreateLoanMissingBook(t *testing.T, s repo.Store) {
	loan, err := s.CreateLoan(context.Background(), domain.Loan{BookID: 424242, BorrowerName: "Alice"})

	require.NoError(t, err)
	assert.Equal(t, int64(424242), loan.BookID)
}

// testCreateLoanSecondOpenConflicts: a book has at most one open loan, and the
// store itself refuses the second one without touching what is stored.
func testCreateLoanSecondOpenConflicts(t *testing.T, s repo.Store) {
	ctx := context.Background()
	b := mustCreateBook(t, s, book("1984", "Orwell", ""))
	first := mustBorrow(t, s, b.ID, "Alice")

	_, err := s.CreateLoan(ctx, domain.Loan{BookID: b.ID, BorrowerName: "Bob"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	loans, err := s.ListLoans(ctx, &b.ID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, first.ID, loans[0].ID)
	assert.True(t, loans[0].Open())

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBorrowed, got.Status)

	// Other books are unaffected.
	other := mustCreateBook(t, s, book("Emma", "Austen", ""))
	mustBorrow(t, s, other.ID, "Bob")
}

func testReturnBook(t *testing.T, s repo.Store) {
	ctx := context.Background()
	b := mustCreateBook(t, s, book("1984", "Orwell", ""))
	opened := mustBorrow(t, s, b.ID, "Alice")

	closed, err := s.ReturnBook(ctx, b.ID)

	require.NoError(t, err)
	assert.Equal(t, opened.ID, closed.ID)
	require.NotNil(t, closed.ReturnedAt)
	assert.False(t, closed.ReturnedAt.Before(closed.BorrowedAt))

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, got.Status)

	// The book can be borrowed again once returned.
	again := mustBorrow(t, s, b.ID, "Bob")
	assert.NotEqual(t, opened.ID, again.ID)
}

func testReturnBookNoOpenLoan(t *testing.T, s repo.Store) {
	ctx := context.Background()
	b := mustCreateBook(t, s, book("1984", "Orwell", ""))
	mustBorrow(t, s, b.ID, "Alice")
	_, err := s.ReturnBook(ctx, b.ID)
	require.NoError(t, err)

	_, err = s.ReturnBook(ctx, b.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	loans, err := s.ListLoans(ctx, &b.ID)
	require.NoError(t, err)
	require.Len(t, loans, 1, "a failed return must not create or change loans")
	assert.NotNil(t, loans[0].ReturnedAt)
}

func testListLoansByBook(t *testing.T, s repo.Store) {
	ctx := context.Background()
	a := mustCreateBook(t, s, book("A", "A", ""))
	b := mustCreateBook(t, s, book("B", "B", ""))
	l1 := mustBorrow(t, s, a.ID, "Alice")
	l2 := mustBorrow(t, s, b.ID, "Bob")
	_, err := s.ReturnBook(ctx, a.ID)
	require.NoError(t, err)
	l3 := mustBorrow(t, s, a.ID, "Carol")

	all, err := s.ListLoans(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{l1.ID, l2.ID, l3.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	forA, err := s.ListLoans(ctx, &a.ID)
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.Equal(t, []int64{l1.ID, l3.ID}, []int64{forA[0].ID, forA[1].ID})
}

func testListLoansByBorrower(t *testing.T, s repo.Store) {
	ctx := context.Background()
	a := mustCreateBook(t, s, book("A", "A", ""))
	b := mustCreateBook(t, s, book("B", "B", ""))
	alice := mustBorrow(t, s, a.ID, "Alice")
	mustBorrow(t, s, b.ID, "Alicia")

	got, err := s.ListLoansByBorrower(ctx, "aLiCe")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alice.ID, got[0].ID)

	none, err := s.ListLoansByBorrower(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
