package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/client"
	"github.com/pkordes/libris/internal/handler"
	"github.com/pkordes/libris/internal/handler/gen"
	"github.com/pkordes/libris/internal/repo/memory"
	"github.com/pkordes/libris/internal/service"
)

// newServer runs the real router over a fresh memory store.
func newServer(t *testing.T) *client.Client {
	t.Helper()
	store := memory.New()
	srv := handler.NewServer(
		service.NewBookService(store),
		service.NewLoanService(store, store),
		service.NewExportService(store, store),
	)
	ts := httptest.NewServer(handler.NewRouter(srv, handler.RouterConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}))
	t.Cleanup(ts.Close)
	return client.New(ts.URL, client.WithHTTPClient(ts.Client()))
}

func strPtr(s string) *string { return &s }

func TestClient_BookLifecycle(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	created, err := c.CreateBook(ctx, gen.CreateBookRequest{Title: "Dune", Author: "Herbert", Isbn: strPtr("0441013597")})
	require.NoError(t, err)
	assert.Equal(t, gen.Available, created.Status)

	_, err = c.CreateBook(ctx, gen.CreateBookRequest{Title: "Foundation", Author: "Asimov"})
	require.NoError(t, err)

	all, err := c.ListBooks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := c.ListBooks(ctx, "DUN")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.Id, found[0].Id)

	updated, err := c.UpdateBook(ctx, created.Id, gen.UpdateBookRequest{Description: strPtr("Spice")})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Spice", *updated.Description)
	assert.Equal(t, "Dune", updated.Title)

	require.NoError(t, c.DeleteBook(ctx, created.Id))
	_, err = c.GetBook(ctx, created.Id)
	assert.True(t, client.IsNotFound(err))
}

func TestClient_APIErrorCarriesServerMessage(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	_, err := c.CreateBook(ctx, gen.CreateBookRequest{Title: "", Author: "Orwell"})

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Title is required", apiErr.Message)
}

func TestClient_BorrowReturn(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	book, err := c.CreateBook(ctx, gen.CreateBookRequest{Title: "1984", Author: "Orwell"})
	require.NoError(t, err)

	loan, err := c.Borrow(ctx, book.Id, "Alice")
	require.NoError(t, err)
	assert.Nil(t, loan.ReturnedAt)

	_, err = c.Borrow(ctx, book.Id, "Bob")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Book is already borrowed", apiErr.Message)

	closed, err := c.Return(ctx, book.Id)
	require.NoError(t, err)
	assert.NotNil(t, closed.ReturnedAt)

	_, err = c.Return(ctx, book.Id)
	assert.True(t, client.IsNotFound(err))

	mine, err := c.ListLoans(ctx, client.LoanQuery{Borrower: "ALICE"})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	byBook, err := c.ListLoans(ctx, client.LoanQuery{BookID: &book.Id})
	require.NoError(t, err)
	assert.Len(t, byBook, 1)

	rows, err := c.Export(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1984", rows[0].BookTitle)

	csv, err := c.ExportCSV(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csv), "loan_id,"))
}

func TestClient_PostCarriesIdempotencyKey(t *testing.T) {
	var keys []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":1,"title":"T","author":"A","isbn":"","description":"","status":"available"}`)
	}))
	t.Cleanup(ts.Close)

	n := 0
	c := client.New(ts.URL, client.WithKeyFunc(func() string {
		n++
		return "key-" + strconv.Itoa(n)
	}))

	_, err := c.CreateBook(context.Background(), gen.CreateBookRequest{Title: "T", Author: "A"})
	require.NoError(t, err)
	_, err = c.CreateBook(context.Background(), gen.CreateBookRequest{Title: "T", Author: "A"})
	require.NoError(t, err)

	assert.Equal(t, []string{"key-1", "key-2"}, keys)
}

func TestClient_NonJSONErrorFallsBackToBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	err := client.New(ts.URL).Health(context.Background())

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}
