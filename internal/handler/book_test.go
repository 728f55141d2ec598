package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/handler"
	"github.com/pkordes/libris/internal/handler/gen"
)

// mockBookServicer is a test double for handler.BookServicer.
// Set only the method fields your test needs.
type mockBookServicer struct {
	list    func(ctx context.Context) ([]domain.Book, error)
	search  func(ctx context.Context, query string) ([]domain.Book, error)
	getByID func(ctx context.Context, id int64) (domain.Book, error)
	create  func(ctx context.Context, book domain.Book) (domain.Book, error)
	update  func(ctx context.Context, id int64, patch domain.BookPatch) (domain.Book, error)
	delete  func(ctx context.Context, id int64) error
}

func (m *mockBookServicer) List(ctx context.Context) ([]domain.Book, error) {
	return m.list(ctx)
}
func (m *mockBookServicer) Search(ctx context.Context, q string) ([]domain.Book, error) {
	return m.search(ctx, q)
}
func (m *mockBookServicer) GetByID(ctx context.Context, id int64) (domain.Book, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookServicer) Create(ctx context.Context, b domain.Book) (domain.Book, error) {
	return m.create(ctx, b)
}
func (m *mockBookServicer) Update(ctx context.Context, id int64, p domain.BookPatch) (domain.Book, error) {
	return m.update(ctx, id, p)
}
func (m *mockBookServicer) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

// compile-time check: mockBookServicer must satisfy handler.BookServicer.
var _ handler.BookServicer = (*mockBookServicer)(nil)

func newBookHTTPHandler(svc handler.BookServicer) http.Handler {
	return newHTTPHandler(handler.NewServer(svc, nil, nil))
}

func bookFixture() domain.Book {
	return domain.Book{
		ID:          1,
		Title:       "1984",
		Author:      "George Orwell",
		ISBN:        "978-0451524935",
		Description: "Dystopia",
		Status:      domain.StatusAvailable,
	}
}

// ---- GET /api/books --------------------------------------------------------

func TestListBooks_200_FullList(t *testing.T) {
	svc := &mockBookServicer{
		list: func(_ context.Context) ([]domain.Book, error) {
			return []domain.Book{bookFixture()}, nil
		},
		search: func(_ context.Context, _ string) ([]domain.Book, error) {
			t.Fatal("Search must not be called without q")
			return nil, nil
		},
	}

	rec := do(newBookHTTPHandler(svc), http.MethodGet, "/api/books", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []gen.Book
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "1984", resp[0].Title)
	assert.Equal(t, gen.Available, resp[0].Status)
}

func TestListBooks_200_EmptyIsArray(t *testing.T) {
	svc := &mockBookServicer{
		list: func(_ context.Context) ([]domain.Book, error) { return nil, nil },
	}

	rec := do(newBookHTTPHandler(svc), http.MethodGet, "/api/books", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListBooks_WithQuery_Searches(t *testing.T) {
	var seen string
	svc := &mockBookServicer{
		search: func(_ context.Context, q string) ([]domain.Book, error) {
			seen = q
			return []domain.Book{}, nil
		},
	}

	rec := do(newBookHTTPHandler(svc), http.MethodGet, "/api/books?q=dun", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dun", seen)
}

func TestListBooks_EmptyQuery_Lists(t *testing.T) {
	called := false
	svc := &mockBookServicer{
		list: func(_ context.Context) ([]domain.Book, error) {
			called = true
			return nil, nil
		},
	}

	rec := do(newBookHTTPHandler(svc), http.MethodGet, "/api/books?q=", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

// ---- GET /api/books/{id} ---------------------------------------------------

func TestGetBook_200(t *testing.T) {
	svc := &mockBookServicer{
		getByID: func(_ context.Context, id int64) (domain.Book, error) {
			b := bookFixture()
			b.ID = id
			return b, nil
		},
	}

	rec := do(newBookHTTPHandler(svc), http.MethodGet, "/api/books/5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp gen.Book
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(5), resp.Id)
	require.NotNil(t, resp.Isbn)
	assert.Equal(t, "978-0451524935", *resp.Isbn)
}

func TestGetBook_200_OmitsEmptyOptionalFields(t *testing.T) {
	svc := &mockBookServicer{
		getByID: func(_ context.Context, id int64) (domain.Book, error) {
			return domain.Book{ID: id, Title: "Dune", Author: "Herbert", Status: domain.StatusAvailable}, nil
		},
	}

	rec := do(newBookHTTPHandler(svc), http.MethodGet, "/api/books/2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"title":"Dune","author":"Herbert","status":"available"}`, rec.Body.String())
}

func TestGetBook_404(t *testing.T) {
	svc := &mockBookServicer{
		getByID: func(_ context.Context, _ int64) (domain.Book, error) {
			return domain.Book{}, fmt.Errorf("service.BookService.GetByID: %w", domain.ErrNotFound)
		},
	}

	rec := do(newBookHTTPHandler(svc), http.MethodGet, "/api/books/999", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", decodeError(t, rec))
}

func TestGetBook_400_NonNumericID(t *testing.T) {
	rec := do(newBookHTTPHandler(&mockBookServicer{}), http.MethodGet, "/api/books/abc", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "id")
}

// ---- POST /api/books -------------------------------------------------------

func TestCreateBook_201(t *testing.T) {
	var got domain.Book
	svc := &mockBookServicer{
		create: func(_ context.Context, b domain.Book) (domain.Book, error) {
			got = b
			b.ID = 1
			b.Status = domain.StatusAvailable
			return b, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"title":  "1984",
		"author": "George Orwell",
		"isbn":   "978-0451524935",
		"status": "borrowed",
	})
	rec := do(newBookHTTPHandler(svc), http.MethodPost, "/api/books", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "978-0451524935", got.ISBN)
	assert.Empty(t, got.Status, "client-supplied status must not reach the service")

	var resp gen.Book
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.Id)
	assert.Equal(t, gen.Available, resp.Status)
}

func TestCreateBook_400_ValidationError(t *testing.T) {
	svc := &mockBookServicer{
		create: func(_ context.Context, _ domain.Book) (domain.Book, error) {
			return domain.Book{}, fmt.Errorf("service.BookService.Create: %w: Title is required", domain.ErrValidation)
		},
	}

	rec := do(newBookHTTPHandler(svc), http.MethodPost, "/api/books", jsonBody(t, map[string]any{"author": "X"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title is required", decodeError(t, rec))
}

func TestCreateBook_400_MalformedJSON(t *testing.T) {
	rec := do(newBookHTTPHandler(&mockBookServicer{}), http.MethodPost, "/api/books", strings.NewReader("{not json"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))
}

func TestCreateBook_500_UnexpectedError(t *testing.T) {
	svc := &mockBookServicer{
		create: func(_ context.Context, _ domain.Book) (domain.Book, error) {
			return domain.Book{}, errors.New("disk on fire")
		},
	}

	rec := do(newBookHTTPHandler(svc), http.MethodPost, "/api/books", jsonBody(t, map[string]any{"title": "T", "author": "A"}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec))
}

// ---- PATCH /api/books/{id} -------------------------------------------------

func TestUpdateBook_200(t *testing.T) {
	var gotPatch domain.BookPatch
	svc := &mockBookServicer{
		update: func(_ context.Context, id int64, p domain.BookPatch) (domain.Book, error) {
			gotPatch = p
			return p.Apply(bookFixture()), nil
		},
	}

	rec := do(newBookHTTPHandler(svc), http.MethodPatch, "/api/books/1", jsonBody(t, map[string]any{"title": "Nineteen Eighty-Four"}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotPatch.Title)
	assert.Nil(t, gotPatch.Author)
	var resp gen.Book
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Nineteen Eighty-Four", resp.Title)
	assert.Equal(t, "George Orwell", resp.Author)
}

func TestUpdateBook_404(t *testing.T) {
	svc := &mockBookServicer{
		update: func(_ context.Context, _ int64, _ domain.BookPatch) (domain.Book, error) {
			return domain.Book{}, domain.ErrNotFound
		},
	}

	rec := do(newBookHTTPHandler(svc), http.MethodPatch, "/api/books/9", jsonBody(t, map[string]any{"title": "x"}))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", decodeError(t, rec))
}

// ---- DELETE /api/books/{id} ------------------------------------------------

func TestDeleteBook_204(t *testing.T) {
	svc := &mockBookServicer{
		delete: func(_ context.Context, _ int64) error { return nil },
	}

	rec := do(newBookHTTPHandler(svc), http.MethodDelete, "/api/books/1", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeleteBook_404(t *testing.T) {
	svc := &mockBookServicer{
		delete: func(_ context.Context, _ int64) error { return domain.ErrNotFound },
	}

	rec := do(newBookHTTPHandler(svc), http.MethodDelete, "/api/books/1", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", decodeError(t, rec))
}
