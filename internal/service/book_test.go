package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/repo"
	"github.com/pkordes/libris/internal/service"
)

// mockBookRepo is a hand-written test double for repo.BookRepo.
// Each method is a function field; set only the ones your test needs.
type mockBookRepo struct {
	list   func(ctx context.Context) ([]domain.Book, error)
	get    func(ctx context.Context, id int64) (domain.Book, error)
	search func(ctx context.Context, query string) ([]domain.Book, error)
	create func(ctx context.Context, book domain.Book) (domain.Book, error)
	update func(ctx context.Context, id int64, patch domain.BookPatch) (domain.Book, error)
	delete func(ctx context.Context, id int64) error
}

func (m *mockBookRepo) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return m.list(ctx)
}
func (m *mockBookRepo) GetBook(ctx context.Context, id int64) (domain.Book, error) {
	return m.get(ctx, id)
}
func (m *mockBookRepo) SearchBooks(ctx context.Context, query string) ([]domain.Book, error) {
	return m.search(ctx, query)
}
func (m *mockBookRepo) CreateBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	return m.create(ctx, book)
}
func (m *mockBookRepo) UpdateBook(ctx context.Context, id int64, patch domain.BookPatch) (domain.Book, error) {
	return m.update(ctx, id, patch)
}
func (m *mockBookRepo) DeleteBook(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

// compile-time check: mockBookRepo must satisfy repo.BookRepo.
var _ repo.BookRepo = (*mockBookRepo)(nil)

// ---- helpers ---------------------------------------------------------------

func echoBookRepo() *mockBookRepo {
	// Echoes the input back, assigning id 1. Enough for tests that only
	// exercise validation.
	return &mockBookRepo{
		create: func(_ context.Context, b domain.Book) (domain.Book, error) {
			b.ID = 1
			return b, nil
		},
		update: func(_ context.Context, id int64, p domain.BookPatch) (domain.Book, error) {
			return p.Apply(domain.Book{ID: id, Title: "Old", Author: "Old", Status: domain.StatusBorrowed}), nil
		},
	}
}

func strPtr(s string) *string { return &s }

// ---- Create ----------------------------------------------------------------

func TestBookService_Create_Valid(t *testing.T) {
	svc := service.NewBookService(echoBookRepo())

	got, err := svc.Create(context.Background(), domain.Book{Title: "1984", Author: "Orwell"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "1984", got.Title)
	assert.Equal(t, domain.StatusAvailable, got.Status)
}

func TestBookService_Create_IgnoresClientStatus(t *testing.T) {
	svc := service.NewBookService(echoBookRepo())

	got, err := svc.Create(context.Background(), domain.Book{Title: "1984", Author: "Orwell", Status: domain.StatusBorrowed})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, got.Status)
}

func TestBookService_Create_MissingTitle(t *testing.T) {
	svc := service.NewBookService(echoBookRepo())

	_, err := svc.Create(context.Background(), domain.Book{Author: "Orwell"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Title is required")
}

func TestBookService_Create_WhitespaceAuthor(t *testing.T) {
	svc := service.NewBookService(echoBookRepo())

	_, err := svc.Create(context.Background(), domain.Book{Title: "1984", Author: "   "})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Author is required")
}

func TestBookService_Create_BothMissing_ReportsBoth(t *testing.T) {
	svc := service.NewBookService(echoBookRepo())

	_, err := svc.Create(context.Background(), domain.Book{})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Title is required; Author is required")
}

func TestBookService_Create_RepoError(t *testing.T) {
	dbErr := errors.New("db down")
	svc := service.NewBookService(&mockBookRepo{
		create: func(_ context.Context, _ domain.Book) (domain.Book, error) { return domain.Book{}, dbErr },
	})

	_, err := svc.Create(context.Background(), domain.Book{Title: "1984", Author: "Orwell"})

	assert.ErrorIs(t, err, dbErr)
}

// ---- List / Search / Get ---------------------------------------------------

func TestBookService_List_NilBecomesEmpty(t *testing.T) {
	svc := service.NewBookService(&mockBookRepo{
		list: func(_ context.Context) ([]domain.Book, error) { return nil, nil },
	})

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBookService_Search_PassesQuery(t *testing.T) {
	var seen string
	svc := service.NewBookService(&mockBookRepo{
		search: func(_ context.Context, q string) ([]domain.Book, error) {
			seen = q
			return []domain.Book{{ID: 2, Title: "Dune", Author: "Herbert"}}, nil
		},
	})

	got, err := svc.Search(context.Background(), "dun")

	require.NoError(t, err)
	assert.Equal(t, "dun", seen)
	require.Len(t, got, 1)
	assert.Equal(t, "Dune", got[0].Title)
}

func TestBookService_GetByID_NotFound(t *testing.T) {
	svc := service.NewBookService(&mockBookRepo{
		get: func(_ context.Context, _ int64) (domain.Book, error) { return domain.Book{}, domain.ErrNotFound },
	})

	_, err := svc.GetByID(context.Background(), 99)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Update ----------------------------------------------------------------

func TestBookService_Update_MergesFields(t *testing.T) {
	svc := service.NewBookService(echoBookRepo())

	got, err := svc.Update(context.Background(), 7, domain.BookPatch{Title: strPtr("New")})

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "Old", got.Author)
}

func TestBookService_Update_BlankTitle(t *testing.T) {
	svc := service.NewBookService(echoBookRepo())

	_, err := svc.Update(context.Background(), 7, domain.BookPatch{Title: strPtr(" ")})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookService_Update_StripsStatus(t *testing.T) {
	var seen domain.BookPatch
	svc := service.NewBookService(&mockBookRepo{
		update: func(_ context.Context, _ int64, p domain.BookPatch) (domain.Book, error) {
			seen = p
			return domain.Book{}, nil
		},
	})
	available := domain.StatusAvailable

	_, err := svc.Update(context.Background(), 7, domain.BookPatch{Status: &available})

	require.NoError(t, err)
	assert.Nil(t, seen.Status)
}

// ---- Delete ----------------------------------------------------------------

func TestBookService_Delete_NotFound(t *testing.T) {
	svc := service.NewBookService(&mockBookRepo{
		delete: func(_ context.Context, _ int64) error { return domain.ErrNotFound },
	})

	err := svc.Delete(context.Background(), 3)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
