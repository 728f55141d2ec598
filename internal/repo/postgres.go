package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the "postgres" goqu dialect
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/libris/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so the loan transactions below nest cleanly inside a test tx.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// uniqueViolation is the Postgres SQLSTATE for a unique index violation.
const uniqueViolation = "23505"

const (
	bookColumns = `id, title, author, isbn, description, status`
	loanColumns = `id, book_id, borrower_name, borrowed_at, returned_at`
)

// loanSelectColumns mirrors loanColumns for goqu-built queries.
var loanSelectColumns = []any{"id", "book_id", "borrower_name", "borrowed_at", "returned_at"}

// pgStore is the Postgres implementation of Store.
type pgStore struct {
	db db
	qb goqu.DialectWrapper
}

// NewPostgresStore constructs a Store backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
// The schema is created by the goose migrations in the migrations package.
func NewPostgresStore(db db) Store {
	return &pgStore{db: db, qb: goqu.Dialect("postgres")}
}

// ListBooks returns all books ordered by id, which is insertion order.
func (r *pgStore) ListBooks(ctx context.Context) ([]domain.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books ORDER BY id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.pgStore.ListBooks: %w", err)
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.pgStore.ListBooks: %w", err)
	}
	return books, nil
}

// GetBook retrieves a book by primary key.
func (r *pgStore) GetBook(ctx context.Context, id int64) (domain.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books WHERE id = @id`

	result, err := scanBook(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Book{}, fmt.Errorf("repo.pgStore.GetBook: %w", err)
	}
	return result, nil
}

// SearchBooks matches query as a literal substring. strpos is used instead of
// ILIKE so that % and _ in the query carry no pattern meaning.
func (r *pgStore) SearchBooks(ctx context.Context, query string) ([]domain.Book, error) {
	const q = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE strpos(lower(title), lower(@q)) > 0
		   OR strpos(lower(author), lower(@q)) > 0
		   OR strpos(lower(isbn), lower(@q)) > 0
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"q": query})
	if err != nil {
		return nil, fmt.Errorf("repo.pgStore.SearchBooks: %w", err)
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.pgStore.SearchBooks: %w", err)
	}
	return books, nil
}

// CreateBook inserts a new book row and returns the full persisted record.
func (r *pgStore) CreateBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	const q = `
		INSERT INTO books (title, author, isbn, description, status)
		VALUES (@title, @author, @isbn, @description, @status)
		RETURNING ` + bookColumns

	args := pgx.NamedArgs{
		"title":       book.Title,
		"author":      book.Author,
		"isbn":        book.ISBN,
		"description": book.Description,
		"status":      string(domain.StatusAvailable),
	}

	result, err := scanBook(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Book{}, fmt.Errorf("repo.pgStore.CreateBook: %w", err)
	}
	return result, nil
}

// UpdateBook overwrites the columns whose patch field is set. COALESCE keeps
// the stored value for every nil (NULL) argument.
func (r *pgStore) UpdateBook(ctx context.Context, id int64, patch domain.BookPatch) (domain.Book, error) {
	const q = `
		UPDATE books
		SET title       = COALESCE(@title, title),
		    author      = COALESCE(@author, author),
		    isbn        = COALESCE(@isbn, isbn),
		    description = COALESCE(@description, description),
		    status      = COALESCE(@status, status)
		WHERE id = @id
		RETURNING ` + bookColumns

	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	args := pgx.NamedArgs{
		"id":          id,
		"title":       patch.Title,
		"author":      patch.Author,
		"isbn":        patch.ISBN,
		"description": patch.Description,
		"status":      status,
	}

	result, err := scanBook(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Book{}, fmt.Errorf("repo.pgStore.UpdateBook: %w", err)
	}
	return result, nil
}

// DeleteBook removes a book by primary key. Loans are not touched.
func (r *pgStore) DeleteBook(ctx context.Context, id int64) error {
	const q = `DELETE FROM books WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.pgStore.DeleteBook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.pgStore.DeleteBook: %w", domain.ErrNotFound)
	}
	return nil
}

// ListLoans returns loans ordered by id, optionally restricted to one book.
func (r *pgStore) ListLoans(ctx context.Context, bookID *int64) ([]domain.Loan, error) {
	ds := r.qb.From("loans").Select(loanSelectColumns...).Order(goqu.I("id").Asc())
	if bookID != nil {
		ds = ds.Where(goqu.C("book_id").Eq(*bookID))
	}

	loans, err := r.queryLoans(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("repo.pgStore.ListLoans: %w", err)
	}
	return loans, nil
}

// ListLoansByBorrower matches the borrower name case-insensitively.
func (r *pgStore) ListLoansByBorrower(ctx context.Context, name string) ([]domain.Loan, error) {
	ds := r.qb.From("loans").
		Select(loanSelectColumns...).
		Where(goqu.L("lower(borrower_name) = lower(?)", name)).
		Order(goqu.I("id").Asc())

	loans, err := r.queryLoans(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("repo.pgStore.ListLoansByBorrower: %w", err)
	}
	return loans, nil
}

// CreateLoan inserts the loan and marks the book borrowed in one transaction.
// A second open loan for the same book trips the partial unique index and is
// reported as domain.ErrConflict.
func (r *pgStore) CreateLoan(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	const insertQ = `
		INSERT INTO loans (book_id, borrower_name, borrowed_at)
		VALUES (@book_id, @borrower_name, clock_timestamp())
		RETURNING ` + loanColumns
	const statusQ = `UPDATE books SET status = @status WHERE id = @id`

	var created domain.Loan
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		created, err = scanLoan(tx.QueryRow(ctx, insertQ, pgx.NamedArgs{
			"book_id":       loan.BookID,
			"borrower_name": loan.BorrowerName,
		}))
		if err != nil {
			return err
		}
		// Zero rows affected means the book does not exist; that is not an error here.
		_, err = tx.Exec(ctx, statusQ, pgx.NamedArgs{"id": loan.BookID, "status": string(domain.StatusBorrowed)})
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Loan{}, fmt.Errorf("repo.pgStore.CreateLoan: %w", domain.ErrConflict)
		}
		return domain.Loan{}, fmt.Errorf("repo.pgStore.CreateLoan: %w", err)
	}
	return created, nil
}

// ReturnBook closes the oldest open loan for the book and marks the book
// available in one transaction.
func (r *pgStore) ReturnBook(ctx context.Context, bookID int64) (domain.Loan, error) {
	const closeQ = `
		UPDATE loans
		SET returned_at = clock_timestamp()
		WHERE id = (
			SELECT id FROM loans
			WHERE book_id = @book_id AND returned_at IS NULL
			ORDER BY borrowed_at, id
			LIMIT 1
			FOR UPDATE
		)
		RETURNING ` + loanColumns
	const statusQ = `UPDATE books SET status = @status WHERE id = @id`

	var closed domain.Loan
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		closed, err = scanLoan(tx.QueryRow(ctx, closeQ, pgx.NamedArgs{"book_id": bookID}))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, statusQ, pgx.NamedArgs{"id": bookID, "status": string(domain.StatusAvailable)})
		return err
	})
	if err != nil {
		return domain.Loan{}, fmt.Errorf("repo.pgStore.ReturnBook: %w", err)
	}
	return closed, nil
}

// queryLoans renders a goqu dataset as a prepared statement and scans the rows.
func (r *pgStore) queryLoans(ctx context.Context, ds *goqu.SelectDataset) ([]domain.Loan, error) {
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := []domain.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return loans, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// collectBooks drains rows into a non-nil slice and closes them.
func collectBooks(rows pgx.Rows) ([]domain.Book, error) {
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return books, nil
}

// scanBook maps a single database row into a domain.Book.
func scanBook(s scanner) (domain.Book, error) {
	var (
		b      domain.Book
		status string
	)

	err := s.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Description, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Book{}, domain.ErrNotFound
		}
		return domain.Book{}, err
	}

	b.Status = domain.BookStatus(status)
	return b, nil
}

// scanLoan maps a single database row into a domain.Loan.
// It handles the nullable returned_at conversion.
func scanLoan(s scanner) (domain.Loan, error) {
	var (
		l          domain.Loan
		returnedAt pgtype.Timestamptz
	)

	err := s.Scan(&l.ID, &l.BookID, &l.BorrowerName, &l.BorrowedAt, &returnedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Loan{}, domain.ErrNotFound
		}
		return domain.Loan{}, err
	}

	if returnedAt.Valid {
		ra := returnedAt.Time
		l.ReturnedAt = &ra
	}
	return l, nil
}

// isUniqueViolation reports whether err carries a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
