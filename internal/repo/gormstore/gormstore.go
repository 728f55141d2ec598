// Package gormstore implements repo.Store on top of GORM, for the SQLite and
// MySQL dialects. Postgres has its own hand-written pgx backend in package repo.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/repo"
)

// Supported driver names, as accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// bookRow is the GORM model for the books table.
type bookRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"type:varchar(512);not null"`
	Author      string `gorm:"type:varchar(512);not null"`
	ISBN        string `gorm:"column:isbn;type:varchar(64);not null;default:''"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"type:varchar(16);not null;default:'available'"`
}

func (bookRow) TableName() string { return "books" }

// loanRow is the GORM model for the loans table. BookID is deliberately not a
// foreign key: loans outlive the books they reference.
type loanRow struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	BookID       int64      `gorm:"not null;index"`
	BorrowerName string     `gorm:"type:varchar(255);not null;index"`
	BorrowedAt   time.Time  `gorm:"not null"`
	ReturnedAt   *time.Time `gorm:"index"`
}

func (loanRow) TableName() string { return "loans" }

// Store is the GORM implementation of repo.Store.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// compile-time check: *Store must satisfy repo.Store.
var _ repo.Store = (*Store)(nil)

// Open connects to the database described by driver and dsn, verifies the
// connection, and migrates the schema. For SQLite the dsn is a file path
// (or any DSN accepted by the sqlite3 driver).
func Open(driver, dsn string) (*Store, error) {
	var dial gorm.Dialector
	switch driver {
	case DriverSQLite:
		dial = sqlite.Open(dsn)
	case DriverMySQL:
		dial = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("gormstore.Open: unsupported driver %q", driver)
	}
	return OpenWithDialector(dial)
}

// OpenWithDialector is Open for a caller-built dialector.
func OpenWithDialector(dial gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore.Open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gormstore.Open: %w", err)
	}
	if dial.Name() == DriverSQLite {
		// SQLite allows one writer; a single connection also keeps ":memory:"
		// databases from splitting across connections.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(30)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("gormstore.Open: ping: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// migrate creates or updates the tables. SQLite also gets the partial unique
// index that allows at most one open loan per book. MySQL has no partial
// indexes; there CreateLoan's locked check is the guard.
func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(&bookRow{}, &loanRow{}); err != nil {
		return fmt.Errorf("gormstore.migrate: %w", err)
	}
	if s.db.Dialector.Name() == DriverSQLite {
		const q = `CREATE UNIQUE INDEX IF NOT EXISTS loans_one_open_per_book_idx ON loans (book_id) WHERE returned_at IS NULL`
		if err := s.db.Exec(q).Error; err != nil {
			return fmt.Errorf("gormstore.migrate: open-loan index: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ListBooks(ctx context.Context) ([]domain.Book, error) {
	var rows []bookRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormstore.Store.ListBooks: %w", err)
	}
	return toBooks(rows), nil
}

func (s *Store) GetBook(ctx context.Context, id int64) (domain.Book, error) {
	var row bookRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return domain.Book{}, fmt.Errorf("gormstore.Store.GetBook: %w", mapErr(err))
	}
	return row.toDomain(), nil
}

// SearchBooks uses INSTR rather than LIKE so the query is matched literally.
// Both SQLite and MySQL provide INSTR(haystack, needle).
func (s *Store) SearchBooks(ctx context.Context, query string) ([]domain.Book, error) {
	q := strings.ToLower(query)
	var rows []bookRow
	err := s.db.WithContext(ctx).
		Where("INSTR(LOWER(title), ?) > 0 OR INSTR(LOWER(author), ?) > 0 OR INSTR(LOWER(isbn), ?) > 0", q, q, q).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore.Store.SearchBooks: %w", err)
	}
	return toBooks(rows), nil
}

func (s *Store) CreateBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	row := bookRow{
		Title:       book.Title,
		Author:      book.Author,
		ISBN:        book.ISBN,
		Description: book.Description,
		Status:      string(domain.StatusAvailable),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Book{}, fmt.Errorf("gormstore.Store.CreateBook: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateBook(ctx context.Context, id int64, patch domain.BookPatch) (domain.Book, error) {
	var out domain.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row bookRow
		if err := tx.First(&row, id).Error; err != nil {
			return mapErr(err)
		}
		updated := patch.Apply(row.toDomain())
		row = fromDomainBook(updated)
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Book{}, fmt.Errorf("gormstore.Store.UpdateBook: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&bookRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("gormstore.Store.DeleteBook: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gormstore.Store.DeleteBook: %w", domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ListLoans(ctx context.Context, bookID *int64) ([]domain.Loan, error) {
	q := s.db.WithContext(ctx).Order("id")
	if bookID != nil {
		q = q.Where("book_id = ?", *bookID)
	}
	var rows []loanRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormstore.Store.ListLoans: %w", err)
	}
	return toLoans(rows), nil
}

func (s *Store) ListLoansByBorrower(ctx context.Context, name string) ([]domain.Loan, error) {
	var rows []loanRow
	err := s.db.WithContext(ctx).
		Where("LOWER(borrower_name) = ?", strings.ToLower(name)).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore.Store.ListLoansByBorrower: %w", err)
	}
	return toLoans(rows), nil
}

func (s *Store) CreateLoan(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	row := loanRow{
		BookID:       loan.BookID,
		BorrowerName: loan.BorrowerName,
		BorrowedAt:   s.now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SELECT ... FOR UPDATE on the book serialises concurrent borrows on
		// MySQL. The sqlite dialect drops the locking clause; its single
		// connection and partial index already serialise.
		var books []bookRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", loan.BookID).Find(&books).Error; err != nil {
			return err
		}
		var open int64
		if err := tx.Model(&loanRow{}).
			Where("book_id = ? AND returned_at IS NULL", loan.BookID).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrConflict
		}
		if err := tx.Create(&row).Error; err != nil {
			return mapErr(err)
		}
		// No matching book leaves zero rows affected, which is fine here.
		return tx.Model(&bookRow{}).
			Where("id = ?", loan.BookID).
			Update("status", string(domain.StatusBorrowed)).Error
	})
	if err != nil {
		return domain.Loan{}, fmt.Errorf("gormstore.Store.CreateLoan: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ReturnBook(ctx context.Context, bookID int64) (domain.Loan, error) {
	var row loanRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("book_id = ? AND returned_at IS NULL", bookID).
			Order("borrowed_at, id").
			First(&row).Error
		if err != nil {
			return mapErr(err)
		}
		returnedAt := s.now().UTC()
		if err := tx.Model(&row).Update("returned_at", returnedAt).Error; err != nil {
			return err
		}
		row.ReturnedAt = &returnedAt
		return tx.Model(&bookRow{}).
			Where("id = ?", bookID).
			Update("status", string(domain.StatusAvailable)).Error
	})
	if err != nil {
		return domain.Loan{}, fmt.Errorf("gormstore.Store.ReturnBook: %w", err)
	}
	return row.toDomain(), nil
}

// mapErr converts GORM sentinel errors into domain errors.
func mapErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrConflict
	default:
		return err
	}
}

func (r bookRow) toDomain() domain.Book {
	return domain.Book{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.Author,
		ISBN:        r.ISBN,
		Description: r.Description,
		Status:      domain.BookStatus(r.Status),
	}
}

func fromDomainBook(b domain.Book) bookRow {
	return bookRow{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Description: b.Description,
		Status:      string(b.Status),
	}
}

func (r loanRow) toDomain() domain.Loan {
	return domain.Loan{
		ID:           r.ID,
		BookID:       r.BookID,
		BorrowerName: r.BorrowerName,
		BorrowedAt:   r.BorrowedAt,
		ReturnedAt:   r.ReturnedAt,
	}
}

func toBooks(rows []bookRow) []domain.Book {
	out := make([]domain.Book, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

func toLoans(rows []loanRow) []domain.Loan {
	out := make([]domain.Loan, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}
