// Package domain contains the core data types for the Libris API.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

// BookStatus is the availability of a Book. It is maintained by the store:
// callers never set it directly.
type BookStatus string

const (
	StatusAvailable BookStatus = "available"
	StatusBorrowed  BookStatus = "borrowed"
)

// Valid reports whether s is one of the known statuses.
func (s BookStatus) Valid() bool {
	return s == StatusAvailable || s == StatusBorrowed
}

// Book is a catalog item. ISBN and Description are optional and stored as
// empty strings when absent.
type Book struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	ISBN        string     `json:"isbn,omitempty"`
	Description string     `json:"description,omitempty"`
	Status      BookStatus `json:"status"`
}

// BookPatch carries a partial update for a Book. Nil fields are left unchanged.
// Status is only ever patched by the store itself while opening or closing a loan.
type BookPatch struct {
	Title       *string
	Author      *string
	ISBN        *string
	Description *string
	Status      *BookStatus
}

// Apply merges the non-nil fields of p over b and returns the result.
func (p BookPatch) Apply(b Book) Book {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	return b
}
