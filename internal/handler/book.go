package handler

import (
	"context"
	"errors"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/handler/gen"
)

// ListBooks handles GET /api/books.
// A non-empty ?q= switches from the full catalog to a search.
func (s *Server) ListBooks(ctx context.Context, req gen.ListBooksRequestObject) (gen.ListBooksResponseObject, error) {
	var (
		books []domain.Book
		err   error
	)
	if q := req.Params.Q; q != nil && *q != "" {
		books, err = s.books.Search(ctx, *q)
	} else {
		books, err = s.books.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make(gen.ListBooks200JSONResponse, 0, len(books))
	for _, b := range books {
		out = append(out, bookToResponse(b))
	}
	return out, nil
}

// CreateBook handles POST /api/books.
func (s *Server) CreateBook(ctx context.Context, req gen.CreateBookRequestObject) (gen.CreateBookResponseObject, error) {
	if req.Body == nil {
		return gen.CreateBook400JSONResponse(errorBody(msgInvalidBody)), nil
	}

	created, err := s.books.Create(ctx, requestToBook(req.Body))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return gen.CreateBook400JSONResponse(validationBody(err)), nil
		}
		return nil, err
	}

	return gen.CreateBook201JSONResponse(bookToResponse(created)), nil
}

// GetBook handles GET /api/books/{id}.
func (s *Server) GetBook(ctx context.Context, req gen.GetBookRequestObject) (gen.GetBookResponseObject, error) {
	book, err := s.books.GetByID(ctx, req.Id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return gen.GetBook404JSONResponse(errorBody(msgBookNotFound)), nil
		}
		return nil, err
	}

	return gen.GetBook200JSONResponse(bookToResponse(book)), nil
}

// UpdateBook handles PATCH /api/books/{id}.
func (s *Server) UpdateBook(ctx context.Context, req gen.UpdateBookRequestObject) (gen.UpdateBookResponseObject, error) {
	if req.Body == nil {
		return gen.UpdateBook400JSONResponse(errorBody(msgInvalidBody)), nil
	}

	patch := domain.BookPatch{
		Title:       req.Body.Title,
		Author:      req.Body.Author,
		ISBN:        req.Body.Isbn,
		Description: req.Body.Description,
	}
	updated, err := s.books.Update(ctx, req.Id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return gen.UpdateBook404JSONResponse(errorBody(msgBookNotFound)), nil
		}
		if errors.Is(err, domain.ErrValidation) {
			return gen.UpdateBook400JSONResponse(validationBody(err)), nil
		}
		return nil, err
	}

	return gen.UpdateBook200JSONResponse(bookToResponse(updated)), nil
}

// DeleteBook handles DELETE /api/books/{id}.
func (s *Server) DeleteBook(ctx context.Context, req gen.DeleteBookRequestObject) (gen.DeleteBookResponseObject, error) {
	if err := s.books.Delete(ctx, req.Id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return gen.DeleteBook404JSONResponse(errorBody(msgBookNotFound)), nil
		}
		return nil, err
	}

	return gen.DeleteBook204Response{}, nil
}

// --- mapping helpers --------------------------------------------------------

// requestToBook converts a CreateBookRequest body into a domain.Book.
// Status is not part of the request; the service sets it.
func requestToBook(body *gen.CreateBookRequest) domain.Book {
	b := domain.Book{
		Title:  body.Title,
		Author: body.Author,
	}
	if body.Isbn != nil {
		b.ISBN = *body.Isbn
	}
	if body.Description != nil {
		b.Description = *body.Description
	}
	return b
}

// bookToResponse converts a domain.Book into the generated gen.Book type.
// An empty isbn or description is left out of the JSON.
func bookToResponse(b domain.Book) gen.Book {
	return gen.Book{
		Id:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Isbn:        optional(b.ISBN),
		Description: optional(b.Description),
		Status:      gen.BookStatus(b.Status),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
