package handler

import (
	"context"
	"errors"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/handler/gen"
)

// ListLoans handles GET /api/loans.
// A present ?borrower= wins over ?bookId=, even when it is empty.
func (s *Server) ListLoans(ctx context.Context, req gen.ListLoansRequestObject) (gen.ListLoansResponseObject, error) {
	f := domain.LoanFilter{BookID: req.Params.BookId, Borrower: req.Params.Borrower}

	loans, err := s.loans.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make(gen.ListLoans200JSONResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, loanToResponse(l))
	}
	return out, nil
}

// CreateLoan handles POST /api/loans.
// An already-borrowed book is reported as 400, not 409.
func (s *Server) CreateLoan(ctx context.Context, req gen.CreateLoanRequestObject) (gen.CreateLoanResponseObject, error) {
	if req.Body == nil {
		return gen.CreateLoan400JSONResponse(errorBody(msgInvalidBody)), nil
	}

	loan, err := s.loans.Borrow(ctx, domain.Loan{
		BookID:       req.Body.BookId,
		BorrowerName: req.Body.BorrowerName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return gen.CreateLoan400JSONResponse(validationBody(err)), nil
		case errors.Is(err, domain.ErrNotFound):
			return gen.CreateLoan404JSONResponse(errorBody(msgBookNotFound)), nil
		case errors.Is(err, domain.ErrConflict):
			return gen.CreateLoan400JSONResponse(errorBody(msgAlreadyBorrowed)), nil
		}
		return nil, err
	}

	return gen.CreateLoan201JSONResponse(loanToResponse(loan)), nil
}

// ReturnBook handles POST /api/loans/{bookId}/return.
func (s *Server) ReturnBook(ctx context.Context, req gen.ReturnBookRequestObject) (gen.ReturnBookResponseObject, error) {
	loan, err := s.loans.Return(ctx, req.BookId)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return gen.ReturnBook404JSONResponse(errorBody(msgNoActiveLoan)), nil
		}
		return nil, err
	}

	return gen.ReturnBook200JSONResponse(loanToResponse(loan)), nil
}

// loanToResponse converts a domain.Loan into the generated gen.Loan type.
// Times are normalised to UTC so every backend serialises the same way.
func loanToResponse(l domain.Loan) gen.Loan {
	resp := gen.Loan{
		Id:           l.ID,
		BookId:       l.BookID,
		BorrowerName: l.BorrowerName,
		BorrowedAt:   l.BorrowedAt.UTC(),
	}
	if l.ReturnedAt != nil {
		ra := l.ReturnedAt.UTC()
		resp.ReturnedAt = &ra
	}
	return resp
}
