// export.go implements GET /api/export.
// Returns the loan ledger as a flat table, one row per loan.
// Supports ?format=csv (CSV) or default (JSON).

package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/handler/gen"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"loan_id", "book_id", "book_title", "book_author",
	"borrower_name", "borrowed_at", "returned_at",
}

// GetExport implements GET /api/export.
// Any format other than csv falls back to JSON.
func (s *Server) GetExport(ctx context.Context, req gen.GetExportRequestObject) (gen.GetExportResponseObject, error) {
	rows, err := s.export.Export(ctx)
	if err != nil {
		return nil, err
	}

	wantCSV := req.Params.Format != nil && *req.Params.Format == gen.Csv
	if wantCSV {
		return buildCSVResponse(rows), nil
	}
	return buildJSONResponse(rows), nil
}

// buildJSONResponse converts domain rows to the typed JSON response.
func buildJSONResponse(rows []domain.ExportRow) gen.GetExport200JSONResponse {
	out := make(gen.GetExport200JSONResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToGenRow(r))
	}
	return out
}

// buildCSVResponse encodes domain rows as CSV and wraps them in the streaming response type.
func buildCSVResponse(rows []domain.ExportRow) gen.GetExport200TextcsvResponse {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write(domainRowToCSVRecord(r))
	}
	w.Flush()

	return gen.GetExport200TextcsvResponse{
		Body:          &buf,
		ContentLength: int64(buf.Len()),
	}
}

// domainRowToGenRow maps a domain.ExportRow to the generated gen.ExportRow type.
func domainRowToGenRow(r domain.ExportRow) gen.ExportRow {
	row := gen.ExportRow{
		LoanId:       r.LoanID,
		BookId:       r.BookID,
		BookTitle:    r.BookTitle,
		BookAuthor:   r.BookAuthor,
		BorrowerName: r.BorrowerName,
		BorrowedAt:   r.BorrowedAt.UTC(),
	}
	if r.ReturnedAt != nil {
		ra := r.ReturnedAt.UTC()
		row.ReturnedAt = &ra
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// An open loan has an empty returned_at column.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		strconv.FormatInt(r.LoanID, 10),
		strconv.FormatInt(r.BookID, 10),
		r.BookTitle,
		r.BookAuthor,
		r.BorrowerName,
		r.BorrowedAt.UTC().Format(time.RFC3339),
		formatOptionalTime(r.ReturnedAt),
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
