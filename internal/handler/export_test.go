package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/handler"
	"github.com/pkordes/libris/internal/handler/gen"
)

// ---- mock ExportServicer ---------------------------------------------------

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

// compile-time check: mockExportServicer must satisfy handler.ExportServicer.
var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newExportHTTPHandler wires a Server with only the export service mock.
func newExportHTTPHandler(exportSvc handler.ExportServicer) http.Handler {
	return newHTTPHandler(handler.NewServer(nil, nil, exportSvc))
}

func staticExport(rows ...domain.ExportRow) *mockExportServicer {
	return &mockExportServicer{
		export: func(_ context.Context) ([]domain.ExportRow, error) {
			return rows, nil
		},
	}
}

// exportRowFixture returns a fully-populated domain.ExportRow for testing.
func exportRowFixture() domain.ExportRow {
	borrowed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	returned := time.Date(2024, 6, 18, 10, 0, 0, 0, time.UTC)

	return domain.ExportRow{
		LoanID:       3,
		BookID:       1,
		BookTitle:    "1984",
		BookAuthor:   "George Orwell",
		BorrowerName: "Alice",
		BorrowedAt:   borrowed,
		ReturnedAt:   &returned,
	}
}

// ---- GET /api/export, JSON -------------------------------------------------

func TestGetExport_DefaultJSON_EmptyResult(t *testing.T) {
	rec := do(newExportHTTPHandler(staticExport()), http.MethodGet, "/api/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var rows []gen.ExportRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGetExport_FormatJSON_ExplicitParam(t *testing.T) {
	row := exportRowFixture()

	rec := do(newExportHTTPHandler(staticExport(row)), http.MethodGet, "/api/export?format=json", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []gen.ExportRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, row.BookTitle, rows[0].BookTitle)
	assert.Equal(t, row.LoanID, rows[0].LoanId)
	require.NotNil(t, rows[0].ReturnedAt)
}

// ---- GET /api/export, CSV --------------------------------------------------

func TestGetExport_CSV_EmptyResult_HasHeaderRow(t *testing.T) {
	rec := do(newExportHTTPHandler(staticExport()), http.MethodGet, "/api/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "loan_id,"), "CSV should start with header row, got: %q", body)
}

func TestGetExport_CSV_OpenLoan_EmptyReturnedAt(t *testing.T) {
	row := exportRowFixture()
	row.ReturnedAt = nil

	rec := do(newExportHTTPHandler(staticExport(row)), http.MethodGet, "/api/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	// Header + 1 data row.
	require.Len(t, lines, 2)
	assert.Equal(t, "3,1,1984,George Orwell,Alice,2024-06-15T12:00:00Z,", lines[1])
}

// ---- error handling --------------------------------------------------------

func TestGetExport_ServiceError_Returns500(t *testing.T) {
	svc := &mockExportServicer{
		export: func(_ context.Context) ([]domain.ExportRow, error) {
			return nil, fmt.Errorf("database unavailable")
		},
	}

	rec := do(newExportHTTPHandler(svc), http.MethodGet, "/api/export", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec))
}
