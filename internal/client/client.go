// Package client is a typed HTTP client for the Libris API. It speaks the
// same wire types as the server (package gen) and turns every non-2xx
// response into an *APIError carrying the server's message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/libris/internal/handler/gen"
)

// APIError is returned for any response outside the 2xx range.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("libris API %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an *APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to one Libris server.
type Client struct {
	baseURL string
	http    *http.Client
	newKey  func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithKeyFunc replaces uuid.NewString as the Idempotency-Key source.
func WithKeyFunc(f func() string) Option {
	return func(c *Client) { c.newKey = f }
}

// New returns a Client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health calls GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	var out gen.HealthResponse
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, &out)
}

// ListBooks returns the catalog, or the search results for query when it is non-empty.
func (c *Client) ListBooks(ctx context.Context, query string) ([]gen.Book, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	var out []gen.Book
	if err := c.do(ctx, http.MethodGet, "/api/books", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBook returns one book.
func (c *Client) GetBook(ctx context.Context, id int64) (gen.Book, error) {
	var out gen.Book
	err := c.do(ctx, http.MethodGet, "/api/books/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}

// CreateBook adds a book.
func (c *Client) CreateBook(ctx context.Context, req gen.CreateBookRequest) (gen.Book, error) {
	var out gen.Book
	err := c.do(ctx, http.MethodPost, "/api/books", nil, req, &out)
	return out, err
}

// UpdateBook patches a book's catalog fields.
func (c *Client) UpdateBook(ctx context.Context, id int64, req gen.UpdateBookRequest) (gen.Book, error) {
	var out gen.Book
	err := c.do(ctx, http.MethodPatch, "/api/books/"+strconv.FormatInt(id, 10), nil, req, &out)
	return out, err
}

// DeleteBook removes a book.
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/books/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// LoanQuery selects loans. Borrower wins over BookID on the server.
type LoanQuery struct {
	BookID   *int64
	Borrower string
}

// ListLoans returns the loans selected by q.
func (c *Client) ListLoans(ctx context.Context, lq LoanQuery) ([]gen.Loan, error) {
	q := url.Values{}
	if lq.BookID != nil {
		q.Set("bookId", strconv.FormatInt(*lq.BookID, 10))
	}
	if lq.Borrower != "" {
		q.Set("borrower", lq.Borrower)
	}
	var out []gen.Loan
	if err := c.do(ctx, http.MethodGet, "/api/loans", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Borrow opens a loan of bookID for borrower.
func (c *Client) Borrow(ctx context.Context, bookID int64, borrower string) (gen.Loan, error) {
	var out gen.Loan
	err := c.do(ctx, http.MethodPost, "/api/loans", nil,
		gen.CreateLoanRequest{BookId: bookID, BorrowerName: borrower}, &out)
	return out, err
}

// Return closes the open loan of bookID.
func (c *Client) Return(ctx context.Context, bookID int64) (gen.Loan, error) {
	var out gen.Loan
	err := c.do(ctx, http.MethodPost, "/api/loans/"+strconv.FormatInt(bookID, 10)+"/return", nil, struct{}{}, &out)
	return out, err
}

// Export returns the loan ledger.
func (c *Client) Export(ctx context.Context) ([]gen.ExportRow, error) {
	var out []gen.ExportRow
	if err := c.do(ctx, http.MethodGet, "/api/export", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportCSV returns the loan ledger as CSV bytes.
func (c *Client) ExportCSV(ctx context.Context) ([]byte, error) {
	q := url.Values{"format": []string{string(gen.Csv)}}
	resp, err := c.send(ctx, http.MethodGet, "/api/export", q, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// do sends a request with an optional JSON body and decodes a JSON response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

// send performs the round trip and converts non-2xx responses into *APIError.
// The caller closes the body of a successful response.
func (c *Client) send(ctx context.Context, method, path string, q url.Values, body any) (*http.Response, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", c.newKey())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	return nil, decodeAPIError(resp)
}

// decodeAPIError reads the {message} envelope, falling back to the status text.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body gen.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else if s := strings.TrimSpace(string(raw)); s != "" {
		apiErr.Message = s
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
