// Package gen holds the HTTP contract for spec/openapi.yaml: request and
// response models, the chi router bindings, and the strict-server adapter.
// It follows the layout oapi-codegen produces for the chi-server and
// strict-server targets so that handler.Server only deals in typed request
// and response objects.
package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	strictnethttp "github.com/oapi-codegen/runtime/strictmiddleware/nethttp"
)

// Defines values for BookStatus.
const (
	Available BookStatus = "available"
	Borrowed  BookStatus = "borrowed"
)

// Defines values for GetExportParamsFormat.
const (
	Csv  GetExportParamsFormat = "csv"
	Json GetExportParamsFormat = "json"
)

// Book defines model for Book.
type Book struct {
	Author      string     `json:"author"`
	Description *string    `json:"description,omitempty"`
	Id          int64      `json:"id"`
	Isbn        *string    `json:"isbn,omitempty"`
	Status      BookStatus `json:"status"`
	Title       string     `json:"title"`
}

// BookStatus defines model for Book.Status.
type BookStatus string

// CreateBookRequest defines model for CreateBookRequest.
type CreateBookRequest struct {
	Author      string  `json:"author"`
	Description *string `json:"description,omitempty"`
	Isbn        *string `json:"isbn,omitempty"`
	Title       string  `json:"title"`
}

// UpdateBookRequest defines model for UpdateBookRequest.
type UpdateBookRequest struct {
	Author      *string `json:"author,omitempty"`
	Description *string `json:"description,omitempty"`
	Isbn        *string `json:"isbn,omitempty"`
	Title       *string `json:"title,omitempty"`
}

// CreateLoanRequest defines model for CreateLoanRequest.
type CreateLoanRequest struct {
	BookId       int64  `json:"bookId"`
	BorrowerName string `json:"borrowerName"`
}

// Loan defines model for Loan.
type Loan struct {
	BookId       int64      `json:"bookId"`
	BorrowedAt   time.Time  `json:"borrowedAt"`
	BorrowerName string     `json:"borrowerName"`
	Id           int64      `json:"id"`
	ReturnedAt   *time.Time `json:"returnedAt"`
}

// ExportRow defines model for ExportRow.
type ExportRow struct {
	BookAuthor   string     `json:"bookAuthor"`
	BookId       int64      `json:"bookId"`
	BookTitle    string     `json:"bookTitle"`
	BorrowedAt   time.Time  `json:"borrowedAt"`
	BorrowerName string     `json:"borrowerName"`
	LoanId       int64      `json:"loanId"`
	ReturnedAt   *time.Time `json:"returnedAt"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status string `json:"status"`
}

// ListBooksParams defines parameters for ListBooks.
type ListBooksParams struct {
	// Q Case-insensitive substring matched against title, author and isbn.
	Q *string `form:"q,omitempty" json:"q,omitempty"`
}

// ListLoansParams defines parameters for ListLoans.
type ListLoansParams struct {
	BookId *int64 `form:"bookId,omitempty" json:"bookId,omitempty"`

	// Borrower Case-insensitive exact borrower name.
	Borrower *string `form:"borrower,omitempty" json:"borrower,omitempty"`
}

// GetExportParams defines parameters for GetExport.
type GetExportParams struct {
	Format *GetExportParamsFormat `form:"format,omitempty" json:"format,omitempty"`
}

// GetExportParamsFormat defines parameters for GetExport.
type GetExportParamsFormat string

// CreateBookJSONRequestBody defines body for CreateBook for application/json ContentType.
type CreateBookJSONRequestBody = CreateBookRequest

// UpdateBookJSONRequestBody defines body for UpdateBook for application/json ContentType.
type UpdateBookJSONRequestBody = UpdateBookRequest

// CreateLoanJSONRequestBody defines body for CreateLoan for application/json ContentType.
type CreateLoanJSONRequestBody = CreateLoanRequest

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Liveness probe
	// (GET /healthz)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// List books, or search them with q
	// (GET /api/books)
	ListBooks(w http.ResponseWriter, r *http.Request, params ListBooksParams)
	// Add a book to the catalog
	// (POST /api/books)
	CreateBook(w http.ResponseWriter, r *http.Request)
	// (GET /api/books/{id})
	GetBook(w http.ResponseWriter, r *http.Request, id int64)
	// Partially update a book's catalog fields
	// (PATCH /api/books/{id})
	UpdateBook(w http.ResponseWriter, r *http.Request, id int64)
	// (DELETE /api/books/{id})
	DeleteBook(w http.ResponseWriter, r *http.Request, id int64)
	// List loans, optionally for one book or one borrower
	// (GET /api/loans)
	ListLoans(w http.ResponseWriter, r *http.Request, params ListLoansParams)
	// Borrow a book
	// (POST /api/loans)
	CreateLoan(w http.ResponseWriter, r *http.Request)
	// Return a book, closing its open loan
	// (POST /api/loans/{bookId}/return)
	ReturnBook(w http.ResponseWriter, r *http.Request, bookId int64)
	// Loan ledger, one row per loan
	// (GET /api/export)
	GetExport(w http.ResponseWriter, r *http.Request, params GetExportParams)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	handler := http.Handler(h)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// pathInt64 binds a required simple-style int64 path parameter.
func (siw *ServerInterfaceWrapper) pathInt64(w http.ResponseWriter, r *http.Request, name string, dest *int64) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetHealth(w, r)
	})
}

// ListBooks operation middleware
func (siw *ServerInterfaceWrapper) ListBooks(w http.ResponseWriter, r *http.Request) {
	var params ListBooksParams

	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &params.Q); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListBooks(w, r, params)
	})
}

// CreateBook operation middleware
func (siw *ServerInterfaceWrapper) CreateBook(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateBook(w, r)
	})
}

// GetBook operation middleware
func (siw *ServerInterfaceWrapper) GetBook(w http.ResponseWriter, r *http.Request) {
	var id int64
	if !siw.pathInt64(w, r, "id", &id) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetBook(w, r, id)
	})
}

// UpdateBook operation middleware
func (siw *ServerInterfaceWrapper) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var id int64
	if !siw.pathInt64(w, r, "id", &id) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UpdateBook(w, r, id)
	})
}

// DeleteBook operation middleware
func (siw *ServerInterfaceWrapper) DeleteBook(w http.ResponseWriter, r *http.Request) {
	var id int64
	if !siw.pathInt64(w, r, "id", &id) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteBook(w, r, id)
	})
}

// ListLoans operation middleware
func (siw *ServerInterfaceWrapper) ListLoans(w http.ResponseWriter, r *http.Request) {
	var params ListLoansParams

	if err := runtime.BindQueryParameter("form", true, false, "bookId", r.URL.Query(), &params.BookId); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "bookId", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "borrower", r.URL.Query(), &params.Borrower); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "borrower", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListLoans(w, r, params)
	})
}

// CreateLoan operation middleware
func (siw *ServerInterfaceWrapper) CreateLoan(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateLoan(w, r)
	})
}

// ReturnBook operation middleware
func (siw *ServerInterfaceWrapper) ReturnBook(w http.ResponseWriter, r *http.Request) {
	var bookId int64
	if !siw.pathInt64(w, r, "bookId", &bookId) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ReturnBook(w, r, bookId)
	})
}

// GetExport operation middleware
func (siw *ServerInterfaceWrapper) GetExport(w http.ResponseWriter, r *http.Request) {
	var params GetExportParams

	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &params.Format); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "format", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetExport(w, r, params)
	})
}

// InvalidParamFormatError is reported when a path or query parameter cannot
// be bound to its declared type.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{BaseRouter: r})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/healthz", wrapper.GetHealth)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/books", wrapper.ListBooks)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/books", wrapper.CreateBook)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/books/{id}", wrapper.GetBook)
	})
	r.Group(func(r chi.Router) {
		r.Patch(options.BaseURL+"/api/books/{id}", wrapper.UpdateBook)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/api/books/{id}", wrapper.DeleteBook)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/loans", wrapper.ListLoans)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/loans", wrapper.CreateLoan)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/loans/{bookId}/return", wrapper.ReturnBook)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/export", wrapper.GetExport)
	})

	return r
}

// writeJSON is shared by every JSON response visitor.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

type GetHealthRequestObject struct {
}

type GetHealthResponseObject interface {
	VisitGetHealthResponse(w http.ResponseWriter) error
}

type GetHealth200JSONResponse HealthResponse

func (response GetHealth200JSONResponse) VisitGetHealthResponse(w http.ResponseWriter) error {
	return writeJSON(w, 200, response)
}

type ListBooksRequestObject struct {
	Params ListBooksParams
}

type ListBooksResponseObject interface {
	VisitListBooksResponse(w http.ResponseWriter) error
}

type ListBooks200JSONResponse []Book

func (response ListBooks200JSONResponse) VisitListBooksResponse(w http.ResponseWriter) error {
	return writeJSON(w, 200, response)
}

type CreateBookRequestObject struct {
	Body *CreateBookJSONRequestBody
}

type CreateBookResponseObject interface {
	VisitCreateBookResponse(w http.ResponseWriter) error
}

type CreateBook201JSONResponse Book

func (response CreateBook201JSONResponse) VisitCreateBookResponse(w http.ResponseWriter) error {
	return writeJSON(w, 201, response)
}

type CreateBook400JSONResponse ErrorResponse

func (response CreateBook400JSONResponse) VisitCreateBookResponse(w http.ResponseWriter) error {
	return writeJSON(w, 400, response)
}

type GetBookRequestObject struct {
	Id int64 `json:"id"`
}

type GetBookResponseObject interface {
	VisitGetBookResponse(w http.ResponseWriter) error
}

type GetBook200JSONResponse Book

func (response GetBook200JSONResponse) VisitGetBookResponse(w http.ResponseWriter) error {
	return writeJSON(w, 200, response)
}

type GetBook404JSONResponse ErrorResponse

func (response GetBook404JSONResponse) VisitGetBookResponse(w http.ResponseWriter) error {
	return writeJSON(w, 404, response)
}

type UpdateBookRequestObject struct {
	Id   int64 `json:"id"`
	Body *UpdateBookJSONRequestBody
}

type UpdateBookResponseObject interface {
	VisitUpdateBookResponse(w http.ResponseWriter) error
}

type UpdateBook200JSONResponse Book

func (response UpdateBook200JSONResponse) VisitUpdateBookResponse(w http.ResponseWriter) error {
	return writeJSON(w, 200, response)
}

type UpdateBook400JSONResponse ErrorResponse

func (response UpdateBook400JSONResponse) VisitUpdateBookResponse(w http.ResponseWriter) error {
	return writeJSON(w, 400, response)
}

type UpdateBook404JSONResponse ErrorResponse

func (response UpdateBook404JSONResponse) VisitUpdateBookResponse(w http.ResponseWriter) error {
	return writeJSON(w, 404, response)
}

type DeleteBookRequestObject struct {
	Id int64 `json:"id"`
}

type DeleteBookResponseObject interface {
	VisitDeleteBookResponse(w http.ResponseWriter) error
}

type DeleteBook204Response struct {
}

func (response DeleteBook204Response) VisitDeleteBookResponse(w http.ResponseWriter) error {
	w.WriteHeader(204)
	return nil
}

type DeleteBook404JSONResponse ErrorResponse

func (response DeleteBook404JSONResponse) VisitDeleteBookResponse(w http.ResponseWriter) error {
	return writeJSON(w, 404, response)
}

type ListLoansRequestObject struct {
	Params ListLoansParams
}

type ListLoansResponseObject interface {
	VisitListLoansResponse(w http.ResponseWriter) error
}

type ListLoans200JSONResponse []Loan

func (response ListLoans200JSONResponse) VisitListLoansResponse(w http.ResponseWriter) error {
	return writeJSON(w, 200, response)
}

type CreateLoanRequestObject struct {
	Body *CreateLoanJSONRequestBody
}

type CreateLoanResponseObject interface {
	VisitCreateLoanResponse(w http.ResponseWriter) error
}

type CreateLoan201JSONResponse Loan

func (response CreateLoan201JSONResponse) VisitCreateLoanResponse(w http.ResponseWriter) error {
	return writeJSON(w, 201, response)
}

type CreateLoan400JSONResponse ErrorResponse

func (response CreateLoan400JSONResponse) VisitCreateLoanResponse(w http.ResponseWriter) error {
	return writeJSON(w, 400, response)
}

type CreateLoan404JSONResponse ErrorResponse

func (response CreateLoan404JSONResponse) VisitCreateLoanResponse(w http.ResponseWriter) error {
	return writeJSON(w, 404, response)
}

type ReturnBookRequestObject struct {
	BookId int64 `json:"bookId"`
}

type ReturnBookResponseObject interface {
	VisitReturnBookResponse(w http.ResponseWriter) error
}

type ReturnBook200JSONResponse Loan

func (response ReturnBook200JSONResponse) VisitReturnBookResponse(w http.ResponseWriter) error {
	return writeJSON(w, 200, response)
}

type ReturnBook404JSONResponse ErrorResponse

func (response ReturnBook404JSONResponse) VisitReturnBookResponse(w http.ResponseWriter) error {
	return writeJSON(w, 404, response)
}

type GetExportRequestObject struct {
	Params GetExportParams
}

type GetExportResponseObject interface {
	VisitGetExportResponse(w http.ResponseWriter) error
}

type GetExport200JSONResponse []ExportRow

func (response GetExport200JSONResponse) VisitGetExportResponse(w http.ResponseWriter) error {
	return writeJSON(w, 200, response)
}

type GetExport200TextcsvResponse struct {
	Body          io.Reader
	ContentLength int64
}

func (response GetExport200TextcsvResponse) VisitGetExportResponse(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/csv")
	if response.ContentLength != 0 {
		w.Header().Set("Content-Length", fmt.Sprint(response.ContentLength))
	}
	w.WriteHeader(200)

	if closer, ok := response.Body.(io.ReadCloser); ok {
		defer closer.Close()
	}
	_, err := io.Copy(w, response.Body)
	return err
}

// StrictServerInterface represents all server handlers.
type StrictServerInterface interface {
	GetHealth(ctx context.Context, request GetHealthRequestObject) (GetHealthResponseObject, error)
	ListBooks(ctx context.Context, request ListBooksRequestObject) (ListBooksResponseObject, error)
	CreateBook(ctx context.Context, request CreateBookRequestObject) (CreateBookResponseObject, error)
	GetBook(ctx context.Context, request GetBookRequestObject) (GetBookResponseObject, error)
	UpdateBook(ctx context.Context, request UpdateBookRequestObject) (UpdateBookResponseObject, error)
	DeleteBook(ctx context.Context, request DeleteBookRequestObject) (DeleteBookResponseObject, error)
	ListLoans(ctx context.Context, request ListLoansRequestObject) (ListLoansResponseObject, error)
	CreateLoan(ctx context.Context, request CreateLoanRequestObject) (CreateLoanResponseObject, error)
	ReturnBook(ctx context.Context, request ReturnBookRequestObject) (ReturnBookResponseObject, error)
	GetExport(ctx context.Context, request GetExportRequestObject) (GetExportResponseObject, error)
}

type StrictHandlerFunc = strictnethttp.StrictHTTPHandlerFunc
type StrictMiddlewareFunc = strictnethttp.StrictHTTPMiddlewareFunc

type StrictHTTPServerOptions struct {
	RequestErrorHandlerFunc  func(w http.ResponseWriter, r *http.Request, err error)
	ResponseErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func NewStrictHandler(ssi StrictServerInterface, middlewares []StrictMiddlewareFunc) ServerInterface {
	return &strictHandler{ssi: ssi, middlewares: middlewares, options: StrictHTTPServerOptions{
		RequestErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		},
		ResponseErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		},
	}}
}

func NewStrictHandlerWithOptions(ssi StrictServerInterface, middlewares []StrictMiddlewareFunc, options StrictHTTPServerOptions) ServerInterface {
	return &strictHandler{ssi: ssi, middlewares: middlewares, options: options}
}

type strictHandler struct {
	ssi         StrictServerInterface
	middlewares []StrictMiddlewareFunc
	options     StrictHTTPServerOptions
}

// run pushes request through the strict middlewares to call and reports the
// outcome. visit is handed whatever call returned; it reports false when the
// value does not implement the operation's response interface.
func (sh *strictHandler) run(w http.ResponseWriter, r *http.Request, operationID string, request any,
	call StrictHandlerFunc, visit func(response any) (bool, error)) {
	handler := call
	for _, middleware := range sh.middlewares {
		handler = middleware(handler, operationID)
	}

	response, err := handler(r.Context(), w, r, request)
	if err != nil {
		sh.options.ResponseErrorHandlerFunc(w, r, err)
		return
	}
	if response == nil {
		return
	}
	ok, err := visit(response)
	if !ok {
		sh.options.ResponseErrorHandlerFunc(w, r, fmt.Errorf("unexpected response type: %T", response))
		return
	}
	if err != nil {
		sh.options.ResponseErrorHandlerFunc(w, r, err)
	}
}

// decodeBody decodes the JSON request body into dest, reporting failures
// through RequestErrorHandlerFunc.
func (sh *strictHandler) decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		sh.options.RequestErrorHandlerFunc(w, r, fmt.Errorf("can't decode JSON body: %w", err))
		return false
	}
	return true
}

// GetHealth operation middleware
func (sh *strictHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	var request GetHealthRequestObject

	sh.run(w, r, "GetHealth", request,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
			return sh.ssi.GetHealth(ctx, request.(GetHealthRequestObject))
		},
		func(response any) (bool, error) {
			v, ok := response.(GetHealthResponseObject)
			if !ok {
				return false, nil
			}
			return true, v.VisitGetHealthResponse(w)
		})
}

// ListBooks operation middleware
func (sh *strictHandler) ListBooks(w http.ResponseWriter, r *http.Request, params ListBooksParams) {
	var request ListBooksRequestObject

	request.Params = params

	sh.run(w, r, "ListBooks", request,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
			return sh.ssi.ListBooks(ctx, request.(ListBooksRequestObject))
		},
		func(response any) (bool, error) {
			v, ok := response.(ListBooksResponseObject)
			if !ok {
				return false, nil
			}
			return true, v.VisitListBooksResponse(w)
		})
}

// CreateBook operation middleware
func (sh *strictHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var request CreateBookRequestObject

	var body CreateBookJSONRequestBody
	if !sh.decodeBody(w, r, &body) {
		return
	}
	request.Body = &body

	sh.run(w, r, "CreateBook", request,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
			return sh.ssi.CreateBook(ctx, request.(CreateBookRequestObject))
		},
		func(response any) (bool, error) {
			v, ok := response.(CreateBookResponseObject)
			if !ok {
				return false, nil
			}
			return true, v.VisitCreateBookResponse(w)
		})
}

// GetBook operation middleware
func (sh *strictHandler) GetBook(w http.ResponseWriter, r *http.Request, id int64) {
	var request GetBookRequestObject

	request.Id = id

	sh.run(w, r, "GetBook", request,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
			return sh.ssi.GetBook(ctx, request.(GetBookRequestObject))
		},
		func(response any) (bool, error) {
			v, ok := response.(GetBookResponseObject)
			if !ok {
				return false, nil
			}
			return true, v.VisitGetBookResponse(w)
		})
}

// UpdateBook operation middleware
func (sh *strictHandler) UpdateBook(w http.ResponseWriter, r *http.Request, id int64) {
	var request UpdateBookRequestObject

	request.Id = id

	var body UpdateBookJSONRequestBody
	if !sh.decodeBody(w, r, &body) {
		return
	}
	request.Body = &body

	sh.run(w, r, "UpdateBook", request,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
			return sh.ssi.UpdateBook(ctx, request.(UpdateBookRequestObject))
		},
		func(response any) (bool, error) {
			v, ok := response.(UpdateBookResponseObject)
			if !ok {
				return false, nil
			}
			return true, v.VisitUpdateBookResponse(w)
		})
}

// DeleteBook operation middleware
func (sh *strictHandler) DeleteBook(w http.ResponseWriter, r *http.Request, id int64) {
	var request DeleteBookRequestObject

	request.Id = id

	sh.run(w, r, "DeleteBook", request,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
			return sh.ssi.DeleteBook(ctx, request.(DeleteBookRequestObject))
		},
		func(response any) (bool, error) {
			v, ok := response.(DeleteBookResponseObject)
			if !ok {
				return false, nil
			}
			return true, v.VisitDeleteBookResponse(w)
		})
}

// ListLoans operation middleware
func (sh *strictHandler) ListLoans(w http.ResponseWriter, r *http.Request, params ListLoansParams) {
	var request ListLoansRequestObject

	request.Params = params

	sh.run(w, r, "ListLoans", request,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
			return sh.ssi.ListLoans(ctx, request.(ListLoansRequestObject))
		},
		func(response any) (bool, error) {
			v, ok := response.(ListLoansResponseObject)
			if !ok {
				return false, nil
			}
			return true, v.VisitListLoansResponse(w)
		})
}

// CreateLoan operation middleware
func (sh *strictHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request CreateLoanRequestObject

	var body CreateLoanJSONRequestBody
	if !sh.decodeBody(w, r, &body) {
		return
	}
	request.Body = &body

	sh.run(w, r, "CreateLoan", request,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
			return sh.ssi.CreateLoan(ctx, request.(CreateLoanRequestObject))
		},
		func(response any) (bool, error) {
			v, ok := response.(CreateLoanResponseObject)
			if !ok {
				return false, nil
			}
			return true, v.VisitCreateLoanResponse(w)
		})
}

// ReturnBook operation middleware
func (sh *strictHandler) ReturnBook(w http.ResponseWriter, r *http.Request, bookId int64) {
	var request ReturnBookRequestObject

	request.BookId = bookId

	sh.run(w, r, "ReturnBook", request,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
			return sh.ssi.ReturnBook(ctx, request.(ReturnBookRequestObject))
		},
		func(response any) (bool, error) {
			v, ok := response.(ReturnBookResponseObject)
			if !ok {
				return false, nil
			}
			return true, v.VisitReturnBookResponse(w)
		})
}

// GetExport operation middleware
func (sh *strictHandler) GetExport(w http.ResponseWriter, r *http.Request, params GetExportParams) {
	var request GetExportRequestObject

	request.Params = params

	sh.run(w, r, "GetExport", request,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
			return sh.ssi.GetExport(ctx, request.(GetExportRequestObject))
		},
		func(response any) (bool, error) {
			v, ok := response.(GetExportResponseObject)
			if !ok {
				return false, nil
			}
			return true, v.VisitGetExportResponse(w)
		})
}
