// Package tui is the terminal front end for a Libris server: a catalog with
// search, an add-book form, a book page with borrow/return/delete and the
// book's loan history, and a per-borrower loan page.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pkordes/libris/internal/client"
	"github.com/pkordes/libris/internal/handler/gen"
)

const (
	requestTimeout = 10 * time.Second
	noticeTTL      = 4 * time.Second
)

// API is the part of *client.Client the UI needs.
type API interface {
	ListBooks(ctx context.Context, query string) ([]gen.Book, error)
	GetBook(ctx context.Context, id int64) (gen.Book, error)
	CreateBook(ctx context.Context, req gen.CreateBookRequest) (gen.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	ListLoans(ctx context.Context, q client.LoanQuery) ([]gen.Loan, error)
	Borrow(ctx context.Context, bookID int64, borrower string) (gen.Loan, error)
	Return(ctx context.Context, bookID int64) (gen.Loan, error)
}

var _ API = (*client.Client)(nil)

// Page identifies the screen being shown.
type Page int

const (
	PageHome Page = iota
	PageBooks
	PageAddBook
	PageBook
	PageBorrower
)

// Add-book form field order.
const (
	fieldTitle = iota
	fieldAuthor
	fieldISBN
	fieldDescription
)

var formLabels = []string{"Title", "Author", "ISBN", "Description"}

// Model is the root bubbletea model.
type Model struct {
	api    API
	page   Page
	width  int
	height int

	search    textinput.Model
	searching bool
	books     list.Model

	form      []textinput.Model
	formFocus int

	bookID     int64
	book       gen.Book
	bookLoaded bool
	back       Page
	history    list.Model
	borrowName textinput.Model
	borrowing  bool
	confirm    *ConfirmationDialog

	borrower      string
	borrowerLoans list.Model

	notice    string
	noticeErr bool
	noticeSeq int
}

// Messages
type booksLoadedMsg struct {
	query string
	books []gen.Book
}

type bookLoadedMsg struct {
	book  gen.Book
	loans []gen.Loan
}

type borrowerLoadedMsg struct {
	name  string
	loans []gen.Loan
}

type bookCreatedMsg struct{ book gen.Book }

type loanChangedMsg struct {
	bookID int64
	notice string
}

type bookDeletedMsg struct{ id int64 }

type errMsg struct{ err error }

type clearNoticeMsg struct{ seq int }

// NewModel returns a Model on the home page.
func NewModel(api API) Model {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "title, author or ISBN"

	form := make([]textinput.Model, len(formLabels))
	for i := range form {
		form[i] = textinput.New()
		form[i].Prompt = ""
		form[i].CharLimit = 512
	}
	form[fieldISBN].Placeholder = "optional"
	form[fieldDescription].Placeholder = "optional"

	borrowName := textinput.New()
	borrowName.Prompt = "Borrower: "
	borrowName.Placeholder = "name"

	return Model{
		api:           api,
		page:          PageHome,
		search:        search,
		books:         newList("Books"),
		form:          form,
		history:       newList("Borrowing history"),
		borrowName:    borrowName,
		borrowerLoans: newList("Loans"),
	}
}

// Page reports the screen currently shown.
func (m Model) Page() Page { return m.page }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Commands

// request runs fn with a bounded context and turns an error into errMsg.
func request(fn func(ctx context.Context) (tea.Msg, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		msg, err := fn(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return msg
	}
}

func (m Model) loadBooks(query string) tea.Cmd {
	api := m.api
	return request(func(ctx context.Context) (tea.Msg, error) {
		books, err := api.ListBooks(ctx, query)
		return booksLoadedMsg{query: query, books: books}, err
	})
}

func (m Model) loadBook(id int64) tea.Cmd {
	api := m.api
	return request(func(ctx context.Context) (tea.Msg, error) {
		book, err := api.GetBook(ctx, id)
		if err != nil {
			return nil, err
		}
		loans, err := api.ListLoans(ctx, client.LoanQuery{BookID: &id})
		return bookLoadedMsg{book: book, loans: loans}, err
	})
}

func (m Model) loadBorrower(name string) tea.Cmd {
	api := m.api
	return request(func(ctx context.Context) (tea.Msg, error) {
		loans, err := api.ListLoans(ctx, client.LoanQuery{Borrower: name})
		return borrowerLoadedMsg{name: name, loans: loans}, err
	})
}

func (m Model) createBook(req gen.CreateBookRequest) tea.Cmd {
	api := m.api
	return request(func(ctx context.Context) (tea.Msg, error) {
		book, err := api.CreateBook(ctx, req)
		return bookCreatedMsg{book: book}, err
	})
}

func (m Model) borrowBook(id int64, name string) tea.Cmd {
	api := m.api
	return request(func(ctx context.Context) (tea.Msg, error) {
		_, err := api.Borrow(ctx, id, name)
		return loanChangedMsg{bookID: id, notice: "Book borrowed successfully"}, err
	})
}

func (m Model) returnBook(id int64) tea.Cmd {
	api := m.api
	return request(func(ctx context.Context) (tea.Msg, error) {
		_, err := api.Return(ctx, id)
		return loanChangedMsg{bookID: id, notice: "Book returned successfully"}, err
	})
}

func (m Model) deleteBook(id int64) tea.Cmd {
	api := m.api
	return request(func(ctx context.Context) (tea.Msg, error) {
		return bookDeletedMsg{id: id}, api.DeleteBook(ctx, id)
	})
}

// notify shows text on the status line until noticeTTL passes or a newer
// notice replaces it.
func (m *Model) notify(text string, isErr bool) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	m.noticeErr = isErr
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

// errorText prefers the server's message over the transport error text.
func errorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case booksLoadedMsg:
		// A slower response for an older query must not overwrite a newer one.
		if msg.query != m.search.Value() {
			return m, nil
		}
		cmd := m.books.SetItems(bookItems(msg.books))
		return m, cmd

	case bookLoadedMsg:
		if msg.book.Id != m.bookID {
			return m, nil
		}
		m.book = msg.book
		m.bookLoaded = true
		cmd := m.history.SetItems(loanItems(msg.loans, true))
		return m, cmd

	case borrowerLoadedMsg:
		if msg.name != m.borrower {
			return m, nil
		}
		cmd := m.borrowerLoans.SetItems(loanItems(msg.loans, false))
		return m, cmd

	case bookCreatedMsg:
		m.page = PageBooks
		m.resetForm()
		cmd := m.notify("Book added successfully", false)
		return m, tea.Batch(cmd, m.loadBooks(m.search.Value()))

	case loanChangedMsg:
		cmd := m.notify(msg.notice, false)
		return m, tea.Batch(cmd, m.loadBook(msg.bookID))

	case bookDeletedMsg:
		m.page = PageBooks
		m.bookLoaded = false
		cmd := m.notify("Book deleted successfully", false)
		return m, tea.Batch(cmd, m.loadBooks(m.search.Value()))

	case errMsg:
		// A book page that never loaded has nothing to show.
		if m.page == PageBook && !m.bookLoaded {
			m.page = m.back
		}
		cmd := m.notify(errorText(msg.err), true)
		return m, cmd

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.page {
		case PageHome:
			return m.updateHome(msg)
		case PageBooks:
			return m.updateBooks(msg)
		case PageAddBook:
			return m.updateAddBook(msg)
		case PageBook:
			return m.updateBook(msg)
		case PageBorrower:
			return m.updateBorrower(msg)
		}
	}

	return m.updateFocused(msg)
}

// updateFocused forwards non-key messages, such as cursor blinks, to the
// input that currently has focus.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.page == PageBooks && m.searching:
		m.search, cmd = m.search.Update(msg)
	case m.page == PageAddBook:
		m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	case m.page == PageBook && m.borrowing:
		m.borrowName, cmd = m.borrowName.Update(msg)
	}
	return m, cmd
}

func (m Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		m.page = PageBooks
		return m, m.loadBooks(m.search.Value())
	}
	return m, nil
}

func (m Model) updateBooks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc", "enter", "tab", "down":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			return m, tea.Batch(cmd, m.loadBooks(m.search.Value()))
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.page = PageHome
		return m, nil
	case "/", "tab":
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case "a":
		m.resetForm()
		m.page = PageAddBook
		cmd := m.form[fieldTitle].Focus()
		return m, cmd
	case "enter":
		if item, ok := m.books.SelectedItem().(bookItem); ok {
			return m.openBook(item.book.Id, PageBooks)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.books, cmd = m.books.Update(msg)
	return m, cmd
}

func (m Model) updateAddBook(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form[m.formFocus].Blur()
		m.page = PageBooks
		return m, nil
	case "tab", "down":
		cmd := m.focusField((m.formFocus + 1) % len(m.form))
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusField((m.formFocus + len(m.form) - 1) % len(m.form))
		return m, cmd
	case "enter":
		if m.formFocus < len(m.form)-1 {
			cmd := m.focusField(m.formFocus + 1)
			return m, cmd
		}
		return m, m.createBook(m.formRequest())
	case "ctrl+s":
		return m, m.createBook(m.formRequest())
	}

	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	return m, cmd
}

func (m Model) updateBook(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		if msg.String() == "esc" {
			m.confirm = nil
			return m, nil
		}
		done, confirmed := m.confirm.Update(msg)
		if !done {
			return m, nil
		}
		m.confirm = nil
		if confirmed {
			return m, m.deleteBook(m.bookID)
		}
		return m, nil
	}

	if m.borrowing {
		switch msg.String() {
		case "esc":
			m.borrowing = false
			m.borrowName.Blur()
			return m, nil
		case "enter":
			name := m.borrowName.Value()
			m.borrowing = false
			m.borrowName.Blur()
			m.borrowName.Reset()
			return m, m.borrowBook(m.bookID, name)
		}
		var cmd tea.Cmd
		m.borrowName, cmd = m.borrowName.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		return m.leaveBook()
	case "b":
		if m.bookLoaded && m.book.Status == gen.Available {
			m.borrowing = true
			cmd := m.borrowName.Focus()
			return m, cmd
		}
		return m, nil
	case "r":
		if m.bookLoaded && m.book.Status == gen.Borrowed {
			return m, m.returnBook(m.bookID)
		}
		return m, nil
	case "d":
		if m.bookLoaded {
			d := NewConfirmationDialog("Delete book",
				fmt.Sprintf("Delete %q? Its loan history is kept.", m.book.Title))
			m.confirm = &d
		}
		return m, nil
	case "enter":
		if item, ok := m.history.SelectedItem().(loanItem); ok {
			return m.openBorrower(item.loan.BorrowerName)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func (m Model) updateBorrower(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		if m.bookLoaded {
			return m.openBook(m.bookID, PageBooks)
		}
		m.page = PageBooks
		return m, m.loadBooks(m.search.Value())
	case "enter":
		if item, ok := m.borrowerLoans.SelectedItem().(loanItem); ok {
			return m.openBook(item.loan.BookId, PageBorrower)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.borrowerLoans, cmd = m.borrowerLoans.Update(msg)
	return m, cmd
}

func (m Model) openBook(id int64, from Page) (tea.Model, tea.Cmd) {
	m.page = PageBook
	m.back = from
	m.bookID = id
	m.book = gen.Book{}
	m.bookLoaded = false
	m.borrowing = false
	m.confirm = nil
	cmd := m.history.SetItems(nil)
	return m, tea.Batch(cmd, m.loadBook(id))
}

func (m Model) leaveBook() (tea.Model, tea.Cmd) {
	if m.back == PageBorrower {
		m.page = PageBorrower
		return m, m.loadBorrower(m.borrower)
	}
	m.page = PageBooks
	return m, m.loadBooks(m.search.Value())
}

func (m Model) openBorrower(name string) (tea.Model, tea.Cmd) {
	m.page = PageBorrower
	m.borrower = name
	cmd := m.borrowerLoans.SetItems(nil)
	return m, tea.Batch(cmd, m.loadBorrower(name))
}

func (m *Model) focusField(i int) tea.Cmd {
	m.form[m.formFocus].Blur()
	m.formFocus = i
	return m.form[i].Focus()
}

func (m *Model) resetForm() {
	for i := range m.form {
		m.form[i].Reset()
		m.form[i].Blur()
	}
	m.formFocus = fieldTitle
}

func (m Model) formRequest() gen.CreateBookRequest {
	req := gen.CreateBookRequest{
		Title:  m.form[fieldTitle].Value(),
		Author: m.form[fieldAuthor].Value(),
	}
	if v := m.form[fieldISBN].Value(); v != "" {
		req.Isbn = &v
	}
	if v := m.form[fieldDescription].Value(); v != "" {
		req.Description = &v
	}
	return req
}

func (m *Model) resize() {
	w := max(m.width-4, 20)
	m.books.SetSize(w, max(m.height-8, 4))
	m.history.SetSize(w, max(m.height-16, 4))
	m.borrowerLoans.SetSize(w, max(m.height-8, 4))
	m.search.Width = max(w-len(m.search.Prompt), 10)
}

// View renders the UI
func (m Model) View() string {
	var body string
	switch m.page {
	case PageHome:
		body = m.viewHome()
	case PageBooks:
		body = m.viewBooks()
	case PageAddBook:
		body = m.viewAddBook()
	case PageBook:
		body = m.viewBook()
	case PageBorrower:
		body = m.viewBorrower()
	}

	if m.notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = noticeErrorStyle
		}
		body = lipgloss.JoinVertical(lipgloss.Left, body, style.Render(m.notice))
	}
	return body
}

func (m Model) viewHome() string {
	msg := titleStyle.Render("Welcome to Libris") + "\n" +
		subtitleStyle.Render("Catalog your books, lend them out, and see who has what.") + "\n" +
		helpLine("enter", "browse books", "q", "quit")
	return boxStyle.Render(msg)
}

func (m Model) viewBooks() string {
	var b strings.Builder
	b.WriteString(m.search.View())
	b.WriteString("\n\n")
	if len(m.books.Items()) == 0 {
		b.WriteString(titleStyle.Render("Books"))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("No books found"))
	} else {
		b.WriteString(m.books.View())
	}
	b.WriteString("\n")
	if m.searching {
		b.WriteString(helpLine("type", "search", "enter/esc", "done"))
	} else {
		b.WriteString(helpLine("↑/↓", "navigate", "enter", "open", "/", "search", "a", "add book", "esc", "home", "q", "quit"))
	}
	return b.String()
}

func (m Model) viewAddBook() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Add a book"))
	b.WriteString("\n")
	for i, in := range m.form {
		label := labelStyle.Render(formLabels[i])
		if i == m.formFocus {
			label = labelStyle.Foreground(colorPrimary).Render(formLabels[i])
		}
		b.WriteString(label + in.View() + "\n")
	}
	b.WriteString(helpLine("tab", "next field", "enter", "next/save", "ctrl+s", "save", "esc", "cancel"))
	return boxStyle.Render(b.String())
}

func (m Model) viewBook() string {
	if !m.bookLoaded {
		return mutedStyle.Render("Loading...")
	}
	if m.confirm != nil {
		return m.confirm.View()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.book.Title))
	b.WriteString("\n")
	field := func(label, value string) {
		if value == "" {
			value = mutedStyle.Render("-")
		}
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	field("Author", m.book.Author)
	field("ISBN", deref(m.book.Isbn))
	field("Description", deref(m.book.Description))
	field("Status", FormatStatus(string(m.book.Status)))
	b.WriteString("\n")

	if len(m.history.Items()) == 0 {
		b.WriteString(mutedStyle.Render("No borrowing history"))
	} else {
		b.WriteString(m.history.View())
	}
	b.WriteString("\n")

	if m.borrowing {
		b.WriteString(m.borrowName.View())
		b.WriteString("\n")
		b.WriteString(helpLine("enter", "borrow", "esc", "cancel"))
		return b.String()
	}

	keys := []string{"enter", "borrower"}
	switch m.book.Status {
	case gen.Available:
		keys = append(keys, "b", "borrow")
	case gen.Borrowed:
		keys = append(keys, "r", "return")
	}
	keys = append(keys, "d", "delete", "esc", "back")
	b.WriteString(helpLine(keys...))
	return b.String()
}

func (m Model) viewBorrower() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Borrowing history for " + m.borrower))
	b.WriteString("\n")
	if len(m.borrowerLoans.Items()) == 0 {
		b.WriteString(mutedStyle.Render("No borrowing history found"))
	} else {
		b.WriteString(m.borrowerLoans.View())
	}
	b.WriteString("\n")
	b.WriteString(helpLine("↑/↓", "navigate", "enter", "open book", "esc", "back", "q", "quit"))
	return b.String()
}

// Run starts the UI against api and blocks until the user quits.
func Run(api API) error {
	p := tea.NewProgram(NewModel(api), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
