package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pkordes/libris/internal/handler/gen"
)

const dateLayout = "Jan 2, 2006 15:04"

// ConfirmationDialog represents a yes/no confirmation dialog
type ConfirmationDialog struct {
	Title       string
	Message     string
	YesSelected bool
}

// NewConfirmationDialog creates a dialog with "No" preselected.
func NewConfirmationDialog(title, message string) ConfirmationDialog {
	return ConfirmationDialog{Title: title, Message: message}
}

// Update moves the selection. It reports done once enter is pressed, with
// confirmed telling which button was chosen.
func (d *ConfirmationDialog) Update(msg tea.KeyMsg) (done, confirmed bool) {
	switch msg.String() {
	case "left", "h", "y":
		d.YesSelected = true
		if msg.String() == "y" {
			return true, true
		}
	case "right", "l", "n":
		d.YesSelected = false
		if msg.String() == "n" {
			return true, false
		}
	case "enter":
		return true, d.YesSelected
	}
	return false, false
}

// View renders the confirmation dialog
func (d ConfirmationDialog) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(d.Message)
	b.WriteString("\n\n")

	yes := inactiveButtonStyle.Render("Yes")
	no := inactiveButtonStyle.Render("No")
	if d.YesSelected {
		yes = activeButtonStyle.Render("Yes")
	} else {
		no = activeButtonStyle.Render("No")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yes, "  ", no))
	b.WriteString("\n")
	b.WriteString(helpLine("←/→", "choose", "enter", "confirm", "esc", "cancel"))

	return boxStyle.BorderForeground(colorDanger).Render(b.String())
}

// bookItem is a catalog row.
type bookItem struct{ book gen.Book }

func (i bookItem) FilterValue() string { return i.book.Title }
func (i bookItem) Title() string       { return i.book.Title }
func (i bookItem) Description() string {
	return mutedStyle.Render(i.book.Author) + "  " + FormatStatus(string(i.book.Status))
}

// loanItem is a loan row. byBook selects the label: the borrower's name on a
// book's history, the book id on a borrower's page.
type loanItem struct {
	loan   gen.Loan
	byBook bool
}

func (i loanItem) FilterValue() string { return i.loan.BorrowerName }

func (i loanItem) Title() string {
	state := "active"
	if i.loan.ReturnedAt != nil {
		state = "returned"
	}
	label := fmt.Sprintf("Book #%d", i.loan.BookId)
	if i.byBook {
		label = i.loan.BorrowerName
	}
	return label + "  " + FormatStatus(state)
}

func (i loanItem) Description() string {
	s := "Borrowed: " + i.loan.BorrowedAt.Local().Format(dateLayout)
	if i.loan.ReturnedAt != nil {
		s += "  Returned: " + i.loan.ReturnedAt.Local().Format(dateLayout)
	}
	return mutedStyle.Render(s)
}

// itemDelegate renders any list.DefaultItem as a two-line row with a cursor.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 2 }
func (d itemDelegate) Spacing() int                            { return 1 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(list.DefaultItem)
	if !ok {
		return
	}

	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render("▸ " + i.Title() + "\n  " + i.Description())
	} else {
		s = unselectedItemStyle.Render(i.Title() + "\n" + i.Description())
	}

	_, _ = fmt.Fprint(w, s)
}

func newList(title string) list.Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = titleStyle
	return l
}

func bookItems(books []gen.Book) []list.Item {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookItem{book: b}
	}
	return items
}

func loanItems(loans []gen.Loan, byBook bool) []list.Item {
	items := make([]list.Item, len(loans))
	for i, l := range loans {
		items[i] = loanItem{loan: l, byBook: byBook}
	}
	return items
}
