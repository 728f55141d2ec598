// Package output prints styled status lines for the libris CLI.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Success prints a success message
func Success(w io.Writer, format string, args ...any) {
	line(w, successStyle.Render("✓ "), format, args...)
}

// Warning prints a warning message
func Warning(w io.Writer, format string, args ...any) {
	line(w, warningStyle.Render("⚠ "), format, args...)
}

// Error prints an error message
func Error(w io.Writer, format string, args ...any) {
	line(w, errorStyle.Render("✗ "), format, args...)
}

// Info prints an info message
func Info(w io.Writer, format string, args ...any) {
	line(w, infoStyle.Render("ℹ "), format, args...)
}

// Muted prints a muted message
func Muted(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, primaryStyle.Render(title))
	_, _ = fmt.Fprintln(w, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// StatusIcon returns a colored icon for a migration state.
func StatusIcon(state string) string {
	switch state {
	case "applied":
		return successStyle.Render("✓")
	case "pending":
		return warningStyle.Render("○")
	default:
		return mutedStyle.Render("?")
	}
}

func line(w io.Writer, icon, format string, args ...any) {
	_, _ = fmt.Fprintln(w, icon+fmt.Sprintf(format, args...))
}
