package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorDanger  = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorText    = lipgloss.Color("#F3F4F6")
	colorBorder  = lipgloss.Color("#4B5563")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorInfo)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(13)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				PaddingLeft(2)

	unselectedItemStyle = lipgloss.NewStyle().
				Foreground(colorText).
				PaddingLeft(4)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	activeButtonStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorPrimary).
				Padding(0, 3).
				Bold(true)

	inactiveButtonStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Background(lipgloss.Color("#1F2937")).
				Padding(0, 3)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			MarginTop(1)

	noticeErrorStyle = lipgloss.NewStyle().
				Foreground(colorDanger).
				Bold(true).
				MarginTop(1)
)

// FormatStatus renders a book status or loan state with its marker.
func FormatStatus(status string) string {
	switch status {
	case "available", "returned":
		return successStyle.Render("✓ " + status)
	case "borrowed":
		return warningStyle.Render("○ " + status)
	case "active":
		return infoStyle.Render("◉ " + status)
	default:
		return mutedStyle.Render(status)
	}
}

// FormatKey formats a help key
func FormatKey(key, description string) string {
	return helpKeyStyle.Render(key) + " " + mutedStyle.Render(description)
}

func helpLine(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, FormatKey(pairs[i], pairs[i+1]))
	}
	return helpStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, joinWith(parts, " • ")...))
}

func joinWith(parts []string, sep string) []string {
	out := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p)
	}
	return out
}
