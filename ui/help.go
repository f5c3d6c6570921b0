package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type shortcut struct {
	key  string
	desc string
}

var (
	chatShortcuts = []shortcut{
		{"Enter", "Send message"},
		{"Alt+Enter", "New line"},
		{"Esc", "Cancel pending answer"},
		{"Alt+C", "Clear chat"},
		{"Alt+Y", "Copy last answer"},
		{"Alt+X", "Export chat to Markdown"},
	}

	toggleShortcuts = []shortcut{
		{"Alt+W", "Web search on/off"},
		{"Alt+R", "Show reasoning on/off"},
		{"Alt+E", "Expand tool results"},
	}

	navShortcuts = []shortcut{
		{"PgUp/PgDn", "Scroll one page"},
		{"Ctrl+U/D", "Half page up/down"},
		{"Alt+H", "Toggle this help"},
		{"Alt+Q", "Quit"},
		{"Ctrl+C", "Quit"},
	}
)

func shortcutSection(heading string, keys []shortcut) string {
	blue := lipgloss.NewStyle().Foreground(accentColor)
	lines := []string{blue.Render("## " + heading)}
	for _, s := range keys {
		lines = append(lines, fmt.Sprintf("• %-11s %s", s.key, s.desc))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderHelp(width, height int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render("webassist - Keyboard Shortcuts")

	column1 := lipgloss.JoinVertical(
		lipgloss.Left,
		shortcutSection("Chat", chatShortcuts),
		"",
		shortcutSection("Toggles", toggleShortcuts),
	)
	column2 := lipgloss.JoinVertical(
		lipgloss.Left,
		shortcutSection("Navigation", navShortcuts),
		"",
		shortcutSection("Tips", []shortcut{
			{"Web search", "needs OLLAMA_API_KEY"},
			{"Reasoning", "is hidden, not discarded"},
		}),
	)

	columnStyle := lipgloss.NewStyle().Width(38).PaddingLeft(2)
	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"  ",
		columnStyle.Render(column2),
	)

	footer := HelpStyle.Render("Press Alt+H or Esc to close this help")

	content := lipgloss.JoinVertical(lipgloss.Center, title, "", columns, "", footer)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		MaxWidth(width)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpBox.Render(content))
}
