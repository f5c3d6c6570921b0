package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrorModal reports a startup problem, such as an invalid configuration,
// before the chat screen exists. Any of Enter, Esc or q quits.
type ErrorModal struct {
	title  string
	lines  []string
	hint   string
	width  int
	height int
}

// NewErrorModal splits message into display lines. A non-empty hint is shown
// under the message in the accent color.
func NewErrorModal(title, message, hint string) ErrorModal {
	return ErrorModal{
		title: title,
		lines: strings.Split(strings.TrimSpace(message), "\n"),
		hint:  hint,
	}
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 8 {
		return m.title + ": " + strings.Join(m.lines, " ")
	}

	modalWidth := min(64, m.width-6)

	divider := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(dangerColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("✗ " + m.title)

	body := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Center)
	parts := []string{""}
	for _, line := range m.lines {
		parts = append(parts, body.Render(line))
	}
	if m.hint != "" {
		parts = append(parts, "", body.Foreground(accentColor).Render(m.hint))
	}
	parts = append(parts, "")

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Fix the configuration and restart. Press Enter to quit")

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		divider.Render(strings.Join(parts, "\n")),
		divider.Render(footer),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
