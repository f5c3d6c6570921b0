package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"webassist/config"
	"webassist/model"
	"webassist/session"
	"webassist/storage"
)

// Reserved rows: title, separator, notice line, textarea (3) and status bar.
const chromeHeight = 7

// AppInfo describes the backend for the title and status bar.
type AppInfo struct {
	Provider       string
	Model          string
	ToolsAvailable bool
	Version        string
}

type App struct {
	session *session.Manager
	info    AppInfo
	clock   func() time.Time

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	awaiting      bool
	pending       string
	showHelp      bool
	toolsExpanded bool

	// rendered markdown by transcript index
	rendered map[int]string

	errMsg string
	notice string
	now    time.Time
}

func NewApp(m *session.Manager, info AppInfo) App {
	ta := textarea.New()
	ta.Placeholder = "Ask anything... (Alt+Enter for a new line)"
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return App{
		session:  m,
		info:     info,
		clock:    time.Now,
		viewport: viewport.New(0, 0),
		textarea: ta,
		spinner:  sp,
		rendered: make(map[int]string),
		now:      time.Now(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, clockTick())
}

func clockTick() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func submitCmd(m *session.Manager, text string) tea.Cmd {
	return func() tea.Msg {
		msg, err := m.Submit(context.Background(), text)
		if err != nil {
			return turnFailedMsg{Err: err}
		}
		return turnCompleteMsg{Message: msg}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{Err: clipboard.WriteAll(text)}
	}
}

// exportCmd writes the transcript as Markdown under ~/Downloads.
func exportCmd(snap *storage.Session, now time.Time) tea.Cmd {
	return func() tea.Msg {
		path := storage.GenerateExportPath(snap.Name, "md", now)
		return exportedMsg{Path: path, Err: storage.ExportMarkdown(snap, path)}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = a.width
		a.viewport.Height = max(a.height-chromeHeight, 1)
		a.textarea.SetWidth(a.width)

		resized := a.ready
		a.ready = true
		if resized {
			a.rendered = make(map[int]string)
		}
		a.refreshViewport(true)
		return a, a.renderPending()

	case tea.KeyMsg:
		if next, cmd, handled := a.handleKey(msg); handled {
			return next, cmd
		}

	case spinner.TickMsg:
		if a.awaiting {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			a.refreshViewport(true)
			return a, cmd
		}
		return a, nil

	case clockTickMsg:
		a.now = time.Time(msg)
		return a, clockTick()

	case turnCompleteMsg:
		a.awaiting = false
		a.pending = ""
		a.errMsg = ""
		a.textarea.Reset()
		a.refreshViewport(true)
		return a, a.renderPending()

	case turnFailedMsg:
		a.awaiting = false
		a.pending = ""
		if errors.Is(msg.Err, session.ErrTurnDiscarded) {
			a.refreshViewport(true)
			return a, nil
		}
		a.errMsg = describeError(msg.Err)
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Turn failed: %v", msg.Err)
		}
		a.refreshViewport(true)
		return a, nil

	case markdownRenderedMsg:
		a.rendered[msg.MessageIndex] = msg.Rendered
		a.refreshViewport(false)
		return a, nil

	case copiedMsg:
		if msg.Err != nil {
			a.notice = ErrorStyle.Render("Copy failed: " + msg.Err.Error())
		} else {
			a.notice = OnStyle.Render("Copied last answer to clipboard")
		}
		return a, nil

	case exportedMsg:
		if msg.Err != nil {
			a.notice = ErrorStyle.Render("Export failed: " + msg.Err.Error())
		} else {
			a.notice = OnStyle.Render("Exported to " + msg.Path)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	ctx := context.Background()

	switch msg.String() {
	case "ctrl+c", "alt+q":
		a.session.Cancel()
		return a, tea.Quit, true

	case "alt+h":
		a.showHelp = !a.showHelp
		return a, nil, true

	case "esc":
		if a.showHelp {
			a.showHelp = false
			return a, nil, true
		}
		if a.awaiting && a.session.Cancel() {
			a.notice = DimStyle.Render("Cancelling...")
		}
		return a, nil, true

	case "enter":
		return a.send()

	case "alt+w":
		enabled := !a.session.Options().WebSearch
		a.session.SetWebSearch(ctx, enabled)
		a.notice = ""
		if enabled && !a.info.ToolsAvailable {
			a.notice = ErrorStyle.Render("Web search needs OLLAMA_API_KEY; answering without tools")
		}
		return a, nil, true

	case "alt+r":
		a.session.SetShowReasoning(ctx, !a.session.Options().ShowReasoning)
		a.refreshViewport(false)
		return a, nil, true

	case "alt+e":
		a.toolsExpanded = !a.toolsExpanded
		a.refreshViewport(false)
		return a, nil, true

	case "alt+c":
		a.session.Clear(ctx)
		a.awaiting = false
		a.pending = ""
		a.errMsg = ""
		a.notice = DimStyle.Render("Chat cleared")
		a.rendered = make(map[int]string)
		a.refreshViewport(true)
		return a, nil, true

	case "alt+y":
		if last := lastAnswer(a.session.History()); last != "" {
			return a, copyCmd(last), true
		}
		a.notice = DimStyle.Render("Nothing to copy yet")
		return a, nil, true

	case "alt+x":
		if len(a.session.History()) == 0 {
			a.notice = DimStyle.Render("Nothing to export yet")
			return a, nil, true
		}
		return a, exportCmd(a.session.Snapshot(), a.clock()), true

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd, true
	}

	return a, nil, false
}

func (a App) send() (tea.Model, tea.Cmd, bool) {
	// a cleared turn stays Awaiting until its Submit returns
	if a.awaiting || a.session.State() == session.Awaiting {
		return a, nil, true
	}
	text := a.textarea.Value()
	if strings.TrimSpace(text) == "" {
		return a, nil, true
	}

	a.awaiting = true
	a.pending = text
	a.errMsg = ""
	a.notice = ""
	a.refreshViewport(true)

	return a, tea.Batch(submitCmd(a.session, text), a.spinner.Tick), true
}

// renderPending starts markdown rendering for answers not rendered yet.
func (a App) renderPending() tea.Cmd {
	if !a.ready {
		return nil
	}
	var cmds []tea.Cmd
	for i, msg := range a.session.Transcript() {
		if msg.Role != model.RoleAssistant {
			continue
		}
		if _, ok := a.rendered[i]; ok {
			continue
		}
		cmds = append(cmds, renderMarkdownCmd(i, msg.Content, a.width))
	}
	return tea.Batch(cmds...)
}

func (a *App) refreshViewport(gotoBottom bool) {
	transcript := a.session.Transcript()
	if len(transcript) == 0 && !a.awaiting {
		a.viewport.SetContent(DimStyle.Render("No messages yet. Start chatting!"))
		return
	}

	userStyle := lipgloss.NewStyle().Width(max(a.width-2, 10))

	var b strings.Builder
	for i, msg := range transcript {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		if msg.Role == model.RoleUser {
			b.WriteString(formatUserMessage(timestamp, UserStyle.Render("You"), userStyle.Render(msg.Content)))
			continue
		}

		fmt.Fprintf(&b, "%s %s\n", timestamp, AssistantStyle.Render("Assistant"))
		if msg.Reasoning != "" {
			b.WriteString(formatReasoning(msg.Reasoning, a.width))
			b.WriteString("\n")
		}
		if len(msg.ToolTrace) > 0 {
			b.WriteString(formatToolTrace(msg.ToolTrace, a.toolsExpanded, a.width))
			b.WriteString("\n")
		}
		body, ok := a.rendered[i]
		if !ok {
			body = msg.Content
		}
		b.WriteString(body)
		b.WriteString("\n\n")
	}

	if a.awaiting {
		timestamp := DimStyle.Render(a.clock().Format("[15:04]"))
		b.WriteString(formatUserMessage(timestamp, UserStyle.Render("You"), userStyle.Render(a.pending)))
		status := "Thinking..."
		if a.session.Options().WebSearch && a.info.ToolsAvailable {
			status = "Thinking (web search enabled)..."
		}
		fmt.Fprintf(&b, "%s %s\n", a.spinner.View(), DimStyle.Render(status))
	}

	a.viewport.SetContent(b.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func (a App) View() string {
	if !a.ready {
		return "Loading webassist..."
	}
	if a.showHelp {
		return renderHelp(a.width, a.height)
	}

	title := TitleStyle.Render("🤖 webassist") + " " + DimStyle.Render("AI assistant with web search")
	separator := BorderStyle.Render(strings.Repeat("─", a.width))

	notice := a.notice
	if a.errMsg != "" {
		notice = ErrorStyle.Render("✗ " + a.errMsg)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		separator,
		a.viewport.View(),
		notice,
		a.textarea.View(),
		a.statusLine(),
	)
}

func (a App) statusLine() string {
	opts := a.session.Options()
	left := StatusStyle.Render(fmt.Sprintf("%s · %s", a.info.Provider, a.info.Model))
	right := fmt.Sprintf("🔍 Web %s  💭 Reasoning %s  %s  %s",
		onOff(opts.WebSearch),
		onOff(opts.ShowReasoning),
		StatusStyle.Render(fmt.Sprintf("Messages: %d", len(a.session.History()))),
		StatusStyle.Render(formatClock(a.now)),
	)
	return statusBar(left, right, a.width)
}

func lastAnswer(history []model.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.RoleAssistant {
			return history[i].Content
		}
	}
	return ""
}

// describeError turns a failed turn into the single line shown above the
// input.
func describeError(err error) string {
	var fault *model.Fault
	if errors.As(err, &fault) {
		return fault.Diagnostic()
	}
	return err.Error()
}
