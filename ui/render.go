package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"

	"webassist/config"
	"webassist/model"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

const (
	ansiRed      = "\x1b[31m"
	ansiDarkGray = "\x1b[90m"
	ansiReset    = "\x1b[0m"
	codeGutter   = "┃"
)

// renderMarkdown renders an answer for the terminal. Links are reduced to
// bare URLs so the terminal can make them clickable.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}
	content = mdLinkRegex.ReplaceAllString(content, "$2")

	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	r := markdown.NewRenderer(width-4, 0)
	rendered := string(gomarkdown.Render(p.Parse([]byte(content)), r))

	rendered = inlineCodeRegex.ReplaceAllString(rendered, ansiRed+"$1"+ansiReset)
	rendered = colorURLs(rendered)
	return frameCodeBlocks(rendered, width)
}

func renderMarkdownCmd(index int, content string, width int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		rendered := renderMarkdown(content, width)
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Rendered message %d (%d chars) in %v", index, len(content), time.Since(start))
		}
		return markdownRenderedMsg{MessageIndex: index, Rendered: rendered}
	}
}

func colorURLs(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		// code block lines keep their own highlighting
		if !strings.Contains(line, codeGutter) {
			lines[i] = urlRegex.ReplaceAllString(line, ansiRed+"$1"+ansiReset)
		}
	}
	return strings.Join(lines, "\n")
}

// frameCodeBlocks swaps the renderer's gutter for horizontal rules above
// and below each code block.
func frameCodeBlocks(s string, width int) string {
	rule := ansiDarkGray + strings.Repeat("━", max(width-4, 1)) + ansiReset

	var out []string
	inBlock := false
	for _, line := range strings.Split(s, "\n") {
		if idx := strings.Index(line, codeGutter); idx >= 0 {
			if !inBlock {
				inBlock = true
				out = append(out, "", rule)
			}
			out = append(out, strings.TrimPrefix(line[idx+len(codeGutter):], " "))
			continue
		}
		if inBlock {
			inBlock = false
			out = append(out, rule, "")
		}
		out = append(out, line)
	}
	if inBlock {
		out = append(out, rule, "")
	}
	return strings.Join(out, "\n")
}

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func formatUserMessage(timestamp, role, content string) string {
	bar := UserStyle.Render("┃")

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", bar, timestamp, role)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(&b, "%s %s\n", bar, line)
	}
	b.WriteString("\n")
	return b.String()
}

// formatReasoning renders the "Thinking" block shown above an answer.
func formatReasoning(reasoning string, width int) string {
	var b strings.Builder
	b.WriteString(ReasoningStyle.Render("💭 Thinking"))
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimSpace(reasoning), "\n") {
		b.WriteString(ReasoningStyle.Render(wrap("  "+line, width)))
		b.WriteString("\n")
	}
	return b.String()
}

// formatToolTrace renders the web tool results of a turn. Collapsed, only
// the calls are listed.
func formatToolTrace(trace []model.ToolInvocation, expanded bool, width int) string {
	var b strings.Builder
	b.WriteString(ToolStyle.Render(fmt.Sprintf("🔍 Tool Results (%d)", len(trace))))
	if !expanded {
		b.WriteString(DimStyle.Render("  Alt+E to expand"))
	}
	b.WriteString("\n")

	for _, inv := range trace {
		b.WriteString(ToolStyle.Render("  • " + describeCall(inv)))
		b.WriteString("\n")
		if expanded {
			for _, line := range strings.Split(inv.Preview(model.PreviewLimit), "\n") {
				b.WriteString(DimStyle.Render(wrap("    "+line, width)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func describeCall(inv model.ToolInvocation) string {
	switch {
	case inv.Arguments["query"] != nil:
		return fmt.Sprintf("%s %q", inv.Name, fmt.Sprint(inv.Arguments["query"]))
	case inv.Arguments["url"] != nil:
		return fmt.Sprintf("%s %s", inv.Name, fmt.Sprint(inv.Arguments["url"]))
	default:
		return inv.Name
	}
}

// wrap hard-truncates a single line to the terminal width.
func wrap(line string, width int) string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return line
	}
	return runewidth.Truncate(line, width, "…")
}

func onOff(b bool) string {
	if b {
		return OnStyle.Render("on")
	}
	return DimStyle.Render("off")
}

// statusBar lays out the left and right segments across width, truncating
// the left side first.
func statusBar(left, right string, width int) string {
	rightWidth := runewidth.StringWidth(stripANSI(right))
	leftPlain := stripANSI(left)
	avail := width - rightWidth - 1
	if avail < 0 {
		avail = 0
	}
	if runewidth.StringWidth(leftPlain) > avail {
		left = runewidth.Truncate(leftPlain, avail, "…")
	}
	gap := width - runewidth.StringWidth(stripANSI(left)) - rightWidth
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func formatClock(t time.Time) string {
	return t.Format("Mon Jan 2, 2006 03:04 PM")
}
