package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SanitizeFilename replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	name = strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-",
		"<", "-", ">", "-", "|", "-", " ", "-", "\n", "-", "\r", "-",
	).Replace(name)
	name = strings.Trim(name, "-.")

	runes := []rune(name)
	if len(runes) > 50 {
		name = string(runes[:50])
	}
	if name == "" {
		name = "session"
	}
	return name
}

// GenerateExportPath returns ~/Downloads/webassist-<name>-<timestamp>.<ext>
func GenerateExportPath(sessionName, ext string, now time.Time) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	filename := fmt.Sprintf("webassist-%s-%s.%s", SanitizeFilename(sessionName), now.Format("20060102-150405"), ext)
	return filepath.Join(homeDir, "Downloads", filename)
}

// ExportJSON writes the full session, reasoning and tool traces included.
func ExportJSON(session *Session, exportPath string) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return writeExport(exportPath, data)
}

// ExportMarkdown writes the conversation as a readable transcript. Reasoning
// is included only when the session shows it.
func ExportMarkdown(session *Session, exportPath string) error {
	return writeExport(exportPath, []byte(RenderMarkdown(session)))
}

func RenderMarkdown(session *Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", session.Name)
	fmt.Fprintf(&b, "_Model: %s · Created: %s_\n\n", session.Model, session.CreatedAt.Format("2006-01-02 15:04"))

	for _, msg := range session.Messages {
		switch msg.Role {
		case "user":
			fmt.Fprintf(&b, "## You (%s)\n\n%s\n\n", msg.Timestamp.Format("15:04"), msg.Content)
		default:
			fmt.Fprintf(&b, "## Assistant (%s)\n\n", msg.Timestamp.Format("15:04"))
			if session.Options.ShowReasoning && msg.Reasoning != "" {
				for _, line := range strings.Split(strings.TrimSpace(msg.Reasoning), "\n") {
					fmt.Fprintf(&b, "> %s\n", line)
				}
				b.WriteString("\n")
			}
			for _, inv := range msg.ToolTrace {
				fmt.Fprintf(&b, "- `%s`", inv.Name)
				if q, ok := inv.Arguments["query"]; ok {
					fmt.Fprintf(&b, " %v", q)
				} else if u, ok := inv.Arguments["url"]; ok {
					fmt.Fprintf(&b, " %v", u)
				}
				b.WriteString("\n")
			}
			if len(msg.ToolTrace) > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s\n\n", msg.Content)
		}
	}
	return b.String()
}

func writeExport(exportPath string, data []byte) error {
	// 0700 dir, 0600 file - exports contain the full conversation
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
