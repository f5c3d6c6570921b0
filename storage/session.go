package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by every store when a session does not exist.
var ErrNotFound = errors.New("session not found")

// ToolInvocation records one tool call made while producing an answer
type ToolInvocation struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result"`
}

// Message represents a chat message
type Message struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Reasoning string           `json:"reasoning,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	ToolTrace []ToolInvocation `json:"tool_trace,omitempty"`
}

// Options are the per-session toggles
type Options struct {
	WebSearch     bool `json:"web_search"`
	ShowReasoning bool `json:"show_reasoning"`
}

// Session represents a persisted chat session
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Options   Options   `json:"options"`
	Messages  []Message `json:"messages"`
}

// SessionMetadata is a lightweight version of Session for listing
type SessionMetadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

func (s *Session) Metadata() SessionMetadata {
	return SessionMetadata{
		ID:           s.ID,
		Name:         s.Name,
		Model:        s.Model,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: len(s.Messages),
	}
}

// touch stamps UpdatedAt and fills CreatedAt on first save.
func (s *Session) touch() {
	s.UpdatedAt = time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
}

// GenerateSessionName generates a session name from the first user message
func GenerateSessionName(firstMessage string) string {
	name := strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ").Replace(firstMessage))
	if name == "" {
		return fmt.Sprintf("Session %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	runes := []rune(name)
	if len(runes) > 30 {
		name = strings.TrimSpace(string(runes[:30])) + "..."
	}
	return name
}
