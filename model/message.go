package model

import (
	"fmt"
	"maps"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message in the conversation
type Message struct {
	Role      string
	Content   string
	Reasoning string // Thinking text from reasoning-capable models
	Timestamp time.Time
	ToolTrace []ToolInvocation // Web tools used while producing this answer

	// Set only on messages exchanged with a provider during a tool loop;
	// session history never carries them.
	ToolCalls  []ToolCall
	ToolName   string
	ToolCallID string
}

// ToolCall is a provider-agnostic tool call requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolInvocation records one executed tool call and its output.
type ToolInvocation struct {
	Name      string
	Arguments map[string]any
	Result    string
}

// PreviewLimit is the number of characters of a tool result shown to the user.
const PreviewLimit = 2000

// Preview returns the result cut to limit characters, with a note when
// anything was dropped.
func (t ToolInvocation) Preview(limit int) string {
	runes := []rune(t.Result)
	if limit <= 0 || len(runes) <= limit {
		return t.Result
	}
	return fmt.Sprintf("%s...\n\n[Result truncated - showing first %d characters]", string(runes[:limit]), limit)
}

// Clone returns a deep copy of the message slices so callers can't mutate
// shared history.
func (m Message) Clone() Message {
	c := m
	if m.ToolTrace != nil {
		c.ToolTrace = make([]ToolInvocation, len(m.ToolTrace))
		for i, inv := range m.ToolTrace {
			c.ToolTrace[i] = inv
			c.ToolTrace[i].Arguments = maps.Clone(inv.Arguments)
		}
	}
	if m.ToolCalls != nil {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, call := range m.ToolCalls {
			c.ToolCalls[i] = call
			c.ToolCalls[i].Arguments = maps.Clone(call.Arguments)
		}
	}
	return c
}
