package testutil

import (
	"time"

	"webassist/model"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   "What is the capital of France?",
			Timestamp: time.Now(),
		},
		{
			Role:      model.RoleAssistant,
			Content:   "The capital of France is Paris.",
			Reasoning: "Simple geography question.",
			Timestamp: time.Now(),
		},
		{
			Role:      model.RoleUser,
			Content:   "What's the latest news there?",
			Timestamp: time.Now(),
		},
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   content,
			Timestamp: time.Now(),
		},
	}
}

// ToolExchange returns an assistant tool-call turn followed by its result.
func ToolExchange() []model.Message {
	return []model.Message{
		{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{
				{ID: "call_0", Name: "web_search", Arguments: map[string]any{"query": "paris news"}},
			},
		},
		{
			Role:       model.RoleTool,
			Content:    "1. Paris hosts summit\n   https://example.com/paris\n   ...",
			ToolName:   "web_search",
			ToolCallID: "call_0",
		},
	}
}

// TestMCPTools returns sample MCP tools for testing
func TestMCPTools() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "get_weather",
			Description: "Get the current weather for a location",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "The city and state, e.g. San Francisco, CA",
					},
				},
				Required: []string{"location"},
			},
		},
	}
}

// SystemMessage returns a system message for testing
func SystemMessage(content string) model.Message {
	return model.Message{
		Role:      model.RoleSystem,
		Content:   content,
		Timestamp: time.Now(),
	}
}
