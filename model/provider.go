package model

import (
	"context"

	"webassist/ollama"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts LLM provider implementations (Ollama, OpenAI, Anthropic)
// using provider-agnostic types from the model layer.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations can import model, and the assistant
// service can use the Provider interface without importing the provider package.
type Provider interface {
	// Chat sends one round of messages and returns the model's answer or the
	// tool calls it wants executed. tools may be nil.
	Chat(ctx context.Context, messages []Message, tools []mcptypes.Tool, opts ChatOptions) (*ChatResult, error)

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
