package provider

import (
	"context"
	"fmt"

	"webassist/config"
	"webassist/model"
	"webassist/ollama"
	"webassist/tools"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// OllamaProvider wraps ollama.Client to implement the Provider interface.
//
// It converts model.Message to api.Message, mcptypes.Tool to api.Tool, and
// api.ToolCall back to model.ToolCall.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// baseURL defaults to https://ollama.com and model to qwen3:4b. apiKey is
// required by the cloud and ignored by a local server.
func NewOllamaProvider(baseURL, apiKey, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Chat implements Provider.Chat.
//
// Tools are dropped for models not known to support tool calling, so the
// request still succeeds and the model answers from its own knowledge.
func (p *OllamaProvider) Chat(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, opts model.ChatOptions) (*model.ChatResult, error) {
	ollamaMessages := ConvertToOllamaMessages(messages)

	if len(defs) > 0 && !p.client.SupportsToolCalling() {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Ollama] Model '%s' does not support tool calling, sending without tools", p.client.GetModel())
		}
		defs = nil
	}

	resp, err := p.client.Chat(ctx, ollamaMessages, tools.ToOllama(defs), opts.Think)
	if err != nil {
		return nil, classifyError("ollama chat", err)
	}

	return &model.ChatResult{
		Content:   resp.Content,
		Reasoning: resp.Thinking,
		ToolCalls: ConvertToProviderToolCalls(resp.ToolCalls),
	}, nil
}

// ListModels implements Provider.ListModels (direct passthrough).
func (p *OllamaProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

// GetModel implements Provider.GetModel (direct passthrough).
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// SetModel implements Provider.SetModel (direct passthrough).
func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

// Ping implements Provider.Ping (direct passthrough).
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
