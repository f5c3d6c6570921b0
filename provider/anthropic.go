package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"webassist/model"
	"webassist/ollama"
	"webassist/tools"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const (
	anthropicMaxTokens      = 8192
	anthropicThinkingBudget = 2048
)

// AnthropicProvider implements the Provider interface using Anthropic's official API.
type AnthropicProvider struct {
	client  *anthropic.Client
	model   anthropic.Model
	baseURL string
}

// NewAnthropicProvider creates a new Anthropic provider instance.
//
// Parameters:
//   - baseURL: Anthropic API base URL (default: "https://api.anthropic.com")
//   - apiKey: Anthropic API key (required)
//   - model: Initial model to use (default: "claude-sonnet-4-5-20250929")
func NewAnthropicProvider(baseURL, apiKey, model string) (*AnthropicProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	anthropicModel := anthropic.ModelClaudeSonnet4_5_20250929
	if model != "" {
		anthropicModel = anthropic.Model(model)
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client:  &client,
		model:   anthropicModel,
		baseURL: baseURL,
	}, nil
}

// Chat implements Provider.Chat. Extended thinking is enabled when requested
// and the model supports it.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, opts model.ChatOptions) (*model.ChatResult, error) {
	anthropicMessages, systemPrompt := convertToAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  anthropicMessages,
		MaxTokens: anthropicMaxTokens,
	}
	if len(systemPrompt) > 0 {
		params.System = systemPrompt
	}
	if len(defs) > 0 {
		params.Tools = tools.ToAnthropic(defs)
	}
	if opts.Think && anthropicSupportsThinking(string(p.model)) {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(anthropicThinkingBudget)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyError("anthropic chat", err)
	}

	return parseAnthropicContent(msg.Content), nil
}

// ListModels implements Provider.ListModels with a curated list of models.
func (p *AnthropicProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	models := []anthropic.Model{
		anthropic.ModelClaudeSonnet4_5_20250929,
		anthropic.ModelClaude3_5Haiku20241022,
		anthropic.ModelClaude_3_Opus_20240229,
		anthropic.ModelClaude_3_Haiku_20240307,
	}

	result := make([]ollama.ModelInfo, 0, len(models))
	for _, m := range models {
		result = append(result, ollama.ModelInfo{
			Name:     string(m),
			Provider: string(ProviderTypeAnthropic),
		})
	}

	return result, nil
}

// GetModel implements Provider.GetModel.
func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

// SetModel implements Provider.SetModel.
func (p *AnthropicProvider) SetModel(model string) {
	p.model = anthropic.Model(model)
}

// Ping implements Provider.Ping with a minimal request, since Anthropic has
// no health endpoint.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}

// anthropicSupportsThinking reports whether the model accepts extended thinking.
func anthropicSupportsThinking(modelName string) bool {
	for _, prefix := range []string{"claude-sonnet-4", "claude-opus-4", "claude-haiku-4", "claude-3-7-sonnet"} {
		if strings.HasPrefix(modelName, prefix) {
			return true
		}
	}
	return false
}

// convertToAnthropicMessages converts model messages to Anthropic format.
// System messages move to the separate system parameter; tool-call turns
// and tool results are flattened to text.
func convertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})
		case model.RoleAssistant:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(flattenToolTurn(msg))),
			)
		case model.RoleTool:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(flattenToolTurn(msg))),
			)
		default:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)),
			)
		}
	}

	return anthropicMsgs, systemBlocks
}

// parseAnthropicContent collects text, thinking and tool use blocks.
func parseAnthropicContent(content []anthropic.ContentBlockUnion) *model.ChatResult {
	var text, thinking strings.Builder
	result := &model.ChatResult{}

	for _, block := range content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(variant.Text)
		case anthropic.ThinkingBlock:
			thinking.WriteString(variant.Thinking)
		case anthropic.ToolUseBlock:
			var args map[string]any
			if err := json.Unmarshal(variant.Input, &args); err != nil {
				continue
			}
			result.ToolCalls = append(result.ToolCalls, model.ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: args,
			})
		}
	}

	result.Content = text.String()
	result.Reasoning = thinking.String()
	return result
}
