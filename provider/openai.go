package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"webassist/model"
	"webassist/ollama"
	"webassist/tools"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider implements the Provider interface using OpenAI's official Go SDK.
// It serves both OpenAI and OpenAI-compatible APIs such as OpenRouter.
type OpenAIProvider struct {
	client  openai.Client
	id      string
	model   string
	baseURL string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - model: Initial model to use (default: "gpt-4o-mini")
func NewOpenAIProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return newOpenAICompatible(string(ProviderTypeOpenAI), baseURL, apiKey, model), nil
}

func newOpenAICompatible(id, baseURL, apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:  client,
		id:      id,
		model:   model,
		baseURL: baseURL,
	}
}

// Chat implements Provider.Chat with a single non-streaming completion.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, opts model.ChatOptions) (*model.ChatResult, error) {
	params := openai.ChatCompletionNewParams{
		Messages: ConvertToOpenAIMessages(messages),
		Model:    openai.ChatModel(p.model),
	}
	if len(defs) > 0 {
		params.Tools = tools.ToOpenAI(defs)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyError(p.id+" chat", err)
	}
	if len(resp.Choices) == 0 {
		return nil, model.NewFault(model.FaultMalformedResponse, p.id+" chat", fmt.Errorf("response contained no choices"))
	}

	msg := resp.Choices[0].Message
	result := &model.ChatResult{
		Content:   msg.Content,
		Reasoning: extractReasoning(msg.RawJSON()),
	}
	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, model.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: ParseToolArguments(tc.Function.Arguments),
		})
	}

	return result, nil
}

// extractReasoning reads the non-standard "reasoning" field that OpenRouter
// and some compatible servers add to the assistant message.
func extractReasoning(raw string) string {
	if raw == "" {
		return ""
	}
	var extra struct {
		Reasoning        string `json:"reasoning"`
		ReasoningContent string `json:"reasoning_content"`
	}
	if err := json.Unmarshal([]byte(raw), &extra); err != nil {
		return ""
	}
	if extra.Reasoning != "" {
		return extra.Reasoning
	}
	return extra.ReasoningContent
}

// ListModels implements Provider.ListModels.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	modelsPage, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s models: %w", p.id, err)
	}

	result := make([]ollama.ModelInfo, 0, len(modelsPage.Data))
	for _, m := range modelsPage.Data {
		result = append(result, ollama.ModelInfo{
			Name:     m.ID,
			Provider: p.id,
		})
	}

	return result, nil
}

// GetModel implements Provider.GetModel.
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// SetModel implements Provider.SetModel.
func (p *OpenAIProvider) SetModel(model string) {
	p.model = model
}

// Ping implements Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", p.id, err)
	}
	return nil
}

// ConvertToOpenAIMessages converts model messages to OpenAI format.
// Tool-call turns and tool results are flattened to text.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case model.RoleAssistant:
			result[i] = openai.AssistantMessage(flattenToolTurn(msg))
		case model.RoleTool:
			result[i] = openai.UserMessage(flattenToolTurn(msg))
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}

	return result
}
