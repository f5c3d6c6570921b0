package provider

import (
	"fmt"
	"strings"
)

// OpenRouterProvider connects to OpenRouter's API, which is OpenAI-compatible.
// Model names carry a vendor prefix (e.g., "qwen/qwen3-235b-a22b").
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a new OpenRouter provider instance.
func NewOpenRouterProvider(baseURL, apiKey, model string) (*OpenRouterProvider, error) {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}
	if model == "" {
		model = "qwen/qwen3-235b-a22b"
	}

	return &OpenRouterProvider{
		OpenAIProvider: newOpenAICompatible(string(ProviderTypeOpenRouter), baseURL, apiKey, model),
	}, nil
}

// DisplayName strips the vendor prefix for UI display.
// "qwen/qwen3-coder:free" → "qwen3-coder:free"
func (p *OpenRouterProvider) DisplayName() string {
	return stripProviderPrefix(p.model)
}

func stripProviderPrefix(modelName string) string {
	if idx := strings.Index(modelName, "/"); idx != -1 {
		return modelName[idx+1:]
	}
	return modelName
}
