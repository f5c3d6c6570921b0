// Package provider implements model.Provider for the supported LLM backends.
//
// Every backend answers one chat round at a time: the assistant service owns
// the tool loop and hands each provider the full message list, including the
// assistant tool-call turns and tool results produced so far. Providers only
// translate between the provider-neutral model types and their SDK types,
// and classify SDK errors into *model.Fault values.
//
// # Architecture
//
//   - model.Provider defines the contract (interface)
//   - provider.OllamaProvider talks to a local server or the ollama.com cloud
//   - provider.OpenAIProvider talks to OpenAI and OpenRouter
//   - provider.AnthropicProvider talks to the Claude API
//   - provider.NewProvider() creates a provider from Config
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeOllama,
//	    Model:  "qwen3:4b",
//	    APIKey: os.Getenv("OLLAMA_API_KEY"),
//	})
//	if err != nil {
//	    // handle error
//	}
//	result, err := p.Chat(ctx, messages, tools.Definitions(), model.ChatOptions{Think: true})
package provider

// Note: The Provider interface is defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // Optional for a local Ollama server
}
