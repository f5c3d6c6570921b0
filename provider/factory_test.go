package provider

import (
	"testing"

	"webassist/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		expectNil   bool
	}{
		{
			name:   "ollama provider with defaults",
			config: Config{Type: ProviderTypeOllama},
		},
		{
			name: "ollama provider with local server",
			config: Config{
				Type:    ProviderTypeOllama,
				BaseURL: "http://localhost:11434",
				Model:   "qwen3:8b",
			},
		},
		{
			name: "openai provider",
			config: Config{
				Type:    ProviderTypeOpenAI,
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
				APIKey:  "test-key",
			},
		},
		{
			name:        "openai provider without key",
			config:      Config{Type: ProviderTypeOpenAI, Model: "gpt-4o-mini"},
			expectError: true,
			expectNil:   true,
		},
		{
			name:   "openrouter provider",
			config: Config{Type: ProviderTypeOpenRouter, APIKey: "test-key"},
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:    ProviderTypeAnthropic,
				BaseURL: "https://api.anthropic.com",
				Model:   "claude-sonnet-4-5-20250929",
				APIKey:  "test-key",
			},
		},
		{
			name: "unknown provider type",
			config: Config{
				Type:    ProviderType("unknown"),
				BaseURL: "http://localhost",
				Model:   "test",
			},
			expectError: true,
			expectNil:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.expectNil && provider != nil {
				t.Error("expected nil provider, got non-nil")
			}
			if !tt.expectNil && provider == nil {
				t.Error("expected non-nil provider, got nil")
			}
		})
	}
}

func TestFactoryDefaults(t *testing.T) {
	tests := []struct {
		config    Config
		wantModel string
		wantType  any
	}{
		{Config{Type: ProviderTypeOllama}, "qwen3:4b", &OllamaProvider{}},
		{Config{Type: ProviderTypeOpenAI, APIKey: "k"}, "gpt-4o-mini", &OpenAIProvider{}},
		{Config{Type: ProviderTypeOpenRouter, APIKey: "k"}, "qwen/qwen3-235b-a22b", &OpenRouterProvider{}},
		{Config{Type: ProviderTypeAnthropic, APIKey: "k"}, "claude-sonnet-4-5-20250929", &AnthropicProvider{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.config.Type), func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := p.GetModel(); got != tt.wantModel {
				t.Errorf("GetModel() = %q, want %q", got, tt.wantModel)
			}

			var ok bool
			switch tt.wantType.(type) {
			case *OllamaProvider:
				_, ok = p.(*OllamaProvider)
			case *OpenAIProvider:
				_, ok = p.(*OpenAIProvider)
			case *OpenRouterProvider:
				_, ok = p.(*OpenRouterProvider)
			case *AnthropicProvider:
				_, ok = p.(*AnthropicProvider)
			}
			if !ok {
				t.Errorf("expected %T, got %T", tt.wantType, p)
			}
		})
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := map[string]ProviderType{
		"":           ProviderTypeOllama,
		"ollama":     ProviderTypeOllama,
		"openai":     ProviderTypeOpenAI,
		"openrouter": ProviderTypeOpenRouter,
		"anthropic":  ProviderTypeAnthropic,
		"mystery":    ProviderType("mystery"),
	}
	for id, want := range tests {
		if got := MapProviderIDToType(id); got != want {
			t.Errorf("MapProviderIDToType(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestProvidersImplementInterface(t *testing.T) {
	var _ model.Provider = (*OllamaProvider)(nil)
	var _ model.Provider = (*OpenAIProvider)(nil)
	var _ model.Provider = (*OpenRouterProvider)(nil)
	var _ model.Provider = (*AnthropicProvider)(nil)
}
