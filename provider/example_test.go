package provider_test

import (
	"context"
	"fmt"
	"log"

	"webassist/model"
	"webassist/provider"
	"webassist/tools"
)

// ExampleNewProvider demonstrates creating an Ollama provider using the factory.
func ExampleNewProvider() {
	cfg := provider.Config{
		Type:    provider.ProviderTypeOllama,
		BaseURL: "http://localhost:11434",
		Model:   "qwen3:4b",
	}

	p, err := provider.NewProvider(cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Provider created: %T\n", p)
	// Output: Provider created: *provider.OllamaProvider
}

// ExampleNewOllamaProvider demonstrates creating an Ollama provider directly.
func ExampleNewOllamaProvider() {
	p, err := provider.NewOllamaProvider("http://localhost:11434", "", "qwen3:4b")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Current model: %s\n", p.GetModel())

	p.SetModel("gpt-oss:20b")
	fmt.Printf("New model: %s\n", p.GetModel())

	// Output:
	// Current model: qwen3:4b
	// New model: gpt-oss:20b
}

// ExampleOllamaProvider_Chat demonstrates one chat round with the web tools
// offered to the model.
//
// Note: This example doesn't run because it requires the ollama.com cloud.
func ExampleOllamaProvider_Chat() {
	p, err := provider.NewOllamaProvider("", "your-ollama-api-key", "qwen3:4b")
	if err != nil {
		log.Fatal(err)
	}

	messages := []model.Message{
		{Role: model.RoleUser, Content: "What happened in the news today?"},
	}

	result, err := p.Chat(context.Background(), messages, tools.Definitions(), model.ChatOptions{Think: true})
	if err != nil {
		log.Fatal(err)
	}

	for _, call := range result.ToolCalls {
		fmt.Printf("Model wants %s(%v)\n", call.Name, call.Arguments)
	}
	fmt.Println(result.Content)
}
