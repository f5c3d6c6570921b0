package testutil

import (
	"context"
	"sync"

	"webassist/model"
	"webassist/ollama"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	ChatFunc       func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, opts model.ChatOptions) (*model.ChatResult, error)
	ListModelsFunc func(ctx context.Context) ([]ollama.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	mu           sync.Mutex
	currentModel string
	calls        []ChatCall
}

// ChatCall records the arguments of one Chat invocation.
type ChatCall struct {
	Messages []model.Message
	Tools    []mcptypes.Tool
	Options  model.ChatOptions
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
	}
	mock.ChatFunc = mock.defaultChat
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

func (m *MockProvider) defaultChat(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, opts model.ChatOptions) (*model.ChatResult, error) {
	return &model.ChatResult{Content: "Mock response"}, nil
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return []ollama.ModelInfo{
		{Name: "mock-model-1", Size: 1000},
		{Name: "mock-model-2", Size: 2000},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Chat(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, opts model.ChatOptions) (*model.ChatResult, error) {
	m.mu.Lock()
	copied := make([]model.Message, len(messages))
	for i, msg := range messages {
		copied[i] = msg.Clone()
	}
	m.calls = append(m.calls, ChatCall{Messages: copied, Tools: tools, Options: opts})
	m.mu.Unlock()

	return m.ChatFunc(ctx, messages, tools, opts)
}

// Calls returns every Chat invocation seen so far.
func (m *MockProvider) Calls() []ChatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChatCall(nil), m.calls...)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

// ScriptedChat returns a ChatFunc that answers with each result in turn and
// repeats the last one once the script runs out.
func ScriptedChat(results ...*model.ChatResult) func(context.Context, []model.Message, []mcptypes.Tool, model.ChatOptions) (*model.ChatResult, error) {
	var (
		mu sync.Mutex
		i  int
	)
	return func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, opts model.ChatOptions) (*model.ChatResult, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(results) == 0 {
			return &model.ChatResult{}, nil
		}
		r := results[i]
		if i < len(results)-1 {
			i++
		}
		return r, nil
	}
}
