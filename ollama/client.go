package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultHost  = "https://ollama.com"
	DefaultModel = "qwen3:4b"
)

type Client struct {
	client  *api.Client
	model   string
	baseURL string
}

// NewClient creates a client for a local Ollama server or the ollama.com
// cloud. A non-empty apiKey is sent as a bearer token on every request.
func NewClient(baseURL, model, apiKey string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	httpClient := http.DefaultClient
	if apiKey != "" {
		httpClient = &http.Client{Transport: &BearerTransport{Token: apiKey}}
	}

	return &Client{
		client:  api.NewClient(parsedURL, httpClient),
		model:   model,
		baseURL: baseURL,
	}, nil
}

// BearerTransport adds an Authorization header to each outgoing request.
type BearerTransport struct {
	Token string
	Base  http.RoundTripper
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.Token)
	return base.RoundTrip(r)
}

// Chat sends a single non-streaming chat request and returns the model's
// message. Thinking is only requested from models known to support it.
func (c *Client) Chat(ctx context.Context, messages []api.Message, tools []api.Tool, think bool) (api.Message, error) {
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
		Stream:   func(b bool) *bool { return &b }(false),
	}
	if think && ModelSupportsThinking(c.model) {
		req.Think = &api.ThinkValue{Value: true}
	}

	var (
		content  strings.Builder
		thinking strings.Builder
		calls    []api.ToolCall
	)
	respFunc := func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		thinking.WriteString(resp.Message.Thinking)
		calls = append(calls, resp.Message.ToolCalls...)
		return nil
	}

	if err := c.client.Chat(ctx, req, respFunc); err != nil {
		return api.Message{}, err
	}

	return api.Message{
		Role:      "assistant",
		Content:   content.String(),
		Thinking:  thinking.String(),
		ToolCalls: calls,
	}, nil
}

type ModelInfo struct {
	Name     string
	Size     int64
	Provider string // Provider ID: "ollama", "openai", "openrouter", "anthropic"
}

func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	models := make([]ModelInfo, len(resp.Models))
	for i, model := range resp.Models {
		models[i] = ModelInfo{
			Name:     model.Name,
			Size:     model.Size,
			Provider: "ollama",
		}
	}

	return models, nil
}

func (c *Client) SetModel(model string) {
	c.model = model
}

func (c *Client) GetModel() string {
	return c.model
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.client.List(ctx)
	return err
}

// toolCallingModels tracks which model families support tool calling.
// This is a curated list based on Ollama documentation and community testing.
var toolCallingModels = map[string]bool{
	"qwen":        true,
	"gpt-oss":     true,
	"deepseek-v3": true,
	"kimi-k2":     true,
	"glm-4":       true,
	"llama3.1":    true,
	"llama3.2":    true,
	"llama3.3":    true,
	"mistral":     true,
	"command-r":   true,
	"nemotron":    true,
	"granite3":    true,

	"llama3-gradient": false,
	"llama3":          false,
	"phi":             false,
	"gemma":           false,
	"codellama":       false,
	"deepseek":        false,
}

// thinkingModels lists families that accept the think flag. Others reject it
// with a 400, so it is never sent to them.
var thinkingModels = map[string]bool{
	"qwen3":       true,
	"deepseek-r1": true,
	"deepseek-v3": true,
	"gpt-oss":     true,
	"magistral":   true,

	"qwen": false,
}

// orderedPrefixes defines the order to check model prefixes.
// Most specific prefixes come first so "llama3.2" is not matched as "llama3".
var orderedPrefixes = []string{
	"llama3.3", "llama3.2", "llama3.1",
	"llama3-gradient",
	"deepseek-r1", "deepseek-v3",
	"qwen3",
	"command-r", "qwen", "gpt-oss", "kimi-k2", "glm-4", "mistral", "magistral", "nemotron", "granite3",
	"codellama",
	"llama3",
	"deepseek", "phi", "gemma",
}

func lookup(table map[string]bool, modelName string) bool {
	modelName = strings.ToLower(modelName)
	for _, prefix := range orderedPrefixes {
		if strings.HasPrefix(modelName, prefix) {
			if supported, exists := table[prefix]; exists {
				return supported
			}
		}
	}
	return false
}

// ModelSupportsToolCalling reports whether a model name is known to handle
// Ollama's tool calling API. Unknown models are assumed not to.
func ModelSupportsToolCalling(modelName string) bool {
	return lookup(toolCallingModels, modelName)
}

// ModelSupportsThinking reports whether a model name accepts the think flag.
func ModelSupportsThinking(modelName string) bool {
	return lookup(thinkingModels, modelName)
}

func (c *Client) SupportsToolCalling() bool {
	return ModelSupportsToolCalling(c.model)
}
