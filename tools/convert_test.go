package tools

import (
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
)

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(defs))
	}

	tests := []struct {
		name     string
		tool     mcptypes.Tool
		required []string
		props    []string
	}{
		{name: SearchToolName, tool: defs[0], required: []string{"query"}, props: []string{"query", "max_results"}},
		{name: FetchToolName, tool: defs[1], required: []string{"url"}, props: []string{"url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, tt.tool.Name)
			}
			if tt.tool.Description == "" {
				t.Error("expected a description")
			}
			if len(tt.tool.InputSchema.Required) != len(tt.required) || tt.tool.InputSchema.Required[0] != tt.required[0] {
				t.Errorf("expected required %v, got %v", tt.required, tt.tool.InputSchema.Required)
			}
			for _, p := range tt.props {
				if _, ok := tt.tool.InputSchema.Properties[p]; !ok {
					t.Errorf("missing property %q", p)
				}
			}
		})
	}
}

func TestToOllama(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := ToOllama(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("web tools", func(t *testing.T) {
		result := ToOllama(Definitions())
		if len(result) != 2 {
			t.Fatalf("expected 2 tools, got %d", len(result))
		}
		search := result[0]
		if search.Type != "function" {
			t.Errorf("expected type 'function', got %q", search.Type)
		}
		if search.Function.Name != SearchToolName {
			t.Errorf("expected name %q, got %q", SearchToolName, search.Function.Name)
		}
		params := search.Function.Parameters
		if params.Type != "object" {
			t.Errorf("expected type 'object', got %q", params.Type)
		}
		query, ok := params.Properties["query"]
		if !ok {
			t.Fatal("query property not found")
		}
		if len(query.Type) != 1 || query.Type[0] != "string" {
			t.Errorf("expected type [string], got %v", query.Type)
		}
		if query.Description == "" {
			t.Error("expected query description")
		}
		maxResults := params.Properties["max_results"]
		if len(maxResults.Type) != 1 || maxResults.Type[0] != "number" {
			t.Errorf("expected type [number], got %v", maxResults.Type)
		}
	})
}

func TestOllamaProperty(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		validate func(t *testing.T, result api.ToolProperty)
	}{
		{
			name:  "string type",
			input: map[string]any{"type": "string", "description": "A string property"},
			validate: func(t *testing.T, result api.ToolProperty) {
				if len(result.Type) != 1 || result.Type[0] != "string" {
					t.Errorf("expected type [string], got %v", result.Type)
				}
				if result.Description != "A string property" {
					t.Errorf("description mismatch")
				}
			},
		},
		{
			name:  "multi type",
			input: map[string]any{"type": []any{"string", "number"}},
			validate: func(t *testing.T, result api.ToolProperty) {
				if len(result.Type) != 2 {
					t.Errorf("expected 2 types, got %d", len(result.Type))
				}
			},
		},
		{
			name:  "enum",
			input: map[string]any{"type": "string", "enum": []any{"a", "b", "c"}},
			validate: func(t *testing.T, result api.ToolProperty) {
				if len(result.Enum) != 3 {
					t.Errorf("expected 3 enum values, got %d", len(result.Enum))
				}
			},
		},
		{
			name:  "array items",
			input: map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			validate: func(t *testing.T, result api.ToolProperty) {
				if result.Items == nil {
					t.Error("expected items to be set")
				}
			},
		},
		{
			name: "anyOf",
			input: map[string]any{"anyOf": []any{
				map[string]any{"type": "string"},
				map[string]any{"type": "number"},
			}},
			validate: func(t *testing.T, result api.ToolProperty) {
				if len(result.AnyOf) != 2 {
					t.Errorf("expected 2 anyOf options, got %d", len(result.AnyOf))
				}
			},
		},
		{
			name:  "struct value",
			input: struct {
				Type string `json:"type"`
			}{Type: "boolean"},
			validate: func(t *testing.T, result api.ToolProperty) {
				if len(result.Type) != 1 || result.Type[0] != "boolean" {
					t.Errorf("expected type [boolean], got %v", result.Type)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, ollamaProperty(tt.input))
		})
	}
}

func TestToOpenAI(t *testing.T) {
	if got := ToOpenAI(nil); got != nil {
		t.Errorf("expected nil for no tools, got %v", got)
	}

	result := ToOpenAI(Definitions())
	if len(result) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(result))
	}
	fn := result[1].OfFunction
	if fn == nil {
		t.Fatal("expected a function tool")
	}
	if fn.Function.Name != FetchToolName {
		t.Errorf("expected name %q, got %q", FetchToolName, fn.Function.Name)
	}
	if fn.Function.Parameters["type"] != "object" {
		t.Errorf("expected object parameters, got %v", fn.Function.Parameters["type"])
	}
	required, ok := fn.Function.Parameters["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "url" {
		t.Errorf("expected required [url], got %v", fn.Function.Parameters["required"])
	}
}

func TestToAnthropic(t *testing.T) {
	if got := ToAnthropic(nil); got != nil {
		t.Errorf("expected nil for no tools, got %v", got)
	}

	result := ToAnthropic(Definitions())
	if len(result) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(result))
	}
	tool := result[0].OfTool
	if tool == nil {
		t.Fatal("expected a custom tool")
	}
	if tool.Name != SearchToolName {
		t.Errorf("expected name %q, got %q", SearchToolName, tool.Name)
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "query" {
		t.Errorf("expected required [query], got %v", tool.InputSchema.Required)
	}
}
