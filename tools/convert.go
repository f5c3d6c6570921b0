package tools

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// Tool definitions are kept in the provider-neutral MCP schema and converted
// per provider at request time.

// ToOllama converts tool definitions to Ollama's function tool format.
func ToOllama(defs []mcptypes.Tool) []api.Tool {
	if len(defs) == 0 {
		return nil
	}

	out := make([]api.Tool, 0, len(defs))
	for _, def := range defs {
		params := api.ToolFunctionParameters{
			Type:       def.InputSchema.Type,
			Required:   def.InputSchema.Required,
			Properties: make(map[string]api.ToolProperty, len(def.InputSchema.Properties)),
		}
		if def.InputSchema.Defs != nil {
			params.Defs = def.InputSchema.Defs
		}
		for name, prop := range def.InputSchema.Properties {
			params.Properties[name] = ollamaProperty(prop)
		}

		out = append(out, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

// ollamaProperty maps one JSON schema property onto api.ToolProperty.
// Values that are not already maps are round-tripped through JSON.
func ollamaProperty(raw any) api.ToolProperty {
	prop := api.ToolProperty{}

	fields, ok := raw.(map[string]any)
	if !ok {
		b, err := json.Marshal(raw)
		if err != nil {
			return prop
		}
		if err := json.Unmarshal(b, &fields); err != nil {
			return prop
		}
	}

	switch t := fields["type"].(type) {
	case string:
		prop.Type = api.PropertyType{t}
	case []string:
		prop.Type = api.PropertyType(t)
	case []any:
		types := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				types = append(types, s)
			}
		}
		prop.Type = api.PropertyType(types)
	}

	if desc, ok := fields["description"].(string); ok {
		prop.Description = desc
	}
	if enum, ok := fields["enum"].([]any); ok {
		prop.Enum = enum
	}
	if items, ok := fields["items"]; ok {
		prop.Items = items
	}
	if anyOf, ok := fields["anyOf"].([]any); ok {
		prop.AnyOf = make([]api.ToolProperty, 0, len(anyOf))
		for _, item := range anyOf {
			prop.AnyOf = append(prop.AnyOf, ollamaProperty(item))
		}
	}

	return prop
}

// ToOpenAI converts tool definitions to the chat completions function tool
// format shared by OpenAI and OpenRouter.
func ToOpenAI(defs []mcptypes.Tool) []openai.ChatCompletionToolUnionParam {
	if len(defs) == 0 {
		return nil
	}

	out := make([]openai.ChatCompletionToolUnionParam, len(defs))
	for i, def := range defs {
		params := openai.FunctionParameters{
			"type":       def.InputSchema.Type,
			"properties": def.InputSchema.Properties,
		}
		if len(def.InputSchema.Required) > 0 {
			params["required"] = def.InputSchema.Required
		}
		if def.InputSchema.Defs != nil {
			params["$defs"] = def.InputSchema.Defs
		}

		out[i] = openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        def.Name,
			Description: openai.String(def.Description),
			Parameters:  params,
		})
	}
	return out
}

// ToAnthropic converts tool definitions to Anthropic tool params.
func ToAnthropic(defs []mcptypes.Tool) []anthropic.ToolUnionParam {
	if len(defs) == 0 {
		return nil
	}

	out := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		schema := anthropic.ToolInputSchemaParam{
			Properties: def.InputSchema.Properties,
		}
		if len(def.InputSchema.Required) > 0 {
			schema.Required = def.InputSchema.Required
		}
		if def.InputSchema.Defs != nil {
			schema.ExtraFields = map[string]any{"$defs": def.InputSchema.Defs}
		}

		out[i] = anthropic.ToolUnionParamOfTool(schema, def.Name)
		if def.Description != "" {
			out[i].OfTool.Description = anthropic.String(def.Description)
		}
	}
	return out
}
