package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"webassist/model"

	"github.com/ollama/ollama/api"
)

// ConvertToOllamaMessages converts model.Message to Ollama api.Message.
//
// Assistant tool-call turns keep their calls and tool results carry the tool
// name, so Ollama sees a native tool exchange. Reasoning and timestamps are
// not sent back to the model.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:      msg.Role,
			Content:   msg.Content,
			ToolCalls: ConvertFromProviderToolCalls(msg.ToolCalls),
			ToolName:  msg.ToolName,
		}
	}
	return result
}

// ConvertToProviderToolCalls converts Ollama api.ToolCall to provider-agnostic model.ToolCall.
//
// Ollama does not assign call IDs, so each call gets a positional one.
// Returns nil if the input is nil or empty.
func ConvertToProviderToolCalls(ollamaCalls []api.ToolCall) []model.ToolCall {
	if len(ollamaCalls) == 0 {
		return nil
	}

	result := make([]model.ToolCall, len(ollamaCalls))
	for i, call := range ollamaCalls {
		result[i] = model.ToolCall{
			ID:        fmt.Sprintf("call_%d", i),
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	}
	return result
}

// ConvertFromProviderToolCalls converts provider-agnostic model.ToolCall to Ollama api.ToolCall.
// Returns nil if the input is nil or empty.
func ConvertFromProviderToolCalls(providerCalls []model.ToolCall) []api.ToolCall {
	if len(providerCalls) == 0 {
		return nil
	}

	result := make([]api.ToolCall, len(providerCalls))
	for i, call := range providerCalls {
		result[i] = api.ToolCall{
			Function: api.ToolCallFunction{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		}
	}
	return result
}

// ParseToolArguments parses JSON arguments string into a map.
// Used by the OpenAI provider for tool call parsing.
func ParseToolArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil || args == nil {
		return make(map[string]any)
	}
	return args
}

// flattenToolTurn renders an assistant tool-call turn or a tool result as
// plain text, for providers whose messages are sent as text only.
func flattenToolTurn(msg model.Message) string {
	if msg.Role == model.RoleTool {
		return fmt.Sprintf("Result of %s:\n%s", msg.ToolName, msg.Content)
	}
	if len(msg.ToolCalls) == 0 {
		return msg.Content
	}

	var b strings.Builder
	if msg.Content != "" {
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	for i, call := range msg.ToolCalls {
		if i > 0 {
			b.WriteString("\n")
		}
		args, err := json.Marshal(call.Arguments)
		if err != nil {
			args = []byte("{}")
		}
		fmt.Fprintf(&b, "[called %s with %s]", call.Name, args)
	}
	return b.String()
}
