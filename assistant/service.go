// Package assistant turns a session's request into a model response. It
// prepends the date-aware system prompt, offers the web tools when enabled,
// and runs the tool loop until the model answers.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"webassist/config"
	"webassist/model"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const DefaultMaxToolRounds = 5

// ErrToolRounds is returned when the model keeps requesting tools past the
// configured limit.
var ErrToolRounds = errors.New("model exceeded the tool call limit")

// ToolExecutor runs the tools a model asks for.
type ToolExecutor interface {
	Definitions() []mcptypes.Tool
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}

type Options struct {
	SystemPrompt  string
	Think         bool
	MaxToolRounds int
}

type Service struct {
	provider model.Provider
	tools    ToolExecutor
	opts     Options
}

// New creates a Service. tools may be nil, in which case requests with tools
// enabled are answered without them.
func New(provider model.Provider, tools ToolExecutor, opts Options) *Service {
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = DefaultMaxToolRounds
	}
	return &Service{provider: provider, tools: tools, opts: opts}
}

func (s *Service) Provider() model.Provider {
	return s.provider
}

// ToolsAvailable reports whether web tools can be offered at all.
func (s *Service) ToolsAvailable() bool {
	return s.tools != nil
}

// Respond answers one turn. Errors are always *model.Fault.
func (s *Service) Respond(ctx context.Context, req model.Request) (model.Response, error) {
	var defs []mcptypes.Tool
	if req.ToolsEnabled {
		if s.tools != nil {
			defs = s.tools.Definitions()
		} else if config.DebugLog != nil {
			config.DebugLog.Printf("[Assistant] Web search requested but no tool executor is configured")
		}
	}

	messages := make([]model.Message, 0, len(req.Messages)+1)
	messages = append(messages, model.Message{
		Role:    model.RoleSystem,
		Content: s.systemPrompt(req.CurrentDateTime, len(defs) > 0),
	})
	for _, msg := range req.Messages {
		messages = append(messages, model.Message{Role: msg.Role, Content: msg.Content})
	}

	opts := model.ChatOptions{Think: s.opts.Think}
	var (
		reasoning []string
		trace     []model.ToolInvocation
	)

	for round := 0; ; round++ {
		result, err := s.provider.Chat(ctx, messages, defs, opts)
		if err != nil {
			return model.Response{}, model.AsFault("chat", err)
		}
		if result == nil {
			return model.Response{}, model.NewFault(model.FaultMalformedResponse, "chat", model.ErrEmptyResponse)
		}
		if r := strings.TrimSpace(result.Reasoning); r != "" {
			reasoning = append(reasoning, r)
		}

		if len(result.ToolCalls) == 0 || len(defs) == 0 {
			if strings.TrimSpace(result.Content) == "" {
				return model.Response{}, model.NewFault(model.FaultMalformedResponse, "chat", model.ErrEmptyResponse)
			}
			return model.Response{
				Content:   result.Content,
				Reasoning: strings.Join(reasoning, "\n\n"),
				ToolTrace: trace,
			}, nil
		}

		if round >= s.opts.MaxToolRounds {
			return model.Response{}, model.NewFault(model.FaultService, "tool loop", fmt.Errorf("%w (%d rounds)", ErrToolRounds, s.opts.MaxToolRounds))
		}

		messages = append(messages, model.Message{
			Role:      model.RoleAssistant,
			Content:   result.Content,
			ToolCalls: result.ToolCalls,
		})

		for _, call := range result.ToolCalls {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Assistant] Round %d: executing %s %v", round+1, call.Name, call.Arguments)
			}

			out, err := s.tools.Execute(ctx, call.Name, call.Arguments)
			if err != nil {
				op := "tool " + call.Name
				if ctx.Err() != nil {
					return model.Response{}, model.NewFault(model.FaultTransport, op, ctx.Err())
				}
				return model.Response{}, model.NewFault(model.FaultService, op, err)
			}

			trace = append(trace, model.ToolInvocation{
				Name:      call.Name,
				Arguments: call.Arguments,
				Result:    out,
			})
			messages = append(messages, model.Message{
				Role:       model.RoleTool,
				Content:    out,
				ToolName:   call.Name,
				ToolCallID: call.ID,
			})
		}
	}
}

func (s *Service) systemPrompt(now string, tools bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current date and time: %s.", now)
	if tools {
		b.WriteString(" When users ask for 'latest', 'recent', 'today', or 'current' information, use web search with appropriate date context.")
	}
	if p := strings.TrimSpace(s.opts.SystemPrompt); p != "" {
		b.WriteString("\n\n")
		b.WriteString(p)
	}
	return b.String()
}
