package model

// Request is what a session sends to the model service for one turn.
// Messages carry role and content only.
type Request struct {
	Messages        []Message
	CurrentDateTime string
	ToolsEnabled    bool
}

// Response is the parsed result of one turn.
type Response struct {
	Content   string
	Reasoning string
	ToolTrace []ToolInvocation
}

// ChatOptions tunes a single provider call.
type ChatOptions struct {
	// Think asks reasoning-capable models to return their thinking.
	Think bool
}

// ChatResult is one provider round: either a final answer or a set of tool
// calls to execute before asking again.
type ChatResult struct {
	Content   string
	Reasoning string
	ToolCalls []ToolCall
}
