package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const (
	SearchToolName = "web_search"
	FetchToolName  = "web_fetch"

	DefaultMaxResults = 3
	MaxSearchResults  = 10

	// MaxResultChars caps the tool output handed back to the model.
	MaxResultChars = 8000
)

var ErrUnknownTool = errors.New("unknown tool")

// Definitions returns the web tools offered to the model.
func Definitions() []mcptypes.Tool {
	return []mcptypes.Tool{
		mcptypes.NewTool(SearchToolName,
			mcptypes.WithDescription("Search the web for up-to-date information. Use this for questions about recent events, news, or anything that may have changed."),
			mcptypes.WithString("query",
				mcptypes.Required(),
				mcptypes.Description("The search query"),
			),
			mcptypes.WithNumber("max_results",
				mcptypes.Description("Maximum number of results to return (1-10, default 3)"),
			),
		),
		mcptypes.NewTool(FetchToolName,
			mcptypes.WithDescription("Fetch a web page by URL and return its title, main content and links."),
			mcptypes.WithString("url",
				mcptypes.Required(),
				mcptypes.Description("The URL to fetch"),
			),
		),
	}
}

// Executor runs tool calls requested by the model against the web client.
type Executor struct {
	web        *WebClient
	maxResults int
}

func NewExecutor(web *WebClient, maxResults int) *Executor {
	if maxResults <= 0 || maxResults > MaxSearchResults {
		maxResults = DefaultMaxResults
	}
	return &Executor{web: web, maxResults: maxResults}
}

func (e *Executor) Definitions() []mcptypes.Tool {
	return Definitions()
}

// Execute runs one tool call and returns its textual result, capped at
// MaxResultChars.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	var (
		out string
		err error
	)

	switch name {
	case SearchToolName:
		out, err = e.search(ctx, args)
	case FetchToolName:
		out, err = e.fetch(ctx, args)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if err != nil {
		return "", err
	}

	return Truncate(out, MaxResultChars), nil
}

func (e *Executor) search(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	maxResults := intArg(args, "max_results", e.maxResults)
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > MaxSearchResults {
		maxResults = MaxSearchResults
	}

	resp, err := e.web.Search(ctx, query, maxResults)
	if err != nil {
		return "", err
	}
	return FormatSearch(resp), nil
}

func (e *Executor) fetch(ctx context.Context, args map[string]any) (string, error) {
	url, _ := args["url"].(string)
	resp, err := e.web.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return FormatFetch(url, resp), nil
}

func FormatSearch(resp *SearchResponse) string {
	if resp == nil || len(resp.Results) == 0 {
		return "No results found."
	}

	var b strings.Builder
	for i, r := range resp.Results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s", i+1, r.Title, r.URL, strings.TrimSpace(r.Content))
	}
	return b.String()
}

func FormatFetch(url string, resp *FetchResponse) string {
	var b strings.Builder
	if resp.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", resp.Title)
	}
	fmt.Fprintf(&b, "URL: %s\n\n", url)
	b.WriteString(strings.TrimSpace(resp.Content))
	if len(resp.Links) > 0 {
		b.WriteString("\n\nLinks:\n")
		for _, link := range resp.Links {
			b.WriteString("- ")
			b.WriteString(link)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Truncate shortens s to at most limit characters, appending a note when it
// cuts.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + fmt.Sprintf("\n\n[truncated to %d characters]", limit)
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}
