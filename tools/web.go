package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultWebBaseURL = "https://ollama.com"

// SearchResult is one hit returned by the web search endpoint.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type FetchResponse struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Links   []string `json:"links"`
}

// StatusError is returned when the web endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("web tool request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("web tool request failed: %d %s", e.StatusCode, e.Message)
}

// WebClient calls Ollama's hosted web_search and web_fetch endpoints.
type WebClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewWebClient(baseURL, apiKey string) *WebClient {
	if baseURL == "" {
		baseURL = DefaultWebBaseURL
	}
	return &WebClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *WebClient) Search(ctx context.Context, query string, maxResults int) (*SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("web_search: query is required")
	}

	body := map[string]any{"query": query}
	if maxResults > 0 {
		body["max_results"] = maxResults
	}

	var resp SearchResponse
	if err := c.post(ctx, "/api/web_search", body, &resp); err != nil {
		return nil, fmt.Errorf("web_search: %w", err)
	}
	return &resp, nil
}

func (c *WebClient) Fetch(ctx context.Context, url string) (*FetchResponse, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("web_fetch: url is required")
	}

	var resp FetchResponse
	if err := c.post(ctx, "/api/web_fetch", map[string]any{"url": url}, &resp); err != nil {
		return nil, fmt.Errorf("web_fetch: %w", err)
	}
	return &resp, nil
}

func (c *WebClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
