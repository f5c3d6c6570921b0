package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"webassist/assistant"
	"webassist/model"
	"webassist/provider/testutil"
	"webassist/session"
	"webassist/storage"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

func setupServer(t *testing.T) (http.Handler, *testutil.MockProvider) {
	t.Helper()
	mock := testutil.NewMockProvider("qwen3:4b")
	mock.ChatFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, opts model.ChatOptions) (*model.ChatResult, error) {
		return &model.ChatResult{Content: "The answer is 42.", Reasoning: "deep thought"}, nil
	}

	registry := session.NewRegistry(session.Config{
		Responder: assistant.New(mock, nil, assistant.Options{Think: true}),
		Store:     storage.NewMemoryStore(),
		Model:     mock.GetModel(),
	}, session.Options{WebSearch: true})

	return New(registry, mock).Router(), mock
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	resp := do(t, h, http.MethodPost, "/api/sessions", "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID      string          `json:"id"`
		Options session.Options `json:"options"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || !created.Options.WebSearch {
		t.Fatalf("unexpected create response: %+v", created)
	}
	return created.ID
}

func TestConversationFlow(t *testing.T) {
	h, _ := setupServer(t)
	id := createSession(t, h)
	base := "/api/sessions/" + id

	resp := do(t, h, http.MethodPost, base+"/messages", `{"content":"What is the meaning of life?"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var msg messageView
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Role != model.RoleAssistant || msg.Content != "The answer is 42." {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.Reasoning != "" {
		t.Error("reasoning returned with show_reasoning off")
	}

	resp = do(t, h, http.MethodPatch, base+"/options", `{"show_reasoning":true}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("options: expected 200, got %d", resp.Code)
	}
	var opts session.Options
	if err := json.NewDecoder(resp.Body).Decode(&opts); err != nil {
		t.Fatal(err)
	}
	if opts != (session.Options{WebSearch: true, ShowReasoning: true}) {
		t.Errorf("options = %+v", opts)
	}

	resp = do(t, h, http.MethodGet, base, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.Code)
	}
	var view sessionView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if len(view.Messages) != 2 || view.Messages[1].Reasoning != "deep thought" || view.State != "idle" {
		t.Errorf("unexpected session view: %+v", view)
	}

	resp = do(t, h, http.MethodGet, base+"/search?q=meaning", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "meaning of life") {
		t.Errorf("search: %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, h, http.MethodDelete, base+"/messages", "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", resp.Code)
	}
	resp = do(t, h, http.MethodGet, base, "")
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if len(view.Messages) != 0 {
		t.Errorf("history not cleared: %+v", view.Messages)
	}

	resp = do(t, h, http.MethodDelete, base, "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("end: expected 204, got %d", resp.Code)
	}
	resp = do(t, h, http.MethodGet, base, "")
	if resp.Code != http.StatusNotFound {
		t.Errorf("get after end: expected 404, got %d", resp.Code)
	}
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       func(id string) string
		body       string
		chatErr    error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "empty content",
			path:       func(id string) string { return "/api/sessions/" + id + "/messages" },
			body:       `{"content":"   "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid body",
			path:       func(id string) string { return "/api/sessions/" + id + "/messages" },
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown session",
			path:       func(string) string { return "/api/sessions/nope/messages" },
			body:       `{"content":"hi"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "service fault",
			path:       func(id string) string { return "/api/sessions/" + id + "/messages" },
			body:       `{"content":"hi"}`,
			chatErr:    model.NewFault(model.FaultService, "chat", errors.New("401 invalid api key")),
			wantStatus: http.StatusBadGateway,
			wantKind:   "service",
		},
		{
			name:       "transport fault",
			path:       func(id string) string { return "/api/sessions/" + id + "/messages" },
			body:       `{"content":"hi"}`,
			chatErr:    context.DeadlineExceeded,
			wantStatus: http.StatusBadGateway,
			wantKind:   "transport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := setupServer(t)
			if tt.chatErr != nil {
				mock.ChatFunc = func(context.Context, []model.Message, []mcptypes.Tool, model.ChatOptions) (*model.ChatResult, error) {
					return nil, tt.chatErr
				}
			}
			id := createSession(t, h)

			resp := do(t, h, http.MethodPost, tt.path(id), tt.body)
			if resp.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["error"] == "" {
				t.Error("expected an error message")
			}
			if body["kind"] != tt.wantKind {
				t.Errorf("kind = %q, want %q", body["kind"], tt.wantKind)
			}
		})
	}
}

func TestSubmitBusy(t *testing.T) {
	h, mock := setupServer(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	mock.ChatFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, opts model.ChatOptions) (*model.ChatResult, error) {
		close(entered)
		<-release
		return &model.ChatResult{Content: "done"}, nil
	}
	id := createSession(t, h)
	path := "/api/sessions/" + id + "/messages"

	done := make(chan int, 1)
	go func() {
		done <- do(t, h, http.MethodPost, path, `{"content":"first"}`).Code
	}()
	<-entered

	if resp := do(t, h, http.MethodPost, path, `{"content":"second"}`); resp.Code != http.StatusConflict {
		t.Errorf("expected 409 while busy, got %d", resp.Code)
	}

	close(release)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first request: expected 200, got %d", code)
	}
}

func TestHealth(t *testing.T) {
	h, mock := setupServer(t)

	resp := do(t, h, http.MethodGet, "/api/health", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "qwen3:4b") {
		t.Errorf("health: %d %s", resp.Code, resp.Body.String())
	}

	mock.PingFunc = func(context.Context) error { return errors.New("connection refused") }
	if resp := do(t, h, http.MethodGet, "/api/health", ""); resp.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when backend is down, got %d", resp.Code)
	}
}

func TestListAndStats(t *testing.T) {
	h, _ := setupServer(t)
	id := createSession(t, h)
	createSession(t, h)

	resp := do(t, h, http.MethodGet, "/api/sessions", "")
	var list []storage.SessionMetadata
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(list))
	}

	resp = do(t, h, http.MethodGet, "/api/sessions/"+id+"/stats", "")
	if resp.Code != http.StatusOK {
		t.Errorf("stats: expected 200, got %d", resp.Code)
	}
}

func TestExport(t *testing.T) {
	h, _ := setupServer(t)
	id := createSession(t, h)
	base := "/api/sessions/" + id
	if resp := do(t, h, http.MethodPost, base+"/messages", `{"content":"What is the meaning of life?"}`); resp.Code != http.StatusOK {
		t.Fatalf("submit: %d", resp.Code)
	}

	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantType    string
		wantContent string
	}{
		{name: "default json", query: "", wantStatus: http.StatusOK, wantType: "application/json", wantContent: `"deep thought"`},
		{name: "markdown", query: "?format=markdown", wantStatus: http.StatusOK, wantType: "text/markdown", wantContent: "## You"},
		{name: "unknown format", query: "?format=pdf", wantStatus: http.StatusBadRequest, wantType: "application/json", wantContent: "format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, h, http.MethodGet, base+"/export"+tt.query, "")
			if resp.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.Code)
			}
			if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", ct, tt.wantType)
			}
			if !strings.Contains(resp.Body.String(), tt.wantContent) {
				t.Errorf("body missing %q: %s", tt.wantContent, resp.Body.String())
			}
		})
	}
}
