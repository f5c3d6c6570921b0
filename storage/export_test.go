package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Paris news", "Paris-news"},
		{"a/b:c*d?", "a-b-c-d"},
		{"...", "session"},
		{"", "session"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateExportPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	got := GenerateExportPath("Paris news", "md", now)
	want := filepath.Join("/home/tester", "Downloads", "webassist-Paris-news-20261017-093000.md")
	if got != want {
		t.Errorf("GenerateExportPath() = %q, want %q", got, want)
	}
}

func TestExportJSON(t *testing.T) {
	session := sampleSession()
	path := filepath.Join(t.TempDir(), "out", "session.json")

	if err := ExportJSON(session, path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("export permissions = %v, want 0600", info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back Session
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Messages) != 2 || back.Messages[1].Reasoning != "need fresh data" {
		t.Errorf("unexpected export: %+v", back)
	}
}

func TestRenderMarkdown(t *testing.T) {
	session := sampleSession()

	out := RenderMarkdown(session)
	for _, want := range []string{"# Paris news", "latest paris news", "A summit opened today.", "`web_search` paris"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "need fresh data") {
		t.Error("reasoning exported while show_reasoning is off")
	}

	session.Options.ShowReasoning = true
	if out := RenderMarkdown(session); !strings.Contains(out, "> need fresh data") {
		t.Errorf("reasoning missing with show_reasoning on:\n%s", out)
	}
}
