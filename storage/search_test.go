package storage

import (
	"strings"
	"testing"
)

func TestSearchMessages(t *testing.T) {
	messages := []Message{
		{Role: "user", Content: "What's the weather in Paris?"},
		{Role: "assistant", Content: "It is sunny in Paris today, around 21 degrees."},
		{Role: "user", Content: "And in Berlin?"},
		{Role: "assistant", Content: "Berlin is cloudy."},
	}

	tests := []struct {
		name      string
		query     string
		wantFirst int
		wantCount int
	}{
		{name: "empty query", query: "  ", wantCount: 0},
		{name: "exact word", query: "berlin", wantFirst: 2, wantCount: 2},
		{name: "no match", query: "tokyo", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchMessages(messages, tt.query)
			if len(got) != tt.wantCount {
				t.Fatalf("expected %d matches, got %d: %+v", tt.wantCount, len(got), got)
			}
			if tt.wantCount > 0 && got[0].MessageIndex != tt.wantFirst && got[1].MessageIndex != tt.wantFirst {
				t.Errorf("expected message %d among the top matches, got %+v", tt.wantFirst, got)
			}
		})
	}
}

func TestSearchMessagesExactBeforeFuzzy(t *testing.T) {
	messages := []Message{
		{Role: "assistant", Content: "sun is not up yet"},
		{Role: "assistant", Content: "it will be sunny"},
	}
	got := SearchMessages(messages, "sunny")
	if len(got) == 0 || got[0].MessageIndex != 1 {
		t.Fatalf("expected exact match first, got %+v", got)
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("a", 50) + "needle" + strings.Repeat("b", 200)
	p := preview(long, 50)
	if !strings.HasPrefix(p, "...") || !strings.Contains(p, "needle") || !strings.HasSuffix(p, "...") {
		t.Errorf("unexpected preview: %q", p)
	}

	short := preview("line one\nline two", 0)
	if short != "line one line two" {
		t.Errorf("unexpected preview: %q", short)
	}

	multi := preview(strings.Repeat("é", 30)+"x", 50)
	if !strings.Contains(multi, "x") || !strings.HasPrefix(multi, "...") {
		t.Errorf("unexpected multibyte preview: %q", multi)
	}
}
