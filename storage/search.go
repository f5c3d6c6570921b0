package storage

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

const previewWidth = 100

// MessageMatch represents a search result within a session
type MessageMatch struct {
	MessageIndex int       `json:"message_index"`
	Role         string    `json:"role"`
	Preview      string    `json:"preview"`
	Timestamp    time.Time `json:"timestamp"`
	Score        int       `json:"score"`
}

// SearchMessages fuzzy-matches query against message contents, best match
// first. Exact substring hits rank above scattered fuzzy hits.
func SearchMessages(messages []Message, query string) []MessageMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return []MessageMatch{}
	}

	targets := make([]string, len(messages))
	for i, msg := range messages {
		targets[i] = msg.Content
	}

	queryLower := strings.ToLower(query)
	results := fuzzy.Find(query, targets)
	exact := make([]MessageMatch, 0, len(results))
	loose := make([]MessageMatch, 0, len(results))

	for _, r := range results {
		msg := messages[r.Index]
		at := strings.Index(strings.ToLower(msg.Content), queryLower)

		start := at
		if start < 0 && len(r.MatchedIndexes) > 0 {
			start = r.MatchedIndexes[0]
		}

		m := MessageMatch{
			MessageIndex: r.Index,
			Role:         msg.Role,
			Preview:      preview(msg.Content, start),
			Timestamp:    msg.Timestamp,
			Score:        r.Score,
		}
		if at >= 0 {
			exact = append(exact, m)
		} else {
			loose = append(loose, m)
		}
	}

	return append(exact, loose...)
}

// preview returns up to previewWidth characters of s starting a little
// before byte offset at.
func preview(s string, at int) string {
	s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)

	start := at - 20
	if start < 0 {
		start = 0
	}
	for start > 0 && start < len(s) && !utf8.RuneStart(s[start]) {
		start--
	}

	runes := []rune(s[start:])
	out := string(runes)
	if len(runes) > previewWidth {
		out = string(runes[:previewWidth]) + "..."
	}
	if start > 0 {
		out = "..." + out
	}
	return out
}
