package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"webassist/model"
	"webassist/session"
	"webassist/storage"

	"github.com/go-chi/chi/v5"
)

type toolView struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result"`
}

type messageView struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Reasoning string     `json:"reasoning,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	ToolTrace []toolView `json:"tool_trace,omitempty"`
}

type sessionView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Model    string          `json:"model"`
	State    string          `json:"state"`
	Options  session.Options `json:"options"`
	Messages []messageView   `json:"messages"`
}

func newMessageView(msg model.Message) messageView {
	v := messageView{
		Role:      msg.Role,
		Content:   msg.Content,
		Reasoning: msg.Reasoning,
		Timestamp: msg.Timestamp,
	}
	for _, inv := range msg.ToolTrace {
		v.ToolTrace = append(v.ToolTrace, toolView{
			Name:      inv.Name,
			Arguments: inv.Arguments,
			Result:    inv.Preview(model.PreviewLimit),
		})
	}
	return v
}

func newSessionView(m *session.Manager) sessionView {
	transcript := m.Transcript()
	messages := make([]messageView, 0, len(transcript))
	for _, msg := range transcript {
		messages = append(messages, newMessageView(msg))
	}
	return sessionView{
		ID:       m.ID(),
		Name:     m.Name(),
		Model:    m.Model(),
		State:    m.State().String(),
		Options:  m.Options(),
		Messages: messages,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.Ping(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"model":  s.backend.GetModel(),
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "model": s.backend.GetModel()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.registry.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	m, err := s.registry.Create(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": m.ID(), "options": m.Options()})
}

// lookup resolves the session named in the URL, writing the error response
// itself when it cannot.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Manager, bool) {
	m, err := s.registry.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondSessionError(w, err)
		return nil, false
	}
	return m, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(m))
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.End(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, ok := s.lookup(w, r)
	if !ok {
		return
	}

	msg, err := m.Submit(r.Context(), payload.Content)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newMessageView(msg))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	m.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetOptions(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		WebSearch     *bool `json:"web_search"`
		ShowReasoning *bool `json:"show_reasoning"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if payload.WebSearch != nil {
		m.SetWebSearch(r.Context(), *payload.WebSearch)
	}
	if payload.ShowReasoning != nil {
		m.SetShowReasoning(r.Context(), *payload.ShowReasoning)
	}
	respondJSON(w, http.StatusOK, m.Options())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	respondJSON(w, http.StatusOK, m.Search(query))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	stats, err := s.registry.Stats(r.Context(), m.ID())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"turns":           stats.Turns,
		"committed":       stats.Committed,
		"faults":          stats.Faults,
		"tool_calls":      stats.ToolCalls,
		"avg_duration_ms": stats.AvgDuration.Milliseconds(),
	})
}

// handleExport returns the whole session as JSON (default) or as a Markdown
// transcript with ?format=markdown.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	snap := m.Snapshot()

	switch r.URL.Query().Get("format") {
	case "", "json":
		w.Header().Set("Content-Disposition", `attachment; filename="`+storage.SanitizeFilename(snap.Name)+`.json"`)
		respondJSON(w, http.StatusOK, snap)
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(storage.RenderMarkdown(snap)))
	default:
		respondError(w, http.StatusBadRequest, "format must be json or markdown")
	}
}

func respondSessionError(w http.ResponseWriter, err error) {
	var fault *model.Fault
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrTurnDiscarded):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &fault):
		respondJSON(w, http.StatusBadGateway, map[string]string{
			"error": fault.Diagnostic(),
			"kind":  fault.Kind.String(),
		})
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
