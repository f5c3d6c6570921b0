// Package session owns per-user conversation state: the history, the two
// toggles, and the Idle/Awaiting state machine around each model call.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"webassist/config"
	"webassist/model"
	"webassist/storage"
)

// DateTimeLayout renders the wall clock sent with each request, e.g.
// "Saturday, October 17, 2026 at 09:30 AM".
const DateTimeLayout = "Monday, January 02, 2006 at 03:04 PM"

// DefaultTimeout bounds a single turn when Config.Timeout is unset.
const DefaultTimeout = 60 * time.Second

// Toggle names accepted by SetOption.
const (
	OptionWebSearch     = "web_search"
	OptionShowReasoning = "show_reasoning"
)

// State is the Idle/Awaiting turn state of a session.
type State int

const (
	Idle State = iota
	Awaiting
)

func (s State) String() string {
	if s == Awaiting {
		return "awaiting"
	}
	return "idle"
}

// Options are the per-session toggles.
type Options struct {
	WebSearch     bool `json:"web_search"`
	ShowReasoning bool `json:"show_reasoning"`
}

// Config holds the collaborators shared by every session.
type Config struct {
	Responder Responder
	Store     Store   // optional
	Journal   Journal // optional
	Model     string
	Timeout   time.Duration
	Now       func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Manager is one conversation. All methods are safe for concurrent use;
// at most one Submit runs at a time.
type Manager struct {
	cfg Config

	mu         sync.Mutex
	id         string
	name       string
	createdAt  time.Time
	history    []model.Message
	opts       Options
	state      State
	cancel     context.CancelFunc
	generation uint64
	version    uint64
	ended      bool

	persistMu sync.Mutex
	saved     uint64
}

// NewManager starts an empty session.
func NewManager(id string, opts Options, cfg Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:       cfg,
		id:        id,
		opts:      opts,
		createdAt: cfg.Now(),
	}
}

// Restore rebuilds a Manager from a persisted session.
func Restore(s *storage.Session, cfg Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:       cfg,
		id:        s.ID,
		name:      s.Name,
		createdAt: s.CreatedAt,
		history:   fromStorageMessages(s.Messages),
		opts:      Options{WebSearch: s.Options.WebSearch, ShowReasoning: s.Options.ShowReasoning},
	}
}

func (m *Manager) ID() string {
	return m.id
}

func (m *Manager) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

func (m *Manager) Model() string {
	return m.cfg.Model
}

func (m *Manager) Options() Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// History returns a copy of every committed message, reasoning included.
func (m *Manager) History() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Message, len(m.history))
	for i, msg := range m.history {
		out[i] = msg.Clone()
	}
	return out
}

// Transcript returns the history as it should be displayed: reasoning is
// dropped unless show_reasoning is on.
func (m *Manager) Transcript() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Message, len(m.history))
	for i, msg := range m.history {
		out[i] = m.displayLocked(msg)
	}
	return out
}

// Search fuzzy-matches the committed history.
func (m *Manager) Search(query string) []storage.MessageMatch {
	m.mu.Lock()
	messages := toStorageMessages(m.history)
	m.mu.Unlock()
	return storage.SearchMessages(messages, query)
}

func (m *Manager) displayLocked(msg model.Message) model.Message {
	c := msg.Clone()
	if !m.opts.ShowReasoning {
		c.Reasoning = ""
	}
	return c
}

// Submit sends text with the session's current options and waits for the
// answer. On success the user and assistant messages are appended together
// and the assistant message is returned. On failure the history is left
// untouched and the error is ErrEmptyInput, ErrBusy, ErrNotFound,
// ErrTurnDiscarded or a *model.Fault.
func (m *Manager) Submit(ctx context.Context, text string) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, ErrEmptyInput
	}

	m.mu.Lock()
	if m.ended {
		m.mu.Unlock()
		return model.Message{}, ErrNotFound
	}
	if m.state == Awaiting {
		m.mu.Unlock()
		return model.Message{}, ErrBusy
	}

	started := m.cfg.Now()
	userMsg := model.Message{Role: model.RoleUser, Content: text, Timestamp: started}

	messages := make([]model.Message, 0, len(m.history)+1)
	for _, msg := range m.history {
		messages = append(messages, model.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, model.Message{Role: userMsg.Role, Content: userMsg.Content})

	req := model.Request{
		Messages:        messages,
		CurrentDateTime: started.Format(DateTimeLayout),
		ToolsEnabled:    m.opts.WebSearch,
	}

	turnCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	gen := m.generation
	m.state = Awaiting
	m.cancel = cancel
	m.mu.Unlock()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Session %s] Submit: %d history messages, tools=%v", m.id, len(messages)-1, req.ToolsEnabled)
	}

	resp, err := m.cfg.Responder.Respond(turnCtx, req)
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = model.NewFault(model.FaultMalformedResponse, "submit", model.ErrEmptyResponse)
	}

	m.mu.Lock()
	m.state = Idle
	m.cancel = nil

	rec := storage.TurnRecord{
		SessionID:    m.id,
		Model:        m.cfg.Model,
		StartedAt:    started,
		Duration:     m.cfg.Now().Sub(started),
		ToolsEnabled: req.ToolsEnabled,
		ToolCalls:    len(resp.ToolTrace),
	}

	if gen != m.generation {
		m.mu.Unlock()
		rec.Outcome = "discarded"
		m.record(ctx, rec)
		return model.Message{}, ErrTurnDiscarded
	}

	if err != nil {
		m.mu.Unlock()
		fault := model.AsFault("submit", err)
		rec.Outcome = fault.Kind.String()
		m.record(ctx, rec)
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Session %s] Turn failed: %v", m.id, fault)
		}
		return model.Message{}, fault
	}

	answer := model.Message{
		Role:      model.RoleAssistant,
		Content:   resp.Content,
		Reasoning: resp.Reasoning,
		Timestamp: m.cfg.Now(),
		ToolTrace: resp.ToolTrace,
	}
	m.history = append(m.history, userMsg, answer)
	if m.name == "" {
		m.name = storage.GenerateSessionName(text)
	}
	out := m.displayLocked(answer)
	snap, version := m.snapshotLocked()
	m.mu.Unlock()

	rec.Outcome = storage.OutcomeOK
	m.record(ctx, rec)
	m.persist(ctx, snap, version)

	return out, nil
}

// Cancel aborts the in-flight request, if any. The pending Submit returns a
// transport fault and the history is unchanged.
func (m *Manager) Cancel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return false
	}
	m.cancel()
	return true
}

// Clear empties the history. A turn in flight is cancelled and discarded.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	m.generation++
	if m.cancel != nil {
		m.cancel()
	}
	m.history = nil
	m.name = ""
	snap, version := m.snapshotLocked()
	m.mu.Unlock()

	m.persist(ctx, snap, version)
}

// end invalidates the manager once its session is removed. A turn in flight
// is cancelled and discarded, and nothing is persisted or journaled after.
func (m *Manager) end() {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended = true
	m.generation++
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Manager) isEnded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ended
}

// SetOption sets a toggle by name. It affects the next Submit only.
func (m *Manager) SetOption(ctx context.Context, name string, value bool) error {
	m.mu.Lock()
	switch name {
	case OptionWebSearch:
		m.opts.WebSearch = value
	case OptionShowReasoning:
		m.opts.ShowReasoning = value
	default:
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	snap, version := m.snapshotLocked()
	m.mu.Unlock()

	m.persist(ctx, snap, version)
	return nil
}

func (m *Manager) SetWebSearch(ctx context.Context, enabled bool) {
	_ = m.SetOption(ctx, OptionWebSearch, enabled)
}

func (m *Manager) SetShowReasoning(ctx context.Context, enabled bool) {
	_ = m.SetOption(ctx, OptionShowReasoning, enabled)
}

// Snapshot returns the session in its persisted form.
func (m *Manager) Snapshot() *storage.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, _ := m.snapshotLocked()
	return snap
}

func (m *Manager) snapshotLocked() (*storage.Session, uint64) {
	m.version++
	return &storage.Session{
		ID:        m.id,
		Name:      m.name,
		Model:     m.cfg.Model,
		CreatedAt: m.createdAt,
		Options:   storage.Options{WebSearch: m.opts.WebSearch, ShowReasoning: m.opts.ShowReasoning},
		Messages:  toStorageMessages(m.history),
	}, m.version
}

// persist saves snap unless a newer snapshot has already been written.
// Failures are logged; a committed turn is never rolled back.
func (m *Manager) persist(ctx context.Context, snap *storage.Session, version uint64) {
	if m.cfg.Store == nil {
		return
	}

	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	if version <= m.saved || m.isEnded() {
		return
	}

	if err := m.cfg.Store.Save(context.WithoutCancel(ctx), snap); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Session %s] Failed to persist: %v", m.id, err)
		}
		return
	}
	m.saved = version
}

func (m *Manager) record(ctx context.Context, rec storage.TurnRecord) {
	if m.cfg.Journal == nil || m.isEnded() {
		return
	}
	if err := m.cfg.Journal.Record(context.WithoutCancel(ctx), rec); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Session %s] Failed to record turn: %v", m.id, err)
	}
}

// IsFault reports whether err is a per-turn fault rather than a rejected
// submission.
func IsFault(err error) bool {
	var fault *model.Fault
	return errors.As(err, &fault)
}
