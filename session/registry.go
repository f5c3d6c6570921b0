package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"webassist/config"
	"webassist/storage"

	"github.com/google/uuid"
)

// Registry tracks live sessions. Sessions that are not in memory are
// loaded from the store on demand.
type Registry struct {
	cfg      Config
	defaults Options

	mu       sync.RWMutex
	sessions map[string]*Manager
}

func NewRegistry(cfg Config, defaults Options) *Registry {
	return &Registry{
		cfg:      cfg.withDefaults(),
		defaults: defaults,
		sessions: make(map[string]*Manager),
	}
}

// Create starts an empty session with the default options.
func (r *Registry) Create(ctx context.Context) (*Manager, error) {
	m := NewManager(uuid.New().String(), r.defaults, r.cfg)

	if r.cfg.Store != nil {
		snap, version := m.snapshotLocked()
		if err := r.cfg.Store.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("failed to save new session: %w", err)
		}
		m.saved = version
	}

	r.mu.Lock()
	r.sessions[m.ID()] = m
	r.mu.Unlock()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Registry] Created session %s", m.ID())
	}
	return m, nil
}

func (r *Registry) Get(ctx context.Context, id string) (*Manager, error) {
	r.mu.RLock()
	m, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	if r.cfg.Store == nil {
		return nil, ErrNotFound
	}

	s, err := r.cfg.Store.Load(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// another caller may have loaded it meanwhile
	if m, ok := r.sessions[id]; ok {
		return m, nil
	}
	m = Restore(s, r.cfg)
	r.sessions[id] = m
	return m, nil
}

// End removes the session everywhere. A turn in flight is cancelled and its
// Submit returns ErrTurnDiscarded.
func (r *Registry) End(ctx context.Context, id string) error {
	r.mu.Lock()
	m, live := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if live {
		m.end()
	}

	if r.cfg.Journal != nil {
		if err := r.cfg.Journal.Forget(ctx, id); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Registry] Failed to forget journal for %s: %v", id, err)
		}
	}

	if r.cfg.Store == nil {
		if !live {
			return ErrNotFound
		}
		return nil
	}

	err := r.cfg.Store.Delete(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		if live {
			return nil
		}
		return ErrNotFound
	}
	return err
}

// List returns metadata for every known session, newest first.
func (r *Registry) List(ctx context.Context) ([]storage.SessionMetadata, error) {
	if r.cfg.Store != nil {
		return r.cfg.Store.List(ctx)
	}

	r.mu.RLock()
	list := make([]storage.SessionMetadata, 0, len(r.sessions))
	for _, m := range r.sessions {
		list = append(list, m.Snapshot().Metadata())
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// Stats reports the journal summary for a session. It returns empty stats
// when no journal is configured.
func (r *Registry) Stats(ctx context.Context, id string) (storage.TurnStats, error) {
	if r.cfg.Journal == nil {
		return storage.TurnStats{Faults: map[string]int{}}, nil
	}
	return r.cfg.Journal.Stats(ctx, id)
}

// Resume returns the session the terminal UI used last, or a new one.
func (r *Registry) Resume(ctx context.Context) (*Manager, error) {
	if r.cfg.Store != nil {
		if id, err := r.cfg.Store.LoadCurrentSessionID(); err == nil && id != "" {
			m, err := r.Get(ctx, id)
			if err == nil {
				return m, nil
			}
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Registry] Could not resume session %s: %v", id, err)
			}
		}
	}

	m, err := r.Create(ctx)
	if err != nil {
		return nil, err
	}
	if r.cfg.Store != nil {
		if err := r.cfg.Store.SaveCurrentSessionID(m.ID()); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Registry] Failed to save current session: %v", err)
		}
	}
	return m, nil
}
