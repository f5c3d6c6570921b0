package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions for the life of the process only.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	current  string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

// Save stores an encoded copy so later mutations by the caller are not seen.
func (s *MemoryStore) Save(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.touch()

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = data
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	data, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]SessionMetadata, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sessions := make([]SessionMetadata, 0, len(ids))
	for _, id := range ids {
		session, err := s.Load(ctx, id)
		if err != nil {
			continue
		}
		sessions = append(sessions, session.Metadata())
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) SaveCurrentSessionID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
	return nil
}

func (s *MemoryStore) LoadCurrentSessionID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == "" {
		return "", ErrNotFound
	}
	return s.current, nil
}
