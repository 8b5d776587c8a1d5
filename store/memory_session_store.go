package store

import (
	"context"
	"sync"
	"time"

	"github.com/BatmanBruc/feedback-bot/types"
)

// MemorySessionStore keeps sessions for the lifetime of the process.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*types.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[int64]*types.Session),
	}
}

func (s *MemorySessionStore) Get(_ context.Context, chatID int64) (*types.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[chatID]
	s.mu.RUnlock()
	if !ok {
		return types.NewSession(chatID), nil
	}
	return session.Clone(), nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *types.Session) error {
	cp := session.Clone()
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	s.sessions[session.ChatID] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Clear(_ context.Context, chatID int64) error {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
	return nil
}
