package memory

import (
	"context"
	"sync"

	"quiz-attempt/internal/domain"
)

// JoinerStore is an in-memory implementation of app.JoinerStore.
// It lives as long as the process, which is the session for the web UI.
type JoinerStore struct {
	mu     sync.RWMutex
	joiner *domain.Joiner
}

func NewJoinerStore() *JoinerStore {
	return &JoinerStore{}
}

func (s *JoinerStore) Save(_ context.Context, joiner domain.Joiner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joiner = &joiner
	return nil
}

func (s *JoinerStore) Load(_ context.Context) (domain.Joiner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.joiner == nil {
		return domain.Joiner{}, domain.ErrJoinerNotFound
	}
	return *s.joiner, nil
}

func (s *JoinerStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joiner = nil
	return nil
}
