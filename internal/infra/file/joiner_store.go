package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"quiz-attempt/internal/domain"
)

// JoinerStore keeps the joiner record in a JSON file so `join` and `attempt`
// can run as separate processes. Records older than ttl are treated as absent.
type JoinerStore struct {
	path  string
	ttl   time.Duration
	clock func() time.Time
	mu    sync.Mutex
}

type record struct {
	Joiner    domain.Joiner `json:"joiner"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

func NewJoinerStore(path string, ttl time.Duration) *JoinerStore {
	return &JoinerStore{path: path, ttl: ttl, clock: time.Now}
}

// DefaultPath places the session file under the user's cache directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "quiz-attempt", "joiner.json")
}

func (s *JoinerStore) Save(_ context.Context, joiner domain.Joiner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record{Joiner: joiner}
	if s.ttl > 0 {
		rec.ExpiresAt = s.clock().Add(s.ttl)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode joiner: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(s.path), err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path)
}

func (s *JoinerStore) Load(_ context.Context) (domain.Joiner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Joiner{}, domain.ErrJoinerNotFound
	}
	if err != nil {
		return domain.Joiner{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Joiner{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if !rec.ExpiresAt.IsZero() && !rec.ExpiresAt.After(s.clock()) {
		_ = os.Remove(s.path)
		return domain.Joiner{}, domain.ErrJoinerNotFound
	}
	return rec.Joiner, nil
}

func (s *JoinerStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}
