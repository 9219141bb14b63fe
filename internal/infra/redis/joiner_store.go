package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-attempt/internal/domain"
)

// JoinerStore keeps the joiner record in Redis under a per-session key with a TTL,
// so the record disappears on its own if the attempt never happens.
//
//	SET quiz:joiner:{session} <json> EX ttl
type JoinerStore struct {
	client  *redis.Client
	session string
	ttl     time.Duration
}

func NewJoinerStore(client *redis.Client, session string, ttl time.Duration) *JoinerStore {
	return &JoinerStore{
		client:  client,
		session: session,
		ttl:     ttl,
	}
}

func (s *JoinerStore) Save(ctx context.Context, joiner domain.Joiner) error {
	data, err := json.Marshal(joiner)
	if err != nil {
		return fmt.Errorf("encode joiner: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set joiner: %w", err)
	}
	return nil
}

func (s *JoinerStore) Load(ctx context.Context) (domain.Joiner, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Joiner{}, domain.ErrJoinerNotFound
	}
	if err != nil {
		return domain.Joiner{}, fmt.Errorf("redis get joiner: %w", err)
	}
	var joiner domain.Joiner
	if err := json.Unmarshal(data, &joiner); err != nil {
		return domain.Joiner{}, fmt.Errorf("decode joiner: %w", err)
	}
	return joiner, nil
}

func (s *JoinerStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("redis del joiner: %w", err)
	}
	return nil
}

func (s *JoinerStore) key() string {
	return "quiz:joiner:" + s.session
}
