package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which notifications were already delivered,
// so a retried or duplicated dispatch does not email the user twice.
type IdempotencyStore struct {
	c  *Client
	lg zerolog.Logger
}

func NewIdempotencyStore(c *Client, lg zerolog.Logger) *IdempotencyStore {
	return &IdempotencyStore{
		c:  c,
		lg: lg.With().Str("component", "idem_store").Logger(),
	}
}

func (s *IdempotencyStore) Seen(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("empty key")
	}
	n, err := s.c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n == 1, nil
}

// MarkSent is idempotent; marking an existing key refreshes its TTL.
func (s *IdempotencyStore) MarkSent(ctx context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	if err := s.c.rdb.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	s.lg.Debug().Str("key", key).Dur("ttl", ttl).Msg("marked sent")
	return nil
}
