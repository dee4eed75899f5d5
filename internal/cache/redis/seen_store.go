package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenStore implements domain.SeenStore with plain keys carrying a TTL, so
// markets drop back out of the set once their entry expires.
type SeenStore struct {
	rdb *redis.Client
}

// NewSeenStore creates a SeenStore backed by the given Client.
func NewSeenStore(c *Client) *SeenStore {
	return &SeenStore{rdb: c.rdb}
}

func seenKey(marketID string) string { return "seen:" + marketID }

// Seen reports whether the market was analysed within the TTL window.
func (s *SeenStore) Seen(ctx context.Context, marketID string) (bool, error) {
	err := s.rdb.Get(ctx, seenKey(marketID)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis: seen check %s: %w", marketID, err)
	}
	return true, nil
}

// Mark records the market as analysed.
func (s *SeenStore) Mark(ctx context.Context, marketID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, seenKey(marketID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis: seen mark %s: %w", marketID, err)
	}
	return nil
}
