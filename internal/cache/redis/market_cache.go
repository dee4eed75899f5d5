package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

// MarketCache implements domain.MarketCache using JSON-serialized markets
// keyed by slug. Full market details change slowly enough that a short TTL
// saves a round trip when the same market shows up in overlapping searches.
type MarketCache struct {
	rdb *redis.Client
}

// NewMarketCache creates a MarketCache backed by the given Client.
func NewMarketCache(c *Client) *MarketCache {
	return &MarketCache{rdb: c.rdb}
}

func marketKey(slug string) string { return "market:" + slug }

// Set stores a Market in the cache.
func (mc *MarketCache) Set(ctx context.Context, market domain.Market, ttl time.Duration) error {
	data, err := json.Marshal(market)
	if err != nil {
		return fmt.Errorf("redis: marshal market %s: %w", market.Slug, err)
	}

	if err := mc.rdb.Set(ctx, marketKey(market.Slug), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set market %s: %w", market.Slug, err)
	}
	return nil
}

// Get retrieves a Market by slug. The second return value reports whether the
// market was present.
func (mc *MarketCache) Get(ctx context.Context, slug string) (domain.Market, bool, error) {
	data, err := mc.rdb.Get(ctx, marketKey(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Market{}, false, nil
		}
		return domain.Market{}, false, fmt.Errorf("redis: get market %s: %w", slug, err)
	}

	var market domain.Market
	if err := json.Unmarshal(data, &market); err != nil {
		return domain.Market{}, false, fmt.Errorf("redis: unmarshal market %s: %w", slug, err)
	}
	return market, true, nil
}
