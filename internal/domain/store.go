package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// BetStore persists the append-only bet audit trail.
type BetStore interface {
	Insert(ctx context.Context, rec BetRecord) error
	ListRecent(ctx context.Context, opts ListOpts) ([]BetRecord, error)
	ListByMarket(ctx context.Context, marketID string, opts ListOpts) ([]BetRecord, error)
	SumStaked(ctx context.Context, since time.Time) (float64, error)
}

// MarketCache caches full market details keyed by slug.
type MarketCache interface {
	Get(ctx context.Context, slug string) (Market, bool, error)
	Set(ctx context.Context, m Market, ttl time.Duration) error
}

// SeenStore remembers which markets have already been analysed, across
// sessions, so restarts do not re-bet the same markets.
type SeenStore interface {
	Seen(ctx context.Context, marketID string) (bool, error)
	Mark(ctx context.Context, marketID string, ttl time.Duration) error
}
