package engine

import (
	"time"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

// Filter keeps the markets worth analysing: still open, carrying a close
// time, and closing within the horizon measured from now. Input order is
// preserved and markets with no close time are dropped.
func Filter(markets []domain.Market, now time.Time, horizon time.Duration) []domain.Market {
	cutoff := now.Add(horizon)
	kept := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if m.IsResolved || m.CloseTime == nil {
			continue
		}
		if !m.CloseTime.After(now) || !m.CloseTime.Before(cutoff) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
