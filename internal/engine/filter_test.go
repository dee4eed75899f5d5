package engine

import (
	"testing"
	"time"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

func TestFilter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	horizon := 30 * 24 * time.Hour

	ts := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	in := []domain.Market{
		{ID: "a", CloseTime: ts(24 * time.Hour)},
		{ID: "b", CloseTime: ts(-time.Hour)},                    // already closed
		{ID: "c", CloseTime: nil},                               // no close time
		{ID: "d", CloseTime: ts(45 * 24 * time.Hour)},           // beyond horizon
		{ID: "e", CloseTime: ts(time.Hour), IsResolved: true},   // resolved
		{ID: "f", CloseTime: ts(29 * 24 * time.Hour)},           // just inside
		{ID: "g", CloseTime: ts(horizon)},                       // exactly at cutoff
		{ID: "h", CloseTime: &now},                              // exactly now
	}

	got := Filter(in, now, horizon)

	want := []string{"a", "f"}
	if len(got) != len(want) {
		t.Fatalf("kept %d markets, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("kept[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestFilterIdempotent(t *testing.T) {
	now := time.Now()
	horizon := 30 * 24 * time.Hour
	close := now.Add(48 * time.Hour)

	in := []domain.Market{{ID: "a", CloseTime: &close}}
	once := Filter(in, now, horizon)
	twice := Filter(once, now, horizon)

	if len(once) != 1 || len(twice) != 1 {
		t.Fatalf("filter not idempotent: %d then %d", len(once), len(twice))
	}
}

func TestFilterEmpty(t *testing.T) {
	if got := Filter(nil, time.Now(), time.Hour); len(got) != 0 {
		t.Fatalf("kept %d markets from empty input", len(got))
	}
}
