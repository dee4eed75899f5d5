package manifold

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Key test-key" {
			t.Fatalf("Authorization = %q", got)
		}
		w.Write([]byte(`{"id":"u1","username":"alice","balance":950.5,"totalDeposits":1000,"profitCached":{"allTime":-49.5}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 5*time.Second)
	u, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if u.Username != "alice" || u.Balance != 950.5 {
		t.Fatalf("user = %+v", u)
	}
	if u.NetWorth() != 1950.5 {
		t.Fatalf("NetWorth = %v", u.NetWorth())
	}
	if u.AllTimeProfit != -49.5 {
		t.Fatalf("AllTimeProfit = %v", u.AllTimeProfit)
	}
}

func TestSearchMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search-markets" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("term") != "ai" || q.Get("limit") != "50" {
			t.Fatalf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[
			{"id":"m1","slug":"will-x","question":"Will X?","outcomeType":"BINARY","probability":0.4,"closeTime":1767225600000},
			{"id":"m2","slug":"which-y","question":"Which Y?","outcomeType":"MULTIPLE_CHOICE"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", 5*time.Second)
	markets, err := c.SearchMarkets(context.Background(), "ai", 50)
	if err != nil {
		t.Fatalf("SearchMarkets: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("got %d markets", len(markets))
	}
	if !markets[0].Binary() {
		t.Fatal("m1 should be binary")
	}
	if markets[0].CloseTime == nil || markets[0].CloseTime.UnixMilli() != 1767225600000 {
		t.Fatalf("CloseTime = %v", markets[0].CloseTime)
	}
	if markets[1].Binary() || markets[1].CloseTime != nil {
		t.Fatalf("m2 = %+v", markets[1])
	}
}

func TestPlaceBet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bet" {
			t.Fatalf("%s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["contractId"] != "m1" || payload["outcome"] != "YES" {
			t.Fatalf("payload = %v", payload)
		}
		w.Write([]byte(`{"betId":"b1","contractId":"m1","outcome":"YES","amount":25,"shares":52.1,"probBefore":0.4,"probAfter":0.43,"createdTime":1750000000000}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", 5*time.Second)
	res, err := c.PlaceBet(context.Background(), "m1", 25.4, domain.SideYes)
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if res.Amount != 25 || res.Outcome != domain.SideYes {
		t.Fatalf("result = %+v", res)
	}
}

func TestPlaceBetForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"missing permission"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", 5*time.Second)
	_, err := c.PlaceBet(context.Background(), "m1", 10, domain.SideNo)
	if !errors.Is(err, domain.ErrTradeForbidden) {
		t.Fatalf("err = %v, want ErrTradeForbidden", err)
	}
}

func TestGetMarketBySlugNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no such market"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", 5*time.Second)
	_, err := c.GetMarketBySlug(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestParseDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", ``, "Not specified."},
		{"null", `null`, "Not specified."},
		{"plain string", `"Resolves YES if it happens."`, "Resolves YES if it happens."},
		{
			"rich text",
			`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Resolves"},{"type":"text","text":"YES."}]}]}`,
			"Resolves YES.",
		},
		{"rich text without leaves", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"hardBreak"}]}]}`, "Description not parsable."},
		{"unknown shape", `42`, "Not specified."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var raw json.RawMessage
			if tc.raw != "" {
				raw = json.RawMessage(tc.raw)
			}
			if got := ParseDescription(raw); got != tc.want {
				t.Fatalf("ParseDescription(%s) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
