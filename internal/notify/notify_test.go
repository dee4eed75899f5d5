package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingSender struct {
	mu     sync.Mutex
	name   string
	titles []string
	err    error
}

func (s *recordingSender) Send(ctx context.Context, title, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, title)
	return s.err
}

func (s *recordingSender) Name() string { return s.name }

func TestNotifierEventFilter(t *testing.T) {
	s := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{s}, []string{EventBetPlaced}, testLogger())

	n.BetPlaced(context.Background(), domain.BetRecord{Question: "q", Outcome: domain.SideYes})
	n.SessionDone(context.Background(), "done")

	if len(s.titles) != 1 {
		t.Fatalf("got %d deliveries, want 1 (session_done filtered)", len(s.titles))
	}
	if s.titles[0] != "Bet placed" {
		t.Fatalf("title = %q, want %q", s.titles[0], "Bet placed")
	}
}

func TestNotifierEmptyFilterAllowsAll(t *testing.T) {
	s := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{s}, nil, testLogger())

	n.SessionDone(context.Background(), "done")
	n.Error(context.Background(), "boom")

	if len(s.titles) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(s.titles))
	}
}

func TestNotifierSenderFailureDoesNotBlockOthers(t *testing.T) {
	bad := &recordingSender{name: "bad", err: errors.New("down")}
	good := &recordingSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, testLogger())

	n.Error(context.Background(), "boom")

	if len(good.titles) != 1 {
		t.Fatalf("good sender got %d deliveries, want 1", len(good.titles))
	}
}

func TestTelegramSenderPayload(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewTelegramSender("tok123", "chat42")
	s.apiBase = srv.URL

	if err := s.Send(context.Background(), "Bet placed", "M$10 on YES"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/bottok123/sendMessage" {
		t.Fatalf("path = %q, want %q", gotPath, "/bottok123/sendMessage")
	}
	if gotBody["chat_id"] != "chat42" {
		t.Fatalf("chat_id = %q, want %q", gotBody["chat_id"], "chat42")
	}
	if gotBody["text"] != "*Bet placed*\nM$10 on YES" {
		t.Fatalf("text = %q", gotBody["text"])
	}
}

func TestDiscordSenderStatusHandling(t *testing.T) {
	var gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotContent = body["content"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL)
	if err := s.Send(context.Background(), "Session finished", "3 bets"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotContent != "**Session finished**\n3 bets" {
		t.Fatalf("content = %q", gotContent)
	}

	fail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such webhook", http.StatusNotFound)
	}))
	defer fail.Close()

	if err := NewDiscordSender(fail.URL).Send(context.Background(), "t", "m"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
