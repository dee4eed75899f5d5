package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCompleteStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-pro:streamGenerateContent") {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("alt") != "sse" {
			t.Fatalf("alt = %q", r.URL.Query().Get("alt"))
		}
		if r.URL.Query().Get("key") != "g-key" {
			t.Fatalf("key = %q", r.URL.Query().Get("key"))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Hello \"}]}}]}\n\n"))
		w.Write([]byte("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"world\"}]}}]}\n\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "g-key", "", 5*time.Second)

	var fragments []string
	got, err := c.Complete(context.Background(), "hi", func(s string) {
		fragments = append(fragments, s)
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Hello world" {
		t.Fatalf("got %q", got)
	}
	if len(fragments) != 2 {
		t.Fatalf("fragments = %v", fragments)
	}
}

func TestCompleteStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"error\":{\"code\":429,\"message\":\"quota\",\"status\":\"RESOURCE_EXHAUSTED\"}}\n\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "g-key", "", 5*time.Second)
	if _, err := c.Complete(context.Background(), "hi", nil); err == nil {
		t.Fatal("expected error from stream error chunk")
	}
}

func TestCompleteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"partial\"}]}}]}\n\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		cancel()
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "g-key", "", 5*time.Second)
	if _, err := c.Complete(ctx, "hi", nil); err == nil {
		t.Fatal("expected error after cancellation")
	}
}
