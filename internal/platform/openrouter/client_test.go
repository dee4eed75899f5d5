package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "Manifold AutoBet" {
			t.Fatalf("X-Title = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "google/gemini-2.5-pro:online" {
			t.Fatalf("model = %s", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Fatalf("messages = %+v", req.Messages)
		}

		w.Write([]byte(`{"choices":[{"message":{"content":"the answer"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "", 5*time.Second)

	var fragments []string
	got, err := c.Complete(context.Background(), "a prompt", func(s string) {
		fragments = append(fragments, s)
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "the answer" {
		t.Fatalf("got %q", got)
	}
	if len(fragments) != 1 || fragments[0] != "the answer" {
		t.Fatalf("fragments = %v", fragments)
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model not found","code":404}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "bad/model", 5*time.Second)
	if _, err := c.Complete(context.Background(), "p", nil); err == nil {
		t.Fatal("expected error for api error body")
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "", 5*time.Second)
	if _, err := c.Complete(context.Background(), "p", nil); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
