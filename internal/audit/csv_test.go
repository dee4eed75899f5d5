package audit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

func TestAppendCreatesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bet_log.csv")
	log := NewCSVLog(path)

	rec := domain.BetRecord{
		Timestamp:  time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		MarketID:   "m1",
		Question:   "Will it happen?",
		Outcome:    domain.SideYes,
		Amount:     25,
		ModelName:  "google/gemini-2.5-pro:online",
		ModelProb:  0.7,
		ModelConf:  domain.ConfidenceHigh,
		MarketProb: 0.5,
		Edge:       0.2,
	}
	if err := log.Append(rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	rec.Outcome = domain.SideNo
	rec.ModelProb = 0.3
	rec.Edge = -0.2
	if err := log.Append(rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][10] != "dry_run" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][3] != "YES" || rows[1][9] != "0.2" {
		t.Fatalf("yes row = %v", rows[1])
	}
	// Edge is outcome-relative, so a NO bet with model below market logs positive.
	if rows[2][3] != "NO" || rows[2][9] != "0.2" {
		t.Fatalf("no row = %v", rows[2])
	}
}

func TestAppendQuotesCommasInQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bet_log.csv")
	log := NewCSVLog(path)

	rec := domain.BetRecord{
		Timestamp: time.Now(),
		MarketID:  "m1",
		Question:  `Will "X, Y and Z" merge?`,
		Outcome:   domain.SideYes,
	}
	if err := log.Append(rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rows[1][2] != rec.Question {
		t.Fatalf("question = %q", rows[1][2])
	}
}
