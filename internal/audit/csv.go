// Package audit maintains the append-only CSV trail of every bet the session
// placed or would have placed.
package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

// DefaultLogFile is the bet trail file in the working directory.
const DefaultLogFile = "bet_log.csv"

var header = []string{
	"timestamp", "market_id", "question", "outcome", "amount",
	"model_name", "model_prob", "model_confidence", "market_prob",
	"edge", "dry_run",
}

// CSVLog appends bet records to a CSV file, writing the header when the file
// is created. It is safe for concurrent use.
type CSVLog struct {
	mu   sync.Mutex
	path string
}

// NewCSVLog creates a log writing to path. The file is opened lazily on the
// first append.
func NewCSVLog(path string) *CSVLog {
	if path == "" {
		path = DefaultLogFile
	}
	return &CSVLog{path: path}
}

// Path returns the log file location.
func (l *CSVLog) Path() string { return l.path }

// Append writes one bet record. The edge column is relative to the outcome
// backed, so it is positive for any bet the engine chose to place.
func (l *CSVLog) Append(rec domain.BetRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit: open %s: %w", l.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("audit: write header: %w", err)
		}
	}

	edge := rec.Edge
	if rec.Outcome == domain.SideNo {
		edge = -edge
	}

	row := []string{
		rec.Timestamp.Format("2006-01-02 15:04:05"),
		rec.MarketID,
		rec.Question,
		string(rec.Outcome),
		strconv.FormatFloat(rec.Amount, 'f', -1, 64),
		rec.ModelName,
		strconv.FormatFloat(rec.ModelProb, 'f', -1, 64),
		rec.ModelConf.String(),
		strconv.FormatFloat(rec.MarketProb, 'f', -1, 64),
		strconv.FormatFloat(edge, 'f', -1, 64),
		strconv.FormatBool(rec.DryRun),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("audit: write row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("audit: flush: %w", err)
	}
	return nil
}
