package domain

import (
	"fmt"
	"strings"
)

// Confidence is the analyst's self-reported conviction, ordered Low < Medium < High.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

// ParseConfidence maps the analyst's string label to a Confidence. Matching is
// case-insensitive and tolerates surrounding whitespace.
func ParseConfidence(s string) (Confidence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ConfidenceLow, nil
	case "medium":
		return ConfidenceMedium, nil
	case "high":
		return ConfidenceHigh, nil
	default:
		return ConfidenceLow, fmt.Errorf("%w: %q", ErrInvalidConfidence, s)
	}
}

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "Low"
	case ConfidenceMedium:
		return "Medium"
	case ConfidenceHigh:
		return "High"
	default:
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
}

// AtLeast reports whether c meets or exceeds the threshold.
func (c Confidence) AtLeast(min Confidence) bool {
	return c >= min
}

// Estimate is the analyst's verdict on a single market.
type Estimate struct {
	Probability float64 // estimated probability of YES, in [0,1]
	Confidence  Confidence
	Reasoning   string // free-form analysis preceding the verdict
}
