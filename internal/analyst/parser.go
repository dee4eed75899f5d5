package analyst

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

type verdict struct {
	Probability float64 `json:"probability"`
	Confidence  string  `json:"confidence"`
}

// ParseEstimate extracts the structured verdict from a full model response.
// The primary format is free-form reasoning, the end-of-reasoning token on
// its own line, then a JSON object. Models occasionally omit the token, so
// the trailing top-level JSON object is used as a fallback.
func ParseEstimate(raw string) (domain.Estimate, error) {
	reasoning := raw
	var jsonPart string

	if before, after, found := strings.Cut(raw, EndOfReasoning); found {
		reasoning = strings.TrimSpace(before)
		jsonPart = stripFences(after)
	} else {
		obj, rest, ok := trailingJSONObject(raw)
		if !ok {
			return domain.Estimate{}, fmt.Errorf("%w: no separator token and no trailing object", domain.ErrNoVerdict)
		}
		reasoning = strings.TrimSpace(rest)
		jsonPart = obj
	}

	var v verdict
	if err := json.Unmarshal([]byte(jsonPart), &v); err != nil {
		return domain.Estimate{}, fmt.Errorf("%w: %v", domain.ErrNoVerdict, err)
	}
	if v.Probability < 0 || v.Probability > 1 {
		return domain.Estimate{}, fmt.Errorf("%w: probability %v out of range", domain.ErrNoVerdict, v.Probability)
	}

	conf, err := domain.ParseConfidence(v.Confidence)
	if err != nil {
		return domain.Estimate{}, err
	}

	return domain.Estimate{
		Probability: v.Probability,
		Confidence:  conf,
		Reasoning:   reasoning,
	}, nil
}

// stripFences removes markdown code fences around a JSON block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// trailingJSONObject finds the last balanced top-level object in s, returning
// the object text and everything before it. Braces inside JSON strings are
// skipped.
func trailingJSONObject(s string) (obj, rest string, ok bool) {
	s = stripFences(s)
	end := strings.LastIndexByte(s, '}')
	if end < 0 {
		return "", "", false
	}

	depth := 0
	inString := false
	for i := end; i >= 0; i-- {
		c := s[i]
		if inString {
			// A quote preceded by a backslash stays inside the string.
			if c == '"' && (i == 0 || s[i-1] != '\\') {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '}':
			depth++
		case '{':
			depth--
			if depth == 0 {
				return s[i : end+1], s[:i], true
			}
		}
	}
	return "", "", false
}
