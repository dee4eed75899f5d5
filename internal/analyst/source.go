// Package analyst turns a market into a probability estimate by prompting a
// large language model and parsing its structured verdict.
package analyst

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

// Source is a model backend that can answer an analysis prompt. Implementations
// stream partial output through onFragment as it arrives and return the full
// response text once the stream completes.
type Source interface {
	Name() string
	Complete(ctx context.Context, prompt string, onFragment func(text string)) (string, error)
}

// Analyst estimates market probabilities using a model Source.
type Analyst struct {
	source Source
	logger *slog.Logger
}

// New creates an Analyst backed by the given source.
func New(source Source, logger *slog.Logger) *Analyst {
	return &Analyst{
		source: source,
		logger: logger.With(slog.String("component", "analyst"), slog.String("model", source.Name())),
	}
}

// ModelName identifies the backing model, for audit records.
func (a *Analyst) ModelName() string { return a.source.Name() }

// Estimate runs the full analysis for one market. Only binary markets can be
// analysed. Streaming fragments are forwarded to onFragment when non-nil;
// pass nil to discard them.
func (a *Analyst) Estimate(ctx context.Context, m domain.Market, onFragment func(string)) (domain.Estimate, error) {
	if !m.Binary() {
		return domain.Estimate{}, fmt.Errorf("analyst: %s: %w", m.Slug, domain.ErrNotBinary)
	}
	if onFragment == nil {
		onFragment = func(string) {}
	}

	raw, err := a.source.Complete(ctx, BuildPrompt(m), onFragment)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("analyst: complete: %w", err)
	}

	est, err := ParseEstimate(raw)
	if err != nil {
		a.logger.Warn("unparsable analyst output", slog.String("market", m.Slug), slog.Any("error", err))
		return domain.Estimate{}, err
	}

	a.logger.Info("estimate",
		slog.String("market", m.Slug),
		slog.Float64("probability", est.Probability),
		slog.String("confidence", est.Confidence.String()))

	return est, nil
}
