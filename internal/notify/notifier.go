// Package notify pushes session events to external channels. Events are
// dispatched to all registered senders (Telegram, Discord) and can be
// filtered by event type so operators receive only the alerts they care
// about.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

// Event types emitted by the betting session.
const (
	EventBetPlaced   = "bet_placed"
	EventBetFailed   = "bet_failed"
	EventSessionDone = "session_done"
	EventError       = "error"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches notifications to one or more Senders, filtered by an
// allowed set of event types. Delivery failures are logged, never fatal.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that will deliver to the given senders. Only
// events whose type appears in the events slice are forwarded; an empty slice
// allows everything.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// BetPlaced announces a filled (or dry-run) bet.
func (n *Notifier) BetPlaced(ctx context.Context, rec domain.BetRecord) {
	title := "Bet placed"
	if rec.DryRun {
		title = "Dry-run bet"
	}
	msg := fmt.Sprintf("M$%.0f on %s\n%s\nmodel %.0f%% vs market %.0f%%",
		rec.Amount, rec.Outcome, rec.Question, rec.ModelProb*100, rec.MarketProb*100)
	n.notify(ctx, EventBetPlaced, title, msg)
}

// BetFailed announces a bet the platform rejected.
func (n *Notifier) BetFailed(ctx context.Context, m domain.Market, side domain.BetSide, amount float64, err error) {
	msg := fmt.Sprintf("M$%.0f on %s\n%s\n%v", amount, side, m.Question, err)
	n.notify(ctx, EventBetFailed, "Bet failed", msg)
}

// SessionDone announces the end-of-session summary.
func (n *Notifier) SessionDone(ctx context.Context, summary string) {
	n.notify(ctx, EventSessionDone, "Session finished", summary)
}

// Error announces an unexpected failure worth waking someone for.
func (n *Notifier) Error(ctx context.Context, msg string) {
	n.notify(ctx, EventError, "Error", msg)
}

// notify fans the message out to every sender, applying the event filter.
// Individual sender failures are logged and do not block the others.
func (n *Notifier) notify(ctx context.Context, event, title, message string) {
	if n == nil || len(n.senders) == 0 {
		return
	}
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return
	}

	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}
}
