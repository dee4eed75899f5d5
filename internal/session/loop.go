// Package session drives one full betting run: discover markets for a search
// term, analyse each one with the model, and place Kelly-sized bets against
// a locally tracked balance.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
	"github.com/notpranavshinde/manifold-llm-betting/internal/engine"
	"github.com/notpranavshinde/manifold-llm-betting/internal/notify"
)

// Platform is the market venue the session trades on.
type Platform interface {
	Me(ctx context.Context) (domain.User, error)
	SearchMarkets(ctx context.Context, term string, limit int) ([]domain.Market, error)
	GetMarketBySlug(ctx context.Context, slug string) (domain.Market, error)
	PlaceBet(ctx context.Context, marketID string, amount float64, outcome domain.BetSide) (domain.BetResult, error)
}

// Estimator produces a probability estimate for one market.
type Estimator interface {
	ModelName() string
	Estimate(ctx context.Context, m domain.Market, onFragment func(string)) (domain.Estimate, error)
}

// Recorder appends to the local audit trail.
type Recorder interface {
	Append(rec domain.BetRecord) error
}

// Config holds session pacing and discovery parameters.
type Config struct {
	MarketLimit      int
	ResolutionMonths int
	Delay            time.Duration // pause between markets
	CallTimeout      time.Duration // per remote call
	DryRun           bool
}

// Summary is the outcome of one session run.
type Summary struct {
	Term         string
	Found        int // markets kept by the close-time filter
	Analyzed     int
	BetsPlaced   int
	Held         int
	Skipped      int
	TotalStaked  float64
	StartBalance float64
	FinalBalance float64
	Cancelled    bool
}

// Loop runs betting sessions. All state lives on the stack of Run; a Loop
// can be reused across runs.
type Loop struct {
	platform Platform
	analyst  Estimator
	engine   *engine.Engine
	audit    Recorder
	bets     domain.BetStore    // optional
	cache    domain.MarketCache // optional
	seen     domain.SeenStore   // optional
	notifier *notify.Notifier   // optional
	cacheTTL time.Duration
	seenTTL  time.Duration
	cfg      Config
	logger   *slog.Logger

	// onFragment receives model output as it streams; nil discards it.
	onFragment func(string)
}

// Options carries the optional collaborators for a Loop.
type Options struct {
	Bets       domain.BetStore
	Cache      domain.MarketCache
	CacheTTL   time.Duration
	Seen       domain.SeenStore
	SeenTTL    time.Duration
	Notifier   *notify.Notifier
	OnFragment func(string)
}

// New creates a session Loop.
func New(platform Platform, analyst Estimator, eng *engine.Engine, audit Recorder, cfg Config, opts Options, logger *slog.Logger) *Loop {
	return &Loop{
		platform:   platform,
		analyst:    analyst,
		engine:     eng,
		audit:      audit,
		bets:       opts.Bets,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		seen:       opts.Seen,
		seenTTL:    opts.SeenTTL,
		notifier:   opts.Notifier,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "session")),
		onFragment: opts.OnFragment,
	}
}

// Run executes one full session for the given search term. It returns early
// with a partial summary when ctx is cancelled; cancellation between markets
// is graceful, not an error. Balance is tracked locally and only debited for
// amounts the platform confirmed as filled.
func (l *Loop) Run(ctx context.Context, term string) (Summary, error) {
	summary := Summary{Term: term}

	user, err := l.call(ctx, l.platform.Me)
	if err != nil {
		return summary, fmt.Errorf("session: fetch account: %w", err)
	}
	l.logger.Info("session start",
		slog.String("term", term),
		slog.String("user", user.Username),
		slog.Float64("balance", user.Balance),
		slog.Float64("net_worth", user.NetWorth()),
		slog.Float64("all_time_profit", user.AllTimeProfit),
		slog.String("model", l.analyst.ModelName()),
		slog.Bool("dry_run", l.cfg.DryRun))

	balance := user.Balance
	summary.StartBalance = balance
	summary.FinalBalance = balance

	if l.bets != nil {
		weekAgo := time.Now().AddDate(0, 0, -7)
		if staked, err := l.bets.SumStaked(ctx, weekAgo); err == nil {
			l.logger.Info("staked in the last seven days", slog.Float64("staked", staked))
		} else {
			l.logger.Debug("stake lookback failed", slog.Any("error", err))
		}
	}

	markets, err := l.searchMarkets(ctx, term)
	if err != nil {
		return summary, fmt.Errorf("session: search markets: %w", err)
	}

	horizon := time.Duration(l.cfg.ResolutionMonths) * 30 * 24 * time.Hour
	candidates := engine.Filter(markets, time.Now(), horizon)
	summary.Found = len(candidates)
	l.logger.Info("markets filtered",
		slog.Int("searched", len(markets)),
		slog.Int("candidates", len(candidates)),
		slog.Int("months", l.cfg.ResolutionMonths))

	for i, candidate := range candidates {
		if ctx.Err() != nil {
			l.logger.Info("session cancelled", slog.String("at", candidate.Slug))
			summary.Cancelled = true
			break
		}
		if i > 0 {
			if !l.pause(ctx) {
				summary.Cancelled = true
				break
			}
		}

		switch l.analyzeMarket(ctx, candidate, &balance, &summary) {
		case outcomeCancelled:
			summary.Cancelled = true
		case outcomeSkipped:
			summary.Skipped++
		}
		if summary.Cancelled {
			break
		}
	}

	summary.FinalBalance = balance
	l.logger.Info("session done",
		slog.Int("found", summary.Found),
		slog.Int("analyzed", summary.Analyzed),
		slog.Int("bets", summary.BetsPlaced),
		slog.Int("held", summary.Held),
		slog.Int("skipped", summary.Skipped),
		slog.Float64("staked", summary.TotalStaked),
		slog.Float64("final_balance", summary.FinalBalance),
		slog.Bool("cancelled", summary.Cancelled))

	if l.notifier != nil {
		l.notifier.SessionDone(ctx, fmt.Sprintf(
			"term %q: %d bets, M$%.0f staked, %d held, %d skipped, balance M$%.2f",
			term, summary.BetsPlaced, summary.TotalStaked, summary.Held, summary.Skipped, summary.FinalBalance))
	}
	return summary, nil
}

type marketOutcome int

const (
	outcomeDone marketOutcome = iota
	outcomeSkipped
	outcomeCancelled
)

// analyzeMarket runs the full pipeline for one candidate: detail fetch,
// model estimate, decision, and placement. Failures along the way skip the
// market rather than aborting the session.
func (l *Loop) analyzeMarket(ctx context.Context, candidate domain.Market, balance *float64, summary *Summary) marketOutcome {
	log := l.logger.With(slog.String("market", candidate.Slug))

	if candidate.Slug == "" {
		return outcomeSkipped
	}

	if l.seen != nil {
		if seen, err := l.seen.Seen(ctx, candidate.ID); err == nil && seen {
			log.Debug("already analysed in a previous session")
			return outcomeSkipped
		}
	}

	// The ledger catches repeats even after the seen entry expired.
	if l.bets != nil {
		if prior, err := l.bets.ListByMarket(ctx, candidate.ID, domain.ListOpts{Limit: 1}); err == nil && len(prior) > 0 {
			log.Debug("already bet on in an earlier session")
			return outcomeSkipped
		}
	}

	market, err := l.fetchDetail(ctx, candidate.Slug)
	if err != nil {
		log.Warn("could not fetch market details", slog.Any("error", err))
		return outcomeSkipped
	}
	if ctx.Err() != nil {
		return outcomeCancelled
	}

	if !market.Binary() {
		log.Info("skipping non-binary market", slog.String("type", string(market.OutcomeType)))
		l.markSeen(ctx, market.ID)
		return outcomeSkipped
	}

	log.Info("analyzing market",
		slog.String("question", market.Question),
		slog.Float64("market_prob", market.Probability),
		slog.Time("closes", closeOrZero(market)))

	estCtx, cancel := context.WithTimeout(ctx, l.cfg.CallTimeout)
	est, err := l.analyst.Estimate(estCtx, market, l.onFragment)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return outcomeCancelled
		}
		log.Warn("estimate failed", slog.Any("error", err))
		return outcomeSkipped
	}
	// The model call is the longest wait of the loop; a cancellation that
	// raced its completion must not turn into a bet.
	if ctx.Err() != nil {
		return outcomeCancelled
	}

	summary.Analyzed++
	l.markSeen(ctx, market.ID)

	decision := l.engine.Decide(est, market.Probability, *balance)
	if !decision.Bet {
		summary.Held++
		log.Info("holding",
			slog.String("reason", decision.HoldReason),
			slog.Float64("model_prob", est.Probability),
			slog.Float64("edge", decision.Edge))
		return outcomeDone
	}

	filled, ok := l.placeBet(ctx, market, est, decision, *balance)
	if !ok {
		return outcomeDone
	}
	*balance -= filled
	summary.BetsPlaced++
	summary.TotalStaked += filled
	log.Info("balance updated", slog.Float64("balance", *balance))
	return outcomeDone
}

// placeBet sends the wager (or simulates it in dry-run mode) and returns the
// amount actually debited. Whole-mana rounding never exceeds the requested
// stake.
func (l *Loop) placeBet(ctx context.Context, market domain.Market, est domain.Estimate, decision domain.Decision, balance float64) (float64, bool) {
	log := l.logger.With(slog.String("market", market.Slug))

	amount := math.Round(decision.Stake)
	if amount > decision.Stake {
		amount = math.Floor(decision.Stake)
	}
	if amount < 1 {
		amount = 1
	}
	// The whole-unit floor can outgrow a sub-unit balance; never request more
	// than the account holds.
	if amount > balance {
		log.Info("whole-unit minimum exceeds balance, skipping",
			slog.Float64("amount", amount),
			slog.Float64("balance", balance))
		return 0, false
	}

	filled := amount
	if l.cfg.DryRun {
		log.Info("dry run, skipping placement",
			slog.String("side", string(decision.Side)),
			slog.Float64("amount", amount))
	} else {
		callCtx, cancel := context.WithTimeout(ctx, l.cfg.CallTimeout)
		result, err := l.platform.PlaceBet(callCtx, market.ID, amount, decision.Side)
		cancel()
		if err != nil {
			log.Error("bet rejected",
				slog.String("side", string(decision.Side)),
				slog.Float64("amount", amount),
				slog.Any("error", err))
			if errors.Is(err, domain.ErrTradeForbidden) {
				log.Error("the configured api key cannot trade")
			}
			if l.notifier != nil {
				l.notifier.BetFailed(ctx, market, decision.Side, amount, err)
			}
			return 0, false
		}
		if result.Amount > 0 && result.Amount <= amount {
			filled = result.Amount
		}
		log.Info("bet placed",
			slog.String("side", string(decision.Side)),
			slog.Float64("requested", amount),
			slog.Float64("filled", filled))
	}

	rec := domain.BetRecord{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		MarketID:   market.ID,
		Question:   market.Question,
		Outcome:    decision.Side,
		Amount:     filled,
		ModelName:  l.analyst.ModelName(),
		ModelProb:  est.Probability,
		ModelConf:  est.Confidence,
		MarketProb: market.Probability,
		Edge:       decision.Edge,
		DryRun:     l.cfg.DryRun,
	}
	if err := l.audit.Append(rec); err != nil {
		log.Error("audit append failed", slog.Any("error", err))
	}
	if l.bets != nil {
		if err := l.bets.Insert(ctx, rec); err != nil {
			log.Error("bet store insert failed", slog.Any("error", err))
		}
	}
	if l.notifier != nil {
		l.notifier.BetPlaced(ctx, rec)
	}
	return filled, true
}

// searchMarkets queries the platform with the per-call timeout applied.
func (l *Loop) searchMarkets(ctx context.Context, term string) ([]domain.Market, error) {
	callCtx, cancel := context.WithTimeout(ctx, l.cfg.CallTimeout)
	defer cancel()
	return l.platform.SearchMarkets(callCtx, term, l.cfg.MarketLimit)
}

// fetchDetail returns the full market, via the cache when one is configured.
func (l *Loop) fetchDetail(ctx context.Context, slug string) (domain.Market, error) {
	if l.cache != nil {
		if m, ok, err := l.cache.Get(ctx, slug); err == nil && ok {
			return m, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, l.cfg.CallTimeout)
	defer cancel()
	m, err := l.platform.GetMarketBySlug(callCtx, slug)
	if err != nil {
		return domain.Market{}, err
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, m, l.cacheTTL); err != nil {
			l.logger.Debug("market cache set failed", slog.Any("error", err))
		}
	}
	return m, nil
}

// markSeen records the market in the cross-session seen set, when configured.
func (l *Loop) markSeen(ctx context.Context, marketID string) {
	if l.seen == nil {
		return
	}
	if err := l.seen.Mark(ctx, marketID, l.seenTTL); err != nil {
		l.logger.Debug("seen mark failed", slog.Any("error", err))
	}
}

// call invokes fn with the per-call timeout applied.
func (l *Loop) call(ctx context.Context, fn func(context.Context) (domain.User, error)) (domain.User, error) {
	callCtx, cancel := context.WithTimeout(ctx, l.cfg.CallTimeout)
	defer cancel()
	return fn(callCtx)
}

// pause sleeps the inter-market delay, returning false when ctx is cancelled
// first.
func (l *Loop) pause(ctx context.Context) bool {
	if l.cfg.Delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(l.cfg.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func closeOrZero(m domain.Market) time.Time {
	if m.CloseTime == nil {
		return time.Time{}
	}
	return *m.CloseTime
}
