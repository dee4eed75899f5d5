package app

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/notpranavshinde/manifold-llm-betting/internal/audit"
	"github.com/notpranavshinde/manifold-llm-betting/internal/crypto"
	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
	"github.com/notpranavshinde/manifold-llm-betting/internal/engine"
	"github.com/notpranavshinde/manifold-llm-betting/internal/session"
)

// BetMode runs one full betting session for the configured search term, then
// archives the bet log if object storage is configured. Typing "q" followed by
// enter stops the session between markets.
func (a *App) BetMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting bet mode",
		slog.String("term", a.term),
		slog.Bool("dry_run", a.cfg.Betting.DryRun),
	)

	if deps.Analyst == nil {
		return fmt.Errorf("bet mode: no model credentials configured for provider %q", a.cfg.Model.Provider)
	}

	csvLog := audit.NewCSVLog(a.cfg.Session.LogFile)

	loop := session.New(
		deps.Manifold,
		deps.Analyst,
		deps.Engine,
		csvLog,
		session.Config{
			MarketLimit:      a.cfg.Session.MarketLimit,
			ResolutionMonths: a.cfg.Session.ResolutionMonths,
			Delay:            a.cfg.Session.Delay.Duration,
			CallTimeout:      a.cfg.Session.HTTPTimeout.Duration,
			DryRun:           a.cfg.Betting.DryRun,
		},
		session.Options{
			Bets:       deps.Bets,
			Cache:      deps.Cache,
			CacheTTL:   a.cfg.Redis.MarketTTL.Duration,
			Seen:       deps.Seen,
			SeenTTL:    a.cfg.Redis.SeenTTL.Duration,
			Notifier:   deps.Notifier,
			OnFragment: func(s string) { fmt.Print(s) },
		},
		a.logger,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, runCtx := errgroup.WithContext(runCtx)

	// Keyboard stop: "q" + enter cancels the session between markets. The
	// reader goroutine is abandoned on shutdown since stdin reads do not
	// honour contexts.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()
	g.Go(func() error {
		for {
			select {
			case <-runCtx.Done():
				return nil
			case line := <-lines:
				if strings.EqualFold(line, "q") {
					a.logger.InfoContext(runCtx, "stop requested from keyboard")
					cancel()
					return nil
				}
			}
		}
	})

	var summary session.Summary
	g.Go(func() error {
		defer cancel()
		var err error
		summary, err = loop.Run(runCtx, a.term)
		return err
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("bet mode: %w", err)
	}

	a.logger.InfoContext(ctx, "session finished",
		slog.Int("found", summary.Found),
		slog.Int("analyzed", summary.Analyzed),
		slog.Int("bets_placed", summary.BetsPlaced),
		slog.Int("held", summary.Held),
		slog.Int("skipped", summary.Skipped),
		slog.Float64("total_staked", summary.TotalStaked),
		slog.Float64("start_balance", summary.StartBalance),
		slog.Float64("final_balance", summary.FinalBalance),
		slog.Bool("cancelled", summary.Cancelled),
	)

	if deps.Archiver != nil {
		// Archiving uses the parent ctx so a keyboard stop still uploads
		// what was logged.
		archiveCtx, archiveCancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Minute)
		defer archiveCancel()
		if err := deps.Archiver.ArchiveBetLog(archiveCtx, csvLog.Path()); err != nil {
			a.logger.Warn("bet log archive failed", slog.String("error", err.Error()))
		}
	}

	return nil
}

// ScanMode searches and filters markets for the configured term and logs the
// candidates without calling the model or placing bets.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode", slog.String("term", a.term))

	markets, err := deps.Manifold.SearchMarkets(ctx, a.term, a.cfg.Session.MarketLimit)
	if err != nil {
		return fmt.Errorf("scan mode: search markets: %w", err)
	}

	horizon := time.Duration(a.cfg.Session.ResolutionMonths) * 30 * 24 * time.Hour
	candidates := engine.Filter(markets, time.Now(), horizon)

	a.logger.InfoContext(ctx, "scan complete",
		slog.Int("found", len(markets)),
		slog.Int("candidates", len(candidates)),
	)

	for _, m := range candidates {
		closeTime := ""
		if m.CloseTime != nil {
			closeTime = m.CloseTime.Format(time.RFC3339)
		}
		a.logger.InfoContext(ctx, "candidate market",
			slog.String("question", m.Question),
			slog.String("slug", m.Slug),
			slog.Float64("probability", m.Probability),
			slog.Float64("volume", m.Volume),
			slog.String("close_time", closeTime),
			slog.String("url", m.URL),
		)
	}

	// With a ledger configured, show what the bot did last.
	if deps.Bets != nil {
		recent, err := deps.Bets.ListRecent(ctx, domain.ListOpts{Limit: 10})
		if err != nil {
			a.logger.Warn("recent bets lookup failed", slog.String("error", err.Error()))
			return nil
		}
		for _, rec := range recent {
			a.logger.InfoContext(ctx, "recent bet",
				slog.Time("placed_at", rec.Timestamp),
				slog.String("question", rec.Question),
				slog.String("outcome", string(rec.Outcome)),
				slog.Float64("amount", rec.Amount),
				slog.Bool("dry_run", rec.DryRun),
			)
		}
	}

	return nil
}

// KeygenMode reads an API key and password from stdin and writes the
// encrypted key file. The output path comes from manifold.encrypted_key_path,
// falling back to manifold_key.json.
func (a *App) KeygenMode(ctx context.Context) error {
	outPath := a.cfg.Manifold.EncryptedKeyPath
	if outPath == "" {
		outPath = "manifold_key.json"
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Manifold API key: ")
	apiKey, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("keygen mode: reading api key: %w", err)
	}

	fmt.Print("Password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("keygen mode: reading password: %w", err)
	}

	blob, err := crypto.EncryptKey(strings.TrimSpace(apiKey), strings.TrimSpace(password))
	if err != nil {
		return fmt.Errorf("keygen mode: %w", err)
	}

	if err := os.WriteFile(outPath, blob, 0o600); err != nil {
		return fmt.Errorf("keygen mode: writing %s: %w", outPath, err)
	}

	a.logger.InfoContext(ctx, "encrypted key written", slog.String("path", outPath))
	return nil
}
