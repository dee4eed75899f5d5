package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/notpranavshinde/manifold-llm-betting/internal/analyst"
	s3blob "github.com/notpranavshinde/manifold-llm-betting/internal/blob/s3"
	"github.com/notpranavshinde/manifold-llm-betting/internal/cache/redis"
	"github.com/notpranavshinde/manifold-llm-betting/internal/config"
	"github.com/notpranavshinde/manifold-llm-betting/internal/crypto"
	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
	"github.com/notpranavshinde/manifold-llm-betting/internal/engine"
	"github.com/notpranavshinde/manifold-llm-betting/internal/notify"
	"github.com/notpranavshinde/manifold-llm-betting/internal/platform/gemini"
	"github.com/notpranavshinde/manifold-llm-betting/internal/platform/manifold"
	"github.com/notpranavshinde/manifold-llm-betting/internal/platform/openrouter"
	"github.com/notpranavshinde/manifold-llm-betting/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Manifold *manifold.Client
	Analyst  *analyst.Analyst
	Engine   *engine.Engine

	// Optional stores and caches; nil when not configured.
	Bets     domain.BetStore
	Cache    domain.MarketCache
	Seen     domain.SeenStore
	Archiver *s3blob.Archiver

	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Manifold platform client ---
	apiKey, err := crypto.LoadKey(crypto.KeyConfig{
		RawKey:           cfg.Manifold.ApiKey,
		EncryptedKeyPath: cfg.Manifold.EncryptedKeyPath,
		KeyPassword:      cfg.Manifold.KeyPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wire: manifold api key: %w", err)
	}
	deps.Manifold = manifold.NewClient(cfg.Manifold.BaseURL, apiKey, cfg.Session.HTTPTimeout.Duration)

	// --- LLM analyst (only when the selected provider has credentials) ---
	switch strings.ToLower(cfg.Model.Provider) {
	case "openrouter":
		if cfg.Model.OpenRouterApiKey != "" {
			src := openrouter.NewClient(
				cfg.Model.OpenRouterURL,
				cfg.Model.OpenRouterApiKey,
				cfg.Model.Name,
				cfg.Session.HTTPTimeout.Duration,
			)
			deps.Analyst = analyst.New(src, logger)
		}
	case "gemini":
		if cfg.Model.GeminiApiKey != "" {
			src := gemini.NewClient(
				cfg.Model.GeminiURL,
				cfg.Model.GeminiApiKey,
				cfg.Model.Name,
				cfg.Session.HTTPTimeout.Duration,
			)
			deps.Analyst = analyst.New(src, logger)
		}
	default:
		cleanup()
		return nil, nil, fmt.Errorf("wire: unknown model provider %q", cfg.Model.Provider)
	}

	// --- Decision engine ---
	deps.Engine = engine.New(engine.Params{
		KellyFraction: cfg.Betting.KellyFraction,
		MinEdge:       cfg.Betting.MinEdge,
		MinConfidence: cfg.Betting.ConfidenceThreshold(),
		MinStake:      cfg.Betting.MinStake,
	}, logger)

	// --- PostgreSQL bet store (optional) ---
	if cfg.Postgres.Enabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.Bets = postgres.NewBetStore(pgClient.Pool())
	}

	// --- Redis market cache and seen set (optional) ---
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Cache = redis.NewMarketCache(redisClient)
		deps.Seen = redis.NewSeenStore(redisClient)
	}

	// --- S3 bet trail archive (optional) ---
	if cfg.S3.Enabled() {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.Archiver = s3blob.NewArchiver(s3Client, cfg.S3.Prefix, logger)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
