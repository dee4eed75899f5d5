// Package config defines the top-level configuration for the betting bot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MANIBOT_* environment variables.
type Config struct {
	Manifold Manifold `toml:"manifold"`
	Model    Model    `toml:"model"`
	Betting  Betting  `toml:"betting"`
	Session  Session  `toml:"session"`
	Postgres Postgres `toml:"postgres"`
	Redis    Redis    `toml:"redis"`
	S3       S3       `toml:"s3"`
	Notify   Notify   `toml:"notify"`
	Mode     string   `toml:"mode"`
	LogLevel string   `toml:"log_level"`
}

// Manifold holds Manifold Markets API credentials and endpoints.
type Manifold struct {
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`

	// EncryptedKeyPath points at an encrypted key file produced by the
	// keygen mode. When set, KeyPassword is required and ApiKey is ignored.
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// Model holds the LLM analyst backend selection and credentials.
type Model struct {
	Provider         string `toml:"provider"` // "openrouter" or "gemini"
	Name             string `toml:"name"`
	OpenRouterApiKey string `toml:"openrouter_api_key"`
	OpenRouterURL    string `toml:"openrouter_url"`
	GeminiApiKey     string `toml:"gemini_api_key"`
	GeminiURL        string `toml:"gemini_url"`
}

// Betting holds the decision engine parameters.
type Betting struct {
	KellyFraction float64 `toml:"kelly_fraction"`
	MinEdge       float64 `toml:"min_edge"`
	MinConfidence string  `toml:"min_confidence"`
	MinStake      float64 `toml:"min_stake"`
	DryRun        bool    `toml:"dry_run"`
}

// Session holds market discovery and loop pacing parameters.
type Session struct {
	MarketLimit      int      `toml:"market_limit"`
	ResolutionMonths int      `toml:"resolution_months"`
	Delay            duration `toml:"delay"`
	HTTPTimeout      duration `toml:"http_timeout"`
	LogFile          string   `toml:"log_file"`
}

// Postgres holds optional PostgreSQL connection parameters for the durable
// bet store. Leave DSN and Host empty to disable it.
type Postgres struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether a Postgres connection is configured.
func (p Postgres) Enabled() bool {
	return strings.TrimSpace(p.DSN) != "" || p.Host != ""
}

// Redis holds optional Redis connection parameters for the market cache and
// the cross-session seen set. Leave Addr empty to disable it.
type Redis struct {
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	MarketTTL  duration `toml:"market_ttl"`
	SeenTTL    duration `toml:"seen_ttl"`
}

// Enabled reports whether a Redis connection is configured.
func (r Redis) Enabled() bool { return r.Addr != "" }

// S3 holds optional S3-compatible object storage parameters for archiving the
// bet trail. Leave Bucket empty to disable it.
type S3 struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// Enabled reports whether bet trail archiving is configured.
func (s S3) Enabled() bool { return s.Bucket != "" }

// Notify holds notification channel credentials.
type Notify struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration wraps time.Duration so TOML values like "60s" decode directly.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Manifold: Manifold{
			BaseURL: "https://api.manifold.markets/v0",
		},
		Model: Model{
			Provider:      "openrouter",
			Name:          "google/gemini-2.5-pro:online",
			OpenRouterURL: "https://openrouter.ai/api/v1",
			GeminiURL:     "https://generativelanguage.googleapis.com/v1beta",
		},
		Betting: Betting{
			KellyFraction: 0.25,
			MinEdge:       0.01,
			MinConfidence: "Medium",
			MinStake:      1,
			DryRun:        false,
		},
		Session: Session{
			MarketLimit:      50,
			ResolutionMonths: 1,
			Delay:            duration{1 * time.Second},
			HTTPTimeout:      duration{60 * time.Second},
			LogFile:          "bet_log.csv",
		},
		Postgres: Postgres{
			Port:          5432,
			Database:      "manibot",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: Redis{
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			MarketTTL:  duration{5 * time.Minute},
			SeenTTL:    duration{30 * 24 * time.Hour},
		},
		S3: S3{
			Region:         "us-east-1",
			UseSSL:         false,
			ForcePathStyle: true,
			Prefix:         "bet-logs",
		},
		Mode:     "bet",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted run modes.
var validModes = map[string]bool{
	"bet":    true,
	"scan":   true,
	"keygen": true,
}

// validLogLevels enumerates the accepted slog levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ConfidenceThreshold parses the configured confidence floor. Unknown labels
// fall back to Medium; Validate reports them as errors beforehand.
func (b Betting) ConfidenceThreshold() domain.Confidence {
	c, err := domain.ParseConfidence(b.MinConfidence)
	if err != nil {
		return domain.ConfidenceMedium
	}
	return c
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: bet, scan, keygen)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Manifold credentials are needed in every mode except keygen.
	if strings.ToLower(c.Mode) != "keygen" {
		if c.Manifold.ApiKey == "" && c.Manifold.EncryptedKeyPath == "" {
			errs = append(errs, "manifold: either api_key or encrypted_key_path must be set")
		}
	}
	if c.Manifold.EncryptedKeyPath != "" && c.Manifold.KeyPassword == "" {
		errs = append(errs, "manifold: key_password is required when encrypted_key_path is set")
	}
	if c.Manifold.BaseURL == "" {
		errs = append(errs, "manifold: base_url must not be empty")
	}

	switch strings.ToLower(c.Model.Provider) {
	case "openrouter":
		if c.Model.OpenRouterApiKey == "" && strings.ToLower(c.Mode) == "bet" {
			errs = append(errs, "model: openrouter_api_key is required for provider openrouter")
		}
	case "gemini":
		if c.Model.GeminiApiKey == "" && strings.ToLower(c.Mode) == "bet" {
			errs = append(errs, "model: gemini_api_key is required for provider gemini")
		}
	default:
		errs = append(errs, fmt.Sprintf("model: unknown provider %q (valid: openrouter, gemini)", c.Model.Provider))
	}

	if c.Betting.KellyFraction <= 0 || c.Betting.KellyFraction > 1 {
		errs = append(errs, fmt.Sprintf("betting: kelly_fraction must be in (0,1], got %v", c.Betting.KellyFraction))
	}
	if c.Betting.MinEdge < 0 {
		errs = append(errs, "betting: min_edge must be >= 0")
	}
	if _, err := domain.ParseConfidence(c.Betting.MinConfidence); err != nil {
		errs = append(errs, fmt.Sprintf("betting: unknown min_confidence %q (valid: Low, Medium, High)", c.Betting.MinConfidence))
	}
	// Bets are placed in whole currency units, so the floor cannot sit below 1.
	if c.Betting.MinStake < 1 {
		errs = append(errs, "betting: min_stake must be >= 1")
	}

	if c.Session.MarketLimit < 1 {
		errs = append(errs, "session: market_limit must be >= 1")
	}
	if c.Session.ResolutionMonths < 1 {
		errs = append(errs, "session: resolution_months must be >= 1")
	}
	if c.Session.HTTPTimeout.Duration <= 0 {
		errs = append(errs, "session: http_timeout must be > 0")
	}

	if c.Postgres.Enabled() {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty (or set postgres.dsn)")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 || c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must be between 0 and pool_max_conns")
		}
	}

	if c.Redis.Enabled() && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	if c.S3.Enabled() {
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			errs = append(errs, "s3: access_key and secret_key must both be set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
