package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MANIBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MANIBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file. The bare MANIFOLD_API_KEY, OPENROUTER_API_KEY, and GEMINI_API_KEY
// names are honored as aliases for compatibility with older deployments.
func applyEnvOverrides(cfg *Config) {
	// ── Manifold ──
	setStr(&cfg.Manifold.BaseURL, "MANIBOT_MANIFOLD_BASE_URL")
	setStr(&cfg.Manifold.ApiKey, "MANIFOLD_API_KEY") // compatibility alias
	setStr(&cfg.Manifold.ApiKey, "MANIBOT_MANIFOLD_API_KEY")
	setStr(&cfg.Manifold.EncryptedKeyPath, "MANIBOT_MANIFOLD_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Manifold.KeyPassword, "MANIBOT_MANIFOLD_KEY_PASSWORD")

	// ── Model ──
	setStr(&cfg.Model.Provider, "MANIBOT_MODEL_PROVIDER")
	setStr(&cfg.Model.Name, "MANIBOT_MODEL_NAME")
	setStr(&cfg.Model.OpenRouterApiKey, "OPENROUTER_API_KEY") // compatibility alias
	setStr(&cfg.Model.OpenRouterApiKey, "MANIBOT_MODEL_OPENROUTER_API_KEY")
	setStr(&cfg.Model.OpenRouterURL, "MANIBOT_MODEL_OPENROUTER_URL")
	setStr(&cfg.Model.GeminiApiKey, "GEMINI_API_KEY") // compatibility alias
	setStr(&cfg.Model.GeminiApiKey, "MANIBOT_MODEL_GEMINI_API_KEY")
	setStr(&cfg.Model.GeminiURL, "MANIBOT_MODEL_GEMINI_URL")

	// ── Betting ──
	setFloat64(&cfg.Betting.KellyFraction, "MANIBOT_BETTING_KELLY_FRACTION")
	setFloat64(&cfg.Betting.MinEdge, "MANIBOT_BETTING_MIN_EDGE")
	setStr(&cfg.Betting.MinConfidence, "MANIBOT_BETTING_MIN_CONFIDENCE")
	setFloat64(&cfg.Betting.MinStake, "MANIBOT_BETTING_MIN_STAKE")
	setBool(&cfg.Betting.DryRun, "MANIBOT_BETTING_DRY_RUN")

	// ── Session ──
	setInt(&cfg.Session.MarketLimit, "MANIBOT_SESSION_MARKET_LIMIT")
	setInt(&cfg.Session.ResolutionMonths, "MANIBOT_SESSION_RESOLUTION_MONTHS")
	setDuration(&cfg.Session.Delay, "MANIBOT_SESSION_DELAY")
	setDuration(&cfg.Session.HTTPTimeout, "MANIBOT_SESSION_HTTP_TIMEOUT")
	setStr(&cfg.Session.LogFile, "MANIBOT_SESSION_LOG_FILE")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "MANIBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "MANIBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "MANIBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "MANIBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "MANIBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "MANIBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "MANIBOT_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "MANIBOT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "MANIBOT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "MANIBOT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "MANIBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MANIBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MANIBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MANIBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MANIBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MANIBOT_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.MarketTTL, "MANIBOT_REDIS_MARKET_TTL")
	setDuration(&cfg.Redis.SeenTTL, "MANIBOT_REDIS_SEEN_TTL")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "MANIBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "MANIBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "MANIBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "MANIBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "MANIBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "MANIBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "MANIBOT_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "MANIBOT_S3_PREFIX")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MANIBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MANIBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "MANIBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "MANIBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "MANIBOT_MODE")
	setStr(&cfg.LogLevel, "MANIBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
