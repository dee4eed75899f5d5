package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

func TestDefaultsValidateInDryScan(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "scan"
	cfg.Manifold.ApiKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate in scan mode: %v", err)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
mode = "bet"
log_level = "debug"

[manifold]
api_key = "file-key"

[model]
provider = "openrouter"
openrouter_api_key = "sk-file"

[betting]
kelly_fraction = 0.5
min_confidence = "High"

[session]
market_limit = 10
http_timeout = "30s"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MANIBOT_BETTING_KELLY_FRACTION", "0.1")
	t.Setenv("MANIBOT_MANIFOLD_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Betting.KellyFraction != 0.1 {
		t.Fatalf("env override lost: kelly_fraction = %v", cfg.Betting.KellyFraction)
	}
	if cfg.Manifold.ApiKey != "env-key" {
		t.Fatalf("api_key = %q", cfg.Manifold.ApiKey)
	}
	if cfg.Session.MarketLimit != 10 {
		t.Fatalf("market_limit = %d", cfg.Session.MarketLimit)
	}
	if cfg.Session.HTTPTimeout.Duration != 30*time.Second {
		t.Fatalf("http_timeout = %v", cfg.Session.HTTPTimeout.Duration)
	}
	// File did not set delay, so the default survives.
	if cfg.Session.Delay.Duration != time.Second {
		t.Fatalf("delay = %v", cfg.Session.Delay.Duration)
	}
	if cfg.Betting.ConfidenceThreshold() != domain.ConfidenceHigh {
		t.Fatalf("min_confidence = %v", cfg.Betting.ConfidenceThreshold())
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "fly"
	cfg.Betting.KellyFraction = 2
	cfg.Betting.MinConfidence = "Certain"
	cfg.Session.MarketLimit = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"unknown mode", "kelly_fraction", "min_confidence", "market_limit"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error missing %q:\n%v", want, err)
		}
	}
}

func TestValidateRejectsFractionalMinStake(t *testing.T) {
	cfg := Defaults()
	cfg.Manifold.ApiKey = "k"
	cfg.Mode = "scan"
	cfg.Betting.MinStake = 0.5

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "min_stake") {
		t.Fatalf("got %v, want min_stake error", err)
	}

	cfg.Betting.MinStake = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRequiresModelKeyForBetMode(t *testing.T) {
	cfg := Defaults()
	cfg.Manifold.ApiKey = "k"
	cfg.Mode = "bet"

	if err := cfg.Validate(); err == nil {
		t.Fatal("bet mode without a model key should fail validation")
	}

	cfg.Model.OpenRouterApiKey = "sk"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Manifold.ApiKey = "secret-manifold"
	cfg.Model.OpenRouterApiKey = "secret-or"
	cfg.Postgres.Password = "secret-pg"
	cfg.Notify.TelegramToken = "secret-tg"

	red := RedactedConfig(&cfg)

	if red.Manifold.ApiKey != "***" || red.Model.OpenRouterApiKey != "***" ||
		red.Postgres.Password != "***" || red.Notify.TelegramToken != "***" {
		t.Fatalf("secrets not redacted: %+v", red)
	}
	if cfg.Manifold.ApiKey != "secret-manifold" {
		t.Fatal("original config mutated")
	}
	// Unset secrets stay empty rather than becoming the placeholder.
	if red.Model.GeminiApiKey != "" {
		t.Fatalf("gemini key = %q", red.Model.GeminiApiKey)
	}
}
