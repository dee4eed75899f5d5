// Command manibot is the entry point for the Manifold betting bot. It loads
// configuration, validates it, sets up signal handling, and starts the
// application in the configured mode.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/notpranavshinde/manifold-llm-betting/internal/app"
	"github.com/notpranavshinde/manifold-llm-betting/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	topic := flag.String("topic", "", "market search term (overrides the positional argument)")
	dryRun := flag.Bool("dry-run", false, "compute and log bets without placing them")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// The flag only ever forces dry-run on; turning it off stays a config
	// decision.
	if *dryRun {
		cfg.Betting.DryRun = true
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Debug("configuration loaded", slog.Any("config", config.RedactedConfig(cfg)))

	// The search term comes from -topic or the first positional argument;
	// bet and scan modes prompt for one when both are missing.
	term := strings.TrimSpace(*topic)
	if term == "" {
		term = strings.TrimSpace(flag.Arg(0))
	}
	if term == "" && strings.ToLower(cfg.Mode) != "keygen" {
		fmt.Print("Search term: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			logger.Error("failed to read search term", slog.String("error", err.Error()))
			os.Exit(1)
		}
		term = strings.TrimSpace(line)
		if term == "" {
			logger.Error("a search term is required")
			os.Exit(1)
		}
	}

	logger.Info("manifold betting bot starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", *configPath),
	)

	// Create the application.
	application := app.New(cfg, term, logger)
	defer application.Close()

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the application.
	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if err == context.Canceled {
			logger.Info("application shut down gracefully")
		} else {
			logger.Error("application exited with error",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("manifold betting bot stopped")
}
