// Command arbwatch runs the cross-venue arbitrage watcher: it discovers
// paired markets, streams live prices from both venues, evaluates
// covering combinations once a second, and serves the result over the
// inspection HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arborwatch/xvenue-arb/internal/app"
	"github.com/arborwatch/xvenue-arb/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config invalid:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("arbwatch: starting", slog.Any("config", config.Redacted(*cfg)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, *cfg, logger)
	if err != nil {
		logger.Error("arbwatch: init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("arbwatch: exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("arbwatch: shut down cleanly")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
