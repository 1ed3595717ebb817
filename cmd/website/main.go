package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/httplog/v2"
	"github.com/nexxeln/website/internal/app"
	"github.com/nexxeln/website/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	logger := httplog.NewLogger("website", httplog.Options{
		JSON:            cfg.Env == config.EnvProd,
		LogLevel:        logLevel(cfg.Env),
		Concise:         cfg.Env != config.EnvProd,
		RequestHeaders:  cfg.Env == config.EnvDev,
		QuietDownRoutes: []string{"/api/v1/ping"},
		Tags: map[string]string{
			"env": cfg.Env,
		},
	})

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func logLevel(env string) slog.Level {
	if env == config.EnvDev {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
