package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/pokerleague/internal/api"
	"github.com/mcoot/pokerleague/internal/config"
	"github.com/mcoot/pokerleague/internal/factory"
	"github.com/mcoot/pokerleague/internal/scheduler"
)

func main() {
	configPath := flag.String("config", os.Getenv("LEAGUE_CONFIG"), "path to a YAML config file")
	envFile := flag.String("env-file", ".env", "path to a .env file (ignored when missing)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	factoryCfg := factory.Config{
		AuthConfig:  cfg.AuthServiceConfig(),
		Logger:      logger,
		StorageType: cfg.Storage.Type,
	}
	switch cfg.Storage.Type {
	case factory.StorageTypeRedis:
		redisCfg := cfg.RedisStorageConfig()
		factoryCfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		pgCfg := cfg.PostgresStorageConfig()
		factoryCfg.PostgresConfig = &pgCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	if !app.AuthService.Enabled() {
		logger.Warn("admin token not configured; admin routes are open")
	}

	jobs, err := scheduler.New(logger)
	if err != nil {
		return err
	}
	if _, err := jobs.Every("sse-hub-cleanup", cfg.SSE.CleanupInterval, app.HubManager.CleanupEmptyHubs); err != nil {
		return err
	}
	if _, err := jobs.Every("admin-token-cache-cleanup", cfg.Auth.CacheDuration, func() {
		if removed := app.AuthService.CleanExpired(); removed > 0 {
			logger.Debug("expired admin token cache entries removed", slog.Int("removed", removed))
		}
	}); err != nil {
		return err
	}
	jobs.Start()
	defer func() {
		if err := jobs.Stop(); err != nil {
			logger.Warn("failed to stop scheduler", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.AuthService,
		League:      app.LeagueController,
		HubManager:  app.HubManager,
		Storage:     app.Storage,
	})
	server := api.NewServer(router, cfg.APIServerConfig(), logger)
	if err := server.Listen(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		// Close SSE streams first so Shutdown does not wait on them
		app.HubManager.Close()
		return server.Shutdown(context.Background())
	})

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
