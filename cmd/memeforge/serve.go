package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/memeforge/memeforge/internal/adapters/fetch"
	"github.com/memeforge/memeforge/internal/adapters/http"
	"github.com/memeforge/memeforge/internal/adapters/http/handlers"
	"github.com/memeforge/memeforge/internal/assets"
	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/platform/config"
	"github.com/memeforge/memeforge/internal/platform/telemetry"
	"github.com/memeforge/memeforge/internal/ports"
)

// newServeCmd builds the HTTP server command.
func newServeCmd(profile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the meme generation HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*profile)
			if err != nil {
				return err
			}

			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)

	logger.Info("starting server",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// Telemetry is a noop provider when disabled.
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// Readiness covers every filesystem dependency the request path touches.
	healthRegistry := ports.NewHealthRegistry()
	for _, checker := range []ports.HealthChecker{
		assets.NewImageDirChecker(cfg.Assets.ImagesDir),
		assets.NewQuoteCorpusChecker(cfg.Assets.QuoteFiles),
		meme.NewOutputDirChecker(cfg.Meme.OutputDir),
	} {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	service, err := newMemeService(cfg, logger)
	if err != nil {
		return err
	}

	fetcher, err := fetch.New(&fetch.Config{
		Timeout:  cfg.Fetch.Timeout,
		MaxBytes: cfg.Fetch.MaxBytes,
		Retry:    cfg.Fetch.Retry,
		Circuit:  cfg.Fetch.CircuitBreaker,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("creating image fetcher: %w", err)
	}

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	server := http.New(&cfg.Server, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		AppConfig:     &cfg.App,
		HealthHandler: handlers.NewHealthHandler(healthRegistry, buildInfo),
		MemeHandler:   handlers.NewMemeHandler(service, fetcher, cfg.Meme.OutputDir),
		QuoteHandler:  handlers.NewQuoteHandler(service, cfg.Assets.QuoteFiles),
		WebHandler:    handlers.NewWebHandler(service, fetcher),
		MemeDir:       cfg.Meme.OutputDir,
		Timeout:       http.DefaultRequestTimeout,
	})

	serverErr := server.Start()

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// waitForShutdown blocks until a shutdown signal is received or a server
// error occurs, then drains in-flight requests.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
