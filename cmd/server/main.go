package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"aurum/internal/platform/config"
	"aurum/internal/platform/health"
	"aurum/internal/platform/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	statsInterval   = 15 * time.Second
)

// main loads configuration, wires the token services and serves them until
// SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	app, err := buildApp(ctx, cfg, infra, log)
	if err != nil {
		return err
	}

	checks := health.New(cfg.Environment)
	infra.RegisterChecks(checks)

	handler, err := newRouter(cfg, app, infra, checks, log)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting aurum",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"program", cfg.Token.ProgramID.String(),
		"postgres", infra.pool != nil,
		"redis", infra.redis != nil,
		"kafka", cfg.Kafka.Brokers != "",
	)

	app.relay.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		if err := app.relay.Stop(shutdownCtx); err != nil {
			log.Warn("outbox relay did not drain", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		recordStats(gctx, infra, app, log)
		return nil
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

func recordStats(ctx context.Context, infra *infra, app *app, log *slog.Logger) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			infra.RecordStats()
			if err := app.relay.UpdateMetrics(ctx); err != nil {
				log.Warn("outbox metrics refresh failed", "error", err)
			}
		}
	}
}
