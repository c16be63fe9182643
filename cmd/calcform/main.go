// Command calcform serves the calculation form and forwards each submit to
// the arithmetic service at CALCFORM_BACKEND_URL.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"calcform/internal/client"
	"calcform/internal/config"
	"calcform/internal/observability"
	"calcform/internal/server"
	"calcform/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "calcform: %v\n", err)
		os.Exit(1)
	}
}

func run() error {

	// Config
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logger
	if err := observability.InitLogger(cfg.Development); err != nil {
		return err
	}
	defer observability.SyncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing, metrics, logs
	shutdownTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			observability.Logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	// Forms
	calc := client.New(cfg.BackendURL,
		client.WithLogger(observability.Logger),
		client.WithQuiet(cfg.TestMode),
	)
	sessions := web.NewSessions(calc, cfg.SessionTTL, observability.Logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(sessions),
		ReadHeaderTimeout: 10 * time.Second,
	}

	observability.Logger.Info("calcform starting",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("backend", calc.Endpoint()),
		zap.Bool("test_mode", cfg.TestMode),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, srv) })
	g.Go(func() error { return sessions.Run(gctx, cfg.SweepInterval) })

	return g.Wait()
}
