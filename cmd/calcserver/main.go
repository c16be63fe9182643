// Command calcserver runs the arithmetic service the form talks to. It is a
// development stand-in that speaks the same wire protocol as production.
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

	"calcform/internal/backend"
	"calcform/internal/config"
	"calcform/internal/observability"
	"calcform/internal/server"
)

const serviceName = "calcserver"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "calcserver: %v\n", err)
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
	if cfg.Telemetry {
		shutdown, err := observability.Setup(ctx, serviceName)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				observability.Logger.Warn("telemetry shutdown", zap.Error(err))
			}
		}()
	}
	if err := backend.InitMetrics(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.BackendAddr,
		Handler:           server.NewBackendHandler(cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	observability.Logger.Info("calcserver starting",
		zap.String("addr", cfg.BackendAddr),
		zap.Strings("cors_origins", cfg.CORSOrigins),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, srv) })

	return g.Wait()
}
