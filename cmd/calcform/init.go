package main

import (
	"context"

	"calcform/internal/client"
	"calcform/internal/config"
	"calcform/internal/observability"
)

const serviceName = "calcform"

// initTelemetry starts OTLP export when enabled and registers the client's
// metric instruments. The returned shutdown is always safe to call.
func initTelemetry(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	shutdown := func(context.Context) error { return nil }

	if cfg.Telemetry {
		var err error
		shutdown, err = observability.Setup(ctx, serviceName)
		if err != nil {
			return nil, err
		}
	}

	if err := client.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}
