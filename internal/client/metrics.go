package client

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	callsCounter     metric.Int64Counter     = noop.Int64Counter{}
	failuresCounter  metric.Int64Counter     = noop.Int64Counter{}
	latencyHistogram metric.Float64Histogram = noop.Float64Histogram{}
)

// InitMetrics registers the client's OTel metric instruments.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator.client")

	var err error

	callsCounter, err = meter.Int64Counter("calculator.client.calls.total",
		metric.WithDescription("Total number of Calculate calls issued"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return fmt.Errorf("creating calls counter: %w", err)
	}

	failuresCounter, err = meter.Int64Counter("calculator.client.failures.total",
		metric.WithDescription("Calculate calls that resolved to a failure, by kind"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return fmt.Errorf("creating failures counter: %w", err)
	}

	latencyHistogram, err = meter.Float64Histogram("calculator.client.duration",
		metric.WithDescription("Round-trip time of Calculate calls in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		return fmt.Errorf("creating latency histogram: %w", err)
	}

	return nil
}
