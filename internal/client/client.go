// Package client is the typed boundary to the remote arithmetic service. It
// speaks the Connect unary JSON protocol over plain HTTP and turns every
// outcome, including transport failures, into a calculator.Result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"calcform/internal/calculator"
	"calcform/internal/observability"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is where the arithmetic service listens in development.
	DefaultBaseURL = "http://localhost:8081"
	// Procedure is the service/method path appended to the base URL.
	Procedure = "/calculator.v1.CalculatorService/Calculate"

	// ProtocolVersionHeader tells the server the body follows the Connect protocol.
	ProtocolVersionHeader = "Connect-Protocol-Version"
	// ProtocolVersion is the only Connect protocol version spoken.
	ProtocolVersion = "1"
	// ErrorCodeHeader carries the Connect error code on non-2xx replies.
	ErrorCodeHeader = "Connect-Protocol-Error-Code"

	maxResponseBytes = 1 << 20
)

var tracer = otel.Tracer("calculator.client")

// Client calls the Calculate procedure. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
	quiet    bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The default wraps
// http.DefaultTransport with otelhttp and sets no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for failure diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithQuiet suppresses failure diagnostics. Test runs set it so expected
// failures do not flood the output.
func WithQuiet(quiet bool) Option {
	return func(c *Client) {
		c.quiet = quiet
	}
}

// New returns a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		endpoint: strings.TrimRight(baseURL, "/") + Procedure,
		http:     &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the full URL calls are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Calculate sends req and waits for the reply. It never returns an error:
// every failure, local or remote, comes back as a failed Result.
func (c *Client) Calculate(ctx context.Context, req calculator.Request) calculator.Result {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := tracer.Start(ctx, "calculator.client.calculate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("calculator.operation", req.Operation.String()),
			attribute.Float64("calculator.operand.left", req.Left),
			attribute.Float64("calculator.operand.right", req.Right),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.call(ctx, req)
	result := classify(resp, err)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	opAttr := attribute.String("operation", req.Operation.String())
	callsCounter.Add(ctx, 1, metric.WithAttributes(opAttr))
	latencyHistogram.Record(ctx, elapsed, metric.WithAttributes(opAttr))

	if result.OK() {
		value, _ := result.Value()
		span.SetAttributes(attribute.Float64("calculator.result", value))
		span.SetStatus(codes.Ok, "")
		return result
	}

	kind := result.Kind().String()
	failuresCounter.Add(ctx, 1, metric.WithAttributes(opAttr, attribute.String("kind", kind)))
	span.SetAttributes(attribute.String("calculator.failure.kind", kind))
	if err != nil {
		span.RecordError(err)
	}
	span.SetStatus(codes.Error, result.Message())

	c.logFailure(span.SpanContext(), req, result, err)
	return result
}

// call performs the HTTP round trip. A nil error means a 2xx reply whose body
// was a JSON object.
func (c *Client) call(ctx context.Context, req calculator.Request) (wireResponse, error) {
	body, err := json.Marshal(newWireRequest(req))
	if err != nil {
		return wireResponse{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return wireResponse{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(ProtocolVersionHeader, ProtocolVersion)
	if id := observability.RequestIDFromContext(ctx); id != "" {
		httpReq.Header.Set(observability.RequestIDHeader, id)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return wireResponse{}, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return wireResponse{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		werr := decodeError(raw)
		code := httpResp.Header.Get(ErrorCodeHeader)
		if code == "" {
			code = werr.Code
		}
		return wireResponse{}, &StatusError{
			StatusCode: httpResp.StatusCode,
			Code:       code,
			Message:    werr.Message,
		}
	}

	return decodeResponse(raw)
}

func (c *Client) logFailure(sc trace.SpanContext, req calculator.Request, result calculator.Result, err error) {
	if c.quiet {
		return
	}

	fields := []zap.Field{
		zap.String("kind", result.Kind().String()),
		zap.String("operation", req.Operation.String()),
		zap.Float64("left_operand", req.Left),
		zap.Float64("right_operand", req.Right),
		zap.String("message", result.Message()),
		zap.String("endpoint", c.endpoint),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	c.logger.Warn("calculate request failed", fields...)
}
