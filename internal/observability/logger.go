package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger is the process-wide logger. It discards everything until InitLogger
// runs, so packages and tests can log unconditionally.
var Logger = zap.NewNop()

// InitLogger installs a production JSON logger, or a development console
// logger when development is true.
func InitLogger(development bool) error {
	var (
		l   *zap.Logger
		err error
	)

	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	Logger = l
	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns Logger with trace_id and span_id fields from the
// active span in ctx, or Logger itself when there is none.
//
// ctx is also attached as a zap.Any("context", ctx) field. The otelzap bridge
// passes any context-valued field to log.Logger.Emit, so exported OTLP records
// carry the native TraceID and SpanID and Loki can link them to Tempo. The
// string fields keep stdout JSON greppable.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
