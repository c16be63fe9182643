package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"calcform/internal/calculator"
	"calcform/internal/handlers"
	"calcform/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the backend's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator.backend")

// DivisionByZeroMessage is the business error reported for x / 0.
const DivisionByZeroMessage = "division by zero"

// Connect error codes and the header that mirrors them.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeUnimplemented   = "unimplemented"
	CodeInternal        = "internal"

	ErrorCodeHeader = "Connect-Protocol-Error-Code"
)

const maxBodyBytes = 1 << 20

var errDivisionByZero = errors.New(DivisionByZeroMessage)

// compute performs op on a and b. The boolean is false for tags outside the
// four arithmetic operations.
func compute(op calculator.Operation, a, b float64) (float64, bool, error) {
	switch op {
	case calculator.OperationAdd:
		return a + b, true, nil
	case calculator.OperationSubtract:
		return a - b, true, nil
	case calculator.OperationMultiply:
		return a * b, true, nil
	case calculator.OperationDivide:
		if b == 0 {
			return 0, true, errDivisionByZero
		}
		return a / b, true, nil
	default:
		return 0, false, nil
	}
}

// Calculate handles POST /calculator.v1.CalculatorService/Calculate using the
// Connect unary JSON protocol.
func Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.v1.CalculatorService/Calculate",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("rpc.system", "connect_rpc"),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		err := fmt.Errorf("method %s not allowed", r.Method)
		observability.RecordError(ctx, span, logger, errorCounter, "unknown", "protocol", "method not allowed", err)
		writeConnectError(w, http.StatusMethodNotAllowed, CodeUnimplemented, err.Error())
		return
	}

	if !isJSON(r.Header.Get("Content-Type")) {
		err := fmt.Errorf("unsupported content type %q", r.Header.Get("Content-Type"))
		observability.RecordError(ctx, span, logger, errorCounter, "unknown", "protocol", "unsupported content type", err)
		writeConnectError(w, http.StatusUnsupportedMediaType, CodeInvalidArgument, err.Error())
		return
	}

	// --- Decode request body ---
	var req CalculateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "unknown", "protocol", "invalid request body", err)
		writeConnectError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body: "+err.Error())
		return
	}

	opName := strings.ToLower(strings.TrimPrefix(req.Operation.String(), "OPERATION_"))
	span.SetAttributes(
		attribute.String("calculator.operation", req.Operation.String()),
		attribute.Float64("calculator.operand.left", req.LeftOperand),
		attribute.Float64("calculator.operand.right", req.RightOperand),
	)

	// --- Perform computation (timed for histogram) ---
	start := time.Now()
	result, known, err := compute(req.Operation, req.LeftOperand, req.RightOperand)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if !known {
		err := fmt.Errorf("unsupported operation: %s", req.Operation)
		observability.RecordError(ctx, span, logger, errorCounter, opName, "protocol", "unsupported operation", err)
		writeConnectError(w, http.StatusBadRequest, CodeInvalidArgument, err.Error())
		return
	}

	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "business", err.Error(), err)
		handlers.WriteJSON(w, http.StatusOK, CalculateResponse{Error: err.Error()})
		return
	}

	// --- Record metrics ---
	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, result, attrs)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.Float64("left_operand", req.LeftOperand),
		zap.Float64("right_operand", req.RightOperand),
		zap.Float64("result", result),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, CalculateResponse{Result: result})
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

func writeConnectError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set(ErrorCodeHeader, code)
	handlers.WriteJSON(w, status, ConnectError{Code: code, Message: msg})
}
