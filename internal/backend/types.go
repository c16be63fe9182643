package backend

import (
	"encoding/json"
	"math"

	"calcform/internal/calculator"
)

// Procedure is the Connect path of the only method the service exposes.
const Procedure = "/calculator.v1.CalculatorService/Calculate"

// CalculateRequest is the JSON body of a Calculate call.
type CalculateRequest struct {
	LeftOperand  float64              `json:"left_operand"`
	RightOperand float64              `json:"right_operand"`
	Operation    calculator.Operation `json:"operation"`
}

// CalculateResponse is the JSON body of a successful Calculate call. A
// business failure such as division by zero is reported in Error with a 200.
type CalculateResponse struct {
	Result float64 `json:"result"`
	Error  string  `json:"error,omitempty"`
}

// MarshalJSON writes non-finite results as the strings "NaN", "Infinity" and
// "-Infinity", the way protobuf JSON encodes doubles.
func (r CalculateResponse) MarshalJSON() ([]byte, error) {
	type plain CalculateResponse
	if !math.IsNaN(r.Result) && !math.IsInf(r.Result, 0) {
		return json.Marshal(plain(r))
	}

	var text string
	switch {
	case math.IsNaN(r.Result):
		text = "NaN"
	case r.Result > 0:
		text = "Infinity"
	default:
		text = "-Infinity"
	}
	return json.Marshal(struct {
		Result string `json:"result"`
		Error  string `json:"error,omitempty"`
	}{Result: text, Error: r.Error})
}

// ConnectError is the body written alongside a non-2xx status.
type ConnectError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
