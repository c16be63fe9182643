package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"calcform/internal/calculator"
)

// wireRequest is the JSON body of the Calculate procedure.
type wireRequest struct {
	LeftOperand  float64 `json:"left_operand"`
	RightOperand float64 `json:"right_operand"`
	Operation    int32   `json:"operation"`
}

func newWireRequest(req calculator.Request) wireRequest {
	return wireRequest{
		LeftOperand:  req.Left,
		RightOperand: req.Right,
		Operation:    int32(req.Operation),
	}
}

// wireResponse is the JSON body of a 2xx Calculate reply. Connect omits zero
// values, so a missing result means 0.
type wireResponse struct {
	Result wireDouble `json:"result"`
	Error  string     `json:"error"`
}

// wireError is the Connect error body sent with a non-2xx status.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wireDouble decodes a protobuf JSON double: a number, a quoted number, or one
// of the strings "NaN", "Infinity" and "-Infinity".
type wireDouble float64

func (d *wireDouble) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*d = wireDouble(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("result is neither a number nor a string: %w", err)
	}
	switch s {
	case "NaN":
		*d = wireDouble(math.NaN())
	case "Infinity":
		*d = wireDouble(math.Inf(1))
	case "-Infinity":
		*d = wireDouble(math.Inf(-1))
	default:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("result %q is not a number: %w", s, err)
		}
		*d = wireDouble(f)
	}
	return nil
}

// decodeResponse parses a 2xx body. Anything that is not a JSON object is
// reported as ErrMalformedResponse.
func decodeResponse(raw []byte) (wireResponse, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return wireResponse{}, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if trimmed[0] != '{' {
		return wireResponse{}, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}

	var resp wireResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return wireResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return resp, nil
}

// decodeError extracts what it can from a non-2xx body; unreadable bodies
// yield an empty wireError.
func decodeError(raw []byte) wireError {
	var e wireError
	_ = json.Unmarshal(bytes.TrimSpace(raw), &e)
	return e
}
