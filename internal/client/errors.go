package client

import (
	"errors"
	"fmt"
	"net/http"

	"calcform/internal/calculator"
)

// ErrMalformedResponse is wrapped by every failure to understand a 2xx body.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is a non-2xx reply from the endpoint.
type StatusError struct {
	StatusCode int
	// Code is the Connect error code, from the Connect-Protocol-Error-Code
	// header or the error body. It may be empty.
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = calculator.UnknownErrorMessage
	}
	if e.Code != "" {
		return fmt.Sprintf("HTTP status %d (%s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("HTTP status %d: %s", e.StatusCode, msg)
}

// requestFailedPrefix marks failures that happened before a usable reply
// arrived, separating them from server-reported business errors.
const requestFailedPrefix = "request failed: "

// classify maps the outcome of one round trip onto a calculator.Result.
func classify(resp wireResponse, err error) calculator.Result {
	var statusErr *StatusError

	switch {
	case err == nil:
		if resp.Error != "" {
			return calculator.Failure(calculator.KindBusiness, resp.Error)
		}
		return calculator.Success(float64(resp.Result))
	case errors.As(err, &statusErr):
		return calculator.Failure(calculator.KindProtocol, requestFailedPrefix+statusErr.Error())
	case errors.Is(err, ErrMalformedResponse):
		return calculator.Failure(calculator.KindMalformed, calculator.UnknownErrorMessage)
	default:
		return calculator.Failure(calculator.KindTransport, requestFailedPrefix+err.Error())
	}
}
