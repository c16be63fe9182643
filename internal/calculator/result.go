package calculator

import "fmt"

// Kind classifies why a calculation failed.
type Kind int

const (
	// KindNone marks a successful result.
	KindNone Kind = iota
	// KindTransport covers connection refused, DNS and timeout failures.
	KindTransport
	// KindProtocol is a non-success status returned by the endpoint.
	KindProtocol
	// KindBusiness is a well-formed reply that reports an invalid calculation.
	KindBusiness
	// KindMalformed is a reply whose body could not be understood.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindBusiness:
		return "business"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of one calculation: either a value or a failure
// message, never both. Build it with Success or Failure.
type Result struct {
	value   float64
	message string
	kind    Kind
}

// Success returns a result carrying v.
func Success(v float64) Result {
	return Result{value: v}
}

// Failure returns a failed result. An empty message is replaced so that a
// failure is always distinguishable from a success.
func Failure(kind Kind, message string) Result {
	if kind == KindNone {
		kind = KindMalformed
	}
	if message == "" {
		message = UnknownErrorMessage
	}
	return Result{message: message, kind: kind}
}

// UnknownErrorMessage is reported when the server reply carries no usable
// information.
const UnknownErrorMessage = "unknown error"

// OK reports whether the calculation succeeded.
func (r Result) OK() bool { return r.kind == KindNone }

// Value returns the computed value and true on success, or 0 and false.
func (r Result) Value() (float64, bool) {
	if !r.OK() {
		return 0, false
	}
	return r.value, true
}

// Message returns the failure message, empty on success.
func (r Result) Message() string { return r.message }

// Kind returns the failure kind, KindNone on success.
func (r Result) Kind() Kind { return r.kind }

// Reply is the {result, error?} shape handed to UI code.
type Reply struct {
	Result float64 `json:"result"`
	Error  string  `json:"error,omitempty"`
}

// Reply projects r onto the local API shape. Failures report a zero result.
func (r Result) Reply() Reply {
	if !r.OK() {
		return Reply{Error: r.message}
	}
	return Reply{Result: r.value}
}
