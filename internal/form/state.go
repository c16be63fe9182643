package form

import (
	"calcform/internal/calculator"
)

// Phase is where the form is in its submit cycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseResult     Phase = "result"
	PhaseError      Phase = "error"
)

// State is a snapshot of one form. HasResult and Error are never both set.
type State struct {
	Left      float64
	Right     float64
	Operation calculator.Operation

	// Result is meaningful only when HasResult is true.
	Result    float64
	HasResult bool
	Error     string
	InFlight  bool

	// Settled is the request the current Result or Error answers.
	Settled calculator.Request
	// Submissions counts accepted submits, dropped ones excluded.
	Submissions int
}

// Phase derives the state machine position from the snapshot.
func (s State) Phase() Phase {
	switch {
	case s.InFlight:
		return PhaseSubmitting
	case s.Error != "":
		return PhaseError
	case s.HasResult:
		return PhaseResult
	default:
		return PhaseIdle
	}
}

// Summary renders the settled calculation, e.g. "10 + 5 = 15". It is empty
// unless the form holds a result.
func (s State) Summary() string {
	if !s.HasResult || s.Error != "" {
		return ""
	}
	return s.Settled.Expression() + " = " + calculator.FormatNumber(s.Result)
}

func (s State) request() calculator.Request {
	return calculator.Request{
		Left:      s.Left,
		Right:     s.Right,
		Operation: s.Operation,
	}
}

// settle applies the outcome of req. Success replaces the result and clears
// the error; failure records the message and clears the result.
func (s *State) settle(req calculator.Request, result calculator.Result) {
	s.InFlight = false
	s.Settled = req

	if value, ok := result.Value(); ok {
		s.Result = value
		s.HasResult = true
		s.Error = ""
		return
	}

	s.Result = 0
	s.HasResult = false
	s.Error = result.Message()
}
