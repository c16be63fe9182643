package calculator

import (
	"strconv"
)

// Request is one calculation as the form submits it. Arithmetic validity (for
// example division by zero) is decided by the server, not here.
type Request struct {
	Left      float64
	Right     float64
	Operation Operation
}

// Expression renders the request as "10 + 5". An unselected operation renders
// as "?".
func (r Request) Expression() string {
	symbol := r.Operation.Symbol()
	if symbol == "" {
		symbol = "?"
	}
	return FormatNumber(r.Left) + " " + symbol + " " + FormatNumber(r.Right)
}

// FormatNumber prints a float the way a user typed it: no trailing zeros and no
// exponent for ordinary magnitudes.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
