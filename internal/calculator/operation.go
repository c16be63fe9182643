package calculator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Operation is the arithmetic operation tag carried on the wire as a number.
// The zero value is OperationUnspecified, meaning nothing was selected.
type Operation int32

const (
	OperationUnspecified Operation = 0
	OperationAdd         Operation = 1
	OperationSubtract    Operation = 2
	OperationMultiply    Operation = 3
	OperationDivide      Operation = 4
)

// Operations lists the selectable operations in display order.
var Operations = []Operation{
	OperationAdd,
	OperationSubtract,
	OperationMultiply,
	OperationDivide,
}

var operationNames = map[Operation]string{
	OperationUnspecified: "OPERATION_UNSPECIFIED",
	OperationAdd:         "OPERATION_ADD",
	OperationSubtract:    "OPERATION_SUBTRACT",
	OperationMultiply:    "OPERATION_MULTIPLY",
	OperationDivide:      "OPERATION_DIVIDE",
}

var operationSymbols = map[Operation]string{
	OperationAdd:      "+",
	OperationSubtract: "-",
	OperationMultiply: "×",
	OperationDivide:   "÷",
}

// Valid reports whether op is one of the five known tags.
func (op Operation) Valid() bool {
	_, ok := operationNames[op]
	return ok
}

// String returns the wire enum name, e.g. "OPERATION_ADD".
func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OPERATION(%d)", int32(op))
}

// Symbol returns the display symbol, or "" for UNSPECIFIED and unknown values.
func (op Operation) Symbol() string {
	return operationSymbols[op]
}

// ParseOperation accepts the numeric tag ("1"), the wire name ("OPERATION_ADD"),
// the short name ("add") or the symbol ("+"). Anything outside the closed set is
// rejected.
func ParseOperation(s string) (Operation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OperationUnspecified, fmt.Errorf("parse operation: empty value")
	}

	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		op := Operation(n)
		if !op.Valid() {
			return OperationUnspecified, fmt.Errorf("parse operation: unknown tag %d", n)
		}
		return op, nil
	}

	name := strings.ToUpper(s)
	name = strings.TrimPrefix(name, "OPERATION_")
	for op, full := range operationNames {
		if strings.TrimPrefix(full, "OPERATION_") == name {
			return op, nil
		}
	}

	switch s {
	case "+":
		return OperationAdd, nil
	case "-":
		return OperationSubtract, nil
	case "*", "×", "x":
		return OperationMultiply, nil
	case "/", "÷":
		return OperationDivide, nil
	}

	return OperationUnspecified, fmt.Errorf("parse operation: unknown operation %q", s)
}

// UnmarshalJSON accepts either the numeric tag or an enum name, the same two
// forms a Connect JSON peer may send. Numbers are kept as-is so the receiver can
// reject tags outside the closed set.
func (op *Operation) UnmarshalJSON(data []byte) error {
	var n int32
	if err := json.Unmarshal(data, &n); err == nil {
		*op = Operation(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("operation must be a number or a name: %w", err)
	}
	parsed, err := ParseOperation(s)
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}
