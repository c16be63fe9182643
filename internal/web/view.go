package web

import (
	"fmt"
	"math"

	"calcform/internal/calculator"
	"calcform/internal/form"
)

// FormView is the JSON shape of a form's state. Result is omitted unless the
// last call succeeded with a finite value; ResultText carries any value.
type FormView struct {
	LeftOperand    float64  `json:"left_operand"`
	RightOperand   float64  `json:"right_operand"`
	Operation      string   `json:"operation"`
	OperationValue int32    `json:"operation_value"`
	Phase          string   `json:"phase"`
	InFlight       bool     `json:"in_flight"`
	Result         *float64 `json:"result,omitempty"`
	ResultText     string   `json:"result_text,omitempty"`
	Error          string   `json:"error,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	Submissions    int      `json:"submissions"`
}

// NewFormView converts a controller snapshot.
func NewFormView(s form.State) FormView {
	v := FormView{
		LeftOperand:    s.Left,
		RightOperand:   s.Right,
		Operation:      s.Operation.String(),
		OperationValue: int32(s.Operation),
		Phase:          string(s.Phase()),
		InFlight:       s.InFlight,
		Error:          s.Error,
		Summary:        s.Summary(),
		Submissions:    s.Submissions,
	}
	if s.HasResult {
		v.ResultText = calculator.FormatNumber(s.Result)
		if !math.IsNaN(s.Result) && !math.IsInf(s.Result, 0) {
			result := s.Result
			v.Result = &result
		}
	}
	return v
}

// submitRequest is the body of POST /api/form/submit. Omitted fields keep the
// value already on the form.
type submitRequest struct {
	LeftOperand  *float64             `json:"left_operand"`
	RightOperand *float64             `json:"right_operand"`
	Operation    *calculator.Operation `json:"operation"`
}

// edits validates the body and converts it to form edits. Operation tags
// outside the closed set are rejected.
func (req submitRequest) edits() ([]form.Edit, error) {
	var edits []form.Edit
	if req.LeftOperand != nil {
		edits = append(edits, form.LeftOperand(*req.LeftOperand))
	}
	if req.RightOperand != nil {
		edits = append(edits, form.RightOperand(*req.RightOperand))
	}
	if req.Operation != nil {
		if !req.Operation.Valid() {
			return nil, fmt.Errorf("unknown operation %s", req.Operation)
		}
		edits = append(edits, form.SelectOperation(*req.Operation))
	}
	return edits, nil
}

type operationOption struct {
	Value    int32
	Label    string
	Selected bool
}

// pageData feeds templates/index.html.
type pageData struct {
	State      form.State
	Left       string
	Right      string
	Operations []operationOption
	Summary    string
	Notice     string
}

var operationLabels = map[calculator.Operation]string{
	calculator.OperationAdd:      "Add (+)",
	calculator.OperationSubtract: "Subtract (-)",
	calculator.OperationMultiply: "Multiply (×)",
	calculator.OperationDivide:   "Divide (÷)",
}

func newPageData(s form.State, notice string) pageData {
	ops := make([]operationOption, 0, len(calculator.Operations))
	for _, op := range calculator.Operations {
		ops = append(ops, operationOption{
			Value:    int32(op),
			Label:    operationLabels[op],
			Selected: op == s.Operation,
		})
	}
	return pageData{
		State:      s,
		Left:       calculator.FormatNumber(s.Left),
		Right:      calculator.FormatNumber(s.Right),
		Operations: ops,
		Summary:    s.Summary(),
		Notice:     notice,
	}
}
