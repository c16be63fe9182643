// Package form holds the state of one calculation form and drives the single
// RPC a submit triggers.
package form

import (
	"context"
	"errors"
	"sync"

	"calcform/internal/calculator"
)

// ErrSubmitInFlight is returned by Submit while an earlier submit is still
// outstanding. The new submit is dropped; the outstanding one is untouched.
var ErrSubmitInFlight = errors.New("a calculation is already in flight")

// Calculator is the one capability the form needs from the RPC client.
// Implementations must not return until the call has settled.
type Calculator interface {
	Calculate(ctx context.Context, req calculator.Request) calculator.Result
}

// Renderer is called with a snapshot after every edit and state transition.
type Renderer func(State)

// Controller owns the State of one mounted form. Edits and submits may arrive
// from several goroutines; the lock is never held across the RPC.
type Controller struct {
	calc   Calculator
	render Renderer

	mu    sync.Mutex
	state State
}

// Edit changes one field of the form state.
type Edit func(*State)

// LeftOperand sets the left operand.
func LeftOperand(v float64) Edit {
	return func(s *State) { s.Left = v }
}

// RightOperand sets the right operand.
func RightOperand(v float64) Edit {
	return func(s *State) { s.Right = v }
}

// SelectOperation sets the operation as given, UNSPECIFIED included.
func SelectOperation(op calculator.Operation) Edit {
	return func(s *State) { s.Operation = op }
}

// Option configures a Controller.
type Option func(*Controller)

// WithRenderer registers r to observe every transition.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) {
		c.render = r
	}
}

// WithInitialOperation preselects op. Values outside the closed set are ignored.
func WithInitialOperation(op calculator.Operation) Option {
	return func(c *Controller) {
		if op.Valid() {
			c.state.Operation = op
		}
	}
}

// NewController mounts a form backed by calc. The operation starts as ADD,
// like the selector's first option.
func NewController(calc Calculator, opts ...Option) *Controller {
	c := &Controller{
		calc:  calc,
		state: State{Operation: calculator.OperationAdd},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current form state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetLeftOperand records an edit of the left operand.
func (c *Controller) SetLeftOperand(v float64) {
	c.update(LeftOperand(v))
}

// SetRightOperand records an edit of the right operand.
func (c *Controller) SetRightOperand(v float64) {
	c.update(RightOperand(v))
}

// SetOperation records a new selection. The operation is stored as given,
// UNSPECIFIED included; the server decides what it accepts.
func (c *Controller) SetOperation(op calculator.Operation) {
	c.update(SelectOperation(op))
}

// Submit applies edits, sends the resulting operands and operation and blocks
// until the call settles. It returns ErrSubmitInFlight, without applying the
// edits or calling the calculator, when another submit is outstanding. Outcome
// details live in State; the returned State is the one rendered after
// settling.
func (c *Controller) Submit(ctx context.Context, edits ...Edit) (State, error) {
	c.mu.Lock()
	if c.state.InFlight {
		c.mu.Unlock()
		return State{}, ErrSubmitInFlight
	}
	for _, edit := range edits {
		edit(&c.state)
	}
	req := c.state.request()
	c.state.InFlight = true
	c.state.Error = ""
	c.state.Submissions++
	submitting := c.state
	c.mu.Unlock()

	c.emit(submitting)

	result := c.calc.Calculate(ctx, req)

	c.mu.Lock()
	c.state.settle(req, result)
	settled := c.state
	c.mu.Unlock()

	c.emit(settled)
	return settled, nil
}

func (c *Controller) update(edit Edit) {
	c.mu.Lock()
	edit(&c.state)
	snapshot := c.state
	c.mu.Unlock()

	c.emit(snapshot)
}

func (c *Controller) emit(s State) {
	if c.render != nil {
		c.render(s)
	}
}
