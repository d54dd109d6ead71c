package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates a state or output with NaN or Inf entries.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a run that cannot take a single step.
	ErrInvalidConfig = errors.New("sim: invalid configuration")
)

// StepError wraps a failure with the step at which it happened.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
