package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a construction parameter outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrShape indicates a drift, diffusion or jump output whose dimension
	// disagrees with the state.
	ErrShape = errors.New("dynamo: dimension mismatch between state and function output")

	// ErrNumericalOverflow indicates the state became NaN or Inf.
	ErrNumericalOverflow = errors.New("dynamo: state is no longer finite")
)

// ParameterError describes which parameter was rejected.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("dynamo: invalid parameter %s=%g: %s", e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// ShapeError reports the function whose output had the wrong length.
type ShapeError struct {
	Source string
	Want   int
	Got    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("dynamo: %s returned dimension %d, state has %d", e.Source, e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error {
	return ErrShape
}

// CheckShape returns a *ShapeError when out does not match the state dimension.
func CheckShape(source string, want int, out State) error {
	if len(out) != want {
		return &ShapeError{Source: source, Want: want, Got: len(out)}
	}
	return nil
}

// SimulationError wraps an error with simulation context. Step is the index
// i of the failing transition from point i to i+1, Time is its start time
// t0 + i*dt and State is the last finite state, the one at point i.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
