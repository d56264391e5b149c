package dynamo

import (
	"math"
	"math/rand"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Add returns s + other. Both must have the same length.
func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] + other[i]
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] - other[i]
	}
	return result
}

// Equal reports exact elementwise equality.
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// DriftFn is the deterministic rate of change f(y).
type DriftFn func(y State) State

// DiffusionFn returns the elementwise noise scaling g(y).
type DiffusionFn func(y State) State

// JumpCondition decides whether a condition-triggered jump fires at (y, t).
type JumpCondition func(y State, t float64) bool

// JumpMap replaces the state when a condition-triggered jump fires.
type JumpMap func(y State, t float64) State

// JumpSizeFn returns the increment added by an intensity-triggered jump.
// Random sizes must be drawn from rng so runs stay reproducible.
type JumpSizeFn func(y State, rng *rand.Rand) State

// System is the continuous part of a stochastic differential equation.
type System struct {
	Drift     DriftFn
	Diffusion DiffusionFn
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Hamiltonian is implemented by systems with a natural energy function.
type Hamiltonian interface {
	Energy(y State) float64
}
