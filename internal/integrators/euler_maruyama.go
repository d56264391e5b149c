package integrators

import (
	"math"
	"math/rand"

	"github.com/san-kum/sdesim/internal/dynamo"
)

// EulerMaruyama advances dY = f(Y)dt + g(Y)dW by one fixed step:
//
//	y' = y + f(y)*dt + g(y) * (sigma * sqrt(dt) * xi),  xi ~ N(0, I)
//
// The noise variance per step is sigma^2 * g^2 * dt. It holds no state, so one
// value can be shared by any number of simulators.
type EulerMaruyama struct {
	euler Euler
}

func NewEulerMaruyama() *EulerMaruyama {
	return &EulerMaruyama{}
}

// Advance performs one step. With sigma == 0 no normal variates are drawn
// from rng and the result is the plain Euler step.
func (em *EulerMaruyama) Advance(y dynamo.State, dt float64, drift dynamo.DriftFn, diffusion dynamo.DiffusionFn, sigma float64, rng *rand.Rand) (dynamo.State, error) {
	result, err := em.euler.Step(y, dt, drift)
	if err != nil {
		return nil, err
	}

	g := diffusion(y)
	if err := dynamo.CheckShape("diffusion", len(y), g); err != nil {
		return nil, err
	}

	if sigma == 0 {
		return result, nil
	}

	scale := sigma * math.Sqrt(dt)
	for i := range result {
		xi := rng.NormFloat64()
		result[i] += g[i] * scale * xi
	}
	return result, nil
}
