package integrators

import "github.com/san-kum/sdesim/internal/dynamo"

// Euler is the deterministic part of the Euler–Maruyama step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

// Step returns y + drift(y)*dt.
func (e *Euler) Step(y dynamo.State, dt float64, drift dynamo.DriftFn) (dynamo.State, error) {
	dy := drift(y)
	if err := dynamo.CheckShape("drift", len(y), dy); err != nil {
		return nil, err
	}
	result := make(dynamo.State, len(y))
	for i := range y {
		result[i] = y[i] + dt*dy[i]
	}
	return result, nil
}
