package models

import (
	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/jump"
)

// BouncingOscillator is a unit harmonic oscillator with noise on the
// velocity whose velocity is reversed (scaled by Restitution) once per
// Period.
type BouncingOscillator struct {
	Omega       float64
	Noise       float64
	Period      float64
	Tolerance   float64
	Restitution float64
}

func NewBouncingOscillator() *BouncingOscillator {
	return &BouncingOscillator{
		Omega:       1.0,
		Noise:       0.1,
		Period:      1.0,
		Tolerance:   1e-2,
		Restitution: 1.0,
	}
}

func (b *BouncingOscillator) Name() string { return "bouncing_oscillator" }

func (b *BouncingOscillator) DefaultState() dynamo.State { return dynamo.State{1, 0} }

func (b *BouncingOscillator) DefaultConfig() dynamo.Config {
	return dynamo.Config{T0: 0, T1: 10, Dt: 0.01, Sigma: 0.1}
}

func (b *BouncingOscillator) System() dynamo.System {
	w2 := b.Omega * b.Omega
	noise := b.Noise
	return dynamo.System{
		Drift: func(y dynamo.State) dynamo.State {
			return dynamo.State{y[1], -w2 * y[0]}
		},
		Diffusion: func(y dynamo.State) dynamo.State {
			return dynamo.State{0, noise}
		},
	}
}

func (b *BouncingOscillator) Trigger() (jump.Trigger, error) {
	e := b.Restitution
	cond, err := jump.NewCondition(jump.Periodic(b.Period, b.Tolerance), func(y dynamo.State, t float64) dynamo.State {
		return dynamo.State{y[0], -e * y[1]}
	})
	if err != nil {
		return nil, err
	}
	return cond, nil
}

func (b *BouncingOscillator) Energy(y dynamo.State) float64 {
	return 0.5 * (b.Omega*b.Omega*y[0]*y[0] + y[1]*y[1])
}

func (b *BouncingOscillator) GetParams() map[string]float64 {
	return map[string]float64{
		"omega":       b.Omega,
		"noise":       b.Noise,
		"period":      b.Period,
		"tolerance":   b.Tolerance,
		"restitution": b.Restitution,
	}
}

func (b *BouncingOscillator) SetParam(name string, value float64) error {
	switch name {
	case "omega":
		b.Omega = value
	case "noise":
		b.Noise = value
	case "period":
		b.Period = value
	case "tolerance":
		b.Tolerance = value
	case "restitution":
		b.Restitution = value
	default:
		return unknownParam(b.Name(), name)
	}
	return nil
}
