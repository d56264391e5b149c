package models

import (
	"math"

	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/jump"
)

// DoubleWell models a damped particle in a bistable potential driven by
// thermal noise on the velocity. Noise lets it hop between the wells at
// x = ±sqrt(B).
type DoubleWell struct {
	A, B, Mass, Damping, Temperature float64
}

func NewDoubleWell() *DoubleWell {
	return &DoubleWell{1.0, 1.0, 1.0, 0.1, 1.0}
}

func (d *DoubleWell) Name() string { return "double_well" }

func (d *DoubleWell) DefaultState() dynamo.State { return dynamo.State{math.Sqrt(d.B) + 0.1, 0} }

func (d *DoubleWell) DefaultConfig() dynamo.Config {
	return dynamo.Config{T0: 0, T1: 50, Dt: 0.01, Sigma: 0.5}
}

func (d *DoubleWell) System() dynamo.System {
	a, b, m, damping := d.A, d.B, d.Mass, d.Damping
	noise := math.Sqrt(2*damping*d.Temperature) / m
	return dynamo.System{
		Drift: func(s dynamo.State) dynamo.State {
			x, v := s[0], s[1]
			return dynamo.State{v, (-4*a*x*(x*x-b) - damping*v) / m}
		},
		Diffusion: func(s dynamo.State) dynamo.State {
			return dynamo.State{0, noise}
		},
	}
}

func (d *DoubleWell) Trigger() (jump.Trigger, error) { return nil, nil }

func (d *DoubleWell) Energy(s dynamo.State) float64 {
	x, v := s[0], s[1]
	return 0.5*d.Mass*v*v + d.A*math.Pow(x*x-d.B, 2)
}

func (d *DoubleWell) GetParams() map[string]float64 {
	return map[string]float64{"A": d.A, "B": d.B, "mass": d.Mass, "damping": d.Damping, "temperature": d.Temperature}
}

func (d *DoubleWell) SetParam(n string, v float64) error {
	switch n {
	case "A":
		d.A = v
	case "B":
		d.B = v
	case "mass":
		d.Mass = v
	case "damping":
		d.Damping = v
	case "temperature":
		d.Temperature = v
	default:
		return unknownParam(d.Name(), n)
	}
	return nil
}
