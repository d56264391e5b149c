package models

import (
	"math"
	"math/rand"

	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/jump"
)

// Duffing is a periodically forced Duffing oscillator with noise on the
// velocity and random velocity kicks N(0, Kick^2) arriving at rate Lambda.
// The forcing phase is carried as a third state component so the drift
// stays autonomous.
type Duffing struct {
	Alpha, Beta, Delta, Gamma, Omega float64
	Noise                            float64
	Lambda                           float64
	Kick                             float64
}

func NewDuffing() *Duffing {
	return &Duffing{
		Alpha: -1.0, Beta: 1.0, Delta: 0.3, Gamma: 0.5, Omega: 1.2,
		Noise:  1.0,
		Lambda: 0.2,
		Kick:   0.5,
	}
}

func (d *Duffing) Name() string { return "duffing" }

func (d *Duffing) DefaultState() dynamo.State { return dynamo.State{1.0, 0.0, 0.0} }

func (d *Duffing) DefaultConfig() dynamo.Config {
	return dynamo.Config{T0: 0, T1: 50, Dt: 0.01, Sigma: 0.1}
}

func (d *Duffing) System() dynamo.System {
	alpha, beta, delta, gamma, omega, noise := d.Alpha, d.Beta, d.Delta, d.Gamma, d.Omega, d.Noise
	return dynamo.System{
		Drift: func(s dynamo.State) dynamo.State {
			x, v, phi := s[0], s[1], s[2]
			return dynamo.State{v, -delta*v - alpha*x - beta*x*x*x + gamma*math.Cos(phi), omega}
		},
		Diffusion: func(s dynamo.State) dynamo.State {
			return dynamo.State{0, noise, 0}
		},
	}
}

func (d *Duffing) Trigger() (jump.Trigger, error) {
	kick := d.Kick
	in, err := jump.NewIntensity(d.Lambda, func(s dynamo.State, rng *rand.Rand) dynamo.State {
		return dynamo.State{0, kick * rng.NormFloat64(), 0}
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

// Energy ignores the forcing phase.
func (d *Duffing) Energy(s dynamo.State) float64 {
	x, v := s[0], s[1]
	return 0.5*v*v + 0.5*d.Alpha*x*x + 0.25*d.Beta*x*x*x*x
}

func (d *Duffing) GetParams() map[string]float64 {
	return map[string]float64{
		"alpha": d.Alpha, "beta": d.Beta, "delta": d.Delta, "gamma": d.Gamma, "omega": d.Omega,
		"noise": d.Noise, "lambda": d.Lambda, "kick": d.Kick,
	}
}

func (d *Duffing) SetParam(n string, v float64) error {
	switch n {
	case "alpha":
		d.Alpha = v
	case "beta":
		d.Beta = v
	case "delta":
		d.Delta = v
	case "gamma":
		d.Gamma = v
	case "omega":
		d.Omega = v
	case "noise":
		d.Noise = v
	case "lambda":
		d.Lambda = v
	case "kick":
		d.Kick = v
	default:
		return unknownParam(d.Name(), n)
	}
	return nil
}
