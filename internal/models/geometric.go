package models

import (
	"math/rand"

	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/jump"
)

// GeometricJumpDiffusion is dS = mu*S dt + vol*S dW with proportional jumps
// S -> S*(1 + JumpFraction) arriving at rate Lambda.
type GeometricJumpDiffusion struct {
	Mu           float64
	Vol          float64
	JumpFraction float64
	Lambda       float64
}

func NewGeometricJumpDiffusion() *GeometricJumpDiffusion {
	return &GeometricJumpDiffusion{
		Mu:           0.05,
		Vol:          0.1,
		JumpFraction: 0.5,
		Lambda:       0.1,
	}
}

func (g *GeometricJumpDiffusion) Name() string { return "geometric_jump_diffusion" }

func (g *GeometricJumpDiffusion) DefaultState() dynamo.State { return dynamo.State{1} }

func (g *GeometricJumpDiffusion) DefaultConfig() dynamo.Config {
	return dynamo.Config{T0: 0, T1: 10, Dt: 0.01, Sigma: 0.1}
}

func (g *GeometricJumpDiffusion) System() dynamo.System {
	mu, vol := g.Mu, g.Vol
	return dynamo.System{
		Drift: func(y dynamo.State) dynamo.State {
			return dynamo.State{mu * y[0]}
		},
		Diffusion: func(y dynamo.State) dynamo.State {
			return dynamo.State{vol * y[0]}
		},
	}
}

func (g *GeometricJumpDiffusion) Trigger() (jump.Trigger, error) {
	k := g.JumpFraction
	in, err := jump.NewIntensity(g.Lambda, func(y dynamo.State, _ *rand.Rand) dynamo.State {
		return dynamo.State{k * y[0]}
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (g *GeometricJumpDiffusion) GetParams() map[string]float64 {
	return map[string]float64{
		"mu":            g.Mu,
		"vol":           g.Vol,
		"jump_fraction": g.JumpFraction,
		"lambda":        g.Lambda,
	}
}

func (g *GeometricJumpDiffusion) SetParam(name string, value float64) error {
	switch name {
	case "mu":
		g.Mu = value
	case "vol":
		g.Vol = value
	case "jump_fraction":
		g.JumpFraction = value
	case "lambda":
		g.Lambda = value
	default:
		return unknownParam(g.Name(), name)
	}
	return nil
}
