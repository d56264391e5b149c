package models

import (
	"math/rand"

	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/jump"
)

// NormalJumpDiffusion is drifted Brownian motion with N(JumpMean, JumpStd^2)
// jumps arriving at rate Lambda. Jump sizes come from the simulator's random
// source.
type NormalJumpDiffusion struct {
	Drift    float64
	Vol      float64
	Lambda   float64
	JumpMean float64
	JumpStd  float64
}

func NewNormalJumpDiffusion() *NormalJumpDiffusion {
	return &NormalJumpDiffusion{
		Drift:    0,
		Vol:      1,
		Lambda:   1,
		JumpMean: 0,
		JumpStd:  0.5,
	}
}

func (n *NormalJumpDiffusion) Name() string { return "normal_jump_diffusion" }

func (n *NormalJumpDiffusion) DefaultState() dynamo.State { return dynamo.State{0} }

func (n *NormalJumpDiffusion) DefaultConfig() dynamo.Config {
	return dynamo.Config{T0: 0, T1: 10, Dt: 0.01, Sigma: 1}
}

func (n *NormalJumpDiffusion) System() dynamo.System {
	mu, vol := n.Drift, n.Vol
	return dynamo.System{
		Drift:     func(y dynamo.State) dynamo.State { return dynamo.State{mu} },
		Diffusion: func(y dynamo.State) dynamo.State { return dynamo.State{vol} },
	}
}

func (n *NormalJumpDiffusion) Trigger() (jump.Trigger, error) {
	m, s := n.JumpMean, n.JumpStd
	in, err := jump.NewIntensity(n.Lambda, func(y dynamo.State, rng *rand.Rand) dynamo.State {
		return dynamo.State{m + s*rng.NormFloat64()}
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (n *NormalJumpDiffusion) GetParams() map[string]float64 {
	return map[string]float64{
		"drift":     n.Drift,
		"vol":       n.Vol,
		"lambda":    n.Lambda,
		"jump_mean": n.JumpMean,
		"jump_std":  n.JumpStd,
	}
}

func (n *NormalJumpDiffusion) SetParam(name string, value float64) error {
	switch name {
	case "drift":
		n.Drift = value
	case "vol":
		n.Vol = value
	case "lambda":
		n.Lambda = value
	case "jump_mean":
		n.JumpMean = value
	case "jump_std":
		n.JumpStd = value
	default:
		return unknownParam(n.Name(), name)
	}
	return nil
}
