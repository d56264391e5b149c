package models

import (
	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/jump"
)

// OrnsteinUhlenbeck is dX = theta*(mean - X) dt + vol dW. The stationary
// variance is (vol*sigma)^2 / (2*theta).
type OrnsteinUhlenbeck struct {
	Theta float64
	Mean  float64
	Vol   float64
}

func NewOrnsteinUhlenbeck() *OrnsteinUhlenbeck {
	return &OrnsteinUhlenbeck{Theta: 1, Mean: 0, Vol: 1}
}

func (o *OrnsteinUhlenbeck) Name() string { return "ornstein_uhlenbeck" }

func (o *OrnsteinUhlenbeck) DefaultState() dynamo.State { return dynamo.State{1} }

func (o *OrnsteinUhlenbeck) DefaultConfig() dynamo.Config {
	return dynamo.Config{T0: 0, T1: 10, Dt: 0.01, Sigma: 0.5}
}

func (o *OrnsteinUhlenbeck) System() dynamo.System {
	theta, mean, vol := o.Theta, o.Mean, o.Vol
	return dynamo.System{
		Drift:     func(y dynamo.State) dynamo.State { return dynamo.State{theta * (mean - y[0])} },
		Diffusion: func(y dynamo.State) dynamo.State { return dynamo.State{vol} },
	}
}

func (o *OrnsteinUhlenbeck) Trigger() (jump.Trigger, error) { return nil, nil }

func (o *OrnsteinUhlenbeck) GetParams() map[string]float64 {
	return map[string]float64{"theta": o.Theta, "mean": o.Mean, "vol": o.Vol}
}

func (o *OrnsteinUhlenbeck) SetParam(name string, value float64) error {
	switch name {
	case "theta":
		o.Theta = value
	case "mean":
		o.Mean = value
	case "vol":
		o.Vol = value
	default:
		return unknownParam(o.Name(), name)
	}
	return nil
}
