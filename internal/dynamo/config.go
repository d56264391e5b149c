package dynamo

import (
	"fmt"
	"math"
)

const (
	DefaultT0    = 0.0
	DefaultT1    = 10.0
	DefaultDt    = 0.01
	DefaultSigma = 0.1

	// MaxSteps bounds floor((t1-t0)/dt); the recorder preallocates every step.
	MaxSteps = 100_000_000
)

// Config is the time grid and noise intensity of a run. Build it with
// NewConfig; a Config returned without error is always valid.
type Config struct {
	T0    float64
	T1    float64
	Dt    float64
	Sigma float64
	Seed  int64
}

// NewConfig validates dt > 0, t1 > t0, sigma >= 0 and that the grid has at
// most MaxSteps steps.
func NewConfig(t0, t1, dt, sigma float64) (Config, error) {
	cfg := Config{T0: t0, T1: t1, Dt: dt, Sigma: sigma}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func DefaultConfig() Config {
	return Config{
		T0:    DefaultT0,
		T1:    DefaultT1,
		Dt:    DefaultDt,
		Sigma: DefaultSigma,
	}
}

// WithSeed returns a copy of c using seed for the default random source.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = seed
	return c
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return &ParameterError{Name: "dt", Value: c.Dt, Reason: "must be positive and finite"}
	}
	if math.IsNaN(c.T0) || math.IsInf(c.T0, 0) {
		return &ParameterError{Name: "t0", Value: c.T0, Reason: "must be finite"}
	}
	if !(c.T1 > c.T0) || math.IsInf(c.T1, 0) {
		return &ParameterError{Name: "t1", Value: c.T1, Reason: "must be finite and greater than t0"}
	}
	if !(c.Sigma >= 0) || math.IsInf(c.Sigma, 0) {
		return &ParameterError{Name: "sigma", Value: c.Sigma, Reason: "must be non-negative and finite"}
	}
	span := c.T1 - c.T0
	if math.IsInf(span, 0) {
		return &ParameterError{Name: "t1", Value: c.T1, Reason: "t1 - t0 overflows"}
	}
	if n := span / c.Dt; !(n <= MaxSteps) {
		return &ParameterError{Name: "dt", Value: c.Dt, Reason: fmt.Sprintf("gives %g steps, at most %d allowed", math.Floor(n), MaxSteps)}
	}
	return nil
}

// Steps is floor((t1 - t0) / dt).
func (c Config) Steps() int {
	return int(math.Floor((c.T1 - c.T0) / c.Dt))
}

// TimeAt returns t0 + i*dt.
func (c Config) TimeAt(i int) float64 {
	return c.T0 + float64(i)*c.Dt
}
