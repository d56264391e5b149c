package sim

import (
	"math/rand"

	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/integrators"
	"github.com/san-kum/sdesim/internal/jump"
)

// Simulator runs a fixed-step stochastic hybrid simulation. The per-step
// policy follows the trigger variant:
//
//   - *jump.Condition: jump map XOR Euler–Maruyama step (hybrid equation)
//   - *jump.Intensity: Euler–Maruyama step, then a Bernoulli jump on top
//   - nil: Euler–Maruyama step only
//
// A Simulator is not safe for concurrent use; see package ensemble for
// parallel batches.
type Simulator struct {
	sys        dynamo.System
	trigger    jump.Trigger
	integrator *integrators.EulerMaruyama
	y0         dynamo.State
	cfg        dynamo.Config
	rng        *rand.Rand
	metrics    []Metric
	observers  []Observer
}

type Option func(*Simulator)

// WithRand injects the random source. By default each simulator owns
// rand.New(rand.NewSource(cfg.Seed)).
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) { s.rng = r }
}

func WithMetric(m Metric) Option {
	return func(s *Simulator) { s.AddMetric(m) }
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.AddObserver(o) }
}

// New validates every parameter before returning; a nil trigger simulates
// the plain SDE.
func New(sys dynamo.System, trigger jump.Trigger, y0 dynamo.State, cfg dynamo.Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sys.Drift == nil {
		return nil, &dynamo.ParameterError{Name: "drift", Reason: "must not be nil"}
	}
	if sys.Diffusion == nil {
		return nil, &dynamo.ParameterError{Name: "diffusion", Reason: "must not be nil"}
	}
	if len(y0) == 0 {
		return nil, &dynamo.ParameterError{Name: "y0", Reason: "must have at least one component"}
	}
	if !y0.IsValid() {
		return nil, &dynamo.ParameterError{Name: "y0", Reason: "must be finite"}
	}

	switch trig := trigger.(type) {
	case *jump.Condition:
		if trig == nil {
			trigger = nil
		}
	case *jump.Intensity:
		if trig == nil {
			trigger = nil
		}
	}

	s := &Simulator{
		sys:        sys,
		trigger:    trigger,
		integrator: integrators.NewEulerMaruyama(),
		y0:         y0.Clone(),
		cfg:        cfg,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(cfg.Seed))
	}
	return s, nil
}

// NewHybrid builds a condition-triggered hybrid equation simulator.
func NewHybrid(sys dynamo.System, cond *jump.Condition, y0 dynamo.State, cfg dynamo.Config, opts ...Option) (*Simulator, error) {
	if cond == nil {
		return nil, &dynamo.ParameterError{Name: "trigger", Reason: "hybrid simulation needs a jump condition"}
	}
	return New(sys, cond, y0, cfg, opts...)
}

// NewJumpDiffusion builds an intensity-triggered jump-diffusion simulator.
func NewJumpDiffusion(sys dynamo.System, in *jump.Intensity, y0 dynamo.State, cfg dynamo.Config, opts ...Option) (*Simulator, error) {
	if in == nil {
		return nil, &dynamo.ParameterError{Name: "trigger", Reason: "jump diffusion needs a jump intensity"}
	}
	return New(sys, in, y0, cfg, opts...)
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Config() dynamo.Config { return s.cfg }
func (s *Simulator) Trigger() jump.Trigger { return s.trigger }

// Reseed restarts the random stream so the next Run is reproducible.
func (s *Simulator) Reseed(seed int64) {
	s.rng.Seed(seed)
}

// Run simulates Steps() steps from y0 and returns the full trajectory. Any
// failure aborts the run and no partial result is returned.
func (s *Simulator) Run() (*Result, error) {
	steps := s.cfg.Steps()
	rec := NewRecorder(steps, len(s.y0))

	for _, m := range s.metrics {
		m.Reset()
	}

	y := s.y0.Clone()
	t := s.cfg.T0
	rec.Record(t, y)
	s.notify(0, t, y, false)

	for i := 0; i < steps; i++ {
		next, jumped, err := s.step(y, t)
		if err != nil {
			return nil, &dynamo.SimulationError{Step: i, Time: t, State: y.Clone(), Wrapped: err}
		}

		if !next.IsValid() {
			return nil, &dynamo.SimulationError{Step: i, Time: t, State: y.Clone(), Wrapped: dynamo.ErrNumericalOverflow}
		}
		t = s.cfg.TimeAt(i + 1)
		y = next

		rec.Record(t, y)
		if jumped {
			rec.MarkJump()
		}
		s.notify(i+1, t, y, jumped)
	}

	result := &Result{
		Trajectory: rec.Trajectory(),
		Metrics:    make(map[string]float64, len(s.metrics)),
		StepsTaken: steps,
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func (s *Simulator) step(y dynamo.State, t float64) (dynamo.State, bool, error) {
	switch trig := s.trigger.(type) {
	case *jump.Condition:
		if trig.ShouldJump(y, t) {
			next, err := trig.Apply(y, t)
			return next, true, err
		}
		next, err := s.advance(y)
		return next, false, err
	case *jump.Intensity:
		next, err := s.advance(y)
		if err != nil {
			return nil, false, err
		}
		return trig.MaybeJump(next, s.cfg.Dt, s.rng)
	default:
		next, err := s.advance(y)
		return next, false, err
	}
}

func (s *Simulator) advance(y dynamo.State) (dynamo.State, error) {
	return s.integrator.Advance(y, s.cfg.Dt, s.sys.Drift, s.sys.Diffusion, s.cfg.Sigma, s.rng)
}

func (s *Simulator) notify(step int, t float64, y dynamo.State, jumped bool) {
	for _, m := range s.metrics {
		m.Observe(t, y, jumped)
	}
	for _, obs := range s.observers {
		obs.OnStep(step, t, y, jumped)
	}
}
