package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/sdesim/internal/config"
	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/metrics"
	"github.com/san-kum/sdesim/internal/models"
	"github.com/san-kum/sdesim/internal/sim"
)

// StabilityThreshold is the component magnitude counted as a violation by
// the default stability metric.
const StabilityThreshold = 1e3

type Registry struct {
	models map[string]func() models.Model
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func() models.Model),
	}

	r.Register("bouncing_oscillator", func() models.Model { return models.NewBouncingOscillator() })
	r.Register("geometric_jump_diffusion", func() models.Model { return models.NewGeometricJumpDiffusion() })
	r.Register("normal_jump_diffusion", func() models.Model { return models.NewNormalJumpDiffusion() })
	r.Register("ornstein_uhlenbeck", func() models.Model { return models.NewOrnsteinUhlenbeck() })
	r.Register("double_well", func() models.Model { return models.NewDoubleWell() })
	r.Register("duffing", func() models.Model { return models.NewDuffing() })

	return r
}

func (r *Registry) Register(name string, fn func() models.Model) {
	r.models[name] = fn
}

func (r *Registry) GetModel(name string) (models.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultConfig returns a run configuration matching the model's usual
// time grid, noise intensity and initial state.
func (r *Registry) DefaultConfig(name string) (*config.Config, error) {
	m, err := r.GetModel(name)
	if err != nil {
		return nil, err
	}
	mc := m.DefaultConfig()
	cfg := config.DefaultConfig()
	cfg.Model = name
	cfg.T0, cfg.T1, cfg.Dt, cfg.Sigma = mc.T0, mc.T1, mc.Dt, mc.Sigma
	cfg.InitState = m.DefaultState()
	return cfg, nil
}

// DefaultMetrics returns fresh metric instances; never share them between
// concurrently running simulators.
func (r *Registry) DefaultMetrics(m models.Model) []sim.Metric {
	out := []sim.Metric{
		metrics.NewJumpRate(),
		metrics.NewStability(StabilityThreshold),
	}
	if h, ok := m.(dynamo.Hamiltonian); ok {
		out = append(out, metrics.NewEnergy(h), metrics.NewEnergyDrift(h), metrics.NewJumpEnergy(h))
	}
	return out
}
