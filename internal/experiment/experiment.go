// Package experiment turns a run configuration into simulators.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/san-kum/sdesim/internal/config"
	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/ensemble"
	"github.com/san-kum/sdesim/internal/jump"
	"github.com/san-kum/sdesim/internal/models"
	"github.com/san-kum/sdesim/internal/sim"
)

// MaxJumpProbability is the per-step jump probability above which the
// Bernoulli arrival approximation is reported as inaccurate.
const MaxJumpProbability = 0.1

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *slog.Logger
	model    models.Model
	simCfg   dynamo.Config
}

func New(cfg *config.Config, registry *Registry, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{
		cfg:      cfg.Clone(),
		registry: registry,
		logger:   logger.With("model", cfg.Model),
	}
}

// Setup resolves the model, applies parameter overrides and validates the
// configuration. It must be called before Run or RunEnsemble.
func (e *Experiment) Setup() error {
	m, err := e.registry.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(e.cfg.Params))
	for name := range e.cfg.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := m.SetParam(name, e.cfg.Params[name]); err != nil {
			return err
		}
	}

	simCfg, err := e.cfg.SimulationConfig()
	if err != nil {
		return err
	}

	// model callables index the state directly, so a mismatched init_state
	// must be rejected here rather than inside a drift call
	if want := len(m.DefaultState()); len(e.cfg.InitState) > 0 && len(e.cfg.InitState) != want {
		return &dynamo.ShapeError{Source: "init_state", Want: want, Got: len(e.cfg.InitState)}
	}

	// surface trigger errors (e.g. negative lambda) before any run starts
	trig, err := m.Trigger()
	if err != nil {
		return err
	}
	if in, ok := trig.(*jump.Intensity); ok {
		if p := in.Probability(simCfg.Dt); p > MaxJumpProbability {
			e.logger.Warn("jump probability per step is large; arrivals are undercounted",
				"lambda", in.Rate(), "dt", simCfg.Dt, "probability", p)
		}
	}

	e.model = m
	e.simCfg = simCfg
	return nil
}

func (e *Experiment) Model() models.Model { return e.model }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Build returns a fresh simulator with its own metrics and a random source
// seeded with seed.
func (e *Experiment) Build(seed int64) (*sim.Simulator, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	trig, err := e.model.Trigger()
	if err != nil {
		return nil, err
	}

	y0 := e.model.DefaultState()
	if len(e.cfg.InitState) > 0 {
		y0 = dynamo.State(e.cfg.InitState).Clone()
	}

	opts := make([]sim.Option, 0, 4)
	for _, m := range e.registry.DefaultMetrics(e.model) {
		opts = append(opts, sim.WithMetric(m))
	}
	return sim.New(e.model.System(), trig, y0, e.simCfg.WithSeed(seed), opts...)
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := e.Build(e.cfg.Seed)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("run started", "steps", e.simCfg.Steps(), "dt", e.simCfg.Dt, "sigma", e.simCfg.Sigma, "seed", e.cfg.Seed)
	start := time.Now()
	res, err := s.Run()
	if err != nil {
		e.logger.Error("run failed", "error", err)
		return nil, err
	}
	e.logger.Info("run finished", "points", res.Trajectory.Len(), "jumps", res.JumpCount(), "elapsed", time.Since(start))
	return res, nil
}

// RunEnsemble runs cfg.Ensemble.Runs independent copies seeded with
// Seed, Seed+1, ...
func (e *Experiment) RunEnsemble(ctx context.Context) ([]*sim.Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	ens := ensemble.New(e.Build, e.cfg.Ensemble.Runs, e.cfg.Seed)
	ens.SetWorkers(e.cfg.Ensemble.Workers)

	e.logger.Debug("ensemble started", "runs", e.cfg.Ensemble.Runs, "steps", e.simCfg.Steps())
	start := time.Now()
	results, err := ens.Run(ctx)
	if err != nil {
		e.logger.Error("ensemble failed", "error", err)
		return nil, err
	}
	e.logger.Info("ensemble finished", "runs", len(results), "elapsed", time.Since(start))
	return results, nil
}
