// Package automation runs scripted batches: scenarios loaded from yaml and
// linear sweeps over one model parameter.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/sdesim/internal/config"
	"github.com/san-kum/sdesim/internal/ensemble"
	"github.com/san-kum/sdesim/internal/experiment"
	"github.com/san-kum/sdesim/internal/metrics"
	"github.com/san-kum/sdesim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run configuration. Preset, when set, is loaded first
// and the remaining fields override it.
type ScenarioStep struct {
	Name          string `yaml:"name"`
	Preset        string `yaml:"preset,omitempty"`
	config.Config `yaml:",inline"`
}

// StepResult summarizes one scenario step. Ensemble steps (runs > 1) report
// cross-run moments at the final time.
type StepResult struct {
	Name    string
	Model   string
	Runs    int
	Final   []float64
	Var     []float64
	Metrics map[string]float64
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

func (s *ScenarioStep) resolve(registry *experiment.Registry) (*config.Config, error) {
	base, err := registry.DefaultConfig(s.Model)
	if err != nil {
		return nil, err
	}
	if s.Preset != "" {
		base = config.GetPreset(s.Model, s.Preset)
		if base == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}

	if s.T1 != 0 {
		base.T0, base.T1 = s.T0, s.T1
	}
	if s.Dt != 0 {
		base.Dt = s.Dt
	}
	if s.Sigma != 0 {
		base.Sigma = s.Sigma
	}
	if s.Seed != 0 {
		base.Seed = s.Seed
	}
	if len(s.InitState) > 0 {
		base.InitState = append([]float64(nil), s.InitState...)
	}
	for k, v := range s.Params {
		base.SetParam(k, v)
	}
	base.Ensemble.Runs = max(s.Ensemble.Runs, 1)
	base.Ensemble.Workers = s.Ensemble.Workers
	return base, nil
}

// RunScenario executes all steps in order and stops at the first failure,
// returning the results collected so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *slog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		logger.Info("scenario step", "scenario", scenario.Name, "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := step.resolve(registry)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}

		res, err := runConfig(ctx, cfg, registry, logger)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		res.Name = name
		results = append(results, *res)
	}

	return results, nil
}

func runConfig(ctx context.Context, cfg *config.Config, registry *experiment.Registry, logger *slog.Logger) (*StepResult, error) {
	exp := experiment.New(cfg, registry, logger)
	if err := exp.Setup(); err != nil {
		return nil, err
	}

	var (
		results []*sim.Result
		err     error
	)
	if cfg.Ensemble.Runs > 1 {
		results, err = exp.RunEnsemble(ctx)
	} else {
		var r *sim.Result
		r, err = exp.Run(ctx)
		results = []*sim.Result{r}
	}
	if err != nil {
		return nil, err
	}

	trs := ensemble.Trajectories(results)
	out := &StepResult{
		Model:   cfg.Model,
		Runs:    len(results),
		Metrics: ensemble.MeanMetrics(results),
	}
	if len(results) == 1 {
		_, out.Final = trs[0].Final()
		out.Var = make([]float64, len(out.Final))
		return out, nil
	}

	m, err := metrics.EnsembleMoments(trs, trs[0].Len()-1)
	if err != nil {
		return nil, err
	}
	out.Final, out.Var = m.Mean, m.Variance
	return out, nil
}

// ParameterSweep runs base at NumSteps evenly spaced values of one
// parameter, inclusive of both ends.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	StepResult
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *slog.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		cfg.SetParam(sweep.ParamName, paramVal)

		res, err := runConfig(ctx, cfg, registry, logger)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		res.Name = fmt.Sprintf("%s=%g", sweep.ParamName, paramVal)
		results = append(results, SweepResult{ParamValue: paramVal, StepResult: *res})

		logger.Debug("sweep point", "index", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
