package config

import (
	"os"

	"github.com/san-kum/sdesim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel   = "bouncing_oscillator"
	DefaultRuns    = 100
	DefaultWorkers = 0
)

type Config struct {
	Model     string             `yaml:"model"`
	T0        float64            `yaml:"t0"`
	T1        float64            `yaml:"t1"`
	Dt        float64            `yaml:"dt"`
	Sigma     float64            `yaml:"sigma"`
	Seed      int64              `yaml:"seed"`
	InitState []float64          `yaml:"init_state,omitempty"`
	Params    map[string]float64 `yaml:"params,omitempty"`
	Ensemble  EnsembleConfig     `yaml:"ensemble"`
}

type EnsembleConfig struct {
	Runs int `yaml:"runs"`
	// Workers bounds concurrent runs; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: DefaultModel,
		T0:    dynamo.DefaultT0,
		T1:    dynamo.DefaultT1,
		Dt:    dynamo.DefaultDt,
		Sigma: dynamo.DefaultSigma,
		Ensemble: EnsembleConfig{
			Runs:    DefaultRuns,
			Workers: DefaultWorkers,
		},
	}
}

// Load reads a yaml run file over DefaultConfig. Model stays empty when the
// file does not name one, so callers can pick it elsewhere.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Model = ""
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOver reads a yaml run file on top of a copy of base: fields the file
// omits keep base's values and params are merged key by key.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SimulationConfig validates the time grid and noise intensity.
func (c *Config) SimulationConfig() (dynamo.Config, error) {
	cfg, err := dynamo.NewConfig(c.T0, c.T1, c.Dt, c.Sigma)
	if err != nil {
		return dynamo.Config{}, err
	}
	return cfg.WithSeed(c.Seed), nil
}

// Clone returns a deep copy, so presets are never modified by callers.
func (c *Config) Clone() *Config {
	out := *c
	if c.InitState != nil {
		out.InitState = append([]float64(nil), c.InitState...)
	}
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

// SetParam records a model parameter override.
func (c *Config) SetParam(name string, value float64) {
	if c.Params == nil {
		c.Params = make(map[string]float64)
	}
	c.Params[name] = value
}
