package config

import "sort"

var Presets = map[string]map[string]*Config{
	"bouncing_oscillator": {
		"default": {
			Model: "bouncing_oscillator", T1: 10, Dt: 0.01, Sigma: 0.1,
			InitState: []float64{1, 0},
		},
		"damped": {
			Model: "bouncing_oscillator", T1: 20, Dt: 0.01, Sigma: 0.1,
			InitState: []float64{1, 0},
			Params:    map[string]float64{"restitution": 0.8},
		},
		"noisy": {
			Model: "bouncing_oscillator", T1: 10, Dt: 0.01, Sigma: 1.0,
			InitState: []float64{1, 0},
			Params:    map[string]float64{"noise": 0.5},
		},
	},
	"geometric_jump_diffusion": {
		"default": {
			Model: "geometric_jump_diffusion", T1: 10, Dt: 0.01, Sigma: 0.1,
			InitState: []float64{1},
		},
		"crash": {
			Model: "geometric_jump_diffusion", T1: 10, Dt: 0.01, Sigma: 0.2,
			InitState: []float64{1},
			Params:    map[string]float64{"lambda": 0.5, "jump_fraction": -0.3},
		},
	},
	"normal_jump_diffusion": {
		"default": {
			Model: "normal_jump_diffusion", T1: 10, Dt: 0.01, Sigma: 1,
			InitState: []float64{0},
		},
		"rare_large": {
			Model: "normal_jump_diffusion", T1: 50, Dt: 0.01, Sigma: 0.2,
			InitState: []float64{0},
			Params:    map[string]float64{"lambda": 0.1, "jump_std": 3},
		},
	},
	"ornstein_uhlenbeck": {
		"default": {
			Model: "ornstein_uhlenbeck", T1: 10, Dt: 0.01, Sigma: 0.5,
			InitState: []float64{1},
		},
		"stiff": {
			Model: "ornstein_uhlenbeck", T1: 5, Dt: 0.001, Sigma: 0.5,
			InitState: []float64{3},
			Params:    map[string]float64{"theta": 20},
		},
	},
	"double_well": {
		"hopping": {
			Model: "double_well", T1: 100, Dt: 0.01, Sigma: 1,
			InitState: []float64{1.1, 0},
		},
		"cold": {
			Model: "double_well", T1: 100, Dt: 0.01, Sigma: 0.2,
			InitState: []float64{1.1, 0},
			Params:    map[string]float64{"temperature": 0.1},
		},
	},
	"duffing": {
		"chaotic": {
			Model: "duffing", T1: 100, Dt: 0.01, Sigma: 0.05,
			InitState: []float64{1, 0, 0},
			Params:    map[string]float64{"lambda": 0},
		},
		"kicked": {
			Model: "duffing", T1: 50, Dt: 0.01, Sigma: 0.1,
			InitState: []float64{1, 0, 0},
			Params:    map[string]float64{"gamma": 0, "lambda": 1, "kick": 1},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	out.Ensemble = DefaultConfig().Ensemble
	return out
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
