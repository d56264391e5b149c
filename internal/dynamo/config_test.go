package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(0, 10, 0.01, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Steps() != 1000 {
		t.Errorf("Steps() = %d, want 1000", cfg.Steps())
	}
	if cfg.TimeAt(0) != 0 || math.Abs(cfg.TimeAt(1000)-10) > 1e-12 {
		t.Errorf("TimeAt endpoints = %v, %v", cfg.TimeAt(0), cfg.TimeAt(1000))
	}
}

func TestConfig_Steps(t *testing.T) {
	tests := []struct {
		t0, t1, dt float64
		want       int
	}{
		{0, 1, 0.1, 10},
		{0, 1, 0.3, 3},
		{1, 2, 0.5, 2},
		{0, 1, 5, 0},
	}

	for _, tt := range tests {
		cfg, err := NewConfig(tt.t0, tt.t1, tt.dt, 0)
		if err != nil {
			t.Fatalf("NewConfig(%v, %v, %v): %v", tt.t0, tt.t1, tt.dt, err)
		}
		if got := cfg.Steps(); got != tt.want {
			t.Errorf("Steps() for [%v,%v] dt=%v = %d, want %d", tt.t0, tt.t1, tt.dt, got, tt.want)
		}
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name             string
		t0, t1, dt, sigm float64
		param            string
	}{
		{"zero dt", 0, 1, 0, 0.1, "dt"},
		{"negative dt", 0, 1, -0.1, 0.1, "dt"},
		{"nan dt", 0, 1, math.NaN(), 0.1, "dt"},
		{"t1 before t0", 1, 0, 0.1, 0.1, "t1"},
		{"t1 equals t0", 1, 1, 0.1, 0.1, "t1"},
		{"infinite t1", 0, math.Inf(1), 0.1, 0.1, "t1"},
		{"negative sigma", 0, 1, 0.1, -1, "sigma"},
		{"nan sigma", 0, 1, 0.1, math.NaN(), "sigma"},
		{"span overflows", -1e308, 1e308, 1, 0.1, "t1"},
		{"steps overflow int", 0, 1e300, 1e-300, 0, "dt"},
		{"steps overflow float", 0, 1e300, 5e-324, 0, "dt"},
		{"too many steps", 0, 1, 1.0 / (MaxSteps * 2), 0, "dt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.t0, tt.t1, tt.dt, tt.sigm)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			var pe *ParameterError
			if !errors.As(err, &pe) || pe.Name != tt.param {
				t.Errorf("expected parameter %q, got %+v", tt.param, pe)
			}
		})
	}
}

func TestNewConfig_MaxSteps(t *testing.T) {
	cfg, err := NewConfig(0, MaxSteps, 1, 0)
	if err != nil {
		t.Fatalf("grid of exactly MaxSteps rejected: %v", err)
	}
	if cfg.Steps() != MaxSteps {
		t.Errorf("Steps() = %d, want %d", cfg.Steps(), MaxSteps)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig is invalid: %v", err)
	}
	if cfg.WithSeed(4).Seed != 4 || cfg.Seed != 0 {
		t.Error("WithSeed should return a modified copy")
	}
}
