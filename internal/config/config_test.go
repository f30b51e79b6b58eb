package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ltinorm/internal/lti"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.System.Kind != KindAlpha {
		t.Errorf("expected kind alpha, got %s", cfg.System.Kind)
	}
	if cfg.RelTol <= 0 {
		t.Error("rtol should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative rtol", func(c *Config) { c.RelTol = -1 }},
		{"zero max length", func(c *Config) { c.MaxLength = 0 }},
		{"unsupported norm", func(c *Config) { c.Norm = "Hinf" }},
		{"no samples", func(c *Config) { c.Samples = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.yaml")
	cfg := GetPreset("mixed")
	cfg.RelTol = 1e-8

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RelTol != 1e-8 {
		t.Errorf("expected rtol 1e-8, got %g", loaded.RelTol)
	}
	if len(loaded.System.Terms) != 2 || loaded.System.Terms[0].Weight != 0.6 {
		t.Errorf("terms not preserved: %+v", loaded.System.Terms)
	}
	if loaded.System.Terms[1].Kind != KindLowpass {
		t.Errorf("inline kind not preserved: %+v", loaded.System.Terms[1])
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ss.yaml")
	data := []byte(`
system:
  kind: ss
  a: [[-1, -10], [10, -1]]
  b: [[1], [0]]
  c: [[0, 1]]
rtol: 1.0e-4
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxLength != DefaultMaxLength {
		t.Errorf("expected default max length, got %d", cfg.MaxLength)
	}
	sys, err := cfg.System.Build()
	if err != nil {
		t.Fatal(err)
	}
	if n, _, _ := sys.Dims(); n != 2 {
		t.Errorf("expected 2 states, got %d", n)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("lowpass")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.System.Tau != 0.1 {
		t.Errorf("expected tau 0.1, got %f", cfg.System.Tau)
	}
	if cfg.RelTol != DefaultRelTol {
		t.Errorf("expected default rtol, got %g", cfg.RelTol)
	}

	cfg.System.Tau = 5
	if Presets["lowpass"].System.Tau != 0.1 {
		t.Error("mutating a preset copy changed the registry")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			sys, err := GetPreset(name).System.Build()
			if err != nil {
				t.Fatal(err)
			}
			if !sys.IsSISO() {
				t.Errorf("preset %s is not SISO", name)
			}
		})
	}
}

func TestPresetGains(t *testing.T) {
	tests := []struct {
		name   string
		gain   float64
		analog bool
	}{
		{"lowpass", 1, true},
		{"alpha", 1, true},
		{"mixed", 1, true},
		{"bandpass", 0, true},
		{"resonator", 1, true},
		{"cascade", 1, true},
		{"discrete-alpha", 1, false},
	}
	for _, tt := range tests {
		sys, err := GetPreset(tt.name).System.Build()
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if sys.Analog() != tt.analog {
			t.Errorf("%s: analog=%v", tt.name, sys.Analog())
		}
		if g := sys.DCGain().At(0, 0); math.Abs(g-tt.gain) > 1e-9 {
			t.Errorf("%s: expected DC gain %v, got %v", tt.name, tt.gain, g)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  SystemConfig
		want error
	}{
		{"unknown kind", SystemConfig{Kind: "pid"}, ErrUnknownKind},
		{"empty sum", SystemConfig{Kind: KindSum}, ErrInvalidConfig},
		{"empty series", SystemConfig{Kind: KindSeries}, ErrInvalidConfig},
		{"ragged", SystemConfig{Kind: KindStateSpace, A: [][]float64{{1, 2}, {3}}, B: [][]float64{{1}}, C: [][]float64{{1}}}, ErrInvalidConfig},
		{"missing c", SystemConfig{Kind: KindStateSpace, A: [][]float64{{-1}}, B: [][]float64{{1}}}, ErrInvalidConfig},
		{"bad tau", SystemConfig{Kind: KindLowpass}, lti.ErrParameterBounds},
		{"mixed domains", SystemConfig{Kind: KindSum, Terms: []TermConfig{
			{Weight: 1, SystemConfig: SystemConfig{Kind: KindLowpass, Tau: 0.1}},
			{Weight: 1, SystemConfig: SystemConfig{Kind: KindLowpass, Tau: 0.1, Discretize: 0.01}},
		}}, lti.ErrIncompatible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.Build(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
