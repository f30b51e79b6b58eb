package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Batch lists systems that are analyzed together:
//
//	name: filters
//	presets: [lowpass, alpha]
//	systems:
//	  - name: notch
//	    system: {kind: tf, num: [1, 0, 100], den: [1, 2, 100]}
//	sweep:
//	  name: lp
//	  param: tau
//	  min: 0.01
//	  max: 0.1
//	  steps: 4
//	  base: {kind: lowpass}
type Batch struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Presets     []string `yaml:"presets,omitempty"`
	Systems     []Config `yaml:"systems,omitempty"`
	Sweep       *Sweep   `yaml:"sweep,omitempty"`
}

// Sweep generates systems by varying one parameter of Base over an evenly
// spaced range.
type Sweep struct {
	Name  string       `yaml:"name"`
	Param string       `yaml:"param"`
	Min   float64      `yaml:"min"`
	Max   float64      `yaml:"max"`
	Steps int          `yaml:"steps"`
	Base  SystemConfig `yaml:"base"`
}

// Sweepable parameters.
const (
	ParamTau        = "tau"
	ParamDiscretize = "discretize"
)

// LoadBatch reads a batch file.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Expand resolves presets, explicit systems and the sweep, in that order,
// into configs carrying the default analysis settings.
func (b *Batch) Expand() ([]*Config, error) {
	var out []*Config

	for _, name := range b.Presets {
		cfg := GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
		}
		out = append(out, cfg)
	}

	for i, s := range b.Systems {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: system %d has no name", ErrInvalidConfig, i+1)
		}
		cfg := DefaultConfig()
		cfg.Name = s.Name
		cfg.Description = s.Description
		cfg.System = s.System
		out = append(out, cfg)
	}

	if b.Sweep != nil {
		swept, err := b.Sweep.expand()
		if err != nil {
			return nil, err
		}
		out = append(out, swept...)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: batch %q is empty", ErrInvalidConfig, b.Name)
	}
	return out, nil
}

func (s *Sweep) expand() ([]*Config, error) {
	if s.Steps < 1 {
		return nil, fmt.Errorf("%w: sweep steps must be positive, got %d", ErrInvalidConfig, s.Steps)
	}

	name := s.Name
	if name == "" {
		name = s.Base.Kind
	}

	step := 0.0
	if s.Steps > 1 {
		step = (s.Max - s.Min) / float64(s.Steps-1)
	}

	out := make([]*Config, 0, s.Steps)
	for i := 0; i < s.Steps; i++ {
		val := s.Min + float64(i)*step
		sys := s.Base
		switch s.Param {
		case ParamTau:
			sys.Tau = val
		case ParamDiscretize:
			sys.Discretize = val
		default:
			return nil, fmt.Errorf("%w: cannot sweep %q (tau, discretize)", ErrInvalidConfig, s.Param)
		}

		cfg := DefaultConfig()
		cfg.Name = name + "_" + s.Param + "=" + strconv.FormatFloat(val, 'g', 4, 64)
		cfg.Description = fmt.Sprintf("%s with %s=%g", s.Base.Kind, s.Param, val)
		cfg.System = sys
		out = append(out, cfg)
	}
	return out, nil
}
