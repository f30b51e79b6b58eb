package config

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltinorm/internal/lti"
)

// System kinds understood by SystemConfig.Build.
const (
	KindLowpass    = "lowpass"
	KindAlpha      = "alpha"
	KindTransfer   = "tf"
	KindStateSpace = "ss"
	KindSum        = "sum"
	KindSeries     = "series"
)

// SystemConfig describes an LTI system in YAML:
//
//	kind: sum
//	terms:
//	  - weight: 0.6
//	    kind: alpha
//	    tau: 0.01
//	  - weight: 0.4
//	    kind: lowpass
//	    tau: 0.05
//	discretize: 0.001
type SystemConfig struct {
	Kind       string         `yaml:"kind"`
	Tau        float64        `yaml:"tau,omitempty"`
	Num        []float64      `yaml:"num,omitempty"`
	Den        []float64      `yaml:"den,omitempty"`
	A          [][]float64    `yaml:"a,omitempty"`
	B          [][]float64    `yaml:"b,omitempty"`
	C          [][]float64    `yaml:"c,omitempty"`
	D          [][]float64    `yaml:"d,omitempty"`
	Discrete   bool           `yaml:"discrete,omitempty"`
	Terms      []TermConfig   `yaml:"terms,omitempty"`
	Stages     []SystemConfig `yaml:"stages,omitempty"`
	Discretize float64        `yaml:"discretize,omitempty"`
}

// TermConfig is one weighted summand of a sum system.
type TermConfig struct {
	Weight       float64 `yaml:"weight"`
	SystemConfig `yaml:",inline"`
}

// Build converts the description into a state-space system.
func (s SystemConfig) Build() (*lti.System, error) {
	sys, err := s.build()
	if err != nil {
		return nil, err
	}
	if s.Discretize > 0 {
		return sys.Discretize(s.Discretize)
	}
	return sys, nil
}

func (s SystemConfig) build() (*lti.System, error) {
	switch s.Kind {
	case KindLowpass:
		return lti.Lowpass(s.Tau)
	case KindAlpha:
		return lti.Alpha(s.Tau)
	case KindTransfer:
		return lti.FromTransferFunction(s.Num, s.Den, !s.Discrete)
	case KindStateSpace:
		return s.buildStateSpace()
	case KindSum:
		return s.buildSum()
	case KindSeries:
		return s.buildSeries()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
}

func (s SystemConfig) buildStateSpace() (*lti.System, error) {
	names := []string{"a", "b", "c", "d"}
	var ms [4]*mat.Dense
	for i, rows := range [][][]float64{s.A, s.B, s.C, s.D} {
		m, err := toDense(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		ms[i] = m
	}
	if ms[0] == nil || ms[1] == nil || ms[2] == nil {
		return nil, fmt.Errorf("%w: ss systems need a, b and c", ErrInvalidConfig)
	}
	var d mat.Matrix
	if ms[3] != nil {
		d = ms[3]
	}
	return lti.New(ms[0], ms[1], ms[2], d, !s.Discrete)
}

func (s SystemConfig) buildSum() (*lti.System, error) {
	if len(s.Terms) == 0 {
		return nil, fmt.Errorf("%w: sum needs at least one term", ErrInvalidConfig)
	}
	var total *lti.System
	for i, term := range s.Terms {
		sys, err := term.SystemConfig.Build()
		if err != nil {
			return nil, fmt.Errorf("term %d: %w", i, err)
		}
		sys = lti.Scale(term.Weight, sys)
		if total == nil {
			total = sys
			continue
		}
		if total, err = lti.Sum(total, sys); err != nil {
			return nil, fmt.Errorf("term %d: %w", i, err)
		}
	}
	return total, nil
}

func (s SystemConfig) buildSeries() (*lti.System, error) {
	if len(s.Stages) == 0 {
		return nil, fmt.Errorf("%w: series needs at least one stage", ErrInvalidConfig)
	}
	var chain *lti.System
	for i, stage := range s.Stages {
		sys, err := stage.Build()
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		if chain == nil {
			chain = sys
			continue
		}
		if chain, err = lti.Series(chain, sys); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
	}
	return chain, nil
}

// toDense returns nil for an empty matrix.
func toDense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: empty row", ErrInvalidConfig)
	}
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: ragged matrix", ErrInvalidConfig)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}
