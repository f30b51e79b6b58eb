package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ltinorm/internal/logger"
)

const (
	DefaultRelTol    = 1e-6
	DefaultMaxLength = 1 << 18
	DefaultNorm      = "H2"
	DefaultSamples   = 256
	DefaultLogLevel  = "warn"
	DefaultDataDir   = "data"
	DefaultTau       = 0.1
)

var (
	ErrUnknownKind   = errors.New("config: unknown system kind")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

type Config struct {
	Name        string       `yaml:"name,omitempty"`
	Description string       `yaml:"description,omitempty"`
	System      SystemConfig `yaml:"system"`
	RelTol      float64      `yaml:"rtol"`
	MaxLength   int          `yaml:"max_length"`
	Norm        string       `yaml:"norm"`
	Samples     int          `yaml:"samples"`
	LogLevel    string       `yaml:"log_level"`
	DataDir     string       `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:      "alpha",
		System:    SystemConfig{Kind: KindAlpha, Tau: DefaultTau},
		RelTol:    DefaultRelTol,
		MaxLength: DefaultMaxLength,
		Norm:      DefaultNorm,
		Samples:   DefaultSamples,
		LogLevel:  DefaultLogLevel,
		DataDir:   DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

// Validate checks the analysis settings. The system description is only
// checked when it is built.
func (c *Config) Validate() error {
	switch {
	case c.RelTol < 0:
		return fmt.Errorf("%w: rtol must be non-negative, got %g", ErrInvalidConfig, c.RelTol)
	case c.MaxLength < 1:
		return fmt.Errorf("%w: max_length must be positive, got %d", ErrInvalidConfig, c.MaxLength)
	case c.Norm != DefaultNorm:
		return fmt.Errorf("%w: norm must be one of: %s", ErrInvalidConfig, DefaultNorm)
	case c.Samples < 1:
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidConfig, c.Samples)
	}
	if _, ok := logger.ParseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
