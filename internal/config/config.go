package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bellsim/internal/experiment"
)

const (
	DefaultTrials  = 1000000
	DefaultSeed    = 1
	DefaultWorkers = 1
	DefaultMix     = 0.5
)

// Config describes a suite of experiments sharing trial count, seed and
// worker count.
type Config struct {
	Trials  int         `yaml:"trials"`
	Seed    int64       `yaml:"seed"`
	Workers int         `yaml:"workers"`
	Runs    []RunConfig `yaml:"runs"`
}

type RunConfig struct {
	Protocol string  `yaml:"protocol"`
	Mix      float64 `yaml:"mix,omitempty"`
}

// Params returns the registry parameters for the run.
func (r RunConfig) Params() map[string]float64 {
	if r.Protocol == "hidden" {
		return map[string]float64{"mix": r.Mix}
	}
	return map[string]float64{}
}

// ReferenceRuns is the fixed sequence: spooky, then hidden variables with
// OddBall chosen half, all, and none of the time.
func ReferenceRuns() []RunConfig {
	return []RunConfig{
		{Protocol: "spooky"},
		{Protocol: "hidden", Mix: 0.5},
		{Protocol: "hidden", Mix: 1.0},
		{Protocol: "hidden", Mix: 0.0},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Trials:  DefaultTrials,
		Seed:    DefaultSeed,
		Workers: DefaultWorkers,
		Runs:    ReferenceRuns(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Runs = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Runs) == 0 {
		cfg.Runs = ReferenceRuns()
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

// Validate checks values the runner cannot honor. Zero or negative trial
// counts are allowed and produce no-data results.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", experiment.ErrInvalidConfig, c.Workers)
	}
	for i, r := range c.Runs {
		switch r.Protocol {
		case "spooky":
		case "hidden":
			if r.Mix < 0 || r.Mix > 1 {
				return fmt.Errorf("run %d: %w: mix %v outside [0, 1]", i+1, experiment.ErrInvalidConfig, r.Mix)
			}
		default:
			return fmt.Errorf("run %d: %w %q", i+1, experiment.ErrUnknownProtocol, r.Protocol)
		}
	}
	return nil
}
