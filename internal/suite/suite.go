// Package suite runs an ordered list of experiments that share a trial count,
// seed and worker count.
package suite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/bellsim/internal/config"
	"github.com/san-kum/bellsim/internal/experiment"
)

// Step is one experiment of a suite.
type Step struct {
	Protocol experiment.Protocol
	Config   experiment.Config
}

// Build resolves every run in cfg against registry. Step i is seeded with
// cfg.Seed + i so runs do not share a random stream.
func Build(cfg *config.Config, registry *experiment.Registry) ([]Step, error) {
	steps := make([]Step, 0, len(cfg.Runs))
	for i, run := range cfg.Runs {
		p, err := registry.GetProtocol(run.Protocol, run.Params())
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		steps = append(steps, Step{
			Protocol: p,
			Config: experiment.Config{
				Trials:  cfg.Trials,
				Seed:    cfg.Seed + int64(i),
				Workers: cfg.Workers,
			},
		})
	}
	return steps, nil
}

// Reference builds the fixed reference sequence at the given trial count.
func Reference(trials int, seed int64, registry *experiment.Registry) ([]Step, error) {
	cfg := config.DefaultConfig()
	cfg.Trials = trials
	cfg.Seed = seed
	return Build(cfg, registry)
}

// Run executes steps in order. It stops at the first error and returns the
// results gathered so far.
func Run(ctx context.Context, steps []Step, logger *slog.Logger) ([]*experiment.Result, error) {
	results := make([]*experiment.Result, 0, len(steps))

	for i, step := range steps {
		logger.Debug("suite.step.start",
			"step", i+1,
			"of", len(steps),
			"protocol", step.Protocol.Name(),
			"trials", step.Config.Trials,
			"seed", step.Config.Seed,
		)

		exp := experiment.New(step.Config, step.Protocol)
		exp.SetLogger(logger)
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		pct, ok := result.Percent()
		logger.Debug("suite.step.done",
			"step", i+1,
			"protocol", result.Protocol,
			"percent", pct,
			"has_data", ok,
			"elapsed", result.Elapsed,
		)
		results = append(results, result)
	}

	logger.Info("suite.done", "steps", len(results))
	return results, nil
}
