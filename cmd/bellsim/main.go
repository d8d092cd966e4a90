package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/bellsim/internal/bell"
	"github.com/san-kum/bellsim/internal/config"
	"github.com/san-kum/bellsim/internal/experiment"
	"github.com/san-kum/bellsim/internal/logging"
	"github.com/san-kum/bellsim/internal/metrics"
	"github.com/san-kum/bellsim/internal/report"
	"github.com/san-kum/bellsim/internal/suite"
	"github.com/san-kum/bellsim/internal/sweep"
	"github.com/san-kum/bellsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	trials     int
	seed       int64
	workers    int
	configFile string
	preset     string
	logLevel   string
	mix        float64
	sweepSteps int
	batch      int
	every      int

	logger *slog.Logger
)

// main registers commands and flags and executes the root command. With no
// subcommand it runs the reference sequence. Invariant panics are logged and
// exit with status 2; command errors exit with status 1.
func main() {
	rootCmd := &cobra.Command{
		Use:           "bellsim",
		Short:         "bell inequality monte carlo simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = logging.NewLogger(logLevel, os.Stderr)
			return validateFlags()
		},
		RunE: runSuite,
	}

	rootCmd.PersistentFlags().IntVar(&trials, "trials", config.DefaultTrials, "trials per experiment")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", config.DefaultWorkers, "parallel workers per experiment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (info, debug, trace)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the reference sequence or a suite from a config file",
		Args:  cobra.NoArgs,
		RunE:  runSuite,
	}
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVar(&configFile, "config", "", "suite config file path (yaml)")
		c.Flags().StringVar(&preset, "preset", "", "use preset suite")
	}

	spookyCmd := &cobra.Command{
		Use:   "spooky",
		Short: "run the spooky action protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd.Context(), "spooky", nil)
		},
	}

	hiddenCmd := &cobra.Command{
		Use:   "hidden",
		Short: "run the hidden variable protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd.Context(), "hidden", map[string]float64{"mix": mix})
		},
	}
	hiddenCmd.Flags().Float64Var(&mix, "mix", config.DefaultMix, "probability of choosing the oddball plan")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep the hidden variable mixing probability from 0 to 1",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of intervals in [0, 1]")

	plotCmd := &cobra.Command{
		Use:       "plot [protocol]",
		Short:     "plot the running difference rate",
		Args:      cobra.ExactArgs(1),
		ValidArgs: experiment.NewRegistry().ListProtocols(),
		RunE:      plotConvergence,
	}
	plotCmd.Flags().Float64Var(&mix, "mix", config.DefaultMix, "probability of choosing the oddball plan")
	plotCmd.Flags().IntVar(&every, "every", 0, "trials between samples (default trials/80)")

	liveCmd := &cobra.Command{
		Use:   "live [protocol]",
		Short: "watch an experiment converge",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&mix, "mix", config.DefaultMix, "probability of choosing the oddball plan")
	liveCmd.Flags().IntVar(&batch, "batch", 1000, "trials per frame")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time each protocol at several worker counts",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available suite presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s %d trials, %d runs\n", name, p.Trials, len(p.Runs))
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, spookyCmd, hiddenCmd, sweepCmd, plotCmd, liveCmd, benchCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, rootCmd)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, rootCmd *cobra.Command) (code int) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var ie *bell.InvariantError
		if err, ok := r.(error); ok && errors.As(err, &ie) {
			currentLogger().Error("invariant violated", "op", ie.Op, "detail", ie.Detail)
			code = 2
			return
		}
		panic(r)
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		currentLogger().Error("command failed", "err", err)
		return 1
	}
	return 0
}

func currentLogger() *slog.Logger {
	if logger == nil {
		return logging.NewLogger("info", os.Stderr)
	}
	return logger
}

// suiteConfig resolves the suite from preset, then config file, then flags.
// Flags override file values only when set explicitly.
func suiteConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	fromFile := preset != "" || configFile != ""
	if !fromFile || cmd.Flags().Changed("trials") {
		cfg.Trials = trials
	}
	if !fromFile || cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if !fromFile || cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}

	return cfg, cfg.Validate()
}

func runSuite(cmd *cobra.Command, args []string) error {
	cfg, err := suiteConfig(cmd)
	if err != nil {
		return err
	}

	steps, err := suite.Build(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	logger.Info("suite.start", "runs", len(steps), "trials", cfg.Trials, "seed", cfg.Seed, "workers", cfg.Workers)

	results, err := suite.Run(cmd.Context(), steps, logger)
	if err != nil {
		return err
	}

	return report.Write(os.Stdout, results)
}

// validateFlags rejects flag values shared by every command that the runner
// would otherwise adjust silently.
func validateFlags() error {
	if workers < 1 {
		return fmt.Errorf("%w: --workers must be at least 1, got %d", experiment.ErrInvalidConfig, workers)
	}
	return nil
}

func runSingle(ctx context.Context, name string, params map[string]float64) error {
	p, err := experiment.NewRegistry().GetProtocol(name, params)
	if err != nil {
		return err
	}

	exp := experiment.New(experiment.Config{Trials: trials, Seed: seed, Workers: workers}, p)
	exp.SetLogger(logger)
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	logger.Debug("experiment.done", "id", result.ID, "protocol", result.Protocol, "elapsed", result.Elapsed)
	return report.Write(os.Stdout, []*experiment.Result{result})
}

func runSweep(cmd *cobra.Command, args []string) error {
	build := func(m float64) (*experiment.Experiment, error) {
		h, err := experiment.NewHidden(m)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{Trials: trials, Seed: seed, Workers: workers}, h)
		exp.SetLogger(logger)
		return exp, nil
	}

	points, best, err := sweep.New(sweep.Grid(sweepSteps)).Search(cmd.Context(), build)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		fmt.Println("no data")
		return nil
	}

	fmt.Printf("%-6s  %-10s  %-10s\n", "mix", "observed", "expected")
	for _, p := range points {
		logger.Debug("sweep.point", "mix", p.Mix, "observed", p.Observed, "id", p.Result.ID)
		fmt.Printf("%-6.2f  %9.3f%%  %9.3f%%\n", p.Mix, p.Observed, p.Expected)
	}
	fmt.Println()
	fmt.Println(report.PlotAgainst(sweep.Observed(points), 100*bell.BellBound, "difference rate vs oddball mix (bound 5/9)"))
	fmt.Printf("\nlowest rate %.3f%% at mix %.2f, bound %.3f%%, spooky %.3f%%\n",
		best.Observed, best.Mix, 100*bell.BellBound, 100*bell.SpookyDifference)

	return nil
}

func plotConvergence(cmd *cobra.Command, args []string) error {
	p, err := experiment.NewRegistry().GetProtocol(args[0], map[string]float64{"mix": mix})
	if err != nil {
		return err
	}

	k := every
	if k <= 0 {
		k = max(trials/80, 1)
	}
	conv := metrics.NewConvergence(k)

	exp := experiment.New(experiment.Config{Trials: trials, Seed: seed, Workers: 1}, p)
	exp.SetLogger(logger)
	exp.AddMetric(conv)

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	if result.NoData() {
		fmt.Println("no data")
		return nil
	}

	caption := fmt.Sprintf("%s running difference rate, expected %.3f%%", report.Title(result), result.Expected)
	fmt.Println(report.PlotAgainst(conv.History(), result.Expected, caption))
	fmt.Printf("\nfinal: %s\n", report.Observed(result))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	p, err := experiment.NewRegistry().GetProtocol(args[0], map[string]float64{"mix": mix})
	if err != nil {
		return err
	}

	m := viz.NewModel(p, seed, batch, trials)
	prog := tea.NewProgram(m, tea.WithContext(cmd.Context()))
	if _, err := prog.Run(); err != nil {
		return err
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	rows := make([]report.BenchRow, 0)

	for _, name := range registry.ListProtocols() {
		p, err := registry.GetProtocol(name, map[string]float64{"mix": config.DefaultMix})
		if err != nil {
			return err
		}
		for _, w := range []int{1, 2, 4} {
			result, err := experiment.New(experiment.Config{Trials: trials, Seed: seed, Workers: w}, p).Run(cmd.Context())
			if err != nil {
				return err
			}
			rows = append(rows, report.BenchRow{
				Protocol: name,
				Workers:  w,
				Trials:   result.Trials,
				Elapsed:  result.Elapsed,
			})
		}
	}

	fmt.Printf("benchmarking %d trials\n\n", trials)
	return report.Bench(os.Stdout, rows)
}
