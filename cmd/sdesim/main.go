package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/sdesim/internal/analysis"
	"github.com/san-kum/sdesim/internal/config"
	"github.com/san-kum/sdesim/internal/experiment"
	"github.com/spf13/cobra"
)

var (
	t0         float64
	t1         float64
	dt         float64
	sigma      float64
	lambda     float64
	seed       int64
	configFile string
	preset     string
	plot       bool
	height     int
	width      int
	runs       int
	workers    int
	verbose    bool
	phase      bool
	xAxis      int
	yAxis      int
	level      float64
	component  int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sdesim",
		Short:        "stochastic hybrid system simulator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "simulate one trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot each state component")
	runCmd.Flags().IntVar(&height, "height", 10, "plot height")
	runCmd.Flags().IntVar(&width, "width", 80, "plot width")
	runCmd.Flags().BoolVar(&phase, "phase", false, "phase space plot")
	runCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	runCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "simulate independent runs and report moments at t1",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	addEnsembleFlags(ensembleCmd, config.DefaultRuns)
	ensembleCmd.Flags().Float64Var(&level, "level", 0, "report first passage times through this level")
	ensembleCmd.Flags().IntVar(&component, "component", 0, "state index for --level")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range experiment.NewRegistry().ListModels() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Fprintf(out, "no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, ensembleCmd, modelsCmd, presetsCmd)
	rootCmd.AddCommand(newBatchCmds()...)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&t0, "t0", 0, "start time")
	cmd.Flags().Float64Var(&t1, "t1", 10, "end time")
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	cmd.Flags().Float64Var(&sigma, "sigma", 0.1, "noise intensity")
	cmd.Flags().Float64Var(&lambda, "lambda", 0, "jump intensity (jump-diffusion models)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func addEnsembleFlags(cmd *cobra.Command, defaultRuns int) {
	cmd.Flags().IntVar(&runs, "runs", defaultRuns, "number of runs")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "concurrent runs (0 = GOMAXPROCS)")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// resolveConfig layers model defaults, a preset, a config file and finally
// the flags the user set explicitly. Each layer only overrides the fields it
// sets.
func resolveConfig(cmd *cobra.Command, args []string, registry *experiment.Registry) (*config.Config, error) {
	fileModel := ""
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		fileModel = c.Model
	}

	model := config.DefaultModel
	switch {
	case len(args) > 0:
		model = args[0]
	case fileModel != "":
		model = fileModel
	}
	if fileModel != "" && fileModel != model {
		return nil, fmt.Errorf("config file is for model %s, not %s", fileModel, model)
	}

	cfg, err := registry.DefaultConfig(model)
	if err != nil {
		return nil, err
	}

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		if cfg, err = config.LoadOver(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.Model = model
	}

	flags := cmd.Flags()
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("t1") {
		cfg.T1 = t1
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("sigma") {
		cfg.Sigma = sigma
	}
	if flags.Changed("lambda") {
		cfg.SetParam("lambda", lambda)
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Lookup("runs") != nil && flags.Changed("runs") {
		cfg.Ensemble.Runs = runs
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		cfg.Ensemble.Workers = workers
	}
	return cfg, nil
}

func setup(cmd *cobra.Command, args []string) (*experiment.Experiment, error) {
	registry := experiment.NewRegistry()
	cfg, err := resolveConfig(cmd, args, registry)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(cfg, registry, newLogger(cmd))
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd, args)
	if err != nil {
		return err
	}

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderRun(exp.Config(), result))
	if plot {
		for _, chart := range plotComponents(result.Trajectory, height, width) {
			fmt.Fprintln(out, chart)
			fmt.Fprintln(out)
		}
	}
	if phase {
		portrait, err := analysis.NewPortrait(result.Trajectory, xAxis, yAxis)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "phase space x%d vs x%d\n", xAxis, yAxis)
		fmt.Fprint(out, portrait.ASCII(width, 2*height))
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd, args)
	if err != nil {
		return err
	}

	results, err := exp.RunEnsemble(cmd.Context())
	if err != nil {
		return err
	}

	summary, err := renderEnsemble(exp.Config(), results)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)

	if cmd.Flags().Changed("level") {
		passage, err := renderFirstPassage(results, component, level)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), passage)
	}
	return nil
}
