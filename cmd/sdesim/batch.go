package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/sdesim/internal/automation"
	"github.com/san-kum/sdesim/internal/experiment"
	"github.com/san-kum/sdesim/internal/optim"
	"github.com/spf13/cobra"
)

const (
	sweepRuns  = 1
	searchRuns = 20
)

var (
	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepPoints int
	gridSpecs   []string
	metricName  string
)

func newBatchCmds() []*cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "sweep one model parameter over a linear range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	addEnsembleFlags(sweepCmd, sweepRuns)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter name")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")
	_ = sweepCmd.MarkFlagRequired("param")

	searchCmd := &cobra.Command{
		Use:   "search [model]",
		Short: "grid search parameters minimizing a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch,
	}
	addSimFlags(searchCmd)
	addEnsembleFlags(searchCmd, searchRuns)
	searchCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "name=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to minimize")
	_ = searchCmd.MarkFlagRequired("grid")

	return []*cobra.Command{scenarioCmd, sweepCmd, searchCmd}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), newLogger(cmd))
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintln(out, renderStep(r.Name, r))
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	cfg, err := resolveConfig(cmd, args, registry)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("runs") {
		cfg.Ensemble.Runs = sweepRuns
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepFrom,
		ParamMax:  sweepTo,
		NumSteps:  sweepPoints,
	}, registry, newLogger(cmd))
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintln(out, renderStep(r.Name, r.StepResult))
	}
	return err
}

func runSearch(cmd *cobra.Command, args []string) error {
	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	cfg, err := resolveConfig(cmd, args, registry)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("runs") {
		cfg.Ensemble.Runs = searchRuns
	}

	best, evals, err := g.Search(cmd.Context(), cfg, registry, newLogger(cmd), metricName)
	if err != nil {
		return err
	}

	rows := []string{headerStyle.Render(fmt.Sprintf("%s search (%s, %d runs per point)", cfg.Model, metricName, cfg.Ensemble.Runs))}
	for _, p := range evals {
		rows = append(rows, row(formatParams(p.Params), fmt.Sprintf("%.6f", p.Value)))
	}
	rows = append(rows, "", row("best", fmt.Sprintf("%s  %.6f", formatParams(best.Params), best.Value)))
	fmt.Fprintln(cmd.OutOrStdout(), boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return nil
}

// parseGrid turns "name=v1,v2" specs into search axes, in flag order.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, entry := range specs {
		name, list, ok := strings.Cut(entry, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("invalid grid %q, want name=v1,v2", entry)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid grid %q: %w", entry, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, params[k])
	}
	return strings.Join(parts, " ")
}
