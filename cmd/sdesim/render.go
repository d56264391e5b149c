package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sdesim/internal/analysis"
	"github.com/san-kum/sdesim/internal/automation"
	"github.com/san-kum/sdesim/internal/config"
	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/ensemble"
	"github.com/san-kum/sdesim/internal/metrics"
	"github.com/san-kum/sdesim/internal/sim"
	"gonum.org/v1/gonum/stat"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
)

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func formatState(y dynamo.State) string {
	parts := make([]string, len(y))
	for i, v := range y {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func renderRun(cfg *config.Config, res *sim.Result) string {
	tr := res.Trajectory
	_, yf := tr.Final()
	rows := []string{
		headerStyle.Render(cfg.Model),
		row("steps", fmt.Sprintf("%d", res.StepsTaken)),
		row("dt", fmt.Sprintf("%g", cfg.Dt)),
		row("sigma", fmt.Sprintf("%g", cfg.Sigma)),
		row("seed", fmt.Sprintf("%d", cfg.Seed)),
		row("jumps", fmt.Sprintf("%d", res.JumpCount())),
		row("final", formatState(yf)),
		"",
	}

	for _, s := range metrics.Summarize(tr) {
		rows = append(rows, row(fmt.Sprintf("x%d", s.Index),
			fmt.Sprintf("mean %.4f  std %.4f  min %.4f  max %.4f", s.Mean, s.StdDev, s.Min, s.Max)))
	}

	if len(res.Metrics) > 0 {
		rows = append(rows, "")
		for _, name := range sortedKeys(res.Metrics) {
			rows = append(rows, row(name, fmt.Sprintf("%.6f", res.Metrics[name])))
		}
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderEnsemble(cfg *config.Config, results []*sim.Result) (string, error) {
	trs := ensemble.Trajectories(results)
	last := trs[0].Len() - 1
	m, err := metrics.EnsembleMoments(trs, last)
	if err != nil {
		return "", err
	}

	jumps := 0
	for _, r := range results {
		jumps += r.JumpCount()
	}

	rows := []string{
		headerStyle.Render(cfg.Model + " ensemble"),
		row("runs", fmt.Sprintf("%d", len(results))),
		row("seeds", fmt.Sprintf("%d..%d", cfg.Seed, cfg.Seed+int64(len(results))-1)),
		row("t", fmt.Sprintf("%g", m.Time)),
		row("mean jumps", fmt.Sprintf("%.3f", float64(jumps)/float64(len(results)))),
		"",
	}
	for i := range m.Mean {
		rows = append(rows, row(fmt.Sprintf("x%d", i),
			fmt.Sprintf("mean %.6f  var %.6f", m.Mean[i], m.Variance[i])))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)), nil
}

func renderFirstPassage(results []*sim.Result, idx int, level float64) (string, error) {
	times := make([]float64, 0, len(results))
	for _, r := range results {
		t, ok, err := analysis.FirstPassage(r.Trajectory, idx, level)
		if err != nil {
			return "", err
		}
		if ok {
			times = append(times, t)
		}
	}

	rows := []string{
		headerStyle.Render(fmt.Sprintf("first passage x%d >= %g", idx, level)),
		row("reached", fmt.Sprintf("%d/%d", len(times), len(results))),
	}
	if len(times) > 0 {
		mean, std := stat.MeanStdDev(times, nil)
		if len(times) < 2 {
			std = 0
		}
		rows = append(rows, row("mean time", fmt.Sprintf("%.4f", mean)), row("std", fmt.Sprintf("%.4f", std)))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)), nil
}

func renderStep(name string, r automation.StepResult) string {
	rows := []string{
		headerStyle.Render(name),
		row("model", r.Model),
		row("runs", fmt.Sprintf("%d", r.Runs)),
		row("final", formatState(r.Final)),
	}
	if r.Runs > 1 {
		rows = append(rows, row("variance", formatState(r.Var)))
	}
	for _, k := range sortedKeys(r.Metrics) {
		rows = append(rows, row(k, fmt.Sprintf("%.6f", r.Metrics[k])))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func plotComponents(tr *dynamo.Trajectory, height, width int) []string {
	charts := make([]string, 0, tr.Dim())
	for j := 0; j < tr.Dim(); j++ {
		charts = append(charts, asciigraph.Plot(tr.Component(j),
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(fmt.Sprintf("x%d", j)),
		))
	}
	return charts
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
