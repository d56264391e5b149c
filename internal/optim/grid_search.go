// Package optim searches model parameters for the value that minimizes a
// metric averaged over an ensemble.
package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/sdesim/internal/config"
	"github.com/san-kum/sdesim/internal/ensemble"
	"github.com/san-kum/sdesim/internal/experiment"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d params but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: no values for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
}

// Search evaluates every grid point with an ensemble built from base and
// returns the point with the smallest mean metric, plus every evaluation in
// grid order. Any failing point aborts the search.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, registry *experiment.Registry, logger *slog.Logger, metricName string) (*Point, []Point, error) {
	best := -1
	var evals []Point

	visit := func(params map[string]float64) error {
		cfg := base.Clone()
		for k, v := range params {
			cfg.SetParam(k, v)
		}

		exp := experiment.New(cfg, registry, logger)
		if err := exp.Setup(); err != nil {
			return fmt.Errorf("grid point %v: %w", params, err)
		}
		results, err := exp.RunEnsemble(ctx)
		if err != nil {
			return fmt.Errorf("grid point %v: %w", params, err)
		}

		val, ok := ensemble.MeanMetrics(results)[metricName]
		if !ok {
			return fmt.Errorf("unknown metric: %s", metricName)
		}

		evals = append(evals, Point{Params: params, Value: val})
		if best < 0 || val < evals[best].Value || (math.IsNaN(evals[best].Value) && !math.IsNaN(val)) {
			best = len(evals) - 1
		}
		return nil
	}

	if err := g.searchRecursive(0, make(map[string]float64), visit); err != nil {
		return nil, nil, err
	}

	out := evals[best]
	return &out, evals, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
