// Package ensemble runs independent Monte Carlo batches of a simulation.
//
// Every run gets its own simulator built by a Factory from a distinct seed,
// so runs share no mutable state and a batch is reproducible from its first
// seed regardless of scheduling.
package ensemble

import (
	"context"
	"fmt"
	"runtime"

	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/sim"
	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh simulator whose random source is seeded with seed.
type Factory func(seed int64) (*sim.Simulator, error)

type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
	workers   int
}

func New(factory Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		factory:   factory,
		numRuns:   numRuns,
		seedStart: seedStart,
		workers:   runtime.GOMAXPROCS(0),
	}
}

// SetWorkers bounds the number of concurrent runs; n < 1 means GOMAXPROCS.
func (e *Ensemble) SetWorkers(n int) {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	e.workers = n
}

// Seed returns the seed used for run idx.
func (e *Ensemble) Seed(idx int) int64 {
	return e.seedStart + int64(idx)
}

// Run executes all runs and returns their results in run order. The first
// failure cancels runs that have not started yet and is returned.
func (e *Ensemble) Run(ctx context.Context) ([]*sim.Result, error) {
	if e.numRuns < 1 {
		return nil, &dynamo.ParameterError{Name: "runs", Value: float64(e.numRuns), Reason: "must be at least 1"}
	}

	results := make([]*sim.Result, e.numRuns)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := 0; i < e.numRuns; i++ {
		if gctx.Err() != nil {
			break
		}
		idx := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			seed := e.Seed(idx)
			s, err := e.factory(seed)
			if err != nil {
				return fmt.Errorf("ensemble: build run %d (seed %d): %w", idx, seed, err)
			}
			res, err := s.Run()
			if err != nil {
				return fmt.Errorf("ensemble: run %d (seed %d): %w", idx, seed, err)
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Trajectories extracts the trajectories of a batch in run order.
func Trajectories(results []*sim.Result) []*dynamo.Trajectory {
	out := make([]*dynamo.Trajectory, len(results))
	for i, r := range results {
		out[i] = r.Trajectory
	}
	return out
}

// MeanMetrics averages each metric over the runs that reported it.
func MeanMetrics(results []*sim.Result) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range results {
		for name, v := range r.Metrics {
			sums[name] += v
			counts[name]++
		}
	}
	for name := range sums {
		sums[name] /= float64(counts[name])
	}
	return sums
}
