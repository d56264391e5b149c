package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/sdesim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ComponentSummary describes one state component over a trajectory.
type ComponentSummary struct {
	Index  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Final  float64
}

// Summarize computes per-component statistics of a trajectory.
func Summarize(tr *dynamo.Trajectory) []ComponentSummary {
	out := make([]ComponentSummary, tr.Dim())
	for j := range out {
		series := tr.Component(j)
		mean, std := stat.MeanStdDev(series, nil)
		if len(series) < 2 {
			std = 0
		}
		out[j] = ComponentSummary{
			Index:  j,
			Mean:   mean,
			StdDev: std,
			Min:    floats.Min(series),
			Max:    floats.Max(series),
			Final:  series[len(series)-1],
		}
	}
	return out
}

// Moments holds the cross-run mean and unbiased variance of each component.
type Moments struct {
	Time     float64
	Mean     []float64
	Variance []float64
}

// EnsembleMoments computes the moments over runs at recorded point index step.
// All trajectories must share the same time grid and dimension.
func EnsembleMoments(trs []*dynamo.Trajectory, step int) (*Moments, error) {
	if len(trs) == 0 {
		return nil, fmt.Errorf("metrics: no trajectories")
	}
	dim := trs[0].Dim()
	samples := make([][]float64, dim)
	for j := range samples {
		samples[j] = make([]float64, len(trs))
	}

	for r, tr := range trs {
		if step < 0 || step >= tr.Len() {
			return nil, fmt.Errorf("metrics: step %d out of range for run %d (len %d)", step, r, tr.Len())
		}
		if tr.Dim() != dim {
			return nil, fmt.Errorf("metrics: run %d has dimension %d, want %d: %w", r, tr.Dim(), dim, dynamo.ErrShape)
		}
		if math.Abs(tr.Times[step]-trs[0].Times[step]) > 1e-9 {
			return nil, fmt.Errorf("metrics: run %d is on a different time grid", r)
		}
		for j := 0; j < dim; j++ {
			samples[j][r] = tr.States[step][j]
		}
	}

	m := &Moments{
		Time:     trs[0].Times[step],
		Mean:     make([]float64, dim),
		Variance: make([]float64, dim),
	}
	for j := range samples {
		m.Mean[j], m.Variance[j] = stat.MeanVariance(samples[j], nil)
		if len(trs) < 2 {
			m.Variance[j] = 0
		}
	}
	return m, nil
}
