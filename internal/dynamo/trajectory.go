package dynamo

// Trajectory is the ordered record of a run. Times[i] and States[i] belong to
// step index i; index 0 holds (t0, y0).
type Trajectory struct {
	Times  []float64
	States []State
	// Jumps lists the step indices i whose transition into States[i] applied a jump.
	Jumps []int
}

func (tr *Trajectory) Len() int {
	return len(tr.Times)
}

func (tr *Trajectory) At(i int) (float64, State) {
	return tr.Times[i], tr.States[i]
}

func (tr *Trajectory) Final() (float64, State) {
	return tr.At(tr.Len() - 1)
}

// Component extracts state component j over time. It returns nil when j is
// outside [0, Dim()).
func (tr *Trajectory) Component(j int) []float64 {
	if j < 0 || j >= tr.Dim() {
		return nil
	}
	out := make([]float64, len(tr.States))
	for i, s := range tr.States {
		out[i] = s[j]
	}
	return out
}

func (tr *Trajectory) Dim() int {
	if len(tr.States) == 0 {
		return 0
	}
	return len(tr.States[0])
}
