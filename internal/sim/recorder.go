package sim

import (
	"fmt"

	"github.com/san-kum/sdesim/internal/dynamo"
)

// Recorder accumulates (t, y) pairs in step order. It is append-only and
// seals once Trajectory is called.
type Recorder struct {
	traj   *dynamo.Trajectory
	slab   *StateSlab
	dim    int
	sealed bool
}

// NewRecorder preallocates room for steps+1 points of dimension dim.
func NewRecorder(steps, dim int) *Recorder {
	return &Recorder{
		traj: &dynamo.Trajectory{
			Times:  make([]float64, 0, steps+1),
			States: make([]dynamo.State, 0, steps+1),
		},
		slab: NewStateSlab(dim, steps+1),
		dim:  dim,
	}
}

// Record appends a copy of y. It panics after Trajectory has been called or
// when y has the wrong dimension.
func (r *Recorder) Record(t float64, y dynamo.State) {
	if r.sealed {
		panic("sim: Record called on a finished recorder")
	}
	if len(y) != r.dim {
		panic(fmt.Sprintf("sim: recorded state has dimension %d, want %d", len(y), r.dim))
	}
	r.traj.Times = append(r.traj.Times, t)
	r.traj.States = append(r.traj.States, r.slab.GetAndCopy(y))
}

// MarkJump flags the most recently recorded point as produced by a jump.
func (r *Recorder) MarkJump() {
	if r.sealed || len(r.traj.Times) == 0 {
		return
	}
	r.traj.Jumps = append(r.traj.Jumps, len(r.traj.Times)-1)
}

func (r *Recorder) Len() int {
	return len(r.traj.Times)
}

// Trajectory seals the recorder and returns the finished trajectory.
func (r *Recorder) Trajectory() *dynamo.Trajectory {
	r.sealed = true
	return r.traj
}
