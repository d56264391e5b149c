package sim

import "github.com/san-kum/sdesim/internal/dynamo"

// Observer is notified of every recorded point, including the initial one
// (step 0). jumped reports whether a jump produced y.
type Observer interface {
	OnStep(step int, t float64, y dynamo.State, jumped bool)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, t float64, y dynamo.State, jumped bool)

func (f ObserverFunc) OnStep(step int, t float64, y dynamo.State, jumped bool) {
	f(step, t, y, jumped)
}

type Metric interface {
	Name() string
	Observe(t float64, y dynamo.State, jumped bool)
	Value() float64
	Reset()
}

type Result struct {
	Trajectory *dynamo.Trajectory
	Metrics    map[string]float64
	StepsTaken int
}

// JumpCount is the number of steps that applied a jump.
func (r *Result) JumpCount() int {
	return len(r.Trajectory.Jumps)
}
