package analysis

import (
	"fmt"

	"github.com/san-kum/sdesim/internal/dynamo"
)

// Crossing is an upward pass of a component through a level between
// recorded points Step-1 and Step.
type Crossing struct {
	Step int
	// Time is linearly interpolated between the two recorded points.
	Time float64
	// Jump reports whether the crossing was caused by a jump.
	Jump bool
}

// Crossings returns every upward crossing of component idx through level.
// A trajectory that starts at or above level does not count as crossing at
// t0.
func Crossings(tr *dynamo.Trajectory, idx int, level float64) ([]Crossing, error) {
	if idx < 0 || idx >= tr.Dim() {
		return nil, &dynamo.ParameterError{
			Name:   "component",
			Value:  float64(idx),
			Reason: fmt.Sprintf("state has %d components", tr.Dim()),
		}
	}

	jumped := make(map[int]bool, len(tr.Jumps))
	for _, i := range tr.Jumps {
		jumped[i] = true
	}

	var out []Crossing
	for i := 1; i < tr.Len(); i++ {
		prev, cur := tr.States[i-1][idx], tr.States[i][idx]
		if prev >= level || cur < level {
			continue
		}
		frac := (level - prev) / (cur - prev)
		t0, t1 := tr.Times[i-1], tr.Times[i]
		out = append(out, Crossing{
			Step: i,
			Time: t0 + frac*(t1-t0),
			Jump: jumped[i],
		})
	}
	return out, nil
}

// FirstPassage returns the first time component idx reaches level from
// below. ok is false when it never does.
func FirstPassage(tr *dynamo.Trajectory, idx int, level float64) (t float64, ok bool, err error) {
	cs, err := Crossings(tr, idx, level)
	if err != nil {
		return 0, false, err
	}
	if len(cs) == 0 {
		return 0, false, nil
	}
	return cs[0].Time, true, nil
}
