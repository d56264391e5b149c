package metrics

import (
	"math"

	"github.com/san-kum/sdesim/internal/dynamo"
)

// Stability reports the fraction of observed points inside the box
// |x_i| <= threshold. It also remembers when the path first left the box and
// how many exits were caused by a jump rather than by diffusion.
type Stability struct {
	name      string
	threshold float64
	inside    int
	samples   int
	wasInside bool
	exitTime  float64
	exited    bool
	jumpExits int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) contains(x dynamo.State) bool {
	for _, val := range x {
		if math.Abs(val) > s.threshold {
			return false
		}
	}
	return true
}

func (s *Stability) Observe(t float64, x dynamo.State, jumped bool) {
	in := s.contains(x)
	if in {
		s.inside++
	}
	if s.samples > 0 && s.wasInside && !in {
		if !s.exited {
			s.exited = true
			s.exitTime = t
		}
		if jumped {
			s.jumpExits++
		}
	}
	s.wasInside = in
	s.samples++
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return float64(s.inside) / float64(s.samples)
}

// ExitTime is the first time the path left the box; ok is false if it never
// did. A path that starts outside has no exit.
func (s *Stability) ExitTime() (t float64, ok bool) {
	return s.exitTime, s.exited
}

// JumpExits counts exits whose leaving step was a jump.
func (s *Stability) JumpExits() int { return s.jumpExits }

func (s *Stability) Reset() {
	*s = Stability{name: s.name, threshold: s.threshold}
}
