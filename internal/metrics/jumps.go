package metrics

import "github.com/san-kum/sdesim/internal/dynamo"

// JumpRate is the observed number of jumps per unit time. For an intensity
// trigger it estimates lambda (biased low when lambda*dt is not small).
type JumpRate struct {
	name   string
	jumps  int
	first  float64
	last   float64
	points int
}

func NewJumpRate() *JumpRate {
	return &JumpRate{name: "jump_rate"}
}

func (j *JumpRate) Name() string { return j.name }

func (j *JumpRate) Observe(t float64, x dynamo.State, jumped bool) {
	if j.points == 0 {
		j.first = t
	}
	j.last = t
	j.points++
	if jumped {
		j.jumps++
	}
}

func (j *JumpRate) Jumps() int { return j.jumps }

func (j *JumpRate) Value() float64 {
	span := j.last - j.first
	if span <= 0 {
		return 0
	}
	return float64(j.jumps) / span
}

func (j *JumpRate) Reset() {
	j.jumps, j.points = 0, 0
	j.first, j.last = 0, 0
}
