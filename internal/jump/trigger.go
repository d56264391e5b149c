package jump

import (
	"math"
	"math/rand"

	"github.com/san-kum/sdesim/internal/dynamo"
)

type Kind int

const (
	KindCondition Kind = iota + 1
	KindIntensity
)

func (k Kind) String() string {
	switch k {
	case KindCondition:
		return "condition"
	case KindIntensity:
		return "intensity"
	default:
		return "unknown"
	}
}

// Trigger is implemented only by *Condition and *Intensity.
type Trigger interface {
	Kind() Kind
	sealed()
}

// Condition fires a deterministic jump whenever its predicate holds.
type Condition struct {
	when    dynamo.JumpCondition
	jumpMap dynamo.JumpMap
}

func NewCondition(when dynamo.JumpCondition, jumpMap dynamo.JumpMap) (*Condition, error) {
	if when == nil {
		return nil, &dynamo.ParameterError{Name: "jump_condition", Reason: "must not be nil"}
	}
	if jumpMap == nil {
		return nil, &dynamo.ParameterError{Name: "jump_map", Reason: "must not be nil"}
	}
	return &Condition{when: when, jumpMap: jumpMap}, nil
}

func (c *Condition) Kind() Kind { return KindCondition }
func (c *Condition) sealed()    {}

// ShouldJump evaluates the predicate against the pre-step state and time.
// Consecutive firings are not debounced.
func (c *Condition) ShouldJump(y dynamo.State, t float64) bool {
	return c.when(y, t)
}

func (c *Condition) Apply(y dynamo.State, t float64) (dynamo.State, error) {
	next := c.jumpMap(y, t)
	if err := dynamo.CheckShape("jump map", len(y), next); err != nil {
		return nil, err
	}
	return next, nil
}

// Periodic fires when t mod period < tolerance. The remainder is taken in
// [0, period) so negative times behave like positive ones.
func Periodic(period, tolerance float64) dynamo.JumpCondition {
	return func(_ dynamo.State, t float64) bool {
		m := math.Mod(t, period)
		if m < 0 {
			m += period
		}
		return m < tolerance
	}
}

// Intensity adds a jump with per-step probability rate*dt.
type Intensity struct {
	rate float64
	size dynamo.JumpSizeFn
}

func NewIntensity(rate float64, size dynamo.JumpSizeFn) (*Intensity, error) {
	if !(rate >= 0) || math.IsInf(rate, 0) {
		return nil, &dynamo.ParameterError{Name: "lambda", Value: rate, Reason: "must be non-negative and finite"}
	}
	if size == nil {
		return nil, &dynamo.ParameterError{Name: "jump_size", Reason: "must not be nil"}
	}
	return &Intensity{rate: rate, size: size}, nil
}

func (in *Intensity) Kind() Kind { return KindIntensity }
func (in *Intensity) sealed()    {}

func (in *Intensity) Rate() float64 { return in.rate }

// Probability is the per-step jump probability rate*dt clamped to [0, 1].
func (in *Intensity) Probability(dt float64) float64 {
	return math.Min(in.rate*dt, 1)
}

// MaybeJump draws one uniform u and returns y + size(y) when u < rate*dt,
// otherwise y itself. A zero rate draws nothing from rng.
func (in *Intensity) MaybeJump(y dynamo.State, dt float64, rng *rand.Rand) (dynamo.State, bool, error) {
	if in.rate == 0 {
		return y, false, nil
	}
	if rng.Float64() >= in.rate*dt {
		return y, false, nil
	}

	inc := in.size(y, rng)
	if err := dynamo.CheckShape("jump size", len(y), inc); err != nil {
		return nil, false, err
	}
	return y.Add(inc), true, nil
}
