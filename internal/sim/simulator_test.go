package sim

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/integrators"
	"github.com/san-kum/sdesim/internal/jump"
	"gonum.org/v1/gonum/stat"
)

func oscillator() dynamo.System {
	return dynamo.System{
		Drift: func(y dynamo.State) dynamo.State {
			return dynamo.State{y[1], -y[0]}
		},
		Diffusion: func(y dynamo.State) dynamo.State {
			return dynamo.State{0, 0.1}
		},
	}
}

func constant(c float64) dynamo.System {
	return dynamo.System{
		Drift: func(y dynamo.State) dynamo.State {
			return make(dynamo.State, len(y))
		},
		Diffusion: func(y dynamo.State) dynamo.State {
			return dynamo.State{c}
		},
	}
}

func flipVelocity(y dynamo.State, t float64) dynamo.State {
	return dynamo.State{y[0], -y[1]}
}

func never(dynamo.State, float64) bool { return false }

func mustConfig(t *testing.T, t0, t1, dt, sigma float64) dynamo.Config {
	t.Helper()
	cfg, err := dynamo.NewConfig(t0, t1, dt, sigma)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func mustCondition(t *testing.T, when dynamo.JumpCondition, m dynamo.JumpMap) *jump.Condition {
	t.Helper()
	c, err := jump.NewCondition(when, m)
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	return c
}

func TestSimulatorRun_LengthAndSpacing(t *testing.T) {
	tests := []struct {
		t0, t1, dt float64
		want       int
	}{
		{0, 1, 0.1, 11},
		{0, 10, 0.01, 1001},
		{2, 3, 0.3, 4},
		{-1, 1, 0.25, 9},
		{0, 1, 2, 1},
	}

	for _, tt := range tests {
		cfg := mustConfig(t, tt.t0, tt.t1, tt.dt, 0.2)
		s, err := New(oscillator(), nil, dynamo.State{1, 0}, cfg)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		res, err := s.Run()
		if err != nil {
			t.Fatalf("run: %v", err)
		}

		tr := res.Trajectory
		if tr.Len() != tt.want || len(tr.States) != tt.want {
			t.Errorf("[%v,%v] dt=%v: expected %d points, got %d", tt.t0, tt.t1, tt.dt, tt.want, tr.Len())
			continue
		}
		if res.StepsTaken != tt.want-1 {
			t.Errorf("steps taken = %d, want %d", res.StepsTaken, tt.want-1)
		}
		if tr.Times[0] != tt.t0 || !tr.States[0].Equal(dynamo.State{1, 0}) {
			t.Errorf("first point = (%v, %v)", tr.Times[0], tr.States[0])
		}
		for i := 1; i < tr.Len(); i++ {
			if tr.Times[i] <= tr.Times[i-1] {
				t.Fatalf("times not increasing at %d", i)
			}
			if math.Abs(tr.Times[i]-tr.Times[i-1]-tt.dt) > 1e-9 {
				t.Fatalf("uneven spacing at %d: %v", i, tr.Times[i]-tr.Times[i-1])
			}
		}
	}
}

func TestSimulatorRun_ZeroNoiseIsEuler(t *testing.T) {
	cfg := mustConfig(t, 0, 1, 0.1, 0)
	cond := mustCondition(t, never, flipVelocity)

	a, _ := NewHybrid(oscillator(), cond, dynamo.State{1, 0}, cfg.WithSeed(1))
	b, _ := NewHybrid(oscillator(), cond, dynamo.State{1, 0}, cfg.WithSeed(2))

	ra, err := a.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	rb, err := b.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	euler := integrators.NewEuler()
	x := dynamo.State{1, 0}
	for i := range ra.Trajectory.States {
		if !ra.Trajectory.States[i].Equal(x) || !rb.Trajectory.States[i].Equal(x) {
			t.Fatalf("step %d: got %v / %v, want %v", i, ra.Trajectory.States[i], rb.Trajectory.States[i], x)
		}
		x, _ = euler.Step(x, 0.1, oscillator().Drift)
	}
	if ra.JumpCount() != 0 {
		t.Errorf("jumps = %d, want 0", ra.JumpCount())
	}
}

func TestHybrid_JumpReplacesDiffusion(t *testing.T) {
	// fires at t = 0, 0.5, 1.0 ...
	when := jump.Periodic(0.5, 0.01)
	cfg := mustConfig(t, 0, 2, 0.1, 5)
	cond := mustCondition(t, when, flipVelocity)

	s, err := NewHybrid(oscillator(), cond, dynamo.State{1, 0.5}, cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	res, err := s.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	tr := res.Trajectory
	jumped := make(map[int]bool)
	for _, i := range tr.Jumps {
		jumped[i] = true
	}
	for i := 1; i < tr.Len(); i++ {
		prevT, prevY := tr.At(i - 1)
		fired := when(prevY, prevT)
		if fired != jumped[i] {
			t.Errorf("step into %d: fired=%v, recorded jump=%v", i, fired, jumped[i])
		}
		if fired && !tr.States[i].Equal(flipVelocity(prevY, prevT)) {
			t.Errorf("step into %d: got %v, want exact jump %v", i, tr.States[i], flipVelocity(prevY, prevT))
		}
	}
	if len(tr.Jumps) < 3 {
		t.Errorf("expected at least 3 jumps, got %v", tr.Jumps)
	}
}

func TestHybrid_AlwaysFiringIgnoresSigma(t *testing.T) {
	always := func(dynamo.State, float64) bool { return true }
	cond := mustCondition(t, always, flipVelocity)

	var trajectories []*dynamo.Trajectory
	for _, sigma := range []float64{0, 1, 10} {
		s, _ := NewHybrid(oscillator(), cond, dynamo.State{1, 2}, mustConfig(t, 0, 1, 0.1, sigma))
		res, err := s.Run()
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		trajectories = append(trajectories, res.Trajectory)
	}

	for i := range trajectories[0].States {
		want := dynamo.State{1, 2}
		if i%2 == 1 {
			want = dynamo.State{1, -2}
		}
		for _, tr := range trajectories {
			if !tr.States[i].Equal(want) {
				t.Fatalf("point %d: got %v, want %v", i, tr.States[i], want)
			}
		}
	}
}

func TestJumpDiffusion_ZeroRateReducesToSDE(t *testing.T) {
	size := func(y dynamo.State, _ *rand.Rand) dynamo.State { return dynamo.State{0.5 * y[0]} }
	in, err := jump.NewIntensity(0, size)
	if err != nil {
		t.Fatalf("intensity: %v", err)
	}

	cfg := mustConfig(t, 0, 5, 0.01, 0.3).WithSeed(11)
	jd, _ := NewJumpDiffusion(constant(1), in, dynamo.State{1}, cfg)
	plain, _ := New(constant(1), nil, dynamo.State{1}, cfg)

	a, err := jd.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := plain.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for i := range a.Trajectory.States {
		if !a.Trajectory.States[i].Equal(b.Trajectory.States[i]) {
			t.Fatalf("point %d differs: %v vs %v", i, a.Trajectory.States[i], b.Trajectory.States[i])
		}
	}
}

func TestJumpDiffusion_Additivity(t *testing.T) {
	const (
		lambda = 8.0
		dt     = 0.01
		sigma  = 0.2
		seed   = 5
	)
	sys := dynamo.System{
		Drift:     func(y dynamo.State) dynamo.State { return dynamo.State{0.05 * y[0]} },
		Diffusion: func(y dynamo.State) dynamo.State { return dynamo.State{0.1 * y[0]} },
	}
	size := func(y dynamo.State, _ *rand.Rand) dynamo.State { return dynamo.State{0.5 * y[0]} }
	in, _ := jump.NewIntensity(lambda, size)

	s, _ := NewJumpDiffusion(sys, in, dynamo.State{1}, mustConfig(t, 0, 3, dt, sigma).WithSeed(seed))
	res, err := s.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// replay the same random stream by hand
	rng := rand.New(rand.NewSource(seed))
	em := integrators.NewEulerMaruyama()
	y := dynamo.State{1}
	jumps := 0
	for i := 1; i < res.Trajectory.Len(); i++ {
		y, _ = em.Advance(y, dt, sys.Drift, sys.Diffusion, sigma, rng)
		if rng.Float64() < lambda*dt {
			y = y.Add(size(y, rng))
			jumps++
		}
		if !res.Trajectory.States[i].Equal(y) {
			t.Fatalf("point %d: got %v, want %v", i, res.Trajectory.States[i], y)
		}
	}
	if jumps == 0 || res.JumpCount() != jumps {
		t.Errorf("jump count = %d, replay saw %d", res.JumpCount(), jumps)
	}
}

func TestSimulator_VarianceScaling(t *testing.T) {
	const (
		c     = 1.5
		sigma = 0.4
		dt    = 0.02
		runs  = 20000
	)

	s, err := New(constant(c), nil, dynamo.State{0}, mustConfig(t, 0, dt, dt, sigma).WithSeed(3))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	finals := make([]float64, runs)
	for i := range finals {
		res, err := s.Run()
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if res.Trajectory.Len() != 2 {
			t.Fatalf("expected one step, got %d points", res.Trajectory.Len())
		}
		_, y := res.Trajectory.Final()
		finals[i] = y[0]
	}

	want := (c * sigma) * (c * sigma) * dt
	if got := stat.Variance(finals, nil); math.Abs(got-want)/want > 0.05 {
		t.Errorf("variance = %.6f, want %.6f", got, want)
	}
}

func TestSimulator_InvalidConstruction(t *testing.T) {
	size := func(y dynamo.State, _ *rand.Rand) dynamo.State { return y }
	valid := dynamo.Config{T0: 0, T1: 1, Dt: 0.1, Sigma: 0.1}

	tests := []struct {
		name  string
		build func() (*Simulator, error)
	}{
		{"zero dt", func() (*Simulator, error) {
			return New(oscillator(), nil, dynamo.State{1, 0}, dynamo.Config{T0: 0, T1: 1, Dt: 0})
		}},
		{"negative dt", func() (*Simulator, error) {
			return New(oscillator(), nil, dynamo.State{1, 0}, dynamo.Config{T0: 0, T1: 1, Dt: -0.1})
		}},
		{"t1 before t0", func() (*Simulator, error) {
			return New(oscillator(), nil, dynamo.State{1, 0}, dynamo.Config{T0: 1, T1: 0, Dt: 0.1})
		}},
		{"t1 equals t0", func() (*Simulator, error) {
			return New(oscillator(), nil, dynamo.State{1, 0}, dynamo.Config{T0: 1, T1: 1, Dt: 0.1})
		}},
		{"negative sigma", func() (*Simulator, error) {
			return New(oscillator(), nil, dynamo.State{1, 0}, dynamo.Config{T0: 0, T1: 1, Dt: 0.1, Sigma: -1})
		}},
		{"negative lambda", func() (*Simulator, error) {
			in, err := jump.NewIntensity(-1, size)
			if err != nil {
				return nil, err
			}
			return NewJumpDiffusion(oscillator(), in, dynamo.State{1, 0}, valid)
		}},
		{"nil drift", func() (*Simulator, error) {
			return New(dynamo.System{Diffusion: oscillator().Diffusion}, nil, dynamo.State{1, 0}, valid)
		}},
		{"empty state", func() (*Simulator, error) {
			return New(oscillator(), nil, dynamo.State{}, valid)
		}},
		{"nan state", func() (*Simulator, error) {
			return New(oscillator(), nil, dynamo.State{math.NaN(), 0}, valid)
		}},
		{"hybrid without condition", func() (*Simulator, error) {
			return NewHybrid(oscillator(), nil, dynamo.State{1, 0}, valid)
		}},
		{"jump diffusion without intensity", func() (*Simulator, error) {
			return NewJumpDiffusion(oscillator(), nil, dynamo.State{1, 0}, valid)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.build()
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
			if s != nil {
				t.Error("expected no simulator")
			}
		})
	}
}

func TestSimulator_ShapeErrorAbortsRun(t *testing.T) {
	sys := oscillator()
	sys.Diffusion = func(y dynamo.State) dynamo.State {
		if y[0] < 0.9 {
			return dynamo.State{0}
		}
		return dynamo.State{0, 0}
	}

	s, _ := New(sys, nil, dynamo.State{1, 0}, mustConfig(t, 0, 10, 0.1, 0))
	res, err := s.Run()
	if res != nil {
		t.Error("expected no partial result")
	}
	if !errors.Is(err, dynamo.ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) || simErr.Step == 0 {
		t.Fatalf("expected a mid-run SimulationError, got %+v", simErr)
	}
	if simErr.Time != s.Config().TimeAt(simErr.Step) {
		t.Errorf("time %v does not match step %d", simErr.Time, simErr.Step)
	}
	if simErr.State[0] >= 0.9 {
		t.Errorf("state %v should be the one that produced the bad diffusion", simErr.State)
	}
}

func TestSimulator_OverflowAbortsRun(t *testing.T) {
	sys := dynamo.System{
		Drift:     func(y dynamo.State) dynamo.State { return dynamo.State{y[0] * y[0] * 1e100} },
		Diffusion: func(y dynamo.State) dynamo.State { return dynamo.State{0} },
	}
	s, _ := New(sys, nil, dynamo.State{1}, mustConfig(t, 0, 10, 0.1, 0))

	res, err := s.Run()
	if res != nil {
		t.Error("expected no partial result")
	}
	if !errors.Is(err, dynamo.ErrNumericalOverflow) {
		t.Fatalf("expected ErrNumericalOverflow, got %v", err)
	}

	// y: 1 -> ~1e99 -> ~1e297 -> +Inf, so the third transition fails
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %T", err)
	}
	if simErr.Step != 2 || simErr.Time != s.Config().TimeAt(2) {
		t.Errorf("got step %d at t=%v, want step 2 at t=%v", simErr.Step, simErr.Time, s.Config().TimeAt(2))
	}
	if !simErr.State.IsValid() || simErr.State[0] < 1e296 {
		t.Errorf("state should be the last finite one, got %v", simErr.State)
	}
}

func TestSimulator_ReseedReproduces(t *testing.T) {
	s, _ := New(oscillator(), nil, dynamo.State{1, 0}, mustConfig(t, 0, 1, 0.01, 1))

	s.Reseed(77)
	a, _ := s.Run()
	b, _ := s.Run()
	s.Reseed(77)
	c, _ := s.Run()

	_, fa := a.Trajectory.Final()
	_, fb := b.Trajectory.Final()
	_, fc := c.Trajectory.Final()
	if !fa.Equal(fc) {
		t.Errorf("reseeded run differs: %v vs %v", fa, fc)
	}
	if fa.Equal(fb) {
		t.Error("consecutive runs should continue the random stream")
	}
	if !a.Trajectory.States[0].Equal(b.Trajectory.States[0]) {
		t.Error("each run must start from y0")
	}
}

func TestSimulator_WithRand(t *testing.T) {
	cfg := mustConfig(t, 0, 1, 0.01, 1)
	a, _ := New(oscillator(), nil, dynamo.State{1, 0}, cfg, WithRand(rand.New(rand.NewSource(9))))
	b, _ := New(oscillator(), nil, dynamo.State{1, 0}, cfg.WithSeed(9))

	ra, _ := a.Run()
	rb, _ := b.Run()
	_, fa := ra.Trajectory.Final()
	_, fb := rb.Trajectory.Final()
	if !fa.Equal(fb) {
		t.Errorf("injected source and seeded config disagree: %v vs %v", fa, fb)
	}
}

type countMetric struct {
	count, jumps int
}

func (m *countMetric) Name() string { return "count" }
func (m *countMetric) Observe(t float64, y dynamo.State, jumped bool) {
	m.count++
	if jumped {
		m.jumps++
	}
}
func (m *countMetric) Value() float64 { return float64(m.count) }
func (m *countMetric) Reset()         { m.count, m.jumps = 0, 0 }

func TestSimulator_MetricsAndObservers(t *testing.T) {
	metric := &countMetric{}
	var steps []int
	obs := ObserverFunc(func(step int, t float64, y dynamo.State, jumped bool) {
		steps = append(steps, step)
	})

	cond := mustCondition(t, jump.Periodic(0.5, 0.01), flipVelocity)
	s, _ := NewHybrid(oscillator(), cond, dynamo.State{1, 0}, mustConfig(t, 0, 1, 0.1, 0.1),
		WithMetric(metric), WithObserver(obs))

	res, err := s.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Metrics["count"] != 11 {
		t.Errorf("metric saw %v points, want 11", res.Metrics["count"])
	}
	if metric.jumps != res.JumpCount() {
		t.Errorf("metric jumps %d, result jumps %d", metric.jumps, res.JumpCount())
	}
	if len(steps) != 11 || steps[0] != 0 || steps[10] != 10 {
		t.Errorf("observer steps = %v", steps)
	}

	// metrics reset between runs
	if _, err := s.Run(); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if metric.count != 11 {
		t.Errorf("metric not reset between runs: %d", metric.count)
	}
}

func TestHybrid_BouncingOscillatorScenario(t *testing.T) {
	when := jump.Periodic(1.0, 1e-2)
	cond := mustCondition(t, when, flipVelocity)
	s, err := NewHybrid(oscillator(), cond, dynamo.State{1, 0}, mustConfig(t, 0, 10, 0.01, 0.1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	res, err := s.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	tr := res.Trajectory
	if tr.Len() != 1001 {
		t.Fatalf("expected 1001 points, got %d", tr.Len())
	}
	if tr.Times[0] != 0 || !tr.States[0].Equal(dynamo.State{1, 0}) {
		t.Errorf("first point = (%v, %v)", tr.Times[0], tr.States[0])
	}

	flips := 0
	for _, i := range tr.Jumps {
		prev, cur := tr.States[i-1], tr.States[i]
		if cur[0] != prev[0] || cur[1] != -prev[1] {
			t.Errorf("jump into %d is not an exact velocity flip: %v -> %v", i, prev, cur)
		}
		if prev[1] != 0 {
			flips++
		}
	}
	if flips == 0 {
		t.Error("expected at least one jump flipping a non-zero velocity")
	}
}
