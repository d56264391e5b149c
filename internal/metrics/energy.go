package metrics

import (
	"math"

	"github.com/san-kum/sdesim/internal/dynamo"
)

// Energy averages a conserved quantity over every observed point.
type Energy struct {
	name        string
	ham         dynamo.Hamiltonian
	samples     int
	totalEnergy float64
}

func NewEnergy(ham dynamo.Hamiltonian) *Energy {
	return &Energy{
		name: "energy",
		ham:  ham,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(t float64, x dynamo.State, jumped bool) {
	e.totalEnergy += e.ham.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative deviation from the initial energy.
// Noise and non-conservative jumps both show up here.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
	ham           dynamo.Hamiltonian
}

func NewEnergyDrift(ham dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		ham:  ham,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(t float64, x dynamo.State, jumped bool) {
	energy := e.ham.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// JumpEnergy sums the energy removed by jumps, E(before) - E(after), over
// every jump step. Energy added by a jump counts negative.
type JumpEnergy struct {
	name    string
	ham     dynamo.Hamiltonian
	prev    float64
	samples int
	total   float64
}

func NewJumpEnergy(ham dynamo.Hamiltonian) *JumpEnergy {
	return &JumpEnergy{
		name: "jump_energy_loss",
		ham:  ham,
	}
}

func (j *JumpEnergy) Name() string { return j.name }

func (j *JumpEnergy) Observe(t float64, x dynamo.State, jumped bool) {
	energy := j.ham.Energy(x)
	if jumped && j.samples > 0 {
		j.total += j.prev - energy
	}
	j.prev = energy
	j.samples++
}

func (j *JumpEnergy) Value() float64 { return j.total }

func (j *JumpEnergy) Reset() {
	j.prev, j.total = 0, 0
	j.samples = 0
}
