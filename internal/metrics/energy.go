package metrics

import (
	"math"

	"github.com/san-kum/heatsim/internal/sim"
)

// EnergyDrift tracks the largest relative deviation of the reported energy
// from the first sample. With boundaries equal to a uniform initial
// temperature it should stay at rounding level.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s sim.Sample) {
	if e.samples == 0 {
		e.initial = s.Energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(s.Energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// EnergyDecay is (last - first) / |first| over the observed samples;
// negative when heat leaves the rod.
type EnergyDecay struct {
	name        string
	first, last float64
	samples     int
}

func NewEnergyDecay() *EnergyDecay {
	return &EnergyDecay{name: "energy_decay"}
}

func (e *EnergyDecay) Name() string { return e.name }

func (e *EnergyDecay) Observe(s sim.Sample) {
	if e.samples == 0 {
		e.first = s.Energy
	}
	e.last = s.Energy
	e.samples++
}

func (e *EnergyDecay) Value() float64 {
	if e.samples == 0 || e.first == 0 {
		return 0
	}
	return (e.last - e.first) / math.Abs(e.first)
}

func (e *EnergyDecay) Reset() {
	e.first, e.last = 0, 0
	e.samples = 0
}
