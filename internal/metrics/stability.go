package metrics

import (
	"math"

	"github.com/san-kum/heatsim/internal/sim"
)

// Stability is the fraction of samples whose energy is finite and within
// threshold in magnitude. It only observes; an unstable run still finishes.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

// NewStability flags samples with |energy| above threshold. A threshold of
// 0 only flags NaN and Inf.
func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(smp sim.Sample) {
	s.samples++
	e := smp.Energy
	if math.IsNaN(e) || math.IsInf(e, 0) || (s.threshold > 0 && math.Abs(e) > s.threshold) {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Default returns the metrics attached to every CLI run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewEnergyDrift(),
		NewEnergyDecay(),
		NewStability(0),
	}
}
