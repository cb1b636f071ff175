package sim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/heatsim/internal/heat"
)

const (
	DefaultAlpha       = 1.0
	DefaultDx          = 1.0
	DefaultDt          = 0.001
	DefaultNx          = 10
	DefaultNt          = 10
	DefaultReportEvery = 10
)

// Params is a validated parameter set for one run. The simulator reads it
// as is; range checks belong to the caller.
type Params struct {
	Alpha       float64               `yaml:"alpha" json:"alpha"`
	U0          float64               `yaml:"u0" json:"u0"`
	U1          float64               `yaml:"u1" json:"u1"`
	Dx          float64               `yaml:"dx" json:"dx"`
	Dt          float64               `yaml:"dt" json:"dt"`
	Nx          int                   `yaml:"nx" json:"nx"`
	Nt          int                   `yaml:"nt" json:"nt"`
	Init        heat.InitialCondition `yaml:"ic" json:"ic"`
	ReportEvery int                   `yaml:"report_every" json:"report_every"`
}

func DefaultParams() Params {
	return Params{
		Alpha:       DefaultAlpha,
		Dx:          DefaultDx,
		Dt:          DefaultDt,
		Nx:          DefaultNx,
		Nt:          DefaultNt,
		Init:        heat.Constant,
		ReportEvery: DefaultReportEvery,
	}
}

// Points is the node count, one more than the interval count.
func (p Params) Points() int { return p.Nx + 1 }

func (p Params) DiffusionNumber() float64 {
	return heat.DiffusionNumber(p.Alpha, p.Dt, p.Dx)
}

func (p Params) reportEvery() int {
	if p.ReportEvery <= 0 {
		return DefaultReportEvery
	}
	return p.ReportEvery
}

// ShouldReport reports whether loop index n emits a sample.
func (p Params) ShouldReport(n int) bool { return n%p.reportEvery() == 0 }

// SampleTime is the time reached after loop index n.
func (p Params) SampleTime(n int) float64 { return float64(n+1) * p.Dt }

// String renders the parameter summary printed before a run.
func (p Params) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nx = %d\n", p.Nx)
	fmt.Fprintf(&b, "Nt = %d\n", p.Nt)
	fmt.Fprintf(&b, "bc = %s %s\n", FormatReal(p.U0, 6), FormatReal(p.U1, 6))
	fmt.Fprintf(&b, "alpha = %s\n", FormatReal(p.Alpha, 6))
	fmt.Fprintf(&b, "dx = %s\n", FormatReal(p.Dx, 6))
	fmt.Fprintf(&b, "dt = %s\n", FormatReal(p.Dt, 6))
	fmt.Fprintf(&b, "ic = %s", p.Init)
	return b.String()
}

// FormatReal prints v with prec significant digits in %g style; prec < 0
// gives the shortest exact representation.
func FormatReal(v float64, prec int) string {
	return strconv.FormatFloat(v, 'g', prec, 64)
}

// Sample is one reported point of the energy curve. Step is the 0-based
// loop index that produced it.
type Sample struct {
	Step   int     `json:"step"`
	Time   float64 `json:"time"`
	Energy float64 `json:"energy"`
}

// Reporter receives samples in step order.
type Reporter interface {
	Emit(s Sample) error
}

// Starter is implemented by reporters that need to act before the first
// step, such as writing a header.
type Starter interface {
	Start(p Params) error
}

// Metric accumulates a diagnostic over the sample stream.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Observer sees the grid after every step. It must not keep g.
type Observer interface {
	OnStep(n int, g *heat.Grid)
}

type Result struct {
	Steps         int                `json:"steps"`
	Samples       int                `json:"samples"`
	InitialEnergy float64            `json:"initial_energy"`
	FinalEnergy   float64            `json:"final_energy"`
	Metrics       map[string]float64 `json:"metrics"`
}
