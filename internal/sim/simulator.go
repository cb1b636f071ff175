package sim

import (
	"fmt"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/sirupsen/logrus"
)

type Simulator struct {
	metrics   []Metric
	observers []Observer
	workers   int
	log       logrus.FieldLogger
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logrus.StandardLogger(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetWorkers enables the parallel interior update on the run's grid.
func (s *Simulator) SetWorkers(n int) { s.workers = n }

func (s *Simulator) SetLogger(l logrus.FieldLogger) {
	if l != nil {
		s.log = l
	}
}

// Advance performs loop index n on g: it sets the boundary values and takes
// one step. The sample is valid when report is true.
func Advance(g *heat.Grid, p Params, n int) (sample Sample, report bool) {
	g.SetBoundary(p.U0, p.U1)
	g.Step(p.Alpha, p.Dt)
	if !p.ShouldReport(n) {
		return Sample{}, false
	}
	return Sample{Step: n, Time: p.SampleTime(n), Energy: g.Energy()}, true
}

// Run integrates p.Nt steps. Every p.ReportEvery-th step (counting from 0)
// a sample with time (n+1)*dt is emitted to r and to the metrics. r may be
// nil. The only error source is r.
func (s *Simulator) Run(p Params, r Reporter) (*Result, error) {
	for _, m := range s.metrics {
		m.Reset()
	}
	if st, ok := r.(Starter); ok {
		if err := st.Start(p); err != nil {
			return nil, fmt.Errorf("sim: start reporter: %w", err)
		}
	}

	g := heat.NewGrid(p.Points(), p.Dx, p.Init)
	g.SetWorkers(s.workers)

	result := &Result{
		InitialEnergy: g.Energy(),
		Metrics:       make(map[string]float64),
	}

	s.log.WithFields(logrus.Fields{
		"points": p.Points(),
		"steps":  p.Nt,
		"k":      p.DiffusionNumber(),
		"ic":     p.Init.String(),
	}).Debug("simulation started")

	for n := 0; n < p.Nt; n++ {
		sample, report := Advance(g, p, n)
		result.Steps++

		for _, obs := range s.observers {
			obs.OnStep(n, g)
		}

		if !report {
			continue
		}

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		result.Samples++

		if r != nil {
			if err := r.Emit(sample); err != nil {
				return result, fmt.Errorf("sim: report step %d: %w", n, err)
			}
		}
	}

	result.FinalEnergy = g.Energy()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.WithFields(logrus.Fields{
		"steps":        result.Steps,
		"samples":      result.Samples,
		"final_energy": result.FinalEnergy,
	}).Debug("simulation finished")

	return result, nil
}
