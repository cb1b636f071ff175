package automation

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/sim"
	"github.com/san-kum/heatsim/internal/storage"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var ErrUnknownParam = errors.New("automation: unknown sweep parameter")

// Scenario is a named list of runs read from YAML:
//
//	name: boundary study
//	runs:
//	  - name: cold
//	    preset: cooling
//	  - name: warm
//	    u0: 1
//	    u1: 1
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from the named preset, or the defaults, and applies
// the parameter keys present in its YAML mapping.
type ScenarioRun struct {
	Name   string
	Preset string
	Params sim.Params
}

func (r *ScenarioRun) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Name   string `yaml:"name"`
		Preset string `yaml:"preset"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	base := config.DefaultConfig()
	if head.Preset != "" {
		base = config.GetPreset(head.Preset)
		if base == nil {
			return fmt.Errorf("automation: unknown preset %q", head.Preset)
		}
	}
	if err := node.Decode(&base.Params); err != nil {
		return err
	}

	r.Name, r.Preset, r.Params = head.Name, head.Preset, base.Params
	return nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("automation: parse scenario: %w", err)
	}
	if len(s.Runs) == 0 {
		return nil, fmt.Errorf("automation: scenario %q has no runs", s.Name)
	}
	for i, r := range s.Runs {
		if err := config.Validate(r.Params); err != nil {
			return nil, fmt.Errorf("automation: run %d (%s): %w", i+1, r.Name, err)
		}
	}
	return &s, nil
}

func (s *Scenario) Params() []sim.Params {
	out := make([]sim.Params, len(s.Runs))
	for i, r := range s.Runs {
		out[i] = r.Params
	}
	return out
}

// Outcome pairs a finished run with the ID it was stored under, if any.
type Outcome struct {
	sim.BatchRun
	Name  string
	RunID string
}

// Execute runs every entry of the scenario concurrently. When store is not
// nil each successful run is saved. A failing run or save does not stop the
// others; it is recorded on its outcome and the first such error is returned
// alongside all outcomes. A failed save keeps the outcome's Result.
func Execute(s *Scenario, newSim func() *sim.Simulator, store *storage.Store, log logrus.FieldLogger) ([]Outcome, error) {
	runs := sim.RunBatch(newSim, s.Params())
	out := make([]Outcome, len(runs))

	var firstErr error
	for i, run := range runs {
		out[i] = Outcome{BatchRun: run, Name: s.Runs[i].Name}
		if run.Err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("automation: run %d (%s): %w", i+1, out[i].Name, run.Err)
			}
			continue
		}
		entry := log.WithFields(logrus.Fields{
			"scenario": s.Name,
			"run":      out[i].Name,
			"energy":   run.Result.FinalEnergy,
		})
		if store != nil {
			id, err := store.Save(run.Params, run.Result, run.Samples)
			if err != nil {
				out[i].Err = fmt.Errorf("save: %w", err)
				if firstErr == nil {
					firstErr = fmt.Errorf("automation: run %d (%s): %w", i+1, out[i].Name, out[i].Err)
				}
				continue
			}
			out[i].RunID = id
			entry = entry.WithField("run_id", id)
		}
		entry.Info("scenario run complete")
	}
	return out, firstErr
}

// Sweep varies one parameter linearly between From and To, inclusive.
type Sweep struct {
	Base  sim.Params
	Param string
	From  float64
	To    float64
	Steps int
}

// SweepParams lists the names accepted by Sweep.Param.
var SweepParams = []string{"alpha", "dx", "dt", "u0", "u1"}

func setParam(p *sim.Params, name string, v float64) error {
	switch name {
	case "alpha":
		p.Alpha = v
	case "dx":
		p.Dx = v
	case "dt":
		p.Dt = v
	case "u0":
		p.U0 = v
	case "u1":
		p.U1 = v
	default:
		return fmt.Errorf("%w: %q (available: %v)", ErrUnknownParam, name, SweepParams)
	}
	return nil
}

// Values returns the swept values. A single step yields From.
func (sw Sweep) Values() []float64 {
	if sw.Steps < 1 {
		return nil
	}
	vals := make([]float64, sw.Steps)
	if sw.Steps == 1 {
		vals[0] = sw.From
		return vals
	}
	inc := (sw.To - sw.From) / float64(sw.Steps-1)
	for i := range vals {
		vals[i] = sw.From + float64(i)*inc
	}
	vals[len(vals)-1] = sw.To
	return vals
}

// Params expands the sweep into validated parameter sets.
func (sw Sweep) Params() ([]sim.Params, error) {
	vals := sw.Values()
	if len(vals) == 0 {
		return nil, fmt.Errorf("automation: sweep needs at least one step, got %d", sw.Steps)
	}
	out := make([]sim.Params, 0, len(vals))
	for _, v := range vals {
		p := sw.Base
		if err := setParam(&p, sw.Param, v); err != nil {
			return nil, err
		}
		if err := config.Validate(p); err != nil {
			return nil, fmt.Errorf("automation: %s=%g: %w", sw.Param, v, err)
		}
		out = append(out, p)
	}
	return out, nil
}
