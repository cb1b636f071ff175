package sim

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/heatsim/internal/heat"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	if p.Alpha != 1.0 || p.Dx != 1.0 || p.Dt != 0.001 {
		t.Errorf("unexpected physical defaults: %+v", p)
	}
	if p.Nx != 10 || p.Nt != 10 {
		t.Errorf("unexpected grid defaults: nx=%d nt=%d", p.Nx, p.Nt)
	}
	if p.U0 != 0 || p.U1 != 0 {
		t.Errorf("unexpected boundary defaults: %v %v", p.U0, p.U1)
	}
	if p.Init != heat.Constant {
		t.Errorf("expected const ic, got %s", p.Init)
	}
	if p.Points() != 11 {
		t.Errorf("expected 11 points, got %d", p.Points())
	}
}

func TestParamsString(t *testing.T) {
	p := DefaultParams()
	p.U0, p.U1 = 0.5, -2
	p.Init = heat.Sinusoidal

	want := "Nx = 10\nNt = 10\nbc = 0.5 -2\nalpha = 1\ndx = 1\ndt = 0.001\nic = sin"
	if got := p.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestSimulatorRun_SampleSchedule(t *testing.T) {
	tests := []struct {
		name  string
		nt    int
		every int
		steps []int
	}{
		{"no steps", 0, 10, nil},
		{"single step", 1, 10, []int{0}},
		{"twenty steps", 20, 10, []int{0, 10}},
		{"twenty one steps", 21, 10, []int{0, 10, 20}},
		{"every step", 3, 1, []int{0, 1, 2}},
		{"unset period", 11, 0, []int{0, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			p.Nt = tt.nt
			p.ReportEvery = tt.every

			rec := NewRecorder()
			res, err := New().Run(p, rec)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if res.Steps != tt.nt {
				t.Errorf("expected %d steps, got %d", tt.nt, res.Steps)
			}
			if len(rec.Samples) != len(tt.steps) || res.Samples != len(tt.steps) {
				t.Fatalf("expected %d samples, got %d (result says %d)", len(tt.steps), len(rec.Samples), res.Samples)
			}
			for i, s := range rec.Samples {
				if s.Step != tt.steps[i] {
					t.Errorf("sample %d: step %d, want %d", i, s.Step, tt.steps[i])
				}
				if want := float64(tt.steps[i]+1) * p.Dt; s.Time != want {
					t.Errorf("sample %d: time %v, want %v", i, s.Time, want)
				}
			}
		})
	}
}

func TestSimulatorRun_MatchesManualLoop(t *testing.T) {
	p := DefaultParams()
	p.Nx, p.Nt, p.Dx, p.Dt = 16, 35, 0.25, 0.01
	p.U0, p.U1 = 1.5, -0.5
	p.Init = heat.Sinusoidal

	rec := NewRecorder()
	if _, err := New().Run(p, rec); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	g := heat.NewGrid(p.Nx+1, p.Dx, p.Init)
	var want []float64
	for n := 0; n < p.Nt; n++ {
		g.SetBoundary(p.U0, p.U1)
		g.Step(p.Alpha, p.Dt)
		if n%10 == 0 {
			want = append(want, g.Energy())
		}
	}

	got := rec.Energies()
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: energy %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAdvance(t *testing.T) {
	p := DefaultParams()
	p.ReportEvery = 3
	p.U0, p.U1 = 2, -1

	if !p.ShouldReport(0) || p.ShouldReport(2) || !p.ShouldReport(6) {
		t.Error("unexpected report schedule for period 3")
	}
	p.ReportEvery = 0
	if !p.ShouldReport(10) || p.ShouldReport(5) {
		t.Error("unset period should fall back to the default")
	}
	p.ReportEvery = 3
	if got := p.SampleTime(4); got != 5*p.Dt {
		t.Errorf("SampleTime(4) = %v, want %v", got, 5*p.Dt)
	}

	g := heat.NewGrid(p.Points(), p.Dx, p.Init)
	ref := heat.NewGrid(p.Points(), p.Dx, p.Init)
	for n := 0; n < 7; n++ {
		sample, report := Advance(g, p, n)
		ref.SetBoundary(p.U0, p.U1)
		ref.Step(p.Alpha, p.Dt)

		if report != (n%3 == 0) {
			t.Errorf("step %d: report = %v", n, report)
		}
		if report && (sample.Step != n || sample.Energy != ref.Energy() || sample.Time != p.SampleTime(n)) {
			t.Errorf("step %d: sample %+v", n, sample)
		}
	}
	if got, want := g.Field(nil), ref.Field(nil); got[0] != 2 || got[len(got)-1] != -1 || got[5] != want[5] {
		t.Errorf("field diverged from manual loop: %v vs %v", got, want)
	}
}

func TestWriterReporter_Format(t *testing.T) {
	p := DefaultParams()
	p.Nt = 20

	var buf bytes.Buffer
	if _, err := New().Run(p, NewWriterReporter(&buf)); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 samples, got %q", buf.String())
	}
	if lines[0] != "Time Energy" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "0.001 8.998" {
		t.Errorf("first sample = %q, want %q", lines[1], "0.001 8.998")
	}
	if !strings.HasPrefix(lines[2], "0.011 ") {
		t.Errorf("second sample = %q", lines[2])
	}
}

func TestWriterReporter_HeaderWithoutSteps(t *testing.T) {
	p := DefaultParams()
	p.Nt = 0

	var buf bytes.Buffer
	if _, err := New().Run(p, NewWriterReporter(&buf)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if buf.String() != "Time Energy\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriterReporter_Precision(t *testing.T) {
	var buf bytes.Buffer
	r := NewWriterReporter(&buf)
	r.SetPrecision(-1)
	if err := r.Emit(Sample{Time: 0.011000000000000001, Energy: 1.0 / 3}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "0.011000000000000001 0.3333333333333333\n" {
		t.Errorf("output = %q", got)
	}
}

type failingWriter struct{ after int }

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.after == 0 {
		return 0, errors.New("disk full")
	}
	f.after--
	return len(p), nil
}

func TestSimulatorRun_ReporterError(t *testing.T) {
	p := DefaultParams()
	p.Nt = 50

	res, err := New().Run(p, NewWriterReporter(&failingWriter{after: 2}))
	if err == nil {
		t.Fatal("expected error from reporter")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error lost cause: %v", err)
	}
	if res.Steps != 11 {
		t.Errorf("expected loop to stop at step 10, took %d steps", res.Steps)
	}

	_, err = New().Run(p, NewWriterReporter(&failingWriter{}))
	if err == nil || !strings.Contains(err.Error(), "start reporter") {
		t.Errorf("expected header failure, got %v", err)
	}
}

type countingMetric struct {
	count int
	last  float64
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(s Sample) {
	c.count++
	c.last = s.Energy
}
func (c *countingMetric) Value() float64 { return float64(c.count) }
func (c *countingMetric) Reset()         { c.count, c.last = 0, 0 }

type stepCounter struct{ steps []int }

func (s *stepCounter) OnStep(n int, g *heat.Grid) { s.steps = append(s.steps, n) }

func TestSimulatorHooks(t *testing.T) {
	p := DefaultParams()
	p.Nt = 25

	metric := &countingMetric{}
	obs := &stepCounter{}
	s := New()
	s.AddMetric(metric)
	s.AddObserver(obs)

	res, err := s.Run(p, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Metrics["count"] != 3 {
		t.Errorf("expected metric value 3, got %v", res.Metrics["count"])
	}
	if len(obs.steps) != 25 || obs.steps[24] != 24 {
		t.Errorf("observer saw %v", obs.steps)
	}

	if _, err := s.Run(p, nil); err != nil {
		t.Fatal(err)
	}
	if metric.count != 3 {
		t.Errorf("metric not reset between runs: %d", metric.count)
	}
}

func TestSimulatorRun_Energies(t *testing.T) {
	p := DefaultParams()
	p.Nt = 1

	res, err := New().Run(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.InitialEnergy != 10 {
		t.Errorf("initial energy = %v, want 10", res.InitialEnergy)
	}
	if math.Abs(res.FinalEnergy-8.998) > 1e-12 {
		t.Errorf("final energy = %v, want 8.998", res.FinalEnergy)
	}
}

func TestRunBatch(t *testing.T) {
	params := make([]Params, 4)
	for i := range params {
		params[i] = DefaultParams()
		params[i].Nt = 10 * (i + 1)
	}

	runs := RunBatch(New, params)
	if len(runs) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(runs))
	}
	for i, run := range runs {
		if run.Err != nil {
			t.Errorf("run %d: %v", i, run.Err)
		}
		if run.Params.Nt != params[i].Nt {
			t.Errorf("run %d out of order", i)
		}
		if len(run.Samples) != i+1 {
			t.Errorf("run %d: expected %d samples, got %d", i, i+1, len(run.Samples))
		}
	}
}
