package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/metrics"
	"github.com/san-kum/heatsim/internal/sim"
)

func runOnce(t *testing.T, p sim.Params) (*sim.Result, []sim.Sample) {
	t.Helper()
	rec := sim.NewRecorder()
	res, err := sim.New().Run(p, rec)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res, rec.Samples
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	p := sim.DefaultParams()
	p.Nt = 95
	p.U0 = 0.3
	p.Init = heat.Sinusoidal
	res, samples := runOnce(t, p)
	res.Metrics["energy_drift"] = 0.25

	runID, err := st.Save(p, res, samples)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Params != p {
		t.Errorf("params mismatch: %+v", meta.Params)
	}
	if meta.Steps != 95 || meta.Samples != 10 {
		t.Errorf("expected 95 steps and 10 samples, got %d/%d", meta.Steps, meta.Samples)
	}
	if meta.Metrics["energy_drift"] != 0.25 {
		t.Errorf("expected drift 0.25, got %v", meta.Metrics["energy_drift"])
	}

	loaded, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(loaded) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(loaded))
	}
	for i := range samples {
		if loaded[i] != samples[i] {
			t.Errorf("sample %d: got %+v, want %+v", i, loaded[i], samples[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	p := sim.DefaultParams()
	res, samples := runOnce(t, p)
	first, err := st.Save(p, res, samples)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(p, res, samples)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("runs out of order: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sim.DefaultParams(), nil, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}

	data, err := os.ReadFile(filepath.Join(runDir, "energy.csv"))
	if err != nil {
		t.Fatalf("energy.csv not created: %v", err)
	}
	if string(data) != "step,time,energy\n" {
		t.Errorf("unexpected csv: %q", data)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil || len(samples) != 0 {
		t.Errorf("expected empty samples, got %v, %v", samples, err)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []sim.Sample{{Step: 0, Time: 0.001, Energy: 8.998}, {Step: 10, Time: 0.011, Energy: 1.0 / 3}})
	if err != nil {
		t.Fatal(err)
	}
	want := "step,time,energy\n0,0.001,8.998\n10,0.011,0.3333333333333333\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	p := sim.DefaultParams()
	p.Nt = 30
	res, samples := runOnce(t, p)
	runID, err := st.Save(p, res, samples)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var doc struct {
		ID     string `json:"id"`
		Params struct {
			IC string `json:"ic"`
			Nt int    `json:"nt"`
		} `json:"params"`
		Data []sim.Sample `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if doc.ID != runID || doc.Params.IC != "const" || doc.Params.Nt != 30 {
		t.Errorf("unexpected export header: %+v", doc)
	}
	if len(doc.Data) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(doc.Data))
	}
	if math.Abs(doc.Data[0].Energy-8.998) > 1e-12 {
		t.Errorf("first energy = %v", doc.Data[0].Energy)
	}

	if err := st.ExportJSON(&buf, "missing"); err == nil {
		t.Error("expected error for missing run")
	}
}

func divergedRun(t *testing.T) (sim.Params, *sim.Result, []sim.Sample) {
	t.Helper()
	p := sim.DefaultParams()
	p.Dt, p.Nt = 1, 2000

	s := sim.New()
	s.AddMetric(metrics.NewStability(0))
	rec := sim.NewRecorder()
	res, err := s.Run(p, rec)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	samples := rec.Samples
	if !math.IsNaN(res.FinalEnergy) && !math.IsInf(res.FinalEnergy, 0) {
		t.Fatalf("expected k=1 run to diverge, final energy %v", res.FinalEnergy)
	}
	return p, res, samples
}

func isNonFinite(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

func TestStoreSaveDivergedRun(t *testing.T) {
	st := New(t.TempDir())
	p, res, samples := divergedRun(t)

	runID, err := st.Save(p, res, samples)
	if err != nil {
		t.Fatalf("save of diverged run failed: %v", err)
	}

	runs, err := st.List()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected the diverged run to be listed, got %d (%v)", len(runs), err)
	}
	if !isNonFinite(float64(runs[0].FinalEnergy)) {
		t.Errorf("final energy should load back non-finite, got %v", runs[0].FinalEnergy)
	}
	if got, want := runs[0].Metrics["stability"], Real(res.Metrics["stability"]); got != want || want >= 1 {
		t.Errorf("stability metric = %v, want %v below 1", got, want)
	}

	loaded, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(loaded) != len(samples) || !isNonFinite(loaded[len(loaded)-1].Energy) {
		t.Errorf("non-finite samples did not round trip")
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export of diverged run failed: %v", err)
	}
	var doc ExportData
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("exported json does not decode: %v", err)
	}
	if !isNonFinite(float64(doc.Data[len(doc.Data)-1].Energy)) {
		t.Errorf("exported last energy = %v", doc.Data[len(doc.Data)-1].Energy)
	}
}

func TestRealJSON(t *testing.T) {
	tests := []struct {
		in   Real
		want string
	}{
		{1.5, "1.5"},
		{Real(math.NaN()), `"NaN"`},
		{Real(math.Inf(1)), `"+Inf"`},
		{Real(math.Inf(-1)), `"-Inf"`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.in, err)
		}
		if string(data) != tt.want {
			t.Errorf("marshal %v = %s, want %s", tt.in, data, tt.want)
		}

		var back Real
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != tt.in && !(math.IsNaN(float64(back)) && math.IsNaN(float64(tt.in))) {
			t.Errorf("round trip %v -> %v", tt.in, back)
		}
	}

	var r Real
	if err := json.Unmarshal([]byte(`"hot"`), &r); err == nil {
		t.Error("expected error for non-numeric string")
	}
	if err := json.Unmarshal([]byte(`"2.5"`), &r); err == nil {
		t.Error("finite values must be numbers")
	}
}

func TestStoreSaveUnwritable(t *testing.T) {
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "file"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	p := sim.DefaultParams()
	res, samples := runOnce(t, p)

	st := New(filepath.Join(base, "file", "runs"))
	if id, err := st.Save(p, res, samples); err == nil || id != "" {
		t.Fatalf("expected save under a regular file to fail, got %q, %v", id, err)
	}
}
