package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/heatsim/internal/analysis"
	"github.com/san-kum/heatsim/internal/automation"
	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/export"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/metrics"
	"github.com/san-kum/heatsim/internal/sim"
	"github.com/san-kum/heatsim/internal/storage"
	"github.com/san-kum/heatsim/internal/viz"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataDir       string
	logLevel      string
	save          bool
	stepsPerFrame int
	dts           []float64
	runFlags      paramFlags
	liveFlags     paramFlags
	cmpFlags      paramFlags
	profFlags     paramFlags
	svgWidth      int
	svgHeight     int
	sweepFlags    paramFlags
	sweep         automation.Sweep
	modeFlags     paramFlags
	modeCount     int
)

var log = logrus.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "heatsim",
		Short: "explicit finite-difference solver for the 1-D heat equation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".heatsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and print the energy series",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addParamFlags(runCmd, &runFlags)
	runCmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy curve of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := storage.New(dataDir).LoadSamples(args[0])
			if err != nil {
				return err
			}
			return storage.WriteCSV(cmd.OutOrStdout(), samples)
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(cmd.OutOrStdout(), args[0])
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the energy curve of a stored run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := storage.New(dataDir).LoadSamples(args[0])
			if err != nil {
				return err
			}
			return export.EnergySVG(cmd.OutOrStdout(), samples, svgWidth, svgHeight, "#ff8c00")
		},
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "run simulation and write the final temperature profile as SVG",
		Args:  cobra.NoArgs,
		RunE:  profileSVG,
	}
	addParamFlags(profileCmd, &profFlags)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := liveFlags.resolve(cmd)
			if err != nil {
				return err
			}
			config.CheckStability(cfg.Params, log)
			return viz.Run(cfg.Params, stepsPerFrame)
		},
	}
	addParamFlags(liveCmd, &liveFlags)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 1, "time steps per frame")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare time steps on the same rod",
		Args:  cobra.NoArgs,
		RunE:  compareTimeSteps,
	}
	addParamFlags(compareCmd, &cmpFlags)
	compareCmd.Flags().Float64SliceVar(&dts, "dts", []float64{0.1, 0.25, 0.5, 0.6}, "time steps to compare")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter linearly and compare the runs",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addParamFlags(sweepCmd, &sweepFlags)
	sweepCmd.Flags().StringVar(&sweep.Param, "param", "dt", fmt.Sprintf("parameter to vary %v", automation.SweepParams))
	sweepCmd.Flags().Float64Var(&sweep.From, "from", 0.1, "first value")
	sweepCmd.Flags().Float64Var(&sweep.To, "to", 0.6, "last value")
	sweepCmd.Flags().IntVar(&sweep.Steps, "steps", 6, "number of runs")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every entry of a YAML scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&save, "save", false, "store each run under the data directory")

	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "compare measured sine mode decay with the scheme's amplification factor",
		Args:  cobra.NoArgs,
		RunE:  modeDecay,
	}
	addParamFlags(modesCmd, &modeFlags)
	modesCmd.Flags().IntVar(&modeCount, "count", 5, "number of modes")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the step kernel",
		Args:  cobra.NoArgs,
		RunE:  benchKernel,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		profileCmd, presetsCmd, liveCmd, compareCmd, sweepCmd, scenarioCmd,
		modesCmd, benchCmd)
	return rootCmd
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := runFlags.resolve(cmd)
	if err != nil {
		return err
	}
	p := cfg.Params
	config.CheckStability(p, log)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, p.String())

	writer := sim.NewWriterReporter(out)
	writer.SetPrecision(cfg.Precision)
	rec := sim.NewRecorder()

	s := sim.New()
	s.SetLogger(log)
	s.SetWorkers(cfg.Workers)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}

	start := time.Now()
	result, err := s.Run(p, sim.MultiReporter{writer, rec})
	if err != nil {
		return err
	}

	fields := logrus.Fields{"elapsed": time.Since(start), "steps": result.Steps}
	for name, val := range result.Metrics {
		fields[name] = val
	}
	log.WithFields(fields).Info("run complete")

	if !save {
		return nil
	}

	st := storage.New(dataDir)
	runID, err := st.Save(p, result, rec.Samples)
	if err != nil {
		return err
	}
	log.WithField("run_id", runID).Info("run saved")
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tNX\tNT\tDT\tIC\tBC\tFINAL ENERGY")

	for _, run := range runs {
		p := run.Params
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%s\t%g %g\t%g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			p.Nx,
			p.Nt,
			p.Dt,
			p.Init,
			p.U0, p.U1,
			run.FinalEnergy,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	data := make([]float64, len(samples))
	for i, s := range samples {
		data[i] = s.Energy
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "samples: %d\n", len(samples))
	fmt.Fprintf(out, "t: %g .. %g\n\n", samples[0].Time, samples[len(samples)-1].Time)

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("energy vs time"),
	)
	fmt.Fprintln(out, graph)

	return nil
}

var (
	presetName = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Width(12)
	presetInfo = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	presetWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "presets:")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name).Params
		info := fmt.Sprintf("nx=%d nt=%d dt=%g bc=%g,%g ic=%s", p.Nx, p.Nt, p.Dt, p.U0, p.U1, p.Init)
		k := fmt.Sprintf("k=%.3g", p.DiffusionNumber())
		if p.DiffusionNumber() > config.StabilityLimit {
			k = presetWarn.Render(k + " (unstable)")
		} else {
			k = presetInfo.Render(k)
		}
		fmt.Fprintf(out, "  %s %s %s\n", presetName.Render(name), presetInfo.Render(info), k)
	}
	return nil
}

func newMetricSim() *sim.Simulator {
	s := sim.New()
	s.SetLogger(log)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	return s
}

func compareTimeSteps(cmd *cobra.Command, args []string) error {
	cfg, err := cmpFlags.resolve(cmd)
	if err != nil {
		return err
	}

	params := make([]sim.Params, 0, len(dts))
	for _, dt := range dts {
		p := cfg.Params
		p.Dt = dt
		if err := config.Validate(p); err != nil {
			return err
		}
		params = append(params, p)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing time steps (nx=%d, nt=%d, ic=%s)\n\n", cfg.Nx, cfg.Nt, cfg.Init)
	printBatch(out, "dt", sim.RunBatch(newMetricSim, params), func(_ int, p sim.Params) string {
		return fmt.Sprintf("%g", p.Dt)
	})
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := sweepFlags.resolve(cmd)
	if err != nil {
		return err
	}

	sw := sweep
	sw.Base = cfg.Params
	params, err := sw.Params()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sweeping %s from %g to %g (nx=%d, nt=%d, ic=%s)\n\n", sw.Param, sw.From, sw.To, cfg.Nx, cfg.Nt, cfg.Init)
	vals := sw.Values()
	printBatch(out, sw.Param, sim.RunBatch(newMetricSim, params), func(i int, _ sim.Params) string {
		return fmt.Sprintf("%g", vals[i])
	})
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var store *storage.Store
	if save {
		store = storage.New(dataDir)
	}

	outcomes, runErr := automation.Execute(sc, newMetricSim, store, log)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Fprintln(out, sc.Description)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tK\tFINAL ENERGY\tSTABILITY\tRUN ID")
	for _, o := range outcomes {
		if o.Err != nil || o.Result == nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\n", o.Name, o.Err)
			continue
		}
		id := o.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%.3g\t%.6g\t%.2f\t%s\n",
			o.Name, o.Params.DiffusionNumber(), o.Result.FinalEnergy, o.Result.Metrics["stability"], id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

// printBatch writes one row per run, labelled by label.
func printBatch(out io.Writer, name string, runs []sim.BatchRun, label func(int, sim.Params) string) {
	fmt.Fprintf(out, "%-10s  %-8s  %-14s  %-12s  %-9s\n", name, "k", "final_energy", "decay", "stability")
	fmt.Fprintln(out, strings.Repeat("-", 61))

	for i, run := range runs {
		if run.Err != nil || run.Result == nil {
			fmt.Fprintf(out, "%-10s  error: %v\n", label(i, run.Params), run.Err)
			continue
		}
		fmt.Fprintf(out, "%-10s  %-8.3g  %-14.6g  %-12.4g  %-9.2f\n",
			label(i, run.Params),
			run.Params.DiffusionNumber(),
			run.Result.FinalEnergy,
			run.Result.Metrics["energy_decay"],
			run.Result.Metrics["stability"],
		)
	}
}

// finalField keeps a copy of the field after the last step.
type finalField struct {
	last  int
	field []float64
}

func (f *finalField) OnStep(n int, g *heat.Grid) {
	if n == f.last {
		f.field = g.Field(f.field)
	}
}

func profileSVG(cmd *cobra.Command, args []string) error {
	cfg, err := profFlags.resolve(cmd)
	if err != nil {
		return err
	}
	p := cfg.Params
	config.CheckStability(p, log)

	ff := &finalField{last: p.Nt - 1}
	s := sim.New()
	s.SetLogger(log)
	s.SetWorkers(cfg.Workers)
	s.AddObserver(ff)
	if _, err := s.Run(p, nil); err != nil {
		return err
	}
	if ff.field == nil {
		ff.field = heat.NewGrid(p.Points(), p.Dx, p.Init).Field(nil)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range ff.field {
		lo, hi = min(lo, v), max(hi, v)
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
		return fmt.Errorf("final field is not finite")
	}

	canvas := viz.NewCanvas(100, 25)
	canvas.Profile(ff.field, lo, hi)
	return export.CanvasSVG(cmd.OutOrStdout(), canvas, 4, "#ff8c00")
}

func modeDecay(cmd *cobra.Command, args []string) error {
	cfg, err := modeFlags.resolve(cmd)
	if err != nil {
		return err
	}
	p := cfg.Params
	if p.Nt < 1 {
		return fmt.Errorf("modes needs at least one time step")
	}

	initial := heat.NewGrid(p.Points(), p.Dx, p.Init).Field(nil)
	ff := &finalField{last: p.Nt - 1}
	s := sim.New()
	s.SetLogger(log)
	s.SetWorkers(cfg.Workers)
	s.AddObserver(ff)
	if _, err := s.Run(p, nil); err != nil {
		return err
	}

	before := analysis.SineModes(initial, p.U0, p.U1, modeCount)
	after := analysis.SineModes(ff.field, p.U0, p.U1, modeCount)
	if len(before) == 0 {
		return fmt.Errorf("grid with nx=%d has no interior modes", p.Nx)
	}

	k := p.DiffusionNumber()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "k=%.4g  max|g|=%.6g  steps=%d\n\n", k, analysis.MaxAmplification(k, p.Nx), p.Nt)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tINITIAL\tFINAL\tMEASURED G\tPREDICTED G")
	for m := range before {
		fmt.Fprintf(w, "%d\t%.6g\t%.6g\t%.6g\t%.6g\n",
			m+1,
			before[m],
			after[m],
			analysis.MeasuredFactor(before[m], after[m], p.Nt),
			analysis.Amplification(k, m+1, p.Nx),
		)
	}
	return w.Flush()
}

func benchKernel(cmd *cobra.Command, args []string) error {
	sizes := []int{10, 1000, 100000}
	workers := []int{1, 4}
	const steps = 200

	fmt.Fprintln(cmd.OutOrStdout(), "benchmarking explicit step kernel")
	fmt.Fprintln(cmd.OutOrStdout())
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NX\tWORKERS\tSTEPS\tTIME\tSTEPS/SEC\tNODES/SEC")

	for _, nx := range sizes {
		for _, nw := range workers {
			p := sim.DefaultParams()
			p.Nx, p.Nt = nx, steps
			p.Dx = 1.0 / float64(nx)
			p.Dt = 0.4 * p.Dx * p.Dx
			p.ReportEvery = steps

			s := sim.New()
			s.SetLogger(log)
			s.SetWorkers(nw)

			start := time.Now()
			result, err := s.Run(p, nil)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			perSec := float64(result.Steps) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\t%.3g\n",
				nx, nw, result.Steps, elapsed, perSec, perSec*float64(p.Points()))
		}
	}

	return w.Flush()
}
