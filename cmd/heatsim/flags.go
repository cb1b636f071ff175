package main

import (
	"fmt"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/spf13/cobra"
)

// paramFlags holds the simulation flags shared by run, live and compare.
type paramFlags struct {
	nx          int
	nt          int
	alpha       float64
	dx          float64
	dt          float64
	bc          []float64
	ic          string
	reportEvery int
	workers     int
	precision   int
	configFile  string
	preset      string
}

func addParamFlags(cmd *cobra.Command, f *paramFlags) {
	d := config.DefaultConfig()
	fl := cmd.Flags()
	fl.IntVar(&f.nx, "nx", d.Nx, "number of grid intervals")
	fl.IntVar(&f.nt, "nt", d.Nt, "number of time steps")
	fl.Float64Var(&f.alpha, "alpha", d.Alpha, "diffusion coefficient (cm^2/s)")
	fl.Float64Var(&f.dx, "dx", d.Dx, "grid spacing (cm)")
	fl.Float64Var(&f.dt, "dt", d.Dt, "time step (s)")
	fl.Float64SliceVar(&f.bc, "bc", []float64{d.U0, d.U1}, "Dirichlet boundary values u0,u1")
	fl.StringVar(&f.ic, "ic", d.Init.String(), "initial condition [const|sin]")
	fl.IntVar(&f.reportEvery, "report-every", d.ReportEvery, "report energy every n steps")
	fl.IntVar(&f.workers, "workers", d.Workers, "goroutines for the interior update of large grids")
	fl.IntVar(&f.precision, "precision", d.Precision, "significant digits in output (-1 for exact)")
	fl.StringVar(&f.configFile, "config", "", "config file path (yaml)")
	fl.StringVar(&f.preset, "preset", "", "use preset configuration")
}

// resolve layers preset, config file and explicitly set flags, in that
// order, then validates the result.
func (f *paramFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if f.preset != "" {
		p := config.GetPreset(f.preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
		cfg = p
	}

	if f.configFile != "" {
		loaded, err := config.LoadInto(f.configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("nx") {
		cfg.Nx = f.nx
	}
	if changed("nt") {
		cfg.Nt = f.nt
	}
	if changed("alpha") {
		cfg.Alpha = f.alpha
	}
	if changed("dx") {
		cfg.Dx = f.dx
	}
	if changed("dt") {
		cfg.Dt = f.dt
	}
	if changed("bc") {
		if len(f.bc) != 2 {
			return nil, fmt.Errorf("--bc takes exactly two values u0,u1, got %d", len(f.bc))
		}
		cfg.U0, cfg.U1 = f.bc[0], f.bc[1]
	}
	if changed("ic") {
		ic, err := heat.ParseInitialCondition(f.ic)
		if err != nil {
			return nil, err
		}
		cfg.Init = ic
	}
	if changed("report-every") {
		cfg.ReportEvery = f.reportEvery
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("precision") {
		cfg.Precision = f.precision
	}

	if err := config.Validate(cfg.Params); err != nil {
		return nil, err
	}
	return cfg, nil
}
