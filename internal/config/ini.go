package config

import (
	"fmt"

	"github.com/san-kum/heatsim/internal/heat"
	"gopkg.in/ini.v1"
)

// iniSection holds the run parameters in an INI file:
//
//	[heat]
//	nx = 50
//	dt = 0.0001
//	ic = sin
//
//	[run]
//	workers = 4
const (
	iniSection    = "heat"
	iniRunSection = "run"
)

// loadINI overlays the keys present in path onto cfg.
func loadINI(path string, cfg *Config) error {
	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	h := file.Section(iniSection)
	cfg.Alpha = h.Key("alpha").MustFloat64(cfg.Alpha)
	cfg.U0 = h.Key("u0").MustFloat64(cfg.U0)
	cfg.U1 = h.Key("u1").MustFloat64(cfg.U1)
	cfg.Dx = h.Key("dx").MustFloat64(cfg.Dx)
	cfg.Dt = h.Key("dt").MustFloat64(cfg.Dt)
	cfg.Nx = h.Key("nx").MustInt(cfg.Nx)
	cfg.Nt = h.Key("nt").MustInt(cfg.Nt)
	cfg.ReportEvery = h.Key("report_every").MustInt(cfg.ReportEvery)
	if h.HasKey("ic") {
		ic, err := heat.ParseInitialCondition(h.Key("ic").String())
		if err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.Init = ic
	}

	r := file.Section(iniRunSection)
	cfg.Workers = r.Key("workers").MustInt(cfg.Workers)
	cfg.Precision = r.Key("precision").MustInt(cfg.Precision)
	return nil
}
