package config

import (
	"sort"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

func preset(mod func(p *sim.Params)) *Config {
	cfg := DefaultConfig()
	mod(&cfg.Params)
	return cfg
}

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"cooling": preset(func(p *sim.Params) {
		p.Nt = 2000
		p.Dt = 0.1
	}),
	"hot-left": preset(func(p *sim.Params) {
		p.Nx, p.Nt = 20, 5000
		p.Dx, p.Dt = 0.05, 0.001
		p.U0, p.U1 = 2, 0
	}),
	"sine": preset(func(p *sim.Params) {
		p.Nx, p.Nt = 50, 4000
		p.Dx, p.Dt = 0.02, 0.0001
		p.Init = heat.Sinusoidal
		p.ReportEvery = 100
	}),
	"fine": preset(func(p *sim.Params) {
		p.Nx, p.Nt = 1000, 20000
		p.Dx, p.Dt = 0.001, 4e-7
		p.U0, p.U1 = 1, 1
		p.Init = heat.Sinusoidal
		p.ReportEvery = 1000
	}),
	"unstable": preset(func(p *sim.Params) {
		p.Nt = 300
		p.Dt = 0.6
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
