package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/heatsim/internal/sim"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPrecision = 6
	DefaultWorkers   = 1

	// StabilityLimit is the largest diffusion number for which the explicit
	// scheme does not amplify the grid's highest mode.
	StabilityLimit = 0.5
)

// ErrInvalidParams wraps every validation failure.
var ErrInvalidParams = errors.New("config: invalid parameters")

// Config is the on-disk run description. The physical parameters are
// inlined so a file reads as a flat list:
//
//	nx: 50
//	nt: 2000
//	alpha: 1
//	dx: 0.02
//	dt: 0.0001
//	u0: 0
//	u1: 1
//	ic: sin
type Config struct {
	sim.Params `yaml:",inline"`
	Workers    int `yaml:"workers,omitempty"`
	Precision  int `yaml:"precision,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Params:    sim.DefaultParams(),
		Workers:   DefaultWorkers,
		Precision: DefaultPrecision,
	}
}

// Load reads a YAML file, or an INI file when path ends in .ini, over the
// defaults; keys absent from the file keep their default value.
func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads path over base, so keys absent from the file keep the
// value base has. base is left untouched; the merged result is returned.
func LoadInto(path string, base *Config) (*Config, error) {
	cfg := *base
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		if err := loadINI(path, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects parameter sets the simulator must never see. It does not
// check the stability bound; see CheckStability.
func Validate(p sim.Params) error {
	switch {
	case !(p.Alpha > 0) || math.IsInf(p.Alpha, 0):
		return fmt.Errorf("%w: alpha must be positive, got %v", ErrInvalidParams, p.Alpha)
	case !(p.Dx > 0) || math.IsInf(p.Dx, 0):
		return fmt.Errorf("%w: dx must be positive, got %v", ErrInvalidParams, p.Dx)
	case !(p.Dt > 0) || math.IsInf(p.Dt, 0):
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidParams, p.Dt)
	case p.Nx < 1:
		return fmt.Errorf("%w: nx must be at least 1, got %d", ErrInvalidParams, p.Nx)
	case p.Nt < 0:
		return fmt.Errorf("%w: nt must not be negative, got %d", ErrInvalidParams, p.Nt)
	case p.ReportEvery < 1:
		return fmt.Errorf("%w: report_every must be at least 1, got %d", ErrInvalidParams, p.ReportEvery)
	case math.IsNaN(p.U0) || math.IsInf(p.U0, 0) || math.IsNaN(p.U1) || math.IsInf(p.U1, 0):
		return fmt.Errorf("%w: boundary values must be finite, got %v %v", ErrInvalidParams, p.U0, p.U1)
	}
	if _, err := p.Init.MarshalText(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// CheckStability logs a warning when alpha*dt/dx² exceeds StabilityLimit
// and reports whether the run is expected to stay bounded. The parameters
// are never changed.
func CheckStability(p sim.Params, log logrus.FieldLogger) bool {
	k := p.DiffusionNumber()
	if k <= StabilityLimit {
		return true
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"k":      k,
			"limit":  StabilityLimit,
			"max_dt": StabilityLimit * p.Dx * p.Dx / p.Alpha,
		}).Warn("diffusion number exceeds stability bound, solution will oscillate")
	}
	return false
}
