// Package navigation drives a vehicle toward a goal around nearby obstacles. A Navigator owns a
// local occupancy grid fed by range observations and a VFH planner, and on every tick turns the
// vehicle pose and goal into a heading and speed command.
package navigation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/localnav/localmap"
	"go.viam.com/localnav/motionplan/vfh"
)

const (
	defaultFrequencyHz       = 10.0
	defaultAcceptanceRadiusM = 1.0
)

// CommandSink receives the velocity commands produced by the navigator. Heading is in radians
// and speed in m/s; a speed of 0 holds position.
type CommandSink interface {
	SetVelocity(ctx context.Context, heading, speed float64) error
}

// Config describes a Navigator.
type Config struct {
	LocalMap localmap.Config `json:"local_map"`
	VFH      vfh.Config      `json:"vfh"`

	// FrequencyHz is the planning rate of the background loop.
	FrequencyHz float64 `json:"frequency_hz"`
	// AcceptanceRadiusM is the distance to the goal at which it counts as reached.
	AcceptanceRadiusM float64 `json:"acceptance_radius_m"`
}

// WithDefaults returns a copy of the config with unset fields filled in. The planner window
// follows the grid window unless set explicitly.
func (cfg Config) WithDefaults() Config {
	cfg.LocalMap = cfg.LocalMap.WithDefaults()
	if cfg.VFH.WindowSizeM == 0 {
		cfg.VFH.WindowSizeM = cfg.LocalMap.WindowDiameterM
	}
	if cfg.VFH.CellSizeM == 0 {
		cfg.VFH.CellSizeM = cfg.LocalMap.CellSizeM
	}
	cfg.VFH = cfg.VFH.WithDefaults()
	if cfg.FrequencyHz == 0 {
		cfg.FrequencyHz = defaultFrequencyHz
	}
	if cfg.AcceptanceRadiusM == 0 {
		cfg.AcceptanceRadiusM = defaultAcceptanceRadiusM
	}
	return cfg
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if err := cfg.LocalMap.Validate(fmt.Sprintf("%s.%s", path, "local_map")); err != nil {
		return err
	}
	if err := cfg.VFH.Validate(fmt.Sprintf("%s.%s", path, "vfh")); err != nil {
		return err
	}
	if cfg.FrequencyHz <= 0 || math.IsInf(cfg.FrequencyHz, 0) {
		return goutils.NewConfigValidationFieldRequiredError(path, "frequency_hz")
	}
	if cfg.AcceptanceRadiusM < 0 {
		return goutils.NewConfigValidationError(path, errors.New("acceptance_radius_m must not be negative"))
	}
	if localmap.WindowDimension(cfg.VFH.WindowSizeM, cfg.VFH.CellSizeM) !=
		localmap.WindowDimension(cfg.LocalMap.WindowDiameterM, cfg.LocalMap.CellSizeM) {
		return goutils.NewConfigValidationError(path,
			errors.New("vfh window does not match the local map window"))
	}
	return nil
}

// Period is the time between two planning cycles.
func (cfg *Config) Period() time.Duration {
	return time.Duration(float64(time.Second) / cfg.FrequencyHz)
}
