// Package vfh implements a Vector Field Histogram planner. Every cycle it turns the occupancy
// window around the vehicle into a polar obstacle density histogram, finds the angular gaps a
// vehicle of the configured radius fits through, scores the headings those gaps offer against
// the desired and the previously selected heading, and ramps the speed toward the cap of the
// chosen gap under an acceleration limit and a turn feasibility check.
package vfh

import (
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

const (
	defaultRobotRadiusM         = 0.4
	defaultAlphaDeg             = 2
	defaultThreshold            = 1.0
	defaultSMaxDeg              = 80.0
	defaultMinGapWidthDeg       = 10.0
	defaultMagnitudeRangeMM     = 1500.0
	defaultMagnitudeScale       = 1e7
	defaultMaxSpeedMMPerSec     = 800.0
	defaultMaxSpeedWideMMPerSec = 500.0
	defaultMaxSpeedNarrowMMPS   = 300.0
	defaultMaxAccelMMPerSec2    = 100.0
	defaultBootstrapWindow      = 300 * time.Millisecond
	defaultBootstrapIncrement   = 10.0
	defaultBrakeFactor          = 5.0
	defaultSafetyDistStoppedM   = 0.2
	defaultSafetyDistFullM      = 0.4
	defaultTurnMarginM          = 0.3
	defaultDesiredWeight        = 6.0
	defaultPreviousWeight       = 1.5
)

// Config holds the planner geometry, gap and speed parameters. Angles are in degrees, speeds in
// mm/s and accelerations in mm/s^2 unless the name says otherwise.
type Config struct {
	WindowSizeM  float64 `json:"window_size_m"`
	CellSizeM    float64 `json:"cell_size_m"`
	RobotRadiusM float64 `json:"robot_radius_m"`

	// AlphaDeg is the sector width of one histogram bucket and must divide 360.
	AlphaDeg  int     `json:"alpha_deg"`
	Threshold float64 `json:"threshold"`
	// SMaxDeg separates narrow from wide gaps.
	SMaxDeg float64 `json:"smax_deg"`
	// MinGapWidthDeg is the width a gap must exceed to be considered passable.
	MinGapWidthDeg   float64 `json:"min_gap_width_deg"`
	MagnitudeRangeMM float64 `json:"magnitude_range_mm"`

	MaxSpeedMMPerSec       float64 `json:"max_speed_mm_per_sec"`
	MaxSpeedWideMMPerSec   float64 `json:"max_speed_wide_mm_per_sec"`
	MaxSpeedNarrowMMPerSec float64 `json:"max_speed_narrow_mm_per_sec"`
	MaxAccelMMPerSec2      float64 `json:"max_acceleration_mm_per_sec2"`

	// Cycles further apart than BootstrapWindow (or not after the previous one) accelerate by
	// BootstrapIncrement instead of MaxAccelMMPerSec2*elapsed.
	BootstrapWindow    time.Duration `json:"bootstrap_window"`
	BootstrapIncrement float64       `json:"bootstrap_increment_mm_per_sec"`
	BrakeFactor        float64       `json:"brake_factor"`

	SafetyDistStoppedM float64 `json:"safety_dist_stopped_m"`
	SafetyDistFullM    float64 `json:"safety_dist_full_m"`
	TurnMarginM        float64 `json:"turn_margin_m"`

	DesiredWeight  float64 `json:"desired_weight"`
	PreviousWeight float64 `json:"previous_weight"`
}

// WithDefaults returns a copy of the config with unset fields filled in.
func (cfg Config) WithDefaults() Config {
	setDefault := func(field *float64, def float64) {
		if *field == 0 {
			*field = def
		}
	}
	setDefault(&cfg.RobotRadiusM, defaultRobotRadiusM)
	setDefault(&cfg.Threshold, defaultThreshold)
	setDefault(&cfg.SMaxDeg, defaultSMaxDeg)
	setDefault(&cfg.MinGapWidthDeg, defaultMinGapWidthDeg)
	setDefault(&cfg.MagnitudeRangeMM, defaultMagnitudeRangeMM)
	setDefault(&cfg.MaxSpeedMMPerSec, defaultMaxSpeedMMPerSec)
	setDefault(&cfg.MaxSpeedWideMMPerSec, defaultMaxSpeedWideMMPerSec)
	setDefault(&cfg.MaxSpeedNarrowMMPerSec, defaultMaxSpeedNarrowMMPS)
	setDefault(&cfg.MaxAccelMMPerSec2, defaultMaxAccelMMPerSec2)
	setDefault(&cfg.BootstrapIncrement, defaultBootstrapIncrement)
	setDefault(&cfg.BrakeFactor, defaultBrakeFactor)
	setDefault(&cfg.SafetyDistStoppedM, defaultSafetyDistStoppedM)
	setDefault(&cfg.SafetyDistFullM, defaultSafetyDistFullM)
	setDefault(&cfg.TurnMarginM, defaultTurnMarginM)
	setDefault(&cfg.DesiredWeight, defaultDesiredWeight)
	setDefault(&cfg.PreviousWeight, defaultPreviousWeight)
	if cfg.AlphaDeg == 0 {
		cfg.AlphaDeg = defaultAlphaDeg
	}
	if cfg.BootstrapWindow == 0 {
		cfg.BootstrapWindow = defaultBootstrapWindow
	}
	return cfg
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.WindowSizeM <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "window_size_m")
	}
	if cfg.CellSizeM <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "cell_size_m")
	}
	if cfg.CellSizeM > cfg.WindowSizeM {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("cell size %.3fm is larger than the window %.3fm", cfg.CellSizeM, cfg.WindowSizeM))
	}
	if cfg.AlphaDeg <= 0 || 360%cfg.AlphaDeg != 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("alpha_deg %d must divide 360", cfg.AlphaDeg))
	}
	if cfg.SMaxDeg <= 0 || cfg.SMaxDeg > 360 {
		return goutils.NewConfigValidationError(path, errors.Errorf("smax_deg %.1f must be in (0, 360]", cfg.SMaxDeg))
	}
	// in declaration order; the first negative field is reported
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"robot_radius_m", cfg.RobotRadiusM},
		{"threshold", cfg.Threshold},
		{"min_gap_width_deg", cfg.MinGapWidthDeg},
		{"magnitude_range_mm", cfg.MagnitudeRangeMM},
		{"max_speed_mm_per_sec", cfg.MaxSpeedMMPerSec},
		{"max_speed_wide_mm_per_sec", cfg.MaxSpeedWideMMPerSec},
		{"max_speed_narrow_mm_per_sec", cfg.MaxSpeedNarrowMMPerSec},
		{"max_acceleration_mm_per_sec2", cfg.MaxAccelMMPerSec2},
		{"bootstrap_increment_mm_per_sec", cfg.BootstrapIncrement},
		{"brake_factor", cfg.BrakeFactor},
		{"safety_dist_stopped_m", cfg.SafetyDistStoppedM},
		{"safety_dist_full_m", cfg.SafetyDistFullM},
		{"turn_margin_m", cfg.TurnMarginM},
		{"desired_weight", cfg.DesiredWeight},
		{"previous_weight", cfg.PreviousWeight},
	} {
		if f.v < 0 {
			return goutils.NewConfigValidationError(path, errors.Errorf("%s must not be negative", f.name))
		}
	}
	if cfg.BootstrapWindow < 0 {
		return goutils.NewConfigValidationError(path, errors.New("bootstrap_window must not be negative"))
	}
	return nil
}

// SpeedClass tags a candidate heading with the speed cap of the gap it came from.
type SpeedClass uint8

// The speed classes, from stopped to unrestricted.
const (
	SpeedNone SpeedClass = iota
	SpeedNarrow
	SpeedWide
	SpeedFull
)

func (c SpeedClass) String() string {
	switch c {
	case SpeedNone:
		return "none"
	case SpeedNarrow:
		return "narrow"
	case SpeedWide:
		return "wide"
	case SpeedFull:
		return "full"
	}
	return "unknown"
}

// maxSpeed is the cap of a class in mm/s.
func (cfg *Config) maxSpeed(c SpeedClass) float64 {
	switch c {
	case SpeedNarrow:
		return cfg.MaxSpeedNarrowMMPerSec
	case SpeedWide:
		return cfg.MaxSpeedWideMMPerSec
	case SpeedFull:
		return cfg.MaxSpeedMMPerSec
	case SpeedNone:
	}
	return 0
}

// State is the step a planning cycle reached.
type State uint8

// Cycle states. Blocked ends a cycle early; the next UpdateMap starts over from Idle.
const (
	StateIdle State = iota
	StateHistogramBuilt
	StateGapSearched
	StateCandidateSelected
	StateBlocked
	StateSpeedComputed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHistogramBuilt:
		return "histogram_built"
	case StateGapSearched:
		return "gap_searched"
	case StateCandidateSelected:
		return "candidate_selected"
	case StateBlocked:
		return "blocked"
	case StateSpeedComputed:
		return "speed_computed"
	}
	return "unknown"
}
