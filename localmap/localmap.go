// Package localmap implements a fixed size, decaying 2D certainty grid anchored in world
// millimeters. Range observations carve free space along the ray from the vehicle to the
// obstacle and raise certainty at the obstacle cell; certainty decays on a fixed interval so
// cells that are not reconfirmed are released again. A square window recentered on the vehicle
// is handed to the planner every cycle.
package localmap

import (
	"math"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

const (
	// DefaultMaxCertainty is the upper bound of every cell.
	DefaultMaxCertainty = 400
	// DefaultCertaintyIncrement is added to the terminal cell of every observation ray.
	DefaultCertaintyIncrement = 20
	// DefaultForgetInterval is the minimum time between two decay passes.
	DefaultForgetInterval = 500 * time.Millisecond

	defaultMapDiameterM    = 40.0
	defaultCellSizeM       = 0.05
	defaultWindowDiameterM = 3.0
	defaultThreshold       = 2

	// Unknown is reported for window cells that lie outside the grid. It is larger than any
	// certainty a cell can hold so consumers treat the map edge as a wall.
	Unknown int16 = math.MaxInt16

	// absorbs float error in diameter/cell divisions such as 3/0.05.
	dimensionEpsilon = 1e-9
)

// Config describes the geometry and certainty model of a Grid.
type Config struct {
	MapDiameterM    float64 `json:"map_diameter_m"`
	CellSizeM       float64 `json:"cell_size_m"`
	WindowDiameterM float64 `json:"window_diameter_m"`
	// CenterXM and CenterYM place the world origin inside the grid. Both default to half the
	// map diameter, which puts the origin in the middle of the map.
	CenterXM *float64 `json:"center_x_m,omitempty"`
	CenterYM *float64 `json:"center_y_m,omitempty"`
	// Threshold is the certainty above which a cell is considered occupied by consumers.
	Threshold          int           `json:"threshold"`
	CertaintyIncrement int           `json:"certainty_increment"`
	MaxCertainty       int           `json:"max_certainty"`
	ForgetInterval     time.Duration `json:"forget_interval"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.MapDiameterM <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "map_diameter_m")
	}
	if cfg.CellSizeM <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "cell_size_m")
	}
	if cfg.WindowDiameterM <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "window_diameter_m")
	}
	if cfg.CellSizeM > cfg.MapDiameterM {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("cell size %.3fm is larger than the map diameter %.3fm", cfg.CellSizeM, cfg.MapDiameterM))
	}
	if cfg.WindowDiameterM > cfg.MapDiameterM {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("window diameter %.3fm is larger than the map diameter %.3fm", cfg.WindowDiameterM, cfg.MapDiameterM))
	}
	if math.Round(cfg.CellSizeM*1000) < 1 {
		return goutils.NewConfigValidationError(path, errors.New("cell size must be at least 1mm"))
	}
	if cfg.Threshold < 0 {
		return goutils.NewConfigValidationError(path, errors.New("threshold must not be negative"))
	}
	if cfg.CertaintyIncrement < 0 {
		return goutils.NewConfigValidationError(path, errors.New("certainty_increment must not be negative"))
	}
	if cfg.MaxCertainty < 0 {
		return goutils.NewConfigValidationError(path, errors.New("max_certainty must not be negative"))
	}
	if cfg.ForgetInterval < 0 {
		return goutils.NewConfigValidationError(path, errors.New("forget_interval must not be negative"))
	}
	if cfg.MaxCertainty >= int(Unknown) {
		return goutils.NewConfigValidationError(path, errors.Errorf("max_certainty must be below %d", Unknown))
	}
	return nil
}

// WithDefaults returns a copy of the config with unset fields filled in.
func (cfg Config) WithDefaults() Config {
	if cfg.MapDiameterM == 0 {
		cfg.MapDiameterM = defaultMapDiameterM
	}
	if cfg.CellSizeM == 0 {
		cfg.CellSizeM = defaultCellSizeM
	}
	if cfg.WindowDiameterM == 0 {
		cfg.WindowDiameterM = defaultWindowDiameterM
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = defaultThreshold
	}
	if cfg.CertaintyIncrement == 0 {
		cfg.CertaintyIncrement = DefaultCertaintyIncrement
	}
	if cfg.MaxCertainty == 0 {
		cfg.MaxCertainty = DefaultMaxCertainty
	}
	if cfg.ForgetInterval == 0 {
		cfg.ForgetInterval = DefaultForgetInterval
	}
	return cfg
}

// Dimension returns floor(diameter/cellSize), the number of cells along one edge of a grid.
func Dimension(diameterM, cellSizeM float64) int {
	return int(math.Floor(diameterM/cellSizeM + dimensionEpsilon))
}

// WindowDimension is Dimension bumped to the next odd number so the window has a center cell.
func WindowDimension(diameterM, cellSizeM float64) int {
	return Dimension(diameterM, cellSizeM) | 1
}

// CellSizeMM converts a cell size in meters to whole millimeters.
func CellSizeMM(cellSizeM float64) int {
	return int(math.Round(cellSizeM * 1000))
}
