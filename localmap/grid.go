package localmap

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/localnav/logging"
)

// Grid is a dimension x dimension array of certainty counters. All methods are safe for
// concurrent use; every operation takes the single grid lock.
type Grid struct {
	mu sync.Mutex

	cfg             Config
	cellSizeMM      int
	dimension       int
	windowDimension int
	centerXMM       float64
	centerYMM       float64

	// cells[y*dimension+x]
	cells []int16
	// scratch window reused by NearestDistance
	scratch Window

	lastForget time.Time
	local      r3.Vector

	clk    clock.Clock
	logger logging.Logger
}

// NewGrid returns an empty grid for the given config. Unset config fields take their defaults.
// A nil logger falls back to logging.Global.
func NewGrid(cfg Config, clk clock.Clock, logger logging.Logger) (*Grid, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate("local_map"); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.Global()
	}

	centerX := cfg.MapDiameterM / 2
	if cfg.CenterXM != nil {
		centerX = *cfg.CenterXM
	}
	centerY := cfg.MapDiameterM / 2
	if cfg.CenterYM != nil {
		centerY = *cfg.CenterYM
	}

	dim := Dimension(cfg.MapDiameterM, cfg.CellSizeM)
	g := &Grid{
		cfg:             cfg,
		cellSizeMM:      CellSizeMM(cfg.CellSizeM),
		dimension:       dim,
		windowDimension: WindowDimension(cfg.WindowDiameterM, cfg.CellSizeM),
		centerXMM:       centerX * 1000,
		centerYMM:       centerY * 1000,
		cells:           make([]int16, dim*dim),
		clk:             clk,
		logger:          logger,
	}
	logger.Infow("local map initialized",
		"map_cells", dim, "window_cells", g.windowDimension, "cell_size_mm", g.cellSizeMM)
	return g, nil
}

// Dimension is the number of cells along one edge of the grid.
func (g *Grid) Dimension() int {
	return g.dimension
}

// WindowDimension is the number of cells along one edge of the extracted window.
func (g *Grid) WindowDimension() int {
	return g.windowDimension
}

// CellSizeMM is the edge length of one cell.
func (g *Grid) CellSizeMM() int {
	return g.cellSizeMM
}

// Threshold is the certainty above which a cell counts as occupied.
func (g *Grid) Threshold() int {
	return g.cfg.Threshold
}

// CellOf maps a world position in meters to a cell index. ok is false when the position falls
// outside the grid.
func (g *Grid) CellOf(pos r3.Vector) (x, y int, ok bool) {
	x, y, ok = g.rawCellOf(pos)
	if !ok || !g.inBounds(x, y) {
		return 0, 0, false
	}
	return x, y, true
}

// rawCellOf maps a position to a possibly out of range cell index. Only non finite or
// unrepresentable positions are rejected.
func (g *Grid) rawCellOf(pos r3.Vector) (int, int, bool) {
	fx := math.Floor((pos.X*1000 + g.centerXMM) / float64(g.cellSizeMM))
	fy := math.Floor((pos.Y*1000 + g.centerYMM) / float64(g.cellSizeMM))
	if math.IsNaN(fx) || math.IsNaN(fy) || math.Abs(fx) > math.MaxInt32 || math.Abs(fy) > math.MaxInt32 {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.dimension && y < g.dimension
}

func (g *Grid) index(x, y int) int {
	return y*g.dimension + x
}

// increment assumes the lock is held and (x, y) is in bounds.
func (g *Grid) increment(x, y, amount int) {
	idx := g.index(x, y)
	g.cells[idx] = int16(lo.Clamp(int(g.cells[idx])+amount, 0, g.cfg.MaxCertainty))
}

// Get returns the certainty of the cell containing pos. ok is false when pos is outside the
// grid.
func (g *Grid) Get(pos r3.Vector) (int16, bool) {
	x, y, ok := g.CellOf(pos)
	if !ok {
		return 0, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cells[g.index(x, y)], true
}

// Forget decays every non zero cell by a quarter of the certainty increment, at most once per
// ForgetInterval. It is meant to be called every cycle and reports whether a decay pass ran.
func (g *Grid) Forget() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clk.Now()
	if now.Sub(g.lastForget) <= g.cfg.ForgetInterval {
		return false
	}
	g.lastForget = now

	decrement := g.cfg.CertaintyIncrement / 4
	for i, v := range g.cells {
		if v == 0 {
			continue
		}
		g.cells[i] = int16(lo.Clamp(int(v)-decrement, 0, g.cfg.MaxCertainty))
	}
	return true
}

// NearestDistance returns the distance in meters from pos to the closest cell of the window
// around pos whose certainty is above the threshold, measured from the window center and
// rounded out by half a cell. Cells beyond the grid edge count as occupied. It returns +Inf
// when the window is clear.
func (g *Grid) NearestDistance(pos r3.Vector) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.windowIntoLocked(pos, &g.scratch)
	center := g.scratch.Center()
	nearest := math.Inf(1)
	for y := 0; y < g.scratch.Dim; y++ {
		for x := 0; x < g.scratch.Dim; x++ {
			if int(g.scratch.At(x, y)) <= g.cfg.Threshold {
				continue
			}
			d := math.Hypot(float64(x-center), float64(y-center))
			if d < nearest {
				nearest = d
			}
		}
	}
	if math.IsInf(nearest, 1) {
		return nearest
	}
	cell := float64(g.cellSizeMM)
	return (nearest*cell + cell/2) / 1000
}

// Reset zeroes every grid and window cell and restarts the decay interval.
func (g *Grid) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.cells {
		g.cells[i] = 0
	}
	for i := range g.scratch.Cells {
		g.scratch.Cells[i] = 0
	}
	g.lastForget = time.Time{}
	g.logger.Debug("local map reset")
}
