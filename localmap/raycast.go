package localmap

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/localnav/utils"
)

// traceLine rasterizes the segment between two cells with Bresenham's algorithm and calls visit
// for every cell on it, endpoints included. Lines with |dy| >= |dx| are stepped along y, all
// others along x. The endpoints are ordered along the stepping axis before walking, so tracing
// a->b and b->a visits the same cells.
func traceLine(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx := utils.AbsInt(x1 - x0)
	dy := utils.AbsInt(y1 - y0)

	if dy >= dx {
		if y0 > y1 {
			x0, y0, x1, y1 = x1, y1, x0, y0
		}
		stepX := 1
		if x0 > x1 {
			stepX = -1
		}
		e := 2*dx - dy
		x := x0
		for y := y0; y <= y1; y++ {
			visit(x, y)
			if e > 0 {
				x += stepX
				e -= 2 * dy
			}
			e += 2 * dx
		}
		return
	}

	if x0 > x1 {
		x0, y0, x1, y1 = x1, y1, x0, y0
	}
	stepY := 1
	if y0 > y1 {
		stepY = -1
	}
	e := 2*dy - dx
	y := y0
	for x := x0; x <= x1; x++ {
		visit(x, y)
		if e > 0 {
			y += stepY
			e -= 2 * dx
		}
		e += 2 * dy
	}
}

// Update carves the ray from the robot to an observed obstacle into the grid: every cell on the
// ray except the obstacle cell is cleared to 0 and the obstacle cell gains CertaintyIncrement,
// clamped to MaxCertainty. Rays reaching past the map edge are clipped to it first, so only the
// in-grid part is walked. It reports whether any cell was written.
func (g *Grid) Update(robot, obstacle r3.Vector) bool {
	x0, y0, ok := g.rawCellOf(robot)
	if !ok {
		return false
	}
	x1, y1, ok := g.rawCellOf(obstacle)
	if !ok {
		return false
	}
	cx0, cy0, cx1, cy1, ok := g.clip(x0, y0, x1, y1)
	if !ok {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.local = robot
	written := false
	traceLine(cx0, cy0, cx1, cy1, func(x, y int) {
		if x == x1 && y == y1 {
			return
		}
		if g.inBounds(x, y) {
			g.cells[g.index(x, y)] = 0
			written = true
		}
	})
	if g.inBounds(x1, y1) {
		g.increment(x1, y1, g.cfg.CertaintyIncrement)
		written = true
	}
	return written
}

// clip cuts the segment between two cells down to the part inside the grid (Liang-Barsky on
// cell centers). Segments with both ends inside are returned unchanged. ok is false when the
// segment misses the grid.
func (g *Grid) clip(x0, y0, x1, y1 int) (int, int, int, int, bool) {
	if g.inBounds(x0, y0) && g.inBounds(x1, y1) {
		return x0, y0, x1, y1, true
	}
	px, py := float64(x0)+0.5, float64(y0)+0.5
	dx, dy := float64(x1-x0), float64(y1-y0)
	size := float64(g.dimension)

	t0, t1 := 0.0, 1.0
	for _, edge := range [4][2]float64{{-dx, px}, {dx, size - px}, {-dy, py}, {dy, size - py}} {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, r)
		}
	}

	cell := func(p, d, t float64) int {
		return lo.Clamp(int(math.Floor(p+t*d)), 0, g.dimension-1)
	}
	return cell(px, dx, t0), cell(py, dy, t0), cell(px, dx, t1), cell(py, dy, t1), true
}
