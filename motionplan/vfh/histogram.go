package vfh

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/localnav/localmap"
	"go.viam.com/localnav/utils"
)

// UpdateMap pulls the window around pos from src and rebuilds the histogram from it.
// currentSpeed is in m/s.
func (p *Planner) UpdateMap(src WindowSource, pos r3.Vector, currentSpeed float64) {
	src.WindowInto(pos, &p.window)
	p.position = pos
	p.currentSpeed = currentSpeed
	p.UpdateWindow(&p.window)
}

// UpdateWindow rebuilds the polar histogram from an occupancy window. Every occupied cell spreads
// its magnitude over the buckets covered by the angle an obstacle of the robot's radius subtends
// at that distance. Windows of a different size than the planner was built for are weighted on
// the fly.
func (p *Planner) UpdateWindow(w *localmap.Window) {
	p.state = StateIdle
	for i := range p.hist {
		p.hist[i] = 0
	}

	precomputed := w.Dim == p.windowDim && float64(w.CellSizeMM) == p.cellSizeMM
	center := w.Center()
	for y := 0; y < w.Dim; y++ {
		for x := 0; x < w.Dim; x++ {
			if w.At(x, y) <= 0 {
				continue
			}
			var d, mag float64
			if precomputed {
				d, mag = p.distance[y*w.Dim+x], p.magnitude[y*w.Dim+x]
			} else {
				d, mag = p.weight(x-center, y-center, float64(w.CellSizeMM))
			}
			if mag == 0 {
				continue
			}
			beta := utils.ModAngDeg(utils.RadToDeg(math.Atan2(float64(y-center), float64(x-center))))
			if d <= p.robotRadiusMM {
				p.hist[p.bucket(beta)] += mag
				continue
			}
			p.spread(beta, utils.RadToDeg(math.Asin(p.robotRadiusMM/d)), mag)
		}
	}
	p.state = StateHistogramBuilt

	p.logger.Debugw("histogram built",
		"position", p.position,
		"peak", floats.Max(p.hist),
		"total", floats.Sum(p.hist))
}

// spread adds mag once to every bucket overlapping [beta-sigma, beta+sigma].
func (p *Planner) spread(beta, sigma, mag float64) {
	n := len(p.hist)
	alpha := float64(p.cfg.AlphaDeg)
	first := int(math.Floor((beta - sigma) / alpha))
	last := int(math.Floor((beta + sigma) / alpha))
	if last-first+1 >= n {
		floats.AddConst(mag, p.hist)
		return
	}
	for b := first; b <= last; b++ {
		p.hist[((b%n)+n)%n] += mag
	}
}

// bucket maps a heading in [0, 360) to its histogram index.
func (p *Planner) bucket(deg float64) int {
	return int(deg/float64(p.cfg.AlphaDeg)) % len(p.hist)
}
