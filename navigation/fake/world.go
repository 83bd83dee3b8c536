// Package fake implements a simulated world, rangefinder and base for exercising a navigator
// without hardware.
package fake

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"
)

// Circle is a round obstacle in world meters.
type Circle struct {
	Center  r3.Vector `json:"center"`
	RadiusM float64   `json:"radius_m"`
}

// World is a flat plane of circular obstacles.
type World struct {
	Obstacles []Circle `json:"obstacles"`
}

// Raycast returns the first obstacle point hit by a ray from origin at angle radians within
// maxRange meters.
func (w *World) Raycast(origin r3.Vector, angle, maxRange float64) (r3.Vector, bool) {
	dir := r3.Vector{X: math.Cos(angle), Y: math.Sin(angle)}
	best := math.Inf(1)
	for _, c := range w.Obstacles {
		if t, ok := intersect(origin, dir, c); ok && t < best {
			best = t
		}
	}
	if best > maxRange {
		return r3.Vector{}, false
	}
	return origin.Add(dir.Mul(best)), true
}

// intersect returns the smallest non-negative distance along dir at which the ray hits c.
func intersect(origin, dir r3.Vector, c Circle) (float64, bool) {
	f := r3.Vector{X: origin.X - c.Center.X, Y: origin.Y - c.Center.Y}
	b := f.X*dir.X + f.Y*dir.Y
	disc := b*b - (f.X*f.X + f.Y*f.Y - c.RadiusM*c.RadiusM)
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -b - sq; t >= 0 {
		return t, true
	}
	if t := -b + sq; t >= 0 {
		return t, true
	}
	return 0, false
}

// Clearance is the distance from pos to the nearest obstacle surface, negative inside one.
func (w *World) Clearance(pos r3.Vector) float64 {
	if len(w.Obstacles) == 0 {
		return math.Inf(1)
	}
	nearest := lo.MinBy(w.Obstacles, func(a, b Circle) bool {
		return surfaceDistance(pos, a) < surfaceDistance(pos, b)
	})
	return surfaceDistance(pos, nearest)
}

func surfaceDistance(pos r3.Vector, c Circle) float64 {
	return math.Hypot(pos.X-c.Center.X, pos.Y-c.Center.Y) - c.RadiusM
}

// Rangefinder casts a fan of rays into a World.
type Rangefinder struct {
	World     *World
	MaxRangeM float64
	// FieldOfView is the total fan width in radians, centered on the heading.
	FieldOfView float64
	Rays        int
}

// Scan returns the obstacle points seen from pos looking along heading.
func (r *Rangefinder) Scan(pos r3.Vector, heading float64) []r3.Vector {
	if r.Rays <= 0 {
		return nil
	}
	var hits []r3.Vector
	for i := 0; i < r.Rays; i++ {
		angle := heading
		if r.Rays > 1 {
			angle += -r.FieldOfView/2 + r.FieldOfView*float64(i)/float64(r.Rays-1)
		}
		if p, ok := r.World.Raycast(pos, angle, r.MaxRangeM); ok {
			hits = append(hits, p)
		}
	}
	return hits
}
