// Package utils contains angle helpers and background worker management shared by the grid,
// the planner and the navigator.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// ModAngDeg normalizes an angle in degrees into [0, 360).
func ModAngDeg(ang float64) float64 {
	ang = math.Mod(math.Mod(ang, 360)+360, 360)
	if ang >= 360 {
		// math.Mod of a tiny negative value can round back up to 360.
		return 0
	}
	return ang
}

// SignedAngleDiffDeg returns the shortest signed rotation in degrees, in [-180, 180], that takes
// from onto to.
func SignedAngleDiffDeg(from, to float64) float64 {
	diff := math.Mod(to-from, 360)
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}
	return diff
}

// AngleDiffDeg returns the closest difference from the two given angles. The arguments are
// commutative.
func AngleDiffDeg(a1, a2 float64) float64 {
	return math.Abs(SignedAngleDiffDeg(a1, a2))
}

// AbsInt returns |n|.
func AbsInt(n int) int {
	if n < 0 {
		return -1 * n
	}
	return n
}

// Square returns n*n.
func Square(n float64) float64 {
	return n * n
}

// SquareInt returns n*n.
func SquareInt(n int) int {
	return n * n
}
