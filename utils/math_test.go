package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngleConversion(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90.0)
}

func TestModAngDeg(t *testing.T) {
	test.That(t, ModAngDeg(0), test.ShouldEqual, 0.0)
	test.That(t, ModAngDeg(360), test.ShouldEqual, 0.0)
	test.That(t, ModAngDeg(370), test.ShouldAlmostEqual, 10.0)
	test.That(t, ModAngDeg(-10), test.ShouldAlmostEqual, 350.0)
	test.That(t, ModAngDeg(-730), test.ShouldAlmostEqual, 350.0)
	test.That(t, ModAngDeg(-1e-15), test.ShouldBeLessThan, 360.0)
}

func TestSignedAngleDiffDeg(t *testing.T) {
	for _, tc := range []struct {
		from, to, expected float64
	}{
		{0, 90, 90},
		{90, 0, -90},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{180, 0, -180},
		{720, 30, 30},
		{45, 45, 0},
	} {
		test.That(t, SignedAngleDiffDeg(tc.from, tc.to), test.ShouldAlmostEqual, tc.expected)
		test.That(t, AngleDiffDeg(tc.from, tc.to), test.ShouldAlmostEqual, math.Abs(tc.expected))
	}
}

func TestIntHelpers(t *testing.T) {
	test.That(t, AbsInt(-4), test.ShouldEqual, 4)
	test.That(t, AbsInt(4), test.ShouldEqual, 4)
	test.That(t, SquareInt(-3), test.ShouldEqual, 9)
	test.That(t, Square(1.5), test.ShouldEqual, 2.25)
}
