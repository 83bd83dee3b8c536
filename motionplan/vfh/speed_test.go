package vfh

import (
	"math"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestCantTurnToTarget(t *testing.T) {
	p, _ := newTestPlanner(t, defaultTestConfig())

	for _, tc := range []struct {
		name     string
		distance float64
		heading  float64
		speed    float64
		expected bool
	}{
		{"far ahead", 5, 0, 1, false},
		{"ahead stopped", 1, 0, 0, false},
		{"ahead at speed", 1, 0, 1, true},
		{"behind at speed", 1, math.Pi, 1, true},
		{"sideways at speed", 1, math.Pi / 2, 1, false},
		{"close ahead stopped", 0.5, 0, 0, true},
		{"unknown distance", math.Inf(1), 0, 1, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, p.cantTurnToTarget(tc.distance, tc.heading, tc.speed), test.ShouldEqual, tc.expected)
		})
	}
}

func TestSafetyDistance(t *testing.T) {
	p, _ := newTestPlanner(t, defaultTestConfig())
	test.That(t, p.safetyDistance(0), test.ShouldAlmostEqual, 0.2)
	test.That(t, p.safetyDistance(1), test.ShouldAlmostEqual, 0.4)
	test.That(t, p.safetyDistance(0.5), test.ShouldAlmostEqual, 0.3)
	test.That(t, p.safetyDistance(-5), test.ShouldEqual, 0)
}

func TestBrakesWhenGoalInsideTurningCircle(t *testing.T) {
	p, mockClock := newTestPlanner(t, defaultTestConfig())
	p.SetHistogram(make([]float64, 180))

	// build up speed toward a distant goal
	d := p.Select(0, 0, 5)
	for i := 0; i < 20; i++ {
		mockClock.Add(100 * time.Millisecond)
		d = p.Select(0, d.Speed, 5)
	}
	test.That(t, d.Speed, test.ShouldAlmostEqual, 0.21)

	// the goal is now half a meter ahead and we report moving fast
	mockClock.Add(100 * time.Millisecond)
	d = p.Select(0, 1, 0.5)
	test.That(t, d.Blocked, test.ShouldBeFalse)
	test.That(t, d.Speed, test.ShouldAlmostEqual, 0.16)

	for i := 0; i < 10; i++ {
		mockClock.Add(100 * time.Millisecond)
		d = p.Select(0, 1, 0.5)
		test.That(t, d.Speed, test.ShouldBeGreaterThanOrEqualTo, 0)
	}
	test.That(t, d.Speed, test.ShouldEqual, 0)
}

func TestBootstrapIncrement(t *testing.T) {
	p, mockClock := newTestPlanner(t, defaultTestConfig())
	p.SetHistogram(make([]float64, 180))

	test.That(t, p.Select(0, 0, 10).Speed, test.ShouldAlmostEqual, 0.01)

	// a long pause does not turn into a jump
	mockClock.Add(time.Second)
	test.That(t, p.Select(0, 0, 10).Speed, test.ShouldAlmostEqual, 0.02)

	// neither does a cycle with no elapsed time
	test.That(t, p.Select(0, 0, 10).Speed, test.ShouldAlmostEqual, 0.03)

	mockClock.Add(200 * time.Millisecond)
	test.That(t, p.Select(0, 0, 10).Speed, test.ShouldAlmostEqual, 0.05)

	cfg := defaultTestConfig()
	cfg.BootstrapIncrement = 50
	cfg.BootstrapWindow = 2 * time.Second
	p, mockClock = newTestPlanner(t, cfg)
	p.SetHistogram(make([]float64, 180))
	test.That(t, p.Select(0, 0, 10).Speed, test.ShouldAlmostEqual, 0.05)
	mockClock.Add(time.Second)
	test.That(t, p.Select(0, 0, 10).Speed, test.ShouldAlmostEqual, 0.15)
}

func TestSetInitialSpeed(t *testing.T) {
	p, mockClock := newTestPlanner(t, defaultTestConfig())

	// nothing selected yet, so no cap to speak of
	p.SetInitialSpeed(0.5)
	test.That(t, p.SelectedSpeed(), test.ShouldEqual, 0)

	p.SetHistogram(make([]float64, 180))
	p.Select(0, 0, 10)
	p.SetInitialSpeed(2)
	test.That(t, p.SelectedSpeed(), test.ShouldAlmostEqual, 0.8)
	p.SetInitialSpeed(0.5)
	test.That(t, p.SelectedSpeed(), test.ShouldAlmostEqual, 0.5)

	mockClock.Add(100 * time.Millisecond)
	test.That(t, p.Select(0, 0.5, 10).Speed, test.ShouldAlmostEqual, 0.51)
}
