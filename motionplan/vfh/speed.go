package vfh

import (
	"math"
	"time"
)

// selectSpeed ramps the speed toward the cap of the selected candidate. The ramp reverses into
// braking when the goal sits inside the turning circle the vehicle needs at its current speed.
func (p *Planner) selectSpeed(elapsed time.Duration, bootstrap bool, desired, currentSpeed, distanceToGoal float64) {
	incr := p.cfg.BootstrapIncrement
	if !bootstrap {
		incr = p.cfg.MaxAccelMMPerSec2 * elapsed.Seconds()
	}
	if p.cantTurnToTarget(distanceToGoal, desired, currentSpeed) {
		incr = -p.cfg.BrakeFactor * incr
	}
	p.selectedSpeed = math.Max(0, math.Min(p.lastSelectedSpeed+incr, p.maxSpeedForAngle))
	p.lastSelectedSpeed = p.selectedSpeed
}

// safetyDistance grows linearly with speed in m/s from the stopped to the full distance.
func (p *Planner) safetyDistance(speed float64) float64 {
	return math.Max(0, p.cfg.SafetyDistStoppedM+speed*(p.cfg.SafetyDistFullM-p.cfg.SafetyDistStoppedM))
}

// cantTurnToTarget reports whether the goal, distance meters away at heading radians, lies inside
// the left or right turning circle for the given speed.
func (p *Planner) cantTurnToTarget(distance, heading, speed float64) bool {
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return false
	}
	r := p.cfg.RobotRadiusM + p.safetyDistance(speed)
	gx := distance * math.Cos(heading)
	gy := distance * math.Sin(heading)
	if math.Hypot(gx-r, gy)+p.cfg.TurnMarginM < r {
		return true
	}
	return math.Hypot(-gx-r, gy)+p.cfg.TurnMarginM < r
}
