package fake

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/localnav/logging"
	"go.viam.com/localnav/navigation"
)

// Result summarizes a simulation run.
type Result struct {
	Steps      int
	Reached    bool
	Collisions int
	// MinClearanceM is the closest the vehicle came to an obstacle surface, minus its radius.
	MinClearanceM float64
	DistanceM     float64
	Stats         navigation.Stats
}

// Simulator steps a navigator, a base and a rangefinder in lockstep on a mock clock.
type Simulator struct {
	Navigator    *navigation.Navigator
	Base         *Base
	Rangefinder  *Rangefinder
	Clock        *clock.Mock
	RobotRadiusM float64

	logger  logging.Logger
	reached atomic.Bool
	result  Result
}

// NewSimulator wires nav, base and rangefinder together. nav must send its commands to base.
func NewSimulator(
	nav *navigation.Navigator,
	base *Base,
	rangefinder *Rangefinder,
	clk *clock.Mock,
	logger logging.Logger,
) *Simulator {
	if logger == nil {
		logger = logging.Global()
	}
	s := &Simulator{
		Navigator:    nav,
		Base:         base,
		Rangefinder:  rangefinder,
		Clock:        clk,
		RobotRadiusM: nav.Config().VFH.RobotRadiusM,
		logger:       logger,
	}
	start, _, _ := base.Pose()
	s.result.MinClearanceM = rangefinder.World.Clearance(start) - s.RobotRadiusM
	nav.AddOffboardListener(navigation.OffboardListenerFunc(func(current navigation.State, kind navigation.ActionKind) {
		if kind == navigation.ActionTargetReached {
			s.reached.Store(true)
		}
	}))
	return s
}

// Step senses, plans and advances the clock by one planning period.
func (s *Simulator) Step(ctx context.Context) error {
	pos, heading, speed := s.Base.Pose()
	s.Navigator.UpdatePose(pos, heading, speed)
	for _, hit := range s.Rangefinder.Scan(pos, heading) {
		s.Navigator.Observe(hit)
	}
	if _, err := s.Navigator.Tick(ctx); err != nil {
		return errors.Wrapf(err, "step %d", s.result.Steps)
	}
	cfg := s.Navigator.Config()
	s.Clock.Add(cfg.Period())
	s.result.Steps++

	pos, _, _ = s.Base.Pose()
	clearance := s.Rangefinder.World.Clearance(pos) - s.RobotRadiusM
	if clearance < s.result.MinClearanceM {
		s.result.MinClearanceM = clearance
	}
	if clearance < 0 {
		s.result.Collisions++
		s.logger.Warnw("vehicle touches an obstacle", "position", pos, "clearance", clearance)
	}
	return nil
}

// Run steps until the goal is reached, ctx is done or maxSteps have run. onStep, if set, is
// called after every completed step.
func (s *Simulator) Run(ctx context.Context, maxSteps int, onStep func()) (Result, error) {
	for i := 0; i < maxSteps && !s.Reached(); i++ {
		if err := ctx.Err(); err != nil {
			return s.Result(), err
		}
		if err := s.Step(ctx); err != nil {
			return s.Result(), err
		}
		if onStep != nil {
			onStep()
		}
	}
	return s.Result(), nil
}

// Reached reports whether the navigator has announced its goal as reached.
func (s *Simulator) Reached() bool {
	return s.reached.Load()
}

// Result returns the summary so far.
func (s *Simulator) Result() Result {
	r := s.result
	r.Reached = s.Reached()
	r.DistanceM = s.Base.Odometer()
	r.Stats = s.Navigator.Stats()
	return r
}
