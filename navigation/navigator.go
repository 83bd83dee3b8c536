package navigation

import (
	"context"
	"math"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/localnav/localmap"
	"go.viam.com/localnav/logging"
	"go.viam.com/localnav/motionplan/vfh"
	"go.viam.com/localnav/utils"
)

// Stats counts what a Navigator has done since it was created.
type Stats struct {
	Cycles        uint64
	BlockedCycles uint64
	Observations  uint64
	GoalsReached  uint64
}

// Navigator runs the perception and planning cycle for one vehicle.
type Navigator struct {
	cfg     Config
	sink    CommandSink
	clk     clock.Clock
	logger  logging.Logger
	grid    *localmap.Grid
	workers utils.StoppableWorkers

	mu                sync.Mutex
	planner           *vfh.Planner
	state             State
	goal              r3.Vector
	hasGoal           bool
	seedSpeed         bool
	lastDecision      vfh.Decision
	stateListeners    []StateListener
	offboardListeners []OffboardListener

	cycles        atomic.Uint64
	blockedCycles atomic.Uint64
	observations  atomic.Uint64
	goalsReached  atomic.Uint64
}

// New returns a Navigator sending its commands to sink. A nil clock uses the wall clock and a nil
// logger the global one.
func New(cfg Config, sink CommandSink, clk clock.Clock, logger logging.Logger) (*Navigator, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate("navigation"); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, errors.New("navigation requires a command sink")
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.Global()
	}

	grid, err := localmap.NewGrid(cfg.LocalMap, clk, logger.Sublogger("localmap"))
	if err != nil {
		return nil, errors.Wrap(err, "creating local map")
	}
	planner, err := vfh.New(cfg.VFH, clk, logger.Sublogger("vfh"))
	if err != nil {
		return nil, errors.Wrap(err, "creating vfh planner")
	}
	return &Navigator{
		cfg:     cfg,
		sink:    sink,
		clk:     clk,
		logger:  logger,
		grid:    grid,
		planner: planner,
		workers: utils.NewStoppableWorkers(),
	}, nil
}

// Grid returns the local map. It is safe to read concurrently with the navigator.
func (n *Navigator) Grid() *localmap.Grid {
	return n.grid
}

// Config returns the effective configuration with defaults applied.
func (n *Navigator) Config() Config {
	return n.cfg
}

// AddStateListener registers l to be called on every pose update.
func (n *Navigator) AddStateListener(l StateListener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stateListeners = append(n.stateListeners, l)
}

// AddOffboardListener registers l to be told when the goal is reached or navigation aborted.
func (n *Navigator) AddOffboardListener(l OffboardListener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.offboardListeners = append(n.offboardListeners, l)
}

// State returns the current vehicle state.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// UpdatePose records a new vehicle pose. heading is in radians and speed in m/s.
func (n *Navigator) UpdatePose(pos r3.Vector, heading, speed float64) {
	n.mu.Lock()
	before := n.state
	after := State{Position: pos, Heading: heading, Speed: speed, Time: n.clk.Now()}
	after = after.SetFlag(FlagPosition, finite(pos.X) && finite(pos.Y))
	after = after.SetFlag(FlagHeading, finite(heading))
	after = after.SetFlag(FlagSpeed, finite(speed))
	n.state = after
	listeners := append([]StateListener(nil), n.stateListeners...)
	n.mu.Unlock()

	for _, l := range listeners {
		l(before, after)
	}
}

// Observe records an obstacle seen from the current position. It reports false when the
// position is unknown or the observation could not be placed on the map.
func (n *Navigator) Observe(obstacle r3.Vector) bool {
	state := n.State()
	if !state.Valid(FlagPosition) {
		return false
	}
	return n.ObserveFrom(state.Position, obstacle)
}

// ObserveFrom records an obstacle seen from robot.
func (n *Navigator) ObserveFrom(robot, obstacle r3.Vector) bool {
	if !n.grid.Update(robot, obstacle) {
		return false
	}
	n.observations.Inc()
	return true
}

// SetGoal starts navigating toward goal, given in world meters.
func (n *Navigator) SetGoal(goal r3.Vector) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.goal = goal
	n.hasGoal = true
	n.seedSpeed = true
	n.logger.Infow("goal set", "goal", goal)
}

// Goal returns the current goal, if any.
func (n *Navigator) Goal() (r3.Vector, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.goal, n.hasGoal
}

// LastDecision returns the decision of the most recent planning cycle.
func (n *Navigator) LastDecision() vfh.Decision {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastDecision
}

// PlannerString renders the planner histogram of the most recent cycle.
func (n *Navigator) PlannerString() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.planner.String()
}

// Stats returns the navigator counters.
func (n *Navigator) Stats() Stats {
	return Stats{
		Cycles:        n.cycles.Load(),
		BlockedCycles: n.blockedCycles.Load(),
		Observations:  n.observations.Load(),
		GoalsReached:  n.goalsReached.Load(),
	}
}

// Tick runs one planning cycle: decay the map, check the goal, build the histogram around the
// vehicle, select a heading and speed and hand them to the command sink. Without a goal or a
// valid position it does nothing.
func (n *Navigator) Tick(ctx context.Context) (vfh.Decision, error) {
	n.mu.Lock()
	n.grid.Forget()
	state := n.state
	if !n.hasGoal || !state.Valid(FlagPosition) {
		n.mu.Unlock()
		return vfh.Decision{}, nil
	}

	dx, dy := n.goal.X-state.Position.X, n.goal.Y-state.Position.Y
	distance := math.Hypot(dx, dy)
	if distance <= n.cfg.AcceptanceRadiusM {
		n.hasGoal = false
		n.lastDecision = vfh.Decision{Heading: state.Heading}
		listeners := append([]OffboardListener(nil), n.offboardListeners...)
		n.mu.Unlock()

		n.goalsReached.Inc()
		n.logger.Infow("goal reached", "position", state.Position, "distance", distance)
		for _, l := range listeners {
			l.Action(state, ActionTargetReached)
		}
		return vfh.Decision{Heading: state.Heading}, n.sink.SetVelocity(ctx, state.Heading, 0)
	}

	speed := 0.0
	if state.Valid(FlagSpeed) {
		speed = state.Speed
	}
	n.planner.UpdateMap(n.grid, state.Position, speed)
	if n.seedSpeed {
		n.planner.SetInitialSpeed(speed)
		n.seedSpeed = false
	}
	decision := n.planner.Select(math.Atan2(dy, dx), speed, distance)
	n.lastDecision = decision
	n.mu.Unlock()

	n.cycles.Inc()
	if decision.Blocked {
		n.blockedCycles.Inc()
	}
	n.logger.Debugw("planning cycle",
		"heading", decision.Heading, "speed", decision.Speed, "class", decision.Class, "state", decision.State)
	if err := n.sink.SetVelocity(ctx, decision.Heading, decision.Speed); err != nil {
		return decision, errors.Wrap(err, "sending velocity command")
	}
	return decision, nil
}

// Start runs Tick in the background at the configured frequency until Close.
func (n *Navigator) Start() {
	n.workers.AddTicker(n.clk, n.cfg.Period(), func(ctx context.Context) {
		if _, err := n.Tick(ctx); err != nil {
			n.logger.Warnw("planning cycle failed", "error", err)
		}
	})
}

// Abort drops the goal, stops the vehicle and tells the offboard listeners.
func (n *Navigator) Abort(ctx context.Context) error {
	n.mu.Lock()
	hadGoal := n.hasGoal
	n.hasGoal = false
	state := n.state
	listeners := append([]OffboardListener(nil), n.offboardListeners...)
	n.mu.Unlock()

	if hadGoal {
		n.logger.Infow("navigation aborted", "position", state.Position)
		for _, l := range listeners {
			l.Action(state, ActionAbort)
		}
	}
	return n.sink.SetVelocity(ctx, state.Heading, 0)
}

// Close stops the background loop, aborts any active goal and closes the command sink if it
// can be closed.
func (n *Navigator) Close(ctx context.Context) error {
	n.workers.Stop()
	return multierr.Combine(
		n.Abort(ctx),
		goutils.TryClose(ctx, n.sink),
	)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
