// Package navsim runs navigation scenarios against a simulated world and reports on them.
package navsim

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/localnav/config"
	"go.viam.com/localnav/localmap"
	"go.viam.com/localnav/logging"
	"go.viam.com/localnav/navigation"
	"go.viam.com/localnav/navigation/fake"
	"go.viam.com/localnav/utils"
)

// Run is the outcome of one scenario.
type Run struct {
	Scenario      config.Scenario
	Steps         int
	Reached       bool
	Collisions    int
	MinClearanceM float64
	DistanceM     float64
	BlockedCycles uint64
	// Speed statistics in m/s over the commanded speeds of every step.
	SpeedMeanMS float64
	SpeedP90MS  float64
	SpeedMaxMS  float64
	Path        []r3.Vector

	grid *localmap.Grid
}

// OK is true when the goal was reached without touching an obstacle.
func (r *Run) OK() bool {
	return r.Reached && r.Collisions == 0
}

// Grid is the navigator's occupancy grid as it was at the end of the run.
func (r *Run) Grid() *localmap.Grid {
	return r.grid
}

// Report collects the runs of one invocation.
type Report struct {
	ID             uuid.UUID
	ConfigFilePath string
	Runs           []*Run
}

// OK is true when every run is OK.
func (r *Report) OK() bool {
	for _, run := range r.Runs {
		if !run.OK() {
			return false
		}
	}
	return true
}

// RunAll runs every scenario of cfg concurrently. Each scenario gets its own clock, base,
// rangefinder and navigator. The first failing scenario cancels the others.
func RunAll(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Report, error) {
	report := &Report{
		ID:             uuid.New(),
		ConfigFilePath: cfg.ConfigFilePath,
		Runs:           make([]*Run, len(cfg.Scenarios)),
	}
	logger.Infow("starting scenarios", "run_id", report.ID, "count", len(cfg.Scenarios))

	g, gctx := errgroup.WithContext(ctx)
	for i, scenario := range cfg.Scenarios {
		g.Go(func() error {
			run, err := RunScenario(gctx, cfg, scenario, logger.Sublogger(scenario.Name))
			if err != nil {
				return errors.Wrapf(err, "scenario %q", scenario.Name)
			}
			report.Runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// RunScenario steps a fresh navigator through scenario until the goal is reached, ctx is done
// or the scenario's step limit is hit.
func RunScenario(ctx context.Context, cfg *config.Config, scenario config.Scenario, logger logging.Logger) (_ *Run, err error) {
	mockClock := clock.NewMock()
	base := fake.NewBase(scenario.Start.Vector(), utils.DegToRad(scenario.StartHeadingDeg), mockClock, logger.Sublogger("base"))
	nav, err := navigation.New(cfg.Navigation, base, mockClock, logger.Sublogger("navigation"))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, nav.Close(context.Background()))
	}()

	stopSlowLogger := utils.SlowLogger(ctx, clock.New(), "scenario still running", "scenario", scenario.Name, logger)
	defer stopSlowLogger()

	sim := fake.NewSimulator(nav, base, cfg.Sensor.Rangefinder(scenario.World()), mockClock, logger)
	nav.SetGoal(scenario.Goal.Vector())

	start, _, _ := base.Pose()
	path := []r3.Vector{start}
	speeds := make([]float64, 0, scenario.MaxSteps)
	res, err := sim.Run(ctx, scenario.MaxSteps, func() {
		pos, _, _ := base.Pose()
		path = append(path, pos)
		speeds = append(speeds, nav.LastDecision().Speed)
	})
	if err != nil {
		return nil, err
	}

	run := &Run{
		Scenario:      scenario,
		Steps:         res.Steps,
		Reached:       res.Reached,
		Collisions:    res.Collisions,
		MinClearanceM: res.MinClearanceM,
		DistanceM:     res.DistanceM,
		BlockedCycles: res.Stats.BlockedCycles,
		Path:          path,
		grid:          nav.Grid(),
	}
	if len(speeds) > 0 {
		run.SpeedMeanMS, err = stats.Mean(speeds)
		if err != nil {
			return nil, err
		}
		run.SpeedP90MS, err = stats.Percentile(speeds, 90)
		if err != nil {
			return nil, err
		}
		run.SpeedMaxMS, err = stats.Max(speeds)
		if err != nil {
			return nil, err
		}
	}
	logger.Infow("scenario finished",
		"reached", run.Reached, "steps", run.Steps, "collisions", run.Collisions, "distance_m", run.DistanceM)
	return run, nil
}
