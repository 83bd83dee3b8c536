package vfh

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"golang.org/x/time/rate"

	"go.viam.com/localnav/localmap"
	"go.viam.com/localnav/logging"
	"go.viam.com/localnav/utils"
)

// WindowSource hands out occupancy windows centered on a position. *localmap.Grid implements it.
type WindowSource interface {
	WindowInto(pos r3.Vector, dst *localmap.Window)
}

// Decision is the outcome of one planning cycle.
type Decision struct {
	// Heading in radians in [0, 2pi).
	Heading float64
	// Speed in m/s.
	Speed   float64
	Blocked bool
	Class   SpeedClass
	State   State
}

// Planner turns occupancy windows into heading and speed decisions. It is not safe for
// concurrent use; drive it from a single control loop.
type Planner struct {
	cfg           Config
	windowDim     int
	cellSizeMM    float64
	robotRadiusMM float64

	// indexed like localmap.Window.Cells
	distance  []float64
	magnitude []float64

	hist       []float64
	borders    []Border
	candidates []Candidate
	window     localmap.Window

	position     r3.Vector
	currentSpeed float64

	desiredHeading      float64
	selectedHeading     float64
	lastSelectedHeading float64
	selectedSpeed       float64
	lastSelectedSpeed   float64
	maxSpeedForAngle    float64
	selectedClass       SpeedClass
	lastSelect          time.Time
	state               State

	clk        clock.Clock
	logger     logging.Logger
	blockedLog rate.Sometimes
}

// New returns a planner for windows of the configured size. A nil clock uses the wall clock and
// a nil logger the global one.
func New(cfg Config, clk clock.Clock, logger logging.Logger) (*Planner, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate("vfh"); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.Global()
	}

	dim := localmap.WindowDimension(cfg.WindowSizeM, cfg.CellSizeM)
	cellSizeMM := localmap.CellSizeMM(cfg.CellSizeM)
	p := &Planner{
		cfg:           cfg,
		windowDim:     dim,
		cellSizeMM:    float64(cellSizeMM),
		robotRadiusMM: cfg.RobotRadiusM * 1000,
		distance:      make([]float64, dim*dim),
		magnitude:     make([]float64, dim*dim),
		hist:          make([]float64, 360/cfg.AlphaDeg),
		window:        *localmap.NewWindow(dim, cellSizeMM),
		clk:           clk,
		logger:        logger,
		blockedLog:    rate.Sometimes{First: 1, Interval: time.Second},
	}

	center := dim / 2
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			d, m := p.weight(x-center, y-center, p.cellSizeMM)
			p.distance[y*dim+x] = d
			p.magnitude[y*dim+x] = m
		}
	}
	logger.Debugw("vfh planner initialized",
		"window_dim", dim, "cell_size_mm", cellSizeMM, "buckets", len(p.hist))
	return p, nil
}

// weight returns the distance in mm of a cell offset from the window center and the repulsive
// magnitude of an obstacle there.
func (p *Planner) weight(dx, dy int, cellSizeMM float64) (float64, float64) {
	d := math.Hypot(float64(dx), float64(dy)) * cellSizeMM
	if d >= p.cfg.MagnitudeRangeMM {
		return d, 0
	}
	return d, math.Pow(p.cfg.MagnitudeRangeMM-d, 4) / defaultMagnitudeScale
}

// Config returns the effective configuration with defaults applied.
func (p *Planner) Config() Config {
	return p.cfg
}

// WindowDimension is the window edge length in cells the precomputed tables are sized for.
func (p *Planner) WindowDimension() int {
	return p.windowDim
}

// Alpha is the histogram sector width in degrees.
func (p *Planner) Alpha() int {
	return p.cfg.AlphaDeg
}

// Histogram returns a copy of the current polar histogram.
func (p *Planner) Histogram() []float64 {
	return append([]float64(nil), p.hist...)
}

// SetHistogram replaces the histogram, bypassing the window. Values beyond the bucket count are
// ignored and missing ones are zero.
func (p *Planner) SetHistogram(hist []float64) {
	for i := range p.hist {
		p.hist[i] = 0
	}
	copy(p.hist, hist)
	p.state = StateHistogramBuilt
}

// Borders are the free gaps found by the last Select.
func (p *Planner) Borders() []Border {
	return append([]Border(nil), p.borders...)
}

// Candidates are the scored headings of the last Select.
func (p *Planner) Candidates() []Candidate {
	return append([]Candidate(nil), p.candidates...)
}

// State is the step the current cycle reached.
func (p *Planner) State() State {
	return p.state
}

// SelectedHeading is the last selected heading in radians.
func (p *Planner) SelectedHeading() float64 {
	return utils.DegToRad(p.selectedHeading)
}

// SelectedSpeed is the last selected speed in m/s.
func (p *Planner) SelectedSpeed() float64 {
	return p.selectedSpeed / 1000
}

// MaxSpeedForAngle is the speed cap of the last selected candidate in m/s.
func (p *Planner) MaxSpeedForAngle() float64 {
	return p.maxSpeedForAngle / 1000
}

// SetInitialSpeed seeds the speed ramp with the vehicle's current speed in m/s, capped by the
// current candidate's class.
func (p *Planner) SetInitialSpeed(speed float64) {
	p.selectedSpeed = math.Max(0, math.Min(speed*1000, p.maxSpeedForAngle))
	p.lastSelectedSpeed = p.selectedSpeed
}

// Select picks a heading and speed for the current histogram. desired is the heading toward the
// goal in radians, currentSpeed the vehicle speed in m/s and distanceToGoal the goal distance
// in meters.
func (p *Planner) Select(desired, currentSpeed, distanceToGoal float64) Decision {
	now := p.clk.Now()
	elapsed := now.Sub(p.lastSelect)
	bootstrap := p.lastSelect.IsZero() || elapsed <= 0 || elapsed > p.cfg.BootstrapWindow
	p.lastSelect = now

	desiredDeg := utils.ModAngDeg(utils.RadToDeg(desired))
	if !p.selectHeading(desiredDeg) {
		p.selectedSpeed = 0
		p.lastSelectedSpeed = 0
		p.maxSpeedForAngle = 0
		p.selectedClass = SpeedNone
		p.state = StateBlocked
		p.blockedLog.Do(func() {
			p.logger.Warnw("no passable gap, holding position",
				"desired_deg", desiredDeg, "position", p.position, "gaps", len(p.borders))
		})
		return p.decision()
	}

	p.selectSpeed(elapsed, bootstrap, desired, currentSpeed, distanceToGoal)
	p.state = StateSpeedComputed
	return p.decision()
}

func (p *Planner) decision() Decision {
	return Decision{
		Heading: utils.DegToRad(p.selectedHeading),
		Speed:   p.selectedSpeed / 1000,
		Blocked: p.state == StateBlocked,
		Class:   p.selectedClass,
		State:   p.state,
	}
}
