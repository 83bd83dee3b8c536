package fake

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/localnav/logging"
)

// Base is a simulated vehicle that turns instantly to the commanded heading and moves at the
// commanded speed, integrating its position over clock time.
type Base struct {
	mu         sync.Mutex
	clk        clock.Clock
	logger     logging.Logger
	position   r3.Vector
	heading    float64
	speed      float64
	odometer   float64
	lastUpdate time.Time
	commands   int
	closed     bool
}

// NewBase returns a base standing at start facing heading radians.
func NewBase(start r3.Vector, heading float64, clk clock.Clock, logger logging.Logger) *Base {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &Base{
		clk:        clk,
		logger:     logger,
		position:   start,
		heading:    heading,
		lastUpdate: clk.Now(),
	}
}

// SetVelocity commands a heading in radians and a speed in m/s.
func (b *Base) SetVelocity(ctx context.Context, heading, speed float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.New("base is closed")
	}
	if speed < 0 || math.IsNaN(speed) || math.IsNaN(heading) {
		return errors.Errorf("invalid velocity command heading %v speed %v", heading, speed)
	}
	b.advanceLocked()
	b.heading = heading
	b.speed = speed
	b.commands++
	return nil
}

// Pose returns the current position, heading and speed.
func (b *Base) Pose() (r3.Vector, float64, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advanceLocked()
	return b.position, b.heading, b.speed
}

// Odometer is the distance travelled in meters.
func (b *Base) Odometer() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advanceLocked()
	return b.odometer
}

// Commands is the number of velocity commands accepted.
func (b *Base) Commands() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commands
}

// Close stops the base. Later commands fail.
func (b *Base) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advanceLocked()
	b.speed = 0
	b.closed = true
	b.logger.Debugw("fake base closed", "position", b.position, "odometer", b.odometer)
	return nil
}

func (b *Base) advanceLocked() {
	now := b.clk.Now()
	dt := now.Sub(b.lastUpdate).Seconds()
	b.lastUpdate = now
	if dt <= 0 || b.speed == 0 {
		return
	}
	step := b.speed * dt
	b.position = b.position.Add(r3.Vector{X: math.Cos(b.heading), Y: math.Sin(b.heading)}.Mul(step))
	b.odometer += step
}
