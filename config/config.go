// Package config defines the structures to configure a navigation simulation run.
package config

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/localnav/logging"
	"go.viam.com/localnav/navigation"
	"go.viam.com/localnav/navigation/fake"
	rutils "go.viam.com/localnav/utils"
)

const (
	defaultMaxSteps     = 3000
	defaultSensorRangeM = 3.0
	defaultSensorFOVDeg = 180.0
	defaultSensorRays   = 37
	defaultLogLevel     = "info"
)

// A Config describes a set of simulated navigation scenarios sharing one navigator setup.
type Config struct {
	Navigation navigation.Config `json:"navigation"`
	Sensor     SensorConfig      `json:"sensor"`
	Scenarios  []Scenario        `json:"scenarios"`
	LogLevel   string            `json:"log_level"`

	ConfigFilePath string `json:"-"`
}

// SensorConfig describes the simulated rangefinder.
type SensorConfig struct {
	MaxRangeM      float64 `json:"max_range_m"`
	FieldOfViewDeg float64 `json:"field_of_view_deg"`
	Rays           int     `json:"rays"`
}

// Point is a position in world meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vector converts the point to an r3.Vector with z = 0.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y}
}

// Obstacle is a circular obstacle.
type Obstacle struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	RadiusM float64 `json:"radius_m"`
}

// Scenario is one start, goal and obstacle layout.
type Scenario struct {
	Name            string     `json:"name"`
	Start           Point      `json:"start"`
	StartHeadingDeg float64    `json:"start_heading_deg"`
	Goal            Point      `json:"goal"`
	Obstacles       []Obstacle `json:"obstacles"`
	MaxSteps        int        `json:"max_steps"`
}

// World builds the simulated world of the scenario.
func (s *Scenario) World() *fake.World {
	w := &fake.World{Obstacles: make([]fake.Circle, 0, len(s.Obstacles))}
	for _, o := range s.Obstacles {
		w.Obstacles = append(w.Obstacles, fake.Circle{Center: r3.Vector{X: o.X, Y: o.Y}, RadiusM: o.RadiusM})
	}
	return w
}

// Rangefinder builds the simulated rangefinder looking into w.
func (sc *SensorConfig) Rangefinder(w *fake.World) *fake.Rangefinder {
	return &fake.Rangefinder{
		World:       w,
		MaxRangeM:   sc.MaxRangeM,
		FieldOfView: rutils.DegToRad(sc.FieldOfViewDeg),
		Rays:        sc.Rays,
	}
}

// WithDefaults returns a copy of the config with unset fields filled in.
func (c Config) WithDefaults() Config {
	c.Navigation = c.Navigation.WithDefaults()
	if c.Sensor.MaxRangeM == 0 {
		c.Sensor.MaxRangeM = defaultSensorRangeM
	}
	if c.Sensor.FieldOfViewDeg == 0 {
		c.Sensor.FieldOfViewDeg = defaultSensorFOVDeg
	}
	if c.Sensor.Rays == 0 {
		c.Sensor.Rays = defaultSensorRays
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	scenarios := make([]Scenario, len(c.Scenarios))
	for i, s := range c.Scenarios {
		if s.Name == "" {
			s.Name = fmt.Sprintf("scenario-%d", i)
		}
		if s.MaxSteps == 0 {
			s.MaxSteps = defaultMaxSteps
		}
		scenarios[i] = s
	}
	c.Scenarios = scenarios
	return c
}

// Ensure ensures all parts of the config are valid.
func (c *Config) Ensure() error {
	if err := c.Navigation.Validate("navigation"); err != nil {
		return err
	}
	if err := c.Sensor.Validate("sensor"); err != nil {
		return err
	}
	if _, err := logging.LevelFromString(c.LogLevel); err != nil {
		return utils.NewConfigValidationError("log_level", err)
	}
	if len(c.Scenarios) == 0 {
		return utils.NewConfigValidationFieldRequiredError("", "scenarios")
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for i := range c.Scenarios {
		s := &c.Scenarios[i]
		if seen[s.Name] {
			return errors.Errorf("scenario name %q is not unique", s.Name)
		}
		seen[s.Name] = true
		if err := s.Validate(fmt.Sprintf("%s.%d", "scenarios", i)); err != nil {
			return err
		}
	}
	return nil
}

// Validate ensures all parts of the sensor config are valid.
func (sc *SensorConfig) Validate(path string) error {
	if sc.MaxRangeM <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "max_range_m")
	}
	if sc.FieldOfViewDeg < 0 || sc.FieldOfViewDeg > 360 {
		return utils.NewConfigValidationError(path, errors.New("field_of_view_deg must be in [0, 360]"))
	}
	if sc.Rays < 0 {
		return utils.NewConfigValidationError(path, errors.New("rays must not be negative"))
	}
	return nil
}

// Validate ensures all parts of the scenario are valid.
func (s *Scenario) Validate(path string) error {
	for _, v := range []float64{s.Start.X, s.Start.Y, s.Goal.X, s.Goal.Y, s.StartHeadingDeg} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return utils.NewConfigValidationError(path, errors.New("start, goal and heading must be finite"))
		}
	}
	if s.MaxSteps < 0 {
		return utils.NewConfigValidationError(path, errors.New("max_steps must not be negative"))
	}
	for i, o := range s.Obstacles {
		if o.RadiusM <= 0 {
			return utils.NewConfigValidationFieldRequiredError(fmt.Sprintf("%s.obstacles.%d", path, i), "radius_m")
		}
	}
	return nil
}
