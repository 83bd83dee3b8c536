package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"
)

func TestFromReaderValidate(t *testing.T) {
	_, err := FromReader("somepath", strings.NewReader(""))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode Config from json")

	_, err = FromReader("somepath", strings.NewReader(`{"scenarios": [`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode Config from json")

	_, err = FromReader("somepath", strings.NewReader(`{}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"scenarios" is required`)

	_, err = FromReader("somepath", strings.NewReader(`{"scenarios": [{}], "sensr": {}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "sensr")

	_, err = FromReader("somepath", strings.NewReader(`{"scenarios": [{}], "log_level": "loud"}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown log level")

	_, err = FromReader("somepath", strings.NewReader(`{"scenarios": [{"name": "a"}, {"name": "a"}]}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not unique")

	_, err = FromReader("somepath", strings.NewReader(`{"scenarios": [{"obstacles": [{"x": 1}]}]}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "scenarios.0.obstacles.0")
	test.That(t, err.Error(), test.ShouldContainSubstring, `"radius_m" is required`)

	_, err = FromReader("somepath", strings.NewReader(`{"scenarios": [{}], "navigation": {"frequency_hz": -1}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "frequency_hz")

	_, err = FromReader("somepath", strings.NewReader(
		`{"scenarios": [{}], "navigation": {"vfh": {"window_size_m": 5}}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "does not match the local map window")

	conf, err := FromReader("somepath", strings.NewReader(`{"scenarios": [{}, {"name": "b", "max_steps": 5}]}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.ConfigFilePath, test.ShouldEqual, "somepath")
	test.That(t, conf.LogLevel, test.ShouldEqual, "info")
	test.That(t, conf.Sensor, test.ShouldResemble, SensorConfig{MaxRangeM: 3, FieldOfViewDeg: 180, Rays: 37})
	test.That(t, conf.Navigation.FrequencyHz, test.ShouldEqual, 10)
	test.That(t, conf.Navigation.VFH.WindowSizeM, test.ShouldEqual, conf.Navigation.LocalMap.WindowDiameterM)
	test.That(t, conf.Scenarios, test.ShouldResemble, []Scenario{
		{Name: "scenario-0", MaxSteps: 3000},
		{Name: "b", MaxSteps: 5},
	})
}

func TestRead(t *testing.T) {
	t.Setenv("NAVSIM_SENSOR_RANGE", "4.5")
	conf, err := Read("testdata/navsim.json")
	test.That(t, err, test.ShouldBeNil)

	test.That(t, conf.ConfigFilePath, test.ShouldEqual, "testdata/navsim.json")
	test.That(t, conf.LogLevel, test.ShouldEqual, "debug")
	test.That(t, conf.Sensor.MaxRangeM, test.ShouldEqual, 4.5)
	test.That(t, conf.Navigation.LocalMap.MapDiameterM, test.ShouldEqual, 20)
	test.That(t, conf.Navigation.LocalMap.ForgetInterval, test.ShouldEqual, 250*time.Millisecond)
	test.That(t, conf.Navigation.VFH.BootstrapWindow, test.ShouldEqual, 500*time.Millisecond)
	test.That(t, conf.Navigation.VFH.CellSizeM, test.ShouldEqual, 0.1)

	want := []Scenario{
		{Name: "open-field", Goal: Point{Y: 6}, MaxSteps: 1000},
		{
			Name:      "single-post",
			Goal:      Point{X: 6},
			Obstacles: []Obstacle{{X: 3, RadiusM: 0.5}},
			MaxSteps:  3000,
		},
	}
	test.That(t, cmp.Diff(want, conf.Scenarios), test.ShouldBeEmpty)

	_, err = Read("testdata/missing.json")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestScenarioWorld(t *testing.T) {
	s := Scenario{Obstacles: []Obstacle{{X: 3, Y: 1, RadiusM: 0.5}}}
	w := s.World()
	test.That(t, w.Obstacles, test.ShouldHaveLength, 1)
	test.That(t, w.Obstacles[0].Center.X, test.ShouldEqual, 3)
	test.That(t, w.Obstacles[0].Center.Y, test.ShouldEqual, 1)
	test.That(t, w.Obstacles[0].RadiusM, test.ShouldEqual, 0.5)

	sc := SensorConfig{MaxRangeM: 2, FieldOfViewDeg: 180, Rays: 5}
	rf := sc.Rangefinder(w)
	test.That(t, rf.World, test.ShouldEqual, w)
	test.That(t, rf.FieldOfView, test.ShouldAlmostEqual, 3.141592653589793)
	test.That(t, rf.Rays, test.ShouldEqual, 5)
	test.That(t, s.Goal.Vector().Norm(), test.ShouldEqual, 0)
}
