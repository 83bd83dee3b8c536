package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"
	"go.viam.com/test"
)

const testConfig = `{
  "navigation": {"local_map": {"map_diameter_m": 20, "cell_size_m": 0.1, "window_diameter_m": 3}},
  "log_level": "error",
  "scenarios": [
    {"name": "open-field", "goal": {"x": 0, "y": 6}, "max_steps": %d}
  ]
}`

func writeConfig(t *testing.T, maxSteps int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "navsim.json")
	cfg := []byte(fmt.Sprintf(testConfig, maxSteps))
	test.That(t, os.WriteFile(path, cfg, 0o600), test.ShouldBeNil)
	return path
}

func newTestApp(out *bytes.Buffer) *cli.App {
	app := newApp(out, out)
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func TestRunCommand(t *testing.T) {
	var out bytes.Buffer
	outDir := filepath.Join(t.TempDir(), "out")
	logFile := filepath.Join(t.TempDir(), "navsim.log")
	err := newTestApp(&out).Run([]string{
		"navsim", "run", "--config", writeConfig(t, 1000),
		"--output-dir", outDir, "--image-scale", "1", "--log-level", "info", "--log-file", logFile,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "open-field")
	test.That(t, out.String(), test.ShouldContainSubstring, "all 1 scenarios reached their goal")

	for _, name := range []string{"open-field-grid.png", "open-field-path.png"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		test.That(t, err, test.ShouldBeNil)
	}
	logged, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(logged), test.ShouldContainSubstring, "scenario finished")
}

func TestRunCommandFailure(t *testing.T) {
	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"navsim", "run", "--config", writeConfig(t, 3)})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "1 of 1 scenarios failed")
	test.That(t, out.String(), test.ShouldContainSubstring, "gave up")

	err = newTestApp(&out).Run([]string{"navsim", "run", "--config", filepath.Join(t.TempDir(), "missing.json")})
	test.That(t, err, test.ShouldNotBeNil)

	err = newTestApp(&out).Run([]string{"navsim", "run"})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSchemaCommand(t *testing.T) {
	var out bytes.Buffer
	test.That(t, newTestApp(&out).Run([]string{"navsim", "schema"}), test.ShouldBeNil)

	var schema map[string]interface{}
	test.That(t, json.Unmarshal(out.Bytes(), &schema), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "scenarios")
	test.That(t, out.String(), test.ShouldContainSubstring, "window_diameter_m")
	test.That(t, out.String(), test.ShouldNotContainSubstring, "ConfigFilePath")
}
