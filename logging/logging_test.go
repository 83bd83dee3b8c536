package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestLevelParsing(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"warn"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)

	md, err := json.Marshal(ERROR)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(md), test.ShouldEqual, `"Error"`)
}

func TestObservedLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debugw("cycle", "heading", 90.0)
	logger.Infof("speed %d", 300)

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logs.FilterMessage("cycle").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterField(logs.All()[0].Context[0]).Len(), test.ShouldEqual, 1)

	logger.SetLevel(WARN)
	logger.Info("dropped")
	test.That(t, logs.Len(), test.ShouldEqual, 2)
	logger.Warn("kept")
	test.That(t, logs.Len(), test.ShouldEqual, 3)
}

func TestSubloggerSharesAppenders(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("nav")
	logger.AddAppender(NewWriterAppender(&buf))

	sub := logger.Sublogger("vfh")
	test.That(t, sub.Name(), test.ShouldEqual, "nav.vfh")
	sub.Infow("selected", "heading", 180)
	test.That(t, buf.String(), test.ShouldContainSubstring, "nav.vfh")
	test.That(t, buf.String(), test.ShouldContainSubstring, "selected")
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestReplaceGlobal(t *testing.T) {
	prev := Global()
	defer ReplaceGlobal(prev)
	test.That(t, prev, test.ShouldNotBeNil)

	logger, logs := NewObservedTestLogger(t)
	ReplaceGlobal(logger)
	test.That(t, Global(), test.ShouldEqual, logger)
	Global().Infow("through global", "cycle", 1)
	test.That(t, logs.FilterMessage("through global").Len(), test.ShouldEqual, 1)
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navsim.log")
	appender := NewFileAppender(path, 1)
	logger := NewBlankLogger("navsim")
	logger.AddAppender(appender)

	logger.Warnw("no passable gap", "position", "(1, 2)")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, appender.Close(), test.ShouldBeNil)

	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "no passable gap")
	test.That(t, string(contents), test.ShouldContainSubstring, "navsim")
}
