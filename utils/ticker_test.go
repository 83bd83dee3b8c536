package utils

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/localnav/logging"
)

func TestSlowLogger(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	mockClock := clock.NewMock()

	stop := SlowLogger(context.Background(), mockClock, "still running", "scenario", "post", logger)
	defer stop()

	test.That(t, logs.FilterMessage("still running").Len(), test.ShouldEqual, 0)
	mockClock.Add(2 * time.Second)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		entries := logs.FilterMessage("still running").All()
		test.That(tb, entries, test.ShouldHaveLength, 1)
		test.That(tb, entries[0].ContextMap()["scenario"], test.ShouldEqual, "post")
		test.That(tb, entries[0].ContextMap()["time_elapsed"], test.ShouldEqual, "2s")
	})
}

func TestSlowLoggerStopsWithContext(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	mockClock := clock.NewMock()

	ctx, cancel := context.WithCancel(context.Background())
	stop := SlowLogger(ctx, mockClock, "still running", "scenario", "post", logger)
	cancel()
	stop()
	// give a leaked goroutine the chance to log
	time.Sleep(10 * time.Millisecond)
	mockClock.Add(10 * time.Second)
	time.Sleep(10 * time.Millisecond)
	test.That(t, logs.FilterMessage("still running").Len(), test.ShouldEqual, 0)
}
