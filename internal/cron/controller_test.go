package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRunner struct {
	runs atomic.Int64
}

func (r *countingRunner) Run(ctx context.Context) error {
	r.runs.Add(1)
	return nil
}

func newTestController(interval time.Duration) (*Controller, *countingRunner) {
	runner := &countingRunner{}
	ctrl := New(zap.NewNop(), Config{Interval: interval}, runner)
	return ctrl, runner
}

func waitForRuns(t *testing.T, runner *countingRunner, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runner.runs.Load() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("runner reached %d runs, want at least %d", runner.runs.Load(), want)
}

func TestControlTokensFromAbsentState(t *testing.T) {
	ctrl, _ := newTestController(time.Hour)
	defer ctrl.Close()

	assert.Equal(t, StatusNotRunning, ctrl.Pause())
	assert.Equal(t, StatusNotRunning, ctrl.Resume())
	assert.Equal(t, StatusNotRunning, ctrl.Stop())
	assert.Equal(t, StatusStarted, ctrl.Start())
}

func TestControlTokensFromActiveState(t *testing.T) {
	ctrl, _ := newTestController(time.Hour)
	defer ctrl.Close()

	require.Equal(t, StatusStarted, ctrl.Start())

	assert.Equal(t, StatusAlreadyRunning, ctrl.Start())
	assert.Equal(t, StatusAlreadyRunning, ctrl.Resume())
	assert.Equal(t, StatusPaused, ctrl.Pause())
}

func TestControlTokensFromPausedState(t *testing.T) {
	ctrl, _ := newTestController(time.Hour)
	defer ctrl.Close()

	require.Equal(t, StatusStarted, ctrl.Start())
	require.Equal(t, StatusPaused, ctrl.Pause())

	assert.Equal(t, StatusAlreadyRunning, ctrl.Start())
	assert.Equal(t, StatusPaused, ctrl.Pause())
	assert.Equal(t, StatusResumed, ctrl.Resume())
	assert.Equal(t, StatusPaused, ctrl.Pause())
	assert.Equal(t, StatusStopped, ctrl.Stop())
}

func TestStopTwiceReportsNotRunning(t *testing.T) {
	ctrl, _ := newTestController(time.Hour)
	defer ctrl.Close()

	require.Equal(t, StatusStarted, ctrl.Start())
	assert.Equal(t, StatusStopped, ctrl.Stop())
	assert.Equal(t, StatusNotRunning, ctrl.Stop())
}

func TestStatusNeverMutatesState(t *testing.T) {
	ctrl, _ := newTestController(time.Hour)
	defer ctrl.Close()

	status := ctrl.Status()
	assert.False(t, status.SchedulerRunning)
	assert.False(t, status.JobExists)
	assert.Nil(t, status.JobPaused)

	// Reading status from the empty state must not register anything.
	assert.Equal(t, StatusNotRunning, ctrl.Stop())

	require.Equal(t, StatusStarted, ctrl.Start())
	require.Equal(t, StatusPaused, ctrl.Pause())

	for i := 0; i < 3; i++ {
		status = ctrl.Status()
		assert.True(t, status.SchedulerRunning)
		assert.True(t, status.JobExists)
		require.NotNil(t, status.JobPaused)
		assert.True(t, *status.JobPaused)
	}

	assert.Equal(t, StatusResumed, ctrl.Resume())
}

func TestSchedulerLoopSurvivesStop(t *testing.T) {
	ctrl, _ := newTestController(time.Hour)
	defer ctrl.Close()

	require.Equal(t, StatusStarted, ctrl.Start())
	require.Equal(t, StatusStopped, ctrl.Stop())

	status := ctrl.Status()
	assert.True(t, status.SchedulerRunning)
	assert.False(t, status.JobExists)
	assert.Nil(t, status.JobPaused)
}

func TestJobFiresOnInterval(t *testing.T) {
	ctrl, runner := newTestController(5 * time.Millisecond)
	defer ctrl.Close()

	require.Equal(t, StatusStarted, ctrl.Start())
	waitForRuns(t, runner, 3)
}

func TestDoubleStartKeepsSingleLoop(t *testing.T) {
	ctrl, runner := newTestController(20 * time.Millisecond)
	defer ctrl.Close()

	require.Equal(t, StatusStarted, ctrl.Start())
	require.Equal(t, StatusAlreadyRunning, ctrl.Start())

	waitForRuns(t, runner, 2)
	runner.runs.Store(0)

	// With one loop the firing rate stays near the interval; a duplicated
	// loop would roughly double it.
	time.Sleep(110 * time.Millisecond)
	assert.LessOrEqual(t, runner.runs.Load(), int64(7))
}

func TestPauseSuppressesFirings(t *testing.T) {
	ctrl, runner := newTestController(5 * time.Millisecond)
	defer ctrl.Close()

	require.Equal(t, StatusStarted, ctrl.Start())
	waitForRuns(t, runner, 1)

	require.Equal(t, StatusPaused, ctrl.Pause())
	// Let any in-flight firing drain before sampling.
	time.Sleep(20 * time.Millisecond)
	before := runner.runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, runner.runs.Load())

	require.Equal(t, StatusResumed, ctrl.Resume())
	waitForRuns(t, runner, before+1)
}

func TestStopSuppressesFirings(t *testing.T) {
	ctrl, runner := newTestController(5 * time.Millisecond)
	defer ctrl.Close()

	require.Equal(t, StatusStarted, ctrl.Start())
	waitForRuns(t, runner, 1)

	require.Equal(t, StatusStopped, ctrl.Stop())
	time.Sleep(20 * time.Millisecond)
	before := runner.runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, runner.runs.Load())
}

func TestRestartAfterStop(t *testing.T) {
	ctrl, runner := newTestController(5 * time.Millisecond)
	defer ctrl.Close()

	require.Equal(t, StatusStarted, ctrl.Start())
	waitForRuns(t, runner, 1)
	require.Equal(t, StatusStopped, ctrl.Stop())

	require.Equal(t, StatusStarted, ctrl.Start())
	before := runner.runs.Load()
	waitForRuns(t, runner, before+1)
}
