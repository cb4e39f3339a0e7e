package countdown

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerTicksAndCompletes(t *testing.T) {
	timer := New(Config{TickInterval: 5 * time.Millisecond})
	timer.SetDuration(25 * time.Millisecond)

	var ticks, completions atomic.Int64
	timer.Start(
		func(time.Duration) { ticks.Add(1) },
		func() { completions.Add(1) },
	)

	require.Eventually(t, func() bool {
		return completions.Load() == 1
	}, time.Second, time.Millisecond)
	require.False(t, timer.Running())
	require.GreaterOrEqual(t, ticks.Load(), int64(1))
	require.Equal(t, time.Duration(0), timer.Remaining())
}

func TestTimerStopAndReset(t *testing.T) {
	timer := New(Config{TickInterval: 5 * time.Millisecond})
	timer.SetDuration(time.Hour)
	timer.Start(nil, nil)

	require.Eventually(t, func() bool {
		return timer.Elapsed() > 0
	}, time.Second, time.Millisecond)

	timer.Stop()
	require.False(t, timer.Running())
	frozen := timer.Elapsed()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, frozen, timer.Elapsed())

	timer.Reset()
	require.Equal(t, time.Duration(0), timer.Elapsed())
}

func TestTimerResetIgnoredWhileRunning(t *testing.T) {
	timer := New(Config{TickInterval: 5 * time.Millisecond})
	timer.SetDuration(time.Hour)
	timer.Start(nil, nil)
	defer timer.Stop()

	require.Eventually(t, func() bool {
		return timer.Elapsed() > 0
	}, time.Second, time.Millisecond)

	timer.Reset()
	require.Greater(t, timer.Elapsed(), time.Duration(0))
}

func TestTimerStartSupersedesRunningCountdown(t *testing.T) {
	timer := New(Config{TickInterval: 5 * time.Millisecond})
	timer.SetDuration(time.Hour)

	var firstCompletions atomic.Int64
	timer.Start(nil, func() { firstCompletions.Add(1) })
	require.Eventually(t, func() bool {
		return timer.Elapsed() > 0
	}, time.Second, time.Millisecond)

	timer.SetDuration(25 * time.Millisecond)
	var secondCompletions atomic.Int64
	timer.Start(nil, func() { secondCompletions.Add(1) })

	require.Eventually(t, func() bool {
		return secondCompletions.Load() == 1
	}, time.Second, time.Millisecond)
	require.Equal(t, int64(0), firstCompletions.Load())
	require.False(t, timer.Running())
}
