package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"focusloop/internal/core/model"
)

// feedSettings is a settings source whose duration stream is driven by the
// test. It tracks whether the duration watch is currently held upstream.
type feedSettings struct {
	mu          sync.Mutex
	durationCh  chan model.DurationSettings
	watchActive bool
}

func newFeedSettings() *feedSettings {
	return &feedSettings{durationCh: make(chan model.DurationSettings, 4)}
}

func (source *feedSettings) WatchColors(ctx context.Context) <-chan model.ColorSettings {
	ch := make(chan model.ColorSettings, 1)
	ch <- model.ColorSettings{}
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func (source *feedSettings) WatchDurations(ctx context.Context) <-chan model.DurationSettings {
	source.mu.Lock()
	source.watchActive = true
	ch := source.durationCh
	source.mu.Unlock()

	out := make(chan model.DurationSettings, 4)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				source.mu.Lock()
				source.watchActive = false
				source.mu.Unlock()
				return
			case update := <-ch:
				out <- update
			}
		}
	}()
	return out
}

func (source *feedSettings) push(durations model.DurationSettings) {
	source.durationCh <- durations
}

func (source *feedSettings) active() bool {
	source.mu.Lock()
	defer source.mu.Unlock()
	return source.watchActive
}

func TestSettingsViewDefaults(t *testing.T) {
	view := NewSettingsView(staticSettings{})
	t.Cleanup(view.Close)

	focus, shortBreak, longBreak := view.Durations()
	require.Equal(t, model.DefaultFocusDuration, focus)
	require.Equal(t, model.DefaultShortBreakDuration, shortBreak)
	require.Equal(t, model.DefaultLongBreakDuration, longBreak)

	millis, err := view.FocusDurationMillis.Get()
	require.NoError(t, err)
	require.Equal(t, int(model.DefaultFocusDuration/time.Millisecond), millis)

	color, err := view.FocusColor.Get()
	require.NoError(t, err)
	require.Equal(t, model.DefaultFocusColor, color)
}

func TestSettingsViewPublishesColorUpdates(t *testing.T) {
	view := NewSettingsView(staticSettings{settings: model.TimerSettings{
		Colors: model.ColorSettings{ShortBreak: "#00FF00"},
	}})
	t.Cleanup(view.Close)

	require.Eventually(t, func() bool {
		color, err := view.ShortBreakColor.Get()
		return err == nil && color == "#00FF00"
	}, 2*time.Second, 2*time.Millisecond)

	// Unset colors in the same update still resolve to defaults.
	color, err := view.FocusColor.Get()
	require.NoError(t, err)
	require.Equal(t, model.DefaultFocusColor, color)
}

func TestSettingsViewDurationObservationIsRefcounted(t *testing.T) {
	source := newFeedSettings()
	view := NewSettingsView(source)
	t.Cleanup(view.Close)
	view.mu.Lock()
	view.graceWindow = 20 * time.Millisecond
	view.mu.Unlock()

	require.False(t, source.active())

	view.AcquireDurations()
	view.AcquireDurations()
	require.Eventually(t, source.active, 2*time.Second, 2*time.Millisecond)

	focus := 40 * time.Minute
	source.push(model.DurationSettings{Focus: &focus})
	require.Eventually(t, func() bool {
		gotFocus, _, _ := view.Durations()
		return gotFocus == focus
	}, 2*time.Second, 2*time.Millisecond)

	// One holder left: the watch must stay up past the grace window.
	view.ReleaseDurations()
	time.Sleep(60 * time.Millisecond)
	require.True(t, source.active())

	view.ReleaseDurations()
	require.Eventually(t, func() bool {
		return !source.active()
	}, 2*time.Second, 2*time.Millisecond)

	// The cached value survives teardown.
	gotFocus, _, _ := view.Durations()
	require.Equal(t, focus, gotFocus)
}

func TestSettingsViewReacquireWithinGraceKeepsWatch(t *testing.T) {
	source := newFeedSettings()
	view := NewSettingsView(source)
	t.Cleanup(view.Close)
	view.mu.Lock()
	view.graceWindow = 100 * time.Millisecond
	view.mu.Unlock()

	view.AcquireDurations()
	require.Eventually(t, source.active, 2*time.Second, 2*time.Millisecond)

	view.ReleaseDurations()
	view.AcquireDurations()

	time.Sleep(150 * time.Millisecond)
	require.True(t, source.active())

	shortBreak := 3 * time.Minute
	source.push(model.DurationSettings{ShortBreak: &shortBreak})
	require.Eventually(t, func() bool {
		_, gotShort, _ := view.Durations()
		return gotShort == shortBreak
	}, 2*time.Second, 2*time.Millisecond)
}
