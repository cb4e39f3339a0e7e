package session

import (
	"context"
	"sync"
	"time"

	"fyne.io/fyne/v2/data/binding"

	"focusloop/internal/core/model"
)

// releaseGraceWindow is how long duration observation outlives its last
// holder, so quick release/acquire pairs (screen rotations, tab switches)
// do not tear down and rebuild the upstream watch.
const releaseGraceWindow = 5 * time.Second

// SettingsSource supplies streams of settings updates. Each stream delivers
// the current value first and closes when ctx is cancelled.
type SettingsSource interface {
	WatchColors(ctx context.Context) <-chan model.ColorSettings
	WatchDurations(ctx context.Context) <-chan model.DurationSettings
}

// SettingsView projects settings streams into cached reactive values for the
// UI layer. Colors are observed for the view's whole lifetime; duration
// observation is refcounted through AcquireDurations/ReleaseDurations.
// Bindings replay their last value to late listeners, and every published
// value already has defaults applied.
type SettingsView struct {
	source SettingsSource

	FocusColor      binding.String
	ShortBreakColor binding.String
	LongBreakColor  binding.String

	// Durations in milliseconds, ready for UI consumption.
	FocusDurationMillis      binding.Int
	ShortBreakDurationMillis binding.Int
	LongBreakDurationMillis  binding.Int

	graceWindow time.Duration

	mu             sync.Mutex
	closed         bool
	colorCancel    context.CancelFunc
	durationHolds  int
	durationCancel context.CancelFunc
	teardown       *time.Timer
}

// NewSettingsView creates a SettingsView and starts observing colors.
func NewSettingsView(source SettingsSource) *SettingsView {
	view := &SettingsView{
		source:                   source,
		FocusColor:               binding.NewString(),
		ShortBreakColor:          binding.NewString(),
		LongBreakColor:           binding.NewString(),
		FocusDurationMillis:      binding.NewInt(),
		ShortBreakDurationMillis: binding.NewInt(),
		LongBreakDurationMillis:  binding.NewInt(),
		graceWindow:              releaseGraceWindow,
	}
	view.publishColors(model.ColorSettings{})
	view.publishDurations(model.DurationSettings{})

	ctx, cancel := context.WithCancel(context.Background())
	view.colorCancel = cancel
	go view.watchColors(ctx)

	return view
}

// AcquireDurations starts (or keeps alive) the duration observation.
// Every call must be paired with a ReleaseDurations.
func (view *SettingsView) AcquireDurations() {
	view.mu.Lock()
	defer view.mu.Unlock()
	if view.closed {
		return
	}
	if view.teardown != nil {
		view.teardown.Stop()
		view.teardown = nil
	}
	view.durationHolds++
	if view.durationCancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		view.durationCancel = cancel
		go view.watchDurations(ctx)
	}
}

// ReleaseDurations drops one hold on the duration observation. When the last
// hold is released the upstream watch is cancelled after a grace window.
func (view *SettingsView) ReleaseDurations() {
	view.mu.Lock()
	defer view.mu.Unlock()
	if view.durationHolds == 0 {
		return
	}
	view.durationHolds--
	if view.durationHolds > 0 || view.durationCancel == nil {
		return
	}

	view.teardown = time.AfterFunc(view.graceWindow, func() {
		view.mu.Lock()
		defer view.mu.Unlock()
		if view.durationHolds == 0 && view.durationCancel != nil {
			view.durationCancel()
			view.durationCancel = nil
		}
		view.teardown = nil
	})
}

// Durations returns the current session durations with defaults applied.
func (view *SettingsView) Durations() (focus, shortBreak, longBreak time.Duration) {
	focus = view.durationValue(view.FocusDurationMillis, model.DefaultFocusDuration)
	shortBreak = view.durationValue(view.ShortBreakDurationMillis, model.DefaultShortBreakDuration)
	longBreak = view.durationValue(view.LongBreakDurationMillis, model.DefaultLongBreakDuration)
	return focus, shortBreak, longBreak
}

// Close cancels all observation. The bindings keep their last values.
func (view *SettingsView) Close() {
	view.mu.Lock()
	defer view.mu.Unlock()
	view.closed = true
	if view.colorCancel != nil {
		view.colorCancel()
		view.colorCancel = nil
	}
	if view.teardown != nil {
		view.teardown.Stop()
		view.teardown = nil
	}
	if view.durationCancel != nil {
		view.durationCancel()
		view.durationCancel = nil
	}
	view.durationHolds = 0
}

func (view *SettingsView) watchColors(ctx context.Context) {
	for colors := range view.source.WatchColors(ctx) {
		view.publishColors(colors)
	}
}

func (view *SettingsView) watchDurations(ctx context.Context) {
	for durations := range view.source.WatchDurations(ctx) {
		view.publishDurations(durations)
	}
}

func (view *SettingsView) publishColors(colors model.ColorSettings) {
	focus, shortBreak, longBreak := colors.Resolve()
	_ = view.FocusColor.Set(focus)
	_ = view.ShortBreakColor.Set(shortBreak)
	_ = view.LongBreakColor.Set(longBreak)
}

func (view *SettingsView) publishDurations(durations model.DurationSettings) {
	focus, shortBreak, longBreak := durations.Resolve()
	_ = view.FocusDurationMillis.Set(int(focus / time.Millisecond))
	_ = view.ShortBreakDurationMillis.Set(int(shortBreak / time.Millisecond))
	_ = view.LongBreakDurationMillis.Set(int(longBreak / time.Millisecond))
}

func (view *SettingsView) durationValue(millis binding.Int, fallback time.Duration) time.Duration {
	value, err := millis.Get()
	if err != nil || value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Millisecond
}
