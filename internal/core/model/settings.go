package model

import "time"

// Defaults applied when a duration preference is unset.
const (
	DefaultFocusDuration      = 25 * time.Minute
	DefaultShortBreakDuration = 5 * time.Minute
	DefaultLongBreakDuration  = 15 * time.Minute
)

// Defaults applied when an accent color preference is unset.
const (
	DefaultFocusColor      = "#DB524D"
	DefaultShortBreakColor = "#468E91"
	DefaultLongBreakColor  = "#437EA8"
)

// DurationSettings holds the user's session length preferences. A nil field
// means the preference was never set.
type DurationSettings struct {
	Focus      *time.Duration
	ShortBreak *time.Duration
	LongBreak  *time.Duration
}

// Resolve applies defaults to unset durations.
func (durations DurationSettings) Resolve() (focus, shortBreak, longBreak time.Duration) {
	focus = DefaultFocusDuration
	shortBreak = DefaultShortBreakDuration
	longBreak = DefaultLongBreakDuration
	if durations.Focus != nil {
		focus = *durations.Focus
	}
	if durations.ShortBreak != nil {
		shortBreak = *durations.ShortBreak
	}
	if durations.LongBreak != nil {
		longBreak = *durations.LongBreak
	}
	return focus, shortBreak, longBreak
}

// ColorSettings holds the per-session accent colors. An empty field means the
// preference was never set.
type ColorSettings struct {
	Focus      string
	ShortBreak string
	LongBreak  string
}

// Resolve applies defaults to unset colors.
func (colors ColorSettings) Resolve() (focus, shortBreak, longBreak string) {
	focus = DefaultFocusColor
	shortBreak = DefaultShortBreakColor
	longBreak = DefaultLongBreakColor
	if colors.Focus != "" {
		focus = colors.Focus
	}
	if colors.ShortBreak != "" {
		shortBreak = colors.ShortBreak
	}
	if colors.LongBreak != "" {
		longBreak = colors.LongBreak
	}
	return focus, shortBreak, longBreak
}

// TimerSettings groups all editable timer preferences.
type TimerSettings struct {
	Durations DurationSettings
	Colors    ColorSettings
}
