package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDurationSettingsResolveDefaults(t *testing.T) {
	focus, shortBreak, longBreak := DurationSettings{}.Resolve()
	require.Equal(t, 25*time.Minute, focus)
	require.Equal(t, 5*time.Minute, shortBreak)
	require.Equal(t, 15*time.Minute, longBreak)
}

func TestDurationSettingsResolveOverrides(t *testing.T) {
	focusPref := 50 * time.Minute
	shortPref := 10 * time.Minute
	focus, shortBreak, longBreak := DurationSettings{
		Focus:      &focusPref,
		ShortBreak: &shortPref,
	}.Resolve()
	require.Equal(t, focusPref, focus)
	require.Equal(t, shortPref, shortBreak)
	require.Equal(t, DefaultLongBreakDuration, longBreak)
}

func TestColorSettingsResolve(t *testing.T) {
	focus, shortBreak, longBreak := ColorSettings{Focus: "#112233"}.Resolve()
	require.Equal(t, "#112233", focus)
	require.Equal(t, DefaultShortBreakColor, shortBreak)
	require.Equal(t, DefaultLongBreakColor, longBreak)
}

func TestParseSessionKind(t *testing.T) {
	for _, name := range []string{"Focus", "ShortBreak", "LongBreak"} {
		kind, err := ParseSessionKind(name)
		require.NoError(t, err)
		require.Equal(t, SessionKind(name), kind)
	}

	_, err := ParseSessionKind("Nap")
	require.Error(t, err)
}
