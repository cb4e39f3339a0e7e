package model

import (
	"fmt"
	"time"
)

// SessionKind identifies which phase of the focus cycle a task is in.
type SessionKind string

const (
	SessionFocus      SessionKind = "Focus"
	SessionShortBreak SessionKind = "ShortBreak"
	SessionLongBreak  SessionKind = "LongBreak"
)

// ParseSessionKind converts a stored session-kind name back into a
// SessionKind. Conversion happens only at the task-store boundary; the rest
// of the code works with the typed constants.
func ParseSessionKind(name string) (SessionKind, error) {
	switch kind := SessionKind(name); kind {
	case SessionFocus, SessionShortBreak, SessionLongBreak:
		return kind, nil
	}
	return "", fmt.Errorf("unknown session kind %q", name)
}

// Task is a persisted focus task. Exactly one session kind is current at any
// time; Cycle counts completed-or-running focus sessions toward TargetCycles.
type Task struct {
	ID           int64
	Title        string
	Kind         SessionKind
	Cycle        int
	TargetCycles int
	InProgress   bool
	Completed    bool
	Active       bool

	ConsumedFocus      time.Duration
	ConsumedShortBreak time.Duration
	ConsumedLongBreak  time.Duration

	CreatedAt time.Time
}
