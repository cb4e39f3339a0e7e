package session

import (
	"time"

	"focusloop/internal/core/model"
)

// AdvanceToNextSession moves the current task to the next phase of the focus
// cycle and (re)starts the shared timer. A long break is terminal: advancing
// out of it completes the task instead of starting another session. With no
// task observed this is a no-op.
func (coordinator *Coordinator) AdvanceToNextSession() {
	task := coordinator.CurrentTask()
	if task == nil {
		return
	}
	focus, shortBreak, longBreak := coordinator.settings.Durations()

	switch {
	case task.Cycle == 0:
		coordinator.SetCycle(task.ID, 1)
		coordinator.SetSessionKind(task.ID, model.SessionFocus)
		coordinator.beginSession(task.ID, focus)
	case task.Kind == model.SessionFocus && task.Cycle == task.TargetCycles:
		coordinator.SetSessionKind(task.ID, model.SessionLongBreak)
		coordinator.beginSession(task.ID, longBreak)
	case task.Kind == model.SessionFocus:
		coordinator.SetSessionKind(task.ID, model.SessionShortBreak)
		coordinator.beginSession(task.ID, shortBreak)
	case task.Kind == model.SessionShortBreak:
		coordinator.SetSessionKind(task.ID, model.SessionFocus)
		coordinator.SetCycle(task.ID, task.Cycle+1)
		coordinator.beginSession(task.ID, focus)
	case task.Kind == model.SessionLongBreak:
		coordinator.completeTask(task.ID)
	}
}

// ResetCurrentSession restarts the current session kind at full duration.
// A long break is not restarted: resetting it completes the task, the same
// outcome as advancing out of it. That asymmetry is long-standing behavior
// and is kept as is.
func (coordinator *Coordinator) ResetCurrentSession() {
	task := coordinator.CurrentTask()
	if task == nil {
		return
	}
	focus, shortBreak, _ := coordinator.settings.Durations()

	switch task.Kind {
	case model.SessionFocus:
		coordinator.beginSession(task.ID, focus)
	case model.SessionShortBreak:
		coordinator.beginSession(task.ID, shortBreak)
	case model.SessionLongBreak:
		coordinator.completeTask(task.ID)
	}
}

// RecordConsumedTime writes the timer's elapsed time to the consumed-time
// field matching the current session kind. Unknown kinds produce no write.
func (coordinator *Coordinator) RecordConsumedTime() {
	task := coordinator.CurrentTask()
	if task == nil {
		return
	}
	elapsed := coordinator.timer.Elapsed()

	switch task.Kind {
	case model.SessionFocus:
		coordinator.SetFocusConsumed(task.ID, elapsed)
	case model.SessionShortBreak:
		coordinator.SetShortBreakConsumed(task.ID, elapsed)
	case model.SessionLongBreak:
		coordinator.SetLongBreakConsumed(task.ID, elapsed)
	}
}

func (coordinator *Coordinator) beginSession(id int64, duration time.Duration) {
	coordinator.SetInProgress(id, true)
	coordinator.timer.SetDuration(duration)
	coordinator.timer.Start(
		func(time.Duration) { coordinator.RecordConsumedTime() },
		coordinator.AdvanceToNextSession,
	)
}

func (coordinator *Coordinator) completeTask(id int64) {
	coordinator.SetInProgress(id, false)
	coordinator.SetCompleted(id, true)
	coordinator.SetActive(id, false)
	coordinator.timer.Stop()
	coordinator.timer.Reset()
}
