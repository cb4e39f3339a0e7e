// Package session holds the screen-level coordinator for the focus/break
// cycle. It projects task and settings state into reactive bindings for the
// UI layer and issues asynchronous updates to the task store.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"fyne.io/fyne/v2/data/binding"

	"focusloop/internal/core/countdown"
	"focusloop/internal/core/model"
)

// ErrBacklogFull indicates a store update was dropped because the dispatch
// queue was full.
var ErrBacklogFull = errors.New("update backlog full")

// TaskStore is the persistence surface the coordinator reads and writes.
// Session kinds cross this boundary as their stored string names.
type TaskStore interface {
	Watch(ctx context.Context, id int64) (<-chan *model.Task, error)
	SetFocusConsumed(ctx context.Context, id int64, consumed time.Duration) error
	SetShortBreakConsumed(ctx context.Context, id int64, consumed time.Duration) error
	SetLongBreakConsumed(ctx context.Context, id int64, consumed time.Duration) error
	SetInProgress(ctx context.Context, id int64, inProgress bool) error
	SetActive(ctx context.Context, id int64, active bool) error
	SetCompleted(ctx context.Context, id int64, completed bool) error
	SetCycle(ctx context.Context, id int64, cycle int) error
	SetSessionKind(ctx context.Context, id int64, name string) error
	DeactivateAll(ctx context.Context) error
}

// Coordinator mediates between the task store, the settings view and the
// shared countdown timer for one screen. All store writes are dispatched onto
// a single worker goroutine tied to the coordinator's lifetime; callers never
// block and never see errors directly (failures surface on Errors).
type Coordinator struct {
	store    TaskStore
	settings *SettingsView
	timer    *countdown.Timer

	ctx    context.Context
	cancel context.CancelFunc

	task binding.Untyped

	ops  chan func(context.Context) error
	errs chan error

	mu          sync.Mutex
	watchCancel context.CancelFunc
	watchGen    uint64
	errsClosed  bool
}

// New creates a Coordinator. The settings view's duration observation is held
// for the coordinator's lifetime and released on Close.
func New(store TaskStore, settings *SettingsView, timer *countdown.Timer) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	coordinator := &Coordinator{
		store:    store,
		settings: settings,
		timer:    timer,
		ctx:      ctx,
		cancel:   cancel,
		task:     binding.NewUntyped(),
		ops:      make(chan func(context.Context) error, 64),
		errs:     make(chan error, 16),
	}
	settings.AcquireDurations()
	go coordinator.dispatchLoop()
	return coordinator
}

// Settings returns the reactive settings view backing this screen.
func (coordinator *Coordinator) Settings() *SettingsView {
	return coordinator.settings
}

// TaskBinding exposes the current task as a reactive value holding
// *model.Task. The UI layer attaches listeners to it.
func (coordinator *Coordinator) TaskBinding() binding.Untyped {
	return coordinator.task
}

// CurrentTask returns the latest observed task, or nil if none.
func (coordinator *Coordinator) CurrentTask() *model.Task {
	value, err := coordinator.task.Get()
	if err != nil {
		return nil
	}
	task, ok := value.(*model.Task)
	if !ok {
		return nil
	}
	return task
}

// Errors exposes failed store updates. The channel is buffered; when nobody
// drains it, further errors are dropped, matching fire-and-forget semantics.
// It is closed once Close has stopped the dispatch worker.
func (coordinator *Coordinator) Errors() <-chan error {
	return coordinator.errs
}

// ObserveTask starts watching the task with the given id and republishes its
// updates as the current task. Any previous observation is superseded: its
// generation is retired under the mutex, so snapshots still buffered on the
// old watch channel can no longer overwrite the current task.
func (coordinator *Coordinator) ObserveTask(id int64) error {
	ctx, cancel := context.WithCancel(coordinator.ctx)

	coordinator.mu.Lock()
	if coordinator.watchCancel != nil {
		coordinator.watchCancel()
	}
	coordinator.watchCancel = cancel
	coordinator.watchGen++
	generation := coordinator.watchGen
	coordinator.mu.Unlock()

	updates, err := coordinator.store.Watch(ctx, id)
	if err != nil {
		cancel()
		return err
	}

	go func() {
		for task := range updates {
			coordinator.mu.Lock()
			if coordinator.watchGen == generation {
				_ = coordinator.task.Set(task)
			}
			coordinator.mu.Unlock()
		}
	}()
	return nil
}

// SetFocusConsumed records time consumed in the focus session.
func (coordinator *Coordinator) SetFocusConsumed(id int64, consumed time.Duration) {
	coordinator.enqueue(func(ctx context.Context) error {
		return coordinator.store.SetFocusConsumed(ctx, id, consumed)
	})
}

// SetShortBreakConsumed records time consumed in the short-break session.
func (coordinator *Coordinator) SetShortBreakConsumed(id int64, consumed time.Duration) {
	coordinator.enqueue(func(ctx context.Context) error {
		return coordinator.store.SetShortBreakConsumed(ctx, id, consumed)
	})
}

// SetLongBreakConsumed records time consumed in the long-break session.
func (coordinator *Coordinator) SetLongBreakConsumed(id int64, consumed time.Duration) {
	coordinator.enqueue(func(ctx context.Context) error {
		return coordinator.store.SetLongBreakConsumed(ctx, id, consumed)
	})
}

// SetInProgress updates the task's in-progress flag.
func (coordinator *Coordinator) SetInProgress(id int64, inProgress bool) {
	coordinator.enqueue(func(ctx context.Context) error {
		return coordinator.store.SetInProgress(ctx, id, inProgress)
	})
}

// SetActive updates the task's active flag.
func (coordinator *Coordinator) SetActive(id int64, active bool) {
	coordinator.enqueue(func(ctx context.Context) error {
		return coordinator.store.SetActive(ctx, id, active)
	})
}

// SetCompleted updates the task's completed flag.
func (coordinator *Coordinator) SetCompleted(id int64, completed bool) {
	coordinator.enqueue(func(ctx context.Context) error {
		return coordinator.store.SetCompleted(ctx, id, completed)
	})
}

// SetCycle updates the task's current cycle number.
func (coordinator *Coordinator) SetCycle(id int64, cycle int) {
	coordinator.enqueue(func(ctx context.Context) error {
		return coordinator.store.SetCycle(ctx, id, cycle)
	})
}

// SetSessionKind updates the task's current session kind.
func (coordinator *Coordinator) SetSessionKind(id int64, kind model.SessionKind) {
	coordinator.enqueue(func(ctx context.Context) error {
		return coordinator.store.SetSessionKind(ctx, id, string(kind))
	})
}

// DeactivateAll clears the active flag on every task.
func (coordinator *Coordinator) DeactivateAll() {
	coordinator.enqueue(func(ctx context.Context) error {
		return coordinator.store.DeactivateAll(ctx)
	})
}

// Close cancels the task observation, the dispatch worker and any in-flight
// store calls. Pending queued updates are dropped; no rollback is attempted.
func (coordinator *Coordinator) Close() {
	coordinator.mu.Lock()
	if coordinator.watchCancel != nil {
		coordinator.watchCancel()
		coordinator.watchCancel = nil
	}
	coordinator.mu.Unlock()

	coordinator.cancel()
	coordinator.settings.ReleaseDurations()
}

func (coordinator *Coordinator) dispatchLoop() {
	defer func() {
		coordinator.mu.Lock()
		coordinator.errsClosed = true
		close(coordinator.errs)
		coordinator.mu.Unlock()
	}()

	for {
		select {
		case <-coordinator.ctx.Done():
			return
		case op := <-coordinator.ops:
			if err := op(coordinator.ctx); err != nil {
				coordinator.report(err)
			}
		}
	}
}

func (coordinator *Coordinator) enqueue(op func(context.Context) error) {
	select {
	case coordinator.ops <- op:
	case <-coordinator.ctx.Done():
	default:
		coordinator.report(ErrBacklogFull)
	}
}

func (coordinator *Coordinator) report(err error) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.errsClosed {
		return
	}
	select {
	case coordinator.errs <- err:
	default:
	}
}
