package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"focusloop/internal/core/model"
)

// ErrTaskNotFound indicates the requested task id does not exist.
var ErrTaskNotFound = errors.New("task not found")

// MemoryStore is an in-memory task store. Writes are serialized under one
// mutex; watchers receive snapshots through buffered channels with
// non-blocking sends, so a slow observer drops intermediate updates rather
// than stalling writers.
type MemoryStore struct {
	mu       sync.Mutex
	tasks    map[int64]*model.Task
	watchers map[int64][]chan *model.Task
	nextID   int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:    make(map[int64]*model.Task),
		watchers: make(map[int64][]chan *model.Task),
	}
}

// Create persists a new task and assigns its id.
func (store *MemoryStore) Create(ctx context.Context, task model.Task) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.Lock()
	store.nextID++
	task.ID = store.nextID
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	stored := task
	store.tasks[task.ID] = &stored
	store.mu.Unlock()

	snapshot := task
	return &snapshot, nil
}

// Get returns a snapshot of the task with the given id.
func (store *MemoryStore) Get(ctx context.Context, id int64) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	task, ok := store.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, ErrTaskNotFound)
	}
	snapshot := *task
	return &snapshot, nil
}

// List returns snapshots of all tasks ordered by id.
func (store *MemoryStore) List(ctx context.Context) ([]*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.Lock()
	tasks := make([]*model.Task, 0, len(store.tasks))
	for _, task := range store.tasks {
		snapshot := *task
		tasks = append(tasks, &snapshot)
	}
	store.mu.Unlock()

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// Watch streams snapshots of the task with the given id. The current value
// (nil if the task does not exist) is delivered first; the channel closes
// when ctx is cancelled.
func (store *MemoryStore) Watch(ctx context.Context, id int64) (<-chan *model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan *model.Task, 8)

	store.mu.Lock()
	if task, ok := store.tasks[id]; ok {
		snapshot := *task
		ch <- &snapshot
	} else {
		ch <- nil
	}
	store.watchers[id] = append(store.watchers[id], ch)
	store.mu.Unlock()

	go func() {
		<-ctx.Done()
		store.mu.Lock()
		watchers := store.watchers[id]
		for i, watcher := range watchers {
			if watcher == ch {
				store.watchers[id] = append(watchers[:i], watchers[i+1:]...)
				break
			}
		}
		// Closed under the lock so no emit can race the close.
		close(ch)
		store.mu.Unlock()
	}()

	return ch, nil
}

// SetFocusConsumed records time consumed in the focus session.
func (store *MemoryStore) SetFocusConsumed(ctx context.Context, id int64, consumed time.Duration) error {
	return store.update(ctx, id, func(task *model.Task) { task.ConsumedFocus = consumed })
}

// SetShortBreakConsumed records time consumed in the short-break session.
func (store *MemoryStore) SetShortBreakConsumed(ctx context.Context, id int64, consumed time.Duration) error {
	return store.update(ctx, id, func(task *model.Task) { task.ConsumedShortBreak = consumed })
}

// SetLongBreakConsumed records time consumed in the long-break session.
func (store *MemoryStore) SetLongBreakConsumed(ctx context.Context, id int64, consumed time.Duration) error {
	return store.update(ctx, id, func(task *model.Task) { task.ConsumedLongBreak = consumed })
}

// SetInProgress updates the in-progress flag.
func (store *MemoryStore) SetInProgress(ctx context.Context, id int64, inProgress bool) error {
	return store.update(ctx, id, func(task *model.Task) { task.InProgress = inProgress })
}

// SetActive updates the active flag.
func (store *MemoryStore) SetActive(ctx context.Context, id int64, active bool) error {
	return store.update(ctx, id, func(task *model.Task) { task.Active = active })
}

// SetCompleted updates the completed flag.
func (store *MemoryStore) SetCompleted(ctx context.Context, id int64, completed bool) error {
	return store.update(ctx, id, func(task *model.Task) { task.Completed = completed })
}

// SetCycle updates the current cycle number.
func (store *MemoryStore) SetCycle(ctx context.Context, id int64, cycle int) error {
	return store.update(ctx, id, func(task *model.Task) { task.Cycle = cycle })
}

// SetSessionKind updates the current session kind from its stored name.
func (store *MemoryStore) SetSessionKind(ctx context.Context, id int64, name string) error {
	kind, err := model.ParseSessionKind(name)
	if err != nil {
		return fmt.Errorf("task %d: %w", id, err)
	}
	return store.update(ctx, id, func(task *model.Task) { task.Kind = kind })
}

// DeactivateAll clears the active flag on every task.
func (store *MemoryStore) DeactivateAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	for id, task := range store.tasks {
		if !task.Active {
			continue
		}
		task.Active = false
		snapshot := *task
		emit(store.watchers[id], &snapshot)
	}
	return nil
}

func (store *MemoryStore) update(ctx context.Context, id int64, mutate func(*model.Task)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	task, ok := store.tasks[id]
	if !ok {
		return fmt.Errorf("task %d: %w", id, ErrTaskNotFound)
	}
	mutate(task)
	snapshot := *task
	emit(store.watchers[id], &snapshot)
	return nil
}

// emit must be called with store.mu held; sends never block.
func emit(watchers []chan *model.Task, snapshot *model.Task) {
	for _, ch := range watchers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
