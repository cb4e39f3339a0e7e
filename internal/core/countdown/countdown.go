// Package countdown provides the shared countdown timer driving focus and
// break sessions. A single Timer is owned by the application lifecycle and
// reused across tasks; starting a new countdown supersedes any running one.
package countdown

import (
	"sync"
	"time"
)

// TickFunc is invoked after every tick with the total elapsed time.
type TickFunc func(elapsed time.Duration)

// CompleteFunc is invoked once when the countdown reaches its duration.
type CompleteFunc func()

// Config contains runtime options for Timer.
type Config struct {
	TickInterval time.Duration
}

// Timer is a restartable countdown with tick and completion callbacks.
type Timer struct {
	mu         sync.Mutex
	options    Config
	duration   time.Duration
	elapsed    time.Duration
	running    bool
	stopCh     chan struct{}
	onTick     TickFunc
	onComplete CompleteFunc
}

// New creates a Timer with the provided options.
func New(options Config) *Timer {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	return &Timer{options: options}
}

// SetDuration sets the length of the next countdown. It does not affect a
// countdown that is already running.
func (timer *Timer) SetDuration(duration time.Duration) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.duration = duration
}

// Start begins counting down from zero toward the configured duration.
// Any countdown already in flight is superseded. Callbacks run on the timer
// goroutine, not the caller's.
func (timer *Timer) Start(onTick TickFunc, onComplete CompleteFunc) {
	timer.mu.Lock()
	if timer.running {
		close(timer.stopCh)
	}
	timer.stopCh = make(chan struct{})
	timer.running = true
	timer.elapsed = 0
	timer.onTick = onTick
	timer.onComplete = onComplete
	stopCh := timer.stopCh
	timer.mu.Unlock()

	go timer.run(stopCh)
}

// Stop halts the countdown without clearing elapsed time.
func (timer *Timer) Stop() {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if !timer.running {
		return
	}
	timer.running = false
	close(timer.stopCh)
}

// Reset clears the elapsed time of a stopped countdown.
func (timer *Timer) Reset() {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.running {
		return
	}
	timer.elapsed = 0
}

// Elapsed returns the time consumed by the current countdown.
func (timer *Timer) Elapsed() time.Duration {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.elapsed
}

// Remaining returns the time left in the current countdown.
func (timer *Timer) Remaining() time.Duration {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	remaining := timer.duration - timer.elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Duration returns the configured countdown length.
func (timer *Timer) Duration() time.Duration {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.duration
}

// Running reports whether a countdown is in flight.
func (timer *Timer) Running() bool {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.running
}

func (timer *Timer) run(stopCh chan struct{}) {
	ticker := time.NewTicker(timer.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if timer.tick(stopCh) {
				return
			}
		}
	}
}

// tick advances elapsed time and fires callbacks. It returns true when the
// countdown completed and the loop should exit.
func (timer *Timer) tick(stopCh chan struct{}) bool {
	timer.mu.Lock()
	if !timer.running || timer.stopCh != stopCh {
		timer.mu.Unlock()
		return true
	}
	timer.elapsed += timer.options.TickInterval
	elapsed := timer.elapsed
	done := timer.duration > 0 && elapsed >= timer.duration
	if done {
		timer.running = false
	}
	onTick := timer.onTick
	onComplete := timer.onComplete
	timer.mu.Unlock()

	if onTick != nil {
		onTick(elapsed)
	}
	if done && onComplete != nil {
		onComplete()
	}
	return done
}
