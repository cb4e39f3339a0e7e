package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/data/binding"

	"focusloop/internal/core/countdown"
	"focusloop/internal/core/model"
	"focusloop/internal/core/session"
	"focusloop/internal/storage"
)

const appName = "FocusLoop"

func main() {
	title := flag.String("title", "Deep work", "task title")
	cycles := flag.Int("cycles", 2, "target focus sessions before the long break")
	focus := flag.Duration("focus", 0, "focus length, overrides saved settings")
	shortBreak := flag.Duration("short-break", 0, "short break length, overrides saved settings")
	longBreak := flag.Duration("long-break", 0, "long break length, overrides saved settings")
	flag.Parse()

	// Bindings dispatch through the current app's driver, so the app must
	// exist before the first settings value is published.
	fyneApp := app.NewWithID("com.focusloop.app")

	settingsFile, err := storage.OpenSettings(appName)
	if err != nil {
		log.Printf("load settings: %v", err)
		return
	}

	var source session.SettingsSource = settingsFile
	if *focus > 0 || *shortBreak > 0 || *longBreak > 0 {
		source = overrideSource{
			SettingsSource: settingsFile,
			durations:      mergeDurations(settingsFile.Current().Durations, *focus, *shortBreak, *longBreak),
		}
	}

	store := storage.NewMemoryStore()
	timer := countdown.New(countdown.Config{TickInterval: time.Second})
	view := session.NewSettingsView(source)
	defer view.Close()

	coordinator := session.New(store, view, timer)
	defer coordinator.Close()

	go func() {
		for err := range coordinator.Errors() {
			log.Printf("store update: %v", err)
		}
	}()

	coordinator.DeactivateAll()
	task, err := store.Create(context.Background(), model.Task{
		Title:        *title,
		Kind:         model.SessionFocus,
		TargetCycles: *cycles,
		Active:       true,
	})
	if err != nil {
		log.Printf("create task: %v", err)
		return
	}

	coordinator.TaskBinding().AddListener(binding.NewDataListener(func() {
		current := coordinator.CurrentTask()
		if current == nil {
			return
		}
		log.Printf("task %q: session=%s cycle=%d/%d in-progress=%v completed=%v",
			current.Title, current.Kind, current.Cycle, current.TargetCycles,
			current.InProgress, current.Completed)
	}))

	// Binding updates only flow once the app's event loop is running, so
	// the demo drives the cycle from its own goroutine and quits the app
	// when the task completes.
	go func() {
		defer fyne.Do(fyneApp.Quit)

		if err := coordinator.ObserveTask(task.ID); err != nil {
			log.Printf("observe task: %v", err)
			return
		}
		for coordinator.CurrentTask() == nil {
			time.Sleep(10 * time.Millisecond)
		}
		coordinator.AdvanceToNextSession()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-sigCh:
				log.Printf("interrupted")
				return
			case <-ticker.C:
				current := coordinator.CurrentTask()
				if current == nil {
					continue
				}
				if current.Completed {
					log.Printf("task %q complete: focus=%s short=%s long=%s",
						current.Title, current.ConsumedFocus,
						current.ConsumedShortBreak, current.ConsumedLongBreak)
					return
				}
				log.Printf("%s: %s remaining", current.Kind, formatRemaining(timer.Remaining()))
			}
		}
	}()

	fyneApp.Run()
}

// overrideSource substitutes command-line durations for the saved ones while
// keeping the file-backed color stream.
type overrideSource struct {
	session.SettingsSource
	durations model.DurationSettings
}

func (source overrideSource) WatchDurations(ctx context.Context) <-chan model.DurationSettings {
	ch := make(chan model.DurationSettings, 1)
	ch <- source.durations
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func mergeDurations(saved model.DurationSettings, focus, shortBreak, longBreak time.Duration) model.DurationSettings {
	if focus > 0 {
		saved.Focus = &focus
	}
	if shortBreak > 0 {
		saved.ShortBreak = &shortBreak
	}
	if longBreak > 0 {
		saved.LongBreak = &longBreak
	}
	return saved
}

func formatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
