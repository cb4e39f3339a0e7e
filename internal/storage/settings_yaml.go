package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"focusloop/internal/core/model"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	FocusMinutes      int    `yaml:"focus_minutes"`
	ShortBreakMinutes int    `yaml:"short_break_minutes"`
	LongBreakMinutes  int    `yaml:"long_break_minutes"`
	FocusColor        string `yaml:"focus_color"`
	ShortBreakColor   string `yaml:"short_break_color"`
	LongBreakColor    string `yaml:"long_break_color"`
}

// SettingsFile is a YAML-backed settings source. Loaded values are cached;
// Save rewrites the file and notifies watchers. A zero minute count or empty
// color in the file means "unset" and resolves to the default downstream.
type SettingsFile struct {
	path string

	mu               sync.Mutex
	current          model.TimerSettings
	colorWatchers    []chan model.ColorSettings
	durationWatchers []chan model.DurationSettings
}

// OpenSettings loads settings from the user config directory for appName.
// A missing file yields all-unset settings.
func OpenSettings(appName string) (*SettingsFile, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user config dir: %w", err)
	}
	return OpenSettingsPath(filepath.Join(configDir, appName, settingsFileName))
}

// OpenSettingsPath loads settings from an explicit file path.
func OpenSettingsPath(path string) (*SettingsFile, error) {
	file := &SettingsFile{path: path}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return file, nil
		}
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return nil, fmt.Errorf("parse settings yaml: %w", err)
	}

	file.current = fromYamlSettings(fileData)
	return file, nil
}

// Current returns the cached settings.
func (file *SettingsFile) Current() model.TimerSettings {
	file.mu.Lock()
	defer file.mu.Unlock()
	return file.current
}

// Save writes settings to disk and notifies watchers.
func (file *SettingsFile) Save(settings model.TimerSettings) error {
	serialized, err := yaml.Marshal(toYamlSettings(settings))
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(file.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(file.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	file.mu.Lock()
	file.current = settings
	for _, ch := range file.colorWatchers {
		select {
		case ch <- settings.Colors:
		default:
		}
	}
	for _, ch := range file.durationWatchers {
		select {
		case ch <- settings.Durations:
		default:
		}
	}
	file.mu.Unlock()

	return nil
}

// WatchColors streams color settings, starting with the current value.
// The channel closes when ctx is cancelled.
func (file *SettingsFile) WatchColors(ctx context.Context) <-chan model.ColorSettings {
	ch := make(chan model.ColorSettings, 4)

	file.mu.Lock()
	ch <- file.current.Colors
	file.colorWatchers = append(file.colorWatchers, ch)
	file.mu.Unlock()

	go func() {
		<-ctx.Done()
		file.mu.Lock()
		for i, watcher := range file.colorWatchers {
			if watcher == ch {
				file.colorWatchers = append(file.colorWatchers[:i], file.colorWatchers[i+1:]...)
				break
			}
		}
		close(ch)
		file.mu.Unlock()
	}()

	return ch
}

// WatchDurations streams duration settings, starting with the current value.
// The channel closes when ctx is cancelled.
func (file *SettingsFile) WatchDurations(ctx context.Context) <-chan model.DurationSettings {
	ch := make(chan model.DurationSettings, 4)

	file.mu.Lock()
	ch <- file.current.Durations
	file.durationWatchers = append(file.durationWatchers, ch)
	file.mu.Unlock()

	go func() {
		<-ctx.Done()
		file.mu.Lock()
		for i, watcher := range file.durationWatchers {
			if watcher == ch {
				file.durationWatchers = append(file.durationWatchers[:i], file.durationWatchers[i+1:]...)
				break
			}
		}
		close(ch)
		file.mu.Unlock()
	}()

	return ch
}

func fromYamlSettings(fileData yamlSettings) model.TimerSettings {
	var settings model.TimerSettings
	if fileData.FocusMinutes > 0 {
		duration := time.Duration(fileData.FocusMinutes) * time.Minute
		settings.Durations.Focus = &duration
	}
	if fileData.ShortBreakMinutes > 0 {
		duration := time.Duration(fileData.ShortBreakMinutes) * time.Minute
		settings.Durations.ShortBreak = &duration
	}
	if fileData.LongBreakMinutes > 0 {
		duration := time.Duration(fileData.LongBreakMinutes) * time.Minute
		settings.Durations.LongBreak = &duration
	}
	settings.Colors.Focus = fileData.FocusColor
	settings.Colors.ShortBreak = fileData.ShortBreakColor
	settings.Colors.LongBreak = fileData.LongBreakColor
	return settings
}

func toYamlSettings(settings model.TimerSettings) yamlSettings {
	var fileData yamlSettings
	if settings.Durations.Focus != nil {
		fileData.FocusMinutes = int(*settings.Durations.Focus / time.Minute)
	}
	if settings.Durations.ShortBreak != nil {
		fileData.ShortBreakMinutes = int(*settings.Durations.ShortBreak / time.Minute)
	}
	if settings.Durations.LongBreak != nil {
		fileData.LongBreakMinutes = int(*settings.Durations.LongBreak / time.Minute)
	}
	fileData.FocusColor = settings.Colors.Focus
	fileData.ShortBreakColor = settings.Colors.ShortBreak
	fileData.LongBreakColor = settings.Colors.LongBreak
	return fileData
}
