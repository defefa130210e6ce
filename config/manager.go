package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/afero"
)

// Manager loads and persists Settings at a fixed path.
type Manager struct {
	path string
	fs   afero.Fs
	mu   sync.Mutex
}

// NewManager returns a Manager backed by the OS filesystem.
func NewManager(path string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), path)
}

// NewManagerWithFs returns a Manager that reads and writes through fs.
func NewManagerWithFs(fs afero.Fs, path string) *Manager {
	return &Manager{path: path, fs: fs}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the settings file (defaults when it does not exist), applies
// environment overrides and validates the result.
func (m *Manager) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings := DefaultSettings()

	if m.path != "" {
		data, err := afero.ReadFile(m.fs, m.path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &settings); err != nil {
				return Settings{}, fmt.Errorf("parse settings %s: %w", m.path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			log.Printf("[config] %s not found, using defaults", m.path)
		default:
			return Settings{}, fmt.Errorf("read settings %s: %w", m.path, err)
		}
	}

	if err := cleanenv.ReadEnv(&settings); err != nil {
		return Settings{}, fmt.Errorf("read env overrides: %w", err)
	}

	settings.normalize()
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// Save writes settings to the managed path as indented JSON.
func (m *Manager) Save(settings Settings) error {
	if m.path == "" {
		return errors.New("settings path is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if dir := filepath.Dir(m.path); dir != "" {
		if err := m.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := afero.WriteFile(m.fs, m.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// EnvDescription lists the environment variables that override settings.
func EnvDescription() (string, error) {
	var s Settings
	return cleanenv.GetDescription(&s, nil)
}
