package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"

	"media-grabber/internal/domain"
)

// Store defines persistence operations for app settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
}

// JSONStore persists settings in a single JSON file on disk.
// Environment variables named in the Settings env tags override file values.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed settings store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file location.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads settings from disk or returns defaults when missing.
func (s *JSONStore) Load() (domain.Settings, error) {
	if _, err := os.Stat(s.path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return domain.Settings{}, err
		}

		cfg := DefaultSettings()
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return domain.Settings{}, fmt.Errorf("read settings environment: %w", err)
		}
		return Normalize(cfg), nil
	}

	var cfg domain.Settings
	if err := cleanenv.ReadConfig(s.path, &cfg); err != nil {
		return domain.Settings{}, fmt.Errorf("read settings file %s: %w", s.path, err)
	}

	return Normalize(cfg), nil
}

// Save writes settings as indented JSON and creates parent directories.
func (s *JSONStore) Save(cfg domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}
