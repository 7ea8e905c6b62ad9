package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"media-grabber/internal/domain"
)

// AppFolder is the directory created under the user's Downloads folder.
const AppFolder = "MediaGrabber"

// DefaultModelFileName is the recognizer model looked up next to the recognizer binary.
const DefaultModelFileName = "ggml-base.en.bin"

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := homedir.Dir()
	if err != nil {
		homeDir = "."
	}
	tempDir := os.TempDir()

	return domain.Settings{
		DownloadDir: filepath.Join(homeDir, "Downloads", AppFolder),
		TempDir:     tempDir,
		CookiesPath: filepath.Join(tempDir, "cookies.txt"),
		Language:    "en",
		LogLevel:    "info",
	}
}

// DefaultPath returns the settings file location under the user's home.
func DefaultPath() (string, error) {
	return homedir.Expand(filepath.Join("~", ".media-grabber", "settings.json"))
}

// Normalize trims user input, expands "~" and fills blanks from defaults.
func Normalize(settings domain.Settings) domain.Settings {
	defaults := DefaultSettings()

	settings.DownloadDir = orDefault(expand(settings.DownloadDir), defaults.DownloadDir)
	settings.TempDir = orDefault(expand(settings.TempDir), defaults.TempDir)
	settings.CookiesPath = orDefault(expand(settings.CookiesPath), defaults.CookiesPath)
	settings.ResourcesDir = expand(settings.ResourcesDir)
	settings.RecognizerPath = expand(settings.RecognizerPath)
	settings.ModelPath = expand(settings.ModelPath)
	settings.Language = orDefault(strings.TrimSpace(settings.Language), defaults.Language)
	settings.LogLevel = orDefault(strings.ToLower(strings.TrimSpace(settings.LogLevel)), defaults.LogLevel)
	return settings
}

func expand(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	expanded, err := homedir.Expand(trimmed)
	if err != nil {
		return trimmed
	}
	return expanded
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
