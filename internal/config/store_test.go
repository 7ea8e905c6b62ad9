package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"

	"media-grabber/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.Language != "en" {
		t.Fatalf("language = %q, want en", cfg.Language)
	}
	if filepath.Base(cfg.DownloadDir) != AppFolder {
		t.Fatalf("download dir = %q, want suffix %s", cfg.DownloadDir, AppFolder)
	}
	if filepath.Base(cfg.CookiesPath) != "cookies.txt" {
		t.Fatalf("cookies path = %q", cfg.CookiesPath)
	}
	if cfg.TempDir == "" {
		t.Fatal("expected non-empty temp dir")
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Language != "en" {
		t.Fatalf("language = %q, want en", got.Language)
	}
	if got.LogLevel != "info" {
		t.Fatalf("log level = %q, want info", got.LogLevel)
	}
}

// TestJSONStoreLoadMissingAppliesEnvironment checks env overrides on first run.
func TestJSONStoreLoadMissingAppliesEnvironment(t *testing.T) {
	downloads := t.TempDir()
	t.Setenv("MEDIA_GRABBER_DOWNLOAD_DIR", downloads)
	t.Setenv("MEDIA_GRABBER_LANGUAGE", "de")

	store := NewJSONStore(filepath.Join(t.TempDir(), "settings.json"))
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.DownloadDir != downloads {
		t.Fatalf("download dir = %q, want %q", got.DownloadDir, downloads)
	}
	if got.Language != "de" {
		t.Fatalf("language = %q, want de", got.Language)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		DownloadDir:    "/downloads",
		TempDir:        "/tmp/grabber",
		CookiesPath:    "/tmp/grabber/cookies.txt",
		ResourcesDir:   "/opt/grabber/resources",
		RecognizerPath: "/opt/whisper/whisper",
		ModelPath:      "/opt/whisper/ggml-base.en.bin",
		Language:       "en",
		LogLevel:       "debug",
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}

// TestNormalizeFillsBlanksAndExpandsHome checks trimming and "~" expansion.
func TestNormalizeFillsBlanksAndExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	got := Normalize(domain.Settings{
		DownloadDir: "  ~/Videos  ",
		LogLevel:    " DEBUG ",
	})
	if got.DownloadDir != filepath.Join("/home/tester", "Videos") {
		t.Fatalf("download dir = %q", got.DownloadDir)
	}
	if got.Language != "en" {
		t.Fatalf("language = %q, want en", got.Language)
	}
	if got.LogLevel != "debug" {
		t.Fatalf("log level = %q, want debug", got.LogLevel)
	}
	if got.CookiesPath == "" || got.TempDir == "" {
		t.Fatalf("expected defaults for blank paths: %+v", got)
	}
}
