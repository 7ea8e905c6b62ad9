package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"media-grabber/internal/domain"
)

// TestGetRecognizerModelByID verifies known model lookup.
func TestGetRecognizerModelByID(t *testing.T) {
	model, found := getRecognizerModelByID("base.en")
	if !found {
		t.Fatal("expected base.en model to exist")
	}
	if model.FileName != "ggml-base.en.bin" {
		t.Fatalf("filename = %s, want ggml-base.en.bin", model.FileName)
	}

	if _, found := getRecognizerModelByID("huge"); found {
		t.Fatal("expected unknown model id to be missing")
	}
}

// TestModelDirForModelFile uses model file parent directory.
func TestModelDirForModelFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "ggml-small.bin")

	if dir := modelDirFor(path); dir != root {
		t.Fatalf("dir = %s, want %s", dir, root)
	}
}

// TestModelDirForExistingDirectory keeps an existing directory as-is.
func TestModelDirForExistingDirectory(t *testing.T) {
	root := t.TempDir()
	if dir := modelDirFor(root); dir != root {
		t.Fatalf("dir = %s, want %s", dir, root)
	}
	if dir := modelDirFor("   "); dir != "" {
		t.Fatalf("dir = %q, want empty", dir)
	}
}

// TestMarkInstalledAndActiveModels marks catalog models found in known dirs.
func TestMarkInstalledAndActiveModels(t *testing.T) {
	root := t.TempDir()
	modelPath := filepath.Join(root, "ggml-base.en.bin")
	if err := os.WriteFile(modelPath, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}

	models := []domain.RecognizerModelOption{
		{ID: "base.en", FileName: "ggml-base.en.bin"},
		{ID: "small", FileName: "ggml-small.bin"},
	}
	markInstalledModels(models, []string{filepath.Join(root, "missing"), root})
	markActiveModel(models, modelPath)

	if !models[0].Installed || !models[0].Active {
		t.Fatalf("base.en = %+v, want installed and active", models[0])
	}
	if models[0].LocalPath != modelPath {
		t.Fatalf("localPath = %s, want %s", models[0].LocalPath, modelPath)
	}
	if models[1].Installed || models[1].Active {
		t.Fatalf("small = %+v, want not installed", models[1])
	}
}

// TestSelectRecognizerModelRequiresInstalledFile checks model selection.
func TestSelectRecognizerModelRequiresInstalledFile(t *testing.T) {
	app, store := newTestApp(t, &fakeRunner{})

	if _, err := app.SelectRecognizerModel("tiny"); err == nil {
		t.Fatal("expected error for model that is not installed")
	}

	modelDir := t.TempDir()
	modelPath := filepath.Join(modelDir, "ggml-tiny.bin")
	if err := os.WriteFile(modelPath, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	store.settings.ModelPath = modelDir

	settings, err := app.SelectRecognizerModel("tiny")
	if err != nil {
		t.Fatalf("SelectRecognizerModel() error = %v", err)
	}
	if settings.ModelPath != modelPath {
		t.Fatalf("model path = %s, want %s", settings.ModelPath, modelPath)
	}
}
