package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/samber/lo"

	"media-grabber/internal/config"
	"media-grabber/internal/domain"
)

var recognizerModelCatalog = []domain.RecognizerModelOption{
	{ID: "tiny.en", Name: "Tiny (English)", FileName: "ggml-tiny.en.bin", SizeLabel: "~75 MB", Description: "Fastest, English-only model."},
	{ID: "tiny", Name: "Tiny (Multilingual)", FileName: "ggml-tiny.bin", SizeLabel: "~75 MB", Description: "Fastest multilingual model."},
	{ID: "base.en", Name: "Base (English)", FileName: "ggml-base.en.bin", SizeLabel: "~142 MB", Description: "Balanced speed/quality, English-only."},
	{ID: "base", Name: "Base (Multilingual)", FileName: "ggml-base.bin", SizeLabel: "~142 MB", Description: "Balanced speed/quality, multilingual."},
	{ID: "small.en", Name: "Small (English)", FileName: "ggml-small.en.bin", SizeLabel: "~466 MB", Description: "Higher quality, English-only."},
	{ID: "small", Name: "Small (Multilingual)", FileName: "ggml-small.bin", SizeLabel: "~466 MB", Description: "Higher quality multilingual model."},
	{ID: "medium.en", Name: "Medium (English)", FileName: "ggml-medium.en.bin", SizeLabel: "~1.5 GB", Description: "High quality, English-only."},
	{ID: "medium", Name: "Medium (Multilingual)", FileName: "ggml-medium.bin", SizeLabel: "~1.5 GB", Description: "High quality multilingual model."},
	{ID: "large-v3", Name: "Large v3", FileName: "ggml-large-v3.bin", SizeLabel: "~2.9 GB", Description: "Latest large multilingual model."},
	{ID: "large-v3-turbo", Name: "Large v3 Turbo", FileName: "ggml-large-v3-turbo.bin", SizeLabel: "~1.6 GB", Description: "Faster large-v3 variant."},
}

// GetRecognizerModels lists the known whisper.cpp models, marking those
// present on disk and the one the recognizer currently uses.
func (a *App) GetRecognizerModels() []domain.RecognizerModelOption {
	models := make([]domain.RecognizerModelOption, len(recognizerModelCatalog))
	copy(models, recognizerModelCatalog)

	a.mu.Lock()
	settings := a.Settings
	a.mu.Unlock()

	markInstalledModels(models, a.modelDirs(settings))

	if bin, err := a.locator.Resolve(domain.ToolRecognizer); err == nil {
		markActiveModel(models, bin.ModelPath)
	}
	return models
}

// SelectRecognizerModel points settings at an installed model.
func (a *App) SelectRecognizerModel(modelID string) (domain.Settings, error) {
	id := strings.TrimSpace(modelID)
	if id == "" {
		return domain.Settings{}, fmt.Errorf("model id is required")
	}

	model, found := getRecognizerModelByID(id)
	if !found {
		return domain.Settings{}, fmt.Errorf("unknown model id: %s", id)
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	models := []domain.RecognizerModelOption{model}
	markInstalledModels(models, a.modelDirs(settings))
	if !models[0].Installed {
		return domain.Settings{}, fmt.Errorf("model %s is not installed; place %s in %s", model.Name, model.FileName, localModelsDir())
	}

	settings.ModelPath = models[0].LocalPath
	return a.SaveSettings(settings)
}

func getRecognizerModelByID(id string) (domain.RecognizerModelOption, bool) {
	return lo.Find(recognizerModelCatalog, func(model domain.RecognizerModelOption) bool {
		return model.ID == id
	})
}

// modelDirs returns directories that may hold model files: the configured
// model location, the recognizer's directory, the bundled resources and the
// per-user models folder.
func (a *App) modelDirs(settings domain.Settings) []string {
	dirs := []string{
		modelDirFor(settings.ModelPath),
		dirOf(settings.RecognizerPath),
	}
	if a.locator != nil {
		dirs = append(dirs, a.locator.SearchDirs()...)
	}
	dirs = append(dirs, localModelsDir())

	return lo.Uniq(lo.FilterMap(dirs, func(dir string, _ int) (string, bool) {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return "", false
		}
		clean := filepath.Clean(dir)
		return clean, clean != "."
	}))
}

// modelDirFor accepts either a model file or a model directory.
func modelDirFor(modelPath string) string {
	trimmed := strings.TrimSpace(modelPath)
	if trimmed == "" {
		return ""
	}

	info, err := os.Stat(trimmed)
	if err == nil {
		if info.IsDir() {
			return trimmed
		}
		return filepath.Dir(trimmed)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return ""
	}

	ext := strings.ToLower(filepath.Ext(trimmed))
	if ext == ".bin" || ext == ".gguf" {
		return filepath.Dir(trimmed)
	}
	return trimmed
}

func dirOf(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return filepath.Dir(path)
}

func localModelsDir() string {
	dir, err := homedir.Expand(filepath.Join("~", ".media-grabber", "models"))
	if err != nil {
		return filepath.Join(config.DefaultSettings().TempDir, "media-grabber-models")
	}
	return dir
}

func markInstalledModels(models []domain.RecognizerModelOption, modelDirs []string) {
	for i := range models {
		for _, dir := range modelDirs {
			candidate := filepath.Join(dir, models[i].FileName)
			info, err := os.Stat(candidate)
			if err != nil || info.IsDir() {
				continue
			}
			models[i].Installed = true
			models[i].LocalPath = candidate
			break
		}
	}
}

func markActiveModel(models []domain.RecognizerModelOption, activePath string) {
	if activePath == "" {
		return
	}
	for i := range models {
		if models[i].Installed && filepath.Clean(models[i].LocalPath) == filepath.Clean(activePath) {
			models[i].Active = true
		}
	}
}
