// Package tools finds the external programs the app drives.
package tools

import (
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/samber/lo"

	"media-grabber/internal/domain"
)

const (
	extractorName  = "yt-dlp"
	transcoderName = "ffmpeg"
)

var recognizerNames = []string{"whisper", "whisper-cli"}

// Options controls where the Locator searches.
type Options struct {
	// Executable is the running binary; bundled resources live relative to it.
	Executable string
	GOOS       string
	// ResourcesDir is searched before the bundled location when set.
	ResourcesDir string
	// DevResourcesDir is the fallback used when running from a source tree.
	DevResourcesDir string
	RecognizerPath  string
	ModelPath       string
	ModelFileName   string
}

// Resolver resolves a tool kind to a runnable binary.
type Resolver interface {
	Resolve(kind domain.ToolKind) (domain.ToolBinary, error)
}

// Locator resolves tool binaries once and caches the result.
type Locator struct {
	opts   Options
	stat   func(string) (os.FileInfo, error)
	logger hclog.Logger

	mu    sync.Mutex
	cache map[domain.ToolKind]domain.ToolBinary
}

// NewLocator builds a locator for the running process.
func NewLocator(opts Options, logger hclog.Logger) *Locator {
	if opts.Executable == "" {
		if exe, err := os.Executable(); err == nil {
			opts.Executable = exe
		}
	}
	if opts.DevResourcesDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.DevResourcesDir = filepath.Join(wd, "resources")
		}
	}
	return NewLocatorForTests(opts, os.Stat, logger)
}

// NewLocatorForTests creates a locator with an injectable stat function.
func NewLocatorForTests(opts Options, stat func(string) (os.FileInfo, error), logger hclog.Logger) *Locator {
	if opts.GOOS == "" {
		opts.GOOS = goruntime.GOOS
	}
	if opts.ModelFileName == "" {
		opts.ModelFileName = "ggml-base.en.bin"
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Locator{
		opts:   opts,
		stat:   stat,
		logger: logger,
		cache:  make(map[domain.ToolKind]domain.ToolBinary),
	}
}

// Resolve returns the binary for kind. The extractor and transcoder always
// resolve, falling back to their bare names on PATH; the recognizer fails
// with domain.ErrToolNotFound unless both binary and model are present.
func (l *Locator) Resolve(kind domain.ToolKind) (domain.ToolBinary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if bin, ok := l.cache[kind]; ok {
		return bin, nil
	}

	var (
		bin domain.ToolBinary
		err error
	)
	switch kind {
	case domain.ToolExtractor:
		bin = l.locateExtractor()
	case domain.ToolTranscoder:
		bin = l.locateNative(domain.ToolTranscoder, transcoderName)
	case domain.ToolRecognizer:
		bin, err = l.locateRecognizer()
	default:
		err = fmt.Errorf("%w: unknown tool kind %q", domain.ErrToolNotFound, kind)
	}
	if err != nil {
		return domain.ToolBinary{}, err
	}

	l.logger.Debug("resolved tool", "kind", kind, "path", bin.Path, "mode", bin.Mode)
	l.cache[kind] = bin
	return bin, nil
}

// Reset drops cached resolutions so the next Resolve searches again.
func (l *Locator) Reset(opts Options) {
	l.mu.Lock()
	defer l.mu.Unlock()

	opts.Executable = lo.Ternary(opts.Executable == "", l.opts.Executable, opts.Executable)
	opts.DevResourcesDir = lo.Ternary(opts.DevResourcesDir == "", l.opts.DevResourcesDir, opts.DevResourcesDir)
	opts.GOOS = lo.Ternary(opts.GOOS == "", l.opts.GOOS, opts.GOOS)
	opts.ModelFileName = lo.Ternary(opts.ModelFileName == "", l.opts.ModelFileName, opts.ModelFileName)
	l.opts = opts
	l.cache = make(map[domain.ToolKind]domain.ToolBinary)
}

// SearchDirs lists resource directories in lookup order.
func (l *Locator) SearchDirs() []string {
	dirs := []string{l.opts.ResourcesDir}
	if l.opts.Executable != "" {
		exeDir := filepath.Dir(l.opts.Executable)
		if l.opts.GOOS == "darwin" {
			// <App>.app/Contents/MacOS/<exe> -> <App>.app/Contents/Resources/resources
			dirs = append(dirs, filepath.Join(exeDir, "..", "Resources", "resources"))
		}
		dirs = append(dirs, filepath.Join(exeDir, "resources"))
	}
	dirs = append(dirs, l.opts.DevResourcesDir)

	cleaned := lo.FilterMap(dirs, func(dir string, _ int) (string, bool) {
		if strings.TrimSpace(dir) == "" {
			return "", false
		}
		return filepath.Clean(dir), true
	})
	return lo.Uniq(cleaned)
}

func (l *Locator) locateExtractor() domain.ToolBinary {
	for _, dir := range l.SearchDirs() {
		native := filepath.Join(dir, l.exeName(extractorName))
		if l.isFile(native) {
			return domain.ToolBinary{Kind: domain.ToolExtractor, Path: native, Mode: domain.InvocationNative}
		}
		script := filepath.Join(dir, extractorName+".py")
		if l.isFile(script) {
			return domain.ToolBinary{Kind: domain.ToolExtractor, Path: script, Mode: domain.InvocationInterpreted}
		}
	}
	l.logger.Debug("extractor not bundled, using PATH lookup", "name", extractorName)
	return domain.ToolBinary{Kind: domain.ToolExtractor, Path: extractorName, Mode: domain.InvocationNative}
}

func (l *Locator) locateNative(kind domain.ToolKind, name string) domain.ToolBinary {
	for _, dir := range l.SearchDirs() {
		candidate := filepath.Join(dir, l.exeName(name))
		if l.isFile(candidate) {
			return domain.ToolBinary{Kind: kind, Path: candidate, Mode: domain.InvocationNative}
		}
	}
	l.logger.Debug("tool not bundled, using PATH lookup", "kind", kind, "name", name)
	return domain.ToolBinary{Kind: kind, Path: name, Mode: domain.InvocationNative}
}

func (l *Locator) locateRecognizer() (domain.ToolBinary, error) {
	if override := l.opts.RecognizerPath; override != "" {
		if !l.isFile(override) {
			return domain.ToolBinary{}, fmt.Errorf("%w: recognizer not found at %s", domain.ErrToolNotFound, override)
		}
		model := l.modelFor(filepath.Dir(override))
		if !l.isFile(model) {
			return domain.ToolBinary{}, fmt.Errorf("%w: recognizer model not found at %s", domain.ErrToolNotFound, model)
		}
		return l.recognizer(override, model), nil
	}

	dirs := l.SearchDirs()
	for _, dir := range dirs {
		model := l.modelFor(dir)
		for _, name := range recognizerNames {
			bin := filepath.Join(dir, l.exeName(name))
			if l.isFile(bin) && l.isFile(model) {
				return l.recognizer(bin, model), nil
			}
		}
	}

	return domain.ToolBinary{}, fmt.Errorf(
		"%w: whisper binary and model %s not found in %s",
		domain.ErrToolNotFound,
		l.opts.ModelFileName,
		strings.Join(dirs, ", "),
	)
}

func (l *Locator) recognizer(bin, model string) domain.ToolBinary {
	return domain.ToolBinary{
		Kind:      domain.ToolRecognizer,
		Path:      bin,
		Mode:      domain.InvocationNative,
		ModelPath: model,
	}
}

func (l *Locator) modelFor(dir string) string {
	if l.opts.ModelPath != "" {
		return l.opts.ModelPath
	}
	return filepath.Join(dir, l.opts.ModelFileName)
}

func (l *Locator) exeName(name string) string {
	if l.opts.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func (l *Locator) isFile(path string) bool {
	info, err := l.stat(path)
	return err == nil && !info.IsDir()
}
