// Package diagnostics reports whether the external tools and working
// directories the app depends on are usable.
package diagnostics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/samber/lo"

	"media-grabber/internal/domain"
	"media-grabber/internal/tools"
)

// Checker validates external tools and required filesystem paths.
type Checker struct {
	tools      tools.Resolver
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker(resolver tools.Resolver) *Checker {
	return NewCheckerForTests(resolver, exec.LookPath, os.Stat, os.MkdirAll, os.CreateTemp, os.Remove)
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	resolver tools.Resolver,
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		tools:      resolver,
		lookPath:   lookPath,
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkTool(domain.ToolExtractor, "yt-dlp", "Place yt-dlp in the resources folder or install it on PATH."),
		c.checkTool(domain.ToolTranscoder, "ffmpeg", "Place ffmpeg in the resources folder or install it on PATH."),
		c.checkRecognizer(),
		c.checkWritableDir("download_dir", "Download directory", settings.DownloadDir),
		c.checkWritableDir("temp_dir", "Temporary directory", settings.TempDir),
		c.checkCookies(settings.CookiesPath),
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: lo.SomeBy(items, func(item domain.DiagnosticItem) bool {
			return item.Status == domain.DiagnosticStatusFail
		}),
		Items: items,
	}
}

// checkTool verifies a tool resolves to a bundled file or a PATH entry.
func (c *Checker) checkTool(kind domain.ToolKind, name, hint string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "tool_" + string(kind),
		Name: name,
	}

	bin, err := c.tools.Resolve(kind)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = err.Error()
		item.Hint = hint
		return item
	}

	if bin.IsBundled() {
		item.Status = domain.DiagnosticStatusPass
		item.Path = bin.Path
		item.Message = fmt.Sprintf("Bundled at %s", bin.Path)
		if bin.Mode == domain.InvocationInterpreted {
			item.Message = fmt.Sprintf("Script at %s (runs with %s)", bin.Path, domain.ScriptInterpreter)
		}
		return item
	}

	path, err := c.lookPath(bin.Path)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Tool not found in PATH: %s", bin.Path)
		item.Hint = hint
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Path = path
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// checkRecognizer reports whisper.cpp and its model together.
func (c *Checker) checkRecognizer() domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "tool_" + string(domain.ToolRecognizer),
		Name: "whisper.cpp",
	}

	bin, err := c.tools.Resolve(domain.ToolRecognizer)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = err.Error()
		item.Hint = "Bundle whisper-cli with a ggml model or set recognizer and model paths in settings. Caption transcripts still work without it."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Path = bin.Path
	item.Message = fmt.Sprintf("Found at %s with model %s", bin.Path, bin.ModelPath)
	return item
}

// checkWritableDir validates directory existence and write access.
func (c *Checker) checkWritableDir(id, name, dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   id,
		Name: name,
		Path: dir,
	}

	if strings.TrimSpace(dir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("%s is empty.", name)
		item.Hint = "Set a directory in settings."
		return item
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create directory: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Directory is not writable: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// checkCookies is informational; a missing file only disables cookie passing.
func (c *Checker) checkCookies(path string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "cookies",
		Name: "Cookies file",
		Path: path,
	}

	info, err := c.stat(path)
	if err != nil || info.IsDir() {
		item.Status = domain.DiagnosticStatusWarn
		item.Message = "No cookies file; sites that need a login may refuse downloads."
		if err != nil && !IsNotExist(err) {
			item.Message = fmt.Sprintf("Cannot access cookies file: %s", path)
		}
		item.Hint = "Export browser cookies in Netscape format to this path."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Cookies file found: %s", path)
	return item
}

// IsNotExist reports whether error represents file-not-found.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
