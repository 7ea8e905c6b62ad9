// Package cleanup removes temporary files when an operation ends.
package cleanup

import (
	"errors"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Guard tracks temporary paths and deletes them on Release.
// Use it with defer so files are removed on every exit path:
//
//	guard := cleanup.NewGuard(logger)
//	defer guard.Release()
//	guard.Track(audioPath)
type Guard struct {
	logger hclog.Logger
	remove func(string) error

	mu    sync.Mutex
	paths []string
}

// NewGuard creates a guard that deletes with os.RemoveAll.
func NewGuard(logger hclog.Logger) *Guard {
	return NewGuardForTests(logger, os.RemoveAll)
}

// NewGuardForTests creates a guard with an injectable remove function.
func NewGuardForTests(logger hclog.Logger, remove func(string) error) *Guard {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Guard{logger: logger, remove: remove}
}

// Track registers paths for deletion. Paths need not exist yet.
func (g *Guard) Track(paths ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, path := range paths {
		if path != "" {
			g.paths = append(g.paths, path)
		}
	}
}

// Remove deletes one path now. Errors are logged and swallowed.
func (g *Guard) Remove(path string) {
	if err := g.remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		g.logger.Debug("failed to remove temporary file", "path", path, "error", err)
	}
}

// Release deletes every tracked path, most recent first. It is safe to call
// more than once.
func (g *Guard) Release() {
	g.mu.Lock()
	paths := g.paths
	g.paths = nil
	g.mu.Unlock()

	for i := len(paths) - 1; i >= 0; i-- {
		g.Remove(paths[i])
	}
}
