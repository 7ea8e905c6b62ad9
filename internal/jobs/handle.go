package jobs

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"media-grabber/internal/domain"
)

// Handle identifies one streaming job and tracks its phase.
type Handle struct {
	ID              string
	DestinationPath string
	StartedAt       time.Time

	mu          sync.RWMutex
	displayName string
	phase       domain.Phase

	terminal atomic.Bool
}

// HandleInfo is a snapshot of a Handle for the UI.
type HandleInfo struct {
	ID              string       `json:"id"`
	DisplayName     string       `json:"displayName"`
	DestinationPath string       `json:"destinationPath"`
	Phase           domain.Phase `json:"phase"`
	StartedAt       time.Time    `json:"startedAt"`
}

// NewHandle creates a handle in the created phase with a fresh id.
func NewHandle(displayName, destination string) *Handle {
	return &Handle{
		ID:              uuid.NewString(),
		DestinationPath: destination,
		StartedAt:       time.Now().UTC(),
		displayName:     displayName,
		phase:           domain.PhaseCreated,
	}
}

// DisplayName returns the current user-facing name.
func (h *Handle) DisplayName() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.displayName
}

// SetDisplayName replaces the display name; blank names are ignored.
func (h *Handle) SetDisplayName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if name == h.displayName {
		return false
	}
	h.displayName = name
	return true
}

// Phase returns the current phase.
func (h *Handle) Phase() domain.Phase {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.phase
}

// Transition validates and applies a non-terminal phase change.
// Terminal phases are only reachable through finish.
func (h *Handle) Transition(to domain.Phase) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if to == h.phase {
		return nil
	}
	if to.IsTerminal() || !isValidTransition(h.phase, to) {
		return fmt.Errorf("invalid transition: %s -> %s", h.phase, to)
	}
	h.phase = to
	return nil
}

// Terminated reports whether a terminal event has been emitted.
func (h *Handle) Terminated() bool {
	return h.terminal.Load()
}

// Info returns a snapshot of the handle.
func (h *Handle) Info() HandleInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HandleInfo{
		ID:              h.ID,
		DisplayName:     h.displayName,
		DestinationPath: h.DestinationPath,
		Phase:           h.phase,
		StartedAt:       h.StartedAt,
	}
}

// finish moves the handle into a terminal phase exactly once. Only the
// caller that wins the compare-and-swap may emit the terminal event.
func (h *Handle) finish(phase domain.Phase) bool {
	if !h.terminal.CompareAndSwap(false, true) {
		return false
	}

	h.mu.Lock()
	h.phase = phase
	h.mu.Unlock()
	return true
}

// isIntermediate reports whether a phase sits between start and finish.
func isIntermediate(phase domain.Phase) bool {
	switch phase {
	case domain.PhaseResolving,
		domain.PhaseConnecting,
		domain.PhaseFetchingMetadata,
		domain.PhaseProcessingStreams,
		domain.PhaseStarting:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed phase machine edges.
func isValidTransition(from, to domain.Phase) bool {
	switch {
	case from == domain.PhaseCreated:
		return to == domain.PhaseInitializing
	case from == domain.PhaseInitializing || isIntermediate(from):
		return isIntermediate(to)
	default:
		return false
	}
}
