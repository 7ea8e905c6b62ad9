package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"media-grabber/internal/domain"
	"media-grabber/internal/parser"
)

// Result is the terminal outcome of a job.
type Result struct {
	JobID string
	Phase domain.Phase
	Path  string
	Err   error
}

// Dispatcher turns extractor output into UI events for one Handle.
// A job completes on the first of: a progress line at 100%, an
// already-downloaded line, or a clean process exit. A 100% line for a
// per-format part file does not complete the job, since the parts are
// merged afterwards.
// Emission is serialised so events reach the UI in the order the lines
// were read, and nothing is emitted after the terminal event.
type Dispatcher struct {
	handle     *Handle
	emitter    Emitter
	classifier *parser.Classifier
	logger     hclog.Logger

	mu          sync.Mutex
	destination string
	firstPart   string
	outcome     Result
}

// NewDispatcher creates a dispatcher; classifier may be nil for the default rules.
func NewDispatcher(handle *Handle, emitter Emitter, classifier *parser.Classifier, logger hclog.Logger) *Dispatcher {
	if classifier == nil {
		classifier = parser.NewClassifier(nil)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Dispatcher{
		handle:     handle,
		emitter:    emitter,
		classifier: classifier,
		logger:     logger.With("job", handle.ID),
	}
}

// Handle returns the job handle.
func (d *Dispatcher) Handle() *Handle {
	return d.handle
}

// Start emits the initializing status.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status(domain.PhaseInitializing)
}

// HandleStdout processes one stdout line.
func (d *Dispatcher) HandleStdout(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handle.Terminated() {
		return
	}
	if path, ok := parser.ParseDestination(line); ok {
		d.destination = path
		if d.firstPart == "" && parser.IsFormatPart(path) {
			d.firstPart = path
		}
	}

	c := d.classifier.Classify(line)
	switch c.Kind {
	case parser.LineProgress:
		d.progress(c.Progress)
		if c.Progress.Percent >= 100 && !parser.IsFormatPart(d.destination) {
			d.complete()
		}
	case parser.LineStatus:
		d.status(c.Phase)
	case parser.LineCompleted:
		d.complete()
	}
}

// HandleStderr processes one stderr line; a fatal error line ends the job.
func (d *Dispatcher) HandleStderr(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handle.Terminated() {
		return
	}
	if msg, ok := parser.ParseErrorLine(line); ok {
		d.fail(msg)
		return
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		d.logger.Debug("extractor stderr", "line", trimmed)
	}
}

// UpgradeTitle replaces the placeholder name and re-emits the current status.
func (d *Dispatcher) UpgradeTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handle.Terminated() || !d.handle.SetDisplayName(title) {
		return
	}
	d.emitStatus(domain.StatusEvent{Phase: d.handle.Phase()})
}

// Finish emits the terminal event if none was emitted yet: Error when
// exitErr is non-nil, Complete otherwise. It returns the job outcome.
func (d *Dispatcher) Finish(exitErr error) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.handle.Terminated() {
		if exitErr != nil {
			d.fail(exitMessage(exitErr))
		} else {
			d.complete()
		}
	}
	return d.outcome
}

func (d *Dispatcher) status(phase domain.Phase) {
	if err := d.handle.Transition(phase); err != nil {
		d.logger.Debug("ignored status", "error", err)
		return
	}
	d.emitStatus(domain.StatusEvent{Phase: phase})
}

func (d *Dispatcher) emitStatus(event domain.StatusEvent) {
	d.emitter.Emit(d.handle.ID, EventStatus, StatusPayload{
		ID:       d.handle.ID,
		Filename: d.handle.DisplayName(),
		Status:   event.Text(),
		Phase:    string(event.Phase),
	})
}

func (d *Dispatcher) progress(p domain.ProgressEvent) {
	d.emitter.Emit(d.handle.ID, EventProgress, ProgressPayload{
		ID:         d.handle.ID,
		Filename:   d.handle.DisplayName(),
		Progress:   p.Percent,
		Downloaded: p.BytesDone,
		Total:      p.BytesTotal,
		Speed:      p.Rate,
		ETA:        p.ETA,
	})
}

func (d *Dispatcher) complete() {
	if !d.handle.finish(domain.PhaseComplete) {
		return
	}

	path := d.completedPath()
	d.outcome = Result{JobID: d.handle.ID, Phase: domain.PhaseComplete, Path: path}
	d.logger.Info("download complete", "path", path)
	d.emitter.Emit(d.handle.ID, EventComplete, CompletePayload{
		ID:       d.handle.ID,
		Filename: d.handle.DisplayName(),
		Path:     path,
	})
}

// completedPath prefers the last announced file. A leftover part name is
// mapped to the merged file named after the first part.
func (d *Dispatcher) completedPath() string {
	switch {
	case d.destination == "":
		return d.handle.DestinationPath
	case parser.IsFormatPart(d.destination):
		return parser.MergedPath(d.firstPart)
	default:
		return d.destination
	}
}

func (d *Dispatcher) fail(message string) {
	if !d.handle.finish(domain.PhaseError) {
		return
	}

	d.outcome = Result{JobID: d.handle.ID, Phase: domain.PhaseError, Err: errors.New(message)}
	d.logger.Warn("download failed", "error", message)
	d.emitStatus(domain.StatusEvent{Phase: domain.PhaseError, Message: message})
}

func exitMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return "download cancelled"
	}
	return err.Error()
}
