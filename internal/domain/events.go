package domain

// Phase is a coarse stage of a streaming extractor job.
type Phase string

const (
	PhaseCreated           Phase = "created"
	PhaseInitializing      Phase = "initializing"
	PhaseResolving         Phase = "resolving"
	PhaseConnecting        Phase = "connecting"
	PhaseFetchingMetadata  Phase = "fetching-metadata"
	PhaseProcessingStreams Phase = "processing-streams"
	PhaseStarting          Phase = "starting"
	PhaseMerging           Phase = "merging"
	PhaseComplete          Phase = "complete"
	PhaseError             Phase = "error"
)

var phaseLabels = map[Phase]string{
	PhaseCreated:           "Queued",
	PhaseInitializing:      "Initializing...",
	PhaseResolving:         "Resolving URL...",
	PhaseConnecting:        "Connecting...",
	PhaseFetchingMetadata:  "Fetching video info...",
	PhaseProcessingStreams: "Processing streams...",
	PhaseStarting:          "Starting download...",
	PhaseMerging:           "Merging streams...",
	PhaseComplete:          "Complete",
	PhaseError:             "Error",
}

// Label returns the user-facing text for the phase.
func (p Phase) Label() string {
	if label, ok := phaseLabels[p]; ok {
		return label
	}
	return string(p)
}

// IsTerminal reports whether no further events may follow the phase.
func (p Phase) IsTerminal() bool {
	return p == PhaseComplete || p == PhaseError
}

// ProgressEvent is one parsed progress line from the extractor.
type ProgressEvent struct {
	Percent    float64 `json:"percent"`
	BytesDone  string  `json:"bytesDone"`
	BytesTotal string  `json:"bytesTotal"`
	Rate       string  `json:"rate"`
	ETA        string  `json:"eta"`
}

// StatusEvent reports a phase change, optionally with a message.
type StatusEvent struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
}

// Text renders the status the way the UI shows it.
func (e StatusEvent) Text() string {
	if e.Phase == PhaseError && e.Message != "" {
		return "Error: " + e.Message
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Phase.Label()
}
