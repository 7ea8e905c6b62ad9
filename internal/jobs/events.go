package jobs

import (
	"sync"
	"time"
)

// UI event names.
const (
	EventStatus   = "download-status"
	EventProgress = "download-progress"
	EventComplete = "download-complete"
)

// StatusPayload is sent with EventStatus. Percent is always zero; the UI
// reads progress from EventProgress.
type StatusPayload struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	Status   string  `json:"status"`
	Phase    string  `json:"phase"`
	Percent  float64 `json:"percent"`
}

// ProgressPayload is sent with EventProgress.
type ProgressPayload struct {
	ID         string  `json:"id"`
	Filename   string  `json:"filename"`
	Progress   float64 `json:"progress"`
	Downloaded string  `json:"downloaded"`
	Total      string  `json:"total"`
	Speed      string  `json:"speed"`
	ETA        string  `json:"eta"`
}

// CompletePayload is sent with EventComplete.
type CompletePayload struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Emitter delivers one named event to the UI.
type Emitter interface {
	Emit(jobID, name string, payload any)
}

// Event is a sequenced payload consumed by UI subscribers.
type Event struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"jobId"`
	Name      string    `json:"name"`
	Payload   any       `json:"payload"`
}

// EventBus stores recent events and provides incremental reads.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// NewEventBus creates a bounded in-memory event buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Emit records an event; EventBus satisfies Emitter.
func (b *EventBus) Emit(jobID, name string, payload any) {
	b.Publish(Event{JobID: jobID, Name: name, Payload: payload})
}

// Publish appends one event and assigns sequence and timestamp.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}

// ForJob returns the retained events of one job in publish order.
func (b *EventBus) ForJob(jobID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, event := range b.events {
		if event.JobID == jobID {
			out = append(out, event)
		}
	}
	return out
}
