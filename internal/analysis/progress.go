package analysis

import "fmt"

// Status is the state of one step within a run.
type Status string

const (
	StatusWorking  Status = "working"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Event is emitted to observers during a run. Purely observational; nothing
// in the engine branches on whether anyone is listening.
type Event struct {
	Step    int // zero-based index of the current step
	Total   int
	Label   string // section or batch name
	Status  Status
	Message string
}

// Reporter fans run progress out to a buffered channel and an optional
// callback. Events are dropped rather than blocking the run when the channel
// is full.
type Reporter struct {
	ch       chan Event
	callback func(current, total int, label string)
}

// NewReporter creates a Reporter with a buffered channel of size 64. The
// callback may be nil; it is invoked synchronously for every working event.
func NewReporter(callback func(current, total int, label string)) *Reporter {
	return &Reporter{
		ch:       make(chan Event, 64),
		callback: callback,
	}
}

// Emit sends an event in a non-blocking fashion.
func (r *Reporter) Emit(ev Event) {
	if r.callback != nil && ev.Status == StatusWorking {
		r.callback(ev.Step, ev.Total, ev.Label)
	}
	select {
	case r.ch <- ev:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (r *Reporter) Subscribe() <-chan Event {
	return r.ch
}

// Close closes the event channel.
func (r *Reporter) Close() {
	close(r.ch)
}

// FormatEvent renders an event as a human-readable status line.
func FormatEvent(ev Event) string {
	switch ev.Status {
	case StatusWorking:
		return fmt.Sprintf("  ● [%d/%d] %s...", ev.Step+1, ev.Total, ev.Label)
	case StatusComplete:
		return fmt.Sprintf("  ✓ [%d/%d] %s", ev.Step+1, ev.Total, ev.Label)
	case StatusFailed:
		return fmt.Sprintf("  ✗ [%d/%d] %s: %s", ev.Step+1, ev.Total, ev.Label, ev.Message)
	default:
		return fmt.Sprintf("  ? %s", ev.Label)
	}
}
