package mock

import (
	"context"
	"sync"

	"github.com/fwojciec/coursegrab"
)

var (
	_ coursegrab.StatusNotifier = (*StatusNotifier)(nil)
	_ coursegrab.EventSink      = (*EventSink)(nil)
	_ coursegrab.StatusNotifier = (*StatusRecorder)(nil)
	_ coursegrab.EventSink      = (*EventRecorder)(nil)
)

// StatusNotifier is a mock implementation of coursegrab.StatusNotifier.
type StatusNotifier struct {
	NotifyFn func(ctx context.Context, status string)
}

func (n *StatusNotifier) Notify(ctx context.Context, status string) {
	n.NotifyFn(ctx, status)
}

// EventSink is a mock implementation of coursegrab.EventSink.
type EventSink struct {
	RecordFn func(ctx context.Context, e coursegrab.Event)
}

func (s *EventSink) Record(ctx context.Context, e coursegrab.Event) {
	s.RecordFn(ctx, e)
}

// StatusRecorder collects status lines for assertions.
type StatusRecorder struct {
	mu       sync.Mutex
	statuses []string
}

func (r *StatusRecorder) Notify(_ context.Context, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

// Statuses returns a copy of the recorded status lines.
func (r *StatusRecorder) Statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statuses...)
}

// Last returns the most recent status line, or "".
func (r *StatusRecorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return ""
	}
	return r.statuses[len(r.statuses)-1]
}

// EventRecorder collects events for assertions.
type EventRecorder struct {
	mu     sync.Mutex
	events []coursegrab.Event
}

func (r *EventRecorder) Record(_ context.Context, e coursegrab.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Kinds returns the kinds of all recorded events in order.
func (r *EventRecorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// OfKind returns the recorded events of the given kind.
func (r *EventRecorder) OfKind(kind string) []coursegrab.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []coursegrab.Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
