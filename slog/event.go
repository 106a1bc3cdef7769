package slog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fwojciec/coursegrab"
)

// Ensure types implement coursegrab.EventSink at compile time.
var (
	_ coursegrab.EventSink = (*EventLogger)(nil)
	_ coursegrab.EventSink = (*RingBuffer)(nil)
	_ coursegrab.EventSink = Tee(nil)
)

// EventLogger writes events to a slog.Logger.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger creates a new EventLogger.
func NewEventLogger(logger *slog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Record logs e at the matching slog level.
func (l *EventLogger) Record(ctx context.Context, e coursegrab.Event) {
	attrs := []slog.Attr{slog.String("kind", e.Kind)}
	if e.Course != "" {
		attrs = append(attrs, slog.String("course", e.Course))
	}
	if e.URL != "" {
		attrs = append(attrs, slog.String("url", e.URL))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.Any("err", e.Err))
	}
	l.logger.LogAttrs(ctx, level(e.Level), e.Message, attrs...)
}

func level(l coursegrab.EventLevel) slog.Level {
	switch l {
	case coursegrab.LevelWarn:
		return slog.LevelWarn
	case coursegrab.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Tee fans events out to several sinks.
type Tee []coursegrab.EventSink

// Record forwards e to every sink in order.
func (t Tee) Record(ctx context.Context, e coursegrab.Event) {
	for _, s := range t {
		s.Record(ctx, e)
	}
}

// DefaultRingSize is the capacity used when NewRingBuffer gets a
// non-positive size.
const DefaultRingSize = 500

// RingBuffer keeps the most recent events in memory. Older events are
// overwritten once the buffer is full.
type RingBuffer struct {
	mu     sync.Mutex
	events []coursegrab.Event
	next   int
	full   bool
}

// NewRingBuffer creates a RingBuffer holding up to size events.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{events: make([]coursegrab.Event, size)}
}

// Record stores e, evicting the oldest event when full.
func (r *RingBuffer) Record(_ context.Context, e coursegrab.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
}

// Len returns the number of stored events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.events)
	}
	return r.next
}

// Events returns the stored events, oldest first.
func (r *RingBuffer) Events() []coursegrab.Event {
	return r.Tail(0)
}

// Tail returns up to n of the newest events, oldest first. n <= 0 returns
// all of them.
func (r *RingBuffer) Tail(n int) []coursegrab.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ordered []coursegrab.Event
	if r.full {
		ordered = append(ordered, r.events[r.next:]...)
	}
	ordered = append(ordered, r.events[:r.next]...)

	if n > 0 && n < len(ordered) {
		ordered = ordered[len(ordered)-n:]
	}
	return ordered
}

// WriteTo prints the stored events one per line.
func (r *RingBuffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range r.Events() {
		line := fmt.Sprintf("%s %-5s %s", e.Time.Format("15:04:05"), e.Level, e.Kind)
		if e.Course != "" {
			line += " [" + e.Course + "]"
		}
		if e.Message != "" {
			line += " " + e.Message
		}
		if e.URL != "" {
			line += " " + e.URL
		}
		if e.Err != nil {
			line += ": " + e.Err.Error()
		}
		n, err := fmt.Fprintln(w, line)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
