package slog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/fwojciec/coursegrab"
)

// Ensure types implement coursegrab.StatusNotifier at compile time.
var (
	_ coursegrab.StatusNotifier = (*StatusWriter)(nil)
	_ coursegrab.StatusNotifier = (*StatusChannel)(nil)
	_ coursegrab.StatusNotifier = (*StatusLogger)(nil)
)

// StatusWriter writes each status as a JSON line shaped like the status
// message, {"statusUpdate": "..."}. Write errors are ignored.
type StatusWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStatusWriter creates a new StatusWriter.
func NewStatusWriter(w io.Writer) *StatusWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &StatusWriter{enc: enc}
}

// Notify writes status.
func (s *StatusWriter) Notify(_ context.Context, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(coursegrab.StatusMessage{StatusUpdate: status})
}

// StatusChannel delivers statuses over a buffered channel. Statuses that
// do not fit are dropped and counted.
type StatusChannel struct {
	ch chan string

	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewStatusChannel creates a StatusChannel with the given buffer size.
func NewStatusChannel(size int) *StatusChannel {
	return &StatusChannel{ch: make(chan string, size)}
}

// C returns the receive side. It is closed by Close.
func (s *StatusChannel) C() <-chan string {
	return s.ch
}

// Notify enqueues status without blocking.
func (s *StatusChannel) Notify(_ context.Context, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.dropped++
		return
	}
	select {
	case s.ch <- status:
	default:
		s.dropped++
	}
}

// Dropped returns how many statuses were discarded.
func (s *StatusChannel) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close closes the channel. Later notifications are dropped.
func (s *StatusChannel) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// StatusLogger mirrors statuses into a slog.Logger and forwards them to
// an optional next notifier.
type StatusLogger struct {
	next   coursegrab.StatusNotifier
	logger *slog.Logger
}

// NewStatusLogger creates a new StatusLogger. next may be nil.
func NewStatusLogger(next coursegrab.StatusNotifier, logger *slog.Logger) *StatusLogger {
	return &StatusLogger{next: next, logger: logger}
}

// Notify logs status and forwards it.
func (s *StatusLogger) Notify(ctx context.Context, status string) {
	s.logger.InfoContext(ctx, "status", "status", status)
	if s.next != nil {
		s.next.Notify(ctx, status)
	}
}
