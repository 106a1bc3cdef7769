package coursegrab

import (
	"context"
	"time"
)

// StatusNotifier delivers human-readable status lines to whoever is
// watching the run. Notify must not block for long and must never fail the
// caller; undeliverable notifications are dropped.
type StatusNotifier interface {
	Notify(ctx context.Context, status string)
}

// EventLevel is the severity of a recorded event.
type EventLevel int

// Event levels.
const (
	LevelInfo EventLevel = iota
	LevelWarn
	LevelError
)

// String returns a short name for logs.
func (l EventLevel) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Event kinds recorded during a run.
const (
	EventCourseStart    = "course_start"
	EventCourseDone     = "course_done"
	EventPageStart      = "page_start"
	EventPageSkipped    = "page_skipped"
	EventPageEmpty      = "page_empty"
	EventNestedLink     = "nested_intermediate"
	EventExternalFile   = "external_file"
	EventDroppedLink    = "dropped_link"
	EventFileArchived   = "file_archived"
	EventFileFailed     = "file_failed"
	EventDuplicateBytes = "duplicate_content"
	EventArchiveDone    = "archive_done"
	EventRunFailed      = "run_failed"
)

// Event is one structured record of something that happened during a run.
type Event struct {
	Time    time.Time
	Level   EventLevel
	Kind    string
	Course  string
	URL     string
	Message string
	Err     error
}

// EventSink records structured events. Implementations must be safe for
// concurrent use and must not block.
type EventSink interface {
	Record(ctx context.Context, e Event)
}
