package coursegrab

import (
	"context"
	"time"
)

// Run is one crawl-and-archive execution recorded in the ledger.
type Run struct {
	ID         string     `json:"id"`
	BaseURL    string     `json:"baseUrl"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Courses    int        `json:"courses"`
	Archived   int        `json:"archived"`
	Errors     int        `json:"errors"`
}

// ArchivedFile records one file stored in a course archive.
type ArchivedFile struct {
	ID          string    `json:"id"`
	RunID       string    `json:"runId"`
	CourseID    string    `json:"courseId"`
	CourseName  string    `json:"courseName"`
	Filename    string    `json:"filename"`
	SourceURL   string    `json:"sourceUrl"`
	ArchivePath string    `json:"archivePath"`
	Size        int64     `json:"size"`
	ContentHash string    `json:"contentHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the record contains invalid fields.
func (f *ArchivedFile) Validate() error {
	if f.RunID == "" {
		return Errorf(EINVALID, "run ID required")
	}
	if f.CourseID == "" {
		return Errorf(EINVALID, "course ID required")
	}
	if f.Filename == "" {
		return Errorf(EINVALID, "filename required")
	}
	return nil
}

// RunFilter constrains FindRuns.
type RunFilter struct {
	ID *string

	Limit  int
	Offset int
}

// ArchivedFileFilter constrains FindArchivedFiles.
type ArchivedFileFilter struct {
	RunID    *string
	CourseID *string
}

// ArchiveRecorder records archived files as they are stored.
type ArchiveRecorder interface {
	RecordFile(ctx context.Context, file *ArchivedFile) error
}

// RunService manages the run ledger. The ledger is an audit trail; runs are
// never resumed from it.
type RunService interface {
	ArchiveRecorder

	// CreateRun starts a new run and assigns its ID and start time.
	CreateRun(ctx context.Context, run *Run) error

	// FinishRun stamps the run's finish time and final counters.
	FinishRun(ctx context.Context, id string, courses, archived, errs int) error

	// FindRuns returns runs newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// FindArchivedFiles returns archived files in insertion order.
	FindArchivedFiles(ctx context.Context, filter ArchivedFileFilter) ([]*ArchivedFile, error)
}
