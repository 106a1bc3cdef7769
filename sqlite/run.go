package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/coursegrab"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ coursegrab.RunService = (*RunService)(nil)

// RunService implements coursegrab.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun inserts run with a fresh ID and start time.
func (s *RunService) CreateRun(ctx context.Context, run *coursegrab.Run) error {
	run.ID = uuid.New().String()
	run.StartedAt = time.Now().UTC()
	run.FinishedAt = nil

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, base_url, started_at, courses, archived, errors)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.BaseURL, run.StartedAt.Format(time.RFC3339), run.Courses, run.Archived, run.Errors)

	return err
}

// FinishRun records the final counters of a run.
func (s *RunService) FinishRun(ctx context.Context, id string, courses, archived, errs int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, courses = ?, archived = ?, errors = ?
		WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), courses, archived, errs, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return coursegrab.Errorf(coursegrab.ENOTFOUND, "run not found")
	}
	return nil
}

// FindRuns returns runs matching filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter coursegrab.RunFilter) ([]*coursegrab.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, base_url, started_at, finished_at, courses, archived, errors FROM runs WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*coursegrab.Run
	for rows.Next() {
		var run coursegrab.Run
		var startedAt string
		var finishedAt sql.NullString

		if err := rows.Scan(&run.ID, &run.BaseURL, &startedAt, &finishedAt,
			&run.Courses, &run.Archived, &run.Errors); err != nil {
			return nil, err
		}

		run.StartedAt, err = parseRFC3339(startedAt, "started_at")
		if err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			t, err := parseRFC3339(finishedAt.String, "finished_at")
			if err != nil {
				return nil, err
			}
			run.FinishedAt = &t
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// RecordFile stores one archived file. A missing ID or creation time is
// filled in.
func (s *RunService) RecordFile(ctx context.Context, file *coursegrab.ArchivedFile) error {
	if err := file.Validate(); err != nil {
		return err
	}

	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO archived_files (id, run_id, course_id, course_name, filename, source_url,
			archive_path, size, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, file.ID, file.RunID, file.CourseID, file.CourseName, file.Filename, file.SourceURL,
		file.ArchivePath, file.Size, file.ContentHash, file.CreatedAt.UTC().Format(time.RFC3339))

	return err
}

// FindArchivedFiles returns archived files matching filter in the order
// they were recorded.
func (s *RunService) FindArchivedFiles(ctx context.Context, filter coursegrab.ArchivedFileFilter) ([]*coursegrab.ArchivedFile, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, run_id, course_id, course_name, filename, source_url,
		archive_path, size, content_hash, created_at FROM archived_files WHERE 1=1`)

	if filter.RunID != nil {
		query.WriteString(" AND run_id = ?")
		args = append(args, *filter.RunID)
	}
	if filter.CourseID != nil {
		query.WriteString(" AND course_id = ?")
		args = append(args, *filter.CourseID)
	}

	query.WriteString(" ORDER BY rowid")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*coursegrab.ArchivedFile
	for rows.Next() {
		var f coursegrab.ArchivedFile
		var createdAt string

		if err := rows.Scan(&f.ID, &f.RunID, &f.CourseID, &f.CourseName, &f.Filename, &f.SourceURL,
			&f.ArchivePath, &f.Size, &f.ContentHash, &createdAt); err != nil {
			return nil, err
		}

		f.CreatedAt, err = parseRFC3339(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		files = append(files, &f)
	}

	return files, rows.Err()
}
