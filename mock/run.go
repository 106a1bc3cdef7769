package mock

import (
	"context"

	"github.com/fwojciec/coursegrab"
)

var (
	_ coursegrab.RunService      = (*RunService)(nil)
	_ coursegrab.ArchiveRecorder = (*ArchiveRecorder)(nil)
)

// RunService is a mock implementation of coursegrab.RunService.
type RunService struct {
	CreateRunFn         func(ctx context.Context, run *coursegrab.Run) error
	FinishRunFn         func(ctx context.Context, id string, courses, archived, errs int) error
	RecordFileFn        func(ctx context.Context, file *coursegrab.ArchivedFile) error
	FindRunsFn          func(ctx context.Context, filter coursegrab.RunFilter) ([]*coursegrab.Run, error)
	FindArchivedFilesFn func(ctx context.Context, filter coursegrab.ArchivedFileFilter) ([]*coursegrab.ArchivedFile, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *coursegrab.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FinishRun(ctx context.Context, id string, courses, archived, errs int) error {
	return s.FinishRunFn(ctx, id, courses, archived, errs)
}

func (s *RunService) RecordFile(ctx context.Context, file *coursegrab.ArchivedFile) error {
	return s.RecordFileFn(ctx, file)
}

func (s *RunService) FindRuns(ctx context.Context, filter coursegrab.RunFilter) ([]*coursegrab.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) FindArchivedFiles(ctx context.Context, filter coursegrab.ArchivedFileFilter) ([]*coursegrab.ArchivedFile, error) {
	return s.FindArchivedFilesFn(ctx, filter)
}

// ArchiveRecorder is a mock implementation of coursegrab.ArchiveRecorder.
type ArchiveRecorder struct {
	RecordFileFn func(ctx context.Context, file *coursegrab.ArchivedFile) error
}

func (r *ArchiveRecorder) RecordFile(ctx context.Context, file *coursegrab.ArchivedFile) error {
	return r.RecordFileFn(ctx, file)
}
