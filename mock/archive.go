package mock

import (
	"context"

	"github.com/fwojciec/coursegrab"
)

var (
	_ coursegrab.Archiver     = (*Archiver)(nil)
	_ coursegrab.Archive      = (*Archive)(nil)
	_ coursegrab.ArchiveStore = (*ArchiveStore)(nil)
	_ coursegrab.PendingFile  = (*PendingFile)(nil)
)

// Archiver is a mock implementation of coursegrab.Archiver.
type Archiver struct {
	NewArchiveFn func(ctx context.Context, name, folder string) (coursegrab.Archive, error)
}

func (a *Archiver) NewArchive(ctx context.Context, name, folder string) (coursegrab.Archive, error) {
	return a.NewArchiveFn(ctx, name, folder)
}

// Archive is a mock implementation of coursegrab.Archive.
type Archive struct {
	AddFn      func(name string, data []byte) error
	FinalizeFn func() (string, error)
	DiscardFn  func() error
}

func (a *Archive) Add(name string, data []byte) error {
	return a.AddFn(name, data)
}

func (a *Archive) Finalize() (string, error) {
	return a.FinalizeFn()
}

func (a *Archive) Discard() error {
	return a.DiscardFn()
}

// ArchiveStore is a mock implementation of coursegrab.ArchiveStore.
type ArchiveStore struct {
	CreateFn func(name string) (coursegrab.PendingFile, error)
}

func (s *ArchiveStore) Create(name string) (coursegrab.PendingFile, error) {
	return s.CreateFn(name)
}

// PendingFile is a mock implementation of coursegrab.PendingFile.
type PendingFile struct {
	WriteFn  func(p []byte) (int, error)
	CommitFn func() (string, error)
	AbortFn  func() error
}

func (f *PendingFile) Write(p []byte) (int, error) {
	return f.WriteFn(p)
}

func (f *PendingFile) Commit() (string, error) {
	return f.CommitFn()
}

func (f *PendingFile) Abort() error {
	return f.AbortFn()
}
