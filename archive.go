package coursegrab

import (
	"context"
	"io"
)

// Archiver creates per-course archive containers.
type Archiver interface {
	// NewArchive opens an archive delivered under name whose entries all
	// live inside folder.
	NewArchive(ctx context.Context, name, folder string) (Archive, error)
}

// Archive is one course's archive container under construction.
type Archive interface {
	// Add stores data under name inside the archive folder.
	Add(name string, data []byte) error

	// Finalize closes the container and delivers it, returning its location.
	Finalize() (string, error)

	// Discard abandons the container without delivering anything.
	Discard() error
}

// ArchiveStore delivers finished archives to the user.
type ArchiveStore interface {
	// Create opens a pending file that becomes visible under name only
	// after Commit.
	Create(name string) (PendingFile, error)
}

// PendingFile is an archive being written. Exactly one of Commit or Abort
// must be called.
type PendingFile interface {
	io.Writer
	Commit() (string, error)
	Abort() error
}

// ArchiveName returns the delivered file name for a course archive,
// "Canvas_<name>.zip", falling back to the course id when the name
// sanitizes to nothing.
func ArchiveName(course Course) string {
	return "Canvas_" + ArchiveFolder(course) + ".zip"
}

// ArchiveFolder returns the top-level folder name used inside a course
// archive.
func ArchiveFolder(course Course) string {
	name := SanitizeName(course.Name)
	name = cleanBase(name)
	if name == "" {
		return "Course_" + course.ID
	}
	return name
}
