// Package zip writes course archives in the zip format.
package zip

import (
	"context"
	"errors"
	"path"
	"sync"
	"time"

	"github.com/fwojciec/coursegrab"
	"github.com/klauspost/compress/zip"
)

// Ensure types implement interfaces at compile time.
var (
	_ coursegrab.Archiver = (*Archiver)(nil)
	_ coursegrab.Archive  = (*Archive)(nil)
)

// ErrClosed is returned when an archive is used after Finalize or Discard.
var ErrClosed = errors.New("archive closed")

// Archiver creates zip archives delivered through an ArchiveStore.
type Archiver struct {
	Store coursegrab.ArchiveStore

	// Now stamps entry modification times. Defaults to time.Now.
	Now func() time.Time
}

// NewArchiver creates a new Archiver over store.
func NewArchiver(store coursegrab.ArchiveStore) *Archiver {
	return &Archiver{Store: store, Now: time.Now}
}

// NewArchive opens a pending archive called name. Every entry is placed
// under folder.
func (a *Archiver) NewArchive(ctx context.Context, name, folder string) (coursegrab.Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, coursegrab.Errorf(coursegrab.EINVALID, "archive name required")
	}

	pending, err := a.Store.Create(name)
	if err != nil {
		return nil, coursegrab.Errorf(coursegrab.EARCHIVE, "create archive %s: %v", name, err)
	}

	now := a.Now
	if now == nil {
		now = time.Now
	}
	return &Archive{
		pending: pending,
		zw:      zip.NewWriter(pending),
		folder:  folder,
		now:     now,
	}, nil
}

// Archive is a zip file under construction.
type Archive struct {
	pending coursegrab.PendingFile
	zw      *zip.Writer
	folder  string
	now     func() time.Time

	mu     sync.Mutex
	closed bool
}

// Add stores data as folder/name using Deflate.
func (a *Archive) Add(name string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}

	header := &zip.FileHeader{
		Name:     a.entryName(name),
		Method:   zip.Deflate,
		Modified: a.now(),
	}
	w, err := a.zw.CreateHeader(header)
	if err != nil {
		return coursegrab.Errorf(coursegrab.EARCHIVE, "add %s: %v", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return coursegrab.Errorf(coursegrab.EARCHIVE, "write %s: %v", name, err)
	}
	return nil
}

func (a *Archive) entryName(name string) string {
	if a.folder == "" {
		return name
	}
	return path.Join(a.folder, name)
}

// Finalize writes the central directory and commits the file, returning
// its delivered path.
func (a *Archive) Finalize() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return "", ErrClosed
	}
	a.closed = true

	if err := a.zw.Close(); err != nil {
		_ = a.pending.Abort()
		return "", coursegrab.Errorf(coursegrab.EARCHIVE, "close archive: %v", err)
	}
	location, err := a.pending.Commit()
	if err != nil {
		return "", coursegrab.Errorf(coursegrab.EARCHIVE, "deliver archive: %v", err)
	}
	return location, nil
}

// Discard abandons the archive. It is a no-op after Finalize.
func (a *Archive) Discard() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.pending.Abort()
}
