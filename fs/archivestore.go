// Package fs delivers finished archives to a directory.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/coursegrab"
	"github.com/spf13/afero"
)

// Ensure types implement interfaces at compile time.
var (
	_ coursegrab.ArchiveStore = (*ArchiveStore)(nil)
	_ coursegrab.PendingFile  = (*pendingFile)(nil)
)

// ArchiveStore writes archives to a hidden temp file in Dir and renames
// them into place on Commit, so a partial archive is never visible under
// its final name.
type ArchiveStore struct {
	fs  afero.Fs
	dir string

	// Overwrite replaces an existing archive with the same name instead of
	// choosing "name (2).zip".
	Overwrite bool

	mu sync.Mutex
}

// NewArchiveStore creates a store delivering into dir on the OS filesystem.
func NewArchiveStore(dir string) *ArchiveStore {
	return NewArchiveStoreWithFs(afero.NewOsFs(), dir)
}

// NewArchiveStoreWithFs creates a store over an arbitrary filesystem.
func NewArchiveStoreWithFs(fs afero.Fs, dir string) *ArchiveStore {
	return &ArchiveStore{fs: fs, dir: dir}
}

// Create opens a pending archive that becomes dir/name on Commit.
func (s *ArchiveStore) Create(name string) (coursegrab.PendingFile, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, coursegrab.Errorf(coursegrab.EINVALID, "invalid archive name: %q", name)
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	f, err := afero.TempFile(s.fs, s.dir, "."+name+"-*.part")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &pendingFile{store: s, file: f, name: name}, nil
}

// finalPath picks the destination for name, avoiding existing files
// unless Overwrite is set. Callers hold s.mu.
func (s *ArchiveStore) finalPath(name string) (string, error) {
	target := filepath.Join(s.dir, name)
	if s.Overwrite {
		return target, nil
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		exists, err := afero.Exists(s.fs, target)
		if err != nil {
			return "", err
		}
		if !exists {
			return target, nil
		}
		target = filepath.Join(s.dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
	}
}

type pendingFile struct {
	store *ArchiveStore
	file  afero.File
	name  string
	done  bool
}

func (p *pendingFile) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

// Commit closes the temp file and renames it into place.
func (p *pendingFile) Commit() (string, error) {
	if p.done {
		return "", os.ErrClosed
	}
	p.done = true

	tmp := p.file.Name()
	if err := p.file.Close(); err != nil {
		_ = p.store.fs.Remove(tmp)
		return "", err
	}

	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	target, err := p.store.finalPath(p.name)
	if err != nil {
		_ = p.store.fs.Remove(tmp)
		return "", err
	}
	if p.store.Overwrite {
		if err := p.store.fs.Remove(target); err != nil && !os.IsNotExist(err) {
			_ = p.store.fs.Remove(tmp)
			return "", err
		}
	}
	if err := p.store.fs.Rename(tmp, target); err != nil {
		_ = p.store.fs.Remove(tmp)
		return "", err
	}
	return target, nil
}

// Abort closes and removes the temp file.
func (p *pendingFile) Abort() error {
	if p.done {
		return nil
	}
	p.done = true

	tmp := p.file.Name()
	_ = p.file.Close()
	if err := p.store.fs.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
