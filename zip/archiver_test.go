package zip_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fwojciec/coursegrab"
	"github.com/fwojciec/coursegrab/mock"
	cgzip "github.com/fwojciec/coursegrab/zip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferStore struct {
	buf       bytes.Buffer
	name      string
	committed bool
	aborted   bool
}

func (s *bufferStore) store() *mock.ArchiveStore {
	return &mock.ArchiveStore{
		CreateFn: func(name string) (coursegrab.PendingFile, error) {
			s.name = name
			return &mock.PendingFile{
				WriteFn: s.buf.Write,
				CommitFn: func() (string, error) {
					s.committed = true
					return "/out/" + s.name, nil
				},
				AbortFn: func() error {
					s.aborted = true
					return nil
				},
			}, nil
		},
	}
}

func readEntries(t *testing.T, data []byte) map[string]string {
	t.Helper()

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(b)
	}
	return entries
}

func TestArchiver_NewArchive(t *testing.T) {
	t.Parallel()

	t.Run("writes entries under the course folder and commits", func(t *testing.T) {
		t.Parallel()

		s := &bufferStore{}
		archiver := cgzip.NewArchiver(s.store())

		archive, err := archiver.NewArchive(context.Background(), "Canvas_Physics.zip", "Physics")
		require.NoError(t, err)

		require.NoError(t, archive.Add("notes.pdf", []byte("pdf bytes")))
		require.NoError(t, archive.Add("lab.docx", []byte("docx bytes")))

		location, err := archive.Finalize()
		require.NoError(t, err)

		assert.Equal(t, "/out/Canvas_Physics.zip", location)
		assert.True(t, s.committed)
		assert.False(t, s.aborted)
		assert.Equal(t, map[string]string{
			"Physics/notes.pdf": "pdf bytes",
			"Physics/lab.docx":  "docx bytes",
		}, readEntries(t, s.buf.Bytes()))
	})

	t.Run("stamps entries with the configured clock", func(t *testing.T) {
		t.Parallel()

		s := &bufferStore{}
		stamp := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
		archiver := &cgzip.Archiver{Store: s.store(), Now: func() time.Time { return stamp }}

		archive, err := archiver.NewArchive(context.Background(), "a.zip", "A")
		require.NoError(t, err)
		require.NoError(t, archive.Add("x.txt", []byte("x")))
		_, err = archive.Finalize()
		require.NoError(t, err)

		r, err := zip.NewReader(bytes.NewReader(s.buf.Bytes()), int64(s.buf.Len()))
		require.NoError(t, err)
		require.Len(t, r.File, 1)
		assert.True(t, stamp.Equal(r.File[0].Modified.UTC()), r.File[0].Modified)
	})

	t.Run("discard aborts the pending file", func(t *testing.T) {
		t.Parallel()

		s := &bufferStore{}
		archive, err := cgzip.NewArchiver(s.store()).NewArchive(context.Background(), "a.zip", "A")
		require.NoError(t, err)

		require.NoError(t, archive.Discard())

		assert.True(t, s.aborted)
		assert.False(t, s.committed)
	})

	t.Run("rejects use after finalize", func(t *testing.T) {
		t.Parallel()

		s := &bufferStore{}
		archive, err := cgzip.NewArchiver(s.store()).NewArchive(context.Background(), "a.zip", "A")
		require.NoError(t, err)
		_, err = archive.Finalize()
		require.NoError(t, err)

		assert.ErrorIs(t, archive.Add("late.txt", nil), cgzip.ErrClosed)
		_, err = archive.Finalize()
		assert.ErrorIs(t, err, cgzip.ErrClosed)
		assert.NoError(t, archive.Discard())
		assert.False(t, s.aborted)
	})

	t.Run("wraps store failures as archive errors", func(t *testing.T) {
		t.Parallel()

		store := &mock.ArchiveStore{
			CreateFn: func(string) (coursegrab.PendingFile, error) {
				return nil, errors.New("disk full")
			},
		}

		_, err := cgzip.NewArchiver(store).NewArchive(context.Background(), "a.zip", "A")

		require.Error(t, err)
		assert.Equal(t, coursegrab.EARCHIVE, coursegrab.ErrorCode(err))
	})

	t.Run("reports commit failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		store := &mock.ArchiveStore{
			CreateFn: func(string) (coursegrab.PendingFile, error) {
				return &mock.PendingFile{
					WriteFn:  buf.Write,
					CommitFn: func() (string, error) { return "", errors.New("rename failed") },
					AbortFn:  func() error { return nil },
				}, nil
			},
		}

		archive, err := cgzip.NewArchiver(store).NewArchive(context.Background(), "a.zip", "A")
		require.NoError(t, err)

		_, err = archive.Finalize()

		require.Error(t, err)
		assert.Equal(t, coursegrab.EARCHIVE, coursegrab.ErrorCode(err))
	})

	t.Run("requires a name", func(t *testing.T) {
		t.Parallel()

		_, err := cgzip.NewArchiver(&mock.ArchiveStore{}).NewArchive(context.Background(), "", "A")

		assert.Equal(t, coursegrab.EINVALID, coursegrab.ErrorCode(err))
	})

	t.Run("honors a cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := cgzip.NewArchiver(&mock.ArchiveStore{}).NewArchive(ctx, "a.zip", "A")

		assert.ErrorIs(t, err, context.Canceled)
	})
}
