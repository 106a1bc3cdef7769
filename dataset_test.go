package coursegrab_test

import (
	"testing"

	"github.com/fwojciec/coursegrab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvedFile_Validate(t *testing.T) {
	t.Parallel()

	valid := coursegrab.ResolvedFile{CanonicalURL: "https://lms.example.edu/files/1/download", Filename: "a.pdf"}
	assert.NoError(t, valid.Validate())

	for _, f := range []coursegrab.ResolvedFile{
		{Filename: "a.pdf"},
		{CanonicalURL: "https://x/1"},
		{CanonicalURL: "https://x/1", Filename: "a/b.pdf"},
		{CanonicalURL: "https://x/1", Filename: "noext"},
	} {
		assert.Equal(t, coursegrab.EINVALID, coursegrab.ErrorCode(f.Validate()), f.Filename)
	}
}

func TestZipMessage_RoundTripKeepsOrder(t *testing.T) {
	t.Parallel()

	datasets := []*coursegrab.CourseDataset{
		{
			Course: coursegrab.Course{ID: "102", Name: "Chemistry", Path: "courses/102"},
			Files: []coursegrab.ResolvedFile{
				{CanonicalURL: "https://x/files/2/download", Filename: "b.pdf"},
				{CanonicalURL: "https://x/files/1/download", Filename: "a.pdf", ContentType: "application/pdf"},
			},
		},
		{
			Course: coursegrab.Course{ID: "99", Name: "Art", Path: "courses/99"},
		},
	}

	msg := coursegrab.ToZipMessage(datasets)
	assert.Equal(t, coursegrab.ActionZipAndDownload, msg.Action)
	assert.Equal(t, "Chemistry", msg.AllDownloads["102"].CourseName)

	got, err := msg.Datasets()
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "99", got[0].Course.ID)
	assert.Equal(t, "102", got[1].Course.ID)
	assert.Equal(t, datasets[0].Files, got[1].Files)
	assert.Empty(t, got[0].Files)
}

func TestZipMessage_SanitizesFilenames(t *testing.T) {
	t.Parallel()

	msg := coursegrab.ZipAndDownloadMessage{
		AllDownloads: map[string]coursegrab.CourseDownloads{
			"5": {CourseName: "Math", Files: []coursegrab.DownloadFile{{Href: "https://x/1", Filename: "a/b.pdf"}}},
		},
	}

	got, err := msg.Datasets()
	require.NoError(t, err)

	assert.Equal(t, "a_b.pdf", got[0].Files[0].Filename)
}

func TestZipMessage_RejectsMissingHref(t *testing.T) {
	t.Parallel()

	msg := coursegrab.ZipAndDownloadMessage{
		AllDownloads: map[string]coursegrab.CourseDownloads{
			"5": {CourseName: "Math", Files: []coursegrab.DownloadFile{{Filename: "a.pdf"}}},
		},
	}

	_, err := msg.Datasets()

	assert.Equal(t, coursegrab.EINVALID, coursegrab.ErrorCode(err))
}

func TestHasFiles(t *testing.T) {
	t.Parallel()

	assert.False(t, coursegrab.HasFiles(nil))
	assert.False(t, coursegrab.HasFiles([]*coursegrab.CourseDataset{{}}))
	assert.True(t, coursegrab.HasFiles([]*coursegrab.CourseDataset{{}, {Files: []coursegrab.ResolvedFile{{}}}}))
}

func TestArchiveName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Canvas_Intro to CS_ Fall.zip",
		coursegrab.ArchiveName(coursegrab.Course{ID: "1", Name: "Intro to CS: Fall"}))
	assert.Equal(t, "Canvas_Course_7.zip",
		coursegrab.ArchiveName(coursegrab.Course{ID: "7", Name: " ... "}))
	assert.Equal(t, "Intro", coursegrab.ArchiveFolder(coursegrab.Course{ID: "1", Name: "Intro"}))
}
