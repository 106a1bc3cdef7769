package coursegrab_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/coursegrab"
	"github.com/stretchr/testify/assert"
)

func TestResolveFilename_BasePriority(t *testing.T) {
	t.Parallel()

	const url = "https://lms.example.edu/courses/1/files/42/download?download_frd=1"

	tests := []struct {
		name       string
		sig        coursegrab.FilenameSignals
		want       string
		wantSource coursegrab.FilenameSource
	}{
		{
			name:       "download attribute wins",
			sig:        coursegrab.FilenameSignals{CanonicalURL: url, DownloadAttr: "notes.pdf", Title: "Other", LinkText: "Text"},
			want:       "notes.pdf",
			wantSource: coursegrab.SourceDownloadAttr,
		},
		{
			name:       "trivial download attribute ignored",
			sig:        coursegrab.FilenameSignals{CanonicalURL: url, DownloadAttr: "true", Title: "Syllabus.docx"},
			want:       "Syllabus.docx",
			wantSource: coursegrab.SourceTitle,
		},
		{
			name:       "title mentioning module ignored",
			sig:        coursegrab.FilenameSignals{CanonicalURL: url, Title: "Module 3", NameLabel: "reading.pdf"},
			want:       "reading.pdf",
			wantSource: coursegrab.SourceNameLabel,
		},
		{
			name:       "link text",
			sig:        coursegrab.FilenameSignals{CanonicalURL: url, LinkText: "Week 1 Slides", ContentType: "application/pdf"},
			want:       "Week 1 Slides.pdf",
			wantSource: coursegrab.SourceLinkText,
		},
		{
			name:       "link text starting with download ignored",
			sig:        coursegrab.FilenameSignals{CanonicalURL: url, LinkText: "Download file", FileID: "42"},
			want:       "42.unknown",
			wantSource: coursegrab.SourceFileID,
		},
		{
			name:       "numeric link text ignored",
			sig:        coursegrab.FilenameSignals{CanonicalURL: url, LinkText: "123", FileID: "42", ContentType: "image/png"},
			want:       "42.png",
			wantSource: coursegrab.SourceFileID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, source := coursegrab.ResolveFilename(tt.sig)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestResolveFilename_PreviewLinkWithoutSignals(t *testing.T) {
	t.Parallel()

	got, source := coursegrab.ResolveFilename(coursegrab.FilenameSignals{
		CanonicalURL: "https://lms.example.edu/courses/1/files/555/download?download_frd=1",
		FileID:       "555",
	})

	assert.Equal(t, "555.unknown", got)
	assert.Equal(t, coursegrab.SourceFileID, source)
}

func TestResolveFilename_TimestampFallback(t *testing.T) {
	t.Parallel()

	got, source := coursegrab.ResolveFilename(coursegrab.FilenameSignals{
		CanonicalURL: "https://lms.example.edu/download",
	})

	assert.True(t, strings.HasPrefix(got, "file_"), got)
	assert.True(t, strings.HasSuffix(got, ".unknown"), got)
	assert.Equal(t, coursegrab.SourceTimestamp, source)
}

func TestResolveFilename_ExtensionOrder(t *testing.T) {
	t.Parallel()

	// Content type is consulted before the URL, and the URL before ".unknown".
	got, _ := coursegrab.ResolveFilename(coursegrab.FilenameSignals{
		CanonicalURL: "https://lms.example.edu/files/report.csv",
		LinkText:     "Report",
		ContentType:  "application/pdf",
	})
	assert.Equal(t, "Report.pdf", got)

	got, _ = coursegrab.ResolveFilename(coursegrab.FilenameSignals{
		CanonicalURL: "https://lms.example.edu/files/report.csv?x=1#top",
		LinkText:     "Report",
	})
	assert.Equal(t, "Report.csv", got)

	got, _ = coursegrab.ResolveFilename(coursegrab.FilenameSignals{
		CanonicalURL: "https://lms.example.edu/files/report",
		LinkText:     "Report",
	})
	assert.Equal(t, "Report.unknown", got)
}

func TestResolveFilename_KeepsExistingExtension(t *testing.T) {
	t.Parallel()

	got, _ := coursegrab.ResolveFilename(coursegrab.FilenameSignals{
		CanonicalURL: "https://lms.example.edu/files/1",
		LinkText:     "lab.ipynb",
		ContentType:  "application/pdf",
	})

	assert.Equal(t, "lab.ipynb", got)
}

func TestExtensionForContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        string
	}{
		{"application/pdf", "pdf"},
		{"application/msword", "docx"},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "docx"},
		{"application/vnd.ms-powerpoint", "pptx"},
		{"application/vnd.openxmlformats-officedocument.presentationml.presentation", "pptx"},
		{"application/vnd.ms-excel", "xlsx"},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"},
		{"application/zip", "zip"},
		{"image/jpeg", "jpg"},
		{"image/png", "png"},
		{"image/gif", "jpg"},
		{"video/mp4", "mp4"},
		{"text/plain; charset=utf-8", "txt"},
		{"application/octet-stream", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, coursegrab.ExtensionForContentType(tt.contentType), tt.contentType)
	}
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{`a/b\c.pdf`, "a_b_c.pdf"},
		{`what: "is" <this>?|*.txt`, "what_ _is_ _this____.txt"},
		{"  ..hidden.pdf..  ", "hidden.pdf"},
		{"Week\t1\n\nnotes.pdf", "Week 1 notes.pdf"},
		{"plain.docx", "plain.docx"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, coursegrab.SanitizeFilename(tt.in), tt.in)
	}
}

func TestSanitizeFilename_EmptyFallsBack(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", ".", " . ", "..."} {
		got := coursegrab.SanitizeFilename(in)
		assert.True(t, strings.HasPrefix(got, "file_"), got)
		assert.True(t, strings.HasSuffix(got, ".unknown"), got)
	}
}

func TestSanitizeFilename_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`a/b\c.pdf`,
		" . lead and trail . ",
		"tabs\tand\nnewlines.txt",
		`x:y*z?.md`,
		"Lecture 1 - Intro.pptx",
		"..",
	}

	for _, in := range inputs {
		once := coursegrab.SanitizeFilename(in)
		assert.Equal(t, once, coursegrab.SanitizeFilename(once), in)
	}
}

func TestResolveFilename_ResultIsStable(t *testing.T) {
	t.Parallel()

	got, _ := coursegrab.ResolveFilename(coursegrab.FilenameSignals{
		CanonicalURL: "https://lms.example.edu/files/9",
		Title:        ` Lab/Report: "final" `,
		ContentType:  "application/pdf",
	})

	assert.Equal(t, "Lab_Report_ _final_.pdf", got)
	assert.Equal(t, got, coursegrab.SanitizeFilename(got))
}

func TestApplyFilenameHint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Essay Prompt.pdf", coursegrab.ApplyFilenameHint("Essay Prompt", "12345.pdf"))
	assert.Equal(t, "notes.docx", coursegrab.ApplyFilenameHint("notes.docx", "12345.pdf"))
	assert.Equal(t, "Quiz 1.unknown", coursegrab.ApplyFilenameHint(" Quiz 1 ", "12345"))
	assert.Equal(t, "12345.pdf", coursegrab.ApplyFilenameHint("  ", "12345.pdf"))
	assert.Equal(t, "A_B.pdf", coursegrab.ApplyFilenameHint("A/B", "x.pdf"))
}

func TestHasExtension(t *testing.T) {
	t.Parallel()

	assert.True(t, coursegrab.HasExtension("a.pdf"))
	assert.True(t, coursegrab.HasExtension("a.ipynb"))
	assert.False(t, coursegrab.HasExtension("a"))
	assert.False(t, coursegrab.HasExtension("v1.2 notes"))
	assert.False(t, coursegrab.HasExtension("archive.toolong"))
	assert.True(t, coursegrab.HasExtension("555.unknown"))
}

func TestResolveFilename_Idempotent(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"555.unknown", "Week 1 Slides.pdf", "Lab_Report_ _final_.pdf"} {
		got, _ := coursegrab.ResolveFilename(coursegrab.FilenameSignals{
			CanonicalURL: "https://lms.example.edu/files/1/download",
			LinkText:     name,
			ContentType:  "application/zip",
		})
		assert.Equal(t, name, got)
	}
}
