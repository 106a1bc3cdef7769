package coursegrab

import (
	"cmp"
	"context"
	"slices"
	"strings"
)

// ResolvedFile is a finalized file reference ready to be fetched.
type ResolvedFile struct {
	CanonicalURL string `json:"canonicalUrl"`
	Filename     string `json:"filename"`
	ContentType  string `json:"contentType,omitempty"`
}

// Validate returns an error if the file contains invalid fields.
func (f *ResolvedFile) Validate() error {
	if f.CanonicalURL == "" {
		return Errorf(EINVALID, "file URL required")
	}
	if f.Filename == "" {
		return Errorf(EINVALID, "filename required")
	}
	if strings.ContainsAny(f.Filename, `\/:*?"<>|`) {
		return Errorf(EINVALID, "filename contains reserved characters: %q", f.Filename)
	}
	if !HasExtension(f.Filename) {
		return Errorf(EINVALID, "filename has no extension: %q", f.Filename)
	}
	return nil
}

// CourseDataset is the ordered, URL-unique file list of one course.
type CourseDataset struct {
	Course Course         `json:"course"`
	Files  []ResolvedFile `json:"files"`
}

// Dispatcher receives the consolidated dataset at the end of a crawl.
type Dispatcher interface {
	Dispatch(ctx context.Context, datasets []*CourseDataset) error
}

// ToZipMessage encodes datasets as a zipAndDownload message.
func ToZipMessage(datasets []*CourseDataset) ZipAndDownloadMessage {
	msg := ZipAndDownloadMessage{
		Action:       ActionZipAndDownload,
		AllDownloads: make(map[string]CourseDownloads, len(datasets)),
	}
	for _, ds := range datasets {
		files := make([]DownloadFile, 0, len(ds.Files))
		for _, f := range ds.Files {
			files = append(files, DownloadFile{Href: f.CanonicalURL, Filename: f.Filename, ContentType: f.ContentType})
		}
		msg.AllDownloads[ds.Course.ID] = CourseDownloads{CourseName: ds.Course.Name, Files: files}
	}
	return msg
}

// Datasets decodes a zipAndDownload message. Courses are returned in
// ascending numeric id order; files keep their message order.
func (m *ZipAndDownloadMessage) Datasets() ([]*CourseDataset, error) {
	if m.Action != "" && m.Action != ActionZipAndDownload {
		return nil, Errorf(EINVALID, "unexpected action %q", m.Action)
	}

	ids := make([]string, 0, len(m.AllDownloads))
	for id := range m.AllDownloads {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(len(a), len(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	datasets := make([]*CourseDataset, 0, len(ids))
	for _, id := range ids {
		entry := m.AllDownloads[id]
		course, err := NewCourse("courses/"+id, entry.CourseName)
		if err != nil {
			return nil, err
		}
		ds := &CourseDataset{Course: course}
		for _, f := range entry.Files {
			if f.Href == "" {
				return nil, Errorf(EINVALID, "course %s: file without href", id)
			}
			ds.Files = append(ds.Files, ResolvedFile{
				CanonicalURL: f.Href,
				Filename:     SanitizeFilename(f.Filename),
				ContentType:  f.ContentType,
			})
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// HasFiles reports whether any dataset holds at least one file.
func HasFiles(datasets []*CourseDataset) bool {
	for _, ds := range datasets {
		if len(ds.Files) > 0 {
			return true
		}
	}
	return false
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, datasets []*CourseDataset) error

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, datasets []*CourseDataset) error {
	return f(ctx, datasets)
}
