// Package archive turns crawled course datasets into one archive per course.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/fwojciec/coursegrab"
)

var _ coursegrab.Dispatcher = (*Builder)(nil)

// Builder fetches every file of every course dataset and stores them in
// per-course archives. A file that cannot be fetched or stored is counted as
// an error and skipped; it never aborts its course or the run.
type Builder struct {
	Fetcher  coursegrab.FileFetcher
	Archiver coursegrab.Archiver

	// Status, Events and Recorder are optional.
	Status   coursegrab.StatusNotifier
	Events   coursegrab.EventSink
	Recorder coursegrab.ArchiveRecorder

	// RunID tags ledger records.
	RunID string
}

// Summary reports the outcome of a build.
type Summary struct {
	Archived int
	Errors   int
	Bytes    int64
	Archives []string
}

// String returns the final status line.
func (s *Summary) String() string {
	msg := fmt.Sprintf("Complete! Zipped %d files.", s.Archived)
	if s.Errors > 0 {
		msg += fmt.Sprintf(" %d errors.", s.Errors)
	}
	return msg
}

// Dispatch builds archives for datasets, discarding the summary.
func (b *Builder) Dispatch(ctx context.Context, datasets []*coursegrab.CourseDataset) error {
	_, err := b.Build(ctx, datasets)
	return err
}

// Build archives every course that has at least one file. Courses whose
// files all fail produce no archive. The returned error is only set when ctx
// ends; the summary is valid either way.
func (b *Builder) Build(ctx context.Context, datasets []*coursegrab.CourseDataset) (*Summary, error) {
	summary := &Summary{}

	if !coursegrab.HasFiles(datasets) {
		b.notify(ctx, "No files found to zip.")
		return summary, nil
	}

	for _, ds := range datasets {
		if len(ds.Files) == 0 {
			continue
		}
		if err := b.buildCourse(ctx, ds, summary); err != nil {
			b.notify(ctx, summary.String())
			return summary, err
		}
	}

	b.notify(ctx, summary.String())
	return summary, nil
}

func (b *Builder) buildCourse(ctx context.Context, ds *coursegrab.CourseDataset, summary *Summary) error {
	course := ds.Course
	name := coursegrab.ArchiveName(course)

	b.notify(ctx, fmt.Sprintf("Zipping %d file(s) for %s...", len(ds.Files), course.Name))
	arch, err := b.Archiver.NewArchive(ctx, name, coursegrab.ArchiveFolder(course))
	if err != nil {
		summary.Errors++
		b.fail(ctx, course, "", coursegrab.EARCHIVE, fmt.Errorf("create archive %s: %w", name, err))
		return nil
	}

	var (
		names   = newNameSet()
		hashes  = make(map[uint64]string)
		records []*coursegrab.ArchivedFile
		size    int64
	)

	for i, f := range ds.Files {
		if err := ctx.Err(); err != nil {
			_ = arch.Discard()
			return err
		}

		b.notify(ctx, fmt.Sprintf("Fetching file %d/%d for %s: %s", i+1, len(ds.Files), course.Name, f.Filename))
		res := coursegrab.DecodeFetchResponse(b.Fetcher.FetchFile(ctx, coursegrab.NewFetchRequest(f.CanonicalURL)))

		switch res.Outcome {
		case coursegrab.FetchSkipped:
			summary.Errors++
			b.fail(ctx, course, f.CanonicalURL, coursegrab.ETOOLARGE, coursegrab.Errorf(coursegrab.ETOOLARGE, "%s: %s", f.Filename, res.Reason))
			continue
		case coursegrab.FetchFailed:
			summary.Errors++
			b.fail(ctx, course, f.CanonicalURL, coursegrab.EFETCHFAILED, coursegrab.Errorf(coursegrab.EFETCHFAILED, "%s: %s", f.Filename, res.Reason))
			continue
		}

		entry := names.unique(entryName(res.HeaderFilename, f))
		if err := arch.Add(entry, res.Data); err != nil {
			summary.Errors++
			b.fail(ctx, course, f.CanonicalURL, coursegrab.EARCHIVE, fmt.Errorf("add %s: %w", entry, err))
			continue
		}

		sum := xxhash.Sum64(res.Data)
		if prev, ok := hashes[sum]; ok {
			b.record(ctx, coursegrab.Event{
				Kind:    coursegrab.EventDuplicateBytes,
				Course:  course.Name,
				URL:     f.CanonicalURL,
				Message: fmt.Sprintf("%s has the same content as %s", entry, prev),
			})
		} else {
			hashes[sum] = entry
		}

		size += int64(len(res.Data))
		records = append(records, &coursegrab.ArchivedFile{
			RunID:       b.RunID,
			CourseID:    course.ID,
			CourseName:  course.Name,
			Filename:    entry,
			SourceURL:   f.CanonicalURL,
			Size:        int64(len(res.Data)),
			ContentHash: fmt.Sprintf("%016x", sum),
		})
		b.record(ctx, coursegrab.Event{
			Kind:    coursegrab.EventFileArchived,
			Course:  course.Name,
			URL:     f.CanonicalURL,
			Message: fmt.Sprintf("%s (%s)", entry, humanize.Bytes(uint64(len(res.Data)))),
		})
	}

	if len(records) == 0 {
		if err := arch.Discard(); err != nil {
			b.record(ctx, coursegrab.Event{Level: coursegrab.LevelWarn, Kind: coursegrab.EventArchiveDone, Course: course.Name, Err: err})
		}
		b.notify(ctx, fmt.Sprintf("No files could be zipped for %s.", course.Name))
		return nil
	}

	location, err := arch.Finalize()
	if err != nil {
		summary.Errors++
		b.fail(ctx, course, "", coursegrab.EARCHIVE, fmt.Errorf("finalize %s: %w", name, err))
		return nil
	}

	summary.Archived += len(records)
	summary.Bytes += size
	summary.Archives = append(summary.Archives, location)
	b.saveRecords(ctx, records, location)

	b.record(ctx, coursegrab.Event{
		Kind:    coursegrab.EventArchiveDone,
		Course:  course.Name,
		URL:     location,
		Message: fmt.Sprintf("%d file(s), %s", len(records), humanize.Bytes(uint64(size))),
	})
	b.notify(ctx, fmt.Sprintf("Saved %s (%d file(s), %s)", name, len(records), humanize.Bytes(uint64(size))))
	return nil
}

func (b *Builder) saveRecords(ctx context.Context, records []*coursegrab.ArchivedFile, location string) {
	if b.Recorder == nil {
		return
	}
	now := time.Now().UTC()
	for _, r := range records {
		r.ArchivePath = location
		r.CreatedAt = now
		if err := b.Recorder.RecordFile(ctx, r); err != nil {
			b.record(ctx, coursegrab.Event{
				Level:   coursegrab.LevelWarn,
				Kind:    coursegrab.EventFileArchived,
				Course:  r.CourseName,
				URL:     r.SourceURL,
				Message: "ledger write failed",
				Err:     err,
			})
		}
	}
}

// entryName picks the stored name of a fetched file: the server's header
// filename, then the name resolved during the crawl, then the last URL path
// segment.
func entryName(header string, f coursegrab.ResolvedFile) string {
	name := strings.TrimSpace(header)
	if name == "" {
		name = f.Filename
	}
	if name == "" {
		u := f.CanonicalURL
		if i := strings.IndexAny(u, "?#"); i != -1 {
			u = u[:i]
		}
		name = path.Base(u)
	}
	return coursegrab.SanitizeFilename(name)
}

func (b *Builder) fail(ctx context.Context, course coursegrab.Course, url, code string, err error) {
	b.record(ctx, coursegrab.Event{
		Level:   coursegrab.LevelError,
		Kind:    coursegrab.EventFileFailed,
		Course:  course.Name,
		URL:     url,
		Message: code,
		Err:     err,
	})
}

func (b *Builder) notify(ctx context.Context, status string) {
	if b.Status != nil {
		b.Status.Notify(ctx, status)
	}
}

func (b *Builder) record(ctx context.Context, e coursegrab.Event) {
	if b.Events == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.Events.Record(ctx, e)
}

// nameSet hands out archive entry names, appending " (2)", " (3)", ... to
// repeats so no entry shadows another.
type nameSet struct {
	used map[string]bool
}

func newNameSet() *nameSet {
	return &nameSet{used: make(map[string]bool)}
}

func (s *nameSet) unique(name string) string {
	key := strings.ToLower(name)
	if !s.used[key] {
		s.used[key] = true
		return name
	}

	stem, ext := name, ""
	if e := coursegrab.Extension(name); e != "" {
		stem = strings.TrimSuffix(name, "."+e)
		ext = "." + e
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !s.used[strings.ToLower(candidate)] {
			s.used[strings.ToLower(candidate)] = true
			return candidate
		}
	}
}
