// Package crawl drives a browser tab through a learning-management site,
// collecting the downloadable files of each course.
package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/coursegrab"
)

// DefaultPageTypes are the course pages visited, in order.
var DefaultPageTypes = []string{"modules", "files"}

// State is a step of a run.
type State int

// Run states.
const (
	StateIdle State = iota
	StateDiscoveringCourses
	StateNavigatingPage
	StateClassifying
	StateExpandingIntermediates
	StateAggregating
	StateDispatching
	StateDone
	StateFailed
)

// String returns a short name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscoveringCourses:
		return "discovering courses"
	case StateNavigatingPage:
		return "navigating"
	case StateClassifying:
		return "classifying"
	case StateExpandingIntermediates:
		return "expanding intermediates"
	case StateAggregating:
		return "aggregating"
	case StateDispatching:
		return "dispatching"
	case StateDone:
		return "done"
	default:
		return "failed"
	}
}

// AnomalyFilter remembers which anomalies have already been reported.
type AnomalyFilter interface {
	// Seen reports whether key was seen before and marks it as seen.
	Seen(key string) bool
}

// Crawler runs the course crawl. A Crawler drives a single tab and must not
// be used for concurrent runs.
type Crawler struct {
	Browser    coursegrab.Browser
	Visitor    Visitor
	Courses    coursegrab.CourseFinder
	Dispatcher coursegrab.Dispatcher

	// Status and Events are optional.
	Status coursegrab.StatusNotifier
	Events coursegrab.EventSink

	// Anomalies, if set, suppresses repeated reports of the same nested
	// intermediate link.
	Anomalies AnomalyFilter

	// BaseURL is the LMS origin, e.g. "https://school.instructure.com".
	BaseURL string

	// PageTypes overrides DefaultPageTypes.
	PageTypes []string

	// OnState, if set, is called on every state transition.
	OnState func(State)
}

// RunResult summarizes a crawl.
type RunResult struct {
	Courses      []coursegrab.Course
	Datasets     []*coursegrab.CourseDataset
	Files        int
	PagesVisited int
	PagesSkipped int
	Anomalies    int
	External     int
	Dispatched   bool
	Duration     time.Duration
}

// DiscoverCourses finds the courses on the page currently shown in the
// active tab. Returns ENOCOURSES if there are none.
func (c *Crawler) DiscoverCourses(ctx context.Context) ([]coursegrab.Course, error) {
	tab, err := c.Browser.ActiveTab(ctx)
	if err != nil {
		return nil, err
	}
	return c.discover(ctx, tab)
}

func (c *Crawler) discover(ctx context.Context, tab coursegrab.Tab) ([]coursegrab.Course, error) {
	c.setState(StateDiscoveringCourses)
	c.notify(ctx, "Finding courses...")

	addr, err := tab.URL(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tab address: %w", err)
	}
	html, err := tab.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tab content: %w", err)
	}
	courses, err := c.Courses.FindCourses(html, addr)
	if err != nil {
		return nil, fmt.Errorf("find courses: %w", err)
	}
	if len(courses) == 0 {
		return nil, coursegrab.Errorf(coursegrab.ENOCOURSES, "No courses found on this page.")
	}
	return courses, nil
}

// Run crawls courses and hands the resulting datasets to the Dispatcher.
// When courses is empty they are discovered from the active tab first. Only
// a missing tab, a failed discovery, a canceled context, or a failed
// dispatch end the run with an error; page-level problems are reported and
// skipped.
func (c *Crawler) Run(ctx context.Context, courses []coursegrab.Course) (*RunResult, error) {
	start := time.Now()
	c.setState(StateIdle)

	tab, err := c.Browser.ActiveTab(ctx)
	if err != nil {
		return nil, c.abort(ctx, err)
	}

	if len(courses) == 0 {
		courses, err = c.discover(ctx, tab)
		if err != nil {
			return nil, c.abort(ctx, err)
		}
	}
	c.notify(ctx, fmt.Sprintf("Found %d course(s). Starting scrape...", len(courses)))

	result := &RunResult{Courses: courses}
	for i, course := range courses {
		c.notify(ctx, fmt.Sprintf("Processing course %d/%d: %s", i+1, len(courses), course.Name))
		ds, err := c.crawlCourse(ctx, &tab, course, result)
		if err != nil {
			result.Duration = time.Since(start)
			return result, c.abort(ctx, err)
		}
		result.Datasets = append(result.Datasets, ds)
		result.Files += len(ds.Files)
	}

	c.setState(StateDispatching)
	result.Duration = time.Since(start)
	if !coursegrab.HasFiles(result.Datasets) {
		c.notify(ctx, "No files found")
		c.setState(StateDone)
		return result, nil
	}

	c.notify(ctx, fmt.Sprintf("Found %d file(s) across %d course(s). Preparing archives...", result.Files, len(courses)))
	if err := c.Dispatcher.Dispatch(ctx, result.Datasets); err != nil {
		return result, c.abort(ctx, fmt.Errorf("dispatch: %w", err))
	}
	result.Dispatched = true
	c.setState(StateDone)
	return result, nil
}

// crawlCourse visits every page type of one course, expanding intermediate
// links one level deep, and returns the course's same-origin files.
func (c *Crawler) crawlCourse(ctx context.Context, tab *coursegrab.Tab, course coursegrab.Course, result *RunResult) (*coursegrab.CourseDataset, error) {
	c.record(ctx, coursegrab.Event{Kind: coursegrab.EventCourseStart, Course: course.Name})

	coursePrefix := coursegrab.CourseURL(c.BaseURL, course)
	candidates := newCandidateSet()
	expanded := make(map[string]bool)

	for _, pageType := range c.pageTypes() {
		pageURL := coursegrab.CourseURL(c.BaseURL, course, pageType)
		c.notify(ctx, fmt.Sprintf("Scraping %s for course: %s", pageType, course.Name))
		c.record(ctx, coursegrab.Event{Kind: coursegrab.EventPageStart, Course: course.Name, URL: pageURL})

		c.setState(StateNavigatingPage)
		visit, err := c.visit(ctx, tab, pageURL, pageURL, result)
		if err != nil {
			return nil, err
		}
		if visit.Outcome != OutcomeOK {
			c.skipPage(ctx, course, pageType, visit)
			result.PagesSkipped++
			continue
		}

		c.setState(StateClassifying)
		c.noteDropped(ctx, course, visit)
		if visit.Classification.Empty() {
			c.record(ctx, coursegrab.Event{Kind: coursegrab.EventPageEmpty, Course: course.Name, URL: pageURL, Message: "no candidate links"})
		}
		for _, link := range visit.Classification.Direct {
			candidates.add(link)
		}

		c.setState(StateExpandingIntermediates)
		for _, link := range visit.Classification.Intermediate {
			if expanded[link.CanonicalURL] {
				continue
			}
			expanded[link.CanonicalURL] = true

			nested, err := c.visit(ctx, tab, link.CanonicalURL, coursePrefix, result)
			if err != nil {
				return nil, err
			}
			if nested.Outcome != OutcomeOK {
				c.skipPage(ctx, course, link.CanonicalURL, nested)
				result.PagesSkipped++
				continue
			}

			c.noteDropped(ctx, course, nested)
			for _, direct := range nested.Classification.Direct {
				candidates.add(inheritHint(direct, link))
			}
			for _, deeper := range nested.Classification.Intermediate {
				c.anomaly(ctx, course, link.CanonicalURL, deeper.CanonicalURL, result)
			}
		}
	}

	c.setState(StateAggregating)
	ds := c.aggregate(ctx, course, candidates, result)

	c.record(ctx, coursegrab.Event{
		Kind:    coursegrab.EventCourseDone,
		Course:  course.Name,
		Message: fmt.Sprintf("%d file(s)", len(ds.Files)),
	})
	c.notify(ctx, fmt.Sprintf("Found %d file(s) in course: %s", len(ds.Files), course.Name))
	return ds, nil
}

// visit navigates and classifies one page. A lost tab is replaced by the
// browser's current active tab so later pages can still be visited; the
// returned error is set only when the run cannot continue.
func (c *Crawler) visit(ctx context.Context, tab *coursegrab.Tab, url, expectPrefix string, result *RunResult) (Visit, error) {
	v := c.Visitor.NavigateAndClassify(ctx, *tab, url, expectPrefix)
	result.PagesVisited++

	if err := ctx.Err(); err != nil {
		return v, err
	}
	if v.Outcome == OutcomeTabLost {
		next, err := c.Browser.ActiveTab(ctx)
		if err != nil {
			return v, err
		}
		*tab = next
	}
	return v, nil
}

// aggregate keeps the course's same-origin candidates as resolved files.
func (c *Crawler) aggregate(ctx context.Context, course coursegrab.Course, candidates *candidateSet, result *RunResult) *coursegrab.CourseDataset {
	ds := &coursegrab.CourseDataset{Course: course, Files: make([]coursegrab.ResolvedFile, 0, candidates.len())}
	for _, link := range candidates.links {
		if !coursegrab.SameOrigin(c.BaseURL, link.CanonicalURL) {
			result.External++
			c.record(ctx, coursegrab.Event{
				Level:   coursegrab.LevelWarn,
				Kind:    coursegrab.EventExternalFile,
				Course:  course.Name,
				URL:     link.CanonicalURL,
				Message: "externally hosted file not fetched",
			})
			continue
		}
		ds.Files = append(ds.Files, coursegrab.ResolvedFile{
			CanonicalURL: link.CanonicalURL,
			Filename:     coursegrab.SanitizeFilename(link.FilenameHint),
			ContentType:  link.ContentTypeHint,
		})
	}
	return ds
}

func (c *Crawler) skipPage(ctx context.Context, course coursegrab.Course, page string, v Visit) {
	c.record(ctx, coursegrab.Event{
		Level:   coursegrab.LevelWarn,
		Kind:    coursegrab.EventPageSkipped,
		Course:  course.Name,
		URL:     v.URL,
		Message: v.Outcome.String(),
		Err:     v.Err,
	})
	c.notify(ctx, fmt.Sprintf("Skipped %s for course %s: %s", page, course.Name, v.Outcome))
}

func (c *Crawler) noteDropped(ctx context.Context, course coursegrab.Course, v Visit) {
	for _, d := range v.Classification.Dropped {
		if d.Reason != coursegrab.DropCrossOrigin {
			continue
		}
		c.record(ctx, coursegrab.Event{
			Kind:    coursegrab.EventDroppedLink,
			Course:  course.Name,
			URL:     d.URL,
			Message: d.Reason,
		})
	}
}

// anomaly reports an intermediate link found on an intermediate page. Such
// links are never followed.
func (c *Crawler) anomaly(ctx context.Context, course coursegrab.Course, parent, url string, result *RunResult) {
	result.Anomalies++
	if c.Anomalies != nil && c.Anomalies.Seen(course.Path+" "+url) {
		return
	}
	c.record(ctx, coursegrab.Event{
		Level:   coursegrab.LevelWarn,
		Kind:    coursegrab.EventNestedLink,
		Course:  course.Name,
		URL:     url,
		Message: "nested intermediate link on " + parent + " not followed",
	})
}

func (c *Crawler) abort(ctx context.Context, err error) error {
	c.setState(StateFailed)
	msg := coursegrab.ErrorMessage(err)
	if coursegrab.ErrorCode(err) == coursegrab.EINTERNAL {
		msg = err.Error()
	}
	c.notify(ctx, "Error: "+msg)
	c.record(ctx, coursegrab.Event{Level: coursegrab.LevelError, Kind: coursegrab.EventRunFailed, Message: msg, Err: err})
	return err
}

func (c *Crawler) pageTypes() []string {
	if len(c.PageTypes) > 0 {
		return c.PageTypes
	}
	return DefaultPageTypes
}

func (c *Crawler) setState(s State) {
	if c.OnState != nil {
		c.OnState(s)
	}
}

func (c *Crawler) notify(ctx context.Context, status string) {
	if c.Status != nil {
		c.Status.Notify(ctx, status)
	}
}

func (c *Crawler) record(ctx context.Context, e coursegrab.Event) {
	if c.Events == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	c.Events.Record(ctx, e)
}
