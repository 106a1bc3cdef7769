package coursegrab

import (
	"context"
	"regexp"
	"strings"
)

// coursePathRegex matches the "courses/<id>" segment of a course address.
var coursePathRegex = regexp.MustCompile(`courses/(\d+)`)

// Course is a top-level content grouping whose files are crawled and archived
// independently of every other course. Its identity is Path.
type Course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// NewCourse builds a Course from a path such as "/courses/101/" and an
// optional display name. An empty name falls back to "Course <id>".
func NewCourse(path, name string) (Course, error) {
	normalized := NormalizeCoursePath(path)
	m := coursePathRegex.FindStringSubmatch(normalized)
	if m == nil {
		return Course{}, Errorf(EINVALID, "not a course path: %q", path)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Course " + m[1]
	}
	return Course{ID: m[1], Name: name, Path: normalized}, nil
}

// Validate returns an error if the course contains invalid fields.
func (c *Course) Validate() error {
	if c.Path == "" {
		return Errorf(EINVALID, "course path required")
	}
	if c.ID == "" {
		return Errorf(EINVALID, "course ID required")
	}
	return nil
}

// NormalizeCoursePath reduces any course address to its "courses/<id>" form,
// so that paths differing only by slashes, host, or a trailing page segment
// compare equal. Inputs without a course segment are returned trimmed of
// surrounding slashes.
func NormalizeCoursePath(path string) string {
	if m := coursePathRegex.FindString(path); m != "" {
		return m
	}
	return strings.Trim(path, "/")
}

// CourseURL joins an origin such as "https://lms.example.edu" with the
// course path and any number of trailing page segments.
func CourseURL(origin string, course Course, segments ...string) string {
	parts := append([]string{strings.TrimRight(origin, "/"), course.Path}, segments...)
	return strings.Join(parts, "/")
}

// CourseFinder extracts the courses linked from a dashboard or course-list
// page, plus the current course when the page itself belongs to one.
type CourseFinder interface {
	FindCourses(html string, pageURL string) ([]Course, error)
}

// Browser hands out the tab that the run will drive.
type Browser interface {
	// ActiveTab returns the tab currently focused by the user.
	// Returns ENOACTIVETAB if no usable tab exists.
	ActiveTab(ctx context.Context) (Tab, error)
}

// Tab is a single browser tab. A Tab is driven by one caller at a time.
// Operations on a tab that has been closed return ETABLOST.
type Tab interface {
	// Navigate instructs the tab to load url. It returns once the
	// navigation has been issued, not when the page has loaded.
	Navigate(ctx context.Context, url string) error

	// WaitLoad blocks until the current document fires its load event.
	WaitLoad(ctx context.Context) error

	// URL returns the tab's current address.
	URL(ctx context.Context) (string, error)

	// HTML returns the rendered markup of the current document.
	HTML(ctx context.Context) (string, error)
}
