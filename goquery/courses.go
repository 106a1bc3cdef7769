package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/coursegrab"
)

// Ensure CourseFinder implements coursegrab.CourseFinder.
var _ coursegrab.CourseFinder = (*CourseFinder)(nil)

// courseCardSelector matches dashboard cards and course-list entries.
const courseCardSelector = "a.ic-DashboardCard__link, a.fOyUs_bGBk, .course-list-course-title-link"

var (
	courseRegex       = regexp.MustCompile(`courses/\d+`)
	namePrefixRegex   = regexp.MustCompile(`(?i)^(Course|Enroll in) *:? *`)
	nameEnrollIDRegex = regexp.MustCompile(` \(\d+\)$`)
)

// CourseFinder discovers courses on a dashboard, course list, or course page.
type CourseFinder struct{}

// NewCourseFinder creates a new CourseFinder.
func NewCourseFinder() *CourseFinder {
	return &CourseFinder{}
}

// FindCourses returns the courses linked from the page, deduplicated by
// path in discovery order. Dashboard cards and course-list links are used
// first; when there are none and the page is not a course page, any anchor
// pointing at a course is used instead. If the page itself belongs to a
// course, that course is included.
func (f *CourseFinder) FindCourses(markup string, pageURL string) ([]coursegrab.Course, error) {
	doc, base, err := parseDocument(markup, pageURL)
	if err != nil {
		return nil, err
	}

	var courses []coursegrab.Course
	seen := make(map[string]bool)
	add := func(path, name string) {
		c, err := coursegrab.NewCourse(path, name)
		if err != nil || seen[c.Path] {
			return
		}
		seen[c.Path] = true
		courses = append(courses, c)
	}

	doc.Find(courseCardSelector).Each(func(_ int, sel *goquery.Selection) {
		path := coursePath(base, sel)
		if path == "" {
			return
		}
		add(path, cardName(sel))
	})

	current := courseRegex.FindString(base.Path)

	if len(courses) == 0 && current == "" {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			path := coursePath(base, sel)
			if path == "" {
				return
			}
			name, _ := sel.Attr("aria-label")
			if strings.TrimSpace(name) == "" {
				name = sel.Text()
			}
			add(path, cleanCourseName(name))
		})
	}

	if current != "" {
		add(current, currentCourseName(doc))
	}

	return courses, nil
}

// coursePath returns the "courses/<id>" segment an element links to, or "".
func coursePath(base *url.URL, sel *goquery.Selection) string {
	href, ok := sel.Attr("href")
	if !ok {
		href, ok = sel.Find("a[href]").First().Attr("href")
	}
	if !ok {
		return ""
	}
	u, err := url.Parse(resolveHref(base, href))
	if err != nil || u.Host != base.Host {
		return ""
	}
	return courseRegex.FindString(u.Path)
}

func cardName(sel *goquery.Selection) string {
	candidates := []string{
		attr(sel, "aria-label"),
		sel.Find(".ic-DashboardCard__header-title").First().Text(),
		sel.Text(),
	}
	for _, c := range candidates {
		if name := cleanCourseName(c); name != "" {
			return name
		}
	}
	return ""
}

func currentCourseName(doc *goquery.Document) string {
	candidates := []string{
		doc.Find("#breadcrumbs ul li:last-child a").First().Text(),
		doc.Find("title").First().Text(),
	}
	for _, c := range candidates {
		name, _, _ := strings.Cut(collapse(c), " - ")
		name, _, _ = strings.Cut(name, "|")
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return ""
}

// cleanCourseName strips "Course:" / "Enroll in" prefixes and a trailing
// enrollment count such as " (3)".
func cleanCourseName(s string) string {
	s = collapse(s)
	s = namePrefixRegex.ReplaceAllString(s, "")
	s = nameEnrollIDRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return v
}
