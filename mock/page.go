package mock

import "github.com/fwojciec/coursegrab"

var (
	_ coursegrab.Snapshotter  = (*Snapshotter)(nil)
	_ coursegrab.Classifier   = (*Classifier)(nil)
	_ coursegrab.CourseFinder = (*CourseFinder)(nil)
)

// Snapshotter is a mock implementation of coursegrab.Snapshotter.
type Snapshotter struct {
	SnapshotFn func(html string, pageURL string) (*coursegrab.PageSnapshot, error)
}

func (s *Snapshotter) Snapshot(html string, pageURL string) (*coursegrab.PageSnapshot, error) {
	return s.SnapshotFn(html, pageURL)
}

// Classifier is a mock implementation of coursegrab.Classifier.
type Classifier struct {
	ClassifyFn func(snapshot *coursegrab.PageSnapshot) coursegrab.Classification
}

func (c *Classifier) Classify(snapshot *coursegrab.PageSnapshot) coursegrab.Classification {
	return c.ClassifyFn(snapshot)
}

// CourseFinder is a mock implementation of coursegrab.CourseFinder.
type CourseFinder struct {
	FindCoursesFn func(html string, pageURL string) ([]coursegrab.Course, error)
}

func (f *CourseFinder) FindCourses(html string, pageURL string) ([]coursegrab.Course, error) {
	return f.FindCoursesFn(html, pageURL)
}
