package coursegrab_test

import (
	"testing"

	"github.com/fwojciec/coursegrab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCoursePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "bare", path: "courses/101", want: "courses/101"},
		{name: "trailing slash", path: "courses/101/", want: "courses/101"},
		{name: "leading slash", path: "/courses/101", want: "courses/101"},
		{name: "absolute URL", path: "https://lms.example.edu/courses/101/files", want: "courses/101"},
		{name: "no course segment", path: "/dashboard/", want: "dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, coursegrab.NormalizeCoursePath(tt.path))
		})
	}
}

func TestNewCourse(t *testing.T) {
	t.Parallel()

	t.Run("uses fallback name when empty", func(t *testing.T) {
		t.Parallel()

		c, err := coursegrab.NewCourse("/courses/101/", "  ")

		require.NoError(t, err)
		assert.Equal(t, coursegrab.Course{ID: "101", Name: "Course 101", Path: "courses/101"}, c)
	})

	t.Run("keeps explicit name", func(t *testing.T) {
		t.Parallel()

		c, err := coursegrab.NewCourse("courses/7", "Biology")

		require.NoError(t, err)
		assert.Equal(t, "Biology", c.Name)
		assert.NoError(t, c.Validate())
	})

	t.Run("rejects non-course path", func(t *testing.T) {
		t.Parallel()

		_, err := coursegrab.NewCourse("/dashboard", "x")

		assert.Equal(t, coursegrab.EINVALID, coursegrab.ErrorCode(err))
	})
}

func TestCourseURL(t *testing.T) {
	t.Parallel()

	c := coursegrab.Course{ID: "77", Path: "courses/77"}

	assert.Equal(t, "https://lms.example.edu/courses/77/files", coursegrab.CourseURL("https://lms.example.edu/", c, "files"))
	assert.Equal(t, "https://lms.example.edu/courses/77", coursegrab.CourseURL("https://lms.example.edu", c))
}
