package crawl_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/coursegrab"
	"github.com/fwojciec/coursegrab/crawl"
	"github.com/fwojciec/coursegrab/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filesURL = "https://lms.example.edu/courses/77/files"

func newNavigator(classification coursegrab.Classification) *crawl.Navigator {
	return &crawl.Navigator{
		Snapshotter: &mock.Snapshotter{
			SnapshotFn: func(html string, pageURL string) (*coursegrab.PageSnapshot, error) {
				return &coursegrab.PageSnapshot{URL: pageURL}, nil
			},
		},
		Classifier: &mock.Classifier{
			ClassifyFn: func(*coursegrab.PageSnapshot) coursegrab.Classification {
				return classification
			},
		},
		Timeout:      100 * time.Millisecond,
		Settle:       -1,
		PollInterval: time.Millisecond,
	}
}

// loadedTab is a tab that loads instantly and reports addr.
func loadedTab(addr string) *mock.Tab {
	return &mock.Tab{
		NavigateFn: func(context.Context, string) error { return nil },
		WaitLoadFn: func(context.Context) error { return nil },
		URLFn:      func(context.Context) (string, error) { return addr, nil },
		HTMLFn:     func(context.Context) (string, error) { return "<html></html>", nil },
	}
}

func TestNavigator_NavigateAndClassify(t *testing.T) {
	t.Parallel()

	t.Run("classifies the loaded page", func(t *testing.T) {
		t.Parallel()

		want := coursegrab.Classification{
			Direct: []coursegrab.CandidateLink{{CanonicalURL: filesURL + "/1/download"}},
		}
		nav := newNavigator(want)

		var navigated string
		var polls atomic.Int32
		tab := loadedTab(filesURL)
		tab.NavigateFn = func(_ context.Context, url string) error {
			navigated = url
			return nil
		}
		tab.URLFn = func(context.Context) (string, error) {
			if polls.Add(1) < 3 {
				return "about:blank", nil
			}
			return filesURL + "?page=1", nil
		}

		v := nav.NavigateAndClassify(context.Background(), tab, filesURL, filesURL)

		require.Equal(t, crawl.OutcomeOK, v.Outcome)
		assert.NoError(t, v.Err)
		assert.Equal(t, filesURL, navigated)
		assert.Equal(t, filesURL+"?page=1", v.FinalURL)
		assert.Equal(t, want, v.Classification)
	})

	t.Run("load that never completes times out", func(t *testing.T) {
		t.Parallel()

		nav := newNavigator(coursegrab.Classification{})
		tab := loadedTab(filesURL)
		tab.WaitLoadFn = func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}

		v := nav.NavigateAndClassify(context.Background(), tab, filesURL, filesURL)

		assert.Equal(t, crawl.OutcomeTimeout, v.Outcome)
		assert.Equal(t, coursegrab.ENAVTIMEOUT, coursegrab.ErrorCode(v.Err))
	})

	t.Run("address stuck on a placeholder times out", func(t *testing.T) {
		t.Parallel()

		nav := newNavigator(coursegrab.Classification{})
		tab := loadedTab("chrome://newtab/")

		v := nav.NavigateAndClassify(context.Background(), tab, filesURL, filesURL)

		assert.Equal(t, crawl.OutcomeTimeout, v.Outcome)
	})

	t.Run("closed tab is reported as lost", func(t *testing.T) {
		t.Parallel()

		nav := newNavigator(coursegrab.Classification{})
		tab := loadedTab(filesURL)
		tab.NavigateFn = func(context.Context, string) error {
			return coursegrab.Errorf(coursegrab.ETABLOST, "tab closed")
		}

		v := nav.NavigateAndClassify(context.Background(), tab, filesURL, filesURL)

		assert.Equal(t, crawl.OutcomeTabLost, v.Outcome)
		assert.Equal(t, coursegrab.ETABLOST, coursegrab.ErrorCode(v.Err))
	})

	t.Run("redirect away from the expected page is a mismatch", func(t *testing.T) {
		t.Parallel()

		nav := newNavigator(coursegrab.Classification{})
		tab := loadedTab("https://lms.example.edu/courses/77")
		tab.HTMLFn = func(context.Context) (string, error) {
			t.Error("page content should not be read after a mismatch")
			return "", nil
		}

		v := nav.NavigateAndClassify(context.Background(), tab, filesURL, filesURL)

		assert.Equal(t, crawl.OutcomeMismatch, v.Outcome)
		assert.Equal(t, coursegrab.ENAVMISMATCH, coursegrab.ErrorCode(v.Err))
		assert.Equal(t, "https://lms.example.edu/courses/77", v.FinalURL)
	})

	t.Run("empty prefix skips the address check", func(t *testing.T) {
		t.Parallel()

		nav := newNavigator(coursegrab.Classification{})
		tab := loadedTab("https://lms.example.edu/login")

		v := nav.NavigateAndClassify(context.Background(), tab, filesURL, "")

		assert.Equal(t, crawl.OutcomeOK, v.Outcome)
	})

	t.Run("content read failure", func(t *testing.T) {
		t.Parallel()

		nav := newNavigator(coursegrab.Classification{})
		tab := loadedTab(filesURL)
		tab.HTMLFn = func(context.Context) (string, error) {
			return "", errors.New("protocol error")
		}

		v := nav.NavigateAndClassify(context.Background(), tab, filesURL, filesURL)

		assert.Equal(t, crawl.OutcomeFailed, v.Outcome)
		assert.EqualError(t, v.Err, "protocol error")
	})

	t.Run("canceled run is a failure, not a timeout", func(t *testing.T) {
		t.Parallel()

		nav := newNavigator(coursegrab.Classification{})
		ctx, cancel := context.WithCancel(context.Background())
		tab := loadedTab(filesURL)
		tab.NavigateFn = func(context.Context, string) error {
			cancel()
			return context.Canceled
		}

		v := nav.NavigateAndClassify(ctx, tab, filesURL, filesURL)

		assert.Equal(t, crawl.OutcomeFailed, v.Outcome)
		assert.ErrorIs(t, v.Err, context.Canceled)
	})

	t.Run("paces navigations per host", func(t *testing.T) {
		t.Parallel()

		nav := newNavigator(coursegrab.Classification{})
		var host string
		nav.RateLimiter = &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				host = domain
				return nil
			},
		}

		v := nav.NavigateAndClassify(context.Background(), loadedTab(filesURL), filesURL, filesURL)

		assert.Equal(t, crawl.OutcomeOK, v.Outcome)
		assert.Equal(t, "lms.example.edu", host)
	})
}
