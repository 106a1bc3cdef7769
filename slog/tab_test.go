package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/coursegrab"
	"github.com/fwojciec/coursegrab/mock"
	cgslog "github.com/fwojciec/coursegrab/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingTab(t *testing.T) {
	t.Parallel()

	t.Run("logs navigation with url and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Tab{
			NavigateFn: func(context.Context, string) error { return nil },
		}

		tab := cgslog.NewLoggingTab(inner, debugLogger(&buf))
		err := tab.Navigate(context.Background(), "https://canvas.example.edu/courses/1/modules")

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "navigate")
		assert.Contains(t, output, "url=https://canvas.example.edu/courses/1/modules")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs html size and errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Tab{
			HTMLFn: func(context.Context) (string, error) {
				return "", coursegrab.Errorf(coursegrab.ETABLOST, "tab closed")
			},
		}

		tab := cgslog.NewLoggingTab(inner, debugLogger(&buf))
		_, err := tab.HTML(context.Background())

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "read html")
		assert.Contains(t, output, "bytes=0")
		assert.Contains(t, output, "tab closed")
	})

	t.Run("url and wait load delegate", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Tab{
			URLFn:      func(context.Context) (string, error) { return "https://x/", nil },
			WaitLoadFn: func(context.Context) error { return nil },
		}

		tab := cgslog.NewLoggingTab(inner, debugLogger(&buf))
		u, err := tab.URL(context.Background())
		require.NoError(t, err)
		require.NoError(t, tab.WaitLoad(context.Background()))

		assert.Equal(t, "https://x/", u)
		assert.Contains(t, buf.String(), "wait load")
	})
}

func TestLoggingBrowser_ActiveTab(t *testing.T) {
	t.Parallel()

	t.Run("wraps the returned tab", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		browser := &mock.Browser{
			ActiveTabFn: func(context.Context) (coursegrab.Tab, error) {
				return &mock.Tab{NavigateFn: func(context.Context, string) error { return nil }}, nil
			},
		}

		tab, err := cgslog.NewLoggingBrowser(browser, debugLogger(&buf)).ActiveTab(context.Background())
		require.NoError(t, err)

		assert.IsType(t, &cgslog.LoggingTab{}, tab)
		require.NoError(t, tab.Navigate(context.Background(), "https://canvas.example.edu/"))
		assert.Contains(t, buf.String(), "navigate")
	})

	t.Run("returns errors unwrapped", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		browser := &mock.Browser{
			ActiveTabFn: func(context.Context) (coursegrab.Tab, error) {
				return nil, errors.New("no tab")
			},
		}

		tab, err := cgslog.NewLoggingBrowser(browser, debugLogger(&buf)).ActiveTab(context.Background())

		assert.Nil(t, tab)
		assert.EqualError(t, err, "no tab")
	})
}

func TestLoggingFileFetcher_FetchFile(t *testing.T) {
	t.Parallel()

	t.Run("logs successful fetches", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.FileFetcher{
			FetchFileFn: func(context.Context, coursegrab.FetchRequest) coursegrab.FetchResponse {
				return coursegrab.FetchResponse{Success: true, Base64: "aGk=", ContentType: "text/plain"}
			},
		}

		resp := cgslog.NewLoggingFileFetcher(inner, debugLogger(&buf)).
			FetchFile(context.Background(), coursegrab.NewFetchRequest("https://canvas.example.edu/files/1"))

		assert.True(t, resp.Success)
		output := buf.String()
		assert.Contains(t, output, "fetch file")
		assert.Contains(t, output, "outcome=ok")
		assert.Contains(t, output, "encoded=4")
	})

	t.Run("logs skipped and failed fetches as warnings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		responses := []coursegrab.FetchResponse{
			coursegrab.SkippedResponse(),
			{Success: false, Error: "HTTP 500"},
		}
		i := 0
		inner := &mock.FileFetcher{
			FetchFileFn: func(context.Context, coursegrab.FetchRequest) coursegrab.FetchResponse {
				r := responses[i]
				i++
				return r
			},
		}

		fetcher := cgslog.NewLoggingFileFetcher(inner, debugLogger(&buf))
		fetcher.FetchFile(context.Background(), coursegrab.NewFetchRequest("https://x/a"))
		fetcher.FetchFile(context.Background(), coursegrab.NewFetchRequest("https://x/b"))

		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "outcome=skipped")
		assert.Contains(t, output, "outcome=failed")
		assert.Contains(t, output, `err="HTTP 500"`)
	})
}
