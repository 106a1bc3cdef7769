package main_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/fwojciec/coursegrab"
	main "github.com/fwojciec/coursegrab/cmd/coursegrab"
	"github.com/fwojciec/coursegrab/mock"
	"github.com/fwojciec/coursegrab/sqlite"
	"github.com/stretchr/testify/require"
)

const lms = "https://lms.example.edu"

// fakeTab serves canned HTML by address.
type fakeTab struct {
	mu      sync.Mutex
	pages   map[string]string
	current string
	visited []string
}

func newFakeTab(start string, pages map[string]string) *fakeTab {
	return &fakeTab{pages: pages, current: start}
}

func (t *fakeTab) Navigate(_ context.Context, url string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = url
	t.visited = append(t.visited, url)
	return nil
}

func (t *fakeTab) WaitLoad(context.Context) error { return nil }

func (t *fakeTab) URL(context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, nil
}

func (t *fakeTab) HTML(context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if html, ok := t.pages[t.current]; ok {
		return html, nil
	}
	return "<html><body></body></html>", nil
}

func browserFor(tab coursegrab.Tab) *mock.Browser {
	return &mock.Browser{
		ActiveTabFn: func(context.Context) (coursegrab.Tab, error) { return tab, nil },
	}
}

// staticFetcher returns body for every URL.
func staticFetcher(body string) *mock.FileFetcher {
	return &mock.FileFetcher{
		FetchFileFn: func(context.Context, coursegrab.FetchRequest) coursegrab.FetchResponse {
			return coursegrab.FetchResponse{
				Success:     true,
				Base64:      base64.StdEncoding.EncodeToString([]byte(body)),
				ContentType: "application/pdf",
			}
		},
	}
}

func ledger(t *testing.T) *sqlite.RunService {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return sqlite.NewRunService(db)
}

func newDeps(t *testing.T, config *main.Globals) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Config: config,
		Runs:   ledger(t),
	}, stdout, stderr
}
