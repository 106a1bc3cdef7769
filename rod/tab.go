package rod

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fwojciec/coursegrab"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Tab implements coursegrab.Tab at compile time.
var _ coursegrab.Tab = (*Tab)(nil)

// Tab drives a single browser page. Once the page's target is destroyed
// every operation returns ETABLOST.
type Tab struct {
	page *rod.Page
	lost atomic.Bool
}

// NewTab wraps page and starts watching for its target being destroyed.
func NewTab(browser *rod.Browser, page *rod.Page) *Tab {
	t := &Tab{page: page}

	// Target events are only delivered with discovery enabled.
	_ = proto.TargetSetDiscoverTargets{Discover: true}.Call(browser)

	wait := browser.EachEvent(func(e *proto.TargetTargetDestroyed) bool {
		if e.TargetID == page.TargetID {
			t.lost.Store(true)
			return true
		}
		return false
	})
	go wait()

	return t
}

// Navigate issues a navigation to url.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	return t.wrap(t.page.Context(ctx).Navigate(url))
}

// WaitLoad waits for the current document's load event.
func (t *Tab) WaitLoad(ctx context.Context) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	return t.wrap(t.page.Context(ctx).WaitLoad())
}

// URL returns the page's current address.
func (t *Tab) URL(ctx context.Context) (string, error) {
	if err := t.check(ctx); err != nil {
		return "", err
	}
	info, err := t.page.Context(ctx).Info()
	if err != nil {
		return "", t.wrap(err)
	}
	return info.URL, nil
}

// HTML returns the rendered document markup.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	if err := t.check(ctx); err != nil {
		return "", err
	}
	html, err := t.page.Context(ctx).HTML()
	if err != nil {
		return "", t.wrap(err)
	}
	return html, nil
}

// Close closes the page.
func (t *Tab) Close() error {
	t.lost.Store(true)
	return t.page.Close()
}

func (t *Tab) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.lost.Load() {
		return coursegrab.Errorf(coursegrab.ETABLOST, "tab was closed")
	}
	return nil
}

// wrap converts errors caused by the target disappearing into ETABLOST.
func (t *Tab) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if t.lost.Load() || isTargetGone(err) {
		t.lost.Store(true)
		return coursegrab.Errorf(coursegrab.ETABLOST, "tab was closed: %v", err)
	}
	return err
}

var targetGoneMessages = []string{
	"No target with given id",
	"Session with given id not found",
	"Target closed",
	"target closed",
}

func isTargetGone(err error) bool {
	msg := err.Error()
	var cdpErr *cdp.Error
	if errors.As(err, &cdpErr) {
		msg = cdpErr.Message
	}
	for _, m := range targetGoneMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
