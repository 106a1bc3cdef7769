package crawl

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/fwojciec/coursegrab"
)

// Navigation defaults.
const (
	DefaultNavTimeout   = 30 * time.Second
	DefaultSettleDelay  = 2 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Outcome is the result kind of a single page visit.
type Outcome int

// Visit outcomes. Every outcome other than OutcomeOK means the page was
// skipped; none of them ends the run.
const (
	OutcomeOK Outcome = iota
	OutcomeTimeout
	OutcomeTabLost
	OutcomeMismatch
	OutcomeFailed
)

// String returns a short name for logs and status lines.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeTabLost:
		return "tab lost"
	case OutcomeMismatch:
		return "redirected"
	default:
		return "failed"
	}
}

// Visit is the result of navigating to one URL and classifying the page.
// Classification is only set when Outcome is OutcomeOK; Err is only set
// otherwise.
type Visit struct {
	URL            string
	FinalURL       string
	Outcome        Outcome
	Classification coursegrab.Classification
	Err            error
}

// Visitor navigates a tab to a URL and classifies the loaded page.
type Visitor interface {
	NavigateAndClassify(ctx context.Context, tab coursegrab.Tab, url, expectPrefix string) Visit
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(ctx context.Context, tab coursegrab.Tab, url, expectPrefix string) Visit

// NavigateAndClassify calls f.
func (f VisitorFunc) NavigateAndClassify(ctx context.Context, tab coursegrab.Tab, url, expectPrefix string) Visit {
	return f(ctx, tab, url, expectPrefix)
}

var _ Visitor = (*Navigator)(nil)

// Navigator drives a tab through one page load at a time.
type Navigator struct {
	Snapshotter coursegrab.Snapshotter
	Classifier  coursegrab.Classifier

	// RateLimiter, if set, paces navigations per host.
	RateLimiter coursegrab.DomainLimiter

	// Timeout bounds the load wait. Zero means DefaultNavTimeout.
	Timeout time.Duration

	// Settle is waited once after the page has loaded. Negative disables it;
	// zero means DefaultSettleDelay.
	Settle time.Duration

	// PollInterval is how often the tab address is checked while waiting
	// for it to leave a placeholder page. Zero means DefaultPollInterval.
	PollInterval time.Duration
}

// NavigateAndClassify loads url in tab, waits for the page to load and
// settle, verifies the tab ended up under expectPrefix, and classifies the
// page. An empty expectPrefix skips the address check.
func (n *Navigator) NavigateAndClassify(ctx context.Context, tab coursegrab.Tab, target, expectPrefix string) Visit {
	v := Visit{URL: target}

	if n.RateLimiter != nil {
		if u, err := url.Parse(target); err == nil {
			if err := n.RateLimiter.Wait(ctx, u.Host); err != nil {
				return n.failed(v, err, false)
			}
		}
	}

	timeout := n.Timeout
	if timeout <= 0 {
		timeout = DefaultNavTimeout
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := tab.Navigate(wctx, target); err != nil {
		return n.failed(v, err, wctx.Err() != nil && ctx.Err() == nil)
	}
	if err := tab.WaitLoad(wctx); err != nil {
		return n.failed(v, err, wctx.Err() != nil && ctx.Err() == nil)
	}
	if _, err := n.waitForAddress(wctx, tab); err != nil {
		return n.failed(v, err, wctx.Err() != nil && ctx.Err() == nil)
	}

	if err := sleep(ctx, n.settle()); err != nil {
		return n.failed(v, err, false)
	}

	// Client-side redirects may still happen while the page settles.
	addr, err := tab.URL(ctx)
	if err != nil {
		return n.failed(v, err, false)
	}
	v.FinalURL = addr

	if expectPrefix != "" && !coursegrab.UnderPrefix(addr, expectPrefix) {
		v.Outcome = OutcomeMismatch
		v.Err = coursegrab.Errorf(coursegrab.ENAVMISMATCH, "expected a page under %s, landed on %s", expectPrefix, addr)
		return v
	}

	html, err := tab.HTML(ctx)
	if err != nil {
		return n.failed(v, err, false)
	}
	snap, err := n.Snapshotter.Snapshot(html, addr)
	if err != nil {
		return n.failed(v, fmt.Errorf("snapshot: %w", err), false)
	}

	v.Outcome = OutcomeOK
	v.Classification = n.Classifier.Classify(snap)
	return v
}

// waitForAddress polls the tab until its address is a real page rather than
// a browser placeholder.
func (n *Navigator) waitForAddress(ctx context.Context, tab coursegrab.Tab) (string, error) {
	interval := n.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		addr, err := tab.URL(ctx)
		if err != nil {
			return "", err
		}
		if !coursegrab.IsInternalAddress(addr) {
			return addr, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (n *Navigator) settle() time.Duration {
	switch {
	case n.Settle < 0:
		return 0
	case n.Settle == 0:
		return DefaultSettleDelay
	default:
		return n.Settle
	}
}

// failed maps err to a visit outcome. timedOut reports whether the load
// wait's own deadline expired.
func (n *Navigator) failed(v Visit, err error, timedOut bool) Visit {
	switch {
	case coursegrab.ErrorCode(err) == coursegrab.ETABLOST:
		v.Outcome = OutcomeTabLost
		v.Err = err
	case coursegrab.ErrorCode(err) == coursegrab.ENAVTIMEOUT:
		v.Outcome = OutcomeTimeout
		v.Err = err
	case timedOut:
		v.Outcome = OutcomeTimeout
		v.Err = coursegrab.Errorf(coursegrab.ENAVTIMEOUT, "page did not load in time: %s", v.URL)
	default:
		v.Outcome = OutcomeFailed
		v.Err = err
	}
	return v
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
