package mock

import (
	"context"
	"net/http"

	"github.com/fwojciec/coursegrab"
)

var (
	_ coursegrab.FileFetcher   = (*FileFetcher)(nil)
	_ coursegrab.CookieSource  = (*CookieSource)(nil)
	_ coursegrab.DomainLimiter = (*DomainLimiter)(nil)
	_ coursegrab.Dispatcher    = (*Dispatcher)(nil)
)

// FileFetcher is a mock implementation of coursegrab.FileFetcher.
type FileFetcher struct {
	FetchFileFn func(ctx context.Context, req coursegrab.FetchRequest) coursegrab.FetchResponse
}

func (f *FileFetcher) FetchFile(ctx context.Context, req coursegrab.FetchRequest) coursegrab.FetchResponse {
	return f.FetchFileFn(ctx, req)
}

// CookieSource is a mock implementation of coursegrab.CookieSource.
type CookieSource struct {
	CookiesFn func(ctx context.Context, url string) ([]*http.Cookie, error)
}

func (s *CookieSource) Cookies(ctx context.Context, url string) ([]*http.Cookie, error) {
	return s.CookiesFn(ctx, url)
}

// DomainLimiter is a mock implementation of coursegrab.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

// Dispatcher is a mock implementation of coursegrab.Dispatcher.
type Dispatcher struct {
	DispatchFn func(ctx context.Context, datasets []*coursegrab.CourseDataset) error
}

func (d *Dispatcher) Dispatch(ctx context.Context, datasets []*coursegrab.CourseDataset) error {
	return d.DispatchFn(ctx, datasets)
}
