package mock

import (
	"context"

	"github.com/fwojciec/coursegrab"
)

var (
	_ coursegrab.Browser = (*Browser)(nil)
	_ coursegrab.Tab     = (*Tab)(nil)
)

// Browser is a mock implementation of coursegrab.Browser.
type Browser struct {
	ActiveTabFn func(ctx context.Context) (coursegrab.Tab, error)
}

func (b *Browser) ActiveTab(ctx context.Context) (coursegrab.Tab, error) {
	return b.ActiveTabFn(ctx)
}

// Tab is a mock implementation of coursegrab.Tab.
type Tab struct {
	NavigateFn func(ctx context.Context, url string) error
	WaitLoadFn func(ctx context.Context) error
	URLFn      func(ctx context.Context) (string, error)
	HTMLFn     func(ctx context.Context) (string, error)
}

func (t *Tab) Navigate(ctx context.Context, url string) error {
	return t.NavigateFn(ctx, url)
}

func (t *Tab) WaitLoad(ctx context.Context) error {
	return t.WaitLoadFn(ctx)
}

func (t *Tab) URL(ctx context.Context) (string, error) {
	return t.URLFn(ctx)
}

func (t *Tab) HTML(ctx context.Context) (string, error) {
	return t.HTMLFn(ctx)
}
