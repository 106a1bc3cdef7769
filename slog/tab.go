// Package slog provides logging decorators and sinks built on log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/coursegrab"
)

// Ensure types implement interfaces at compile time.
var (
	_ coursegrab.Browser = (*LoggingBrowser)(nil)
	_ coursegrab.Tab     = (*LoggingTab)(nil)
)

// LoggingBrowser wraps a Browser so that every tab it hands out logs its
// operations.
type LoggingBrowser struct {
	next   coursegrab.Browser
	logger *slog.Logger
}

// NewLoggingBrowser creates a new LoggingBrowser.
func NewLoggingBrowser(next coursegrab.Browser, logger *slog.Logger) *LoggingBrowser {
	return &LoggingBrowser{next: next, logger: logger}
}

// ActiveTab logs the lookup and wraps the returned tab.
func (b *LoggingBrowser) ActiveTab(ctx context.Context) (tab coursegrab.Tab, err error) {
	defer func(begin time.Time) {
		b.logger.Debug("active tab",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	tab, err = b.next.ActiveTab(ctx)
	if err != nil {
		return nil, err
	}
	return NewLoggingTab(tab, b.logger), nil
}

// LoggingTab wraps a Tab with debug logging.
type LoggingTab struct {
	next   coursegrab.Tab
	logger *slog.Logger
}

// NewLoggingTab creates a new LoggingTab.
func NewLoggingTab(next coursegrab.Tab, logger *slog.Logger) *LoggingTab {
	return &LoggingTab{next: next, logger: logger}
}

// Navigate logs the target address and delegates.
func (t *LoggingTab) Navigate(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		t.logger.Info("navigate",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.Navigate(ctx, url)
}

// WaitLoad logs how long the load event took.
func (t *LoggingTab) WaitLoad(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		t.logger.Debug("wait load",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.WaitLoad(ctx)
}

// URL delegates without logging; it is polled.
func (t *LoggingTab) URL(ctx context.Context) (string, error) {
	return t.next.URL(ctx)
}

// HTML logs the document size.
func (t *LoggingTab) HTML(ctx context.Context) (html string, err error) {
	defer func(begin time.Time) {
		t.logger.Debug("read html",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.HTML(ctx)
}
