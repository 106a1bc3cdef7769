package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/coursegrab"
)

// Ensure LoggingFileFetcher implements coursegrab.FileFetcher.
var _ coursegrab.FileFetcher = (*LoggingFileFetcher)(nil)

// LoggingFileFetcher wraps a FileFetcher with logging.
type LoggingFileFetcher struct {
	next   coursegrab.FileFetcher
	logger *slog.Logger
}

// NewLoggingFileFetcher creates a new LoggingFileFetcher.
func NewLoggingFileFetcher(next coursegrab.FileFetcher, logger *slog.Logger) *LoggingFileFetcher {
	return &LoggingFileFetcher{next: next, logger: logger}
}

// FetchFile logs the outcome of each download and delegates.
func (f *LoggingFileFetcher) FetchFile(ctx context.Context, req coursegrab.FetchRequest) (resp coursegrab.FetchResponse) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		outcome := "ok"
		switch {
		case resp.Skipped:
			level, outcome = slog.LevelWarn, "skipped"
		case !resp.Success:
			level, outcome = slog.LevelWarn, "failed"
		}
		f.logger.Log(ctx, level, "fetch file",
			"url", req.URL,
			"outcome", outcome,
			"encoded", len(resp.Base64),
			"content_type", resp.ContentType,
			"duration", time.Since(begin),
			"err", resp.Error,
		)
	}(time.Now())
	return f.next.FetchFile(ctx, req)
}
