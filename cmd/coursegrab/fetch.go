package main

import (
	"github.com/fwojciec/coursegrab"
	"github.com/fwojciec/coursegrab/archive"
	"github.com/fwojciec/coursegrab/crawl"
	"github.com/fwojciec/coursegrab/fs"
	cghttp "github.com/fwojciec/coursegrab/http"
	cgslog "github.com/fwojciec/coursegrab/slog"
	"github.com/fwojciec/coursegrab/zip"
)

// fetcher returns the file fetch boundary configured by flags.
func (f FetchFlags) fetcher(deps *Dependencies) coursegrab.FileFetcher {
	fetcher := deps.Fetcher
	if fetcher == nil {
		opts := []cghttp.Option{
			cghttp.WithTimeout(f.FetchTimeout),
			cghttp.WithRateLimiter(crawl.NewDomainLimiter(f.FetchRPS, 1)),
		}
		if f.MaxTransfer > 0 {
			opts = append(opts, cghttp.WithMaxTransfer(f.MaxTransfer))
		}
		if deps.Cookies != nil {
			opts = append(opts, cghttp.WithCookieSource(deps.Cookies))
		}
		fetcher = cghttp.NewFileFetcher(opts...)
	}
	if deps.Logger != nil {
		fetcher = cgslog.NewLoggingFileFetcher(fetcher, deps.Logger)
	}
	return fetcher
}

// builder returns an archive builder writing into the output directory.
func (f FetchFlags) builder(deps *Dependencies, status coursegrab.StatusNotifier, runID string) *archive.Builder {
	return &archive.Builder{
		Fetcher:  f.fetcher(deps),
		Archiver: zip.NewArchiver(fs.NewArchiveStore(deps.Config.Out)),
		Status:   status,
		Events:   deps.Events,
		Recorder: deps.Runs,
		RunID:    runID,
	}
}
