package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/coursegrab"
	"github.com/fwojciec/coursegrab/archive"
	"github.com/fwojciec/coursegrab/bloom"
	"github.com/fwojciec/coursegrab/canvas"
	"github.com/fwojciec/coursegrab/crawl"
	"github.com/fwojciec/coursegrab/goquery"
)

// anomalyCapacity sizes the filter that de-duplicates anomaly reports.
const anomalyCapacity = 10_000

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	courses, err := readCourses(c.Courses)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", coursegrab.ErrorMessage(err))
		return err
	}

	err = withStatus(deps, func(ctx context.Context, status coursegrab.StatusNotifier) error {
		return c.crawl(ctx, deps, status, courses)
	})
	if err != nil {
		dumpEvents(deps)
	}
	return err
}

func (c *RunCmd) crawl(ctx context.Context, deps *Dependencies, status coursegrab.StatusNotifier, courses []coursegrab.Course) error {
	baseURL, err := c.prepareTab(ctx, deps)
	if err != nil {
		status.Notify(ctx, "Error: "+coursegrab.ErrorMessage(err))
		return err
	}

	run := &coursegrab.Run{BaseURL: baseURL}
	if err := deps.Runs.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	var summary *archive.Summary
	var dispatchers []coursegrab.Dispatcher
	if c.Dataset != "" {
		dispatchers = append(dispatchers, datasetWriter(c.Dataset))
	}
	if !c.NoArchive {
		builder := c.builder(deps, status, run.ID)
		dispatchers = append(dispatchers, coursegrab.DispatcherFunc(func(ctx context.Context, datasets []*coursegrab.CourseDataset) error {
			s, err := builder.Build(ctx, datasets)
			summary = s
			return err
		}))
	}

	crawler := &crawl.Crawler{
		Browser: deps.Browser,
		Visitor: &crawl.Navigator{
			Snapshotter: goquery.NewSnapshotter(),
			Classifier:  canvas.NewClassifier(),
			RateLimiter: crawl.NewDomainLimiter(c.NavRPS, 1),
			Timeout:     c.NavTimeout,
			Settle:      c.Settle,
		},
		Courses:    goquery.NewCourseFinder(),
		Dispatcher: chain(dispatchers...),
		Status:     status,
		Events:     deps.Events,
		Anomalies:  bloom.NewFilter(anomalyCapacity, 0.001),
		BaseURL:    baseURL,
		PageTypes:  c.PageTypes,
	}

	result, runErr := crawler.Run(ctx, courses)

	var crawled, archived, errs int
	if result != nil {
		crawled = len(result.Courses)
		if deps.Logger != nil {
			deps.Logger.Info("crawl finished",
				"courses", crawled,
				"files", result.Files,
				"pages", result.PagesVisited,
				"skipped", result.PagesSkipped,
				"anomalies", result.Anomalies,
				"external", result.External,
				"duration", result.Duration,
			)
		}
	}
	if summary != nil {
		archived, errs = summary.Archived, summary.Errors
	}
	if err := deps.Runs.FinishRun(context.WithoutCancel(ctx), run.ID, crawled, archived, errs); err != nil && deps.Logger != nil {
		deps.Logger.Warn("failed to finish run", "run", run.ID, "err", err)
	}

	return runErr
}

// prepareTab opens the start page when one is configured and returns the
// LMS origin, taken from the active tab when no base URL is set.
func (c *RunCmd) prepareTab(ctx context.Context, deps *Dependencies) (string, error) {
	baseURL := strings.TrimRight(deps.Config.BaseURL, "/")

	start := c.StartURL
	if start == "" && baseURL != "" && c.Courses == "" {
		start = baseURL + "/courses"
	}

	tab, err := deps.Browser.ActiveTab(ctx)
	if err != nil {
		return "", err
	}

	if start != "" {
		navCtx, cancel := context.WithTimeout(ctx, c.NavTimeout)
		defer cancel()
		if err := tab.Navigate(navCtx, start); err != nil {
			return "", fmt.Errorf("open %s: %w", start, err)
		}
		if err := tab.WaitLoad(navCtx); err != nil {
			return "", fmt.Errorf("open %s: %w", start, err)
		}
	}

	if baseURL != "" {
		return baseURL, nil
	}
	addr, err := tab.URL(ctx)
	if err != nil {
		return "", fmt.Errorf("read tab address: %w", err)
	}
	origin := coursegrab.Origin(addr)
	if origin == "" || coursegrab.IsInternalAddress(addr) {
		return "", coursegrab.Errorf(coursegrab.EINVALID, "Open the LMS in the active tab or pass --base-url.")
	}
	return origin, nil
}
