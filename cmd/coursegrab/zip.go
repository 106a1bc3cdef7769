package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/coursegrab"
)

// Run executes the zip command.
func (c *ZipCmd) Run(deps *Dependencies) error {
	datasets, err := readDatasets(c.Dataset)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", coursegrab.ErrorMessage(err))
		return err
	}

	run := &coursegrab.Run{}
	if len(datasets) > 0 {
		run.BaseURL = coursegrab.Origin(firstHref(datasets))
	}
	if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	err = withStatus(deps, func(ctx context.Context, status coursegrab.StatusNotifier) error {
		summary, err := c.builder(deps, status, run.ID).Build(ctx, datasets)
		if ferr := deps.Runs.FinishRun(context.WithoutCancel(ctx), run.ID, len(datasets), summary.Archived, summary.Errors); ferr != nil && deps.Logger != nil {
			deps.Logger.Warn("failed to finish run", "run", run.ID, "err", ferr)
		}
		return err
	})
	if err != nil {
		dumpEvents(deps)
	}
	return err
}

func firstHref(datasets []*coursegrab.CourseDataset) string {
	for _, ds := range datasets {
		for _, f := range ds.Files {
			return f.CanonicalURL
		}
	}
	return ""
}
