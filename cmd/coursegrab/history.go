package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fwojciec/coursegrab"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if c.ID != "" {
		return c.showRun(deps)
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, coursegrab.RunFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", coursegrab.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'coursegrab run' to start one.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tCOURSES\tFILES\tERRORS\tSOURCE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, humanize.Time(r.StartedAt), duration(r), r.Courses, r.Archived, r.Errors, r.BaseURL)
	}
	return w.Flush()
}

func (c *HistoryCmd) showRun(deps *Dependencies) error {
	runs, err := deps.Runs.FindRuns(deps.Ctx, coursegrab.RunFilter{ID: &c.ID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", coursegrab.ErrorMessage(err))
		return err
	}
	if len(runs) == 0 {
		err := coursegrab.Errorf(coursegrab.ENOTFOUND, "run %q not found", c.ID)
		fmt.Fprintf(deps.Stderr, "error: %s\n", coursegrab.ErrorMessage(err))
		return err
	}

	files, err := deps.Runs.FindArchivedFiles(deps.Ctx, coursegrab.ArchivedFileFilter{RunID: &c.ID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", coursegrab.ErrorMessage(err))
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(deps.Stdout, "No files archived in this run.")
		return nil
	}

	var total uint64
	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COURSE\tFILE\tSIZE\tARCHIVE")
	for _, f := range files {
		total += uint64(f.Size)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.CourseName, f.Filename, humanize.Bytes(uint64(f.Size)), f.ArchivePath)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "%d file(s), %s\n", len(files), humanize.Bytes(total))
	return nil
}

func duration(r *coursegrab.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}
