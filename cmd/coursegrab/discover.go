package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/coursegrab"
	"github.com/fwojciec/coursegrab/crawl"
	"github.com/fwojciec/coursegrab/goquery"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	crawler := &crawl.Crawler{
		Browser: deps.Browser,
		Courses: goquery.NewCourseFinder(),
		Events:  deps.Events,
	}

	courses, err := crawler.DiscoverCourses(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", coursegrab.ErrorMessage(err))
		return err
	}

	msg := coursegrab.NewRunScriptMessage(courses)
	if c.Output != "" {
		if err := writeJSON(c.Output, msg); err != nil {
			return err
		}
		fmt.Fprintf(deps.Stderr, "Found %d course(s); wrote %s\n", len(courses), c.Output)
		return nil
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(msg)
}
