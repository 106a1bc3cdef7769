package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fwojciec/coursegrab"
)

// readCourses loads a runScript message. An empty path yields no courses.
func readCourses(path string) ([]coursegrab.Course, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var msg coursegrab.RunScriptMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, coursegrab.Errorf(coursegrab.EINVALID, "invalid course list %s: %v", path, err)
	}
	return msg.Courses()
}

// readDatasets loads a zipAndDownload message.
func readDatasets(path string) ([]*coursegrab.CourseDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var msg coursegrab.ZipAndDownloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, coursegrab.Errorf(coursegrab.EINVALID, "invalid dataset %s: %v", path, err)
	}
	if msg.Action != "" && msg.Action != coursegrab.ActionZipAndDownload {
		return nil, coursegrab.Errorf(coursegrab.EINVALID, "unexpected action %q in %s", msg.Action, path)
	}
	return msg.Datasets()
}

// writeJSON writes v to path, indented.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// datasetWriter saves crawl results as a zipAndDownload message.
func datasetWriter(path string) coursegrab.Dispatcher {
	return coursegrab.DispatcherFunc(func(_ context.Context, datasets []*coursegrab.CourseDataset) error {
		return writeJSON(path, coursegrab.ToZipMessage(datasets))
	})
}

// chain dispatches to each dispatcher in order, stopping at the first error.
func chain(dispatchers ...coursegrab.Dispatcher) coursegrab.Dispatcher {
	return coursegrab.DispatcherFunc(func(ctx context.Context, datasets []*coursegrab.CourseDataset) error {
		for _, d := range dispatchers {
			if err := d.Dispatch(ctx, datasets); err != nil {
				return err
			}
		}
		return nil
	})
}
