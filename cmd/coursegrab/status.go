package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/coursegrab"
	cgslog "github.com/fwojciec/coursegrab/slog"
	"golang.org/x/sync/errgroup"
)

// statusBuffer is how many status lines may queue before new ones are
// dropped.
const statusBuffer = 256

// withStatus runs fn while a second goroutine prints its status lines to
// stdout. Printing never blocks fn.
func withStatus(deps *Dependencies, fn func(ctx context.Context, status coursegrab.StatusNotifier) error) error {
	ch := cgslog.NewStatusChannel(statusBuffer)
	writer := cgslog.NewStatusWriter(deps.Stdout)

	var notifier coursegrab.StatusNotifier = ch
	if deps.Logger != nil {
		notifier = cgslog.NewStatusLogger(ch, deps.Logger)
	}

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		for status := range ch.C() {
			writer.Notify(ctx, status)
		}
		return nil
	})
	g.Go(func() error {
		defer ch.Close()
		return fn(ctx, notifier)
	})
	return g.Wait()
}

// dumpEvents prints the most recent events to stderr after a failure.
func dumpEvents(deps *Dependencies) {
	if deps.Ring == nil || deps.Ring.Len() == 0 {
		return
	}
	fmt.Fprintln(deps.Stderr, "Recent events:")
	_, _ = deps.Ring.WriteTo(deps.Stderr)
}
