package internal

import (
	"context"
	"io"
	"time"

	"github.com/davidmdm/ansi"
)

type debugKey struct{}

func WithDebugFlag(ctx context.Context, debug *bool) context.Context {
	return context.WithValue(ctx, debugKey{}, debug)
}

// Debug returns a terminal on the context's stderr when debugging is enabled, or a discarding one otherwise.
func Debug(ctx context.Context) ansi.Terminal {
	debug, _ := ctx.Value(debugKey{}).(*bool)
	if debug == nil || !*debug {
		return ansi.Terminal{Writer: io.Discard}
	}
	return ansi.Terminal{Writer: Stderr(ctx)}
}

func DebugTimer(ctx context.Context, msg string) func() {
	start := time.Now()
	Debug(ctx).Printf("start: %s\n", msg)
	return func() {
		Debug(ctx).Printf("done:  %s: %s\n", msg, time.Since(start))
	}
}
