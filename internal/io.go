package internal

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"
)

// Streams are the standard streams a command reads from and writes to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type streamsKey struct{}

func WithStreams(ctx context.Context, streams Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, streams)
}

// StreamsFrom returns the streams attached to ctx, falling back to the process's own for any unset stream.
func StreamsFrom(ctx context.Context) Streams {
	streams, _ := ctx.Value(streamsKey{}).(Streams)
	if streams.In == nil {
		streams.In = os.Stdin
	}
	if streams.Out == nil {
		streams.Out = os.Stdout
	}
	if streams.Err == nil {
		streams.Err = os.Stderr
	}
	return streams
}

func Stdout(ctx context.Context) io.Writer { return StreamsFrom(ctx).Out }

func Stderr(ctx context.Context) io.Writer { return StreamsFrom(ctx).Err }

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
