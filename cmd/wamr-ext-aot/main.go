package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/davidmdm/x/xcontext"

	"github.com/wamr-ext/wamr-ext-aot/internal"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	ctx, done := xcontext.WithSignalCancelation(context.Background(), syscall.SIGINT)
	defer done()

	settings, err := getSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read environment:", err)
		return 1
	}

	return exitCode(os.Stderr, run(ctx, settings, os.Args[1:]))
}

// exitCode maps the result of run to a process exit status.
func exitCode(stderr io.Writer, err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if code, ok := internal.ExitCodeFrom(err); ok {
		return code
	}
	if internal.IsUsageError(err) {
		return 2
	}
	fmt.Fprintln(stderr, err.Error())
	return 1
}

func run(ctx context.Context, settings GlobalSettings, args []string) error {
	var subcmd string
	if len(args) > 0 {
		subcmd = args[0]
	}

	switch subcmd {
	case "targets":
		params, err := GetTargetsParams(ctx, args[1:])
		if err != nil {
			return err
		}
		return ListTargets(ctx, *params)
	case "inspect":
		params, err := GetInspectParams(ctx, settings, args[1:])
		if err != nil {
			return err
		}
		ctx = internal.WithDebugFlag(ctx, &params.Debug)
		return Inspect(ctx, *params)
	case "version":
		return Version(ctx, settings)
	default:
		params, err := GetCompileParams(ctx, settings, args)
		if err != nil {
			return err
		}
		ctx = internal.WithDebugFlag(ctx, &params.Debug)
		return Compile(ctx, *params)
	}
}
