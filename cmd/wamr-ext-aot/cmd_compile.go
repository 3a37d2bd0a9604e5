package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"github.com/wamr-ext/wamr-ext-aot/internal"
	"github.com/wamr-ext/wamr-ext-aot/pkg/aot"
)

type CompileParams struct {
	GlobalSettings
	Target aot.Target
	Input  string
	Output string
	Extra  []string
	DryRun bool
}

//go:embed cmd_help.txt
var rootHelp string

func init() {
	rootHelp = strings.TrimSpace(internal.Colorize(rootHelp))
}

func GetCompileParams(ctx context.Context, settings GlobalSettings, args []string) (*CompileParams, error) {
	flagset := flag.NewFlagSet("wamr-ext-aot", flag.ContinueOnError)
	flagset.SetOutput(internal.Stderr(ctx))

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), rootHelp)
		flagset.PrintDefaults()
	}

	params := CompileParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Output, "o", aot.DefaultOutput, "output file")
	flagset.BoolVar(&params.DryRun, "dry-run", false, "print the wamrc command line instead of running it")

	args, params.Extra = internal.CutArgs(args)

	positional, err := internal.ParseInterspersed(flagset, args)
	if err != nil {
		return nil, internal.UsageError{Err: err}
	}

	usageError := func(format string, args ...any) error {
		err := fmt.Errorf(format, args...)
		flagset.Usage()
		fmt.Fprintf(flagset.Output(), "\nerror: %v\n", err)
		return internal.UsageError{Err: err}
	}

	switch len(positional) {
	case 0:
		return nil, usageError("the following arguments are required: TARGET, INPUT_FILE")
	case 1:
		return nil, usageError("the following arguments are required: INPUT_FILE")
	case 2:
	default:
		return nil, usageError("unrecognized arguments: %s", strings.Join(positional[2:], " "))
	}

	params.Target, err = aot.ParseTarget(positional[0])
	if err != nil {
		return nil, usageError("argument TARGET: %w", err)
	}

	params.Input = positional[1]

	return &params, nil
}

func Compile(ctx context.Context, params CompileParams) error {
	inv := aot.NewInvocation(params.Target, params.Input, params.Output)
	inv.Extra = params.Extra

	streams := internal.StreamsFrom(ctx)

	compiler := aot.Compiler{
		Path:   params.Compiler,
		Stdin:  streams.In,
		Stdout: streams.Out,
		Stderr: streams.Err,
	}

	cmd := compiler.Command(inv)

	internal.Debug(ctx).Printf("compiler: %s\n", cmd.Path)
	internal.Debug(ctx).Printf("command:  %s\n", aot.CommandLine(cmd))

	if params.DryRun {
		_, err := fmt.Fprintln(streams.Out, aot.CommandLine(cmd))
		return err
	}

	code, err := compiler.Run(inv)
	if err != nil {
		return err
	}
	if code != 0 {
		return internal.ExitCode(code)
	}

	return nil
}
