package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/wamr-ext/wamr-ext-aot/internal"
	"github.com/wamr-ext/wamr-ext-aot/internal/wasi"
	"github.com/wamr-ext/wamr-ext-aot/pkg/aot"
)

type InspectParams struct {
	GlobalSettings
	Path  string
	Color bool
}

//go:embed cmd_inspect_help.txt
var inspectHelp string

func init() {
	inspectHelp = strings.TrimSpace(internal.Colorize(inspectHelp))
}

func GetInspectParams(ctx context.Context, settings GlobalSettings, args []string) (*InspectParams, error) {
	flagset := flag.NewFlagSet("inspect", flag.ContinueOnError)
	flagset.SetOutput(internal.Stderr(ctx))

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), inspectHelp)
		flagset.PrintDefaults()
	}

	params := InspectParams{GlobalSettings: settings}

	flagset.BoolVar(&params.Debug, "debug", false, "print debug information to stderr")
	flagset.BoolVar(&params.Color, "color", internal.IsTerminal(internal.Stdout(ctx)), "use colored output in tables")

	positional, err := internal.ParseInterspersed(flagset, args)
	if err != nil {
		return nil, internal.UsageError{Err: err}
	}
	if len(positional) != 1 {
		err := fmt.Errorf("expected exactly one PATH argument but got %d", len(positional))
		fmt.Fprintln(flagset.Output(), "error:", err)
		return nil, internal.UsageError{Err: err}
	}

	params.Path = positional[0]

	return &params, nil
}

func Inspect(ctx context.Context, params InspectParams) error {
	wasm, err := func() ([]byte, error) {
		defer internal.DebugTimer(ctx, "loading "+params.Path)()
		return aot.LoadWasm(params.Path)
	}()
	if err != nil {
		return fmt.Errorf("failed to load wasm: %w", err)
	}

	module, err := func() (*wasi.Module, error) {
		defer internal.DebugTimer(ctx, "compiling module")()
		return wasi.Inspect(ctx, wasm)
	}()
	if err != nil {
		return fmt.Errorf("invalid module %s: %w", params.Path, err)
	}

	summary := newTable(params.Color)
	summary.AppendRows([]table.Row{
		{"path", params.Path},
		{"name", module.Name},
		{"size", fmt.Sprintf("%d bytes", len(wasm))},
		{"wasi command", module.Command},
		{"custom sections", module.CustomSections},
		{"unresolved imports", module.Unresolved},
	})

	funcs := newTable(params.Color)
	funcs.AppendHeader(table.Row{"kind", "module", "name", "signature", "host"})
	for _, fn := range module.ImportedFuncs {
		host := "unresolved"
		if fn.Provided {
			host = "provided by wamr-ext"
		}
		funcs.AppendRow(table.Row{"import", fn.Module, fn.Name, fn.Signature(), host})
	}
	for _, fn := range module.ExportedFuncs {
		funcs.AppendRow(table.Row{"export", "", fn.Name, fn.Signature(), ""})
	}

	memories := newTable(params.Color)
	memories.AppendHeader(table.Row{"kind", "module", "name", "min pages", "max pages"})
	for _, mem := range append(module.ImportedMemory, module.ExportedMemory...) {
		kind, maxPages := "export", "-"
		if mem.Imported {
			kind = "import"
		}
		if mem.HasMax {
			maxPages = fmt.Sprint(mem.Max)
		}
		memories.AppendRow(table.Row{kind, mem.Module, mem.Name, mem.Min, maxPages})
	}

	out := internal.Stdout(ctx)
	for _, tbl := range []table.Writer{summary, funcs, memories} {
		if _, err := fmt.Fprintln(out, tbl.Render()); err != nil {
			return err
		}
	}

	return nil
}
