package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime/debug"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/wamr-ext/wamr-ext-aot/internal"
)

func Version(ctx context.Context, settings GlobalSettings) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Errorf("build information unavailable")
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)

	tbl.AppendRow(table.Row{"wamr-ext-aot", info.Main.Version})
	tbl.AppendRow(table.Row{"go", info.GoVersion})

	for _, mod := range info.Deps {
		if mod.Path == "github.com/tetratelabs/wazero" {
			tbl.AppendRow(table.Row{"wazero", mod.Version})
		}
	}

	compiler, err := exec.LookPath(settings.Compiler)
	if err != nil {
		compiler = "not found: " + settings.Compiler
	}
	tbl.AppendRow(table.Row{"wamrc", compiler})

	_, err = fmt.Fprintln(internal.Stdout(ctx), tbl.Render())
	return err
}
