package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/wamr-ext/wamr-ext-aot/internal"
	"github.com/wamr-ext/wamr-ext-aot/pkg/aot"
)

type TargetsParams struct {
	YAML  bool
	Color bool
}

//go:embed cmd_targets_help.txt
var targetsHelp string

func init() {
	targetsHelp = strings.TrimSpace(internal.Colorize(targetsHelp))
}

func GetTargetsParams(ctx context.Context, args []string) (*TargetsParams, error) {
	flagset := flag.NewFlagSet("targets", flag.ContinueOnError)
	flagset.SetOutput(internal.Stderr(ctx))

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), targetsHelp)
		flagset.PrintDefaults()
	}

	var params TargetsParams

	flagset.BoolVar(&params.YAML, "yaml", false, "output targets as yaml")
	flagset.BoolVar(&params.Color, "color", internal.IsTerminal(internal.Stdout(ctx)), "use colored output in tables")

	if err := flagset.Parse(args); err != nil {
		return nil, internal.UsageError{Err: err}
	}
	if flagset.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %s", strings.Join(flagset.Args(), " "))
		fmt.Fprintln(flagset.Output(), "error:", err)
		return nil, internal.UsageError{Err: err}
	}

	return &params, nil
}

type targetInfo struct {
	Target      string   `yaml:"target"`
	Arch        string   `yaml:"arch"`
	ABI         string   `yaml:"abi"`
	CPU         string   `yaml:"cpu"`
	CPUFeatures string   `yaml:"cpuFeatures,omitempty"`
	Flags       []string `yaml:"flags"`
}

func ListTargets(ctx context.Context, params TargetsParams) error {
	infos := make([]targetInfo, len(aot.Targets))
	for i, target := range aot.Targets {
		inv := aot.NewInvocation(target, "", "")
		infos[i] = targetInfo{
			Target:      target.String(),
			Arch:        inv.Arch,
			ABI:         inv.ABI,
			CPU:         inv.CPU,
			CPUFeatures: inv.CPUFeatures,
			Flags:       inv.Flags(),
		}
	}

	out := internal.Stdout(ctx)

	if params.YAML {
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(infos); err != nil {
			return fmt.Errorf("failed to encode targets: %w", err)
		}
		return encoder.Close()
	}

	tbl := newTable(params.Color)
	tbl.AppendHeader(table.Row{"target", "arch", "abi", "cpu", "cpu features"})
	for _, info := range infos {
		tbl.AppendRow(table.Row{info.Target, info.Arch, info.ABI, info.CPU, info.CPUFeatures})
	}

	_, err := fmt.Fprintln(out, tbl.Render())
	return err
}

func newTable(color bool) table.Writer {
	tbl := table.NewWriter()
	if color {
		tbl.SetStyle(table.StyleColoredBright)
	} else {
		tbl.SetStyle(table.StyleRounded)
	}
	return tbl
}
