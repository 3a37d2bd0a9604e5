package internal

import (
	"flag"
	"slices"
	"strings"

	"github.com/davidmdm/ansi"
)

// CutArgs splits args around the first "--".
func CutArgs(args []string) ([]string, []string) {
	idx := slices.Index(args, "--")
	if idx == -1 {
		return args, nil
	}
	return args[:idx], args[idx+1:]
}

// ParseInterspersed parses flags found anywhere in args and returns the positional arguments in order.
// Single-letter value flags may carry their value attached, as in -ofoo.aot.
// Callers must cut any "--" beforehand.
func ParseInterspersed(flagset *flag.FlagSet, args []string) ([]string, error) {
	args = splitAttached(flagset, args)

	var positional []string
	for {
		if err := flagset.Parse(args); err != nil {
			return nil, err
		}
		if flagset.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, flagset.Arg(0))
		args = flagset.Args()[1:]
	}
}

// splitAttached rewrites -Xvalue into -X value when X is a single-letter non-boolean flag
// and -Xvalue is not itself a defined flag. Values consumed by a preceding flag are left alone.
func splitAttached(flagset *flag.FlagSet, args []string) []string {
	result := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
			result = append(result, arg)
			continue
		}

		name, _, hasValue := strings.Cut(arg[1:], "=")
		if def := flagset.Lookup(name); def != nil {
			result = append(result, arg)
			if !hasValue && !isBoolFlag(def) && i+1 < len(args) {
				i++
				result = append(result, args[i])
			}
			continue
		}

		if short := flagset.Lookup(arg[1:2]); short != nil && !isBoolFlag(short) {
			result = append(result, arg[:2], arg[2:])
			continue
		}

		result = append(result, arg)
	}
	return result
}

func isBoolFlag(def *flag.Flag) bool {
	value, ok := def.Value.(interface{ IsBoolFlag() bool })
	return ok && value.IsBoolFlag()
}

var (
	cyan   = ansi.MakeStyle(ansi.FgCyan)
	yellow = ansi.MakeStyle(ansi.FgYellow)
)

func Colorize(value string) string {
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		if len(line) == 0 || line[0] != '!' {
			continue
		}

		color, line, _ := strings.Cut(line, " ")
		switch color {
		case "!cyan":
			lines[i] = cyan.Sprint(line)
		case "!yellow":
			lines[i] = yellow.Sprint(line)
		default:
			lines[i] = line
		}
	}
	return strings.Join(lines, "\n")
}
