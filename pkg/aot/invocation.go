package aot

import "strings"

const (
	DefaultOutput   = "a.aot"
	DefaultCompiler = "wamrc"
)

// Invocation is the set of wamrc parameters derived for a single compilation.
type Invocation struct {
	Target      Target
	Arch        string
	ABI         string
	CPU         string
	CPUFeatures string
	Output      string
	Input       string

	// Extra flags are forwarded to wamrc verbatim ahead of the output flag.
	Extra []string
}

// NewInvocation derives the wamrc parameters for target. Output is used as given; callers apply DefaultOutput.
func NewInvocation(target Target, input, output string) Invocation {
	inv := Invocation{
		Target: target,
		Arch:   target.Arch(),
		ABI:    target.ABI(),
		CPU:    "generic",
		Output: output,
		Input:  input,
	}

	if inv.ABI == "gnueabi" {
		inv.ABI = "eabi"
	}

	switch {
	case strings.HasPrefix(string(target), "arm"):
		inv.Arch = "armv6"
		inv.CPUFeatures = "+vfp2"
	case strings.HasPrefix(string(target), "x86_64"):
		inv.CPU = "core2"
	}

	return inv
}

// Flags returns the target and codegen flags without output, input or extras.
func (inv Invocation) Flags() []string {
	flags := []string{
		"--target=" + inv.Arch,
		"--target-abi=" + inv.ABI,
		"--cpu=" + inv.CPU,
	}
	if inv.CPUFeatures != "" {
		flags = append(flags, "--cpu-features="+inv.CPUFeatures)
	}
	return append(flags, "--bounds-checks=1", "--disable-simd")
}

// Args returns the full wamrc argument list, input last.
func (inv Invocation) Args() []string {
	args := append(inv.Flags(), inv.Extra...)
	return append(args, "-o", inv.Output, inv.Input)
}
