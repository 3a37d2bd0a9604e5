package aot

import (
	"fmt"
	"strings"

	"github.com/wamr-ext/wamr-ext-aot/internal"
)

// Target is an AOT target identifier of the form <arch>-<abi>.
type Target string

const (
	ArmGNU       Target = "arm-gnu"
	ArmGNUEABI   Target = "arm-gnueabi"
	ArmGNUEABIHF Target = "arm-gnueabihf"
	Aarch64GNU   Target = "aarch64-gnu"
	X8664GNU     Target = "x86_64-gnu"
)

// Targets is the closed set of supported targets in display order.
var Targets = []Target{
	ArmGNU,
	ArmGNUEABI,
	ArmGNUEABIHF,
	Aarch64GNU,
	X8664GNU,
}

type InvalidTargetError struct {
	Value string
}

func (err InvalidTargetError) Error() string {
	choices := make([]string, len(Targets))
	for i, target := range Targets {
		choices[i] = "'" + string(target) + "'"
	}
	return fmt.Sprintf("invalid choice: '%s' (choose from %s)", err.Value, strings.Join(choices, ", "))
}

func ParseTarget(value string) (Target, error) {
	target, ok := internal.Find(Targets, func(target Target) bool { return string(target) == value })
	if !ok {
		return "", InvalidTargetError{Value: value}
	}
	return target, nil
}

func (target Target) String() string { return string(target) }

// Arch returns the first segment of the identifier.
func (target Target) Arch() string {
	arch, _, _ := strings.Cut(string(target), "-")
	return arch
}

// ABI returns the last segment of the identifier.
func (target Target) ABI() string {
	return string(target)[strings.LastIndex(string(target), "-")+1:]
}
