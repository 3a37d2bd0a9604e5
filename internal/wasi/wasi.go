package wasi

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/davidmdm/x/xerr"
)

type Function struct {
	Module  string
	Name    string
	Params  []string
	Results []string

	// Provided is set on imports the wamr-ext runtime resolves natively.
	Provided bool
}

func (fn Function) Signature() string {
	return fmt.Sprintf("(%s) -> (%s)", strings.Join(fn.Params, ", "), strings.Join(fn.Results, ", "))
}

type Memory struct {
	Imported bool
	Module   string
	Name     string
	Min      uint32
	Max      uint32
	HasMax   bool
}

type Module struct {
	Name           string
	ImportedFuncs  []Function
	ExportedFuncs  []Function
	ImportedMemory []Memory
	ExportedMemory []Memory
	CustomSections int

	// Unresolved counts imported functions the wamr-ext runtime does not provide.
	Unresolved int

	// Command reports whether the module exports _start.
	Command bool
}

// Inspect compiles the module without instantiating it and reports its imports and exports.
// Compilation validates the binary, so malformed modules are reported as errors.
func Inspect(ctx context.Context, wasm []byte) (module *Module, err error) {
	cfg := wazero.
		NewRuntimeConfig().
		WithCloseOnContextDone(true).
		WithCustomSections(true)

	runtime := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer func() {
		err = xerr.MultiErrFrom("", err, runtime.Close(ctx))
	}()

	compiled, err := runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}
	defer func() {
		err = xerr.MultiErrFrom("", err, compiled.Close(ctx))
	}()

	module = &Module{
		Name:           compiled.Name(),
		CustomSections: len(compiled.CustomSections()),
	}

	for _, def := range compiled.ImportedFunctions() {
		moduleName, name, _ := def.Import()
		fn := functionFrom(moduleName, name, def)
		fn.Provided = Provided(moduleName, name)
		module.ImportedFuncs = append(module.ImportedFuncs, fn)
	}

	for name, def := range compiled.ExportedFunctions() {
		module.ExportedFuncs = append(module.ExportedFuncs, functionFrom("", name, def))
		if name == "_start" {
			module.Command = true
		}
	}

	for _, def := range compiled.ImportedMemories() {
		moduleName, name, _ := def.Import()
		mem := memoryFrom(moduleName, name, def)
		mem.Imported = true
		module.ImportedMemory = append(module.ImportedMemory, mem)
	}

	for name, def := range compiled.ExportedMemories() {
		module.ExportedMemory = append(module.ExportedMemory, memoryFrom("", name, def))
	}

	for _, fn := range module.ImportedFuncs {
		if !fn.Provided {
			module.Unresolved++
		}
	}

	slices.SortFunc(module.ExportedFuncs, func(a, b Function) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(module.ExportedMemory, func(a, b Memory) int { return strings.Compare(a.Name, b.Name) })

	return module, nil
}

func functionFrom(module, name string, def api.FunctionDefinition) Function {
	return Function{
		Module:  module,
		Name:    name,
		Params:  valueTypeNames(def.ParamTypes()),
		Results: valueTypeNames(def.ResultTypes()),
	}
}

func memoryFrom(module, name string, def api.MemoryDefinition) Memory {
	maxPages, hasMax := def.Max()
	return Memory{
		Module: module,
		Name:   name,
		Min:    def.Min(),
		Max:    maxPages,
		HasMax: hasMax,
	}
}

func valueTypeNames(types []api.ValueType) []string {
	names := make([]string, len(types))
	for i, typ := range types {
		names[i] = api.ValueTypeName(typ)
	}
	return names
}
