package aot

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/davidmdm/x/xerr"
)

var (
	wasmMagic = []byte("\x00asm")
	aotMagic  = []byte("\x00aot")
)

// AlreadyCompiledError is returned when the input is a WAMR AOT binary rather than a wasm module.
type AlreadyCompiledError struct {
	Path    string
	Version uint32
}

func (err AlreadyCompiledError) Error() string {
	return fmt.Sprintf("%s is already AOT-compiled (wamr aot format version %d)", err.Path, err.Version)
}

type NotWasmError struct {
	Path  string
	Magic []byte
}

func (err NotWasmError) Error() string {
	return fmt.Sprintf("%s is not a wasm module: unexpected header %q", err.Path, err.Magic)
}

// LoadWasm reads a wasm module from path, transparently decompressing .gz files,
// and checks its header before any further processing.
func LoadWasm(path string) ([]byte, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := checkHeader(path, data); err != nil {
		return nil, err
	}
	return data, nil
}

func checkHeader(path string, data []byte) error {
	magic := data[:min(len(data), 4)]

	switch {
	case bytes.Equal(magic, wasmMagic):
		return nil
	case bytes.Equal(magic, aotMagic):
		var version uint32
		if len(data) >= 8 {
			version = binary.LittleEndian.Uint32(data[4:8])
		}
		return AlreadyCompiledError{Path: path, Version: version}
	default:
		return NotWasmError{Path: path, Magic: magic}
	}
}

func readFile(path string) (data []byte, err error) {
	if filepath.Ext(path) != ".gz" {
		return os.ReadFile(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = xerr.MultiErrFrom("", err, file.Close())
	}()

	reader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer func() {
		err = xerr.MultiErrFrom("", err, reader.Close())
	}()

	return io.ReadAll(reader)
}
