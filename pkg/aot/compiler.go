package aot

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"al.essio.dev/pkg/shellescape"
)

// Compiler runs the external wamrc binary. Nil streams are inherited from the current process.
type Compiler struct {
	Path   string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type LaunchError struct {
	Path string
	Err  error
}

func (err LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", err.Path, err.Err)
}

func (err LaunchError) Unwrap() error { return err.Err }

func (compiler Compiler) Command(inv Invocation) *exec.Cmd {
	cmd := exec.Command(cmp.Or(compiler.Path, DefaultCompiler), inv.Args()...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr

	if compiler.Stdin != nil {
		cmd.Stdin = compiler.Stdin
	}
	if compiler.Stdout != nil {
		cmd.Stdout = compiler.Stdout
	}
	if compiler.Stderr != nil {
		cmd.Stderr = compiler.Stderr
	}

	return cmd
}

// Run executes wamrc and blocks until it exits. The returned code is the child's exit code;
// a child killed by a signal reports 128 plus the signal number.
func (compiler Compiler) Run(inv Invocation) (int, error) {
	cmd := compiler.Command(inv)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 1, LaunchError{Path: cmd.Path, Err: err}
	}

	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal()), nil
	}

	return exitErr.ExitCode(), nil
}

// CommandLine renders the command as a line that can be pasted into a POSIX shell.
func CommandLine(cmd *exec.Cmd) string {
	return shellescape.QuoteCommand(cmd.Args)
}
