package internal

import (
	"errors"
	"strconv"
)

// UsageError reports bad command-line input. The process exits with status 2 and nothing is spawned.
type UsageError struct {
	Err error
}

func (err UsageError) Error() string { return err.Err.Error() }

func (err UsageError) Unwrap() error { return err.Err }

func IsUsageError(err error) bool {
	var usage UsageError
	return errors.As(err, &usage)
}

// ExitCode carries a child process exit status that must become the process exit status verbatim.
type ExitCode int

func (code ExitCode) Error() string { return "exit status " + strconv.Itoa(int(code)) }

func ExitCodeFrom(err error) (int, bool) {
	var code ExitCode
	if errors.As(err, &code) {
		return int(code), true
	}
	return 0, false
}
