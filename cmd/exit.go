package cmd

import (
	"fmt"

	"github.com/ethpandaops/query-validator/internal/testing/result"
)

// Process exit codes.
const (
	// ExitOK means every test passed.
	ExitOK = 0
	// ExitFailures means at least one test failed and none errored.
	ExitFailures = 1
	// ExitErrors means at least one test could not be executed.
	ExitErrors = 2
	// ExitConfig means the run could not start.
	ExitConfig = 3
)

// ExitError carries a process exit code out of a command. Err may be nil
// when the command already reported the problem.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}

	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func configError(err error) error {
	return &ExitError{Code: ExitConfig, Err: err}
}

// exitCodeFor maps a run summary to the process exit code.
func exitCodeFor(summary *result.Summary) int {
	switch {
	case summary.Errors > 0:
		return ExitErrors
	case summary.Failed > 0:
		return ExitFailures
	default:
		return ExitOK
	}
}
