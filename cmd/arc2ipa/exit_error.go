package main

import "fmt"

// Process exit codes.
const (
	ExitOK      = 0 // Every job succeeded, or there was nothing to export.
	ExitFailure = 1 // At least one job failed, or the batch was interrupted.
	ExitUsage   = 2 // Invalid flags, configuration or paths.
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

func failure(err error) error {
	return &ExitError{Code: ExitFailure, Err: err}
}
