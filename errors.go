package tock

import (
	"errors"
	"fmt"
)

// Two error classes separate "the board failed to boot or run" from "the
// tests ran and some failed". The process exit code depends on which one
// reaches main: runtime errors exit 2, test failures exit 1.

// RuntimeError wraps operational failures: unreadable board manifests,
// registry misconfiguration, a kernel loop that could not start.
type RuntimeError struct {
	Err error
}

func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsRuntimeError reports whether err is or wraps a RuntimeError.
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// TestFailureError carries the summary of a completed run in which at
// least one test failed.
type TestFailureError struct {
	Message string
}

func NewTestFailureError(message string) *TestFailureError {
	return &TestFailureError{Message: message}
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %s", e.Message)
}

// IsTestFailureError reports whether err is or wraps a TestFailureError.
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}
