// Package types contains shared types used across the kernel testing framework
package types

import (
	"fmt"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/acarl005/stripansi"
)

// TestStatus represents the possible outcomes of a test execution
type TestStatus string

const (
	TestStatusPass TestStatus = "pass"
	TestStatusFail TestStatus = "fail"
	TestStatusSkip TestStatus = "skip"
)

// InvalidDiagnosticPlaceholder is rendered in place of a failure diagnostic
// whose bytes are not valid text.
const InvalidDiagnosticPlaceholder = "(invalid UTF-8)"

// TestResult is the tagged outcome value returned by a test function.
// Exactly one of the three statuses applies; Diagnostic is only meaningful
// for failures and Reason only for skips.
type TestResult struct {
	Status     TestStatus
	Diagnostic []byte
	Reason     string
}

// Pass returns a passing result.
func Pass() TestResult {
	return TestResult{Status: TestStatusPass}
}

// Fail returns a failing result carrying the given diagnostic bytes.
func Fail(diagnostic []byte) TestResult {
	return TestResult{Status: TestStatusFail, Diagnostic: diagnostic}
}

// Failf returns a failing result with a formatted diagnostic message,
// prefixed with the caller's source location.
func Failf(format string, args ...any) TestResult {
	msg := fmt.Sprintf(format, args...)
	if _, file, line, ok := runtime.Caller(1); ok {
		msg = fmt.Sprintf("%s:%d: %s", file, line, msg)
	}
	return TestResult{Status: TestStatusFail, Diagnostic: []byte(msg)}
}

// Skip returns a skipped result with the given reason.
func Skip(reason string) TestResult {
	return TestResult{Status: TestStatusSkip, Reason: reason}
}

// DiagnosticText renders the failure diagnostic as display text.
// Diagnostics that are not valid UTF-8 render as a fixed placeholder rather
// than failing; ANSI escape sequences are stripped so the line protocol
// stays clean.
func (r TestResult) DiagnosticText() string {
	if len(r.Diagnostic) == 0 {
		return ""
	}
	if !utf8.Valid(r.Diagnostic) {
		return InvalidDiagnosticPlaceholder
	}
	return stripansi.Strip(string(r.Diagnostic))
}

// SuiteStats tracks test counts at the suite level
type SuiteStats struct {
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
}

// Record counts one classified test outcome.
func (s *SuiteStats) Record(status TestStatus) {
	s.Total++
	switch status {
	case TestStatusPass:
		s.Passed++
	case TestStatusFail:
		s.Failed++
	case TestStatusSkip:
		s.Skipped++
	}
}

// Status computes the overall suite verdict. A single failure fails the
// suite; skipped tests count toward neither side of the verdict.
func (s *SuiteStats) Status() TestStatus {
	if s.Failed > 0 {
		return TestStatusFail
	}
	if s.Passed == 0 && s.Skipped > 0 {
		return TestStatusSkip
	}
	return TestStatusPass
}
