// Package reporting implements the deterministic, line-oriented text
// protocol for test progress and summaries, and the sinks that persist a
// run's results.
package reporting

import (
	"github.com/charles37/tock/kernel/debug"
	"github.com/charles37/tock/types"
)

// The kernel suite line protocol. Suite start emits the total test count,
// each test emits a start line then exactly one result line, and the suite
// ends with the counters and an implicit verdict. Consumers (CI scrapers,
// serial-console watchers) parse these lines verbatim, so the vocabulary is
// fixed.

// SuiteStart emits the suite-start line with the total test count.
func SuiteStart(count int) {
	debug.Print("[TEST] Starting kernel test suite (%d tests)", count)
}

// TestStart emits the per-test start line.
func TestStart(name string) {
	debug.Print("[TEST] Running %s", name)
}

// TestPass emits the pass line for a test.
func TestPass(name string) {
	debug.Print("[PASS] %s", name)
}

// TestFail emits the fail line with the rendered diagnostic.
func TestFail(name string, result types.TestResult) {
	debug.Print("[FAIL] %s: %s", name, result.DiagnosticText())
}

// TestSkip emits the skip line with the reason.
func TestSkip(name string, reason string) {
	debug.Print("[SKIP] %s: %s", name, reason)
}

// SuiteComplete emits the suite-complete summary line. The skipped count is
// appended only when tests were skipped; it is never silently dropped.
func SuiteComplete(stats types.SuiteStats) {
	if stats.Skipped > 0 {
		debug.Print("[TEST] Test suite complete: %d passed, %d failed, %d skipped",
			stats.Passed, stats.Failed, stats.Skipped)
		return
	}
	debug.Print("[TEST] Test suite complete: %d passed, %d failed", stats.Passed, stats.Failed)
}
