// Package hardware implements the board-level hardware test framework: a
// synchronous sibling of the kernel test runner used for peripheral and
// accelerator bring-up.
//
// Hardware tests run in a direct loop with no deferred-call machinery.
// That is acceptable only because peripheral bring-up happens once at boot,
// before the kernel loop interleaves work; kernel-invariant tests must go
// through the deferred runner instead.
package hardware

import (
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/charles37/tock/kernel/debug"
	"github.com/charles37/tock/metrics"
	"github.com/charles37/tock/types"
)

// HardwareSuiteName labels the hardware suite in metrics and reports.
const HardwareSuiteName = "hardware"

// Test is the capability set a hardware test implements.
type Test interface {
	// Name identifies the test for reporting.
	Name() string

	// SupportedBoards lists the boards this test applies to. An empty
	// list means the test runs on every board.
	SupportedBoards() []string

	// Run executes the test; a nil error is a pass.
	Run() error
}

// Outcome records one classified hardware test execution.
type Outcome struct {
	Name     string
	Result   types.TestResult
	Duration time.Duration
}

// Runner executes an ordered sequence of hardware tests for one board.
type Runner struct {
	log   log.Logger
	tests []Test
	board string
	runID string
}

// Config holds configuration for creating a hardware test runner.
type Config struct {
	Log   log.Logger
	Tests []Test
	Board string
	RunID string
}

// NewRunner creates a hardware test runner for the given board.
func NewRunner(cfg Config) *Runner {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	return &Runner{
		log:   cfg.Log,
		tests: cfg.Tests,
		board: cfg.Board,
		runID: cfg.RunID,
	}
}

// RunAll executes every test in sequence, synchronously, and reports the
// summary. Tests that do not support the current board are classified Skip
// without being invoked.
func (r *Runner) RunAll() ([]Outcome, types.SuiteStats) {
	debug.Print("=== Hardware Test Suite Starting ===")
	debug.Print("Board: %s", r.board)
	debug.Print("Tests: %d", len(r.tests))
	debug.Print("")

	start := time.Now()
	stats := types.SuiteStats{StartTime: start}
	outcomes := make([]Outcome, 0, len(r.tests))

	for _, test := range r.tests {
		begin := time.Now()
		result := r.runSingle(test)
		stats.Record(result.Status)
		outcomes = append(outcomes, Outcome{
			Name:     test.Name(),
			Result:   result,
			Duration: time.Since(begin),
		})
		metrics.RecordTest(r.board, r.runID, HardwareSuiteName, HardwareSuiteName, test.Name(), result.Status)
	}

	stats.EndTime = time.Now()
	duration := stats.EndTime.Sub(start)

	debug.Print("")
	debug.Print("=== Test Summary ===")
	debug.Print("Passed:  %d", stats.Passed)
	debug.Print("Failed:  %d", stats.Failed)
	debug.Print("Skipped: %d", stats.Skipped)
	debug.Print("Total:   %d", stats.Total)

	status := stats.Status()
	if stats.Failed == 0 {
		debug.Print("=== All tests passed! ===")
	} else {
		debug.Print("=== Tests FAILED ===")
	}
	metrics.RecordSuite(r.board, r.runID, HardwareSuiteName, status, stats, duration)
	r.log.Info("Hardware test suite complete",
		"run_id", r.runID,
		"board", r.board,
		"status", status,
		"passed", stats.Passed,
		"failed", stats.Failed,
		"skipped", stats.Skipped)

	return outcomes, stats
}

// runSingle classifies one test: board gate first, then execution. The
// gated path must never invoke Run.
func (r *Runner) runSingle(test Test) types.TestResult {
	debug.Print("Running: %s", test.Name())

	supported := test.SupportedBoards()
	if len(supported) > 0 && !slices.Contains(supported, r.board) {
		debug.Print("  SKIP: Not supported on %s", r.board)
		return types.Skip("board not supported")
	}

	if err := test.Run(); err != nil {
		debug.Print("  FAIL: %v", err)
		return types.Fail([]byte(err.Error()))
	}
	debug.Print("  PASS")
	return types.Pass()
}
