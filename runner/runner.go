// Package runner implements the kernel test runner: a state machine that
// walks the sealed registry one descriptor per deferred-call notification.
//
// Each test step is a callback triggered from the kernel main loop, never a
// recursive call into the next test, so the suite advances without growing
// the stack and without starving other deferred-call clients. Test i+1 does
// not start until test i's classification and counter update are committed.
package runner

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/charles37/tock/deferred"
	"github.com/charles37/tock/metrics"
	"github.com/charles37/tock/registry"
	"github.com/charles37/tock/reporting"
	"github.com/charles37/tock/types"
)

// KernelSuiteName labels the kernel suite in metrics and reports.
const KernelSuiteName = "kernel"

// State is the runner's lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateDispatching
	StateComplete
)

// String implements the Stringer interface for State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// TestOutcome records one classified test execution.
type TestOutcome struct {
	Module   string
	Name     string
	Result   types.TestResult
	Duration time.Duration
}

// SuiteResult captures the completed suite run.
type SuiteResult struct {
	RunID    string
	Board    string
	Status   types.TestStatus
	Stats    types.SuiteStats
	Duration time.Duration
	Outcomes []TestOutcome
}

// String implements the Stringer interface for SuiteResult
func (r *SuiteResult) String() string {
	return fmt.Sprintf("RunID: %s, Status: %s, Passed: %d, Failed: %d, Skipped: %d, Duration: %s",
		r.RunID, r.Status, r.Stats.Passed, r.Stats.Failed, r.Stats.Skipped, r.Duration)
}

// Config holds configuration for creating a kernel test runner.
type Config struct {
	Registry   *registry.Registry
	Dispatcher *deferred.Dispatcher
	Log        log.Logger
	Board      string // board identifier, used for metrics labels
	RunID      string // generated when empty
}

// KernelTestRunner walks the registry one entry at a time. The cursor,
// counters, and outcome list are owned exclusively by the runner and only
// mutated from the kernel loop goroutine; no locking of the test state is
// needed because there is no concurrent mutation, only single-threaded
// re-entry through the dispatcher. The small mutex below guards the
// Start/state transitions visible from the boot goroutine.
type KernelTestRunner struct {
	log     log.Logger
	entries []registry.Entry
	call    *deferred.Call
	board   string
	runID   string

	mu    sync.Mutex
	state State

	index    int
	stats    types.SuiteStats
	outcomes []TestOutcome
	started  time.Time

	done   chan struct{}
	result *SuiteResult
}

// NewKernelTestRunner creates a runner over the registry and registers it
// as a deferred-call client. The runner is created once at boot; there is
// no restart capability, a fresh boot is required to re-run the suite.
func NewKernelTestRunner(cfg Config) (*KernelTestRunner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("runner: registry is required")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("runner: dispatcher is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.New().String()
	}

	r := &KernelTestRunner{
		log:     cfg.Log,
		entries: cfg.Registry.Entries(),
		board:   cfg.Board,
		runID:   cfg.RunID,
		state:   StateIdle,
		done:    make(chan struct{}),
	}
	r.call = cfg.Dispatcher.Register(r)
	return r, nil
}

// Start moves the runner from Idle to Dispatching and requests the first
// notification. It never invokes a test inline. Starting a runner that has
// already been started is an error.
func (r *KernelTestRunner) Start() error {
	r.mu.Lock()
	if r.state != StateIdle {
		state := r.state
		r.mu.Unlock()
		return fmt.Errorf("runner: Start called in state %s", state)
	}
	r.state = StateDispatching
	r.started = time.Now()
	r.stats.StartTime = r.started
	r.mu.Unlock()

	r.log.Info("Starting kernel test suite", "run_id", r.runID, "tests", len(r.entries))
	reporting.SuiteStart(len(r.entries))
	r.call.Set()
	return nil
}

// HandleDeferredCall advances the suite by exactly one step. It implements
// deferred.Client and runs on the kernel loop goroutine.
func (r *KernelTestRunner) HandleDeferredCall() {
	r.mu.Lock()
	state := r.state
	r.mu.Unlock()
	if state != StateDispatching {
		r.log.Warn("Deferred call outside Dispatching state ignored", "state", state)
		return
	}

	if r.index >= len(r.entries) {
		r.complete()
		return
	}

	entry := r.entries[r.index]
	name := entry.Descriptor.Name
	reporting.TestStart(name)

	begin := time.Now()
	result := r.invoke(entry.Descriptor)
	elapsed := time.Since(begin)

	switch result.Status {
	case types.TestStatusPass:
		reporting.TestPass(name)
	case types.TestStatusSkip:
		reporting.TestSkip(name, result.Reason)
	default:
		result.Status = types.TestStatusFail
		reporting.TestFail(name, result)
	}
	r.stats.Record(result.Status)
	r.outcomes = append(r.outcomes, TestOutcome{
		Module:   entry.Module,
		Name:     name,
		Result:   result,
		Duration: elapsed,
	})
	metrics.RecordTest(r.board, r.runID, KernelSuiteName, entry.Module, name, result.Status)

	r.index++
	r.call.Set()
}

// invoke runs a descriptor's function to completion, converting any panic
// into a classified failure so nothing escapes the runner boundary
// unclassified.
func (r *KernelTestRunner) invoke(desc types.TestDescriptor) (result types.TestResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Test function panicked", "test", desc.Name, "panic", rec)
			result = types.Fail(fmt.Appendf(nil, "panic: %v", rec))
		}
	}()

	switch desc.Kind {
	case types.TestKindSync:
		return desc.Sync()
	default:
		return types.Fail(fmt.Appendf(nil, "unsupported test kind %q", desc.Kind))
	}
}

func (r *KernelTestRunner) complete() {
	r.stats.EndTime = time.Now()
	duration := r.stats.EndTime.Sub(r.started)

	reporting.SuiteComplete(r.stats)
	status := r.stats.Status()
	metrics.RecordSuite(r.board, r.runID, KernelSuiteName, status, r.stats, duration)
	r.log.Info("Kernel test suite complete",
		"run_id", r.runID,
		"status", status,
		"passed", r.stats.Passed,
		"failed", r.stats.Failed,
		"skipped", r.stats.Skipped,
		"duration", duration)

	r.result = &SuiteResult{
		RunID:    r.runID,
		Board:    r.board,
		Status:   status,
		Stats:    r.stats,
		Duration: duration,
		Outcomes: r.outcomes,
	}

	r.mu.Lock()
	r.state = StateComplete
	r.mu.Unlock()
	close(r.done)
}

// Done is closed once the suite has reported its summary and the runner has
// become permanently idle.
func (r *KernelTestRunner) Done() <-chan struct{} {
	return r.done
}

// Result returns the completed suite result, or nil before completion.
// Callers must observe Done first.
func (r *KernelTestRunner) Result() *SuiteResult {
	select {
	case <-r.done:
		return r.result
	default:
		return nil
	}
}

// State returns the runner's current lifecycle phase.
func (r *KernelTestRunner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// RunID returns the identifier assigned to this suite run.
func (r *KernelTestRunner) RunID() string {
	return r.runID
}
