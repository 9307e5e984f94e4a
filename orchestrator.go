package tock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/google/uuid"

	"github.com/charles37/tock/capabilities"
	"github.com/charles37/tock/exitcodes"
	"github.com/charles37/tock/hardware"
	"github.com/charles37/tock/hardware/hwtests"
	"github.com/charles37/tock/kernel"
	"github.com/charles37/tock/kernel/debug"
	"github.com/charles37/tock/metrics"
	"github.com/charles37/tock/registry"
	"github.com/charles37/tock/reporting"
	"github.com/charles37/tock/runner"
	"github.com/charles37/tock/types"
)

// orchestrator implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &Orchestrator{}

// Orchestrator boots the board once and runs its test suites to completion.
// There is no re-run capability; a fresh process is a fresh boot.
type Orchestrator struct {
	ctx      context.Context
	config   *Config
	version  string
	runID    string
	registry *registry.Registry
	kernel   *kernel.Kernel
	runner   *runner.KernelTestRunner
	sink     *reporting.TextSummarySink
	tracer   trace.Tracer

	result     *runner.SuiteResult
	hwOutcomes []hardware.Outcome
	hwStats    types.SuiteStats

	running    atomic.Bool
	loopCancel context.CancelFunc
	wg         sync.WaitGroup

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*Orchestrator, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating orchestrator with config",
		"boardConfig", config.BoardConfig,
		"board", config.Board,
		"modules", config.Modules,
		"hardwareTests", config.HardwareTests)

	runID := uuid.New().String()

	reg, err := registry.NewRegistry(registry.Config{
		Log:     config.Log,
		Modules: config.Modules,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	kern := kernel.New(config.Log)

	// Create runner with registry; it registers itself with the kernel's
	// deferred-call dispatcher.
	testRunner, err := runner.NewKernelTestRunner(runner.Config{
		Registry:   reg,
		Dispatcher: kern.Dispatcher(),
		Log:        config.Log,
		Board:      config.Board,
		RunID:      runID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create test runner: %w", err)
	}
	config.Log.Info("orchestrator.New: created registry and test runner", "run_id", runID)

	return &Orchestrator{
		ctx:              ctx,
		config:           config,
		version:          version,
		runID:            runID,
		registry:         reg,
		kernel:           kern,
		runner:           testRunner,
		sink:             reporting.NewTextSummarySink(config.LogDir, config.Board),
		tracer:           otel.Tracer("tock-kerneltest"),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start boots the board and runs the suites to completion.
// Start implements the cliapp.Lifecycle interface.
//
// This is the boot sequence, and therefore the single place where
// capabilities are minted. Boot order follows the hardware: install the
// debug writer, run peripheral bring-up (the hardware suite), then enter
// the kernel loop and drive the kernel suite through it.
func (o *Orchestrator) Start(ctx context.Context) error {
	// A panic during boot is a runtime error, not a test failure.
	defer func() {
		if r := recover(); r != nil {
			o.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	o.ctx = ctx
	o.running.Store(true)
	o.config.Log.Info("Starting kernel test orchestrator",
		"board", o.config.Board,
		"tests", o.registry.Len(),
		"modules", o.registry.Modules())

	debugCap := capabilities.MintDebugWriter()
	debug.SetWriter(os.Stdout, debugCap)
	mainLoopCap := capabilities.MintMainLoop()

	if o.config.HardwareTests {
		o.runHardwareSuite()
	} else {
		o.config.Log.Info("Hardware test suite disabled by configuration")
	}

	resources := kernel.TestResources()
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.loopCancel = cancel
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.kernel.Loop(loopCtx, resources, mainLoopCap); err != nil {
			o.config.Log.Error("Kernel main loop failed", "error", err)
			metrics.RecordErrorDetails("kernel main loop", err)
		}
	}()

	if err := o.runKernelSuite(ctx); err != nil {
		o.config.Log.Error("Runtime error running tests", "error", err)
		return cli.Exit(err.Error(), exitcodes.RuntimeErr)
	}

	o.report()
	o.config.Log.Info("Tests completed, exiting")

	if o.overallStatus() == types.TestStatusFail {
		o.config.Log.Warn("Test run completed with failures, returning exit code 1")
		// Return exit code 1 for test failures (assertions failed)
		return NewTestFailureError(o.result.String())
	}

	go func() {
		o.shutdownCallback(nil)
	}()
	return nil // Success (exit code 0)
}

// runHardwareSuite runs the board-level peripheral tests synchronously,
// before the kernel loop starts. Bring-up must not interleave with
// deferred work.
func (o *Orchestrator) runHardwareSuite() {
	hwRunner := hardware.NewRunner(hardware.Config{
		Log:   o.config.Log,
		Tests: hwtests.Suite(),
		Board: o.config.Board,
		RunID: o.runID,
	})
	o.hwOutcomes, o.hwStats = hwRunner.RunAll()

	for _, outcome := range o.hwOutcomes {
		_ = o.sink.Consume(reporting.Record{
			Suite:    hardware.HardwareSuiteName,
			Name:     outcome.Name,
			Result:   outcome.Result,
			Duration: outcome.Duration,
		}, o.runID)
	}
}

// runKernelSuite starts the deferred-call driven runner and waits for the
// suite to reach its terminal state.
func (o *Orchestrator) runKernelSuite(ctx context.Context) error {
	ctx, span := o.tracer.Start(ctx, "kernel test suite")
	defer span.End()

	if err := o.runner.Start(); err != nil {
		return err
	}

	select {
	case <-o.runner.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	o.result = o.runner.Result()
	for _, outcome := range o.result.Outcomes {
		_ = o.sink.Consume(reporting.Record{
			Suite:    runner.KernelSuiteName,
			Module:   outcome.Module,
			Name:     outcome.Name,
			Result:   outcome.Result,
			Duration: outcome.Duration,
		}, o.runID)
	}
	return nil
}

// report persists the run summary and prints the results table.
func (o *Orchestrator) report() {
	if err := o.sink.Complete(o.runID); err != nil {
		o.config.Log.Warn("Failed to write run summary", "error", err)
		metrics.RecordErrorDetails("run summary", err)
	}
	o.printResultsTable()
	fmt.Println(o.result.String())
	o.config.Log.Info("Test run completed", "run_id", o.runID, "status", o.overallStatus())
}

// overallStatus combines the kernel and hardware suite verdicts.
func (o *Orchestrator) overallStatus() types.TestStatus {
	stats := o.combinedStats()
	return stats.Status()
}

// Stop stops the orchestrator and the kernel loop.
// Stop implements the cliapp.Lifecycle interface.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.config.Log.Info("Stopping orchestrator")

	if !o.running.Load() {
		o.config.Log.Debug("Already stopped, nothing to do")
		return nil
	}

	// Flip the running state before canceling so Stopped observers see
	// the shutdown.
	o.running.Store(false)

	if o.loopCancel != nil {
		o.config.Log.Debug("Stopping kernel main loop")
		o.loopCancel()
	}

	o.config.Log.Info("orchestrator stopped successfully")
	return nil
}

// Stopped returns true if the orchestrator is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (o *Orchestrator) Stopped() bool {
	return !o.running.Load()
}

// WaitForShutdown blocks until the kernel loop goroutine has terminated,
// or the context expires.
func (o *Orchestrator) WaitForShutdown(ctx context.Context) error {
	o.config.Log.Debug("Waiting for all goroutines to terminate")

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.config.Log.Debug("All goroutines terminated successfully")
		return nil
	case <-ctx.Done():
		o.config.Log.Warn("Timed out waiting for goroutines to terminate", "error", ctx.Err())
		return ctx.Err()
	}
}
