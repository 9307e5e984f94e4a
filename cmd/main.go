package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	tock "github.com/charles37/tock"
	"github.com/charles37/tock/exitcodes"
	"github.com/charles37/tock/flags"
	"github.com/charles37/tock/service"
	"github.com/ethereum-optimism/optimism/devnet-sdk/telemetry"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"

	// Test-bearing modules register their descriptors at init time.
	_ "github.com/charles37/tock/kerneltests/mpu"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "tock-kerneltest"
	app.Usage = "Tock Kernel Test Orchestrator"
	app.Description = "tock-kerneltest runs in-kernel test suites for a board"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(run)
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		switch {
		case errors.As(err, &exitErr):
			cli.HandleExitCoder(exitErr)
		case tock.IsRuntimeError(err):
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
		case err != nil:
			// Test failures and anything untyped exit 1.
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
		}
	}

	ctx, shutdown, err := telemetry.SetupOpenTelemetry(
		context.Background(),
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer shutdown()

	// Side servers (healthz, metrics scrape) live for the whole process.
	svc := service.New()
	svc.Start(ctx)
	defer svc.Shutdown()

	ctx = ctxinterrupt.WithSignalWaiterMain(ctx)
	err = app.RunContext(ctx, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	logCfg := oplog.ReadCLIConfig(ctx)
	log := oplog.NewLogger(oplog.AppOut(ctx), logCfg)
	oplog.SetGlobalLogHandler(log.Handler())
	oplog.SetupDefaults()

	cfg, err := tock.NewConfig(
		ctx,
		log,
		ctx.String(flags.BoardConfig.Name),
	)
	if err != nil {
		return nil, tock.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debug("Config", "config", cfg)

	orchestrator, err := tock.New(ctx.Context, cfg, Version, closeApp)
	if err != nil {
		return nil, tock.NewRuntimeError(fmt.Errorf("failed to create orchestrator: %w", err))
	}

	return orchestrator, nil
}
