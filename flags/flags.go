package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "TOCK_KERNELTEST"

var (
	BoardConfig = &cli.StringFlag{
		Name:     "board-config",
		Value:    "",
		Required: true,
		EnvVars:  opservice.PrefixEnvVar(EnvVarPrefix, "BOARD_CONFIG"),
		Usage:    "Path to board manifest file (eg. 'board.yaml')",
	}
	Board = &cli.StringFlag{
		Name:    "board",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "BOARD"),
		Usage:   "Board identifier override (eg. 'nrf52840dk')",
	}
	Modules = &cli.StringSliceFlag{
		Name:    "modules",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "MODULES"),
		Usage:   "Test modules to run; omit to run every registered module",
	}
	SkipHardware = &cli.BoolFlag{
		Name:    "skip-hardware",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SKIP_HARDWARE"),
		Usage:   "Skip the board-level hardware test suite",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOG_DIR"),
		Usage:   "Directory to store test run summaries",
	}
)

var requiredFlags = []cli.Flag{
	BoardConfig,
}

var optionalFlags = []cli.Flag{
	Board,
	Modules,
	SkipHardware,
	LogDir,
}

var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
