// Package tock is the kernel test orchestrator: it boots a simulated board,
// runs the registered kernel test suite through the cooperative kernel
// loop, runs the board-level hardware suite, and reports the results.
package tock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/charles37/tock/flags"
	"github.com/ethereum/go-ethereum/log"
)

// BoardProfile is the YAML board manifest: which board the binary targets,
// which registered test modules to run, and whether the hardware suite is
// enabled. CLI flags override individual fields.
type BoardProfile struct {
	Board         string   `yaml:"board"`
	Modules       []string `yaml:"modules,omitempty"`
	HardwareTests *bool    `yaml:"hardware_tests,omitempty"`
}

// Config holds the application configuration
type Config struct {
	BoardConfig   string   // Path to the board manifest file
	Board         string   // Board identifier the suite runs as
	Modules       []string // Test modules to run; empty means every registered module
	HardwareTests bool     // Whether to run the board-level hardware suite
	LogDir        string   // Directory to store run summaries
	Log           log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, logger log.Logger, boardConfig string) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if boardConfig == "" {
		return nil, errors.New("board config file is required")
	}

	absBoardConfig, err := filepath.Abs(boardConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for board config '%s': %w", boardConfig, err)
	}

	profile, err := loadBoardProfile(absBoardConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load board config: %w", err)
	}

	board := profile.Board
	if override := ctx.String(flags.Board.Name); override != "" {
		board = override
	}
	if board == "" {
		return nil, fmt.Errorf("board config '%s' does not name a board and no --board override given", boardConfig)
	}

	modules := profile.Modules
	if override := ctx.StringSlice(flags.Modules.Name); len(override) > 0 {
		modules = override
	}

	hardwareTests := true
	if profile.HardwareTests != nil {
		hardwareTests = *profile.HardwareTests
	}
	if ctx.IsSet(flags.SkipHardware.Name) && ctx.Bool(flags.SkipHardware.Name) {
		hardwareTests = false
	}

	// Get log directory, default to "logs" if not specified
	logDir := ctx.String(flags.LogDir.Name)
	if logDir == "" {
		logDir = "logs"
	}
	logDir, err = filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
	}

	return &Config{
		BoardConfig:   absBoardConfig,
		Board:         board,
		Modules:       modules,
		HardwareTests: hardwareTests,
		LogDir:        logDir,
		Log:           logger,
	}, nil
}

// loadBoardProfile loads a board manifest from a file
func loadBoardProfile(path string) (*BoardProfile, error) {
	log.Debug("Reading board config file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var profile BoardProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &profile, nil
}
