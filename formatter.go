package tock

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/charles37/tock/hardware"
	"github.com/charles37/tock/runner"
	"github.com/charles37/tock/types"
)

// printResultsTable prints the results of both suites to the console.
func (o *Orchestrator) printResultsTable() {
	o.config.Log.Info("Printing results...")
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Kernel Test Results: %s (%s)", o.config.Board, formatDuration(o.totalDuration())))

	// Configure columns
	t.AppendHeader(table.Row{
		"Type", "ID", "Duration", "Tests", "Passed", "Failed", "Skipped", "Status", "Error",
	})

	// Set column configurations for better readability
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "ID", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	if o.config.HardwareTests {
		o.appendHardwareRows(t)
		t.AppendSeparator()
	}
	o.appendKernelRows(t)
	t.AppendSeparator()

	// Update the table style setting based on the overall status
	switch o.overallStatus() {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	// Add summary footer
	combined := o.combinedStats()
	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(o.totalDuration()),
		combined.Total,
		combined.Passed,
		combined.Failed,
		combined.Skipped,
		getResultString(o.overallStatus()),
		"",
	})

	t.Render()
}

func (o *Orchestrator) appendHardwareRows(t table.Writer) {
	t.AppendRow(table.Row{
		"Suite",
		hardware.HardwareSuiteName,
		formatDuration(o.hwStats.EndTime.Sub(o.hwStats.StartTime)),
		"-", // Don't count the suite as a test
		o.hwStats.Passed,
		o.hwStats.Failed,
		o.hwStats.Skipped,
		getResultString(o.hwStats.Status()),
		"",
	})

	for i, outcome := range o.hwOutcomes {
		prefix := "├──"
		if i == len(o.hwOutcomes)-1 {
			prefix = "└──"
		}
		t.AppendRow(table.Row{
			"Test",
			fmt.Sprintf("%s %s", prefix, outcome.Name),
			formatDuration(outcome.Duration),
			"1", // Count actual test
			boolToInt(outcome.Result.Status == types.TestStatusPass),
			boolToInt(outcome.Result.Status == types.TestStatusFail),
			boolToInt(outcome.Result.Status == types.TestStatusSkip),
			getResultString(outcome.Result.Status),
			outcome.Result.DiagnosticText(),
		})
	}
}

func (o *Orchestrator) appendKernelRows(t table.Writer) {
	if o.result == nil {
		return
	}

	t.AppendRow(table.Row{
		"Suite",
		runner.KernelSuiteName,
		formatDuration(o.result.Duration),
		"-", // Don't count the suite as a test
		o.result.Stats.Passed,
		o.result.Stats.Failed,
		o.result.Stats.Skipped,
		getResultString(o.result.Status),
		"",
	})

	for i, outcome := range o.result.Outcomes {
		prefix := "├──"
		if i == len(o.result.Outcomes)-1 {
			prefix = "└──"
		}
		t.AppendRow(table.Row{
			"Test",
			fmt.Sprintf("%s %s/%s", prefix, outcome.Module, outcome.Name),
			formatDuration(outcome.Duration),
			"1", // Count actual test
			boolToInt(outcome.Result.Status == types.TestStatusPass),
			boolToInt(outcome.Result.Status == types.TestStatusFail),
			boolToInt(outcome.Result.Status == types.TestStatusSkip),
			getResultString(outcome.Result.Status),
			outcome.Result.DiagnosticText(),
		})
	}
}

func (o *Orchestrator) combinedStats() types.SuiteStats {
	combined := o.hwStats
	if o.result != nil {
		combined.Total += o.result.Stats.Total
		combined.Passed += o.result.Stats.Passed
		combined.Failed += o.result.Stats.Failed
		combined.Skipped += o.result.Stats.Skipped
	}
	return combined
}

func (o *Orchestrator) totalDuration() time.Duration {
	var d time.Duration
	if o.config.HardwareTests {
		d += o.hwStats.EndTime.Sub(o.hwStats.StartTime)
	}
	if o.result != nil {
		d += o.result.Duration
	}
	return d
}

// Helper function to convert bool to int
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// getResultString returns a colored string representing the test result
func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
