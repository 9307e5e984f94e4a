package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charles37/tock/types"
)

// Record is one classified test execution handed to a sink.
type Record struct {
	Suite    string
	Module   string
	Name     string
	Result   types.TestResult
	Duration time.Duration
}

// TextSummarySink collects records for a run and writes a plain-text
// summary file when the run completes.
type TextSummarySink struct {
	baseDir string
	board   string
	records map[string][]Record
}

// NewTextSummarySink creates a sink writing under baseDir.
func NewTextSummarySink(baseDir, board string) *TextSummarySink {
	return &TextSummarySink{
		baseDir: baseDir,
		board:   board,
		records: make(map[string][]Record),
	}
}

// Consume collects one record for later summary generation.
func (s *TextSummarySink) Consume(record Record, runID string) error {
	s.records[runID] = append(s.records[runID], record)
	return nil
}

// Complete writes the summary file for a run to
// <baseDir>/testrun-<runID>/summary.log.
func (s *TextSummarySink) Complete(runID string) error {
	records := s.records[runID]

	outputDir := filepath.Join(s.baseDir, "testrun-"+runID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Test run %s\n", runID)
	fmt.Fprintf(&b, "Board: %s\n\n", s.board)

	var stats types.SuiteStats
	suite := ""
	for _, record := range records {
		if record.Suite != suite {
			suite = record.Suite
			fmt.Fprintf(&b, "[%s]\n", suite)
		}
		stats.Record(record.Result.Status)
		fmt.Fprintf(&b, "  %-6s %-40s %8.1fms", strings.ToUpper(string(record.Result.Status)),
			qualifiedName(record), float64(record.Duration.Microseconds())/1000.0)
		switch record.Result.Status {
		case types.TestStatusFail:
			fmt.Fprintf(&b, "  %s", record.Result.DiagnosticText())
		case types.TestStatusSkip:
			fmt.Fprintf(&b, "  %s", record.Result.Reason)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n%d total: %d passed, %d failed, %d skipped\n",
		stats.Total, stats.Passed, stats.Failed, stats.Skipped)
	fmt.Fprintf(&b, "Overall: %s\n", strings.ToUpper(string(stats.Status())))

	summaryFile := filepath.Join(outputDir, "summary.log")
	if err := os.WriteFile(summaryFile, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}

func qualifiedName(record Record) string {
	if record.Module != "" && record.Module != record.Suite {
		return record.Module + "/" + record.Name
	}
	return record.Name
}
