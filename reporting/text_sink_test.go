package reporting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles37/tock/types"
)

func TestTextSummarySink(t *testing.T) {
	dir := t.TempDir()
	sink := NewTextSummarySink(dir, "nrf52840dk")
	runID := "run-123"

	require.NoError(t, sink.Consume(Record{
		Suite:    "hardware",
		Name:     "aes_known_answer",
		Result:   types.Pass(),
		Duration: 1500 * time.Microsecond,
	}, runID))
	require.NoError(t, sink.Consume(Record{
		Suite:    "kernel",
		Module:   "mpu",
		Name:     "test_mpu_basic_configuration",
		Result:   types.Pass(),
		Duration: 200 * time.Microsecond,
	}, runID))
	require.NoError(t, sink.Consume(Record{
		Suite:    "kernel",
		Module:   "mpu",
		Name:     "test_mpu_overlapping_regions",
		Result:   types.Fail([]byte("overlap not rejected")),
		Duration: 300 * time.Microsecond,
	}, runID))
	require.NoError(t, sink.Consume(Record{
		Suite:    "kernel",
		Module:   "mpu",
		Name:     "test_mpu_crypto",
		Result:   types.Skip("requires crypto peripheral"),
		Duration: 0,
	}, runID))

	require.NoError(t, sink.Complete(runID))

	data, err := os.ReadFile(filepath.Join(dir, "testrun-"+runID, "summary.log"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "Test run run-123\n")
	assert.Contains(t, content, "Board: nrf52840dk\n")
	assert.Contains(t, content, "[hardware]\n")
	assert.Contains(t, content, "[kernel]\n")
	assert.Contains(t, content, "aes_known_answer")
	assert.Contains(t, content, "mpu/test_mpu_basic_configuration")
	assert.Contains(t, content, "overlap not rejected")
	assert.Contains(t, content, "requires crypto peripheral")
	assert.Contains(t, content, "4 total: 2 passed, 1 failed, 1 skipped\n")
	assert.Contains(t, content, "Overall: FAIL\n")
}

func TestTextSummarySinkEmptyRun(t *testing.T) {
	dir := t.TempDir()
	sink := NewTextSummarySink(dir, "nrf52840dk")

	require.NoError(t, sink.Complete("run-empty"))

	data, err := os.ReadFile(filepath.Join(dir, "testrun-run-empty", "summary.log"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "0 total: 0 passed, 0 failed, 0 skipped\n")
	assert.Contains(t, content, "Overall: PASS\n")
}

func TestTextSummarySinkSeparateRuns(t *testing.T) {
	dir := t.TempDir()
	sink := NewTextSummarySink(dir, "nrf52840dk")

	require.NoError(t, sink.Consume(Record{
		Suite: "kernel", Module: "mpu", Name: "test_a", Result: types.Pass(),
	}, "run-a"))
	require.NoError(t, sink.Consume(Record{
		Suite: "kernel", Module: "mpu", Name: "test_b", Result: types.Fail([]byte("boom")),
	}, "run-b"))

	require.NoError(t, sink.Complete("run-a"))
	require.NoError(t, sink.Complete("run-b"))

	dataA, err := os.ReadFile(filepath.Join(dir, "testrun-run-a", "summary.log"))
	require.NoError(t, err)
	assert.Contains(t, string(dataA), "Overall: PASS\n")
	assert.NotContains(t, string(dataA), "test_b")

	dataB, err := os.ReadFile(filepath.Join(dir, "testrun-run-b", "summary.log"))
	require.NoError(t, err)
	assert.Contains(t, string(dataB), "Overall: FAIL\n")
}
