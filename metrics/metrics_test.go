package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles37/tock/types"
)

func TestErrToLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "nil"},
		{"plain words", errors.New("registry sealed"), "registry_sealed"},
		{"punctuation stripped", errors.New("no tests for module \"uart\"!"), "no_tests_for_module_uart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errToLabel(tt.err))
		})
	}
}

func TestRecordErrorDetailsNilIsNoop(t *testing.T) {
	require.NotPanics(t, func() {
		RecordErrorDetails("runner", nil)
	})
}

func TestRecordTest(t *testing.T) {
	RecordTest("nrf52840dk", "run-metrics", "kernel", "mpu", "test_mpu_basic_configuration", types.TestStatusPass)
	RecordTest("nrf52840dk", "run-metrics", "kernel", "mpu", "test_mpu_basic_configuration", types.TestStatusPass)

	count := testutil.ToFloat64(testsTotal.WithLabelValues(
		"nrf52840dk", "run-metrics", "kernel", "mpu", "test_mpu_basic_configuration", "pass"))
	assert.Equal(t, float64(2), count)
}

func TestRecordTestInvalidResult(t *testing.T) {
	require.NotPanics(t, func() {
		RecordTest("nrf52840dk", "run-metrics", "kernel", "mpu", "test_x", types.TestStatus("bogus"))
	})
	count := testutil.ToFloat64(testsTotal.WithLabelValues(
		"nrf52840dk", "run-metrics", "kernel", "mpu", "test_x", "bogus"))
	assert.Equal(t, float64(0), count, "invalid results must not be recorded")
}

func TestRecordSuite(t *testing.T) {
	stats := types.SuiteStats{Total: 4, Passed: 2, Failed: 1, Skipped: 1}
	RecordSuite("nrf52840dk", "run-suite", "kernel", types.TestStatusFail, stats, 250*time.Millisecond)

	assert.Equal(t, float64(4), testutil.ToFloat64(suiteTestsTotal.WithLabelValues("nrf52840dk", "run-suite", "kernel")))
	assert.Equal(t, float64(2), testutil.ToFloat64(suiteTestsPassed.WithLabelValues("nrf52840dk", "run-suite", "kernel")))
	assert.Equal(t, float64(1), testutil.ToFloat64(suiteTestsFailed.WithLabelValues("nrf52840dk", "run-suite", "kernel")))
	assert.Equal(t, float64(1), testutil.ToFloat64(suiteTestsSkipped.WithLabelValues("nrf52840dk", "run-suite", "kernel")))
	assert.Equal(t, 0.25, testutil.ToFloat64(suiteDuration.WithLabelValues("nrf52840dk", "run-suite", "kernel")))
	assert.Equal(t, float64(1), testutil.ToFloat64(suiteResults.WithLabelValues("nrf52840dk", "run-suite", "kernel", "fail")))
}
