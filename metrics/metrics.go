package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/charles37/tock/types"
)

const (
	MetricsNamespace = "kerneltest"
)

var (
	Debug                bool = true
	validResults              = []types.TestStatus{types.TestStatusPass, types.TestStatusFail, types.TestStatusSkip}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of executed kernel and hardware tests",
	}, []string{
		"board",
		"run_id",
		"suite",
		"module",
		"name",
		"result",
	})

	suiteResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_results",
		Help:      "Result of a completed test suite",
	}, []string{
		"board",
		"run_id",
		"suite",
		"result",
	})

	suiteTestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_tests_total",
		Help:      "Total number of tests in a suite run",
	}, []string{
		"board",
		"run_id",
		"suite",
	})

	suiteTestsPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_tests_passed",
		Help:      "Number of passed tests in a suite run",
	}, []string{
		"board",
		"run_id",
		"suite",
	})

	suiteTestsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_tests_failed",
		Help:      "Number of failed tests in a suite run",
	}, []string{
		"board",
		"run_id",
		"suite",
	})

	suiteTestsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_tests_skipped",
		Help:      "Number of skipped tests in a suite run",
	}, []string{
		"board",
		"run_id",
		"suite",
	})

	suiteDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_duration",
		Help:      "Duration of a suite run in seconds",
	}, []string{
		"board",
		"run_id",
		"suite",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordTest counts one classified test execution.
func RecordTest(board, runID, suite, module, name string, result types.TestStatus) {
	if !isValidResult(result) {
		log.Error("RecordTest - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "tests_total",
			"board", board,
			"run_id", runID,
			"suite", suite,
			"module", module,
			"name", name,
			"result", result)
	}
	testsTotal.WithLabelValues(board, runID, suite, module, name, string(result)).Inc()
}

// RecordSuite records the aggregate outcome of a completed suite run.
func RecordSuite(
	board string,
	runID string,
	suite string,
	result types.TestStatus,
	stats types.SuiteStats,
	duration time.Duration,
) {
	suiteResults.WithLabelValues(board, runID, suite, string(result)).Set(1)
	suiteTestsTotal.WithLabelValues(board, runID, suite).Add(float64(stats.Total))
	suiteTestsPassed.WithLabelValues(board, runID, suite).Add(float64(stats.Passed))
	suiteTestsFailed.WithLabelValues(board, runID, suite).Add(float64(stats.Failed))
	suiteTestsSkipped.WithLabelValues(board, runID, suite).Add(float64(stats.Skipped))
	suiteDuration.WithLabelValues(board, runID, suite).Set(duration.Seconds())
}

func isValidResult(result types.TestStatus) bool {
	return slices.Contains(validResults, result)
}
