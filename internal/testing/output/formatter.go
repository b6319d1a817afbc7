// Package output reports test outcomes through the logger and as tables.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethpandaops/query-validator/internal/testing/format"
	"github.com/ethpandaops/query-validator/internal/testing/result"
	"github.com/ethpandaops/query-validator/internal/testing/table"
	"github.com/sirupsen/logrus"
)

// Formatter reports outcomes as they complete and the run summary at the end.
type Formatter interface {
	LogTestResult(outcome *result.TestOutcome)
	LogSummary(summary *result.Summary)
}

type formatter struct {
	log     logrus.FieldLogger
	writer  io.Writer
	verbose bool

	resultsFormatter *table.ResultsFormatter
	summaryFormatter *table.SummaryFormatter
}

// NewFormatter creates a new output formatter. Tables are written to
// writer; per-test lines go through log. With verbose set, passing tests
// also log their query and erroneous rows are logged individually.
func NewFormatter(log logrus.FieldLogger, writer io.Writer, verbose bool, maxRows int) Formatter {
	renderer := table.NewRenderer()

	return &formatter{
		log:              log.WithField("component", "output"),
		writer:           writer,
		verbose:          verbose,
		resultsFormatter: table.NewResultsFormatter(renderer, maxRows),
		summaryFormatter: table.NewSummaryFormatter(renderer),
	}
}

// LogTestResult logs one outcome: info for PASS, error otherwise.
func (f *formatter) LogTestResult(outcome *result.TestOutcome) {
	entry := f.log.WithFields(logrus.Fields{
		"test":     outcome.Name,
		"status":   outcome.Status,
		"duration": format.Duration(outcome.Duration),
	})

	if f.verbose {
		entry = entry.WithField("query", outcome.Query)
	}

	if outcome.Passed() {
		entry.Info("test passed")

		return
	}

	entry = entry.WithField("erroneous_rows", len(outcome.ErroneousRows))

	if outcome.Status == result.StatusError {
		entry.Error(strings.Join(outcome.Messages, "; "))
	} else {
		entry.Errorf("test failed: %s", strings.Join(outcome.Messages, "; "))
	}

	if !f.verbose {
		return
	}

	for _, r := range outcome.ErroneousRows {
		f.log.WithField("test", outcome.Name).Debug("erroneous row: " + r.String())
	}
}

// LogSummary renders the results and summary tables and logs the totals.
func (f *formatter) LogSummary(summary *result.Summary) {
	fmt.Fprintln(f.writer, f.resultsFormatter.Format(summary.Details))
	fmt.Fprintln(f.writer, f.summaryFormatter.Format(summary))

	entry := f.log.WithFields(logrus.Fields{
		"total":   summary.Total,
		"passed":  summary.Passed,
		"failed":  summary.Failed,
		"errors":  summary.Errors,
		"runtime": format.Duration(summary.Runtime),
	})

	if summary.Succeeded() {
		entry.Info("all tests passed")

		return
	}

	entry.Warn("some tests did not pass")
}

// Compile-time interface compliance check
var _ Formatter = (*formatter)(nil)
