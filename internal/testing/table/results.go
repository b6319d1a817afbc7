package table

import (
	"fmt"
	"strings"

	"github.com/ethpandaops/query-validator/internal/testing/format"
	"github.com/ethpandaops/query-validator/internal/testing/result"
)

const (
	// DefaultMaxErroneousRows caps the rows listed per failed test.
	DefaultMaxErroneousRows = 10

	detailsWidth = 60
)

// ResultsFormatter formats test outcomes as a table.
type ResultsFormatter struct {
	renderer Renderer
	colors   *ColorHelper
	maxRows  int
}

// NewResultsFormatter creates a new results table formatter. maxRows caps
// the erroneous rows shown per test; zero or less uses the default.
func NewResultsFormatter(renderer Renderer, maxRows int) *ResultsFormatter {
	if maxRows <= 0 {
		maxRows = DefaultMaxErroneousRows
	}

	return &ResultsFormatter{
		renderer: renderer,
		colors:   NewColorHelper(),
		maxRows:  maxRows,
	}
}

// Format renders one row per test followed by details for every test that
// did not pass.
func (f *ResultsFormatter) Format(outcomes []*result.TestOutcome) string {
	if len(outcomes) == 0 {
		return "No tests executed"
	}

	var (
		headers = []string{"Test", "Status", "Assertions", "Duration", "Details"}
		rows    = make([][]string, 0, len(outcomes))
		failed  = make([]*result.TestOutcome, 0)
	)

	for _, outcome := range outcomes {
		var details string

		if !outcome.Passed() {
			failed = append(failed, outcome)

			if len(outcome.Messages) > 0 {
				details = f.colors.Muted(format.Truncate(outcome.Messages[0], detailsWidth))
			}
		}

		rows = append(rows, []string{
			outcome.Name,
			f.colors.FormatStatus(outcome.Status),
			fmt.Sprintf("%d", len(outcome.Assertions)),
			format.Duration(outcome.Duration),
			details,
		})
	}

	output := "\n" + f.colors.Header("▸ Test Results") + "\n\n" + f.renderer.RenderToString(headers, rows)

	if len(failed) > 0 {
		output += f.formatFailureDetails(failed)
	}

	return output
}

// formatFailureDetails lists every message and the offending rows of each
// failed or errored test.
func (f *ResultsFormatter) formatFailureDetails(failed []*result.TestOutcome) string {
	var builder strings.Builder

	builder.WriteString("\n" + f.colors.Header("▸ Failed Test Details") + "\n\n")

	for i, outcome := range failed {
		if i > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString(fmt.Sprintf("%s %s (%s)\n",
			f.colors.FormatStatus(outcome.Status),
			f.colors.Bold(outcome.Name),
			format.Duration(outcome.Duration),
		))

		if len(outcome.Messages) == 0 {
			builder.WriteString(fmt.Sprintf("  %s: Test failed (no details available)\n", f.colors.Failure("Error")))
		}

		for _, message := range outcome.Messages {
			builder.WriteString(fmt.Sprintf("  %s %s\n", f.colors.Failure("✗"), message))
		}

		if len(outcome.ErroneousRows) == 0 {
			continue
		}

		builder.WriteString(fmt.Sprintf("    %s:\n",
			f.colors.Warning(format.Count(len(outcome.ErroneousRows), "erroneous row", "erroneous rows"))))

		for j, r := range outcome.ErroneousRows {
			if j == f.maxRows {
				builder.WriteString(f.colors.Muted(fmt.Sprintf("      ... and %d more\n", len(outcome.ErroneousRows)-f.maxRows)))

				break
			}

			builder.WriteString(fmt.Sprintf("      %s\n", r.String()))
		}
	}

	return builder.String()
}
