package table

import (
	"fmt"

	"github.com/ethpandaops/query-validator/internal/testing/format"
	"github.com/ethpandaops/query-validator/internal/testing/result"
	"github.com/olekukonko/tablewriter"
)

// SummaryFormatter formats run totals as a table.
type SummaryFormatter struct {
	renderer Renderer
	colors   *ColorHelper
}

// NewSummaryFormatter creates a new summary table formatter.
func NewSummaryFormatter(renderer Renderer) *SummaryFormatter {
	return &SummaryFormatter{
		renderer: renderer,
		colors:   NewColorHelper(),
	}
}

// Format converts a run summary into a formatted table string.
func (f *SummaryFormatter) Format(summary *result.Summary) string {
	passRate := format.Percent(summary.Passed, summary.Total)

	var (
		headers = []string{"Metric", "Value"}
		rows    = [][]string{
			{"Total Tests", f.colors.Bold(fmt.Sprintf("%d", summary.Total))},
			{"Passed", f.colors.FormatCount(summary.Passed, summary.Total, result.StatusPass)},
			{"Failed", f.colors.FormatCount(summary.Failed, summary.Total, result.StatusFail)},
			{"Errors", f.colors.FormatCount(summary.Errors, summary.Total, result.StatusError)},
			{"Pass Rate", f.colors.FormatPercentage(passRate)},
			{"Total Runtime", format.Duration(summary.Runtime)},
		}
	)

	return "\n" + f.colors.Header("▸ Summary") + "\n\n" +
		f.renderer.RenderToString(headers, rows, WithColumnAlignment(tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT))
}
