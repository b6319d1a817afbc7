package table

import (
	"fmt"
	"testing"
	"time"

	"github.com/ethpandaops/query-validator/internal/testing/result"
	"github.com/ethpandaops/query-validator/internal/testing/row"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestResultsFormatter_Format(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	erroneous := make([]*row.Row, 0, 4)
	for i := 0; i < 4; i++ {
		erroneous = append(erroneous, row.New([]string{"id"}, []interface{}{int64(i)}))
	}

	outcomes := []*result.TestOutcome{
		{Name: "users present", Status: result.StatusPass, Duration: 12 * time.Millisecond},
		{
			Name:          "no null names",
			Status:        result.StatusFail,
			Duration:      3 * time.Millisecond,
			Messages:      []string{"Assertion 'no_nulls' failed: Unexpected 'null' value in column(s) 'name'"},
			ErroneousRows: erroneous,
		},
		{Name: "broken query", Status: result.StatusError, Messages: []string{"executing query: no such table: nope"}},
	}

	out := NewResultsFormatter(NewRenderer(), 2).Format(outcomes)

	assert.Contains(t, out, "Test Results")
	assert.Contains(t, out, "users present")
	assert.Contains(t, out, "✓ PASS")
	assert.Contains(t, out, "✗ FAIL")
	assert.Contains(t, out, "! ERROR")
	assert.Contains(t, out, "Failed Test Details")
	assert.Contains(t, out, "Unexpected 'null' value in column(s) 'name'")
	assert.Contains(t, out, "4 erroneous rows")
	assert.Contains(t, out, "{id:0}")
	assert.Contains(t, out, "{id:1}")
	assert.NotContains(t, out, "{id:2}")
	assert.Contains(t, out, fmt.Sprintf("... and %d more", 2))
	assert.Contains(t, out, "no such table: nope")
}

func TestResultsFormatter_Empty(t *testing.T) {
	assert.Equal(t, "No tests executed", NewResultsFormatter(NewRenderer(), 0).Format(nil))
}

func TestSummaryFormatter_Format(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	out := NewSummaryFormatter(NewRenderer()).Format(&result.Summary{
		Total:   4,
		Passed:  2,
		Failed:  1,
		Errors:  1,
		Runtime: 1500 * time.Millisecond,
	})

	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Total Tests")
	assert.Contains(t, out, "Errors")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "1.5s")
}
