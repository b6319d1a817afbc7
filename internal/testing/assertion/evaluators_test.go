package assertion

import (
	"testing"
	"time"

	"github.com/ethpandaops/query-validator/internal/testing/row"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRow(id int64, name interface{}) *row.Row {
	return row.New([]string{"id", "name"}, []interface{}{id, name})
}

func sampleRows() []*row.Row {
	return []*row.Row{
		newRow(1, "Alice"),
		newRow(2, "Bob"),
		newRow(3, "Charlie"),
	}
}

func sampleRowsWithNull() []*row.Row {
	return []*row.Row{
		newRow(1, "Alice"),
		newRow(2, nil),
		newRow(3, "Charlie"),
	}
}

func requireRows(t *testing.T, expected, actual []*row.Row) {
	t.Helper()

	require.Len(t, actual, len(expected))

	for i := range expected {
		assert.True(t, expected[i].Equal(actual[i]), "row %d: expected %s, got %s", i, expected[i], actual[i])
	}
}

func TestRowCount(t *testing.T) {
	t.Parallel()

	rows := sampleRows()

	tests := []struct {
		name     string
		rows     []*row.Row
		expected int
		success  bool
	}{
		{name: "matching count", rows: rows, expected: 3, success: true},
		{name: "fewer rows expected", rows: rows, expected: 2, success: false},
		{name: "empty rows expect zero", rows: nil, expected: 0, success: true},
		{name: "empty rows expect one", rows: nil, expected: 1, success: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := RowCount(tt.rows, tt.expected)
			assert.Equal(t, tt.success, outcome.Success)

			if tt.success {
				assert.Empty(t, outcome.ErroneousRows)
				assert.Empty(t, outcome.Message)

				return
			}

			requireRows(t, tt.rows, outcome.ErroneousRows)
			assert.Contains(t, outcome.Message, "Expected")
		})
	}
}

func TestHas(t *testing.T) {
	t.Parallel()

	rows := sampleRows()

	tests := []struct {
		name      string
		rows      []*row.Row
		rules     []ValueRule
		success   bool
		erroneous []*row.Row
		message   string
	}{
		{
			name:    "all values present",
			rows:    rows,
			rules:   []ValueRule{{Column: "name", Values: []string{"Alice", "Bob"}}},
			success: true,
		},
		{
			name:      "one value never observed",
			rows:      rows,
			rules:     []ValueRule{{Column: "name", Values: []string{"Alice", "Dan"}}},
			success:   false,
			erroneous: []*row.Row{rows[1], rows[2]},
			message:   "Expected values not found: name: [Dan]",
		},
		{
			name:    "duplicate and reordered values",
			rows:    rows,
			rules:   []ValueRule{{Column: "name", Values: []string{"Charlie", "Alice", "Alice"}}},
			success: true,
		},
		{
			name:    "empty rows with no rules",
			rows:    nil,
			rules:   nil,
			success: true,
		},
		{
			name:    "empty rows always fail a non-empty rule",
			rows:    nil,
			rules:   []ValueRule{{Column: "name", Values: []string{"Alice"}}},
			success: false,
			message: "Expected values not found: name: [Alice]",
		},
		{
			name:      "no coercion across types",
			rows:      rows,
			rules:     []ValueRule{{Column: "id", Values: []string{"1"}}},
			success:   false,
			erroneous: rows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Has(tt.rows, tt.rules)
			assert.Equal(t, tt.success, outcome.Success)

			if tt.success {
				assert.Empty(t, outcome.ErroneousRows)

				return
			}

			requireRows(t, tt.erroneous, outcome.ErroneousRows)

			if tt.message != "" {
				assert.Equal(t, tt.message, outcome.Message)
			}
		})
	}
}

func TestHas_DoesNotMutateRules(t *testing.T) {
	t.Parallel()

	rules := []ValueRule{{Column: "name", Values: []string{"Alice", "Bob"}}}

	first := Has(sampleRows(), rules)
	second := Has(sampleRows(), rules)

	assert.True(t, first.Success)
	assert.True(t, second.Success)
	assert.Equal(t, []string{"Alice", "Bob"}, rules[0].Values)
}

func TestHas_NullValuesAreNotFlagged(t *testing.T) {
	t.Parallel()

	rows := sampleRowsWithNull()
	outcome := Has(rows, []ValueRule{{Column: "name", Values: []string{"Alice", "Dan"}}})

	require.False(t, outcome.Success)
	requireRows(t, []*row.Row{rows[2]}, outcome.ErroneousRows)
}

func TestMissing(t *testing.T) {
	t.Parallel()

	rows := sampleRows()

	tests := []struct {
		name      string
		rows      []*row.Row
		rules     []ValueRule
		success   bool
		erroneous []*row.Row
	}{
		{
			name:    "forbidden values absent",
			rows:    rows,
			rules:   []ValueRule{{Column: "name", Values: []string{"Dan", "Eve"}}},
			success: true,
		},
		{
			name:      "forbidden value present",
			rows:      rows,
			rules:     []ValueRule{{Column: "name", Values: []string{"Alice", "Dan"}}},
			success:   false,
			erroneous: []*row.Row{rows[0]},
		},
		{
			name:    "empty rows",
			rows:    nil,
			rules:   []ValueRule{{Column: "name", Values: []string{"Alice"}}},
			success: true,
		},
		{
			name:      "regex match",
			rows:      rows,
			rules:     []ValueRule{{Column: "name", Regex: []string{"^Ch"}}},
			success:   false,
			erroneous: []*row.Row{rows[2]},
		},
		{
			name: "row flagged once across rules",
			rows: rows,
			rules: []ValueRule{
				{Column: "name", Values: []string{"Bob"}},
				{Column: "name", Regex: []string{"^B"}},
			},
			success:   false,
			erroneous: []*row.Row{rows[1]},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Missing(tt.rows, tt.rules)
			assert.Equal(t, tt.success, outcome.Success)
			requireRows(t, tt.erroneous, outcome.ErroneousRows)
		})
	}
}

func TestMissing_InvalidRegex(t *testing.T) {
	t.Parallel()

	outcome := Missing(sampleRows(), []ValueRule{{Column: "name", Regex: []string{"("}}})
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "Invalid regex")
}

func TestNulls(t *testing.T) {
	t.Parallel()

	columns := []string{"id", "name"}

	t.Run("no_nulls success", func(t *testing.T) {
		outcome := NoNulls(sampleRows(), columns)
		assert.True(t, outcome.Success)
		assert.Empty(t, outcome.ErroneousRows)
	})

	t.Run("no_nulls failure", func(t *testing.T) {
		rows := sampleRowsWithNull()
		outcome := NoNulls(rows, columns)
		assert.False(t, outcome.Success)
		requireRows(t, []*row.Row{rows[1]}, outcome.ErroneousRows)
		assert.Equal(t, "Unexpected 'null' value in column(s) 'name'", outcome.Message)
	})

	t.Run("no_nulls flags a row once", func(t *testing.T) {
		rows := []*row.Row{row.New(columns, []interface{}{nil, nil})}
		outcome := NoNulls(rows, columns)
		require.False(t, outcome.Success)
		requireRows(t, rows, outcome.ErroneousRows)
	})

	t.Run("only_nulls success", func(t *testing.T) {
		allNull := row.New(columns, []interface{}{nil, nil})
		outcome := OnlyNulls([]*row.Row{allNull, allNull, allNull}, columns)
		assert.True(t, outcome.Success)
		assert.Empty(t, outcome.ErroneousRows)
	})

	t.Run("only_nulls failure", func(t *testing.T) {
		rows := sampleRowsWithNull()
		outcome := OnlyNulls(rows, []string{"name"})
		assert.False(t, outcome.Success)
		requireRows(t, []*row.Row{rows[0], rows[2]}, outcome.ErroneousRows)
	})

	t.Run("mixed row flagged by both", func(t *testing.T) {
		rows := []*row.Row{newRow(7, nil)}
		assert.False(t, NoNulls(rows, columns).Success)
		assert.False(t, OnlyNulls(rows, columns).Success)
		assert.Len(t, NoNulls(rows, columns).ErroneousRows, 1)
		assert.Len(t, OnlyNulls(rows, columns).ErroneousRows, 1)
	})

	t.Run("empty rows", func(t *testing.T) {
		assert.True(t, NoNulls(nil, columns).Success)
		assert.True(t, OnlyNulls(nil, columns).Success)
	})
}

func TestConditions(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := []*row.Row{
		row.New([]string{"amount", "status", "created"}, []interface{}{int64(10), "ok", ts}),
		row.New([]string{"amount", "status", "created"}, []interface{}{int64(-5), "ok", ts.Add(48 * time.Hour)}),
		row.New([]string{"amount", "status", "created"}, []interface{}{nil, "failed", ts}),
	}

	tests := []struct {
		name       string
		conditions []Condition
		erroneous  []*row.Row
	}{
		{
			name:       "numeric greater than",
			conditions: []Condition{{Column: "amount", Operator: "gt", Value: "0"}},
			erroneous:  []*row.Row{rows[1], rows[2]},
		},
		{
			name:       "string equality",
			conditions: []Condition{{Column: "status", Operator: "equals", Value: "ok"}},
			erroneous:  []*row.Row{rows[2]},
		},
		{
			name:       "timestamp bound",
			conditions: []Condition{{Column: "created", Operator: "lte", Value: "2024-05-02T00:00:00Z"}},
			erroneous:  []*row.Row{rows[1]},
		},
		{
			name:       "ordering on strings is an error",
			conditions: []Condition{{Column: "status", Operator: "gt", Value: "1"}},
			erroneous:  rows,
		},
		{
			name:       "all satisfied",
			conditions: []Condition{{Column: "status", Operator: "not_equals", Value: "pending"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Conditions(rows, tt.conditions)
			assert.Equal(t, len(tt.erroneous) == 0, outcome.Success)
			requireRows(t, tt.erroneous, outcome.ErroneousRows)
		})
	}

	t.Run("unknown operator", func(t *testing.T) {
		outcome := Conditions(rows, []Condition{{Column: "amount", Operator: "between", Value: "1"}})
		assert.False(t, outcome.Success)
		assert.Contains(t, outcome.Message, "unknown comparison operator")
	})
}
