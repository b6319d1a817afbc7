package table

import (
	"testing"

	"github.com/ethpandaops/query-validator/internal/testing/result"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestColorHelper_FormatStatus(t *testing.T) {
	// Disable colors for consistent testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	helper := NewColorHelper()

	t.Run("passed status", func(t *testing.T) {
		assert.Equal(t, "✓ PASS", helper.FormatStatus(result.StatusPass))
	})

	t.Run("failed status", func(t *testing.T) {
		assert.Equal(t, "✗ FAIL", helper.FormatStatus(result.StatusFail))
	})

	t.Run("error status", func(t *testing.T) {
		assert.Equal(t, "! ERROR", helper.FormatStatus(result.StatusError))
	})
}

func TestColorHelper_FormatCount(t *testing.T) {
	// Disable colors for consistent testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	helper := NewColorHelper()

	tests := []struct {
		name     string
		count    int
		total    int
		status   result.Status
		expected string
	}{
		{name: "all passed", count: 5, total: 5, status: result.StatusPass, expected: "5"},
		{name: "some passed", count: 3, total: 5, status: result.StatusPass, expected: "3"},
		{name: "no failures", count: 0, total: 5, status: result.StatusFail, expected: "0"},
		{name: "errors", count: 2, total: 5, status: result.StatusError, expected: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, helper.FormatCount(tt.count, tt.total, tt.status))
		})
	}
}

func TestColorHelper_FormatPercentage(t *testing.T) {
	// Disable colors for consistent testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	helper := NewColorHelper()

	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{name: "100%", value: 100.0, expected: "100.0%"},
		{name: "90%", value: 90.0, expected: "90.0%"},
		{name: "0%", value: 0.0, expected: "0.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, helper.FormatPercentage(tt.value))
		})
	}
}

func TestColorHelper_ColorsDisabledWhenNoColor(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	helper := NewColorHelper()
	assert.False(t, helper.enabled)

	assert.Equal(t, "test", helper.Success("test"))
	assert.Equal(t, "test", helper.Failure("test"))
	assert.Equal(t, "test", helper.Warning("test"))
}
