package table

import (
	"fmt"

	"github.com/ethpandaops/query-validator/internal/testing/result"
	"github.com/fatih/color"
)

// ColorHelper provides utilities for coloring test output
type ColorHelper struct {
	enabled bool
}

// NewColorHelper creates a new color helper
// Colors are enabled only when outputting to a terminal
func NewColorHelper() *ColorHelper {
	return &ColorHelper{
		enabled: !color.NoColor,
	}
}

// Success returns green colored text
func (c *ColorHelper) Success(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgGreen).Sprint(text)
}

// Failure returns red colored text
func (c *ColorHelper) Failure(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgRed).Sprint(text)
}

// Warning returns yellow colored text
func (c *ColorHelper) Warning(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgYellow).Sprint(text)
}

// Muted returns gray colored text
func (c *ColorHelper) Muted(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgHiBlack).Sprint(text)
}

// Bold returns bold text
func (c *ColorHelper) Bold(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.Bold).Sprint(text)
}

// Header returns bold cyan text for section headers
func (c *ColorHelper) Header(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgCyan, color.Bold).Sprint(text)
}

// FormatStatus returns the status marker colored by outcome.
func (c *ColorHelper) FormatStatus(status result.Status) string {
	switch status {
	case result.StatusPass:
		return c.Success("✓ PASS")
	case result.StatusFail:
		return c.Failure("✗ FAIL")
	default:
		return c.Warning("! " + string(status))
	}
}

// FormatCount colors a summary counter. Zero counts of failures stay green.
func (c *ColorHelper) FormatCount(count, total int, status result.Status) string {
	text := fmt.Sprintf("%d", count)

	switch {
	case status == result.StatusPass && count == total:
		return c.Success(text)
	case status == result.StatusPass:
		return c.Warning(text)
	case count == 0:
		return c.Success(text)
	case status == result.StatusFail:
		return c.Failure(text)
	default:
		return c.Warning(text)
	}
}

// FormatPercentage returns colored percentage based on value
func (c *ColorHelper) FormatPercentage(value float64) string {
	text := fmt.Sprintf("%.1f%%", value)
	if value == 100.0 {
		return c.Success(text)
	}
	if value >= 90.0 {
		return c.Warning(text)
	}
	return c.Failure(text)
}
