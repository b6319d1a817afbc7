package assertion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethpandaops/query-validator/internal/testing/row"
)

var (
	errUnknownOperator = errors.New("unknown comparison operator")
	errNotOrdered      = errors.New("operator requires numeric or timestamp values")

	// timeFormats contains supported timestamp formats for parsing.
	timeFormats = []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700 UTC",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// Operators lists the accepted condition operators, aliases included.
var Operators = []string{
	"equals", "equal",
	"not_equals", "not_equal",
	"greater_than", "gt",
	"greater_than_or_equal", "gte",
	"less_than", "lt",
	"less_than_or_equal", "lte",
}

// Conditions succeeds when every row satisfies every condition. A null
// value never satisfies a condition.
func Conditions(rows []*row.Row, conditions []Condition) Outcome {
	for _, cond := range conditions {
		if !validOperator(cond.Operator) {
			return fail(fmt.Sprintf("%v '%s' for column '%s'", errUnknownOperator, cond.Operator, cond.Column), nil)
		}
	}

	var (
		erroneous []*row.Row
		failed    []string
	)

	for _, r := range rows {
		flagged := false

		for _, cond := range conditions {
			ok, err := evaluateCondition(cond, r.Get(cond.Column))
			if ok {
				continue
			}

			flagged = true

			if err != nil {
				failed = append(failed, fmt.Sprintf("%s %s %s (%v)", cond.Column, cond.Operator, cond.Value, err))
			} else {
				failed = append(failed, fmt.Sprintf("%s %s %s", cond.Column, cond.Operator, cond.Value))
			}
		}

		if flagged {
			erroneous = append(erroneous, r)
		}
	}

	if len(erroneous) == 0 {
		return pass()
	}

	return fail("Failed conditions: "+strings.Join(dedupe(failed), ", "), erroneous)
}

func validOperator(op string) bool {
	for _, candidate := range Operators {
		if candidate == op {
			return true
		}
	}

	return false
}

// evaluateCondition compares a row value with the condition literal.
// Timestamps are compared first, then numbers, then strings.
func evaluateCondition(cond Condition, actual row.Value) (bool, error) {
	if actual.IsNull() {
		return false, nil
	}

	raw := actual.Raw()

	actualTime, actualIsTime := parseTimestamp(raw)
	expectedTime, expectedIsTime := parseTimestamp(cond.Value)

	if actualIsTime && expectedIsTime {
		return compareTimestamps(cond.Operator, actualTime, expectedTime)
	}

	actualFloat, actualIsNumeric := toFloat64(raw)
	expectedFloat, expectedIsNumeric := toFloat64(cond.Value)
	numeric := actualIsNumeric && expectedIsNumeric

	switch cond.Operator {
	case "equals", "equal":
		if numeric {
			return actualFloat == expectedFloat, nil
		}

		return fmt.Sprintf("%v", raw) == cond.Value, nil

	case "not_equals", "not_equal":
		if numeric {
			return actualFloat != expectedFloat, nil
		}

		return fmt.Sprintf("%v", raw) != cond.Value, nil
	}

	if !numeric {
		return false, fmt.Errorf("%s: %w, got %T", cond.Operator, errNotOrdered, raw)
	}

	switch cond.Operator {
	case "greater_than", "gt":
		return actualFloat > expectedFloat, nil
	case "greater_than_or_equal", "gte":
		return actualFloat >= expectedFloat, nil
	case "less_than", "lt":
		return actualFloat < expectedFloat, nil
	case "less_than_or_equal", "lte":
		return actualFloat <= expectedFloat, nil
	default:
		return false, fmt.Errorf("%w: %s", errUnknownOperator, cond.Operator)
	}
}

// compareTimestamps compares two timestamps using the specified operator.
func compareTimestamps(op string, actual, expected time.Time) (bool, error) {
	switch op {
	case "equals", "equal":
		return actual.Equal(expected), nil
	case "not_equals", "not_equal":
		return !actual.Equal(expected), nil
	case "greater_than", "gt":
		return actual.After(expected), nil
	case "greater_than_or_equal", "gte":
		return !actual.Before(expected), nil
	case "less_than", "lt":
		return actual.Before(expected), nil
	case "less_than_or_equal", "lte":
		return !actual.After(expected), nil
	default:
		return false, fmt.Errorf("%w: %s", errUnknownOperator, op)
	}
}

// parseTimestamp attempts to parse a value as a timestamp using known formats.
func parseTimestamp(val interface{}) (time.Time, bool) {
	switch v := val.(type) {
	case time.Time:
		return v, true
	case string:
		for _, format := range timeFormats {
			if t, err := time.Parse(format, v); err == nil {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

// toFloat64 attempts to convert a value to float64 for numeric comparisons.
func toFloat64(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}
