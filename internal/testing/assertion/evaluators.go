package assertion

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ethpandaops/query-validator/internal/testing/row"
)

// RowCount succeeds when rows holds exactly expected rows. On failure
// every row is erroneous.
func RowCount(rows []*row.Row, expected int) Outcome {
	if len(rows) == expected {
		return pass()
	}

	return fail(fmt.Sprintf("Expected %d, got %d", expected, len(rows)), rows)
}

// Has succeeds when every rule's values are observed in its column.
// Rows holding a non-null value outside a rule's value set are reported
// as erroneous when the assertion fails.
func Has(rows []*row.Row, rules []ValueRule) Outcome {
	var (
		expected  = make([]map[string]struct{}, len(rules))
		remaining = make([]map[string]struct{}, len(rules))
		erroneous []*row.Row
	)

	for i, rule := range rules {
		expected[i] = toSet(rule.Values)
		remaining[i] = toSet(rule.Values)
	}

	for _, r := range rows {
		flagged := false

		for i, rule := range rules {
			v := r.Get(rule.Column)
			if v.IsNull() {
				continue
			}

			s, isText := v.Text()
			if isText {
				delete(remaining[i], s)
			}

			if _, ok := expected[i][s]; !ok || !isText {
				flagged = true
			}
		}

		if flagged {
			erroneous = append(erroneous, r)
		}
	}

	var notFound []string

	for i, rule := range rules {
		if len(remaining[i]) == 0 {
			continue
		}

		notFound = append(notFound, fmt.Sprintf("%s: [%s]", rule.Column, strings.Join(sortedKeys(remaining[i]), ", ")))
	}

	if len(notFound) == 0 {
		return pass()
	}

	return fail("Expected values not found: "+strings.Join(notFound, "; "), erroneous)
}

// Missing succeeds when no row holds a forbidden value (or a value matching
// a forbidden pattern) in the rule's column.
func Missing(rows []*row.Row, rules []ValueRule) Outcome {
	type forbidden struct {
		column   string
		values   map[string]struct{}
		patterns []*regexp.Regexp
	}

	var (
		checks     = make([]forbidden, 0, len(rules))
		erroneous  []*row.Row
		violations []string
	)

	for _, rule := range rules {
		check := forbidden{column: rule.Column, values: toSet(rule.Values)}

		for _, expr := range rule.Regex {
			re, err := regexp.Compile(expr)
			if err != nil {
				return fail(fmt.Sprintf("Invalid regex '%s' for column '%s': %v", expr, rule.Column, err), nil)
			}

			check.patterns = append(check.patterns, re)
		}

		checks = append(checks, check)
	}

	for _, r := range rows {
		flagged := false

		for _, check := range checks {
			s, ok := r.Get(check.column).Text()
			if !ok {
				continue
			}

			if _, hit := check.values[s]; hit || matchesAny(check.patterns, s) {
				flagged = true

				violations = append(violations, fmt.Sprintf("'%s' in column '%s'", s, check.column))
			}
		}

		if flagged {
			erroneous = append(erroneous, r)
		}
	}

	if len(erroneous) == 0 {
		return pass()
	}

	return fail("Unexpected values found: "+strings.Join(dedupe(violations), ", "), erroneous)
}

// NoNulls succeeds when none of columns holds null in any row.
func NoNulls(rows []*row.Row, columns []string) Outcome {
	erroneous, offending := scanColumns(rows, columns, func(v row.Value) bool { return v.IsNull() })
	if len(erroneous) == 0 {
		return pass()
	}

	return fail(fmt.Sprintf("Unexpected 'null' value in column(s) %s", quoteJoin(offending)), erroneous)
}

// OnlyNulls succeeds when every one of columns holds null in every row.
func OnlyNulls(rows []*row.Row, columns []string) Outcome {
	erroneous, offending := scanColumns(rows, columns, func(v row.Value) bool { return !v.IsNull() })
	if len(erroneous) == 0 {
		return pass()
	}

	return fail(fmt.Sprintf("Unexpected non-null value in column(s) %s", quoteJoin(offending)), erroneous)
}

// scanColumns returns each row (once) for which violates holds on any
// column, and the columns that violated at least once in column order.
func scanColumns(rows []*row.Row, columns []string, violates func(row.Value) bool) ([]*row.Row, []string) {
	var (
		erroneous []*row.Row
		hit       = make(map[string]bool, len(columns))
	)

	for _, r := range rows {
		flagged := false

		for _, col := range columns {
			if violates(r.Get(col)) {
				flagged = true
				hit[col] = true
			}
		}

		if flagged {
			erroneous = append(erroneous, r)
		}
	}

	offending := make([]string, 0, len(hit))
	for _, col := range columns {
		if hit[col] {
			offending = append(offending, col)
			delete(hit, col)
		}
	}

	return erroneous, offending
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}

	return false
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))

	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}

		seen[item] = struct{}{}
		out = append(out, item)
	}

	return out
}

func quoteJoin(columns []string) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = "'" + col + "'"
	}

	return strings.Join(quoted, ", ")
}
