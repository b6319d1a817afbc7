package assertion

import (
	"github.com/ethpandaops/query-validator/internal/testing/row"
)

// Kind names an assertion as it appears under a test's assertions mapping.
type Kind string

const (
	// KindCount checks the number of returned rows.
	KindCount Kind = "count"
	// KindHas checks that expected values appear in a column.
	KindHas Kind = "has"
	// KindMissing checks that forbidden values never appear in a column.
	KindMissing Kind = "missing"
	// KindNoNulls checks that columns never hold null.
	KindNoNulls Kind = "no_nulls"
	// KindOnlyNulls checks that columns only hold null.
	KindOnlyNulls Kind = "only_nulls"
	// KindConditions checks per-row comparisons against a literal.
	KindConditions Kind = "conditions"
)

// Kinds lists every recognised kind.
var Kinds = []Kind{KindCount, KindHas, KindMissing, KindNoNulls, KindOnlyNulls, KindConditions}

// Known reports whether k is a recognised kind.
func (k Kind) Known() bool {
	_, ok := evaluators[k]

	return ok
}

// ValueRule pairs a column with a set of string values.
// Regex is only honoured by the missing assertion.
type ValueRule struct {
	Column string   `yaml:"column" json:"column"`
	Values []string `yaml:"values" json:"values"`
	Regex  []string `yaml:"regex,omitempty" json:"regex,omitempty"`
}

// Condition compares a column against a literal value.
type Condition struct {
	Column   string `yaml:"column" json:"column"`
	Operator string `yaml:"operator" json:"operator"`
	Value    string `yaml:"value" json:"value"`
}

// Assertion is one entry of a test's assertions mapping. Only the rule
// field matching Kind is populated.
type Assertion struct {
	Kind       Kind
	Count      int
	Values     []ValueRule
	Columns    []string
	Conditions []Condition
}

// Outcome is the result of evaluating one assertion against a row set.
type Outcome struct {
	Success       bool
	Message       string
	ErroneousRows []*row.Row
}

// Failure is a failed assertion reported by Dispatch.
type Failure struct {
	Kind    Kind
	Outcome Outcome
}

func pass() Outcome {
	return Outcome{Success: true}
}

func fail(message string, rows []*row.Row) Outcome {
	return Outcome{
		Success:       false,
		Message:       message,
		ErroneousRows: rows,
	}
}
