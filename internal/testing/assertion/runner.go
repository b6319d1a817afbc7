// Package assertion evaluates declarative assertions against query result rows.
package assertion

import (
	"fmt"

	"github.com/ethpandaops/query-validator/internal/testing/row"
)

// evaluator adapts a typed evaluator to the Assertion union.
type evaluator func(rows []*row.Row, a Assertion) Outcome

var evaluators = map[Kind]evaluator{
	KindCount: func(rows []*row.Row, a Assertion) Outcome {
		return RowCount(rows, a.Count)
	},
	KindHas: func(rows []*row.Row, a Assertion) Outcome {
		return Has(rows, a.Values)
	},
	KindMissing: func(rows []*row.Row, a Assertion) Outcome {
		return Missing(rows, a.Values)
	},
	KindNoNulls: func(rows []*row.Row, a Assertion) Outcome {
		return NoNulls(rows, a.Columns)
	},
	KindOnlyNulls: func(rows []*row.Row, a Assertion) Outcome {
		return OnlyNulls(rows, a.Columns)
	},
	KindConditions: func(rows []*row.Row, a Assertion) Outcome {
		return Conditions(rows, a.Conditions)
	},
}

// Evaluate runs a single assertion. Unknown kinds produce a failed outcome.
func Evaluate(rows []*row.Row, a Assertion) Outcome {
	eval, ok := evaluators[a.Kind]
	if !ok {
		return fail(fmt.Sprintf("Unknown assertion '%s'", a.Kind), nil)
	}

	return eval(rows, a)
}

// Dispatch evaluates every assertion in order and returns the failures.
// Evaluation never stops at the first failure.
func Dispatch(rows []*row.Row, assertions []Assertion) []Failure {
	var failures []Failure

	for _, a := range assertions {
		outcome := Evaluate(rows, a)
		if outcome.Success {
			continue
		}

		failures = append(failures, Failure{Kind: a.Kind, Outcome: outcome})
	}

	return failures
}
