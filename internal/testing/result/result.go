// Package result holds the per-test and per-run outcome types.
package result

import (
	"time"

	"github.com/ethpandaops/query-validator/internal/testing/assertion"
	"github.com/ethpandaops/query-validator/internal/testing/row"
)

// Status is the verdict of a single test.
type Status string

const (
	// StatusPass means every assertion held.
	StatusPass Status = "PASS"
	// StatusFail means at least one assertion was violated or unknown.
	StatusFail Status = "FAIL"
	// StatusError means the query could not be executed or evaluated.
	StatusError Status = "ERROR"
)

// TestOutcome is the immutable result of executing one test definition.
type TestOutcome struct {
	Name          string
	Status        Status
	Duration      time.Duration
	Messages      []string
	ErroneousRows []*row.Row
	Query         string
	Assertions    []assertion.Assertion
}

// Passed reports whether the test passed.
func (o *TestOutcome) Passed() bool {
	return o.Status == StatusPass
}

// Summary aggregates the outcomes of one run.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Errors  int
	Details []*TestOutcome
	Runtime time.Duration
}

// Succeeded reports whether every recorded test passed.
func (s *Summary) Succeeded() bool {
	return s.Failed == 0 && s.Errors == 0
}
