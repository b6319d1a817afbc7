package testing

import (
	"context"
	"fmt"
	"time"

	"github.com/ethpandaops/query-validator/internal/database"
	"github.com/ethpandaops/query-validator/internal/testing/assertion"
	"github.com/ethpandaops/query-validator/internal/testing/result"
	"github.com/ethpandaops/query-validator/internal/testing/row"
	"github.com/ethpandaops/query-validator/internal/testing/testdef"
	"github.com/sirupsen/logrus"
)

// Executor runs a single test definition to an outcome.
type Executor interface {
	// Execute never returns nil. Failures of any kind are folded into
	// the outcome status.
	Execute(ctx context.Context, def *testdef.TestDefinition) *result.TestOutcome
}

type executor struct {
	engine database.Engine
	log    logrus.FieldLogger
}

// NewExecutor creates an executor that queries through engine.
func NewExecutor(log logrus.FieldLogger, engine database.Engine) Executor {
	return &executor{
		engine: engine,
		log:    log.WithField("component", "test_executor"),
	}
}

func (e *executor) Execute(ctx context.Context, def *testdef.TestDefinition) *result.TestOutcome {
	start := time.Now()

	status, messages, erroneous := e.evaluate(ctx, def)

	outcome := &result.TestOutcome{
		Name:          def.Name,
		Status:        status,
		Duration:      time.Since(start),
		Messages:      messages,
		ErroneousRows: erroneous,
		Query:         def.Query,
		Assertions:    def.Assertions,
	}

	e.log.WithFields(logrus.Fields{
		"test":     def.Name,
		"status":   status,
		"duration": outcome.Duration,
	}).Debug("test executed")

	return outcome
}

// evaluate queries on a dedicated connection and dispatches the assertions.
func (e *executor) evaluate(
	ctx context.Context,
	def *testdef.TestDefinition,
) (status result.Status, messages []string, erroneous []*row.Row) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("test", def.Name).WithField("panic", r).Error("recovered from panic during test")

			status, messages, erroneous = result.StatusError, []string{fmt.Sprintf("panic: %v", r)}, nil
		}
	}()

	// A started test runs to completion even when the run is interrupted.
	ctx = context.WithoutCancel(ctx)

	rows, err := e.query(ctx, def.Query)
	if err != nil {
		return result.StatusError, []string{err.Error()}, nil
	}

	failures := assertion.Dispatch(rows, def.Assertions)
	if len(failures) == 0 {
		return result.StatusPass, nil, nil
	}

	messages = make([]string, 0, len(failures))

	for _, failure := range failures {
		messages = append(messages, fmt.Sprintf("Assertion '%s' failed: %s", failure.Kind, failure.Outcome.Message))
		erroneous = append(erroneous, failure.Outcome.ErroneousRows...)
	}

	return result.StatusFail, messages, erroneous
}

func (e *executor) query(ctx context.Context, query string) ([]*row.Row, error) {
	conn, err := e.engine.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return conn.Query(ctx, query)
}

// Compile-time interface compliance check
var _ Executor = (*executor)(nil)
