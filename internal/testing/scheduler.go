package testing

import (
	"context"

	"github.com/ethpandaops/query-validator/internal/testing/result"
	"github.com/ethpandaops/query-validator/internal/testing/testdef"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of tests run concurrently when unset.
const DefaultWorkers = 4

const interruptedMessage = "run interrupted before test started"

// Scheduler runs test definitions on a bounded worker pool.
type Scheduler interface {
	// Run emits exactly one outcome per definition, in completion order,
	// and closes the channel when all are done.
	Run(ctx context.Context, defs []*testdef.TestDefinition) <-chan *result.TestOutcome
}

type scheduler struct {
	executor Executor
	workers  int
	log      logrus.FieldLogger
}

// NewScheduler creates a scheduler running at most workers tests at once.
func NewScheduler(log logrus.FieldLogger, executor Executor, workers int) Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &scheduler{
		executor: executor,
		workers:  workers,
		log:      log.WithField("component", "scheduler"),
	}
}

func (s *scheduler) Run(ctx context.Context, defs []*testdef.TestDefinition) <-chan *result.TestOutcome {
	// Buffered so workers never wait on the consumer.
	outcomes := make(chan *result.TestOutcome, len(defs))

	s.log.WithFields(logrus.Fields{
		"tests":   len(defs),
		"workers": s.workers,
	}).Info("running tests")

	go func() {
		defer close(outcomes)

		g := new(errgroup.Group)
		g.SetLimit(s.workers)

		for _, def := range defs {
			g.Go(func() error {
				if ctx.Err() != nil {
					outcomes <- interrupted(def)

					return nil
				}

				outcomes <- s.executor.Execute(ctx, def)

				return nil
			})
		}

		_ = g.Wait()
	}()

	return outcomes
}

func interrupted(def *testdef.TestDefinition) *result.TestOutcome {
	return &result.TestOutcome{
		Name:       def.Name,
		Status:     result.StatusError,
		Messages:   []string{interruptedMessage},
		Query:      def.Query,
		Assertions: def.Assertions,
	}
}

// Compile-time interface compliance check
var _ Scheduler = (*scheduler)(nil)
