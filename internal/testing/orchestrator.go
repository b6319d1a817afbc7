// Package testing provides end-to-end test orchestration and execution.
package testing

import (
	"context"
	"fmt"
	"time"

	"github.com/ethpandaops/query-validator/internal/database"
	"github.com/ethpandaops/query-validator/internal/testing/metrics"
	"github.com/ethpandaops/query-validator/internal/testing/output"
	"github.com/ethpandaops/query-validator/internal/testing/result"
	"github.com/ethpandaops/query-validator/internal/testing/testdef"
	"github.com/sirupsen/logrus"
)

// OrchestratorConfig contains configuration for test orchestration.
type OrchestratorConfig struct {
	Logger    logrus.FieldLogger
	Engine    database.Engine
	Collector metrics.Collector
	Formatter output.Formatter
	Workers   int
	// Executor overrides the engine-backed executor when set.
	Executor Executor
}

// Orchestrator coordinates a full run: scheduling, reporting and aggregation.
type Orchestrator struct {
	log       logrus.FieldLogger
	scheduler Scheduler
	metrics   metrics.Collector
	formatter output.Formatter
}

// NewOrchestrator creates a new test orchestrator.
func NewOrchestrator(cfg *OrchestratorConfig) *Orchestrator {
	executor := cfg.Executor
	if executor == nil {
		executor = NewExecutor(cfg.Logger, cfg.Engine)
	}

	collector := cfg.Collector
	if collector == nil {
		collector = metrics.NewCollector(cfg.Logger)
	}

	return &Orchestrator{
		log:       cfg.Logger.WithField("component", "test_orchestrator"),
		scheduler: NewScheduler(cfg.Logger, executor, cfg.Workers),
		metrics:   collector,
		formatter: cfg.Formatter,
	}
}

// Start initializes the orchestrator and all its components.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.log.Debug("starting test orchestrator")

	if err := o.metrics.Start(ctx); err != nil {
		return fmt.Errorf("starting metrics collector: %w", err)
	}

	return nil
}

// Stop releases orchestrator resources.
func (o *Orchestrator) Stop() error {
	o.log.Debug("stopping test orchestrator")

	if err := o.metrics.Stop(); err != nil {
		return fmt.Errorf("stopping metrics collector: %w", err)
	}

	return nil
}

// Run executes every definition and returns the finalized summary.
// Cancelling ctx stops dispatching new tests; those already running finish.
func (o *Orchestrator) Run(ctx context.Context, defs []*testdef.TestDefinition) *result.Summary {
	start := time.Now()

	for outcome := range o.scheduler.Run(ctx, defs) {
		o.logTestResult(outcome)

		if err := o.metrics.Record(outcome); err != nil {
			o.log.WithError(err).WithField("test", outcome.Name).Error("failed to record test outcome")
		}
	}

	o.metrics.Finalize(time.Since(start))

	summary := o.metrics.Summary()
	o.logSummary(&summary)

	return &summary
}

// logTestResult reports one outcome. A misbehaving formatter never stops
// the run.
func (o *Orchestrator) logTestResult(outcome *result.TestOutcome) {
	if o.formatter == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			o.log.WithField("test", outcome.Name).WithField("panic", r).Error("failed to log test result")
		}
	}()

	o.formatter.LogTestResult(outcome)
}

func (o *Orchestrator) logSummary(summary *result.Summary) {
	if o.formatter == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			o.log.WithField("panic", r).Error("failed to log run summary")
		}
	}()

	o.formatter.LogSummary(summary)
}
