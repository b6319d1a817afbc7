// Package metrics aggregates test outcomes into a run summary.
package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethpandaops/query-validator/internal/testing/result"
	"github.com/sirupsen/logrus"
)

// ErrFinalized is returned when recording into a finalized collector.
var ErrFinalized = errors.New("collector already finalized")

// Collector interface for outcome aggregation
type Collector interface {
	Start(ctx context.Context) error
	Stop() error
	Record(outcome *result.TestOutcome) error
	Finalize(runtime time.Duration)
	Summary() result.Summary
}

// collector implements Collector interface
type collector struct {
	log       logrus.FieldLogger
	mu        sync.RWMutex
	summary   result.Summary
	finalized bool
	startTime time.Time
}

// NewCollector creates a new outcome collector.
func NewCollector(log logrus.FieldLogger) Collector {
	return &collector{
		log: log.WithField("component", "metrics_collector"),
		summary: result.Summary{
			Details: make([]*result.TestOutcome, 0, 50), // capacity hint
		},
	}
}

func (c *collector) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()

	c.log.Debug("metrics collector started")

	return nil
}

func (c *collector) Stop() error {
	c.log.Debug("metrics collector stopped")

	return nil
}

// Record counts the outcome under its status and appends it to the details.
func (c *collector) Record(outcome *result.TestOutcome) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return ErrFinalized
	}

	c.summary.Total++

	switch outcome.Status {
	case result.StatusPass:
		c.summary.Passed++
	case result.StatusFail:
		c.summary.Failed++
	default:
		c.summary.Errors++
	}

	c.summary.Details = append(c.summary.Details, outcome)

	return nil
}

// Finalize stores the run's wall-clock runtime and freezes the collector.
// A non-positive runtime falls back to the time since Start.
func (c *collector) Finalize(runtime time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return
	}

	if runtime <= 0 && !c.startTime.IsZero() {
		runtime = time.Since(c.startTime)
	}

	c.summary.Runtime = runtime
	c.finalized = true

	c.log.WithFields(logrus.Fields{
		"total":   c.summary.Total,
		"passed":  c.summary.Passed,
		"failed":  c.summary.Failed,
		"errors":  c.summary.Errors,
		"runtime": runtime,
	}).Debug("metrics collector finalized")
}

// Summary returns a copy of the current summary.
func (c *collector) Summary() result.Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := c.summary
	// Return copy to avoid race conditions
	summary.Details = make([]*result.TestOutcome, len(c.summary.Details))
	copy(summary.Details, c.summary.Details)

	return summary
}

// Compile-time interface compliance check
var _ Collector = (*collector)(nil)
