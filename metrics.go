package elgo

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/elgo/internal/saturation"
)

// RuleCounts holds the number of applications per inference rule.
// Use Each to iterate the rules by name.
type RuleCounts = saturation.RuleCounts

// MetricsObserver receives reasoner telemetry.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see the metrics/prometheus package).
//
// Methods may be called from worker goroutines and must be safe for
// concurrent use.
type MetricsObserver interface {
	// OnClassify is called after each classification run.
	// contexts is the number of contexts in the saturation state, complete is
	// false if the run was interrupted, err is nil if successful.
	OnClassify(duration time.Duration, contexts int, complete bool, err error)

	// OnRuleApplications is called after each run with the rule applications
	// of that run.
	OnRuleApplications(counts RuleCounts)

	// OnProgress is called periodically during a run with the number of
	// saturated context activations and the number of queued contexts.
	OnProgress(processed int64, backlog int)

	// OnIncremental is called when axiom changes are applied to the state.
	OnIncremental(seeds, invalidated int, fullReset bool)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
// Use this when metrics collection is not needed.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnClassify(time.Duration, int, bool, error) {}
func (NoopMetricsObserver) OnRuleApplications(RuleCounts)              {}
func (NoopMetricsObserver) OnProgress(int64, int)                      {}
func (NoopMetricsObserver) OnIncremental(int, int, bool)               {}

// BasicMetricsObserver provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsObserver struct {
	ClassifyCount      atomic.Int64
	ClassifyErrors     atomic.Int64
	ClassifyIncomplete atomic.Int64
	ClassifyTotalNanos atomic.Int64
	Contexts           atomic.Int64
	ProgressReports    atomic.Int64
	IncrementalCount   atomic.Int64
	FullResets         atomic.Int64
	Invalidated        atomic.Int64

	mu    sync.Mutex
	rules RuleCounts
}

// OnClassify implements MetricsObserver.
func (b *BasicMetricsObserver) OnClassify(duration time.Duration, contexts int, complete bool, err error) {
	b.ClassifyCount.Add(1)
	b.ClassifyTotalNanos.Add(duration.Nanoseconds())
	b.Contexts.Store(int64(contexts))
	if err != nil {
		b.ClassifyErrors.Add(1)
	}
	if !complete {
		b.ClassifyIncomplete.Add(1)
	}
}

// OnRuleApplications implements MetricsObserver.
func (b *BasicMetricsObserver) OnRuleApplications(counts RuleCounts) {
	b.mu.Lock()
	b.rules.Add(&counts)
	b.mu.Unlock()
}

// OnProgress implements MetricsObserver.
func (b *BasicMetricsObserver) OnProgress(int64, int) {
	b.ProgressReports.Add(1)
}

// OnIncremental implements MetricsObserver.
func (b *BasicMetricsObserver) OnIncremental(_, invalidated int, fullReset bool) {
	b.IncrementalCount.Add(1)
	b.Invalidated.Add(int64(invalidated))
	if fullReset {
		b.FullResets.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsObserver) GetStats() BasicMetricsStats {
	b.mu.Lock()
	rules := b.rules
	b.mu.Unlock()
	return BasicMetricsStats{
		ClassifyCount:      b.ClassifyCount.Load(),
		ClassifyErrors:     b.ClassifyErrors.Load(),
		ClassifyIncomplete: b.ClassifyIncomplete.Load(),
		ClassifyAvgNanos:   b.getAvgClassifyNanos(),
		Contexts:           b.Contexts.Load(),
		ProgressReports:    b.ProgressReports.Load(),
		IncrementalCount:   b.IncrementalCount.Load(),
		FullResets:         b.FullResets.Load(),
		Invalidated:        b.Invalidated.Load(),
		Rules:              rules,
	}
}

func (b *BasicMetricsObserver) getAvgClassifyNanos() int64 {
	count := b.ClassifyCount.Load()
	if count == 0 {
		return 0
	}
	return b.ClassifyTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsObserver state.
type BasicMetricsStats struct {
	ClassifyCount      int64
	ClassifyErrors     int64
	ClassifyIncomplete int64
	ClassifyAvgNanos   int64
	Contexts           int64
	ProgressReports    int64
	IncrementalCount   int64
	FullResets         int64
	Invalidated        int64
	Rules              RuleCounts
}
