// Package prometheus exports reasoner telemetry as Prometheus metrics.
//
//	obs := prometheus.NewObserver(promclient.DefaultRegisterer)
//	r := elgo.New(idx, elgo.WithMetricsObserver(obs))
//	http.Handle("/metrics", promhttp.Handler())
package prometheus

import (
	"time"

	"github.com/hupe1980/elgo"
	"github.com/prometheus/client_golang/prometheus"
)

// Observer implements elgo.MetricsObserver.
type Observer struct {
	classifyLatency *prometheus.HistogramVec
	contexts        prometheus.Gauge
	rules           *prometheus.CounterVec
	processed       prometheus.Gauge
	backlog         prometheus.Gauge
	incremental     *prometheus.CounterVec
	invalidated     prometheus.Counter
	seeds           prometheus.Counter
}

var _ elgo.MetricsObserver = (*Observer)(nil)

// NewObserver creates an observer and registers its collectors with reg.
// A nil reg leaves the collectors unregistered.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		classifyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "elgo_classify_duration_seconds",
			Help:    "Duration of classification runs",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		contexts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elgo_contexts",
			Help: "Number of saturation contexts after the last run",
		}),
		rules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elgo_rule_applications_total",
			Help: "Inference rule applications",
		}, []string{"rule"}),
		processed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elgo_run_processed_contexts",
			Help: "Contexts processed by the current run",
		}),
		backlog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elgo_run_backlog",
			Help: "Contexts waiting for a worker",
		}),
		incremental: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elgo_incremental_updates_total",
			Help: "Applied axiom change sets",
		}, []string{"mode"}),
		invalidated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "elgo_invalidated_contexts_total",
			Help: "Contexts reset by incremental updates",
		}),
		seeds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "elgo_invalidation_seeds_total",
			Help: "Seed contexts of incremental deletions",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			o.classifyLatency,
			o.contexts,
			o.rules,
			o.processed,
			o.backlog,
			o.incremental,
			o.invalidated,
			o.seeds,
		)
	}
	return o
}

// OnClassify implements elgo.MetricsObserver.
func (o *Observer) OnClassify(d time.Duration, contexts int, complete bool, err error) {
	status := "complete"
	switch {
	case err != nil:
		status = "error"
	case !complete:
		status = "interrupted"
	}
	o.classifyLatency.WithLabelValues(status).Observe(d.Seconds())
	o.contexts.Set(float64(contexts))
}

// OnRuleApplications implements elgo.MetricsObserver.
func (o *Observer) OnRuleApplications(counts elgo.RuleCounts) {
	counts.Each(func(name string, n uint64) {
		if n > 0 {
			o.rules.WithLabelValues(name).Add(float64(n))
		}
	})
}

// OnProgress implements elgo.MetricsObserver.
func (o *Observer) OnProgress(processed int64, backlog int) {
	o.processed.Set(float64(processed))
	o.backlog.Set(float64(backlog))
}

// OnIncremental implements elgo.MetricsObserver.
func (o *Observer) OnIncremental(seeds, invalidated int, fullReset bool) {
	mode := "incremental"
	if fullReset {
		mode = "full"
	}
	o.incremental.WithLabelValues(mode).Inc()
	o.invalidated.Add(float64(invalidated))
	o.seeds.Add(float64(seeds))
}
