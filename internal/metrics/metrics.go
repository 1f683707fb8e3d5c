// Package metrics exposes Prometheus collectors for settlement activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "settleup_"

// Result labels.
const (
	ResultSuccess    = "success"
	ResultError      = "error"
	ResultUnbalanced = "unbalanced"
)

// Recorder owns the collectors and the registry they are registered on.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	computeTotal      *prometheus.CounterVec
	computeLatency    *prometheus.HistogramVec
	transfersProposed prometheus.Counter
	settlementsTotal  prometheus.Counter
	settledAmount     prometheus.Counter
	exportTotal       *prometheus.CounterVec
}

// New creates a Recorder on a fresh registry, including Go and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		computeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_compute_total",
				Help: "Total settlement computations by result",
			},
			[]string{"result"},
		),
		computeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "settlement_compute_latency_seconds",
				Help:    "Settlement computation latency in seconds, including storage reads",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		transfersProposed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "transfers_proposed_total",
				Help: "Total transfers proposed by settlement computations",
			},
		),
		settlementsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlements_recorded_total",
				Help: "Total settlements recorded by members",
			},
		),
		settledAmount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "settled_amount_minor_total",
				Help: "Sum of recorded settlement amounts in minor units",
			},
		),
		exportTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_export_total",
				Help: "Total settlement exports by format and result",
			},
			[]string{"format", "result"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.computeTotal,
		r.computeLatency,
		r.transfersProposed,
		r.settlementsTotal,
		r.settledAmount,
		r.exportTotal,
	)
	return r
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveCompute records one settlement computation.
func (r *Recorder) ObserveCompute(result string, transfers int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.computeTotal.WithLabelValues(result).Inc()
	r.computeLatency.WithLabelValues(result).Observe(elapsed.Seconds())
	r.transfersProposed.Add(float64(transfers))
}

// ObserveSettlement records a settlement recorded by a member.
func (r *Recorder) ObserveSettlement(amount int64) {
	if r == nil {
		return
	}
	r.settlementsTotal.Inc()
	r.settledAmount.Add(float64(amount))
}

// ObserveExport records an export attempt.
func (r *Recorder) ObserveExport(format, result string) {
	if r == nil {
		return
	}
	r.exportTotal.WithLabelValues(format, result).Inc()
}
