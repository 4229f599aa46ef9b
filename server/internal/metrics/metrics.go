// Package metrics defines the Prometheus collectors of the usage pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "creditmeter"

// Fetch operations.
const (
	OpMessages = "messages"
	OpReport   = "report"
)

// Fetch outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeStatus    = "status"
	OutcomeTransport = "transport"
	OutcomeDecode    = "decode"
	OutcomeInvalid   = "invalid"
	OutcomeMissing   = "missing"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing,
// which keeps unit tests free of registry plumbing.
type Metrics struct {
	usageRequests   prometheus.Counter
	remoteFetches   *prometheus.CounterVec
	reportsInFlight prometheus.Gauge
	enrichDuration  prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		usageRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_requests_total",
			Help:      "Number of usage reports served.",
		}),
		remoteFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_fetches_total",
			Help:      "Remote data source calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		reportsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_fetches_in_flight",
			Help:      "Report fetches currently holding an admission permit.",
		}),
		enrichDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enrich_duration_seconds",
			Help:      "Wall time spent joining messages to reports.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.usageRequests, m.remoteFetches, m.reportsInFlight, m.enrichDuration)
	return m
}

// UsageRequest counts one served usage report.
func (m *Metrics) UsageRequest() {
	if m == nil {
		return
	}
	m.usageRequests.Inc()
}

// Fetch records the outcome of one remote call.
func (m *Metrics) Fetch(op, outcome string) {
	if m == nil {
		return
	}
	m.remoteFetches.WithLabelValues(op, outcome).Inc()
}

// ReportStarted marks a report fetch as in flight.
func (m *Metrics) ReportStarted() {
	if m == nil {
		return
	}
	m.reportsInFlight.Inc()
}

// ReportDone marks a report fetch as finished.
func (m *Metrics) ReportDone() {
	if m == nil {
		return
	}
	m.reportsInFlight.Dec()
}

// ObserveEnrich records how long one enrichment pass took.
func (m *Metrics) ObserveEnrich(d time.Duration) {
	if m == nil {
		return
	}
	m.enrichDuration.Observe(d.Seconds())
}

// Sum adds up every counter, gauge or untyped sample of the family called
// name. Returns 0 if the family is not present.
func Sum(families []*dto.MetricFamily, name string) float64 {
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			switch {
			case m.Counter != nil:
				total += m.Counter.GetValue()
			case m.Gauge != nil:
				total += m.Gauge.GetValue()
			case m.Untyped != nil:
				total += m.Untyped.GetValue()
			}
		}
	}
	return total
}
