package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.UsageRequest()
	m.Fetch(OpReport, OutcomeOK)
	m.Fetch(OpReport, OutcomeOK)
	m.Fetch(OpReport, OutcomeStatus)
	m.Fetch(OpMessages, OutcomeOK)
	m.ReportStarted()
	m.ReportStarted()
	m.ReportDone()
	m.ObserveEnrich(25 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.usageRequests))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.remoteFetches.WithLabelValues(OpReport, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsInFlight))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, 4.0, Sum(families, "creditmeter_remote_fetches_total"))
	assert.Equal(t, 1.0, Sum(families, "creditmeter_report_fetches_in_flight"))
	assert.Equal(t, 0.0, Sum(families, "creditmeter_not_a_metric"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.UsageRequest()
		m.Fetch(OpReport, OutcomeOK)
		m.ReportStarted()
		m.ReportDone()
		m.ObserveEnrich(time.Second)
	})
}
