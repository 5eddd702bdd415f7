package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.RequestsConsumed.Add(3)
	m.TupleFailures.WithLabelValues("curve_not_found").Inc()
	m.CurveFallbacks.WithLabelValues("HEAT_DELTA").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["climate_risk_requests_consumed_total"])
	assert.True(t, names["climate_risk_tuple_failures_total"])
	assert.True(t, names["climate_risk_curve_fallbacks_total"])

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RequestsConsumed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TupleFailures.WithLabelValues("curve_not_found")))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.ResultsProduced.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ResultsProduced))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ResultsProduced))
}
