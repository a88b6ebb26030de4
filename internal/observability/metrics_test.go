package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_KeepsHelpAndSkipsRegistration(t *testing.T) {
	m := NewMetricsForTesting()

	assert.Contains(t, m.RowsIngested.Desc().String(), "Total observations accepted from loaded datasets.")
	assert.Contains(t, m.DatasetRows.Desc().String(), "Number of observations in the current dataset.")

	// Not registered globally, so the default registry still accepts it.
	require.NoError(t, prometheus.Register(m.RowsIngested))
	assert.True(t, prometheus.Unregister(m.RowsIngested))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.LiveChecks.WithLabelValues("anomaly").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.LiveChecks.WithLabelValues("anomaly")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.LiveChecks.WithLabelValues("anomaly")))

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(a.LiveChecks))
	count, err := testutil.GatherAndCount(reg, "temperature_anomaly_live_checks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
