package measure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMeasure(t *testing.T) {
	m := NewDefaultMeasure()
	metric := m.AddMetric("double", 1)
	require.NotNil(t, metric)
	assert.Same(t, metric, m.GetMetric("double"))
	assert.Len(t, m.AllMetrics(), 1)
}

func TestMetricDurations(t *testing.T) {
	m := NewDefaultMeasure()
	metric := m.AddMetric("double", 1)

	metric.AddDuration(2 * time.Second)
	metric.AddDuration(4 * time.Second)
	assert.Equal(t, 3*time.Second, metric.AVGDuration())

	metric.SetTotalDuration(10 * time.Second)
	assert.Equal(t, 10*time.Second, metric.GetTotalDuration())
}

func TestMetricTransports(t *testing.T) {
	m := NewDefaultMeasure()
	metric := m.AddMetric("double", 2)

	metric.AddTransportDuration("emit", 2*time.Second)
	metric.AddTransportDuration("emit", 6*time.Second)

	avg := metric.AVGTransportDuration()
	require.Contains(t, avg, "emit")
	// Average per item, shared across the concurrent consumers.
	assert.Equal(t, 2*time.Second, avg["emit"].Elapsed)
}

func TestMetricEmpty(t *testing.T) {
	m := NewDefaultMeasure()
	metric := m.AddMetric("double", 1)

	assert.Equal(t, time.Duration(0), metric.AVGDuration())
	assert.Empty(t, metric.AllTransports())
}
