package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())
	assert.NotNil(t, registry.CoreMetrics())
}

func gathered(t *testing.T, registry *MetricsRegistry, name string) bool {
	t.Helper()
	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	for _, mf := range metricFamilies {
		if mf.GetName() == name {
			return true
		}
	}
	return false
}

func TestMetricsRegistry_RegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})

	err := registry.RegisterCounter("test-owner", "test_counter", counter)
	require.NoError(t, err)

	counter.Inc()
	assert.True(t, gathered(t, registry, "test_counter"),
		"Counter should be registered in Prometheus registry")
}

func TestMetricsRegistry_RegisterGauge(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "A test gauge",
	})

	err := registry.RegisterGauge("test-owner", "test_gauge", gauge)
	require.NoError(t, err)

	gauge.Set(42)
	assert.True(t, gathered(t, registry, "test_gauge"))
}

func TestMetricsRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	first := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dup_counter",
		Help: "A test counter",
	})
	second := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dup_counter_other",
		Help: "A different collector under the same key",
	})

	require.NoError(t, registry.RegisterCounter("owner", "dup", first))

	err := registry.RegisterCounter("owner", "dup", second)
	assert.Error(t, err, "same owner.metric key must be rejected")
}

func TestMetricsRegistry_PrometheusConflict(t *testing.T) {
	registry := NewMetricsRegistry()

	// Same metric name registered under different keys still collides in
	// the underlying Prometheus registry
	first := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conflict_counter",
		Help: "A test counter",
	})
	second := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conflict_counter",
		Help: "A test counter",
	})

	require.NoError(t, registry.RegisterCounter("owner-a", "c", first))
	assert.Error(t, registry.RegisterCounter("owner-b", "c", second))
}

func TestMetricsRegistry_Unregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unreg_counter",
		Help: "A test counter",
	})
	require.NoError(t, registry.RegisterCounter("owner", "unreg", counter))

	assert.True(t, registry.Unregister("owner", "unreg"))
	assert.False(t, gathered(t, registry, "unreg_counter"))

	// Second unregister reports nothing to remove
	assert.False(t, registry.Unregister("owner", "unreg"))
}

func TestCoreMetricsUsable(t *testing.T) {
	registry := NewMetricsRegistry()
	m := registry.CoreMetrics()

	m.SignalsRouted.WithLabelValues("a", "s").Inc()
	m.RulesExecuted.Inc()
	m.HandlerFaults.WithLabelValues("b", "onS").Inc()
	m.ManagedNodes.Set(2)
	m.PoolSize.WithLabelValues("projectiles").Set(4)

	assert.True(t, gathered(t, registry, "wiregraph_routing_signals_total"))
	assert.True(t, gathered(t, registry, "wiregraph_pool_size"))
}

func TestMetricsRegistry_VecRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vec_counter",
		Help: "A test counter vec",
	}, []string{"label"})

	require.NoError(t, registry.RegisterCounterVec("owner", "vec", vec))
	vec.WithLabelValues("x").Inc()
	assert.True(t, gathered(t, registry, "vec_counter"))
}
