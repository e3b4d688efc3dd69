package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/purefictiongames/wiregraph/errors"
)

// MetricsRegistrar defines the interface for registering owner-specific metrics
type MetricsRegistrar interface {
	RegisterCounter(ownerName, metricName string, counter prometheus.Counter) error
	RegisterGauge(ownerName, metricName string, gauge prometheus.Gauge) error
	RegisterHistogram(ownerName, metricName string, histogram prometheus.Histogram) error
	RegisterCounterVec(ownerName, metricName string, counterVec *prometheus.CounterVec) error
	RegisterGaugeVec(ownerName, metricName string, gaugeVec *prometheus.GaugeVec) error
	RegisterHistogramVec(ownerName, metricName string, histogramVec *prometheus.HistogramVec) error
	Unregister(ownerName, metricName string) bool
}

// MetricsRegistry manages the registration and lifecycle of metrics
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registeredMetrics  map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewMetricsRegistry creates a new metrics registry with core engine metrics
func NewMetricsRegistry() *MetricsRegistry {
	prometheusRegistry := prometheus.NewRegistry()

	registry := &MetricsRegistry{
		prometheusRegistry: prometheusRegistry,
		registeredMetrics:  make(map[string]prometheus.Collector),
	}

	// Initialize and register core metrics
	registry.Metrics = NewMetrics()
	registry.prometheusRegistry.MustRegister(registry.Metrics.collectors()...)

	// Add Go runtime metrics
	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the core engine metrics
func (r *MetricsRegistry) CoreMetrics() *Metrics {
	return r.Metrics
}

// register adds a collector under "owner.metric", rejecting duplicates both
// in this registry and in the underlying Prometheus registry.
func (r *MetricsRegistry) register(ownerName, metricName, operation string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", ownerName, metricName)

	if _, exists := r.registeredMetrics[key]; exists {
		return errors.WrapConfig(
			fmt.Errorf("metric %s already registered for owner %s", metricName, ownerName),
			"MetricsRegistry", operation, "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return errors.WrapConfig(err, "MetricsRegistry", operation,
				fmt.Sprintf("prometheus conflict for metric %s", metricName))
		}
		return errors.WrapConfig(err, "MetricsRegistry", operation,
			"prometheus registration")
	}

	r.registeredMetrics[key] = collector
	return nil
}

// RegisterCounter registers a counter metric for an owner
func (r *MetricsRegistry) RegisterCounter(ownerName, metricName string, counter prometheus.Counter) error {
	return r.register(ownerName, metricName, "RegisterCounter", counter)
}

// RegisterGauge registers a gauge metric for an owner
func (r *MetricsRegistry) RegisterGauge(ownerName, metricName string, gauge prometheus.Gauge) error {
	return r.register(ownerName, metricName, "RegisterGauge", gauge)
}

// RegisterHistogram registers a histogram metric for an owner
func (r *MetricsRegistry) RegisterHistogram(ownerName, metricName string, histogram prometheus.Histogram) error {
	return r.register(ownerName, metricName, "RegisterHistogram", histogram)
}

// RegisterCounterVec registers a counter vector metric for an owner
func (r *MetricsRegistry) RegisterCounterVec(ownerName, metricName string, counterVec *prometheus.CounterVec) error {
	return r.register(ownerName, metricName, "RegisterCounterVec", counterVec)
}

// RegisterGaugeVec registers a gauge vector metric for an owner
func (r *MetricsRegistry) RegisterGaugeVec(ownerName, metricName string, gaugeVec *prometheus.GaugeVec) error {
	return r.register(ownerName, metricName, "RegisterGaugeVec", gaugeVec)
}

// RegisterHistogramVec registers a histogram vector metric for an owner
func (r *MetricsRegistry) RegisterHistogramVec(
	ownerName, metricName string, histogramVec *prometheus.HistogramVec) error {
	return r.register(ownerName, metricName, "RegisterHistogramVec", histogramVec)
}

// Unregister removes a metric from the registry
func (r *MetricsRegistry) Unregister(ownerName, metricName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", ownerName, metricName)

	collector, exists := r.registeredMetrics[key]
	if !exists {
		return false
	}

	success := r.prometheusRegistry.Unregister(collector)
	if success {
		delete(r.registeredMetrics, key)
	}

	return success
}
