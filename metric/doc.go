// Package metric provides Prometheus-based metrics collection and an HTTP
// server for engine monitoring and observability.
//
// The package offers a centralized metrics registry managing both core engine
// metrics (signals routed, handler faults, pool sizes) and custom
// owner-specific metrics, plus an HTTP server exposing everything in
// Prometheus format.
//
// # Architecture
//
//  1. Core Metrics: engine-level metrics automatically registered (Metrics type)
//  2. Owner Registry: extensible registration for owner-specific metrics (MetricsRegistrar interface)
//  3. HTTP Server: metrics endpoint with a health check (Server type)
//
// Core metrics cover the routing plane (signals, rule executions, routing
// errors, validation failures, handler faults) and the pool plane (size,
// in-use, checkouts, releases, exhaustions). Owners such as a custom node
// class register their own metrics through the MetricsRegistrar interface
// without touching the core set.
//
// # Basic Usage
//
// Setting up metrics collection and the HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Fatal(err)
//	    }
//	}()
//	defer server.Stop()
//
// Recording core metrics from the engine:
//
//	m := registry.CoreMetrics()
//	m.SignalsRouted.WithLabelValues("turret-1", "fired").Inc()
//	m.ManagedNodes.Set(float64(len(nodes)))
//
// Registering an owner-specific metric:
//
//	hits := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "mynode_hits_total",
//	    Help: "Total hits observed by mynode",
//	})
//	if err := registry.RegisterCounter("mynode", "hits_total", hits); err != nil {
//	    return err
//	}
package metric
