package node

import (
	"log/slog"

	"github.com/purefictiongames/wiregraph/event"
	"github.com/purefictiongames/wiregraph/metric"
	"github.com/purefictiongames/wiregraph/transport"
)

// Dependencies provides all external collaborators a node may need. Factories
// receive it at spawn time rather than reaching for globals.
type Dependencies struct {
	Transport       transport.Transport     // Destination for unintercepted emissions (can be nil)
	Bus             *event.Bus              // Domain event / diagnostic channels (can be nil)
	MetricsRegistry *metric.MetricsRegistry // Metrics registry for Prometheus (can be nil)
	Logger          *slog.Logger            // Structured logger (can be nil, defaults to slog.Default())
}

// GetLogger returns the configured logger or a default logger if none is provided
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// GetLoggerWithNode returns a logger configured with node context
func (d *Dependencies) GetLoggerWithNode(id string) *slog.Logger {
	return d.GetLogger().With("node", id)
}

// GetTransport returns the configured transport or a discarding one
func (d *Dependencies) GetTransport() transport.Transport {
	if d.Transport != nil {
		return d.Transport
	}
	return transport.NewNull()
}
