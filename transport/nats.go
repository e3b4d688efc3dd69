package transport

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/event"
)

// NATS publishes signals and forwarded bus traffic as JSON over a NATS
// connection. The engine treats it as fire-and-forget: a failed publish is
// logged and dropped, never surfaced to the emitting node.
type NATS struct {
	nc     *nats.Conn
	logger *slog.Logger

	// Bus forwarding teardown
	unsubOut func()
	unsubErr func()
}

// NATSOption is a functional option for configuring the NATS transport
type NATSOption func(*NATS)

// WithLogger sets a custom logger for the transport
func WithLogger(logger *slog.Logger) NATSOption {
	return func(t *NATS) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewNATS creates a transport over an established NATS connection. The
// caller owns the connection's lifecycle; Close detaches bus forwarding but
// leaves the connection open.
func NewNATS(nc *nats.Conn, opts ...NATSOption) (*NATS, error) {
	if nc == nil {
		return nil, errors.WrapConfig(errors.ErrMissingConfig,
			"NATS", "NewNATS", "connection check")
	}

	t := &NATS{
		nc:     nc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Publish marshals payload to JSON and publishes it on subject.
func (t *NATS) Publish(subject string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "NATS", "Publish", "payload marshaling")
	}
	if err := t.nc.Publish(subject, data); err != nil {
		return errors.Wrap(err, "NATS", "Publish", "subject "+subject)
	}
	return nil
}

// ForwardBus mirrors the bus onto NATS subjects: domain events on
// wiregraph.event.<type>, diagnostics on wiregraph.diag.<type>. Forwarding
// stays attached until Close.
func (t *NATS) ForwardBus(bus *event.Bus) {
	t.unsubOut = bus.SubscribeOut(func(e event.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			t.logger.Warn("event marshal failed", "type", e.Type, "error", err)
			return
		}
		if err := t.nc.Publish(EventSubject(string(e.Type)), data); err != nil {
			t.logger.Warn("event forward failed", "type", e.Type, "error", err)
		}
	})

	t.unsubErr = bus.SubscribeErr(func(d event.Diagnostic) {
		data, err := json.Marshal(d)
		if err != nil {
			t.logger.Warn("diagnostic marshal failed", "type", d.Type, "error", err)
			return
		}
		if err := t.nc.Publish(DiagSubject(string(d.Type)), data); err != nil {
			t.logger.Warn("diagnostic forward failed", "type", d.Type, "error", err)
		}
	})
}

// Close detaches bus forwarding. The NATS connection itself belongs to the
// caller and is left open.
func (t *NATS) Close() error {
	if t.unsubOut != nil {
		t.unsubOut()
		t.unsubOut = nil
	}
	if t.unsubErr != nil {
		t.unsubErr()
		t.unsubErr = nil
	}
	return nil
}
