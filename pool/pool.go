package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/event"
	"github.com/purefictiongames/wiregraph/metric"
	"github.com/purefictiongames/wiregraph/node"
	"github.com/purefictiongames/wiregraph/pkg/sched"
)

// OwnerTag identifies the pool's layer in a node's emitter chain.
const OwnerTag = "pool"

// contextPrefix marks a field-mapping source read from the pool's shared
// context instead of the checkout call's own context.
const contextPrefix = "$"

// Policy selects the pool's allocation behavior.
type Policy string

const (
	// Fixed pre-allocates exactly Size nodes and never grows or shrinks.
	Fixed Policy = "fixed"
	// Elastic grows on demand up to Max and shrinks idle nodes toward Min.
	Elastic Policy = "elastic"
)

// SignalSpec configures one signal delivered to a node at checkout. Fields
// maps payload field names to source keys: a plain key reads from the
// checkout context, a "$"-prefixed key reads from the pool's shared context.
type SignalSpec struct {
	Signal  string            `json:"signal" yaml:"signal"`
	Handler string            `json:"handler" yaml:"handler"`
	Fields  map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Config describes one pool.
type Config struct {
	Class  string `json:"class" yaml:"class"`
	Policy Policy `json:"policy" yaml:"policy"`

	// Size is the fixed policy's node count.
	Size int `json:"size,omitempty" yaml:"size,omitempty"`

	// Min, Max, and IdleTTL govern the elastic policy. Idle nodes older
	// than IdleTTL are candidates for the shrink sweep.
	Min     int           `json:"min,omitempty" yaml:"min,omitempty"`
	Max     int           `json:"max,omitempty" yaml:"max,omitempty"`
	IdleTTL time.Duration `json:"idleTtl,omitempty" yaml:"idleTtl,omitempty"`

	// NodeConfig is passed to the class factory for every spawned node.
	NodeConfig map[string]any `json:"nodeConfig,omitempty" yaml:"nodeConfig,omitempty"`

	// Context is the pool's shared data, readable from checkout signal
	// field mappings through the "$" prefix.
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty"`

	// CheckoutSignals are delivered to a node on every successful checkout,
	// in order.
	CheckoutSignals []SignalSpec `json:"checkoutSignals,omitempty" yaml:"checkoutSignals,omitempty"`

	// ReleaseOn names a signal that automatically releases the node when it
	// passes through the node's emitter. Empty disables auto-release.
	ReleaseOn string `json:"releaseOn,omitempty" yaml:"releaseOn,omitempty"`
}

// Validate checks the configuration against its declared policy.
func (c Config) Validate() error {
	if c.Class == "" {
		return errors.WrapConfig(
			fmt.Errorf("%w: missing class", errors.ErrInvalidConfig),
			"Pool", "Validate", "class check")
	}
	switch c.Policy {
	case Fixed:
		if c.Size <= 0 {
			return errors.WrapConfig(
				fmt.Errorf("%w: fixed pool needs size > 0, got %d", errors.ErrInvalidConfig, c.Size),
				"Pool", "Validate", "size check")
		}
	case Elastic:
		if c.Min < 0 || c.Max <= 0 || c.Min > c.Max {
			return errors.WrapConfig(
				fmt.Errorf("%w: elastic pool needs 0 <= min <= max with max > 0, got min=%d max=%d",
					errors.ErrInvalidConfig, c.Min, c.Max),
				"Pool", "Validate", "bounds check")
		}
		if c.IdleTTL <= 0 {
			return errors.WrapConfig(
				fmt.Errorf("%w: elastic pool needs idleTtl > 0", errors.ErrInvalidConfig),
				"Pool", "Validate", "ttl check")
		}
	default:
		return errors.WrapConfig(
			fmt.Errorf("%w: unknown policy %q", errors.ErrInvalidConfig, c.Policy),
			"Pool", "Validate", "policy check")
	}
	return nil
}

// entry tracks one pooled node and its last activity.
type entry struct {
	n          node.Node
	lastActive time.Time
}

// Pool manages a reusable set of nodes of one class. Loop-confined like the
// orchestrator; none of its state is guarded by locks.
type Pool struct {
	name    string
	cfg     Config
	factory node.Factory
	deps    node.Dependencies
	logger  *slog.Logger
	bus     *event.Bus
	metrics *metric.Metrics
	baseCtx context.Context
	now     func() time.Time

	// idle is a stack: checkout pops from the end, release pushes there,
	// so the most recently used node is reused first.
	idle      []*entry
	inUse     map[string]*entry
	sweep     *sched.Timer
	destroyed bool
}

// Option is a functional option for configuring a Pool
type Option func(*Pool)

// WithContext sets the base context node starts derive from
func WithContext(ctx context.Context) Option {
	return func(p *Pool) {
		if ctx != nil {
			p.baseCtx = ctx
		}
	}
}

// WithLoop schedules the elastic shrink sweep on loop, at half the
// configured idle threshold. Without a loop the pool never shrinks on its
// own; callers may still invoke Shrink directly.
func WithLoop(loop *sched.Loop) Option {
	return func(p *Pool) {
		if loop != nil && p.cfg.Policy == Elastic {
			p.sweep = loop.Every(p.cfg.IdleTTL/2, p.Shrink)
		}
	}
}

// withClock overrides the pool's time source in tests.
func withClock(now func() time.Time) Option {
	return func(p *Pool) { p.now = now }
}

// New creates a pool and pre-allocates its floor: Size nodes for a fixed
// pool, Min nodes for an elastic one.
func New(name string, registry *node.Registry, deps node.Dependencies, cfg Config, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	factory, err := registry.Lookup(cfg.Class)
	if err != nil {
		return nil, errors.WrapConfig(err, "Pool", "New", "class "+cfg.Class)
	}

	p := &Pool{
		name:    name,
		cfg:     cfg,
		factory: factory,
		deps:    deps,
		logger:  deps.GetLogger().With("component", "pool", "pool", name),
		bus:     deps.Bus,
		baseCtx: context.Background(),
		now:     time.Now,
		inUse:   make(map[string]*entry),
	}
	if deps.MetricsRegistry != nil {
		p.metrics = deps.MetricsRegistry.CoreMetrics()
	}
	for _, opt := range opts {
		opt(p)
	}

	floor := cfg.Size
	if cfg.Policy == Elastic {
		floor = cfg.Min
	}
	for i := 0; i < floor; i++ {
		e, err := p.create()
		if err != nil {
			p.Destroy()
			return nil, err
		}
		p.idle = append(p.idle, e)
	}
	p.logger.Info("pool created", "class", cfg.Class, "policy", cfg.Policy, "size", len(p.idle))
	return p, nil
}

// Name returns the pool's name.
func (p *Pool) Name() string { return p.name }

// Size returns the total node count, idle plus in-use.
func (p *Pool) Size() int { return len(p.idle) + len(p.inUse) }

// InUse returns the number of checked-out nodes.
func (p *Pool) InUse() int { return len(p.inUse) }

// Idle returns the number of idle nodes.
func (p *Pool) Idle() int { return len(p.idle) }

// capacity returns the pool's hard ceiling.
func (p *Pool) capacity() int {
	if p.cfg.Policy == Elastic {
		return p.cfg.Max
	}
	return p.cfg.Size
}

// Checkout assigns a node to entityID. A duplicate checkout for an id with an
// outstanding assignment is an error and leaves the first assignment intact.
// When no idle node exists and the pool cannot grow, an exhausted event
// carries the current and maximum size for backpressure-aware callers, and no
// assignment is made.
func (p *Pool) Checkout(entityID string, checkoutCtx map[string]any) (node.Node, error) {
	if p.destroyed {
		return nil, errors.Wrap(errors.ErrPoolDestroyed, "Pool", "Checkout", "state check")
	}
	if _, out := p.inUse[entityID]; out {
		return nil, errors.Wrap(
			fmt.Errorf("%w: %q", errors.ErrAlreadyCheckedOut, entityID),
			"Pool", "Checkout", "entity check")
	}

	var e *entry
	switch {
	case len(p.idle) > 0:
		e = p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
	case p.cfg.Policy == Elastic && p.Size() < p.cfg.Max:
		created, err := p.create()
		if err != nil {
			return nil, err
		}
		e = created
	default:
		if p.metrics != nil {
			p.metrics.PoolExhaustions.WithLabelValues(p.name).Inc()
		}
		p.logger.Warn("pool exhausted", "entity", entityID, "size", p.Size(), "max", p.capacity())
		p.emitOut(event.TypeExhausted, map[string]any{
			"entityId":    entityID,
			"currentSize": p.Size(),
			"maxSize":     p.capacity(),
		})
		return nil, errors.Wrap(
			fmt.Errorf("%w: %d/%d nodes in use", errors.ErrPoolExhausted, p.Size(), p.capacity()),
			"Pool", "Checkout", "allocation")
	}

	e.lastActive = p.now()
	p.inUse[entityID] = e

	p.deliverCheckoutSignals(e.n, checkoutCtx)
	if p.cfg.ReleaseOn != "" {
		p.installAutoRelease(e.n, entityID)
	}

	if p.metrics != nil {
		p.metrics.PoolCheckouts.WithLabelValues(p.name).Inc()
		p.metrics.PoolInUse.WithLabelValues(p.name).Set(float64(len(p.inUse)))
	}
	p.logger.Debug("node checked out", "node", e.n.ID(), "entity", entityID)
	p.emitOut(event.TypeCheckedOut, map[string]any{"nodeId": e.n.ID(), "entityId": entityID})
	return e.n, nil
}

// Release returns entityID's node to the idle stack. Idempotent: releasing an
// id with no outstanding checkout returns false and has no effect. On success
// the node's mutable state is reset and the pool's emitter layer detached, so
// the node re-enters the stack pristine.
func (p *Pool) Release(entityID string) bool {
	e, out := p.inUse[entityID]
	if !out {
		return false
	}
	delete(p.inUse, entityID)

	if r, ok := e.n.(node.Resettable); ok {
		r.Reset()
	}
	if p.cfg.ReleaseOn != "" {
		// Tolerate a missing layer: the node may have been released
		// through a path that already detached it
		if err := e.n.UnwrapEmitter(OwnerTag); err != nil {
			p.logger.Debug("emitter unwrap skipped", "node", e.n.ID(), "error", err)
		}
	}

	e.lastActive = p.now()
	p.idle = append(p.idle, e)

	if p.metrics != nil {
		p.metrics.PoolReleases.WithLabelValues(p.name).Inc()
		p.metrics.PoolInUse.WithLabelValues(p.name).Set(float64(len(p.inUse)))
	}
	p.logger.Debug("node released", "node", e.n.ID(), "entity", entityID)
	p.emitOut(event.TypeReleased, map[string]any{"nodeId": e.n.ID(), "entityId": entityID})
	return true
}

// Destroy stops every node and the sweep timer. Terminal. Per-node release
// notifications are suppressed on this path; resources are still freed.
func (p *Pool) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true

	if p.sweep != nil {
		p.sweep.Cancel()
	}
	for _, e := range p.idle {
		p.stopNode(e, false)
	}
	for _, e := range p.inUse {
		p.stopNode(e, false)
	}
	p.idle = nil
	p.inUse = map[string]*entry{}
	if p.metrics != nil {
		p.metrics.PoolSize.WithLabelValues(p.name).Set(0)
		p.metrics.PoolInUse.WithLabelValues(p.name).Set(0)
	}
	p.logger.Info("pool destroyed")
}

// create spawns one node through the class factory.
func (p *Pool) create() (*entry, error) {
	id := p.cfg.Class + "-" + uuid.NewString()

	var raw json.RawMessage
	if len(p.cfg.NodeConfig) > 0 {
		b, err := json.Marshal(p.cfg.NodeConfig)
		if err != nil {
			return nil, errors.WrapConfig(err, "Pool", "create", "node config")
		}
		raw = b
	}

	n, err := p.factory(id, raw, p.deps)
	if err != nil {
		return nil, errors.WrapConfig(err, "Pool", "create", "factory for "+id)
	}
	if err := n.Initialize(); err != nil {
		return nil, errors.WrapConfig(err, "Pool", "create", "initialize "+id)
	}
	if err := n.Start(p.baseCtx); err != nil {
		return nil, errors.WrapConfig(err, "Pool", "create", "start "+id)
	}

	if p.metrics != nil {
		p.metrics.PoolSize.WithLabelValues(p.name).Set(float64(p.Size() + 1))
	}
	p.logger.Debug("node created", "node", id)
	p.emitOut(event.TypeNodeCreated, map[string]any{"nodeId": id})
	return &entry{n: n, lastActive: p.now()}, nil
}

// stopNode stops one node. notify=false on teardown paths suppresses the
// destruction event but still releases the node.
func (p *Pool) stopNode(e *entry, notify bool) {
	if err := e.n.Stop(5 * time.Second); err != nil {
		p.logger.Warn("node stop failed", "node", e.n.ID(), "error", err)
		p.emitDiag(event.DiagNodeError, err, map[string]any{"id": e.n.ID()})
	}
	p.logger.Debug("node destroyed", "node", e.n.ID())
	if notify {
		p.emitOut(event.TypeNodeDestroyed, map[string]any{"nodeId": e.n.ID()})
	}
}

// deliverCheckoutSignals primes a freshly checked-out node by invoking its
// configured handlers directly, in order.
func (p *Pool) deliverCheckoutSignals(n node.Node, checkoutCtx map[string]any) {
	for _, spec := range p.cfg.CheckoutSignals {
		handler, ok := n.Handler(spec.Handler)
		if !ok {
			p.logger.Warn("checkout signal handler missing", "node", n.ID(), "handler", spec.Handler)
			p.emitDiag(event.DiagNodeError,
				fmt.Errorf("%w: %q on node %q", errors.ErrHandlerNotFound, spec.Handler, n.ID()),
				map[string]any{"id": n.ID(), "handler": spec.Handler, "signal": spec.Signal})
			continue
		}
		payload := p.buildPayload(spec.Fields, checkoutCtx)
		if err := handler(n, payload); err != nil {
			fault := errors.WrapHandlerFault(err, "Pool", "Checkout",
				fmt.Sprintf("%s.%s", n.ID(), spec.Handler))
			p.logger.Error("checkout signal failed", "node", n.ID(), "handler", spec.Handler, "error", err)
			p.emitDiag(event.DiagNodeError, fault, map[string]any{
				"id": n.ID(), "handler": spec.Handler, "message": err.Error(),
			})
		}
	}
}

// buildPayload resolves a field mapping. A "$"-prefixed source reads from the
// pool's shared context; anything else reads from the checkout context.
// Unresolvable sources are simply absent from the payload.
func (p *Pool) buildPayload(fields map[string]string, checkoutCtx map[string]any) node.Payload {
	payload := make(node.Payload, len(fields))
	for field, source := range fields {
		if key, shared := strings.CutPrefix(source, contextPrefix); shared {
			if v, ok := p.cfg.Context[key]; ok {
				payload[field] = v
			}
			continue
		}
		if v, ok := checkoutCtx[source]; ok {
			payload[field] = v
		}
	}
	return payload
}

// installAutoRelease wraps the node's emitter for the duration of the
// checkout: every emit forwards to whatever emitter preceded the wrap, and
// the trigger signal additionally releases the node.
func (p *Pool) installAutoRelease(n node.Node, entityID string) {
	err := n.WrapEmitter(OwnerTag, func(next node.Emitter) node.Emitter {
		return func(signal string, payload node.Payload) {
			next(signal, payload)
			if signal == p.cfg.ReleaseOn {
				p.Release(entityID)
			}
		}
	})
	if err != nil {
		p.logger.Warn("auto-release wrap failed", "node", n.ID(), "error", err)
	}
}

// emitOut publishes a domain event when a bus is attached.
func (p *Pool) emitOut(t event.Type, fields map[string]any) {
	if p.bus != nil {
		p.bus.Out(event.New(t, fields))
	}
}

// emitDiag publishes a diagnostic when a bus is attached.
func (p *Pool) emitDiag(t event.DiagType, err error, fields map[string]any) {
	if p.bus != nil {
		p.bus.Err(event.NewDiag(t, err, fields))
	}
}
