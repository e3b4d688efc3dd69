package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/purefictiongames/wiregraph/config"
	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/event"
	"github.com/purefictiongames/wiregraph/metric"
	"github.com/purefictiongames/wiregraph/node"
	"github.com/purefictiongames/wiregraph/schema"
)

// OwnerTag identifies the orchestrator's layer in a node's emitter chain.
const OwnerTag = "orchestrator"

// State represents the orchestrator's lifecycle state
type State int

const (
	// StateUnconfigured indicates no configuration has been applied
	StateUnconfigured State = iota
	// StateConfigured indicates the graph is built; routing may be
	// enabled or disabled
	StateConfigured
	// StateStopped is terminal: all nodes despawned, re-configuring is
	// not supported
	StateStopped
)

// String returns a string representation of the orchestrator state
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// indexKey addresses one ordered rule list in the active wiring index.
type indexKey struct {
	from   string
	signal string
}

// managed tracks one owned node and its cancellation.
type managed struct {
	n      node.Node
	cancel context.CancelFunc
}

// Orchestrator owns node instances and the routing table built from
// declarative wiring specs. It is loop-confined: all methods must be called
// from the engine's event loop goroutine.
type Orchestrator struct {
	registry *node.Registry
	deps     node.Dependencies
	logger   *slog.Logger
	bus      *event.Bus
	metrics  *metric.Metrics
	baseCtx  context.Context

	state   State
	enabled bool

	nodes   map[string]*managed
	schemas map[string]schema.Def
	wiring  []config.WireRule
	modes   map[string]config.ModeSpec
	mode    string
	index   map[indexKey][]config.WireRule
}

// Option is a functional option for configuring the Orchestrator
type Option func(*Orchestrator)

// WithContext sets the base context node starts derive from
func WithContext(ctx context.Context) Option {
	return func(o *Orchestrator) {
		if ctx != nil {
			o.baseCtx = ctx
		}
	}
}

// New creates an orchestrator spawning through registry. Events and
// diagnostics surface on the dependencies' bus; metrics register against the
// dependencies' registry when one is provided.
func New(registry *node.Registry, deps node.Dependencies, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		deps:     deps,
		logger:   deps.GetLogger().With("component", "orchestrator"),
		bus:      deps.Bus,
		baseCtx:  context.Background(),
		state:    StateUnconfigured,
		nodes:    make(map[string]*managed),
		schemas:  make(map[string]schema.Def),
		modes:    make(map[string]config.ModeSpec),
		index:    make(map[indexKey][]config.WireRule),
	}
	if deps.MetricsRegistry != nil {
		o.metrics = deps.MetricsRegistry.CoreMetrics()
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the orchestrator's lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// Enabled reports whether routing is active.
func (o *Orchestrator) Enabled() bool { return o.enabled }

// Mode returns the active mode, empty when only default wiring applies.
func (o *Orchestrator) Mode() string { return o.mode }

// NodeCount returns the number of managed nodes.
func (o *Orchestrator) NodeCount() int { return len(o.nodes) }

// Node resolves a managed node by id.
func (o *Orchestrator) Node(id string) (node.Node, bool) {
	m, ok := o.nodes[id]
	if !ok {
		return nil, false
	}
	return m.n, true
}

// Configure applies a graph description: registers its schemas, spawns its
// nodes, validates and installs its wiring and modes, and rebuilds the
// active index. If routing is enabled the mutation is bracketed by a
// disable/re-enable.
//
// The call aborts on the first structural error without rolling back nodes
// already spawned in the same call. Callers must not assume atomicity.
func (o *Orchestrator) Configure(spec *config.GraphSpec) error {
	if o.state == StateStopped {
		return errors.WrapConfig(errors.ErrStopped, "Orchestrator", "Configure", "state check")
	}
	if spec == nil {
		return errors.WrapConfig(errors.ErrMissingConfig, "Orchestrator", "Configure", "spec check")
	}

	wasEnabled := o.enabled
	if wasEnabled {
		o.disable()
	}
	defer func() {
		o.rebuildIndex()
		if wasEnabled {
			o.enable()
		}
	}()

	// Schemas first: wiring validation needs them resolvable
	for name, def := range spec.Schemas {
		if err := schema.ValidateDef(def); err != nil {
			o.emitDiag(event.DiagInvalidSchema, err, map[string]any{"schema": name})
			return errors.WrapConfig(err, "Orchestrator", "Configure", "schema "+name)
		}
		o.schemas[name] = def
	}

	// One-pass class check before any spawn
	if err := o.registry.ValidateClasses(spec.Classes()); err != nil {
		return errors.WrapConfig(err, "Orchestrator", "Configure", "class validation")
	}

	for id, ns := range spec.Nodes {
		if err := o.spawn(id, ns); err != nil {
			return err
		}
	}

	if err := o.validateWiring(spec.Wiring, "wiring"); err != nil {
		return err
	}
	for mode, ms := range spec.Modes {
		if err := o.validateWiring(ms.Wiring, "mode "+mode); err != nil {
			return err
		}
	}

	o.wiring = spec.Wiring
	o.modes = spec.Modes
	o.state = StateConfigured

	o.logger.Info("graph configured",
		"nodes", len(spec.Nodes), "wires", len(spec.Wiring), "modes", len(spec.Modes))
	o.emitOut(event.TypeConfigured, map[string]any{
		"nodeCount":   len(spec.Nodes),
		"wireCount":   len(spec.Wiring),
		"schemaCount": len(spec.Schemas),
	})
	return nil
}

// AddNode spawns a single node into the live graph. When routing is enabled
// the node is wired only after the spawn completes, so no signal races a
// half-created node.
func (o *Orchestrator) AddNode(id, class string, cfg map[string]any) error {
	if o.state != StateConfigured {
		return errors.WrapConfig(errors.ErrNotConfigured, "Orchestrator", "AddNode", "state check")
	}

	if err := o.spawn(id, config.NodeSpec{Class: class, Config: cfg}); err != nil {
		return err
	}
	if o.enabled {
		o.wireNode(id, o.nodes[id].n)
	}
	return nil
}

// RemoveNode despawns a single node from the live graph. Its interception is
// detached before the despawn so an in-flight signal cannot route into a
// dying node.
func (o *Orchestrator) RemoveNode(id string) error {
	if o.state != StateConfigured {
		return errors.WrapConfig(errors.ErrNotConfigured, "Orchestrator", "RemoveNode", "state check")
	}
	m, ok := o.nodes[id]
	if !ok {
		return errors.WrapRouting(
			fmt.Errorf("%w: %q", errors.ErrNodeNotFound, id),
			"Orchestrator", "RemoveNode", "node resolution")
	}

	if o.enabled {
		o.unwireNode(id, m.n)
	}
	o.despawn(id, m, true)
	return nil
}

// SetMode switches the active wiring mode. Setting the current mode is a
// no-op; switching disables routing, rebuilds the index as default rules
// then mode rules, and re-enables routing if it was enabled.
func (o *Orchestrator) SetMode(mode string) error {
	if o.state != StateConfigured {
		return errors.WrapConfig(errors.ErrNotConfigured, "Orchestrator", "SetMode", "state check")
	}
	if mode == o.mode {
		return nil
	}
	if mode != "" {
		if _, ok := o.modes[mode]; !ok {
			return errors.WrapConfig(
				fmt.Errorf("%w: unknown mode %q", errors.ErrInvalidConfig, mode),
				"Orchestrator", "SetMode", "mode resolution")
		}
	}

	wasEnabled := o.enabled
	if wasEnabled {
		o.disable()
	}

	from := o.mode
	o.mode = mode
	o.rebuildIndex()

	if wasEnabled {
		o.enable()
	}

	if o.metrics != nil {
		o.metrics.ModeSwitches.Inc()
	}
	o.logger.Info("mode changed", "from", from, "to", mode)
	o.emitOut(event.TypeModeChanged, map[string]any{"from": from, "to": mode})
	return nil
}

// Enable installs the orchestrator's interception on every managed node's
// emitter and activates routing.
func (o *Orchestrator) Enable() error {
	if o.state != StateConfigured {
		return errors.WrapConfig(errors.ErrNotConfigured, "Orchestrator", "Enable", "state check")
	}
	o.enable()
	return nil
}

// Disable removes the interception from every managed node, restoring each
// node's original emitter, and deactivates routing.
func (o *Orchestrator) Disable() error {
	if o.state != StateConfigured {
		return errors.WrapConfig(errors.ErrNotConfigured, "Orchestrator", "Disable", "state check")
	}
	o.disable()
	return nil
}

// Stop disables routing and despawns every managed node. Terminal: the
// orchestrator cannot be reconfigured afterwards. Despawn notifications are
// suppressed on this path; resources are still released.
func (o *Orchestrator) Stop() {
	if o.state == StateStopped {
		return
	}
	if o.enabled {
		o.disable()
	}
	for id, m := range o.nodes {
		o.despawn(id, m, false)
	}
	o.wiring = nil
	o.modes = nil
	o.schemas = nil
	o.index = nil
	o.state = StateStopped
	o.logger.Info("orchestrator stopped")
}

// spawn creates, initializes, and starts one node.
func (o *Orchestrator) spawn(id string, ns config.NodeSpec) error {
	if _, exists := o.nodes[id]; exists {
		return errors.WrapConfig(
			fmt.Errorf("%w: %q", errors.ErrDuplicateNode, id),
			"Orchestrator", "spawn", "id uniqueness check")
	}

	factory, err := o.registry.Lookup(ns.Class)
	if err != nil {
		return errors.WrapConfig(err, "Orchestrator", "spawn", "class "+ns.Class)
	}

	raw, err := ns.RawConfig()
	if err != nil {
		return errors.WrapConfig(err, "Orchestrator", "spawn", "node "+id)
	}

	n, err := factory(id, raw, o.deps)
	if err != nil {
		return errors.WrapConfig(err, "Orchestrator", "spawn", "factory for "+id)
	}
	if err := n.Initialize(); err != nil {
		return errors.WrapConfig(err, "Orchestrator", "spawn", "initialize "+id)
	}

	ctx, cancel := context.WithCancel(o.baseCtx)
	if err := n.Start(ctx); err != nil {
		cancel()
		return errors.WrapConfig(err, "Orchestrator", "spawn", "start "+id)
	}

	o.nodes[id] = &managed{n: n, cancel: cancel}
	if o.metrics != nil {
		o.metrics.ManagedNodes.Set(float64(len(o.nodes)))
	}
	o.logger.Debug("node spawned", "id", id, "class", ns.Class)
	o.emitOut(event.TypeNodeSpawned, map[string]any{"id": id, "class": ns.Class})
	return nil
}

// despawn stops and forgets one node. notify=false on teardown paths
// suppresses the despawn event but still releases everything.
func (o *Orchestrator) despawn(id string, m *managed, notify bool) {
	m.cancel()
	if err := m.n.Stop(5 * time.Second); err != nil {
		o.logger.Warn("node stop failed", "id", id, "error", err)
		o.emitDiag(event.DiagNodeError, err, map[string]any{"id": id})
	}
	delete(o.nodes, id)
	if o.metrics != nil {
		o.metrics.ManagedNodes.Set(float64(len(o.nodes)))
	}
	o.logger.Debug("node despawned", "id", id)
	if notify {
		o.emitOut(event.TypeNodeDespawned, map[string]any{"id": id})
	}
}

// validateWiring checks rules structurally and resolves named schema
// references against every schema registered so far.
func (o *Orchestrator) validateWiring(rules []config.WireRule, where string) error {
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			o.emitDiag(event.DiagInvalidWiring, err, map[string]any{"where": where, "rule": i})
			return errors.WrapConfig(err, "Orchestrator", "Configure",
				fmt.Sprintf("%s rule %d", where, i))
		}
		if name := rule.Schema.Name; name != "" {
			if _, ok := o.schemas[name]; !ok {
				err := fmt.Errorf("%w: %q", errors.ErrUnknownSchema, name)
				o.emitDiag(event.DiagInvalidWiring, err, map[string]any{"where": where, "rule": i})
				return errors.WrapConfig(err, "Orchestrator", "Configure",
					fmt.Sprintf("%s rule %d", where, i))
			}
		}
	}
	return nil
}

// rebuildIndex recomputes the active wiring index: default rules first in
// configured order, then the active mode's rules in configured order. The
// stored order is the committed execution order.
func (o *Orchestrator) rebuildIndex() {
	index := make(map[indexKey][]config.WireRule)
	for _, rule := range o.wiring {
		k := indexKey{from: rule.From, signal: rule.Signal}
		index[k] = append(index[k], rule)
	}
	if o.mode != "" {
		for _, rule := range o.modes[o.mode].Wiring {
			k := indexKey{from: rule.From, signal: rule.Signal}
			index[k] = append(index[k], rule)
		}
	}
	o.index = index
}

// enable activates routing and wraps every managed node.
func (o *Orchestrator) enable() {
	if o.enabled {
		return
	}
	o.enabled = true
	for id, m := range o.nodes {
		o.wireNode(id, m.n)
	}
}

// disable deactivates routing and unwraps every managed node, restoring
// original emitters.
func (o *Orchestrator) disable() {
	if !o.enabled {
		return
	}
	o.enabled = false
	for id, m := range o.nodes {
		o.unwireNode(id, m.n)
	}
}

// wireNode attaches the orchestrator's interception layer to one node. The
// layer routes through the active index instead of forwarding; an emit with
// no matching rules is a no-op, not a transport publish.
func (o *Orchestrator) wireNode(id string, n node.Node) {
	err := n.WrapEmitter(OwnerTag, func(node.Emitter) node.Emitter {
		return func(signal string, payload node.Payload) {
			o.RouteSignal(id, signal, payload)
		}
	})
	if err != nil {
		o.logger.Warn("emitter wrap failed", "id", id, "error", err)
	}
}

// unwireNode detaches the orchestrator's layer from one node.
func (o *Orchestrator) unwireNode(id string, n node.Node) {
	if err := n.UnwrapEmitter(OwnerTag); err != nil {
		o.logger.Warn("emitter unwrap failed", "id", id, "error", err)
	}
}

// emitOut publishes a domain event when a bus is attached.
func (o *Orchestrator) emitOut(t event.Type, fields map[string]any) {
	if o.bus != nil {
		o.bus.Out(event.New(t, fields))
	}
}

// emitDiag publishes a diagnostic when a bus is attached.
func (o *Orchestrator) emitDiag(t event.DiagType, err error, fields map[string]any) {
	if o.bus != nil {
		o.bus.Err(event.NewDiag(t, err, fields))
	}
}
