package orchestrator

import (
	"fmt"

	"github.com/purefictiongames/wiregraph/config"
	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/event"
	"github.com/purefictiongames/wiregraph/node"
	"github.com/purefictiongames/wiregraph/schema"
)

// RouteSignal dispatches one emitted signal through the active wiring index.
// A no-op when routing is disabled or no rule matches. Matching rules
// execute in the committed order: default-wiring rules in configured order,
// then mode-wiring rules in configured order.
//
// Recursive emits are allowed: a target handler emitting re-enters here and
// fully unwinds before control returns to the original caller.
func (o *Orchestrator) RouteSignal(fromID, signal string, payload node.Payload) {
	if !o.enabled {
		return
	}
	rules := o.index[indexKey{from: fromID, signal: signal}]
	if len(rules) == 0 {
		return
	}

	if o.metrics != nil {
		o.metrics.SignalsRouted.WithLabelValues(fromID, signal).Inc()
	}
	for _, rule := range rules {
		o.executeWire(rule, payload, fromID, signal)
	}
}

// executeWire runs one wire rule against one payload: resolve the target,
// validate and process through the rule's schema, resolve the handler, and
// invoke it inside a fault boundary.
func (o *Orchestrator) executeWire(rule config.WireRule, payload node.Payload, fromID, signal string) {
	if o.metrics != nil {
		o.metrics.RulesExecuted.Inc()
	}

	// Sentinel target: hand-off to a collaborator outside the graph
	if rule.To == config.TargetOut {
		return
	}

	m, ok := o.nodes[rule.To]
	if !ok {
		o.routingError("unresolved_node",
			fmt.Errorf("%w: %q for %s/%s", errors.ErrNodeNotFound, rule.To, fromID, signal),
			map[string]any{"id": rule.To, "from": fromID, "signal": signal})
		return
	}
	target := m.n

	if def := o.resolveSchema(rule.Schema); def != nil {
		ok, fieldErrs, processed := schema.ValidateAndProcess(payload, def)
		if !ok {
			o.reportValidationFailure(rule, fromID, signal, fieldErrs)
			if rule.Strict {
				return
			}
			// Non-strict: reported and forwarded unprocessed
		} else {
			payload = processed
			if rule.Strict {
				// Security boundary: strict delivery carries exactly
				// the declared fields, nothing smuggled
				payload = schema.Sanitize(payload, def)
			}
		}
	}

	handler, ok := target.Handler(rule.Handler)
	if !ok {
		o.routingError("missing_handler",
			fmt.Errorf("%w: %q on node %q", errors.ErrHandlerNotFound, rule.Handler, rule.To),
			map[string]any{"id": rule.To, "handler": rule.Handler, "from": fromID, "signal": signal})
		return
	}

	o.invoke(target, rule, handler, payload)
}

// invoke runs a handler inside the fault boundary. Panics and returned
// errors become HandlerFault diagnostics; neither propagates to the emitting
// node's call stack.
func (o *Orchestrator) invoke(target node.Node, rule config.WireRule, handler node.Handler, payload node.Payload) {
	defer func() {
		if r := recover(); r != nil {
			fault := errors.WrapHandlerFault(
				fmt.Errorf("panic in %s.%s: %v", rule.To, rule.Handler, r),
				"Orchestrator", "executeWire", "handler invoke")
			o.handlerFault(rule, fault)
		}
	}()

	if err := handler(target, payload); err != nil {
		fault := errors.WrapHandlerFault(err, "Orchestrator", "executeWire",
			fmt.Sprintf("%s.%s", rule.To, rule.Handler))
		o.handlerFault(rule, fault)
	}
}

// resolveSchema resolves a rule's schema reference: named schemas from the
// registered set, inline definitions as-is, nil when the rule carries none.
func (o *Orchestrator) resolveSchema(ref config.SchemaRef) schema.Def {
	if ref.Name != "" {
		return o.schemas[ref.Name]
	}
	return ref.Inline
}

// reportValidationFailure emits one aggregate validationFailed domain event
// plus one diagnostic per failed field.
func (o *Orchestrator) reportValidationFailure(rule config.WireRule, fromID, signal string, fieldErrs []schema.FieldError) {
	if o.metrics != nil {
		o.metrics.ValidationFailures.WithLabelValues(rule.Schema.Name).Inc()
	}
	o.logger.Warn("payload validation failed",
		"from", fromID, "signal", signal, "to", rule.To, "errors", len(fieldErrs))

	o.emitOut(event.TypeValidationFailed, map[string]any{
		"from":   fromID,
		"signal": signal,
		"to":     rule.To,
		"errors": fieldErrs,
	})
	for _, fe := range fieldErrs {
		o.emitDiag(event.DiagValidationError,
			errors.WrapValidation(fmt.Errorf("%s", fe.Message), "Orchestrator", "executeWire", "field "+fe.Field),
			map[string]any{
				"field":    fe.Field,
				"expected": fe.Expected,
				"received": fe.Received,
			})
	}
}

// routingError reports one dispatch-time resolution failure and moves on.
func (o *Orchestrator) routingError(reason string, err error, fields map[string]any) {
	if o.metrics != nil {
		o.metrics.RoutingErrors.WithLabelValues(reason).Inc()
	}
	o.logger.Warn("routing error", "reason", reason, "error", err)
	o.emitDiag(event.DiagNodeError,
		errors.WrapRouting(err, "Orchestrator", "executeWire", reason), fields)
}

// handlerFault reports one isolated handler failure.
func (o *Orchestrator) handlerFault(rule config.WireRule, fault error) {
	if o.metrics != nil {
		o.metrics.HandlerFaults.WithLabelValues(rule.To, rule.Handler).Inc()
	}
	o.logger.Error("handler fault", "node", rule.To, "handler", rule.Handler, "error", fault)
	o.emitDiag(event.DiagNodeError, fault, map[string]any{
		"id":      rule.To,
		"handler": rule.Handler,
		"message": fault.Error(),
	})
}
