package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/node"
	"github.com/purefictiongames/wiregraph/orchestrator"
	"github.com/purefictiongames/wiregraph/pkg/sched"
	"github.com/purefictiongames/wiregraph/pool"
)

// Engine runs one configured graph: the event loop, the orchestrator, and
// the declared pools, started and stopped as a unit.
type Engine struct {
	cfg      *Config
	registry *node.Registry
	deps     node.Dependencies
	logger   *slog.Logger

	loop    *sched.Loop
	orch    *orchestrator.Orchestrator
	pools   map[string]*pool.Pool
	runErr  chan error
	started bool
	stopped bool
}

// New validates cfg and builds an engine around it. Nothing runs until
// Start.
func New(cfg *Config, registry *node.Registry, deps node.Dependencies) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := registry.ValidateClasses(cfg.Graph.Classes()); err != nil {
		return nil, errors.WrapConfig(err, "Engine", "New", "graph class check")
	}

	return &Engine{
		cfg:      cfg,
		registry: registry,
		deps:     deps,
		logger:   deps.GetLogger().With("component", "engine"),
		loop:     sched.NewLoop(cfg.QueueSize),
		pools:    make(map[string]*pool.Pool),
	}, nil
}

// Start launches the event loop and brings the system up on it: graph
// configured, mode applied, routing enabled, pools created. Blocks until the
// bring-up completes.
func (e *Engine) Start(ctx context.Context) error {
	if e.started {
		return errors.Wrap(errors.ErrAlreadyStarted, "Engine", "Start", "state check")
	}
	e.started = true
	e.runErr = make(chan error, 1)

	go func() {
		e.runErr <- e.loop.Run(ctx)
	}()

	if err := e.Do(func() error { return e.bringUp(ctx) }); err != nil {
		e.logger.Error("engine bring-up failed", "error", err)
		_ = e.loop.Stop(5 * time.Second)
		return err
	}

	e.logger.Info("engine started",
		"nodes", e.orch.NodeCount(), "pools", len(e.pools), "mode", e.cfg.Mode)
	return nil
}

// bringUp runs on the loop goroutine.
func (e *Engine) bringUp(ctx context.Context) error {
	e.orch = orchestrator.New(e.registry, e.deps, orchestrator.WithContext(ctx))
	if err := e.orch.Configure(e.cfg.Graph); err != nil {
		return err
	}
	if e.cfg.Mode != "" {
		if err := e.orch.SetMode(e.cfg.Mode); err != nil {
			return err
		}
	}
	if err := e.orch.Enable(); err != nil {
		return err
	}

	for name, ps := range e.cfg.Pools {
		cfg, err := ps.ToPoolConfig()
		if err != nil {
			return err
		}
		p, err := pool.New(name, e.registry, e.deps, cfg,
			pool.WithContext(ctx), pool.WithLoop(e.loop))
		if err != nil {
			return errors.WrapConfig(err, "Engine", "Start", "pool "+name)
		}
		e.pools[name] = p
	}
	return nil
}

// Do runs fn on the loop goroutine and waits for its result. The only safe
// way to touch the orchestrator or a pool from outside the loop.
func (e *Engine) Do(fn func() error) error {
	done := make(chan error, 1)
	if err := e.loop.Submit(func() { done <- fn() }); err != nil {
		return errors.Wrap(err, "Engine", "Do", "task submit")
	}
	return <-done
}

// Stop tears the system down: pools destroyed, orchestrator stopped, loop
// drained. Safe to call more than once.
func (e *Engine) Stop(timeout time.Duration) error {
	if !e.started || e.stopped {
		return nil
	}
	e.stopped = true

	err := e.Do(func() error {
		for name, p := range e.pools {
			p.Destroy()
			delete(e.pools, name)
		}
		if e.orch != nil {
			e.orch.Stop()
		}
		return nil
	})
	if err != nil {
		e.logger.Warn("engine teardown task failed", "error", err)
	}

	if err := e.loop.Stop(timeout); err != nil {
		return errors.Wrap(err, "Engine", "Stop", "loop drain")
	}
	e.logger.Info("engine stopped")
	return nil
}

// Orchestrator returns the engine's orchestrator. Nil before Start. Only
// touch it through Do.
func (e *Engine) Orchestrator() *orchestrator.Orchestrator { return e.orch }

// Pool resolves a declared pool by name. Only touch it through Do.
func (e *Engine) Pool(name string) (*pool.Pool, bool) {
	p, ok := e.pools[name]
	return p, ok
}

// Loop returns the engine's event loop.
func (e *Engine) Loop() *sched.Loop { return e.loop }
