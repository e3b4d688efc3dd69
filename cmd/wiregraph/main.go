// Package main implements the entry point for the wiregraph daemon, which
// loads a declarative graph configuration and runs it: nodes spawned,
// signals routed, pools managed, until a shutdown signal arrives.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/purefictiongames/wiregraph/engine"
	"github.com/purefictiongames/wiregraph/event"
	"github.com/purefictiongames/wiregraph/metric"
	"github.com/purefictiongames/wiregraph/node"
	"github.com/purefictiongames/wiregraph/nodes"
	"github.com/purefictiongames/wiregraph/pkg/retry"
	"github.com/purefictiongames/wiregraph/transport"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "wiregraph"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := engine.LoadFile(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid",
			"nodes", len(cfg.Graph.Nodes), "wires", len(cfg.Graph.Wiring), "pools", len(cfg.Pools))
		return nil
	}

	deps, cleanup, err := setupDependencies(cliCfg)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := node.NewRegistry()
	if err := nodes.Register(registry); err != nil {
		return fmt.Errorf("register stock classes: %w", err)
	}
	slog.Info("stock node classes registered", "classes", registry.Classes())

	eng, err := engine.New(cfg, registry, deps)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	return runWithSignalHandling(eng, cliCfg, deps)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting wiregraph (declarative dataflow engine)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, false, nil
}

// setupDependencies assembles the shared node dependencies: event bus,
// metrics registry, and the NATS transport when one is configured.
func setupDependencies(cliCfg *CLIConfig) (node.Dependencies, func(), error) {
	deps := node.Dependencies{
		Bus:    event.NewBus(),
		Logger: slog.Default(),
	}
	cleanup := func() {}

	if cliCfg.MetricsPort > 0 {
		deps.MetricsRegistry = metric.NewMetricsRegistry()
	}

	if cliCfg.NATSURL != "" {
		slog.Info("Connecting to NATS", "url", cliCfg.NATSURL)
		nc, err := retry.DoWithResult(context.Background(), retry.Quick(), func() (*nats.Conn, error) {
			return nats.Connect(cliCfg.NATSURL,
				nats.Name(appName),
				nats.MaxReconnects(-1),
			)
		})
		if err != nil {
			return node.Dependencies{}, nil, fmt.Errorf("connect to NATS: %w", err)
		}

		tr, err := transport.NewNATS(nc, transport.WithLogger(slog.Default()))
		if err != nil {
			nc.Close()
			return node.Dependencies{}, nil, fmt.Errorf("create transport: %w", err)
		}
		tr.ForwardBus(deps.Bus)
		deps.Transport = tr
		cleanup = func() {
			_ = tr.Close()
			nc.Close()
		}
	}

	return deps, cleanup, nil
}

// runWithSignalHandling starts the engine and blocks until a shutdown signal
// or a fatal serving error.
func runWithSignalHandling(eng *engine.Engine, cliCfg *CLIConfig, deps node.Dependencies) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	// The engine's loop outlives the signal context so shutdown tasks can
	// still run on it after the signal arrives
	if err := eng.Start(context.Background()); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	slog.Info("wiregraph started, graph active")

	g, gctx := errgroup.WithContext(signalCtx)

	if cliCfg.MetricsPort > 0 {
		server := metric.NewServer(cliCfg.MetricsPort, "/metrics", deps.MetricsRegistry)
		g.Go(func() error {
			slog.Info("Metrics endpoint listening", "addr", server.Address())
			return server.Start()
		})
		g.Go(func() error {
			<-gctx.Done()
			return server.Stop()
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Received shutdown signal")
		return eng.Stop(cliCfg.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil && signalCtx.Err() == nil {
		_ = eng.Stop(cliCfg.ShutdownTimeout)
		return fmt.Errorf("serving failed: %w", err)
	}

	slog.Info("wiregraph shutdown complete")
	return nil
}
