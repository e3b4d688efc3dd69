// Package engine assembles a runnable system from one configuration file: a
// cooperative event loop, an orchestrator configured with the file's graph,
// and any declared node pools.
//
// # Overview
//
// Engine is the composition root the CLI builds on. Start launches the event
// loop on its own goroutine, then applies the graph, switches to the
// configured mode, enables routing, and creates the pools, all on the loop.
// Stop tears the same things down in reverse and drains the loop. Everything
// between Start and Stop that touches engine state must go through Do, which
// runs a function on the loop goroutine and waits for it.
//
// # Usage
//
//	cfg, err := engine.LoadFile("graph.yaml")
//	if err != nil {
//		return err
//	}
//	eng, err := engine.New(cfg, registry, deps)
//	if err != nil {
//		return err
//	}
//	if err := eng.Start(ctx); err != nil {
//		return err
//	}
//	defer eng.Stop(10 * time.Second)
package engine
