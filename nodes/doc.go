// Package nodes provides the stock node classes shipped with the engine.
//
// # Overview
//
// Three general-purpose leaf classes cover the common plumbing roles in a
// graph: "relay" re-emits whatever it receives under a configured signal,
// "logger" writes received payloads to the structured log, and "counter"
// accumulates a count and reports changes. Register installs all of them into
// a class registry; applications add their own domain classes alongside.
package nodes
