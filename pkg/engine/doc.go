// Package engine ties the codec, telemetry, device info, twin and command
// packages into the agent a transport drives.
//
// The engine is a pure transform. The transport hands it inbound payloads
// (commands, property patches, twin documents) or asks it to emit telemetry
// and device info; every answer goes back through the Transport interface.
// The engine never dials or listens itself.
//
// # Concurrency
//
// The engine does not lock. All encodes share one scratch buffer and all
// handlers mutate the same State. Hosts must call into an Engine from one
// goroutine at a time, for example by funneling transport callbacks and the
// telemetry ticker through a single loop.
package engine
