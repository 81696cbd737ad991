// Package persistence keeps agent state that must survive restarts.
//
// The twin state file records the telemetry frequency last accepted from the
// hub and the desired version it came with, so a restarted agent keeps the
// cloud-chosen interval until the next twin update arrives.
package persistence
