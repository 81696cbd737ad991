// Package log captures protocol events of the agent for later inspection.
//
// It is separate from operational logging (slog). Every payload the agent
// exchanges with the hub, every actuator change and every protocol error can
// be recorded as an Event and replayed with rgbled-log.
//
// # Basic Usage
//
//	// Console during development
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Capture file
//	fl, _ := log.NewFileLogger("/var/log/rgbled/device.plog")
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
//   - MessageEvent: a payload in or out (telemetry, properties, commands)
//   - StateChangeEvent: actuator, telemetry frequency or connection changes
//   - ErrorEventData: codec or engine failures
//
// # File Format
//
// Capture files hold a stream of CBOR-encoded events with integer keys and
// use the .plog extension.
package log
