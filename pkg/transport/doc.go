// Package transport carries agent traffic between the engine and the hub.
//
// Two transports are provided:
//   - Bridge: a websocket client to a hub bridge service
//   - Console: newline-delimited frames on an io.Writer, for local runs
//
// Both exchange the same JSON Frame envelope. The payload of a frame is the
// raw document the engine produced or consumes, embedded unchanged.
//
// # Frame Types
//
// Inbound (bridge to device):
//   - command: a direct method call; answered with command_response
//   - properties: a desired properties patch
//   - twin: a full twin document, usually right after connecting
//   - device_info_request: asks the device to report device information
//
// Outbound (device to bridge):
//   - telemetry
//   - properties_update: reported properties, including acks
//   - command_response
//
// # Keep-Alive
//
// The bridge pings the peer on a fixed interval and closes the connection
// after a number of consecutive missed pongs:
//   - Ping interval: 30 seconds
//   - Pong timeout: 5 seconds
//   - Max missed pongs: 3
//
// # Concurrency
//
// Send methods are safe for concurrent use. Inbound frames are not
// dispatched here; hosts read them with Receive and feed them to the engine
// from the goroutine that owns it, see Dispatch.
package transport
