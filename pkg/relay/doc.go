// Package relay mirrors lamp state from device telemetry into the building
// backend.
//
// The hub exports every telemetry message. For each one the relay:
//  1. decodes telemetry.led_status
//  2. drops the message if the lamp status did not change within the
//     debounce window
//  3. lists the backend devices and picks the lamp with the highest Id
//  4. PUTs the new status to that device
//
// A Relay serializes Handle calls and is safe for concurrent use.
package relay
