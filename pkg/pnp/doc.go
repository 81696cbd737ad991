// Package pnp implements the hub Plug-and-Play payload conventions on top of
// the wire codec: status codes, the component envelope, writable-property
// acknowledgments and iteration over writable-property documents.
//
// # Component envelope
//
// Properties that belong to a named component are grouped under the component
// name together with a "__t": "c" marker:
//
//	{"deviceInformation": {"__t": "c", "manufacturer": "ESPRESSIF"}}
//
// # Writable-property acknowledgment
//
// A device answers a writable-property update with one ack object per property:
//
//	{"telemetryFrequencySecs": {"ac": 200, "av": 7, "ad": "success", "value": 30}}
//
// where ac is the status, av the desired document version and ad a description.
package pnp
