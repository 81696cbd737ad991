// Package twin reconciles desired writable properties with the agent state and
// encodes the acknowledgments the hub expects.
//
// Reconciliation makes two passes over the payload. The first extracts
// $version; the second re-reads the payload from the start and walks the
// writable properties. Every accepted property is applied and acknowledged in
// one response document:
//
//	{"telemetryFrequencySecs":{"ac":200,"av":7,"ad":"success","value":30}}
//
// Unrecognized properties and non-positive frequencies are logged and skipped
// without an ack. A malformed document aborts the pass and no ack is returned.
package twin
