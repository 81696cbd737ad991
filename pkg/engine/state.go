package engine

import (
	"time"

	"github.com/rgbled/rgbled-go/pkg/actuator"
)

// State is the mutable agent state.
type State struct {
	Actuator           actuator.State
	TelemetryFrequency time.Duration
}

// SetTelemetryFrequency sets the telemetry interval.
func (s *State) SetTelemetryFrequency(d time.Duration) {
	s.TelemetryFrequency = d
}
