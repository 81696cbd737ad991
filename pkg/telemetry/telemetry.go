// Package telemetry builds the periodic LED status frame and gates how often
// it is sent.
package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/rgbled/rgbled-go/pkg/actuator"
	"github.com/rgbled/rgbled-go/pkg/wire"
)

// ErrEncodeOverflow is returned when the frame does not fit the buffer.
var ErrEncodeOverflow = errors.New("telemetry: encode overflow")

// LEDStatusName is the only member of a telemetry frame.
const LEDStatusName = "led_status"

// MaxFrameSize is the largest frame Generate writes, including the sentinel.
// {"led_status":4} plus 0x00.
const MaxFrameSize = len(`{"led_status":`) + 1 + len(`}`) + 1

// Generate encodes the status of state into buf as {"led_status":<n>} followed
// by a 0x00 sentinel, and returns the length without the sentinel.
func Generate(state actuator.State, buf []byte) (int, error) {
	var w wire.Writer
	w.Reset(buf)
	w.BeginObject()
	w.PropertyName(LEDStatusName)
	w.Int32(int32(state.Status()))
	w.EndObject()
	n, err := w.Terminate()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEncodeOverflow, err)
	}
	return n, nil
}

// Gate rate-limits telemetry. The first call to Due always reports true.
type Gate struct {
	frequency time.Duration
	last      time.Time
	sent      bool
}

// NewGate returns a gate that lets one frame through per frequency.
// Non-positive frequencies are clamped to one second.
func NewGate(frequency time.Duration) *Gate {
	g := &Gate{}
	g.SetFrequency(frequency)
	return g
}

// Due reports whether a frame may be sent at now.
func (g *Gate) Due(now time.Time) bool {
	return !g.sent || now.Sub(g.last) >= g.frequency
}

// MarkSent records that a frame was sent at now.
func (g *Gate) MarkSent(now time.Time) {
	g.last = now
	g.sent = true
}

// SetFrequency changes the send interval. It takes effect on the next Due.
func (g *Gate) SetFrequency(frequency time.Duration) {
	if frequency <= 0 {
		frequency = time.Second
	}
	g.frequency = frequency
}

// Frequency returns the send interval.
func (g *Gate) Frequency() time.Duration {
	return g.frequency
}
