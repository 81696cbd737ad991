package command

import (
	"log/slog"

	"github.com/rgbled/rgbled-go/pkg/actuator"
	"github.com/rgbled/rgbled-go/pkg/pnp"
)

// Dispatcher executes commands against the strip.
type Dispatcher struct {
	// Driver shows colors on the strip.
	Driver actuator.Driver

	// Codes resolves DisplayText payloads. Nil uses LegacyCodes.
	Codes CodeTable

	// Logger is optional.
	Logger *slog.Logger
}

// NewDispatcher returns a dispatcher using LegacyCodes.
func NewDispatcher(driver actuator.Driver, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{Driver: driver, Codes: LegacyCodes, Logger: logger}
}

// Dispatch runs req against state and returns the response to send. State is
// only changed when the command is accepted.
func (d *Dispatcher) Dispatch(state *actuator.State, req Request) Response {
	resp := Response{RequestID: req.RequestID, Status: pnp.StatusRejected}

	kind := ParseKind(req.Name)
	switch kind {
	case KindToggleMain:
		next := actuator.State{Power: !state.Power, Color: actuator.Black}
		if next.Power {
			next.Color = actuator.White
		}
		if d.apply(state, next, kind) {
			resp.Status = pnp.StatusAccepted
		}

	case KindToggleRed, KindToggleGreen, KindToggleBlue:
		if !state.Power {
			d.warn("command not recognized or LED is off", "command", req.Name, "request_id", req.RequestID)
			break
		}
		if d.apply(state, actuator.State{Power: true, Color: channelColors[kind]}, kind) {
			resp.Status = pnp.StatusAccepted
		}

	case KindDisplayText:
		color, ok := d.codes().Lookup(req.Payload)
		if !ok {
			d.warn("display text code not recognized", "payload", string(req.Payload), "request_id", req.RequestID)
			break
		}
		// Power is left as is; the color is shown either way.
		if d.apply(state, actuator.State{Power: state.Power, Color: color}, kind) {
			resp.Status = pnp.StatusAccepted
		}

	default:
		d.warn("command not recognized or LED is off", "command", req.Name, "request_id", req.RequestID)
	}
	return resp
}

// apply shows next.Color and commits next on success.
func (d *Dispatcher) apply(state *actuator.State, next actuator.State, kind Kind) bool {
	if d.Driver != nil {
		if err := d.Driver.Show(next.Color); err != nil {
			d.warn("led driver failed", "command", kind.String(), "error", err)
			return false
		}
	}
	*state = next
	if d.Logger != nil {
		d.Logger.Info("led updated", "command", kind.String(), "power", next.Power, "color", next.Color.String())
	}
	return true
}

func (d *Dispatcher) codes() CodeTable {
	if d.Codes == nil {
		return LegacyCodes
	}
	return d.Codes
}

func (d *Dispatcher) warn(msg string, args ...any) {
	if d.Logger != nil {
		d.Logger.Warn(msg, args...)
	}
}
