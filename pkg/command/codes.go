package command

import "github.com/rgbled/rgbled-go/pkg/actuator"

// MaxDisplayTextPayload is the longest DisplayText payload compared. Longer
// payloads are truncated first.
const MaxDisplayTextPayload = 49

// CodeTable maps an exact DisplayText payload, quotes included, to a color.
type CodeTable map[string]actuator.RGB

// LegacyCodes is the mapping deployed dashboards send. The red code has five
// hex digits and the green and blue codes are swapped relative to their hex
// value; consumers depend on it as is.
var LegacyCodes = CodeTable{
	`"FF000"`:  actuator.Red,
	`"0000FF"`: actuator.Green,
	`"00FF00"`: actuator.Blue,
}

// CorrectedCodes maps each code to the color its hex value names.
var CorrectedCodes = CodeTable{
	`"FF0000"`: actuator.Red,
	`"00FF00"`: actuator.Green,
	`"0000FF"`: actuator.Blue,
}

// Lookup returns the color for payload.
func (t CodeTable) Lookup(payload []byte) (actuator.RGB, bool) {
	if len(payload) > MaxDisplayTextPayload {
		payload = payload[:MaxDisplayTextPayload]
	}
	c, ok := t[string(payload)]
	return c, ok
}

// CodeTableByName returns the named table: "legacy" or "corrected".
func CodeTableByName(name string) (CodeTable, bool) {
	switch name {
	case "", "legacy":
		return LegacyCodes, true
	case "corrected":
		return CorrectedCodes, true
	default:
		return nil, false
	}
}
