// Package command routes hub commands to the LED strip.
//
// Each command name maps to one Kind. Toggling the main switch always
// succeeds; the channel toggles require the strip to be on and are rejected
// otherwise. DisplayText looks up its quoted hex payload in a CodeTable.
// Every unrecognized or rejected command answers 404.
package command

import (
	"fmt"

	"github.com/rgbled/rgbled-go/pkg/actuator"
	"github.com/rgbled/rgbled-go/pkg/pnp"
)

// Kind is a dispatchable command.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindToggleMain
	KindToggleRed
	KindToggleGreen
	KindToggleBlue
	KindDisplayText
)

// Command names as sent by the hub.
const (
	NameToggleMain  = "toggleLed1"
	NameToggleRed   = "toggleRed"
	NameToggleGreen = "toggleGreen"
	NameToggleBlue  = "toggleBlue"
	NameDisplayText = "DisplayText"
)

var kindNames = map[Kind]string{
	KindToggleMain:  NameToggleMain,
	KindToggleRed:   NameToggleRed,
	KindToggleGreen: NameToggleGreen,
	KindToggleBlue:  NameToggleBlue,
	KindDisplayText: NameDisplayText,
}

// String returns the hub command name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%d", uint8(k))
}

// ParseKind maps a command name to its Kind. Matching is exact.
func ParseKind(name string) Kind {
	switch name {
	case NameToggleMain:
		return KindToggleMain
	case NameToggleRed:
		return KindToggleRed
	case NameToggleGreen:
		return KindToggleGreen
	case NameToggleBlue:
		return KindToggleBlue
	case NameDisplayText:
		return KindDisplayText
	default:
		return KindUnknown
	}
}

// Request is an inbound command. Payload is only referenced for the call.
type Request struct {
	Name      string
	Payload   []byte
	RequestID uint32
}

// Response answers a Request. Payload is always empty for LED commands.
type Response struct {
	RequestID uint32
	Status    pnp.Status
	Payload   []byte
}

// channelColors maps channel toggles to their pure color.
var channelColors = map[Kind]actuator.RGB{
	KindToggleRed:   actuator.Red,
	KindToggleGreen: actuator.Green,
	KindToggleBlue:  actuator.Blue,
}
