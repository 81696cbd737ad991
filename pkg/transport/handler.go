package transport

import (
	"fmt"

	"github.com/rgbled/rgbled-go/pkg/command"
)

// Handler consumes inbound frames. *engine.Engine implements it.
type Handler interface {
	HandleCommand(req command.Request) error
	HandlePropertiesUpdate(payload []byte, requestID uint32) error
	HandleTwinDocument(payload []byte, requestID uint32) error
	SendDeviceInfo(requestID uint32) error
}

// Dispatch routes an inbound frame to h. Callers must serialize calls the way
// h requires.
func Dispatch(h Handler, f Frame) error {
	switch f.Type {
	case FrameCommand:
		return h.HandleCommand(command.Request{
			Name:      f.Name,
			Payload:   f.Payload,
			RequestID: f.RequestID,
		})
	case FrameProperties:
		return h.HandlePropertiesUpdate(f.Payload, f.RequestID)
	case FrameTwin:
		return h.HandleTwinDocument(f.Payload, f.RequestID)
	case FrameDeviceInfoRequest:
		return h.SendDeviceInfo(f.RequestID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrameType, f.Type)
	}
}
