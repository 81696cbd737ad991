package engine

import (
	"errors"
	"time"

	"github.com/rgbled/rgbled-go/pkg/log"
	"github.com/rgbled/rgbled-go/pkg/wire"
)

func (e *Engine) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) event(dir log.Direction, layer log.Layer, cat log.Category) log.Event {
	return log.Event{
		Timestamp: time.Now(),
		SessionID: e.cfg.SessionID,
		DeviceID:  e.cfg.DeviceID,
		Direction: dir,
		Layer:     layer,
		Category:  cat,
	}
}

// logMessage records msg with a copy of payload.
func (e *Engine) logMessage(dir log.Direction, cat log.Category, msg *log.MessageEvent, payload []byte) {
	if e.plog == nil {
		return
	}
	msg.Payload, msg.Truncated = log.CapturePayload(payload)
	ev := e.event(dir, log.LayerEngine, cat)
	ev.Message = msg
	e.plog.Log(ev)
}

func (e *Engine) logState(entity log.StateEntity, old, next, reason string) {
	if e.plog == nil {
		return
	}
	ev := e.event(log.DirectionIn, log.LayerEngine, log.CategoryState)
	ev.StateChange = &log.StateChangeEvent{
		Entity:   entity,
		OldState: old,
		NewState: next,
		Reason:   reason,
	}
	e.plog.Log(ev)
}

// logError reports err to both loggers. Codec offsets are kept when present.
func (e *Engine) logError(layer log.Layer, context string, err error) {
	var offset *int
	var se *wire.SyntaxError
	if errors.As(err, &se) {
		offset = &se.Offset
	}

	if e.logger != nil {
		args := []any{"context", context, "error", err}
		if offset != nil {
			args = append(args, "offset", *offset)
		}
		e.logger.Error("engine operation failed", args...)
	}
	if e.plog == nil {
		return
	}
	ev := e.event(log.DirectionIn, layer, log.CategoryError)
	ev.Error = &log.ErrorEventData{
		Layer:   layer,
		Message: err.Error(),
		Offset:  offset,
		Context: context,
	}
	e.plog.Log(ev)
}
