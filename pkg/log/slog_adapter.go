package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log implements Logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}

	switch {
	case event.Message != nil:
		m := event.Message
		attrs = append(attrs, slog.String("kind", m.Kind.String()))
		if m.RequestID != nil {
			attrs = append(attrs, slog.Uint64("request_id", uint64(*m.RequestID)))
		}
		if m.Name != "" {
			attrs = append(attrs, slog.String("name", m.Name))
		}
		if m.Status != nil {
			attrs = append(attrs, slog.Int("status", int(*m.Status)))
		}
		if m.Version != nil {
			attrs = append(attrs, slog.Int("version", int(*m.Version)))
		}
		if len(m.Payload) > 0 {
			attrs = append(attrs, slog.String("payload", string(m.Payload)))
		}
		if m.ProcessingTime != nil {
			attrs = append(attrs, slog.Duration("processing_time", *m.ProcessingTime))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
		if event.Error.Offset != nil {
			attrs = append(attrs, slog.Int("offset", *event.Error.Offset))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
