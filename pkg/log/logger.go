package log

import "github.com/google/uuid"

// Logger receives protocol events.
// Pass nil or NoopLogger to disable capture.
type Logger interface {
	// Log records an event. Implementations must be safe for concurrent use
	// and should not block.
	Log(event Event)
}

// NoopLogger discards all events.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}

// NewSessionID returns a random identifier for one agent run.
func NewSessionID() string {
	return uuid.NewString()
}
