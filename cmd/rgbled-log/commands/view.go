// Package commands implements the rgbled-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rgbled/rgbled-go/pkg/log"
	"github.com/rgbled/rgbled-go/pkg/pnp"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenID(event.SessionID)

	var typeLabel string
	switch {
	case event.Message != nil:
		typeLabel = event.Message.Kind.String()
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [session:%s] %-3s %s %s\n", ts, session, event.Direction, event.Layer, typeLabel)

	switch {
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	if msg.RequestID != nil {
		fmt.Fprintf(w, "  RequestID: %d\n", *msg.RequestID)
	}
	if msg.Name != "" {
		fmt.Fprintf(w, "  Name: %s\n", msg.Name)
	}
	if msg.Status != nil {
		fmt.Fprintf(w, "  Status: %s (%d)\n", pnp.Status(*msg.Status), *msg.Status)
	}
	if msg.Version != nil {
		fmt.Fprintf(w, "  Version: %d\n", *msg.Version)
	}
	if msg.ProcessingTime != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*msg.ProcessingTime))
	}
	if len(msg.Payload) > 0 {
		fmt.Fprintf(w, "  Payload: %s", msg.Payload)
		if msg.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Offset != nil {
		fmt.Fprintf(w, "  Offset: %d\n", *err.Offset)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayer parses a layer name (case-insensitive).
func ParseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "codec":
		return log.LayerCodec, nil
	case "engine":
		return log.LayerEngine, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, codec, or engine)", s)
	}
}

// ParseDirection parses a direction name (case-insensitive).
func ParseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategory parses a category name (case-insensitive).
func ParseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "telemetry":
		return log.CategoryTelemetry, nil
	case "properties":
		return log.CategoryProperties, nil
	case "command":
		return log.CategoryCommand, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be telemetry, properties, command, state, or error)", s)
	}
}

// RunView prints every event of the capture at path that passes filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
