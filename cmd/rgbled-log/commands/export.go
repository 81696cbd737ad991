package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rgbled/rgbled-go/pkg/log"
)

// RunExport writes the capture at path to w as jsonl or csv.
func RunExport(path, format string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

// jsonEvent is the export shape of an event. Payloads are embedded as JSON
// when they are complete documents and as strings otherwise.
type jsonEvent struct {
	Timestamp string           `json:"timestamp"`
	SessionID string           `json:"session_id"`
	DeviceID  string           `json:"device_id,omitempty"`
	Direction string           `json:"direction"`
	Layer     string           `json:"layer"`
	Category  string           `json:"category"`
	Kind      string           `json:"kind,omitempty"`
	RequestID *uint32          `json:"request_id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Status    *uint16          `json:"status,omitempty"`
	Version   *int32           `json:"version,omitempty"`
	Payload   any              `json:"payload,omitempty"`
	Truncated bool             `json:"truncated,omitempty"`
	State     *jsonStateChange `json:"state,omitempty"`
	Error     *jsonError       `json:"error,omitempty"`
}

type jsonStateChange struct {
	Entity   string `json:"entity"`
	OldState string `json:"old_state,omitempty"`
	NewState string `json:"new_state"`
	Reason   string `json:"reason,omitempty"`
}

type jsonError struct {
	Layer   string `json:"layer"`
	Message string `json:"message"`
	Offset  *int   `json:"offset,omitempty"`
	Context string `json:"context,omitempty"`
}

func toJSONEvent(e log.Event) jsonEvent {
	out := jsonEvent{
		Timestamp: e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		SessionID: e.SessionID,
		DeviceID:  e.DeviceID,
		Direction: e.Direction.String(),
		Layer:     e.Layer.String(),
		Category:  e.Category.String(),
	}
	if m := e.Message; m != nil {
		out.Kind = m.Kind.String()
		out.RequestID = m.RequestID
		out.Name = m.Name
		out.Status = m.Status
		out.Version = m.Version
		out.Truncated = m.Truncated
		if len(m.Payload) > 0 {
			if !m.Truncated && json.Valid(m.Payload) {
				out.Payload = json.RawMessage(m.Payload)
			} else {
				out.Payload = string(m.Payload)
			}
		}
	}
	if s := e.StateChange; s != nil {
		out.State = &jsonStateChange{
			Entity:   s.Entity.String(),
			OldState: s.OldState,
			NewState: s.NewState,
			Reason:   s.Reason,
		}
	}
	if er := e.Error; er != nil {
		out.Error = &jsonError{
			Layer:   er.Layer.String(),
			Message: er.Message,
			Offset:  er.Offset,
			Context: er.Context,
		}
	}
	return out
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toJSONEvent(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "direction", "layer", "category", "device_id", "kind", "request_id", "name", "status"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		kind, requestID, name, status := "unknown", "", "", ""
		switch {
		case event.Message != nil:
			kind = event.Message.Kind.String()
			name = event.Message.Name
			if event.Message.RequestID != nil {
				requestID = strconv.FormatUint(uint64(*event.Message.RequestID), 10)
			}
			if event.Message.Status != nil {
				status = strconv.Itoa(int(*event.Message.Status))
			}
		case event.StateChange != nil:
			kind = "state"
		case event.Error != nil:
			kind = "error"
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			event.DeviceID,
			kind,
			requestID,
			name,
			status,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return cw.Error()
}
