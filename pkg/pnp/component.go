package pnp

import "github.com/rgbled/rgbled-go/pkg/wire"

// Reserved member names of the hub property documents.
const (
	// ComponentMarkerName and ComponentMarkerValue tag an object as a component.
	ComponentMarkerName  = "__t"
	ComponentMarkerValue = "c"

	// VersionName holds the desired document version.
	VersionName = "$version"

	// DesiredName and ReportedName split a full twin document.
	DesiredName  = "desired"
	ReportedName = "reported"

	// Writable-property acknowledgment members.
	AckCodeName        = "ac"
	AckVersionName     = "av"
	AckDescriptionName = "ad"
	AckValueName       = "value"
)

// BeginComponent writes `"name": {"__t": "c"` so component properties can follow.
// The writer must be positioned inside an object.
func BeginComponent(w *wire.Writer, name string) error {
	if err := w.PropertyName(name); err != nil {
		return err
	}
	if err := w.BeginObject(); err != nil {
		return err
	}
	if err := w.PropertyName(ComponentMarkerName); err != nil {
		return err
	}
	return w.String(ComponentMarkerValue)
}

// EndComponent closes a component opened with BeginComponent.
func EndComponent(w *wire.Writer) error {
	return w.EndObject()
}

// BeginResponseStatus writes the ack header for one writable property, leaving
// the writer ready for the echoed value. The description is omitted when empty.
func BeginResponseStatus(w *wire.Writer, name string, status Status, version int32, description string) error {
	if err := w.PropertyName(name); err != nil {
		return err
	}
	if err := w.BeginObject(); err != nil {
		return err
	}
	if err := w.PropertyName(AckCodeName); err != nil {
		return err
	}
	if err := w.Int32(int32(status)); err != nil {
		return err
	}
	if err := w.PropertyName(AckVersionName); err != nil {
		return err
	}
	if err := w.Int32(version); err != nil {
		return err
	}
	if description != "" {
		if err := w.PropertyName(AckDescriptionName); err != nil {
			return err
		}
		if err := w.String(description); err != nil {
			return err
		}
	}
	return w.PropertyName(AckValueName)
}

// EndResponseStatus closes an ack opened with BeginResponseStatus.
func EndResponseStatus(w *wire.Writer) error {
	return w.EndObject()
}
