// Package deviceinfo encodes the static device information report sent as
// reported properties under the deviceInformation component.
package deviceinfo

import (
	"errors"
	"fmt"

	"github.com/rgbled/rgbled-go/pkg/pnp"
	"github.com/rgbled/rgbled-go/pkg/wire"
)

// ComponentName is the component holding the report.
const ComponentName = "deviceInformation"

// Member names of the report.
const (
	ManufacturerName          = "manufacturer"
	ModelName                 = "model"
	SoftwareVersionName       = "swVersion"
	OSName                    = "osName"
	ProcessorArchitectureName = "processorArchitecture"
	ProcessorManufacturerName = "processorManufacturer"
	TotalStorageName          = "totalStorage"
	TotalMemoryName           = "totalMemory"
)

// doubleDigits is the fixed-point precision of the size members.
const doubleDigits = 2

var (
	// ErrEncodeOverflow is returned when the report does not fit the buffer.
	ErrEncodeOverflow = errors.New("deviceinfo: encode overflow")

	// ErrMissingComponent is returned by Decode when the payload has no report.
	ErrMissingComponent = errors.New("deviceinfo: no deviceInformation component")
)

// Report describes the device. Sizes are in KiB.
type Report struct {
	Manufacturer          string
	Model                 string
	SoftwareVersion       string
	OSName                string
	ProcessorArchitecture string
	ProcessorManufacturer string
	TotalStorage          float64
	TotalMemory           float64
}

// Default returns the report of the ESP32 Azure IoT Kit.
func Default() Report {
	return Report{
		Manufacturer:          "ESPRESSIF",
		Model:                 "ESP32 Azure IoT Kit",
		SoftwareVersion:       "1.0.0",
		OSName:                "FreeRTOS",
		ProcessorArchitecture: "ESP32 WROVER-B",
		ProcessorManufacturer: "ESPRESSIF",
		TotalStorage:          4096,
		TotalMemory:           8192,
	}
}

// Generate writes rep inside the component envelope, followed by a 0x00
// sentinel, and returns the length without the sentinel.
func Generate(rep Report, buf []byte) (int, error) {
	var w wire.Writer
	w.Reset(buf)

	w.BeginObject()
	pnp.BeginComponent(&w, ComponentName)
	writeString(&w, ManufacturerName, rep.Manufacturer)
	writeString(&w, ModelName, rep.Model)
	writeString(&w, SoftwareVersionName, rep.SoftwareVersion)
	writeString(&w, OSName, rep.OSName)
	writeString(&w, ProcessorArchitectureName, rep.ProcessorArchitecture)
	writeString(&w, ProcessorManufacturerName, rep.ProcessorManufacturer)
	w.PropertyName(TotalStorageName)
	w.Double(rep.TotalStorage, doubleDigits)
	w.PropertyName(TotalMemoryName)
	w.Double(rep.TotalMemory, doubleDigits)
	pnp.EndComponent(&w)
	w.EndObject()

	// Writer errors are sticky, so Terminate reports the first failure.
	n, err := w.Terminate()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEncodeOverflow, err)
	}
	return n, nil
}

func writeString(w *wire.Writer, name, value string) {
	w.PropertyName(name)
	w.String(value)
}

// Decode reads a report written by Generate. Unknown members are ignored.
func Decode(payload []byte) (Report, error) {
	var rep Report
	r := wire.NewReader(payload)

	tok, err := r.Next()
	if err != nil {
		return rep, err
	}
	if tok.Kind != wire.TokenBeginObject {
		return rep, &wire.SyntaxError{Offset: tok.Offset, Reason: "report is not an object"}
	}
	for {
		tok, err = r.Next()
		if err != nil {
			return rep, err
		}
		if tok.Kind == wire.TokenEndObject {
			return rep, ErrMissingComponent
		}
		if !tok.TextEqual(ComponentName) {
			if err := r.SkipChildren(); err != nil {
				return rep, err
			}
			continue
		}
		if tok, err = r.Next(); err != nil {
			return rep, err
		}
		if tok.Kind != wire.TokenBeginObject {
			return rep, &wire.SyntaxError{Offset: tok.Offset, Reason: "component is not an object"}
		}
		return rep, decodeMembers(r, &rep)
	}
}

func decodeMembers(r *wire.Reader, rep *Report) error {
	for {
		name, err := r.Next()
		if err != nil {
			return err
		}
		if name.Kind == wire.TokenEndObject {
			return nil
		}
		val, err := r.Next()
		if err != nil {
			return err
		}

		var dst *string
		switch {
		case name.TextEqual(ManufacturerName):
			dst = &rep.Manufacturer
		case name.TextEqual(ModelName):
			dst = &rep.Model
		case name.TextEqual(SoftwareVersionName):
			dst = &rep.SoftwareVersion
		case name.TextEqual(OSName):
			dst = &rep.OSName
		case name.TextEqual(ProcessorArchitectureName):
			dst = &rep.ProcessorArchitecture
		case name.TextEqual(ProcessorManufacturerName):
			dst = &rep.ProcessorManufacturer
		case name.TextEqual(TotalStorageName):
			if rep.TotalStorage, err = val.Double(); err != nil {
				return fmt.Errorf("deviceinfo: %s: %w", TotalStorageName, err)
			}
			continue
		case name.TextEqual(TotalMemoryName):
			if rep.TotalMemory, err = val.Double(); err != nil {
				return fmt.Errorf("deviceinfo: %s: %w", TotalMemoryName, err)
			}
			continue
		default:
			if err := r.SkipChildren(); err != nil {
				return err
			}
			continue
		}
		if val.Kind != wire.TokenString {
			return &wire.SyntaxError{Offset: val.Offset, Reason: "expected string member"}
		}
		*dst = string(val.AppendText(nil))
	}
}
