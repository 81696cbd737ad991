package pnp

import (
	"errors"

	"github.com/rgbled/rgbled-go/pkg/wire"
)

// ErrMissingVersion is returned when a properties document has no $version.
var ErrMissingVersion = errors.New("pnp: properties document has no $version")

// MessageType identifies the shape of an incoming properties document.
type MessageType uint8

const (
	// MessageTypeWritableUpdated is a desired-properties patch. Properties and
	// $version are members of the root object.
	MessageTypeWritableUpdated MessageType = iota + 1

	// MessageTypeGetResponse is a full twin document. Properties and $version
	// are read from its "desired" section.
	MessageTypeGetResponse
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeWritableUpdated:
		return "WRITABLE_UPDATED"
	case MessageTypeGetResponse:
		return "GET_RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// openDesired leaves r just inside the object holding the desired properties.
func openDesired(r *wire.Reader, msgType MessageType) error {
	tok, err := r.Next()
	if err != nil {
		return err
	}
	if tok.Kind != wire.TokenBeginObject {
		return &wire.SyntaxError{Offset: tok.Offset, Reason: "properties document is not an object"}
	}
	if msgType != MessageTypeGetResponse {
		return nil
	}
	for {
		tok, err = r.Next()
		if err != nil {
			return err
		}
		if tok.Kind == wire.TokenEndObject {
			return &wire.SyntaxError{Offset: tok.Offset, Reason: "twin document has no desired section"}
		}
		if !tok.TextEqual(DesiredName) {
			if err := r.SkipChildren(); err != nil {
				return err
			}
			continue
		}
		tok, err = r.Next()
		if err != nil {
			return err
		}
		if tok.Kind != wire.TokenBeginObject {
			return &wire.SyntaxError{Offset: tok.Offset, Reason: "desired section is not an object"}
		}
		return nil
	}
}

// PropertiesVersion reads the $version of a properties document. The reader is
// consumed; Reset it before walking the properties.
func PropertiesVersion(r *wire.Reader, msgType MessageType) (int32, error) {
	if err := openDesired(r, msgType); err != nil {
		return 0, err
	}
	for {
		tok, err := r.Next()
		if err != nil {
			return 0, err
		}
		if tok.Kind == wire.TokenEndObject {
			return 0, ErrMissingVersion
		}
		if !tok.TextEqual(VersionName) {
			if err := r.SkipChildren(); err != nil {
				return 0, err
			}
			continue
		}
		tok, err = r.Next()
		if err != nil {
			return 0, err
		}
		v, err := tok.Int32()
		if err != nil {
			return 0, &wire.SyntaxError{Offset: tok.Offset, Reason: "$version is not an int32"}
		}
		return v, nil
	}
}

// PropertyIterator walks the writable properties of a document, one name at a
// time. Members of the named components are reported with their component;
// other root members are reported with an empty component.
//
// After Next returns true the reader rests on the property name. The caller must
// consume exactly one value (Value plus SkipChildren, or SkipValue) before the
// next call.
type PropertyIterator struct {
	r          *wire.Reader
	msgType    MessageType
	components []string

	component   string
	inComponent bool
	name        wire.Token
	base      int // reader depth inside the properties object
	started   bool
	finished  bool
}

// NewPropertyIterator returns an iterator over the properties read by r.
func NewPropertyIterator(r *wire.Reader, msgType MessageType, components ...string) *PropertyIterator {
	it := &PropertyIterator{}
	it.Reset(r, msgType, components)
	return it
}

// Reset restarts the iterator over r.
func (it *PropertyIterator) Reset(r *wire.Reader, msgType MessageType, components []string) {
	*it = PropertyIterator{r: r, msgType: msgType, components: components}
}

// Component returns the component of the current property, or "" at root level.
func (it *PropertyIterator) Component() string {
	return it.component
}

// Name returns the property name token.
func (it *PropertyIterator) Name() wire.Token {
	return it.name
}

// Value advances to the property value. Container values must be skipped with
// the reader's SkipChildren before calling Next.
func (it *PropertyIterator) Value() (wire.Token, error) {
	return it.r.Next()
}

// SkipValue consumes the property value, whatever its shape.
func (it *PropertyIterator) SkipValue() error {
	if _, err := it.r.Next(); err != nil {
		return err
	}
	return it.r.SkipChildren()
}

// Next advances to the next writable property. It returns false once the
// properties object is exhausted.
func (it *PropertyIterator) Next() (bool, error) {
	if it.finished {
		return false, nil
	}
	if !it.started {
		it.started = true
		if err := openDesired(it.r, it.msgType); err != nil {
			return false, err
		}
		it.base = it.r.Depth()
	}
	for {
		tok, err := it.r.Next()
		if err != nil {
			return false, err
		}
		want := it.base
		if it.inComponent {
			want++
		}
		if tok.Kind == wire.TokenEndObject {
			want--
		}
		if it.r.Depth() != want {
			return false, &wire.SyntaxError{Offset: tok.Offset, Reason: "property value not consumed"}
		}
		switch tok.Kind {
		case wire.TokenEndObject:
			if it.inComponent {
				it.inComponent = false
				it.component = ""
				continue
			}
			it.finished = true
			return false, nil
		case wire.TokenPropertyName:
		default:
			return false, &wire.SyntaxError{Offset: tok.Offset, Reason: "expected property name"}
		}

		if it.inComponent {
			if tok.TextEqual(ComponentMarkerName) {
				if err := it.r.SkipChildren(); err != nil {
					return false, err
				}
				continue
			}
			it.name = tok
			return true, nil
		}

		if tok.TextEqual(VersionName) {
			if err := it.r.SkipChildren(); err != nil {
				return false, err
			}
			continue
		}
		if name, ok := it.matchComponent(tok); ok {
			tok, err = it.r.Next()
			if err != nil {
				return false, err
			}
			if tok.Kind != wire.TokenBeginObject {
				return false, &wire.SyntaxError{Offset: tok.Offset, Reason: "component value is not an object"}
			}
			it.component = name
			it.inComponent = true
			continue
		}
		it.name = tok
		return true, nil
	}
}

func (it *PropertyIterator) matchComponent(tok wire.Token) (string, bool) {
	for _, c := range it.components {
		if tok.TextEqual(c) {
			return c, true
		}
	}
	return "", false
}
