package wire

import (
	"errors"
	"fmt"
)

// Codec errors.
var (
	// ErrBufferExhausted is returned when the next token does not fit the target buffer.
	ErrBufferExhausted = errors.New("wire: buffer exhausted")

	// ErrMalformedDocument is returned for invalid, truncated or mismatched JSON.
	ErrMalformedDocument = errors.New("wire: malformed document")

	// ErrDone is returned by Reader.Next once the root value has been fully read.
	ErrDone = errors.New("wire: document done")

	// ErrInvalidNumber is returned when a token cannot be converted to the requested type.
	ErrInvalidNumber = errors.New("wire: invalid number")
)

// SyntaxError describes where a document failed to read or write.
type SyntaxError struct {
	// Offset is the byte offset into the buffer.
	Offset int

	// Reason is a short description of the problem.
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("wire: malformed document at offset %d: %s", e.Offset, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedDocument.
func (e *SyntaxError) Unwrap() error {
	return ErrMalformedDocument
}

func syntaxErr(offset int, reason string) error {
	return &SyntaxError{Offset: offset, Reason: reason}
}
