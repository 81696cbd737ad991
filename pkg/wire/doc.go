// Package wire implements the JSON wire codec used on the hub boundary.
//
// The codec reads and writes JSON incrementally over a caller-owned, fixed-size
// byte buffer. Neither the Writer nor the Reader allocates on the hot path: state is
// a cursor into the external buffer plus a fixed-depth container stack.
//
// # Writer
//
// The Writer appends tokens and validates structure as it goes. It fails with
// ErrBufferExhausted when the next token does not fit. A failed writer is sticky:
// Bytes still returns the last valid prefix, but the document is incomplete and the
// writer must not be used further for this document.
//
//	var w wire.Writer
//	w.Reset(buf)
//	w.BeginObject()
//	w.PropertyName("led_status")
//	w.Int32(2)
//	w.EndObject()
//	n, err := w.Terminate() // buf[:n] is the document, buf[n] == 0
//
// # Reader
//
// The Reader tokenizes a document one token at a time. Property names, strings
// and numbers are exposed as slices into the source buffer; typed extraction
// (Int32, Double, TextEqual) works on the slice without copying.
//
// SkipChildren consumes exactly one balanced object or array when positioned on a
// container start and is a no-op on scalars. On a property name it first advances
// to the property value, following the hub SDK reader convention.
//
// Malformed input (bad grammar, truncation, mismatched close tokens, depth overflow)
// is reported as a *SyntaxError that unwraps to ErrMalformedDocument.
package wire
