package wire

import (
	"math"
	"strconv"
)

type container uint8

const (
	containerObject container = iota + 1
	containerArray
)

// frame is one level of the nesting stack.
type frame struct {
	kind  container
	items bool
}

// maxSafeDouble bounds Double values so fixed-point formatting stays short.
const maxSafeDouble = 1 << 53

// maxFractionDigits is the largest fractionDigits accepted by Double.
const maxFractionDigits = 15

const hexDigits = "0123456789abcdef"

// Writer appends JSON tokens to a fixed-size buffer.
// The zero value is unusable until Reset is called.
type Writer struct {
	buf   []byte
	n     int
	stack [MaxDepth]frame
	depth int
	named bool // a property name awaits its value
	done  bool // root value complete
	err   error
}

// NewWriter returns a Writer over buf.
func NewWriter(buf []byte) *Writer {
	w := &Writer{}
	w.Reset(buf)
	return w
}

// Reset discards all state and starts a new document in buf.
func (w *Writer) Reset(buf []byte) {
	*w = Writer{buf: buf}
}

// Bytes returns the bytes written so far. After a failure this is the last
// valid prefix, not a complete document.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.n]
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.n
}

// Err returns the first error the writer hit, if any.
func (w *Writer) Err() error {
	return w.err
}

// Complete reports whether a full root value has been written without error.
func (w *Writer) Complete() bool {
	return w.err == nil && w.done
}

// Terminate appends a 0x00 sentinel after a complete document and returns the
// document length, excluding the sentinel. Nothing is written on failure.
func (w *Writer) Terminate() (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if !w.done {
		return 0, w.fail(syntaxErr(w.n, "document incomplete"))
	}
	if !w.fits(1) {
		return 0, w.fail(ErrBufferExhausted)
	}
	w.buf[w.n] = 0
	return w.n, nil
}

// BeginObject writes '{'.
func (w *Writer) BeginObject() error {
	return w.open(containerObject, '{')
}

// EndObject writes '}'.
func (w *Writer) EndObject() error {
	return w.close(containerObject, '}')
}

// BeginArray writes '['.
func (w *Writer) BeginArray() error {
	return w.open(containerArray, '[')
}

// EndArray writes ']'.
func (w *Writer) EndArray() error {
	return w.close(containerArray, ']')
}

// PropertyName writes a quoted member name followed by ':'.
func (w *Writer) PropertyName(name string) error {
	if w.err != nil {
		return w.err
	}
	if w.done || w.depth == 0 || w.stack[w.depth-1].kind != containerObject || w.named {
		return w.fail(syntaxErr(w.n, "property name outside object member position"))
	}
	top := &w.stack[w.depth-1]
	sep := 0
	if top.items {
		sep = 1
	}
	if !w.fits(sep + escapedLen(name) + 1) {
		return w.fail(ErrBufferExhausted)
	}
	if sep == 1 {
		w.buf[w.n] = ','
		w.n++
	}
	w.putString(name)
	w.buf[w.n] = ':'
	w.n++
	top.items = true
	w.named = true
	return nil
}

// String writes a quoted, escaped string value.
func (w *Writer) String(s string) error {
	sep, err := w.beforeValue()
	if err != nil {
		return err
	}
	if !w.fits(sep + escapedLen(s)) {
		return w.fail(ErrBufferExhausted)
	}
	w.separator(sep)
	w.putString(s)
	w.afterScalar()
	return nil
}

// Int32 writes a base-10 integer value.
func (w *Writer) Int32(v int32) error {
	var tmp [11]byte
	return w.raw(strconv.AppendInt(tmp[:0], int64(v), 10))
}

// Double writes v in fixed-point notation with at most fractionDigits digits
// after the decimal point. Trailing zeros are dropped, so 4096 is written as 4096.
func (w *Writer) Double(v float64, fractionDigits int) error {
	if w.err != nil {
		return w.err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= maxSafeDouble {
		return w.fail(ErrInvalidNumber)
	}
	if fractionDigits < 0 || fractionDigits > maxFractionDigits {
		return w.fail(ErrInvalidNumber)
	}
	var tmp [40]byte
	num := strconv.AppendFloat(tmp[:0], v, 'f', fractionDigits, 64)
	if fractionDigits > 0 {
		for num[len(num)-1] == '0' {
			num = num[:len(num)-1]
		}
		if num[len(num)-1] == '.' {
			num = num[:len(num)-1]
		}
	}
	return w.raw(num)
}

// Bool writes true or false.
func (w *Writer) Bool(v bool) error {
	if v {
		return w.raw(literalTrue)
	}
	return w.raw(literalFalse)
}

// Null writes null.
func (w *Writer) Null() error {
	return w.raw(literalNull)
}

var (
	literalTrue  = []byte("true")
	literalFalse = []byte("false")
	literalNull  = []byte("null")
)

func (w *Writer) raw(b []byte) error {
	sep, err := w.beforeValue()
	if err != nil {
		return err
	}
	if !w.fits(sep + len(b)) {
		return w.fail(ErrBufferExhausted)
	}
	w.separator(sep)
	w.n += copy(w.buf[w.n:], b)
	w.afterScalar()
	return nil
}

func (w *Writer) open(kind container, b byte) error {
	sep, err := w.beforeValue()
	if err != nil {
		return err
	}
	if w.depth == MaxDepth {
		return w.fail(syntaxErr(w.n, "nesting too deep"))
	}
	if !w.fits(sep + 1) {
		return w.fail(ErrBufferExhausted)
	}
	w.separator(sep)
	w.buf[w.n] = b
	w.n++
	w.markParent()
	w.stack[w.depth] = frame{kind: kind}
	w.depth++
	return nil
}

func (w *Writer) close(kind container, b byte) error {
	if w.err != nil {
		return w.err
	}
	if w.depth == 0 || w.stack[w.depth-1].kind != kind || w.named {
		return w.fail(syntaxErr(w.n, "mismatched close"))
	}
	if !w.fits(1) {
		return w.fail(ErrBufferExhausted)
	}
	w.buf[w.n] = b
	w.n++
	w.depth--
	if w.depth == 0 {
		w.done = true
	}
	return nil
}

// beforeValue validates value position and returns the separator length.
func (w *Writer) beforeValue() (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.done {
		return 0, w.fail(syntaxErr(w.n, "value after root"))
	}
	if w.depth == 0 {
		return 0, nil
	}
	top := w.stack[w.depth-1]
	if top.kind == containerObject {
		if !w.named {
			return 0, w.fail(syntaxErr(w.n, "object value without property name"))
		}
		return 0, nil
	}
	if top.items {
		return 1, nil
	}
	return 0, nil
}

func (w *Writer) separator(sep int) {
	if sep == 1 {
		w.buf[w.n] = ','
		w.n++
	}
}

func (w *Writer) markParent() {
	w.named = false
	if w.depth > 0 {
		w.stack[w.depth-1].items = true
	}
}

func (w *Writer) afterScalar() {
	w.markParent()
	if w.depth == 0 {
		w.done = true
	}
}

func (w *Writer) fits(n int) bool {
	return len(w.buf)-w.n >= n
}

func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return w.err
}

// escapedLen returns the quoted, escaped length of s.
func escapedLen(s string) int {
	n := 2
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\\' || c == '\b' || c == '\f' || c == '\n' || c == '\r' || c == '\t':
			n += 2
		case c < 0x20:
			n += 6
		default:
			n++
		}
	}
	return n
}

// putString writes s quoted and escaped. Space has been checked by the caller.
func (w *Writer) putString(s string) {
	b := w.buf
	n := w.n
	b[n] = '"'
	n++
	for i := 0; i < len(s); i++ {
		c := s[i]
		var esc byte
		switch c {
		case '"', '\\':
			esc = c
		case '\b':
			esc = 'b'
		case '\f':
			esc = 'f'
		case '\n':
			esc = 'n'
		case '\r':
			esc = 'r'
		case '\t':
			esc = 't'
		}
		switch {
		case esc != 0:
			b[n] = '\\'
			b[n+1] = esc
			n += 2
		case c < 0x20:
			b[n] = '\\'
			b[n+1] = 'u'
			b[n+2] = '0'
			b[n+3] = '0'
			b[n+4] = hexDigits[c>>4]
			b[n+5] = hexDigits[c&0xF]
			n += 6
		default:
			b[n] = c
			n++
		}
	}
	b[n] = '"'
	w.n = n + 1
}
