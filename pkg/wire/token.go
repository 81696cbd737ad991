package wire

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// MaxDepth is the deepest container nesting the codec tracks.
const MaxDepth = 64

// TokenKind identifies the kind of a JSON token.
type TokenKind uint8

const (
	TokenNone TokenKind = iota
	TokenBeginObject
	TokenEndObject
	TokenBeginArray
	TokenEndArray
	TokenPropertyName
	TokenString
	TokenNumber
	TokenTrue
	TokenFalse
	TokenNull
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenNone:
		return "NONE"
	case TokenBeginObject:
		return "BEGIN_OBJECT"
	case TokenEndObject:
		return "END_OBJECT"
	case TokenBeginArray:
		return "BEGIN_ARRAY"
	case TokenEndArray:
		return "END_ARRAY"
	case TokenPropertyName:
		return "PROPERTY_NAME"
	case TokenString:
		return "STRING"
	case TokenNumber:
		return "NUMBER"
	case TokenTrue:
		return "TRUE"
	case TokenFalse:
		return "FALSE"
	case TokenNull:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// IsContainerStart reports whether the kind opens an object or array.
func (k TokenKind) IsContainerStart() bool {
	return k == TokenBeginObject || k == TokenBeginArray
}

// Token is a single JSON token. Slice aliases the reader's source buffer and is
// only valid as long as that buffer is.
type Token struct {
	Kind TokenKind

	// Slice holds the raw token bytes. For strings and property names the
	// surrounding quotes are excluded and escapes are left as written.
	Slice []byte

	// Offset is the byte offset of the token in the source buffer.
	Offset int

	// HasEscapes is set for strings containing backslash escapes.
	HasEscapes bool
}

// Int32 parses a number token as a base-10 int32. Fractions, exponents and
// out-of-range values fail with ErrInvalidNumber.
func (t Token) Int32() (int32, error) {
	if t.Kind != TokenNumber || len(t.Slice) == 0 {
		return 0, ErrInvalidNumber
	}
	s := t.Slice
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
		if len(s) == 0 {
			return 0, ErrInvalidNumber
		}
	}
	var v int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, ErrInvalidNumber
		}
		v = v*10 + int64(c-'0')
		if v > math.MaxInt32+1 {
			return 0, ErrInvalidNumber
		}
	}
	if neg {
		v = -v
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, ErrInvalidNumber
	}
	return int32(v), nil
}

// Double parses a number token as a float64.
func (t Token) Double() (float64, error) {
	if t.Kind != TokenNumber {
		return 0, ErrInvalidNumber
	}
	v, err := strconv.ParseFloat(string(t.Slice), 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

// Bool returns the value of a true/false token.
func (t Token) Bool() (bool, error) {
	switch t.Kind {
	case TokenTrue:
		return true, nil
	case TokenFalse:
		return false, nil
	default:
		return false, ErrInvalidNumber
	}
}

// TextEqual reports whether the unescaped text of a string or property name
// token equals s. It does not allocate.
func (t Token) TextEqual(s string) bool {
	if t.Kind != TokenString && t.Kind != TokenPropertyName {
		return false
	}
	if !t.HasEscapes {
		return string(t.Slice) == s
	}

	var scratch [utf8.UTFMax]byte
	src := t.Slice
	j := 0
	for i := 0; i < len(src); {
		c := src[i]
		if c != '\\' {
			if j >= len(s) || s[j] != c {
				return false
			}
			i++
			j++
			continue
		}
		r, n := unescapeAt(src, i)
		i += n
		enc := scratch[:utf8.EncodeRune(scratch[:], r)]
		if len(s)-j < len(enc) || s[j:j+len(enc)] != string(enc) {
			return false
		}
		j += len(enc)
	}
	return j == len(s)
}

// AppendText appends the unescaped text of a string or property name token to dst.
func (t Token) AppendText(dst []byte) []byte {
	if !t.HasEscapes {
		return append(dst, t.Slice...)
	}
	src := t.Slice
	for i := 0; i < len(src); {
		if src[i] != '\\' {
			dst = append(dst, src[i])
			i++
			continue
		}
		r, n := unescapeAt(src, i)
		dst = utf8.AppendRune(dst, r)
		i += n
	}
	return dst
}

// unescapeAt decodes the escape sequence starting at src[i] (a backslash).
// The reader has already validated the sequence.
func unescapeAt(src []byte, i int) (rune, int) {
	if i+1 >= len(src) {
		return utf8.RuneError, 1
	}
	switch src[i+1] {
	case 'b':
		return '\b', 2
	case 'f':
		return '\f', 2
	case 'n':
		return '\n', 2
	case 'r':
		return '\r', 2
	case 't':
		return '\t', 2
	case 'u':
		r, ok := hex4(src, i+2)
		if !ok {
			return utf8.RuneError, 2
		}
		if r >= 0xD800 && r < 0xDC00 {
			if i+12 <= len(src) && src[i+6] == '\\' && src[i+7] == 'u' {
				lo, ok := hex4(src, i+8)
				if ok && lo >= 0xDC00 && lo < 0xE000 {
					return (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000, 12
				}
			}
			return utf8.RuneError, 6
		}
		return r, 6
	default:
		// '"', '\\' and '/'
		return rune(src[i+1]), 2
	}
}

func hex4(src []byte, i int) (rune, bool) {
	if i+4 > len(src) {
		return 0, false
	}
	var r rune
	for _, c := range src[i : i+4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}
