package wire

// Reader tokenizes a JSON document held in a caller-owned buffer.
// The zero value is unusable until Reset is called.
type Reader struct {
	buf     []byte
	pos     int
	stack   [MaxDepth]frame
	depth   int
	tok     Token
	started bool
	named   bool // a property name was read; its value comes next
	done    bool
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader {
	r := &Reader{}
	r.Reset(buf)
	return r
}

// Reset starts reading buf from the beginning.
func (r *Reader) Reset(buf []byte) {
	*r = Reader{buf: buf}
}

// Token returns the current token.
func (r *Reader) Token() Token {
	return r.tok
}

// Offset returns the current read position.
func (r *Reader) Offset() int {
	return r.pos
}

// Depth returns the current container nesting depth.
func (r *Reader) Depth() int {
	return r.depth
}

// Next advances to the next token. It returns ErrDone once the root value and
// any trailing whitespace or 0x00 sentinel bytes have been consumed.
func (r *Reader) Next() (Token, error) {
	if r.done {
		return r.tok, ErrDone
	}
	r.skipSpace()

	if !r.started {
		r.started = true
		return r.value()
	}

	if r.depth == 0 {
		for ; r.pos < len(r.buf); r.pos++ {
			if r.buf[r.pos] != 0 {
				return Token{}, syntaxErr(r.pos, "data after root value")
			}
		}
		r.done = true
		return r.tok, ErrDone
	}

	if r.named {
		if r.pos >= len(r.buf) || r.buf[r.pos] != ':' {
			return Token{}, r.truncatedOr("expected ':'")
		}
		r.pos++
		r.named = false
		r.skipSpace()
		return r.value()
	}

	if r.pos >= len(r.buf) {
		return Token{}, syntaxErr(r.pos, "unexpected end of input")
	}

	top := &r.stack[r.depth-1]
	c := r.buf[r.pos]

	if top.kind == containerObject {
		if c == '}' {
			return r.pop(TokenEndObject), nil
		}
		if top.items {
			if c != ',' {
				return Token{}, syntaxErr(r.pos, "expected ',' or '}'")
			}
			r.pos++
			r.skipSpace()
		}
		if r.pos >= len(r.buf) || r.buf[r.pos] != '"' {
			return Token{}, r.truncatedOr("expected property name")
		}
		if err := r.str(TokenPropertyName); err != nil {
			return Token{}, err
		}
		top.items = true
		r.named = true
		return r.tok, nil
	}

	if c == ']' {
		return r.pop(TokenEndArray), nil
	}
	if top.items {
		if c != ',' {
			return Token{}, syntaxErr(r.pos, "expected ',' or ']'")
		}
		r.pos++
		r.skipSpace()
	}
	top.items = true
	return r.value()
}

// SkipChildren skips the value under the current token. On a container start it
// consumes the whole container and leaves the reader on its closing token. On a
// property name it first advances to the value. On scalars it does nothing.
func (r *Reader) SkipChildren() error {
	if r.tok.Kind == TokenPropertyName {
		if _, err := r.Next(); err != nil {
			return err
		}
	}
	if !r.tok.Kind.IsContainerStart() {
		return nil
	}
	target := r.depth - 1
	for {
		tok, err := r.Next()
		if err != nil {
			return err
		}
		if (tok.Kind == TokenEndObject || tok.Kind == TokenEndArray) && r.depth == target {
			return nil
		}
	}
}

// value reads a value token at the current position.
func (r *Reader) value() (Token, error) {
	if r.pos >= len(r.buf) {
		return Token{}, syntaxErr(r.pos, "unexpected end of input")
	}
	switch c := r.buf[r.pos]; {
	case c == '{':
		return r.push(containerObject, TokenBeginObject)
	case c == '[':
		return r.push(containerArray, TokenBeginArray)
	case c == '"':
		if err := r.str(TokenString); err != nil {
			return Token{}, err
		}
	case c == 't':
		if err := r.literal("true", TokenTrue); err != nil {
			return Token{}, err
		}
	case c == 'f':
		if err := r.literal("false", TokenFalse); err != nil {
			return Token{}, err
		}
	case c == 'n':
		if err := r.literal("null", TokenNull); err != nil {
			return Token{}, err
		}
	case c == '-' || (c >= '0' && c <= '9'):
		if err := r.number(); err != nil {
			return Token{}, err
		}
	default:
		return Token{}, syntaxErr(r.pos, "unexpected character")
	}
	r.named = false
	return r.tok, nil
}

func (r *Reader) push(kind container, tk TokenKind) (Token, error) {
	if r.depth == MaxDepth {
		return Token{}, syntaxErr(r.pos, "nesting too deep")
	}
	r.tok = Token{Kind: tk, Slice: r.buf[r.pos : r.pos+1], Offset: r.pos}
	r.stack[r.depth] = frame{kind: kind}
	r.depth++
	r.pos++
	return r.tok, nil
}

func (r *Reader) pop(tk TokenKind) Token {
	r.tok = Token{Kind: tk, Slice: r.buf[r.pos : r.pos+1], Offset: r.pos}
	r.depth--
	r.pos++
	return r.tok
}

func (r *Reader) str(tk TokenKind) error {
	start := r.pos
	i := r.pos + 1
	escapes := false
	for {
		if i >= len(r.buf) {
			return syntaxErr(i, "unterminated string")
		}
		c := r.buf[i]
		switch {
		case c == '"':
			r.tok = Token{Kind: tk, Slice: r.buf[start+1 : i], Offset: start, HasEscapes: escapes}
			r.pos = i + 1
			return nil
		case c == '\\':
			escapes = true
			if i+1 >= len(r.buf) {
				return syntaxErr(i, "unterminated escape")
			}
			switch r.buf[i+1] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				i += 2
			case 'u':
				if _, ok := hex4(r.buf, i+2); !ok {
					return syntaxErr(i, "invalid unicode escape")
				}
				i += 6
			default:
				return syntaxErr(i, "invalid escape")
			}
		case c < 0x20:
			return syntaxErr(i, "control character in string")
		default:
			i++
		}
	}
}

func (r *Reader) literal(lit string, tk TokenKind) error {
	end := r.pos + len(lit)
	if end > len(r.buf) {
		return syntaxErr(r.pos, "unexpected end of input")
	}
	if string(r.buf[r.pos:end]) != lit {
		return syntaxErr(r.pos, "invalid literal")
	}
	if !r.delimiterAt(end) {
		return syntaxErr(end, "invalid literal")
	}
	r.tok = Token{Kind: tk, Slice: r.buf[r.pos:end], Offset: r.pos}
	r.pos = end
	return nil
}

func (r *Reader) number() error {
	b := r.buf
	start := r.pos
	i := start
	if b[i] == '-' {
		i++
	}
	switch {
	case i < len(b) && b[i] == '0':
		i++
	case i < len(b) && b[i] >= '1' && b[i] <= '9':
		i = digits(b, i)
	default:
		return syntaxErr(i, "invalid number")
	}
	if i < len(b) && b[i] == '.' {
		j := digits(b, i+1)
		if j == i+1 {
			return syntaxErr(j, "invalid number")
		}
		i = j
	}
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		i++
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}
		j := digits(b, i)
		if j == i {
			return syntaxErr(j, "invalid number")
		}
		i = j
	}
	if !r.delimiterAt(i) {
		return syntaxErr(i, "invalid number")
	}
	r.tok = Token{Kind: TokenNumber, Slice: b[start:i], Offset: start}
	r.pos = i
	return nil
}

func digits(b []byte, i int) int {
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	return i
}

// delimiterAt reports whether a scalar may end before b[i].
func (r *Reader) delimiterAt(i int) bool {
	if i >= len(r.buf) {
		return true
	}
	switch r.buf[i] {
	case ',', '}', ']', ' ', '\t', '\n', '\r', 0:
		return true
	}
	return false
}

func (r *Reader) skipSpace() {
	for r.pos < len(r.buf) {
		switch r.buf[r.pos] {
		case ' ', '\t', '\n', '\r':
			r.pos++
		default:
			return
		}
	}
}

func (r *Reader) truncatedOr(reason string) error {
	if r.pos >= len(r.buf) {
		return syntaxErr(r.pos, "unexpected end of input")
	}
	return syntaxErr(r.pos, reason)
}
