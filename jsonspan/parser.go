// Package jsonspan parses JSON documents into span-annotated value trees.
// Every value, array element, and object key carries the byte range of its
// raw source text, so callers can recover the exact original bytes of any
// sub-element by slicing the input buffer. String values are decoded
// (escapes resolved) while their spans always cover the raw, still-escaped
// text including the enclosing quotes.
package jsonspan

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/spanparse/parse"
	"github.com/dhamidi/spanparse/span"
)

const defaultMaxDepth = 128

type parser struct {
	buf           []byte
	c             *parse.Cursor
	maxDepth      int
	allowTrailing bool
}

// Option configures parsing.
type Option func(*parser)

// WithMaxDepth overrides the nesting depth limit (default 128). The limit
// bounds recursion on adversarial deeply-nested documents.
func WithMaxDepth(n int) Option {
	return func(p *parser) {
		p.maxDepth = n
	}
}

// WithTrailingData allows content after the top-level value. The trailing
// bytes are left unconsumed; the returned span tells where they start. The
// default is to fail with TrailingData.
func WithTrailingData() Option {
	return func(p *parser) {
		p.allowTrailing = true
	}
}

// Parse parses one JSON value from buf. Leading whitespace is skipped and
// excluded from the returned span.
func Parse(buf []byte, opts ...Option) (span.Spanned[*Value], error) {
	p := &parser{
		buf:      buf,
		c:        parse.NewCursor(buf),
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.skipWhitespace()
	v, err := parse.Spanned(p.c, func(c *parse.Cursor) (*Value, error) {
		return p.parseValue(1)
	})
	if err != nil {
		return span.Spanned[*Value]{}, err
	}

	if !p.allowTrailing {
		p.skipWhitespace()
		if !p.c.EOF() {
			return span.Spanned[*Value]{}, &parse.Error{
				Kind:   parse.TrailingData,
				Offset: p.c.Offset(),
			}
		}
	}
	return v, nil
}

func (p *parser) skipWhitespace() {
	p.c.TakeWhile(func(b byte) bool {
		return b == ' ' || b == '\t' || b == '\n' || b == '\r'
	})
}

func (p *parser) parseValue(depth int) (*Value, error) {
	if depth > p.maxDepth {
		return nil, &parse.Error{
			Kind:   parse.UnexpectedToken,
			Offset: p.c.Offset(),
			Msg:    fmt.Sprintf("nesting deeper than %d", p.maxDepth),
		}
	}

	b, ok := p.c.PeekByte()
	if !ok {
		return nil, &parse.Error{Kind: parse.UnexpectedEOF, Offset: p.c.Offset(), Expected: "value"}
	}

	switch {
	case b == 'n':
		if _, err := p.c.ExpectLiteral([]byte("null")); err != nil {
			return nil, err
		}
		return &Value{Kind: KindNull}, nil

	case b == 't':
		if _, err := p.c.ExpectLiteral([]byte("true")); err != nil {
			return nil, err
		}
		return &Value{Kind: KindBool, Bool: true}, nil

	case b == 'f':
		if _, err := p.c.ExpectLiteral([]byte("false")); err != nil {
			return nil, err
		}
		return &Value{Kind: KindBool, Bool: false}, nil

	case b == '"':
		s, err := p.matchString(p.c)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindString, String: s}, nil

	case b == '-' || b >= '0' && b <= '9':
		n, err := p.matchNumber(p.c)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindNumber, Number: n}, nil

	case b == '[':
		return p.parseArray(depth)

	case b == '{':
		return p.parseObject(depth)

	default:
		return nil, &parse.Error{
			Kind:     parse.UnexpectedToken,
			Offset:   p.c.Offset(),
			Expected: "value",
			Found:    fmt.Sprintf("%q", b),
		}
	}
}

func (p *parser) parseArray(depth int) (*Value, error) {
	p.c.Take(1) // consume '['
	v := &Value{Kind: KindArray}

	p.skipWhitespace()
	if b, ok := p.c.PeekByte(); ok && b == ']' {
		p.c.Take(1)
		return v, nil
	}

	for {
		p.skipWhitespace()
		elem, err := parse.Spanned(p.c, func(c *parse.Cursor) (*Value, error) {
			return p.parseValue(depth + 1)
		})
		if err != nil {
			return nil, err
		}
		v.Elems = append(v.Elems, elem)

		p.skipWhitespace()
		b, ok := p.c.PeekByte()
		if !ok {
			return nil, &parse.Error{Kind: parse.UnexpectedEOF, Offset: p.c.Offset(), Expected: "',' or ']'"}
		}
		switch b {
		case ',':
			p.c.Take(1)
		case ']':
			p.c.Take(1)
			return v, nil
		default:
			return nil, &parse.Error{
				Kind:     parse.UnexpectedToken,
				Offset:   p.c.Offset(),
				Expected: "',' or ']'",
				Found:    fmt.Sprintf("%q", b),
			}
		}
	}
}

func (p *parser) parseObject(depth int) (*Value, error) {
	p.c.Take(1) // consume '{'
	v := &Value{Kind: KindObject}

	p.skipWhitespace()
	if b, ok := p.c.PeekByte(); ok && b == '}' {
		p.c.Take(1)
		return v, nil
	}

	for {
		p.skipWhitespace()
		if b, ok := p.c.PeekByte(); !ok {
			return nil, &parse.Error{Kind: parse.UnexpectedEOF, Offset: p.c.Offset(), Expected: "object key"}
		} else if b != '"' {
			return nil, &parse.Error{
				Kind:     parse.UnexpectedToken,
				Offset:   p.c.Offset(),
				Expected: "object key",
				Found:    fmt.Sprintf("%q", b),
			}
		}
		key, err := parse.Spanned(p.c, p.matchString)
		if err != nil {
			return nil, err
		}

		p.skipWhitespace()
		if _, err := p.c.ExpectLiteral([]byte(":")); err != nil {
			return nil, err
		}
		p.skipWhitespace()

		val, err := parse.Spanned(p.c, func(c *parse.Cursor) (*Value, error) {
			return p.parseValue(depth + 1)
		})
		if err != nil {
			return nil, err
		}
		v.Members = append(v.Members, Member{Key: key, Value: val})

		p.skipWhitespace()
		b, ok := p.c.PeekByte()
		if !ok {
			return nil, &parse.Error{Kind: parse.UnexpectedEOF, Offset: p.c.Offset(), Expected: "',' or '}'"}
		}
		switch b {
		case ',':
			p.c.Take(1)
		case '}':
			p.c.Take(1)
			return v, nil
		default:
			return nil, &parse.Error{
				Kind:     parse.UnexpectedToken,
				Offset:   p.c.Offset(),
				Expected: "',' or '}'",
				Found:    fmt.Sprintf("%q", b),
			}
		}
	}
}

// matchString consumes a quoted string and returns the decoded text. The
// consumed range, and therefore the span recorded by callers, covers the
// raw text including both quotes.
func (p *parser) matchString(c *parse.Cursor) (string, error) {
	if _, err := c.ExpectLiteral([]byte(`"`)); err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		b, ok := c.PeekByte()
		if !ok {
			return "", &parse.Error{Kind: parse.UnexpectedEOF, Offset: c.Offset(), Expected: "'\"'"}
		}
		switch {
		case b == '"':
			c.Take(1)
			return sb.String(), nil
		case b == '\\':
			c.Take(1)
			if err := p.matchEscape(c, &sb); err != nil {
				return "", err
			}
		case b < 0x20:
			return "", &parse.Error{
				Kind:     parse.UnexpectedToken,
				Offset:   c.Offset(),
				Expected: "escaped control character",
				Found:    fmt.Sprintf("%q", b),
			}
		default:
			c.Take(1)
			sb.WriteByte(b)
		}
	}
}

// matchEscape decodes one escape sequence, positioned just after the
// backslash.
func (p *parser) matchEscape(c *parse.Cursor, sb *strings.Builder) error {
	b, ok := c.PeekByte()
	if !ok {
		return &parse.Error{Kind: parse.UnexpectedEOF, Offset: c.Offset(), Expected: "escape sequence"}
	}
	switch b {
	case '"', '\\', '/':
		c.Take(1)
		sb.WriteByte(b)
	case 'b':
		c.Take(1)
		sb.WriteByte('\b')
	case 'f':
		c.Take(1)
		sb.WriteByte('\f')
	case 'n':
		c.Take(1)
		sb.WriteByte('\n')
	case 'r':
		c.Take(1)
		sb.WriteByte('\r')
	case 't':
		c.Take(1)
		sb.WriteByte('\t')
	case 'u':
		c.Take(1)
		return p.matchUnicodeEscape(c, sb)
	default:
		return &parse.Error{
			Kind:     parse.UnexpectedToken,
			Offset:   c.Offset(),
			Expected: `one of "\/bfnrtu`,
			Found:    fmt.Sprintf("%q", b),
		}
	}
	return nil
}

// matchUnicodeEscape decodes the hex digits of a \uXXXX escape, pairing
// surrogates into a single rune. Positioned just after the 'u'.
func (p *parser) matchUnicodeEscape(c *parse.Cursor, sb *strings.Builder) error {
	r, err := matchHex4(c)
	if err != nil {
		return err
	}

	if r >= 0xDC00 && r <= 0xDFFF {
		return &parse.Error{
			Kind:   parse.UnexpectedToken,
			Offset: c.Offset(),
			Msg:    "lone trailing surrogate",
		}
	}
	if r >= 0xD800 && r <= 0xDBFF {
		at := c.Offset()
		if _, err := c.ExpectLiteral([]byte(`\u`)); err != nil {
			return &parse.Error{
				Kind:   parse.UnexpectedToken,
				Offset: at,
				Msg:    "lone leading surrogate",
			}
		}
		low, err := matchHex4(c)
		if err != nil {
			return err
		}
		if low < 0xDC00 || low > 0xDFFF {
			return &parse.Error{
				Kind:   parse.UnexpectedToken,
				Offset: at,
				Msg:    "expected trailing surrogate",
			}
		}
		r = 0x10000 + (r-0xD800)<<10 + (low - 0xDC00)
	}

	var enc [4]byte
	n := utf8.EncodeRune(enc[:], rune(r))
	sb.Write(enc[:n])
	return nil
}

func matchHex4(c *parse.Cursor) (int, error) {
	digits, _, err := c.Take(4)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.ParseUint(string(digits), 16, 32)
	if perr != nil {
		return 0, &parse.Error{
			Kind:     parse.UnexpectedToken,
			Offset:   c.Offset() - 4,
			Expected: "four hex digits",
			Found:    fmt.Sprintf("%q", digits),
		}
	}
	return int(n), nil
}

// matchNumber consumes a numeral following the standard JSON grammar and
// returns its parsed value. The raw text stays available through the span.
func (p *parser) matchNumber(c *parse.Cursor) (float64, error) {
	start := c.Offset()

	if b, ok := c.PeekByte(); ok && b == '-' {
		c.Take(1)
	}

	b, ok := c.PeekByte()
	if !ok {
		return 0, &parse.Error{Kind: parse.UnexpectedEOF, Offset: c.Offset(), Expected: "digit"}
	}
	switch {
	case b == '0':
		// Only one leading zero.
		c.Take(1)
		if b, ok := c.PeekByte(); ok && b >= '0' && b <= '9' {
			return 0, &parse.Error{
				Kind:     parse.UnexpectedToken,
				Offset:   c.Offset(),
				Expected: "'.', 'e', or end of number after leading zero",
				Found:    fmt.Sprintf("%q", b),
			}
		}
	case b >= '1' && b <= '9':
		c.TakeWhile(isDigit)
	default:
		return 0, &parse.Error{
			Kind:     parse.UnexpectedToken,
			Offset:   c.Offset(),
			Expected: "digit",
			Found:    fmt.Sprintf("%q", b),
		}
	}

	if b, ok := c.PeekByte(); ok && b == '.' {
		c.Take(1)
		if err := p.matchDigits(c); err != nil {
			return 0, err
		}
	}

	if b, ok := c.PeekByte(); ok && (b == 'e' || b == 'E') {
		c.Take(1)
		if b, ok := c.PeekByte(); ok && (b == '+' || b == '-') {
			c.Take(1)
		}
		if err := p.matchDigits(c); err != nil {
			return 0, err
		}
	}

	raw := string(p.buf[start:c.Offset()])
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &parse.Error{
			Kind:     parse.UnexpectedToken,
			Offset:   start,
			Expected: "number",
			Found:    fmt.Sprintf("%q", raw),
		}
	}
	return n, nil
}

func (p *parser) matchDigits(c *parse.Cursor) error {
	_, s := c.TakeWhile(isDigit)
	if !s.IsEmpty() {
		return nil
	}
	if c.EOF() {
		return &parse.Error{Kind: parse.UnexpectedEOF, Offset: c.Offset(), Expected: "digit"}
	}
	return &parse.Error{
		Kind:     parse.UnexpectedToken,
		Offset:   c.Offset(),
		Expected: "digit",
		Found:    foundByte(c),
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func foundByte(c *parse.Cursor) string {
	if b, ok := c.PeekByte(); ok {
		return fmt.Sprintf("%q", b)
	}
	return "end of input"
}
