package parse

import (
	"bytes"
	"fmt"

	"github.com/dhamidi/spanparse/span"
)

// Cursor is a position-tracking read-only view over a byte buffer. The
// primitive matchers advance the offset only on success; a failed match
// leaves the offset exactly where it was, which is what allows combinators
// to backtrack with a plain snapshot/restore of the offset.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the current byte offset into the buffer.
func (c *Cursor) Offset() int {
	return c.off
}

// Remaining returns the number of unconsumed bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// EOF reports whether the cursor has consumed the whole buffer.
func (c *Cursor) EOF() bool {
	return c.off >= len(c.buf)
}

// Rest returns the unconsumed tail of the buffer without advancing.
func (c *Cursor) Rest() []byte {
	return c.buf[c.off:]
}

// Snapshot returns the current offset for a later Restore.
func (c *Cursor) Snapshot() int {
	return c.off
}

// Restore rewinds the cursor to a previously snapshotted offset.
func (c *Cursor) Restore(off int) {
	c.off = off
}

// Peek returns the next n bytes without advancing. It fails with
// UnexpectedEOF if fewer than n bytes remain.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if c.Remaining() < n {
		return nil, c.errEOF(n)
	}
	return c.buf[c.off : c.off+n], nil
}

// PeekByte returns the next byte without advancing, and false at EOF.
func (c *Cursor) PeekByte() (byte, bool) {
	if c.EOF() {
		return 0, false
	}
	return c.buf[c.off], true
}

// Take consumes exactly n bytes and returns them with their span. It fails
// with UnexpectedEOF, leaving the offset unchanged, if fewer bytes remain.
func (c *Cursor) Take(n int) ([]byte, span.Span, error) {
	if c.Remaining() < n {
		return nil, span.Span{}, c.errEOF(n)
	}
	s := span.Span{Start: c.off, End: c.off + n}
	c.off += n
	return span.Slice(c.buf, s), s, nil
}

// ExpectLiteral consumes the exact byte sequence lit. On mismatch it fails
// with UnexpectedToken at the offset of the first differing byte, consuming
// nothing.
func (c *Cursor) ExpectLiteral(lit []byte) (span.Span, error) {
	for i, want := range lit {
		if c.off+i >= len(c.buf) {
			return span.Span{}, &Error{
				Kind:     UnexpectedEOF,
				Offset:   len(c.buf),
				Expected: fmt.Sprintf("%q", lit),
			}
		}
		if c.buf[c.off+i] != want {
			return span.Span{}, &Error{
				Kind:     UnexpectedToken,
				Offset:   c.off + i,
				Expected: fmt.Sprintf("%q", lit),
				Found:    fmt.Sprintf("%q", c.buf[c.off+i]),
			}
		}
	}
	s := span.Span{Start: c.off, End: c.off + len(lit)}
	c.off = s.End
	return s, nil
}

// TakeUntil consumes bytes up to, but not including, the first occurrence of
// delim. It fails with DelimiterNotFound, consuming nothing, if delim does
// not occur in the remaining input.
func (c *Cursor) TakeUntil(delim []byte) ([]byte, span.Span, error) {
	i := bytes.Index(c.Rest(), delim)
	if i < 0 {
		return nil, span.Span{}, &Error{
			Kind:     DelimiterNotFound,
			Offset:   c.off,
			Expected: fmt.Sprintf("%q", delim),
		}
	}
	s := span.Span{Start: c.off, End: c.off + i}
	c.off = s.End
	return span.Slice(c.buf, s), s, nil
}

// TakeWhile consumes bytes as long as pred holds. It never fails; a
// zero-length match returns an empty span at the current offset. Whether an
// empty match is acceptable is the caller's decision.
func (c *Cursor) TakeWhile(pred func(byte) bool) ([]byte, span.Span) {
	start := c.off
	for c.off < len(c.buf) && pred(c.buf[c.off]) {
		c.off++
	}
	s := span.Span{Start: start, End: c.off}
	return span.Slice(c.buf, s), s
}

func (c *Cursor) errEOF(need int) *Error {
	return &Error{
		Kind:   UnexpectedEOF,
		Offset: c.off,
		Msg:    fmt.Sprintf("need %d bytes, have %d", need, c.Remaining()),
	}
}
