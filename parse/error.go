package parse

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	// UnexpectedEOF means the input ended before the grammar was satisfied.
	// Callers driving a streaming source can buffer more bytes and retry.
	UnexpectedEOF ErrorKind = iota

	// UnexpectedToken means the bytes at the failure offset do not match
	// what the grammar expects there.
	UnexpectedToken

	// DelimiterNotFound means TakeUntil scanned to the end of the buffer
	// without finding its delimiter.
	DelimiterNotFound

	// TooFewRepetitions means Repeat stopped before reaching its minimum.
	TooFewRepetitions

	// MalformedHeaderName means an HTTP header name contains a byte outside
	// the RFC 9110 token charset.
	MalformedHeaderName

	// AmbiguousFraming means an HTTP message carries both Content-Length
	// and Transfer-Encoding: chunked.
	AmbiguousFraming

	// InvalidChunkSize means a chunk-size line is not a valid hex number.
	InvalidChunkSize

	// TrailingData means input remains after a complete top-level value.
	TrailingData
)

var errorKindNames = map[ErrorKind]string{
	UnexpectedEOF:       "unexpected end of input",
	UnexpectedToken:     "unexpected token",
	DelimiterNotFound:   "delimiter not found",
	TooFewRepetitions:   "too few repetitions",
	MalformedHeaderName: "malformed header name",
	AmbiguousFraming:    "ambiguous body framing",
	InvalidChunkSize:    "invalid chunk size",
	TrailingData:        "trailing data",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a parse failure located at a byte offset. Offsets are always
// relative to the buffer handed to the parser; there is no line/column
// tracking because the engine is byte-oriented.
type Error struct {
	Kind     ErrorKind
	Offset   int
	Expected string
	Found    string
	Msg      string
}

func (e *Error) Error() string {
	s := fmt.Sprintf("offset %d: %s", e.Offset, e.Kind)
	if e.Expected != "" {
		s += fmt.Sprintf(": expected %s", e.Expected)
	}
	if e.Found != "" {
		s += fmt.Sprintf(", found %s", e.Found)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// Is matches two parse errors by kind, so callers can test against
// &parse.Error{Kind: ...} with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// IsKind reports whether err is a parse error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}

// ErrorOffset returns the byte offset carried by a parse error, or -1 if err
// is not a parse error.
func ErrorOffset(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Offset
	}
	return -1
}
