// Package span provides byte-range bookkeeping for parsers that need to
// remember where in the input each parsed element came from.
//
// A Span is a half-open range [Start, End) over an input buffer. Spans carry
// no reference to the buffer itself: they are plain value types, and callers
// recover bytes by combining a span with the original buffer via Slice. This
// keeps spans copyable and trivially shareable as long as the buffer outlives
// them.
package span

import "errors"

var (
	// ErrInvalidRange is returned by New when start > end or start < 0.
	ErrInvalidRange = errors.New("span: invalid range")

	// ErrNonContiguous is returned by Union when the two spans neither
	// overlap nor touch.
	ErrNonContiguous = errors.New("span: ranges are not contiguous")
)

// Span is a half-open byte range [Start, End) within some buffer.
type Span struct {
	Start int
	End   int
}

// New returns the span [start, end). It fails with ErrInvalidRange if the
// range is inverted or starts before the buffer.
func New(start, end int) (Span, error) {
	if start < 0 || start > end {
		return Span{}, ErrInvalidRange
	}
	return Span{Start: start, End: end}, nil
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Contains reports whether other is a subset of s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Disjoint reports whether the two ranges share no bytes. An empty span
// covers no bytes and is therefore disjoint from everything.
func (s Span) Disjoint(other Span) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return true
	}
	return s.End <= other.Start || other.End <= s.Start
}

// Union returns the smallest span covering both s and other. The spans must
// overlap or be adjacent; otherwise Union fails with ErrNonContiguous.
func (s Span) Union(other Span) (Span, error) {
	if s.Start > other.End || other.Start > s.End {
		return Span{}, ErrNonContiguous
	}
	return Span{Start: min(s.Start, other.Start), End: max(s.End, other.End)}, nil
}

// Shift returns the span moved right by delta. This is useful when a message
// was parsed out of a sub-slice of a larger capture and its spans need to be
// re-based to absolute offsets.
func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// Slice returns the bytes of buf that s covers.
func Slice(buf []byte, s Span) []byte {
	return buf[s.Start:s.End]
}

// Spanned pairs a parsed value with the span of bytes it was parsed from.
// The span covers exactly the bytes consumed to produce the value.
type Spanned[T any] struct {
	Value T
	Span  Span
}

// NewSpanned wraps v with its span.
func NewSpanned[T any](v T, s Span) Spanned[T] {
	return Spanned[T]{Value: v, Span: s}
}

// Bytes returns the raw bytes of buf the value was parsed from.
func (s Spanned[T]) Bytes(buf []byte) []byte {
	return Slice(buf, s.Span)
}

// Map transforms the value of a spanned wrapper, keeping the span unchanged.
func Map[T, U any](s Spanned[T], f func(T) U) Spanned[U] {
	return Spanned[U]{Value: f(s.Value), Span: s.Span}
}
