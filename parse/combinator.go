package parse

import (
	"fmt"

	"github.com/dhamidi/spanparse/span"
)

// Match is a parsing step over a cursor. A match that fails must leave the
// cursor offset where it found it; Spanned enforces this by restoring the
// snapshot whenever the inner match errors, so composite matchers that
// advance through several primitives before failing still uphold the
// contract.
type Match[T any] func(*Cursor) (T, error)

// Spanned runs m and wraps its result with the span of exactly the bytes it
// consumed. On failure the cursor is restored to its pre-match offset and
// the error is returned unchanged.
func Spanned[T any](c *Cursor, m Match[T]) (span.Spanned[T], error) {
	start := c.Snapshot()
	v, err := m(c)
	if err != nil {
		c.Restore(start)
		return span.Spanned[T]{}, err
	}
	return span.NewSpanned(v, span.Span{Start: start, End: c.Offset()}), nil
}

// Sequence runs the given steps in order and returns the span covering
// everything they consumed. If any step fails the cursor is restored to the
// pre-sequence offset and that step's error is returned. Heterogeneous
// results are captured by the step closures themselves.
func Sequence(c *Cursor, steps ...func(*Cursor) error) (span.Span, error) {
	start := c.Snapshot()
	for _, step := range steps {
		if err := step(c); err != nil {
			c.Restore(start)
			return span.Span{}, err
		}
	}
	return span.Span{Start: start, End: c.Offset()}, nil
}

// Optional runs m and reports whether it matched. A failed match consumes
// nothing and is not an error; a missing optional element is an absence, not
// a grammar violation.
func Optional[T any](c *Cursor, m Match[T]) (span.Spanned[T], bool) {
	v, err := Spanned(c, m)
	if err != nil {
		return span.Spanned[T]{}, false
	}
	return v, true
}

// Repeat greedily applies m until it fails or max repetitions are reached.
// A negative max means unbounded. Fewer than min successes fail with
// TooFewRepetitions and the cursor restored to the start. The aggregate span
// runs from the first to the last successful repetition, and is empty at the
// start offset when zero repetitions are allowed and none matched.
//
// A match that succeeds without consuming input ends the loop; repeating it
// would never terminate.
func Repeat[T any](c *Cursor, m Match[T], min, max int) (span.Spanned[[]span.Spanned[T]], error) {
	start := c.Snapshot()
	var items []span.Spanned[T]
	var lastErr error

	for max < 0 || len(items) < max {
		item, err := Spanned(c, m)
		if err != nil {
			lastErr = err
			break
		}
		items = append(items, item)
		if item.Span.IsEmpty() {
			break
		}
	}

	if len(items) < min {
		failed := c.Offset()
		if lastErr != nil {
			if off := ErrorOffset(lastErr); off >= 0 {
				failed = off
			}
		}
		c.Restore(start)
		return span.Spanned[[]span.Spanned[T]]{}, &Error{
			Kind:   TooFewRepetitions,
			Offset: failed,
			Msg:    fmt.Sprintf("matched %d of at least %d", len(items), min),
		}
	}

	agg := span.Span{Start: start, End: c.Offset()}
	return span.NewSpanned(items, agg), nil
}

// Alternation tries each match in order and returns the first success.
// Declaration order is the only ambiguity resolution. If every branch fails,
// the error of the branch that progressed furthest into the input is
// returned, since the deepest failure is usually the most informative; ties
// go to the earlier branch.
func Alternation[T any](c *Cursor, ms ...Match[T]) (span.Spanned[T], error) {
	var best error
	bestOff := -1

	for _, m := range ms {
		v, err := Spanned(c, m)
		if err == nil {
			return v, nil
		}
		if off := ErrorOffset(err); off > bestOff || best == nil {
			best, bestOff = err, off
		}
	}

	if best == nil {
		best = &Error{Kind: UnexpectedToken, Offset: c.Offset(), Msg: "no alternatives given"}
	}
	return span.Spanned[T]{}, best
}
