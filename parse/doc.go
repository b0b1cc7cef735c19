// Package parse implements the cursor and combinator layer the grammar
// packages are built on.
//
// The central contract is all-or-nothing consumption: every primitive
// matcher on [Cursor] either succeeds and advances the offset, or fails and
// leaves it untouched. Combinators ([Sequence], [Optional], [Repeat],
// [Alternation]) rely on this to backtrack with nothing more than an integer
// snapshot of the offset. On success each combinator wraps its result as a
// [span.Spanned] covering exactly the consumed byte range, so the syntax
// tree and the raw byte offsets can never drift apart.
//
// Errors are [Error] values carrying an [ErrorKind] and the byte offset at
// which the failure was detected. When every branch of an alternation fails,
// the branch that reached the furthest offset wins, as its failure is the
// most specific diagnostic available.
package parse
