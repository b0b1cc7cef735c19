package httpspan

import (
	"fmt"
	"strconv"

	"github.com/dhamidi/spanparse/parse"
	"github.com/dhamidi/spanparse/span"
)

// chunkedState drives the chunked transfer decoder: size lines and data
// alternate until a zero-size chunk, then the trailer section runs to the
// blank line that ends the body.
type chunkedState int

const (
	stateChunkSize chunkedState = iota
	stateChunkData
	stateTrailer
	stateDone
)

// parseChunked decodes a chunked body starting at the cursor. Each chunk's
// wrapper span covers its size line, data and trailing CRLF; the zero-size
// terminal chunk is recorded like any other. The trailer span covers
// everything after the terminal chunk's size line up to and including the
// final blank line.
func parseChunked(c *parse.Cursor) (Body, error) {
	start := c.Offset()
	var chunks []span.Spanned[Chunk]
	var trailer span.Span

	var chunkStart, size int
	var ext span.Span

	state := stateChunkSize
	for state != stateDone {
		switch state {
		case stateChunkSize:
			chunkStart = c.Offset()
			var err error
			size, ext, err = matchChunkSizeLine(c)
			if err != nil {
				return Body{}, err
			}
			if size == 0 {
				chunks = append(chunks, span.NewSpanned(
					Chunk{Size: 0, Ext: ext, Data: emptySpanAt(c.Offset())},
					span.Span{Start: chunkStart, End: c.Offset()},
				))
				state = stateTrailer
			} else {
				state = stateChunkData
			}

		case stateChunkData:
			_, data, err := c.Take(size)
			if err != nil {
				return Body{}, err
			}
			if _, err := matchLineEnd(c); err != nil {
				return Body{}, err
			}
			chunks = append(chunks, span.NewSpanned(
				Chunk{Size: size, Ext: ext, Data: data},
				span.Span{Start: chunkStart, End: c.Offset()},
			))
			state = stateChunkSize

		case stateTrailer:
			var err error
			trailer, err = matchTrailer(c)
			if err != nil {
				return Body{}, err
			}
			state = stateDone
		}
	}

	return Body{
		Kind:    BodyChunked,
		Data:    span.Span{Start: start, End: c.Offset()},
		Chunks:  chunks,
		Trailer: trailer,
	}, nil
}

// matchChunkSizeLine reads `hex-size [; extensions] CRLF` and returns the
// size and the span of the extensions (empty when absent). Extensions are
// recorded but not interpreted.
func matchChunkSizeLine(c *parse.Cursor) (int, span.Span, error) {
	digits, s := c.TakeWhile(isHexDigit)
	if s.IsEmpty() {
		if c.EOF() {
			return 0, span.Span{}, &parse.Error{
				Kind:     parse.UnexpectedEOF,
				Offset:   c.Offset(),
				Expected: "chunk size",
			}
		}
		return 0, span.Span{}, &parse.Error{
			Kind:   parse.InvalidChunkSize,
			Offset: c.Offset(),
			Found:  foundByte(c),
		}
	}
	size, err := strconv.ParseUint(string(digits), 16, 31)
	if err != nil {
		return 0, span.Span{}, &parse.Error{
			Kind:   parse.InvalidChunkSize,
			Offset: s.Start,
			Found:  fmt.Sprintf("%q", digits),
			Msg:    "chunk size out of range",
		}
	}

	ext := emptySpanAt(c.Offset())
	if b, ok := c.PeekByte(); ok && b == ';' {
		_, ext = c.TakeWhile(func(b byte) bool { return b != '\r' && b != '\n' })
	}

	if _, err := matchLineEnd(c); err != nil {
		if parse.IsKind(err, parse.UnexpectedEOF) {
			return 0, span.Span{}, err
		}
		return 0, span.Span{}, &parse.Error{
			Kind:   parse.InvalidChunkSize,
			Offset: parse.ErrorOffset(err),
			Found:  foundByte(c),
		}
	}
	return int(size), ext, nil
}

// matchTrailer consumes trailer lines until the blank line ending the body.
// Trailer fields are kept as a raw span, not parsed into headers.
func matchTrailer(c *parse.Cursor) (span.Span, error) {
	start := c.Offset()
	for {
		if _, ok := parse.Optional(c, matchLineEnd); ok {
			return span.Span{Start: start, End: c.Offset()}, nil
		}
		if c.EOF() {
			return span.Span{}, &parse.Error{
				Kind:     parse.UnexpectedEOF,
				Offset:   c.Offset(),
				Expected: "trailer line or CRLF",
			}
		}
		c.TakeWhile(func(b byte) bool { return b != '\r' && b != '\n' })
		if _, err := matchLineEnd(c); err != nil {
			return span.Span{}, err
		}
	}
}

func isHexDigit(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}
