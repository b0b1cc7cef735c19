// Package httpspan parses HTTP/1.1 messages while recording the byte range
// of every element it recognizes: request/status line parts, each header
// name and value, the body, and each chunk of a chunked body. Spans index
// into the buffer given to ParseRequest or ParseResponse; no bytes are
// copied.
//
// One message is parsed per call. For requests, bytes after the message are
// left alone so pipelined captures can be parsed message by message; the
// returned top-level span tells where the next message starts.
package httpspan

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/dhamidi/spanparse/parse"
	"github.com/dhamidi/spanparse/span"
)

const maxHeaders = 128

type parser struct {
	c           *parse.Cursor
	readToClose bool
}

// Option configures response parsing.
type Option func(*parser)

// WithReadToClose permits read-to-close body framing: a response without
// Content-Length or chunked encoding consumes the remaining buffer as its
// body. Only meaningful when the buffer ends where the connection closed.
func WithReadToClose() Option {
	return func(p *parser) {
		p.readToClose = true
	}
}

// ParseRequest parses one HTTP request from the start of buf. The returned
// span covers exactly the consumed message; trailing bytes are not an error.
func ParseRequest(buf []byte) (span.Spanned[Request], error) {
	p := &parser{c: parse.NewCursor(buf)}
	return parse.Spanned(p.c, p.parseRequest)
}

// ParseResponse parses one HTTP response from the start of buf.
func ParseResponse(buf []byte, opts ...Option) (span.Spanned[Response], error) {
	p := &parser{c: parse.NewCursor(buf)}
	for _, opt := range opts {
		opt(p)
	}
	return parse.Spanned(p.c, p.parseResponse)
}

func (p *parser) parseRequest(c *parse.Cursor) (Request, error) {
	method, err := parse.Spanned(c, matchToken("method"))
	if err != nil {
		return Request{}, err
	}
	if _, err := c.ExpectLiteral([]byte(" ")); err != nil {
		return Request{}, err
	}
	target, err := parse.Spanned(c, matchTarget)
	if err != nil {
		return Request{}, err
	}
	if _, err := c.ExpectLiteral([]byte(" ")); err != nil {
		return Request{}, err
	}
	version, err := parse.Spanned(c, matchVersion)
	if err != nil {
		return Request{}, err
	}
	if _, err := matchLineEnd(c); err != nil {
		return Request{}, err
	}

	headers, err := p.parseHeaderBlock(c)
	if err != nil {
		return Request{}, err
	}

	body, err := parse.Spanned(c, func(c *parse.Cursor) (Body, error) {
		return p.parseBody(c, headers, 0, false)
	})
	if err != nil {
		return Request{}, err
	}

	return Request{
		Method:  method,
		Target:  target,
		Version: version,
		Headers: headers,
		Body:    body,
	}, nil
}

func (p *parser) parseResponse(c *parse.Cursor) (Response, error) {
	version, err := parse.Spanned(c, matchVersion)
	if err != nil {
		return Response{}, err
	}
	if _, err := c.ExpectLiteral([]byte(" ")); err != nil {
		return Response{}, err
	}
	status, err := parse.Spanned(c, matchStatusCode)
	if err != nil {
		return Response{}, err
	}

	// The space before the reason phrase is omitted by some servers when
	// the reason itself is empty.
	reason := span.NewSpanned("", span.Span{Start: c.Offset(), End: c.Offset()})
	if _, ok := parse.Optional(c, matchByte(' ')); ok {
		reason, err = parse.Spanned(c, matchReason)
		if err != nil {
			return Response{}, err
		}
	}
	if _, err := matchLineEnd(c); err != nil {
		return Response{}, err
	}

	headers, err := p.parseHeaderBlock(c)
	if err != nil {
		return Response{}, err
	}

	body, err := parse.Spanned(c, func(c *parse.Cursor) (Body, error) {
		return p.parseBody(c, headers, status.Value, true)
	})
	if err != nil {
		return Response{}, err
	}

	return Response{
		Version: version,
		Status:  status,
		Reason:  reason,
		Headers: headers,
		Body:    body,
	}, nil
}

// parseHeaderBlock parses header lines until the empty line that terminates
// the block, consuming the empty line as well. Each header's wrapper span
// covers the whole line including its terminator.
func (p *parser) parseHeaderBlock(c *parse.Cursor) ([]span.Spanned[Header], error) {
	var headers []span.Spanned[Header]
	for {
		if _, ok := parse.Optional(c, matchLineEnd); ok {
			return headers, nil
		}
		if len(headers) == maxHeaders {
			return nil, &parse.Error{
				Kind:   parse.UnexpectedToken,
				Offset: c.Offset(),
				Msg:    fmt.Sprintf("more than %d headers", maxHeaders),
			}
		}
		h, err := parse.Spanned(c, matchHeader)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
}

func matchHeader(c *parse.Cursor) (Header, error) {
	name, nameSpan := c.TakeWhile(isTokenByte)
	if nameSpan.IsEmpty() {
		if c.EOF() {
			return Header{}, &parse.Error{Kind: parse.UnexpectedEOF, Offset: c.Offset(), Expected: "header name"}
		}
		return Header{}, &parse.Error{
			Kind:   parse.MalformedHeaderName,
			Offset: c.Offset(),
			Found:  foundByte(c),
		}
	}
	if b, ok := c.PeekByte(); !ok {
		return Header{}, &parse.Error{Kind: parse.UnexpectedEOF, Offset: c.Offset(), Expected: "':'"}
	} else if b != ':' {
		// A token byte run that does not end in a colon means the name
		// itself contains an invalid byte.
		return Header{}, &parse.Error{
			Kind:   parse.MalformedHeaderName,
			Offset: c.Offset(),
			Found:  foundByte(c),
		}
	}
	if _, _, err := c.Take(1); err != nil {
		return Header{}, err
	}
	c.TakeWhile(isOWS)

	raw, rawSpan := c.TakeWhile(func(b byte) bool { return b != '\r' && b != '\n' })
	value := strings.TrimRight(string(raw), " \t")
	valueSpan := span.Span{Start: rawSpan.Start, End: rawSpan.Start + len(value)}
	if !httpguts.ValidHeaderFieldValue(value) {
		return Header{}, &parse.Error{
			Kind:     parse.UnexpectedToken,
			Offset:   valueSpan.Start,
			Expected: "valid header field value",
		}
	}
	if _, err := matchLineEnd(c); err != nil {
		return Header{}, err
	}

	return Header{
		Name:  span.NewSpanned(string(name), nameSpan),
		Value: span.NewSpanned(value, valueSpan),
	}, nil
}

// parseBody applies the framing policy. Content-Length and chunked encoding
// together are an error, never a silent preference. Responses with 1xx, 204
// or 304 status never carry a body regardless of headers (RFC 9112, section
// 6.3).
func (p *parser) parseBody(c *parse.Cursor, headers []span.Spanned[Header], status int, isResponse bool) (Body, error) {
	if isResponse && ((status >= 100 && status <= 199) || status == 204 || status == 304) {
		return Body{Kind: BodyEmpty, Data: emptySpanAt(c.Offset())}, nil
	}

	cl, clAt := findHeader(headers, "Content-Length")
	te, teAt := findHeader(headers, "Transfer-Encoding")

	chunked := false
	if te != nil {
		if !strings.EqualFold(strings.TrimSpace(te.Value.Value), "chunked") {
			return Body{}, &parse.Error{
				Kind:     parse.UnexpectedToken,
				Offset:   te.Value.Span.Start,
				Expected: "chunked",
				Found:    fmt.Sprintf("%q", te.Value.Value),
			}
		}
		chunked = true
	}

	if cl != nil && chunked {
		return Body{}, &parse.Error{
			Kind:   parse.AmbiguousFraming,
			Offset: max(clAt, teAt),
			Msg:    "both Content-Length and Transfer-Encoding: chunked",
		}
	}

	switch {
	case cl != nil:
		n, err := parseContentLength(cl)
		if err != nil {
			return Body{}, err
		}
		_, data, err := c.Take(n)
		if err != nil {
			return Body{}, err
		}
		return Body{Kind: BodyContentLength, Data: data}, nil

	case chunked:
		return parseChunked(c)

	case isResponse && p.readToClose:
		data := span.Span{Start: c.Offset(), End: c.Offset() + c.Remaining()}
		c.Restore(data.End)
		return Body{Kind: BodyToEnd, Data: data}, nil

	case isResponse && !c.EOF():
		return Body{}, &parse.Error{
			Kind:   parse.TrailingData,
			Offset: c.Offset(),
			Msg:    "response body requires Content-Length, chunked encoding, or read-to-close framing",
		}

	default:
		return Body{Kind: BodyEmpty, Data: emptySpanAt(c.Offset())}, nil
	}
}

// findHeader returns the first header with the given name along with the
// start offset of the header line, or (nil, -1).
func findHeader(headers []span.Spanned[Header], name string) (*Header, int) {
	for i := range headers {
		if strings.EqualFold(headers[i].Value.Name.Value, name) {
			return &headers[i].Value, headers[i].Span.Start
		}
	}
	return nil, -1
}

func parseContentLength(h *Header) (int, error) {
	n, err := strconv.Atoi(h.Value.Value)
	if err != nil || n < 0 {
		return 0, &parse.Error{
			Kind:     parse.UnexpectedToken,
			Offset:   h.Value.Span.Start,
			Expected: "decimal Content-Length",
			Found:    fmt.Sprintf("%q", h.Value.Value),
		}
	}
	return n, nil
}

func matchToken(what string) parse.Match[string] {
	return func(c *parse.Cursor) (string, error) {
		tok, s := c.TakeWhile(isTokenByte)
		if s.IsEmpty() {
			if c.EOF() {
				return "", &parse.Error{Kind: parse.UnexpectedEOF, Offset: c.Offset(), Expected: what}
			}
			return "", &parse.Error{
				Kind:     parse.UnexpectedToken,
				Offset:   c.Offset(),
				Expected: what,
				Found:    foundByte(c),
			}
		}
		return string(tok), nil
	}
}

func matchTarget(c *parse.Cursor) (string, error) {
	target, s := c.TakeWhile(func(b byte) bool {
		return b != ' ' && b != '\r' && b != '\n'
	})
	if s.IsEmpty() {
		if c.EOF() {
			return "", &parse.Error{Kind: parse.UnexpectedEOF, Offset: c.Offset(), Expected: "request target"}
		}
		return "", &parse.Error{
			Kind:     parse.UnexpectedToken,
			Offset:   c.Offset(),
			Expected: "request target",
			Found:    foundByte(c),
		}
	}
	return string(target), nil
}

func matchVersion(c *parse.Cursor) (Version, error) {
	if _, err := c.ExpectLiteral([]byte("HTTP/")); err != nil {
		return Version{}, err
	}
	major, err := matchDigit(c)
	if err != nil {
		return Version{}, err
	}
	if _, err := c.ExpectLiteral([]byte(".")); err != nil {
		return Version{}, err
	}
	minor, err := matchDigit(c)
	if err != nil {
		return Version{}, err
	}
	return Version{Major: major, Minor: minor}, nil
}

func matchStatusCode(c *parse.Cursor) (int, error) {
	code := 0
	for i := 0; i < 3; i++ {
		d, err := matchDigit(c)
		if err != nil {
			return 0, err
		}
		code = code*10 + d
	}
	return code, nil
}

func matchReason(c *parse.Cursor) (string, error) {
	reason, _ := c.TakeWhile(func(b byte) bool { return b != '\r' && b != '\n' })
	return string(reason), nil
}

func matchDigit(c *parse.Cursor) (int, error) {
	b, ok := c.PeekByte()
	if !ok {
		return 0, &parse.Error{Kind: parse.UnexpectedEOF, Offset: c.Offset(), Expected: "digit"}
	}
	if b < '0' || b > '9' {
		return 0, &parse.Error{
			Kind:     parse.UnexpectedToken,
			Offset:   c.Offset(),
			Expected: "digit",
			Found:    foundByte(c),
		}
	}
	c.Take(1)
	return int(b - '0'), nil
}

func matchByte(want byte) parse.Match[struct{}] {
	return func(c *parse.Cursor) (struct{}, error) {
		_, err := c.ExpectLiteral([]byte{want})
		return struct{}{}, err
	}
}

// matchLineEnd accepts CRLF or, leniently, a bare LF as seen in hand-written
// captures.
func matchLineEnd(c *parse.Cursor) (struct{}, error) {
	_, err := parse.Alternation(c,
		func(c *parse.Cursor) (struct{}, error) {
			_, err := c.ExpectLiteral([]byte("\r\n"))
			return struct{}{}, err
		},
		func(c *parse.Cursor) (struct{}, error) {
			_, err := c.ExpectLiteral([]byte("\n"))
			return struct{}{}, err
		},
	)
	return struct{}{}, err
}

func isTokenByte(b byte) bool {
	return httpguts.IsTokenRune(rune(b))
}

func isOWS(b byte) bool {
	return b == ' ' || b == '\t'
}

func emptySpanAt(off int) span.Span {
	return span.Span{Start: off, End: off}
}

func foundByte(c *parse.Cursor) string {
	if b, ok := c.PeekByte(); ok {
		return fmt.Sprintf("%q", b)
	}
	return "end of input"
}
