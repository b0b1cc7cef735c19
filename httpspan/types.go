package httpspan

import (
	"strings"

	"github.com/dhamidi/spanparse/span"
)

// Version is an HTTP version as parsed from the request or status line.
type Version struct {
	Major int
	Minor int
}

// Header is a single header field. Name and value are spanned independently;
// the name span preserves the original casing even though names compare
// case-insensitively.
type Header struct {
	Name  span.Spanned[string]
	Value span.Spanned[string]
}

func (h *Header) shift(delta int) {
	h.Name.Span = h.Name.Span.Shift(delta)
	h.Value.Span = h.Value.Span.Shift(delta)
}

// BodyKind tells how the message body was framed.
type BodyKind int

const (
	// BodyEmpty means the message has no body.
	BodyEmpty BodyKind = iota

	// BodyContentLength means the body length came from a Content-Length
	// header.
	BodyContentLength

	// BodyChunked means the body uses chunked transfer encoding.
	BodyChunked

	// BodyToEnd means the body runs to the end of the buffer. Only valid
	// when the caller asserted read-to-close framing.
	BodyToEnd
)

var bodyKindNames = map[BodyKind]string{
	BodyEmpty:         "empty",
	BodyContentLength: "content-length",
	BodyChunked:       "chunked",
	BodyToEnd:         "to-end",
}

func (k BodyKind) String() string {
	if name, ok := bodyKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Chunk is one chunk of a chunked body. Its enclosing Spanned covers the
// size line, the data, and the trailing CRLF; Data covers just the payload
// bytes and Ext the chunk extensions, if any.
type Chunk struct {
	Size int
	Ext  span.Span
	Data span.Span
}

// Body is a message body together with how it was framed. Data covers the
// raw body region of the buffer; for chunked bodies that includes the size
// lines and trailer, and the payload must be recovered through Decode.
type Body struct {
	Kind    BodyKind
	Data    span.Span
	Chunks  []span.Spanned[Chunk]
	Trailer span.Span
}

// Decode returns the body payload bytes. For content-length and to-end
// framing this is a zero-copy slice of buf; for chunked framing the chunk
// payloads are concatenated into a fresh buffer.
func (b *Body) Decode(buf []byte) []byte {
	if b.Kind != BodyChunked {
		return span.Slice(buf, b.Data)
	}
	var out []byte
	for _, c := range b.Chunks {
		out = append(out, span.Slice(buf, c.Value.Data)...)
	}
	return out
}

func (b *Body) shift(delta int) {
	b.Data = b.Data.Shift(delta)
	b.Trailer = b.Trailer.Shift(delta)
	for i := range b.Chunks {
		b.Chunks[i].Span = b.Chunks[i].Span.Shift(delta)
		b.Chunks[i].Value.Ext = b.Chunks[i].Value.Ext.Shift(delta)
		b.Chunks[i].Value.Data = b.Chunks[i].Value.Data.Shift(delta)
	}
}

// Request is a parsed HTTP request.
type Request struct {
	Method  span.Spanned[string]
	Target  span.Spanned[string]
	Version span.Spanned[Version]
	Headers []span.Spanned[Header]
	Body    span.Spanned[Body]
}

// HeadersNamed returns all headers with the given name, compared
// case-insensitively, in message order.
func (r *Request) HeadersNamed(name string) []Header {
	return headersNamed(r.Headers, name)
}

// Shift re-bases every span in the request by delta, for when the request
// was parsed out of a sub-slice of a larger capture.
func (r *Request) Shift(delta int) {
	r.Method.Span = r.Method.Span.Shift(delta)
	r.Target.Span = r.Target.Span.Shift(delta)
	r.Version.Span = r.Version.Span.Shift(delta)
	for i := range r.Headers {
		r.Headers[i].Span = r.Headers[i].Span.Shift(delta)
		r.Headers[i].Value.shift(delta)
	}
	r.Body.Span = r.Body.Span.Shift(delta)
	r.Body.Value.shift(delta)
}

// Response is a parsed HTTP response.
type Response struct {
	Version span.Spanned[Version]
	Status  span.Spanned[int]
	Reason  span.Spanned[string]
	Headers []span.Spanned[Header]
	Body    span.Spanned[Body]
}

// HeadersNamed returns all headers with the given name, compared
// case-insensitively, in message order.
func (r *Response) HeadersNamed(name string) []Header {
	return headersNamed(r.Headers, name)
}

// Shift re-bases every span in the response by delta.
func (r *Response) Shift(delta int) {
	r.Version.Span = r.Version.Span.Shift(delta)
	r.Status.Span = r.Status.Span.Shift(delta)
	r.Reason.Span = r.Reason.Span.Shift(delta)
	for i := range r.Headers {
		r.Headers[i].Span = r.Headers[i].Span.Shift(delta)
		r.Headers[i].Value.shift(delta)
	}
	r.Body.Span = r.Body.Span.Shift(delta)
	r.Body.Value.shift(delta)
}

func headersNamed(headers []span.Spanned[Header], name string) []Header {
	var out []Header
	for _, h := range headers {
		if strings.EqualFold(h.Value.Name.Value, name) {
			out = append(out, h.Value)
		}
	}
	return out
}
