package jsonspan

import (
	"testing"

	"github.com/dhamidi/spanparse/span"
)

func TestWalkDocumentOrder(t *testing.T) {
	buf := []byte(`{"foo": [null, 42, {"test": "ok"}], "bar": true}`)
	v, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var visited []string
	Walk(v, Visitor{
		Value: func(v span.Spanned[*Value]) {
			visited = append(visited, v.Value.Kind.String())
		},
		Key: func(k span.Spanned[string]) {
			visited = append(visited, "key:"+k.Value)
		},
	})

	want := []string{
		"object",
		"key:foo", "array", "null", "number", "object", "key:test", "string",
		"key:bar", "bool",
	}
	if len(visited) != len(want) {
		t.Fatalf("visited %d nodes, want %d: %v", len(visited), len(want), visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visit %d = %q, want %q", i, visited[i], want[i])
		}
	}
}

// Replacing every number's raw text through its span, the way a redaction
// layer would, leaves the rest of the document untouched.
func TestWalkRewriteThroughSpans(t *testing.T) {
	src := []byte(`{"foo": [42, 69]}`)
	v, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out := append([]byte{}, src...)
	Walk(v, Visitor{
		Value: func(v span.Spanned[*Value]) {
			if v.Value.Kind != KindNumber {
				return
			}
			for i := v.Span.Start; i < v.Span.End; i++ {
				out[i] = '9'
			}
		},
	})

	if got := string(out); got != `{"foo": [99, 99]}` {
		t.Errorf("rewritten = %q", got)
	}
}
