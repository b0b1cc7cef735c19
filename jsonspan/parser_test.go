package jsonspan

import (
	"strings"
	"testing"

	"github.com/dhamidi/spanparse/parse"
)

func TestParseScalars(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"null", KindNull},
		{"true", KindBool},
		{"false", KindBool},
		{"0", KindNumber},
		{"-16", KindNumber},
		{"3.14", KindNumber},
		{"1e9", KindNumber},
		{"-2.5E-3", KindNumber},
		{`""`, KindString},
		{`"hello"`, KindString},
		{"[]", KindArray},
		{"{}", KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if v.Value.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", v.Value.Kind, tt.kind)
			}
			if got := string(v.Bytes([]byte(tt.input))); got != tt.input {
				t.Errorf("span = %q, want the whole input", got)
			}
		})
	}
}

func TestParseNumberValues(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"0", 0},
		{"42", 42},
		{"-16", -16},
		{"3.14", 3.14},
		{"1e3", 1000},
		{"2.5e-1", 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if v.Value.Number != tt.want {
				t.Errorf("number = %v, want %v", v.Value.Number, tt.want)
			}
		})
	}
}

func TestParseStringEscapes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		decoded string
	}{
		{"plain", `"abc"`, "abc"},
		{"quote", `"a\"b"`, `a"b`},
		{"backslash", `"a\\b"`, `a\b`},
		{"slash", `"a\/b"`, "a/b"},
		{"newline", `"a\n"`, "a\n"},
		{"controls", `"\b\f\n\r\t"`, "\b\f\n\r\t"},
		{"unicode", `"é"`, "é"},
		{"surrogate pair", `"😀"`, "😀"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := []byte(tt.input)
			v, err := Parse(buf)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if v.Value.String != tt.decoded {
				t.Errorf("decoded = %q, want %q", v.Value.String, tt.decoded)
			}
			// The span covers the raw escaped text, quotes included.
			if got := string(v.Bytes(buf)); got != tt.input {
				t.Errorf("raw span = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestParseValueSpansExcludeWhitespace(t *testing.T) {
	input := `  { "foo" : [ null , 42 ] }  `
	buf := []byte(input)
	v, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// The object span runs from '{' to '}' inclusive.
	if got := string(v.Bytes(buf)); got != `{ "foo" : [ null , 42 ] }` {
		t.Errorf("object span = %q", got)
	}

	m := v.Value.Members[0]
	if got := string(m.Key.Bytes(buf)); got != `"foo"` {
		t.Errorf("key span = %q", got)
	}
	if got := string(m.Value.Bytes(buf)); got != `[ null , 42 ]` {
		t.Errorf("array span = %q", got)
	}

	elems := m.Value.Value.Elems
	if got := string(elems[0].Bytes(buf)); got != "null" {
		t.Errorf("null span = %q", got)
	}
	if got := string(elems[1].Bytes(buf)); got != "42" {
		t.Errorf("number span = %q", got)
	}
	if elems[1].Value.Number != 42 {
		t.Errorf("number = %v", elems[1].Value.Number)
	}
}

// Re-serializing by slicing raw spans reconstructs the document byte for
// byte; nothing is re-encoded.
func TestRawSpanRoundTrip(t *testing.T) {
	docs := []string{
		`{"name":"span\tparse","tags":["a","b"],"count":3,"extra":null}`,
		`[1, [2, [3, {"deep": true}]], "end"]`,
		`{ "dup": 1, "dup": 2 }`,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			buf := []byte(doc)
			v, err := Parse(buf)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := string(v.Bytes(buf)); got != doc {
				t.Errorf("top span = %q, want %q", got, doc)
			}
		})
	}
}

func TestDuplicateKeysPreserved(t *testing.T) {
	v, err := Parse([]byte(`{"a": 1, "a": 2}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(v.Value.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(v.Value.Members))
	}
	if v.Value.Members[0].Key.Value != "a" || v.Value.Members[1].Key.Value != "a" {
		t.Errorf("keys = %q, %q", v.Value.Members[0].Key.Value, v.Value.Members[1].Key.Value)
	}

	// Get returns the first one; dedup policy is the caller's.
	got, ok := v.Value.Get("a")
	if !ok || got.Value.Number != 1 {
		t.Errorf("Get returned %+v", got)
	}
}

func TestTrailingData(t *testing.T) {
	_, err := Parse([]byte(`{"a": 1} extra`))
	if !parse.IsKind(err, parse.TrailingData) {
		t.Fatalf("err = %v, want TrailingData", err)
	}
	if off := parse.ErrorOffset(err); off != 9 {
		t.Errorf("offset = %d, want 9", off)
	}

	v, err := Parse([]byte(`{"a": 1} extra`), WithTrailingData())
	if err != nil {
		t.Fatalf("Parse with trailing allowed: %v", err)
	}
	if v.Span.End != 8 {
		t.Errorf("span end = %d, want 8", v.Span.End)
	}
}

func TestMaxDepth(t *testing.T) {
	deep := strings.Repeat("[", 200) + strings.Repeat("]", 200)
	_, err := Parse([]byte(deep))
	if !parse.IsKind(err, parse.UnexpectedToken) {
		t.Fatalf("err = %v, want UnexpectedToken", err)
	}

	if _, err := Parse([]byte("[[[1]]]"), WithMaxDepth(4)); err != nil {
		t.Errorf("depth 4 should allow [[[1]]]: %v", err)
	}
	if _, err := Parse([]byte("[[[[1]]]]"), WithMaxDepth(4)); err == nil {
		t.Errorf("depth 4 should reject [[[[1]]]]")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  parse.ErrorKind
	}{
		{"empty", "", parse.UnexpectedEOF},
		{"only whitespace", "   ", parse.UnexpectedEOF},
		{"garbage", "?", parse.UnexpectedToken},
		{"bad literal", "nul", parse.UnexpectedEOF},
		{"wrong literal", "nulL", parse.UnexpectedToken},
		{"missing comma", "[1 2]", parse.UnexpectedToken},
		{"trailing comma", "[1,]", parse.UnexpectedToken},
		{"unclosed array", "[1, 2", parse.UnexpectedEOF},
		{"unclosed object", `{"a": 1`, parse.UnexpectedEOF},
		{"unclosed string", `"abc`, parse.UnexpectedEOF},
		{"missing colon", `{"a" 1}`, parse.UnexpectedToken},
		{"non-string key", "{1: 2}", parse.UnexpectedToken},
		{"leading zero", "01", parse.UnexpectedToken},
		{"bare minus", "-", parse.UnexpectedEOF},
		{"dot without digits", "1.", parse.UnexpectedEOF},
		{"bad exponent", "1e+", parse.UnexpectedEOF},
		{"bad escape", `"\q"`, parse.UnexpectedToken},
		{"bad unicode escape", `"\uZZZZ"`, parse.UnexpectedToken},
		{"lone surrogate", `"\ud83d"`, parse.UnexpectedToken},
		{"raw control char", "\"a\x01b\"", parse.UnexpectedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !parse.IsKind(err, tt.kind) {
				t.Errorf("Parse(%q) = %v, want kind %v", tt.input, err, tt.kind)
			}
		})
	}
}

func TestShift(t *testing.T) {
	doc := `{"a": [1, 2]}`
	preamble := "HTTP body follows: "
	capture := []byte(preamble + doc)

	v, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v.Span = v.Span.Shift(len(preamble))
	v.Value.Shift(len(preamble))

	if got := string(v.Bytes(capture)); got != doc {
		t.Errorf("shifted top span = %q", got)
	}
	inner, ok := v.Value.Get("a")
	if !ok {
		t.Fatal("member a missing")
	}
	if got := string(inner.Bytes(capture)); got != "[1, 2]" {
		t.Errorf("shifted array span = %q", got)
	}
	if got := string(inner.Value.Elems[1].Bytes(capture)); got != "2" {
		t.Errorf("shifted element span = %q", got)
	}
}
