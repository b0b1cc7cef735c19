package jsonspan

import "github.com/dhamidi/spanparse/span"

// Kind discriminates the JSON value variants.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is a JSON value. Only the fields for its Kind are meaningful. The
// enclosing Spanned covers exactly the value's source text: for strings the
// raw escaped text including quotes, for numbers the raw numeral, for
// arrays and objects everything between and including the brackets.
// Surrounding whitespace is never part of a value span.
type Value struct {
	Kind Kind

	// Bool holds the value for KindBool.
	Bool bool

	// Number holds the parsed value for KindNumber; the raw numeral text
	// is recovered by slicing the span.
	Number float64

	// String holds the decoded text for KindString, with all escape
	// sequences resolved. The raw text is recovered by slicing the span.
	String string

	// Elems holds the elements for KindArray, in order.
	Elems []span.Spanned[*Value]

	// Members holds the members for KindObject, in order. Duplicate keys
	// are preserved; deduplication is a caller concern.
	Members []Member
}

// Member is one key/value pair of an object. The key's value is the decoded
// string while its span covers the raw quoted source text.
type Member struct {
	Key   span.Spanned[string]
	Value span.Spanned[*Value]
}

// Get returns the value of the first member with the given (decoded) key,
// or false if the value is not an object or has no such member.
func (v *Value) Get(key string) (span.Spanned[*Value], bool) {
	for _, m := range v.Members {
		if m.Key.Value == key {
			return m.Value, true
		}
	}
	return span.Spanned[*Value]{}, false
}

// Shift re-bases every span in the tree by delta.
func (v *Value) Shift(delta int) {
	for i := range v.Elems {
		v.Elems[i].Span = v.Elems[i].Span.Shift(delta)
		v.Elems[i].Value.Shift(delta)
	}
	for i := range v.Members {
		v.Members[i].Key.Span = v.Members[i].Key.Span.Shift(delta)
		v.Members[i].Value.Span = v.Members[i].Value.Span.Shift(delta)
		v.Members[i].Value.Value.Shift(delta)
	}
}
