package jsonspan

import "github.com/dhamidi/spanparse/span"

// Visitor holds callbacks invoked by Walk. Nil callbacks are skipped.
type Visitor struct {
	// Value is called for every value in the tree, containers included,
	// in document order before the value's children.
	Value func(v span.Spanned[*Value])

	// Key is called for every object key, before the member's value.
	Key func(k span.Spanned[string])
}

// Walk traverses the value tree in document order.
func Walk(v span.Spanned[*Value], vis Visitor) {
	if vis.Value != nil {
		vis.Value(v)
	}
	switch v.Value.Kind {
	case KindArray:
		for _, elem := range v.Value.Elems {
			Walk(elem, vis)
		}
	case KindObject:
		for _, m := range v.Value.Members {
			if vis.Key != nil {
				vis.Key(m.Key)
			}
			Walk(m.Value, vis)
		}
	}
}
