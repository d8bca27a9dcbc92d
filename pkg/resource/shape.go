package resource

import "fmt"

// Kind discriminates the forms a declared property shape can take.
type Kind string

const (
	// KindOptional wraps another shape; hydration unwraps it.
	KindOptional Kind = "optional"

	// KindObject is a declared record shape with named, typed fields.
	KindObject Kind = "object"

	// KindList is a homogeneous list of the element shape.
	KindList Kind = "list"

	// KindMap is a string-keyed map of the element shape.
	KindMap Kind = "map"
)

// PropertyType is an explicit declared-shape descriptor, attached to
// resources and records at definition time and consumed by output hydration
// as pure data. A nil *PropertyType means "no declared shape"; hydration
// passes such values through with key translation only.
type PropertyType struct {
	// Kind selects which of the remaining fields are meaningful.
	Kind Kind

	// Elem is the element shape for optional, list and map kinds.
	Elem *PropertyType

	// Fields maps wire property names to field shapes for object kinds.
	Fields map[string]*PropertyType

	// New constructs the declared record from its translated field map for
	// object kinds. A nil New leaves the translated map as-is.
	New func(fields map[string]any) any
}

// OptionalType declares an optional-of-elem shape. A nil elem is a malformed
// descriptor and fails fast.
func OptionalType(elem *PropertyType) *PropertyType {
	if elem == nil {
		panic("resource: optional shape requires a concrete element shape")
	}
	return &PropertyType{Kind: KindOptional, Elem: elem}
}

// ListType declares a list-of-elem shape.
func ListType(elem *PropertyType) *PropertyType {
	return &PropertyType{Kind: KindList, Elem: elem}
}

// MapType declares a string-keyed map-of-elem shape.
func MapType(elem *PropertyType) *PropertyType {
	return &PropertyType{Kind: KindMap, Elem: elem}
}

// ObjectType declares a record shape. fields is keyed by wire property name;
// construct may be nil to keep the translated map.
func ObjectType(fields map[string]*PropertyType, construct func(map[string]any) any) *PropertyType {
	return &PropertyType{Kind: KindObject, Fields: fields, New: construct}
}

// Unwrap resolves optional wrapping down to a concrete shape. Optional
// shapes missing their element are malformed descriptors and fail fast.
func (t *PropertyType) Unwrap() *PropertyType {
	for t != nil && t.Kind == KindOptional {
		if t.Elem == nil {
			panic(fmt.Sprintf("resource: malformed optional shape %+v", t))
		}
		t = t.Elem
	}
	return t
}
