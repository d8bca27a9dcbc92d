package rpc

import (
	"github.com/husains/pulumi/pkg/resource"
)

// TranslateOutputProperties recursively rewrites the keys of values returned
// by the engine into the resource's native naming, and rebuilds declared
// record types from their translated field maps.
//
// Maps have every key translated and every value hydrated against the shape
// declared for that key; if typ declares a record, its constructor is applied
// to the translated map. Lists hydrate elementwise against the declared
// element shape. Scalars and already-concrete values pass through unmodified.
func TranslateOutputProperties(res *resource.Resource, output any, typ *resource.PropertyType) any {
	typ = typ.Unwrap()

	switch val := output.(type) {
	case map[string]any:
		// Shape lookups use the wire key, before translation.
		fieldShape := func(string) *resource.PropertyType { return nil }
		var construct func(map[string]any) any
		if typ != nil {
			switch typ.Kind {
			case resource.KindObject:
				fieldShape = func(key string) *resource.PropertyType { return typ.Fields[key] }
				construct = typ.New
			case resource.KindMap:
				fieldShape = func(string) *resource.PropertyType { return typ.Elem }
			}
		}

		translated := make(map[string]any, len(val))
		for key, elem := range val {
			translated[res.TranslateOutputProperty(key)] = TranslateOutputProperties(res, elem, fieldShape(key))
		}
		if construct != nil {
			return construct(translated)
		}
		return translated

	case []any:
		var elemShape *resource.PropertyType
		if typ != nil && typ.Kind == resource.KindList {
			elemShape = typ.Elem
		}
		translated := make([]any, len(val))
		for i, elem := range val {
			translated[i] = TranslateOutputProperties(res, elem, elemShape)
		}
		return translated

	default:
		return output
	}
}
