package resource

import "reflect"

// Unknown marks a value the engine could not supply during this run, for
// example a computed property during a preview.
type Unknown struct{}

// IsUnknown reports whether v is the unknown marker.
func IsUnknown(v any) bool {
	_, ok := v.(Unknown)
	return ok
}

// ContainsUnknowns reports whether v contains the unknown marker anywhere in
// its structure. Reference cycles through maps and slices are tolerated.
func ContainsUnknowns(v any) bool {
	return containsUnknowns(v, make(map[uintptr]struct{}))
}

func containsUnknowns(v any, seen map[uintptr]struct{}) bool {
	if IsUnknown(v) {
		return true
	}

	switch val := v.(type) {
	case map[string]any:
		if val == nil {
			return false
		}
		ptr := reflect.ValueOf(val).Pointer()
		if _, visited := seen[ptr]; visited {
			return false
		}
		seen[ptr] = struct{}{}
		for _, elem := range val {
			if containsUnknowns(elem, seen) {
				return true
			}
		}
	case []any:
		if len(val) == 0 {
			return false
		}
		ptr := reflect.ValueOf(val).Pointer()
		if _, visited := seen[ptr]; visited {
			return false
		}
		seen[ptr] = struct{}{}
		for _, elem := range val {
			if containsUnknowns(elem, seen) {
				return true
			}
		}
	}

	return false
}
