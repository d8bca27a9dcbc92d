package resource

import "testing"

func TestContainsUnknowns(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"scalar", "hello", false},
		{"nil", nil, false},
		{"unknown marker", Unknown{}, true},
		{"flat map", map[string]any{"a": 1, "b": "x"}, false},
		{"map with unknown", map[string]any{"a": 1, "b": Unknown{}}, true},
		{"nested map", map[string]any{"a": map[string]any{"b": Unknown{}}}, true},
		{"list", []any{1, 2, 3}, false},
		{"list with unknown", []any{1, Unknown{}, 3}, true},
		{"list in map", map[string]any{"a": []any{map[string]any{"b": Unknown{}}}}, true},
		{"empty containers", map[string]any{"a": []any{}, "b": map[string]any{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsUnknowns(tt.value); got != tt.want {
				t.Errorf("ContainsUnknowns(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestContainsUnknowns_CyclicMap(t *testing.T) {
	m := map[string]any{"a": 1}
	m["self"] = m

	if ContainsUnknowns(m) {
		t.Error("Expected no unknowns in cyclic map without markers")
	}

	m["b"] = Unknown{}
	if !ContainsUnknowns(m) {
		t.Error("Expected unknown in cyclic map with marker")
	}
}

func TestContainsUnknowns_CyclicList(t *testing.T) {
	l := make([]any, 2)
	l[0] = "x"
	l[1] = l

	if ContainsUnknowns(l) {
		t.Error("Expected no unknowns in cyclic list without markers")
	}
}

func TestIsUnknown(t *testing.T) {
	if !IsUnknown(Unknown{}) {
		t.Error("Expected IsUnknown(Unknown{}) to be true")
	}
	if IsUnknown("04da6b54-80e4-46f7-96ec-b56ff0331ba9") {
		t.Error("Expected the sentinel string itself not to be the native marker")
	}
}
