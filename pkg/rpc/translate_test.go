package rpc

import (
	"reflect"
	"testing"

	"github.com/husains/pulumi/pkg/resource"
)

// fooArgs is a declared record used to exercise hydration of typed outputs.
type fooArgs struct {
	FirstArg  string
	SecondArg float64
}

// fooShape declares fooArgs by its wire field names. The constructor sees
// the translated map.
var fooShape = resource.ObjectType(map[string]*resource.PropertyType{
	"firstArg":  nil,
	"secondArg": nil,
}, func(fields map[string]any) any {
	foo := fooArgs{}
	if v, ok := fields["first_arg"].(string); ok {
		foo.FirstArg = v
	}
	if v, ok := fields["second_arg"].(float64); ok {
		foo.SecondArg = v
	}
	return foo
})

func camelResource(shapes map[string]*resource.PropertyType) *resource.Resource {
	wireToNative := map[string]string{
		"firstArg":  "first_arg",
		"secondArg": "second_arg",
		"thirdArg":  "third_arg",
	}
	return resource.NewResource("test:mod:Camel", "camel",
		resource.WithOutputTranslator(func(key string) string {
			if native, ok := wireToNative[key]; ok {
				return native
			}
			return key
		}),
		resource.WithShapes(shapes),
	)
}

func TestTranslateOutputProperties_DeclaredRecord(t *testing.T) {
	res := camelResource(nil)

	got := TranslateOutputProperties(res, map[string]any{
		"firstArg":  "hello",
		"secondArg": 42.0,
	}, fooShape)

	want := fooArgs{FirstArg: "hello", SecondArg: 42}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestTranslateOutputProperties_NestedRecord(t *testing.T) {
	res := camelResource(nil)
	barShape := resource.ObjectType(map[string]*resource.PropertyType{
		"thirdArg": fooShape,
	}, nil)

	got := TranslateOutputProperties(res, map[string]any{
		"thirdArg": map[string]any{
			"firstArg":  "nested",
			"secondArg": 1.0,
		},
	}, barShape)

	bag := got.(map[string]any)
	foo, ok := bag["third_arg"].(fooArgs)
	if !ok {
		t.Fatalf("Expected nested field hydrated to fooArgs, got %T", bag["third_arg"])
	}
	if foo.FirstArg != "nested" || foo.SecondArg != 1 {
		t.Errorf("Expected nested record fields, got %+v", foo)
	}
}

func TestTranslateOutputProperties_ListOfRecords(t *testing.T) {
	res := camelResource(nil)

	got := TranslateOutputProperties(res, []any{
		map[string]any{"firstArg": "a", "secondArg": 1.0},
		map[string]any{"firstArg": "b", "secondArg": 2.0},
	}, resource.ListType(fooShape))

	elems := got.([]any)
	if len(elems) != 2 {
		t.Fatalf("Expected 2 hydrated elements, got %d", len(elems))
	}
	for i, want := range []fooArgs{{FirstArg: "a", SecondArg: 1}, {FirstArg: "b", SecondArg: 2}} {
		if elems[i] != want {
			t.Errorf("Expected element %d to be %+v, got %+v", i, want, elems[i])
		}
	}
}

func TestTranslateOutputProperties_MapOfRecords(t *testing.T) {
	res := camelResource(nil)

	got := TranslateOutputProperties(res, map[string]any{
		"key": map[string]any{"firstArg": "v", "secondArg": 3.0},
	}, resource.MapType(fooShape))

	bag := got.(map[string]any)
	foo, ok := bag["key"].(fooArgs)
	if !ok {
		t.Fatalf("Expected map value hydrated to fooArgs, got %T", bag["key"])
	}
	if foo.FirstArg != "v" || foo.SecondArg != 3 {
		t.Errorf("Expected map value fields, got %+v", foo)
	}
}

func TestTranslateOutputProperties_OptionalUnwraps(t *testing.T) {
	res := camelResource(nil)

	got := TranslateOutputProperties(res, map[string]any{
		"firstArg":  "maybe",
		"secondArg": 7.0,
	}, resource.OptionalType(fooShape))

	want := fooArgs{FirstArg: "maybe", SecondArg: 7}
	if got != want {
		t.Errorf("Expected optional shape to hydrate its element, got %+v", got)
	}
}

func TestTranslateOutputProperties_NoShapeTranslatesKeysOnly(t *testing.T) {
	res := camelResource(nil)

	got := TranslateOutputProperties(res, map[string]any{
		"firstArg": "hello",
		"other":    []any{map[string]any{"secondArg": 2.0}},
	}, nil)

	want := map[string]any{
		"first_arg": "hello",
		"other":     []any{map[string]any{"second_arg": 2.0}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected deep key translation, got %v", got)
	}
}

func TestTranslateOutputProperties_ScalarsPassThrough(t *testing.T) {
	res := camelResource(nil)

	for _, v := range []any{nil, "s", 1.5, true, resource.Unknown{}} {
		if got := TranslateOutputProperties(res, v, fooShape); !reflect.DeepEqual(got, v) {
			t.Errorf("Expected %v to pass through, got %v", v, got)
		}
	}
}

func TestTranslateOutputProperties_UndeclaredFieldStaysPlain(t *testing.T) {
	res := camelResource(nil)
	shape := resource.ObjectType(map[string]*resource.PropertyType{
		"firstArg": fooShape,
	}, nil)

	got := TranslateOutputProperties(res, map[string]any{
		"secondArg": map[string]any{"thirdArg": "x"},
	}, shape)

	bag := got.(map[string]any)
	inner, ok := bag["second_arg"].(map[string]any)
	if !ok {
		t.Fatalf("Expected undeclared field to stay a map, got %T", bag["second_arg"])
	}
	if inner["third_arg"] != "x" {
		t.Errorf("Expected keys still translated inside undeclared field, got %v", inner)
	}
}
