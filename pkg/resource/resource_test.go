package resource

import (
	"context"
	"errors"
	"testing"
)

func snakeToCamel(name string) string {
	switch name {
	case "first_arg":
		return "firstArg"
	default:
		return name
	}
}

func camelToSnake(name string) string {
	switch name {
	case "firstArg":
		return "first_arg"
	default:
		return name
	}
}

func TestResource_Translators(t *testing.T) {
	r := NewResource("test:mod:Thing", "thing",
		WithInputTranslator(snakeToCamel),
		WithOutputTranslator(camelToSnake),
	)

	if got := r.TranslateInputProperty("first_arg"); got != "firstArg" {
		t.Errorf("Expected firstArg, got %q", got)
	}
	if got := r.TranslateOutputProperty("firstArg"); got != "first_arg" {
		t.Errorf("Expected first_arg, got %q", got)
	}
	if got := r.TranslateOutputProperty("other"); got != "other" {
		t.Errorf("Expected untranslated key to pass through, got %q", got)
	}
}

func TestResource_DefaultTranslatorsAreIdentity(t *testing.T) {
	r := NewResource("test:mod:Thing", "thing")

	if got := r.TranslateInputProperty("x"); got != "x" {
		t.Errorf("Expected identity translation, got %q", got)
	}
	if got := r.TranslateOutputProperty("x"); got != "x" {
		t.Errorf("Expected identity translation, got %q", got)
	}
}

func TestResource_Identity(t *testing.T) {
	ctx := context.Background()
	r := NewResource("test:mod:Thing", "thing")

	if err := r.ResolveURN("urn:test::thing"); err != nil {
		t.Fatalf("Expected urn to resolve, got: %v", err)
	}
	if err := r.ResolveID("i-123", true); err != nil {
		t.Fatalf("Expected id to resolve, got: %v", err)
	}

	urn, err := r.URN().Value(ctx)
	if err != nil {
		t.Fatalf("Expected urn value, got error: %v", err)
	}
	if urn != "urn:test::thing" {
		t.Errorf("Expected urn, got %v", urn)
	}

	id, err := r.ID().Value(ctx)
	if err != nil {
		t.Fatalf("Expected id value, got error: %v", err)
	}
	if id != "i-123" {
		t.Errorf("Expected i-123, got %v", id)
	}

	deps := r.ID().Dependencies()
	if len(deps) != 1 || deps[0] != r {
		t.Errorf("Expected id to depend on its own resource, got %v", deps)
	}
}

func TestResource_RejectIdentity(t *testing.T) {
	ctx := context.Background()
	r := NewResource("test:mod:Thing", "thing")
	cause := errors.New("registration failed")

	r.RejectIdentity(cause)

	if _, err := r.URN().Value(ctx); !errors.Is(err, cause) {
		t.Errorf("Expected poisoned urn, got: %v", err)
	}
	if _, err := r.ID().Value(ctx); !errors.Is(err, cause) {
		t.Errorf("Expected poisoned id, got: %v", err)
	}
}

func TestResource_OutputRegistry(t *testing.T) {
	r := NewResource("test:mod:Thing", "thing")
	out, _ := NewOutput(r)

	r.SetOutput("endpoint", out)

	got, ok := r.Output("endpoint")
	if !ok {
		t.Fatal("Expected endpoint output to be installed")
	}
	if got != out {
		t.Error("Expected installed output to be returned")
	}

	if _, ok := r.Output("missing"); ok {
		t.Error("Expected missing output to report absence")
	}
}

func TestResource_OutputShape(t *testing.T) {
	shape := ObjectType(map[string]*PropertyType{"firstArg": nil}, nil)
	r := NewResource("test:mod:Thing", "thing", WithShapes(map[string]*PropertyType{
		"config": shape,
	}))

	if got := r.OutputShape("config"); got != shape {
		t.Error("Expected declared shape to be returned")
	}
	if got := r.OutputShape("other"); got != nil {
		t.Errorf("Expected nil shape for undeclared property, got %v", got)
	}
}
