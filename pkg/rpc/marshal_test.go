package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/husains/pulumi/pkg/resource"
)

// fakeMonitor answers capability probes from a fixed table.
type fakeMonitor struct {
	supports map[string]bool
	probes   int
}

func (m *fakeMonitor) SupportsFeature(_ context.Context, id string) (bool, error) {
	m.probes++
	return m.supports[id], nil
}

func secretSession() *Session {
	return &Session{Monitor: &fakeMonitor{supports: map[string]bool{FeatureSecrets: true}}}
}

func containsResource(deps []*resource.Resource, want *resource.Resource) bool {
	for _, dep := range deps {
		if dep == want {
			return true
		}
	}
	return false
}

func TestMarshalProperties_Scalars(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}

	wire, deps, err := m.MarshalProperties(ctx, map[string]any{
		"a": "hello",
		"b": []any{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}

	if got := wire.Fields["a"].GetStringValue(); got != "hello" {
		t.Errorf("Expected a=hello, got %q", got)
	}
	elems := wire.Fields["b"].GetListValue().GetValues()
	if len(elems) != 3 {
		t.Fatalf("Expected 3 list elements, got %d", len(elems))
	}
	for i, want := range []float64{1, 2, 3} {
		if got := elems[i].GetNumberValue(); got != want {
			t.Errorf("Expected b[%d]=%v, got %v", i, want, got)
		}
	}
	if len(deps["a"]) != 0 || len(deps["b"]) != 0 {
		t.Errorf("Expected no dependencies for plain values, got %v", deps)
	}
}

func TestMarshalProperties_DropsNullValuedKeys(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}

	wire, _, err := m.MarshalProperties(ctx, map[string]any{
		"present": "x",
		"absent":  nil,
		"nested":  map[string]any{"alsoAbsent": nil},
	})
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}

	if _, ok := wire.Fields["absent"]; ok {
		t.Error("Expected null-valued top-level key to be dropped")
	}
	nested := wire.Fields["nested"].GetStructValue()
	if _, ok := nested.Fields["alsoAbsent"]; ok {
		t.Error("Expected null-valued nested key to be dropped")
	}
}

func TestMarshalPropertyValue_ListKeepsNullElements(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}
	var deps []*resource.Resource

	wire, err := m.MarshalPropertyValue(ctx, []any{"a", nil, "c"}, &deps)
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}

	elems := wire.GetListValue().GetValues()
	if len(elems) != 3 {
		t.Fatalf("Expected 3 elements with the null retained, got %d", len(elems))
	}
	if _, ok := elems[1].GetKind().(*structpb.Value_NullValue); !ok {
		t.Errorf("Expected null element at index 1, got %v", elems[1])
	}
}

func TestMarshalPropertyValue_UnknownMarker(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}
	var deps []*resource.Resource

	wire, err := m.MarshalPropertyValue(ctx, resource.Unknown{}, &deps)
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}
	if got := wire.GetStringValue(); got != UnknownValue {
		t.Errorf("Expected unknown sentinel, got %q", got)
	}
}

func TestMarshalPropertyValue_UnknownOutput(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}
	var deps []*resource.Resource

	out := resource.NewResolvedOutput(nil, false, false)
	wire, err := m.MarshalPropertyValue(ctx, out, &deps)
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}
	if got := wire.GetStringValue(); got != UnknownValue {
		t.Errorf("Expected unknown sentinel for unknown output, got %q", got)
	}
}

func TestMarshalPropertyValue_KnownOutputInlines(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}
	var deps []*resource.Resource

	out := resource.NewResolvedOutput("resolved", true, false)
	wire, err := m.MarshalPropertyValue(ctx, out, &deps)
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}
	if got := wire.GetStringValue(); got != "resolved" {
		t.Errorf("Expected output to inline its value, got %q", got)
	}
}

func TestMarshalPropertyValue_FutureChain(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}
	var deps []*resource.Resource

	chained := resource.FutureFunc(func(context.Context) (any, error) {
		return resource.ResolvedFuture(resource.ResolvedFuture("bottom")), nil
	})
	wire, err := m.MarshalPropertyValue(ctx, chained, &deps)
	if err != nil {
		t.Fatalf("Expected chained futures to resolve, got: %v", err)
	}
	if got := wire.GetStringValue(); got != "bottom" {
		t.Errorf("Expected bottom of the chain, got %q", got)
	}
}

func TestMarshalPropertyValue_FutureFailure(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}
	var deps []*resource.Resource

	cause := errors.New("producer failed")
	failing := resource.FutureFunc(func(context.Context) (any, error) {
		return nil, cause
	})
	if _, err := m.MarshalPropertyValue(ctx, failing, &deps); !errors.Is(err, cause) {
		t.Errorf("Expected producer failure to propagate, got: %v", err)
	}
}

func TestMarshalProperties_ResourceReference(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}

	dep := resource.NewResource("test:mod:Dep", "dep")
	if err := dep.ResolveURN("urn:test::dep"); err != nil {
		t.Fatal(err)
	}
	if err := dep.ResolveID("i-dep", true); err != nil {
		t.Fatal(err)
	}

	wire, deps, err := m.MarshalProperties(ctx, map[string]any{"ref": dep})
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}

	if got := wire.Fields["ref"].GetStringValue(); got != "i-dep" {
		t.Errorf("Expected resource reference to marshal as its id, got %q", got)
	}
	if !containsResource(deps["ref"], dep) {
		t.Error("Expected the referenced resource to be recorded as a dependency")
	}
	if len(deps["ref"]) != 1 {
		t.Errorf("Expected deduplicated dependency list, got %d entries", len(deps["ref"]))
	}
}

func TestMarshalProperties_DependenciesThroughContainers(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}

	dep := resource.NewResource("test:mod:Dep", "dep")
	out := resource.NewResolvedOutput("value", true, false, dep)

	_, deps, err := m.MarshalProperties(ctx, map[string]any{
		"nested": map[string]any{"list": []any{out}},
	})
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}
	if !containsResource(deps["nested"], dep) {
		t.Error("Expected dependency collected through nested containers")
	}
}

func TestMarshalPropertyValue_SecretOutput(t *testing.T) {
	ctx := context.Background()
	var deps []*resource.Resource

	out := resource.NewResolvedOutput("hunter2", true, true)

	t.Run("engine supports secrets", func(t *testing.T) {
		m := &Marshaler{Session: secretSession()}
		wire, err := m.MarshalPropertyValue(ctx, out, &deps)
		if err != nil {
			t.Fatalf("Expected marshalling to succeed, got: %v", err)
		}
		if !IsSecretValue(wire) {
			t.Fatalf("Expected secret-tagged value, got %v", wire)
		}
		if got := UnwrapSecretValue(wire).GetStringValue(); got != "hunter2" {
			t.Errorf("Expected wrapped payload, got %q", got)
		}
	})

	t.Run("engine does not support secrets", func(t *testing.T) {
		m := &Marshaler{Session: &Session{Monitor: &fakeMonitor{}}}
		wire, err := m.MarshalPropertyValue(ctx, out, &deps)
		if err != nil {
			t.Fatalf("Expected marshalling to succeed, got: %v", err)
		}
		if IsSecretValue(wire) {
			t.Fatal("Expected value in the clear when the engine lacks secret support")
		}
		if got := wire.GetStringValue(); got != "hunter2" {
			t.Errorf("Expected clear payload, got %q", got)
		}
	})

	t.Run("nil session", func(t *testing.T) {
		m := &Marshaler{}
		wire, err := m.MarshalPropertyValue(ctx, out, &deps)
		if err != nil {
			t.Fatalf("Expected marshalling to succeed, got: %v", err)
		}
		if IsSecretValue(wire) {
			t.Fatal("Expected value in the clear with no session")
		}
	})
}

func TestMarshalPropertyValue_SecretNullPayload(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{Session: secretSession()}
	var deps []*resource.Resource

	out := resource.NewResolvedOutput(nil, true, true)
	wire, err := m.MarshalPropertyValue(ctx, out, &deps)
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}
	if !IsSecretValue(wire) {
		t.Fatalf("Expected secret-tagged value, got %v", wire)
	}
	payload := UnwrapSecretValue(wire)
	if _, ok := payload.GetKind().(*structpb.Value_NullValue); !ok {
		t.Errorf("Expected explicit null payload, got %v", payload)
	}
}

func TestMarshalPropertyValue_Assets(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}
	var deps []*resource.Resource

	tests := []struct {
		name  string
		asset resource.Asset
		field string
		want  string
	}{
		{name: "file asset", asset: resource.NewFileAsset("/etc/app.conf"), field: "path", want: "/etc/app.conf"},
		{name: "string asset", asset: resource.NewStringAsset("contents"), field: "text", want: "contents"},
		{name: "remote asset", asset: resource.NewRemoteAsset("https://example.com/a"), field: "uri", want: "https://example.com/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := m.MarshalPropertyValue(ctx, tt.asset, &deps)
			if err != nil {
				t.Fatalf("Expected marshalling to succeed, got: %v", err)
			}
			fields := wire.GetStructValue().GetFields()
			if got := fields[SigKey].GetStringValue(); got != AssetSig {
				t.Errorf("Expected asset signature, got %q", got)
			}
			if got := fields[tt.field].GetStringValue(); got != tt.want {
				t.Errorf("Expected %s=%q, got %q", tt.field, tt.want, got)
			}
		})
	}
}

func TestMarshalPropertyValue_InvalidAsset(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}
	var deps []*resource.Resource

	_, err := m.MarshalPropertyValue(ctx, &resource.FileAsset{}, &deps)
	if !resource.IsValidation(err) {
		t.Errorf("Expected validation error for empty asset, got: %v", err)
	}
}

func TestMarshalPropertyValue_AssetArchive(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}
	var deps []*resource.Resource

	archive := resource.NewAssetArchive(map[string]any{
		"conf":  resource.NewStringAsset("contents"),
		"inner": resource.NewFileArchive("/srv/bundle.tgz"),
	})
	wire, err := m.MarshalPropertyValue(ctx, archive, &deps)
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}

	fields := wire.GetStructValue().GetFields()
	if got := fields[SigKey].GetStringValue(); got != ArchiveSig {
		t.Errorf("Expected archive signature, got %q", got)
	}
	members := fields["assets"].GetStructValue().GetFields()
	conf := members["conf"].GetStructValue().GetFields()
	if got := conf[SigKey].GetStringValue(); got != AssetSig {
		t.Errorf("Expected nested asset signature, got %q", got)
	}
	inner := members["inner"].GetStructValue().GetFields()
	if got := inner["path"].GetStringValue(); got != "/srv/bundle.tgz" {
		t.Errorf("Expected nested archive path, got %q", got)
	}
}

// wireRecord renders a fixed property map with final wire keys.
type wireRecord struct {
	values map[string]any
}

func (r wireRecord) PropertyValues() map[string]any { return r.values }

func TestMarshalProperties_KeyTranslation(t *testing.T) {
	ctx := context.Background()
	translate := func(key string) string {
		return map[string]string{
			"first_arg":  "firstArg",
			"second_arg": "secondArg",
		}[key]
	}
	m := &Marshaler{KeyTranslator: func(key string) string {
		if wire := translate(key); wire != "" {
			return wire
		}
		return key
	}}

	wire, _, err := m.MarshalProperties(ctx, map[string]any{
		"first_arg": "hello",
		"nested":    map[string]any{"second_arg": 42},
	})
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}

	if _, ok := wire.Fields["firstArg"]; !ok {
		t.Error("Expected top-level key to be translated")
	}
	nested := wire.Fields["nested"].GetStructValue().GetFields()
	if _, ok := nested["secondArg"]; !ok {
		t.Error("Expected nested map key to be translated")
	}
}

func TestMarshalPropertyValue_RecordKeysSkipTranslation(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{KeyTranslator: func(key string) string {
		return "translated_" + key
	}}
	var deps []*resource.Resource

	record := wireRecord{values: map[string]any{
		"wireName": map[string]any{"inner": "v"},
	}}
	wire, err := m.MarshalPropertyValue(ctx, record, &deps)
	if err != nil {
		t.Fatalf("Expected marshalling to succeed, got: %v", err)
	}

	fields := wire.GetStructValue().GetFields()
	if _, ok := fields["wireName"]; !ok {
		t.Fatalf("Expected record's immediate keys untranslated, got %v", fields)
	}
	// Only the record's immediate keys are final; deeper maps translate.
	inner := fields["wireName"].GetStructValue().GetFields()
	if _, ok := inner["translated_inner"]; !ok {
		t.Errorf("Expected nested map keys translated, got %v", inner)
	}
}

func TestMarshalPropertyValue_UnexpectedType(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}
	var deps []*resource.Resource

	_, err := m.MarshalPropertyValue(ctx, make(chan int), &deps)
	if !resource.IsSerialization(err) {
		t.Errorf("Expected serialization error for unsupported type, got: %v", err)
	}
}

func TestMarshalProperties_WrapsFailingProperty(t *testing.T) {
	ctx := context.Background()
	m := &Marshaler{}

	_, _, err := m.MarshalProperties(ctx, map[string]any{"bad": make(chan int)})
	if err == nil {
		t.Fatal("Expected marshalling to fail")
	}
	if want := fmt.Sprintf("failed to marshal property %q", "bad"); !strings.HasPrefix(err.Error(), want) {
		t.Errorf("Expected property name in error, got: %v", err)
	}
	if !resource.IsSerialization(err) {
		t.Errorf("Expected wrapped serialization error, got: %v", err)
	}
}

func TestSupportsSecrets_ProbeCached(t *testing.T) {
	ctx := context.Background()
	monitor := &fakeMonitor{supports: map[string]bool{FeatureSecrets: true}}
	s := &Session{Monitor: monitor}

	for i := 0; i < 3; i++ {
		supported, err := s.SupportsSecrets(ctx)
		if err != nil {
			t.Fatalf("Expected probe to succeed, got: %v", err)
		}
		if !supported {
			t.Fatal("Expected secrets to be supported")
		}
	}
	if monitor.probes != 1 {
		t.Errorf("Expected a single cached probe, got %d", monitor.probes)
	}
}
