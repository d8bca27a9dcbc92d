package rpc

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/husains/pulumi/pkg/resource"
)

// Marshaler converts native property graphs into wire Structs, awaiting any
// futures and output facts contained transitively within them.
type Marshaler struct {
	// Session supplies the secret-capability probe. A nil Session never
	// secret-tags values.
	Session *Session

	// KeyTranslator translates property keys to the names the engine
	// expects. A nil translator keeps keys as-is.
	KeyTranslator func(string) string

	// Label identifies this marshalling call in debug logs.
	Label string
}

// MarshalProperties marshals a property bag into a wire Struct, tracking for
// every translated top-level key the resources its value depends on.
// Properties whose value marshals to null are treated as if they don't
// exist.
func (m *Marshaler) MarshalProperties(ctx context.Context, inputs map[string]any) (*structpb.Struct, map[string][]*resource.Resource, error) {
	fields := make(map[string]*structpb.Value)
	propertyDeps := make(map[string][]*resource.Resource)

	for key, input := range inputs {
		var deps []*resource.Resource
		wire, err := m.marshal(ctx, input, &deps, true)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal property %q: %w", key, err)
		}
		if wire == nil {
			continue
		}

		translated := key
		if m.KeyTranslator != nil {
			translated = m.KeyTranslator(key)
			log.Debug().
				Str("label", m.Label).
				Str("from", key).
				Str("to", translated).
				Msg("Translated top-level property key")
		}
		fields[translated] = wire
		propertyDeps[translated] = dedupeResources(deps)
	}

	return &structpb.Struct{Fields: fields}, propertyDeps, nil
}

// dedupeResources keeps the first occurrence of each resource. A resource
// reference and its own id output both record the resource, so the raw
// dependency list can repeat.
func dedupeResources(deps []*resource.Resource) []*resource.Resource {
	seen := make(map[*resource.Resource]struct{}, len(deps))
	out := make([]*resource.Resource, 0, len(deps))
	for _, dep := range deps {
		if _, ok := seen[dep]; ok {
			continue
		}
		seen[dep] = struct{}{}
		out = append(out, dep)
	}
	return out
}

// MarshalPropertyValue marshals a single property value, appending every
// resource the value depends on to deps. A nil result with a nil error means
// the value marshals to null and should be dropped from its parent map.
func (m *Marshaler) MarshalPropertyValue(ctx context.Context, v any, deps *[]*resource.Resource) (*structpb.Value, error) {
	return m.marshal(ctx, v, deps, true)
}

// marshal is the recursive worker behind MarshalPropertyValue. The case
// order is load-bearing: several of the recognized kinds are mutually
// exclusive wrapper types and the first match wins. Chained futures are
// resolved iteratively rather than by recursive suspension, so pathological
// producer chains cannot grow the stack.
func (m *Marshaler) marshal(ctx context.Context, v any, deps *[]*resource.Resource, translateKeys bool) (*structpb.Value, error) {
	for {
		switch val := v.(type) {
		case []any:
			elems := make([]*structpb.Value, 0, len(val))
			for _, elem := range val {
				wire, err := m.marshal(ctx, elem, deps, true)
				if err != nil {
					return nil, err
				}
				// Null elements stay in place; only maps drop nulls.
				if wire == nil {
					wire = structpb.NewNullValue()
				}
				elems = append(elems, wire)
			}
			return structpb.NewListValue(&structpb.ListValue{Values: elems}), nil

		case resource.Unknown:
			return structpb.NewStringValue(UnknownValue), nil

		case *resource.Resource:
			// A resource reference marshals as its id and makes the
			// enclosing property depend on it.
			*deps = append(*deps, val)
			return m.marshal(ctx, val.ID(), deps, true)

		case resource.Asset:
			if err := val.Validate(); err != nil {
				return nil, err
			}
			obj := map[string]*structpb.Value{
				SigKey: structpb.NewStringValue(AssetSig),
			}
			switch asset := val.(type) {
			case *resource.FileAsset:
				obj["path"] = structpb.NewStringValue(asset.Path)
			case *resource.StringAsset:
				obj["text"] = structpb.NewStringValue(asset.Text)
			case *resource.RemoteAsset:
				obj["uri"] = structpb.NewStringValue(asset.URI)
			default:
				return nil, resource.NewSerializationError(fmt.Sprintf("unknown asset type %T", val))
			}
			return structpb.NewStructValue(&structpb.Struct{Fields: obj}), nil

		case resource.Archive:
			if err := val.Validate(); err != nil {
				return nil, err
			}
			obj := map[string]*structpb.Value{
				SigKey: structpb.NewStringValue(ArchiveSig),
			}
			switch archive := val.(type) {
			case *resource.AssetArchive:
				assets, err := m.marshal(ctx, archive.Assets, deps, true)
				if err != nil {
					return nil, err
				}
				obj["assets"] = assets
			case *resource.FileArchive:
				obj["path"] = structpb.NewStringValue(archive.Path)
			case *resource.RemoteArchive:
				obj["uri"] = structpb.NewStringValue(archive.URI)
			default:
				return nil, resource.NewSerializationError(fmt.Sprintf("unknown archive type %T", val))
			}
			return structpb.NewStructValue(&structpb.Struct{Fields: obj}), nil

		case resource.Future:
			resolved, err := val.Await(ctx)
			if err != nil {
				return nil, err
			}
			// The resolved value may itself be any of the recognized kinds,
			// including another future.
			v = resolved
			continue

		case *resource.Output:
			*deps = append(*deps, val.Dependencies()...)
			known, err := val.Known(ctx)
			if err != nil {
				return nil, err
			}
			secret, err := val.Secret(ctx)
			if err != nil {
				return nil, err
			}
			underlying, err := val.Value(ctx)
			if err != nil {
				return nil, err
			}
			wire, err := m.marshal(ctx, underlying, deps, true)
			if err != nil {
				return nil, err
			}
			if !known {
				return structpb.NewStringValue(UnknownValue), nil
			}
			if secret {
				supported, err := m.Session.SupportsSecrets(ctx)
				if err != nil {
					return nil, err
				}
				if supported {
					return secretValue(wire), nil
				}
				log.Debug().Str("label", m.Label).Msg("Engine does not accept secrets; sending value in the clear")
			}
			return wire, nil

		case resource.PropertyRecord:
			// The record renders to a map whose keys are already final wire
			// names; only its immediate keys skip translation.
			v = val.PropertyValues()
			translateKeys = false
			continue

		case map[string]any:
			fields := make(map[string]*structpb.Value)
			for key, elem := range val {
				wire, err := m.marshal(ctx, elem, deps, true)
				if err != nil {
					return nil, err
				}
				if wire == nil {
					continue
				}
				translated := key
				if translateKeys && m.KeyTranslator != nil {
					translated = m.KeyTranslator(key)
				}
				fields[translated] = wire
			}
			return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil

		case nil:
			return nil, nil
		case bool:
			return structpb.NewBoolValue(val), nil
		case string:
			return structpb.NewStringValue(val), nil
		case int:
			return structpb.NewNumberValue(float64(val)), nil
		case int32:
			return structpb.NewNumberValue(float64(val)), nil
		case int64:
			return structpb.NewNumberValue(float64(val)), nil
		case uint:
			return structpb.NewNumberValue(float64(val)), nil
		case uint32:
			return structpb.NewNumberValue(float64(val)), nil
		case uint64:
			return structpb.NewNumberValue(float64(val)), nil
		case float32:
			return structpb.NewNumberValue(float64(val)), nil
		case float64:
			return structpb.NewNumberValue(val), nil

		default:
			return nil, resource.NewSerializationError(fmt.Sprintf("unexpected input of type %T", v))
		}
	}
}
