package rpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/husains/pulumi/pkg/resource"
)

// Unmarshaler converts wire Structs back into native values, rehydrating
// tagged asset, archive and secret maps and bubbling container secrecy.
type Unmarshaler struct {
	// Session supplies the preview flag: during previews the unknown
	// sentinel decodes to the Unknown marker instead of null.
	Session *Session

	// KeepUnknowns forces the Unknown marker even outside previews.
	KeepUnknowns bool
}

// UnmarshalProperties unmarshals a wire Struct. The result is usually a
// map[string]any, but a signature-tagged Struct decodes to the concrete
// asset, archive or secret value it encodes. Entries whose value unmarshals
// to null are treated as if they don't exist.
func (u *Unmarshaler) UnmarshalProperties(s *structpb.Struct) (any, error) {
	fields := s.GetFields()

	if sig := signatureOf(s); sig != "" {
		switch sig {
		case AssetSig:
			return u.unmarshalAsset(fields)
		case ArchiveSig:
			return u.unmarshalArchive(fields)
		case SecretSig:
			payload, ok := fields[secretValueField]
			if !ok {
				return nil, resource.NewProtocolError("secret value has no payload")
			}
			element, err := u.UnmarshalPropertyValue(payload)
			if err != nil {
				return nil, err
			}
			return resource.Secret{Element: element}, nil
		default:
			return nil, resource.NewProtocolError(fmt.Sprintf("unrecognized signature %q", sig))
		}
	}

	props := make(map[string]any)
	for key, value := range fields {
		native, err := u.UnmarshalPropertyValue(value)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal property %q: %w", key, err)
		}
		if native == nil {
			continue
		}
		props[key] = native
	}
	return props, nil
}

// UnmarshalPropertyValue unmarshals a single wire value. Secrecy bubbles up
// out of containers: a list or map with any secret-wrapped member decodes to
// a single Secret wrapper around the container, with each member's own
// wrapper stripped.
func (u *Unmarshaler) UnmarshalPropertyValue(v *structpb.Value) (any, error) {
	if v == nil {
		return nil, nil
	}

	if v.GetStringValue() == UnknownValue {
		if u.Session.IsDryRun() || u.KeepUnknowns {
			return resource.Unknown{}, nil
		}
		return nil, nil
	}

	switch val := v.GetKind().(type) {
	case *structpb.Value_ListValue:
		wireElems := val.ListValue.GetValues()
		elems := make([]any, 0, len(wireElems))
		secret := false
		for _, wireElem := range wireElems {
			elem, err := u.UnmarshalPropertyValue(wireElem)
			if err != nil {
				return nil, err
			}
			secret = secret || resource.IsSecret(elem)
			elems = append(elems, elem)
		}
		if secret {
			for i, elem := range elems {
				elems[i] = resource.UnwrapSecret(elem)
			}
			return resource.Secret{Element: elems}, nil
		}
		return elems, nil

	case *structpb.Value_StructValue:
		props, err := u.UnmarshalProperties(val.StructValue)
		if err != nil {
			return nil, err
		}
		// Tagged structs decode to concrete values; only plain maps bubble.
		m, ok := props.(map[string]any)
		if !ok {
			return props, nil
		}
		for _, elem := range m {
			if resource.IsSecret(elem) {
				unwrapped := make(map[string]any, len(m))
				for key, member := range m {
					unwrapped[key] = resource.UnwrapSecret(member)
				}
				return resource.Secret{Element: unwrapped}, nil
			}
		}
		return m, nil

	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_BoolValue:
		return val.BoolValue, nil
	case *structpb.Value_NumberValue:
		return val.NumberValue, nil
	case *structpb.Value_StringValue:
		return val.StringValue, nil

	default:
		return nil, resource.NewProtocolError(fmt.Sprintf("unexpected wire value of type %T", v.GetKind()))
	}
}

// unmarshalAsset rehydrates an asset-tagged wire map.
func (u *Unmarshaler) unmarshalAsset(fields map[string]*structpb.Value) (resource.Asset, error) {
	if path, ok := fields["path"]; ok {
		return resource.NewFileAsset(path.GetStringValue()), nil
	}
	if text, ok := fields["text"]; ok {
		return resource.NewStringAsset(text.GetStringValue()), nil
	}
	if uri, ok := fields["uri"]; ok {
		return resource.NewRemoteAsset(uri.GetStringValue()), nil
	}
	return nil, resource.NewProtocolError("asset has no path, text or uri")
}

// unmarshalArchive rehydrates an archive-tagged wire map.
func (u *Unmarshaler) unmarshalArchive(fields map[string]*structpb.Value) (resource.Archive, error) {
	if assets, ok := fields["assets"]; ok {
		native, err := u.UnmarshalPropertyValue(assets)
		if err != nil {
			return nil, err
		}
		members, ok := native.(map[string]any)
		if !ok {
			return nil, resource.NewProtocolError(fmt.Sprintf("archive assets decoded to %T, not a map", native))
		}
		return resource.NewAssetArchive(members), nil
	}
	if path, ok := fields["path"]; ok {
		return resource.NewFileArchive(path.GetStringValue()), nil
	}
	if uri, ok := fields["uri"]; ok {
		return resource.NewRemoteArchive(uri.GetStringValue()), nil
	}
	return nil, resource.NewProtocolError("archive has no assets, path or uri")
}
