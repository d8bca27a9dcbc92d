package rpc

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// The engine distinguishes tagged wire maps from plain user maps by the
// presence of a reserved signature key. The constants below must match the
// engine byte-for-byte.
const (
	// SigKey is the reserved key carried by tagged wire maps.
	SigKey = "4dabf18193072939515e22adb298388d"

	// AssetSig marks a tagged map as an asset.
	AssetSig = "c44067f5952c0a294b673a41bacd8c17"

	// ArchiveSig marks a tagged map as an archive.
	ArchiveSig = "0def7320c3a5731c473e5ecbe6d01bc7"

	// SecretSig marks a tagged map as a secret-wrapped value.
	SecretSig = "1b47061264138c4ac30d75fd1eb44270"

	// UnknownValue is the sentinel leaf meaning "not known during this run".
	// It appears as a bare string value, not inside a tagged map.
	UnknownValue = "04da6b54-80e4-46f7-96ec-b56ff0331ba9"
)

// secretValueField is the single payload field of a secret-tagged map.
const secretValueField = "value"

// signatureOf returns the signature of a tagged wire map, or "" if the
// struct carries no signature key.
func signatureOf(s *structpb.Struct) string {
	sig, ok := s.GetFields()[SigKey]
	if !ok {
		return ""
	}
	return sig.GetStringValue()
}

// IsSecretValue reports whether v is a secret-tagged wire map, without
// decoding its payload.
func IsSecretValue(v *structpb.Value) bool {
	s := v.GetStructValue()
	return s != nil && signatureOf(s) == SecretSig
}

// UnwrapSecretValue strips one secret tag from v if present, otherwise
// returns v unmodified.
func UnwrapSecretValue(v *structpb.Value) *structpb.Value {
	if !IsSecretValue(v) {
		return v
	}
	return v.GetStructValue().GetFields()[secretValueField]
}

// secretValue wraps a wire value in a secret-tagged map.
func secretValue(v *structpb.Value) *structpb.Value {
	if v == nil {
		v = structpb.NewNullValue()
	}
	return structpb.NewStructValue(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			SigKey:           structpb.NewStringValue(SecretSig),
			secretValueField: v,
		},
	})
}
