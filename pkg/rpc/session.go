package rpc

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// FeatureSecrets is the engine feature id for secret-tagged wire values.
const FeatureSecrets = "secrets"

// Monitor is the capability surface of the engine session. Implementations
// answer whether the connected engine understands a given protocol feature.
type Monitor interface {
	SupportsFeature(ctx context.Context, id string) (bool, error)
}

// Session carries the per-run flags and the engine capability probe that
// influence marshalling and output resolution. A nil *Session behaves as a
// non-preview session with no secret support.
type Session struct {
	// DryRun is true for preview-style runs where final values may be
	// legitimately absent.
	DryRun bool

	// LegacyApply enables backfilling outputs from original inputs even
	// during previews, for compatibility with pre-delete-before-replace
	// engines.
	LegacyApply bool

	// Monitor answers capability probes. A nil Monitor supports nothing.
	Monitor Monitor

	secretsOnce sync.Once
	secrets     bool
	secretsErr  error
}

// IsDryRun reports whether this is a preview-style run.
func (s *Session) IsDryRun() bool {
	return s != nil && s.DryRun
}

// IsLegacyApplyEnabled reports whether legacy-apply compatibility is on.
func (s *Session) IsLegacyApplyEnabled() bool {
	return s != nil && s.LegacyApply
}

// SupportsSecrets reports whether the engine accepts secret-tagged wire
// values. The probe runs once per session and is cached.
func (s *Session) SupportsSecrets(ctx context.Context) (bool, error) {
	if s == nil || s.Monitor == nil {
		return false, nil
	}
	s.secretsOnce.Do(func() {
		s.secrets, s.secretsErr = s.Monitor.SupportsFeature(ctx, FeatureSecrets)
	})
	return s.secrets, s.secretsErr
}

// supportsFeatureMethod is the engine's capability probe RPC.
const supportsFeatureMethod = "/engine.ResourceMonitor/SupportsFeature"

// GRPCMonitor probes engine capabilities over a gRPC connection. Engines
// that predate the probe RPC answer Unimplemented, which counts as "feature
// unsupported" rather than an error.
type GRPCMonitor struct {
	// Conn is the connection to the engine.
	Conn grpc.ClientConnInterface
}

// SupportsFeature implements Monitor.
func (m *GRPCMonitor) SupportsFeature(ctx context.Context, id string) (bool, error) {
	req := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"id": structpb.NewStringValue(id),
		},
	}
	resp := &structpb.Struct{}
	if err := m.Conn.Invoke(ctx, supportsFeatureMethod, req, resp); err != nil {
		if status.Code(err) == codes.Unimplemented {
			return false, nil
		}
		return false, fmt.Errorf("failed to probe feature %q: %w", id, err)
	}
	return resp.GetFields()["hasSupport"].GetBoolValue(), nil
}
