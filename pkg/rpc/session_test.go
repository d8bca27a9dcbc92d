package rpc

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// stubConn answers the capability probe RPC without a live engine.
type stubConn struct {
	err    error
	fields map[string]*structpb.Value

	calls  int
	method string
}

func (c *stubConn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	c.calls++
	c.method = method
	if c.err != nil {
		return c.err
	}
	reply.(*structpb.Struct).Fields = c.fields
	return nil
}

func (c *stubConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("streaming not supported")
}

func TestGRPCMonitor_SupportsFeature(t *testing.T) {
	transportErr := errors.New("connection reset")

	tests := []struct {
		name    string
		conn    *stubConn
		want    bool
		wantErr error
	}{
		{
			name: "engine supports the feature",
			conn: &stubConn{fields: map[string]*structpb.Value{
				"hasSupport": structpb.NewBoolValue(true),
			}},
			want: true,
		},
		{
			name: "engine rejects the feature",
			conn: &stubConn{fields: map[string]*structpb.Value{
				"hasSupport": structpb.NewBoolValue(false),
			}},
			want: false,
		},
		{
			name: "engine predates the probe",
			conn: &stubConn{err: status.Error(codes.Unimplemented, "unknown method")},
			want: false,
		},
		{
			name:    "transport failure",
			conn:    &stubConn{err: transportErr},
			wantErr: transportErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &GRPCMonitor{Conn: tt.conn}
			got, err := m.SupportsFeature(context.Background(), FeatureSecrets)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected the transport error, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected probe to succeed, got: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected support=%v, got %v", tt.want, got)
			}
			if tt.conn.method != supportsFeatureMethod {
				t.Errorf("Expected probe on %q, got %q", supportsFeatureMethod, tt.conn.method)
			}
		})
	}
}

func TestSession_SupportsSecrets_GRPCMonitor(t *testing.T) {
	conn := &stubConn{fields: map[string]*structpb.Value{
		"hasSupport": structpb.NewBoolValue(true),
	}}
	s := &Session{Monitor: &GRPCMonitor{Conn: conn}}

	for i := 0; i < 3; i++ {
		supported, err := s.SupportsSecrets(context.Background())
		if err != nil {
			t.Fatalf("Expected probe to succeed, got: %v", err)
		}
		if !supported {
			t.Fatal("Expected secrets to be supported")
		}
	}
	if conn.calls != 1 {
		t.Errorf("Expected a single engine round trip, got %d", conn.calls)
	}
}
