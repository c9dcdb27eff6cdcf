package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Additional-Code/procurement/internal/config"
	"github.com/Additional-Code/procurement/pkg/errorbank"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    codes.Code
		message string
	}{
		{name: "validation", err: errorbank.Validation("bad amount"), code: codes.InvalidArgument, message: "bad amount"},
		{name: "not found", err: errorbank.NotFound("missing"), code: codes.NotFound, message: "missing"},
		{name: "plain error", err: errors.New("db down"), code: codes.Internal, message: "internal server error"},
		{name: "existing status", err: status.Error(codes.Unavailable, "later"), code: codes.Unavailable, message: "later"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(ToStatus(tt.err))
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.message, st.Message())
		})
	}

	assert.NoError(t, ToStatus(nil))
}

func TestNewServer_RegistersHealth(t *testing.T) {
	cfg := config.Config{Observability: config.Observability{ServiceName: "procurement"}}
	server, healthServer := NewServer(cfg, zap.NewNop())
	t.Cleanup(server.Stop)

	_, registered := server.GetServiceInfo()[healthpb.Health_ServiceDesc.ServiceName]
	assert.True(t, registered)

	resp, err := healthServer.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "procurement"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
