package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/hobbytracker/internal/common"
	"github.com/dmitrijs2005/hobbytracker/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakePinger struct {
	fail atomic.Bool
}

func (p *fakePinger) PingContext(ctx context.Context) error {
	if p.fail.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func startBufServer(t *testing.T, p Pinger, interval time.Duration) (healthpb.HealthClient, context.CancelFunc, <-chan error) {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := NewGRPCServer("bufnet", nopLogger{}, p, interval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn), cancel, done
}

func waitForStatus(t *testing.T, c healthpb.HealthClient, service string, want healthpb.HealthCheckResponse_ServingStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := c.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
		return err == nil && resp.GetStatus() == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealth_FollowsDatabase(t *testing.T) {
	p := &fakePinger{}
	c, cancel, done := startBufServer(t, p, 20*time.Millisecond)
	defer cancel()

	waitForStatus(t, c, "", healthpb.HealthCheckResponse_SERVING)
	waitForStatus(t, c, ServiceName, healthpb.HealthCheckResponse_SERVING)

	p.fail.Store(true)
	waitForStatus(t, c, ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	p.fail.Store(false)
	waitForStatus(t, c, ServiceName, healthpb.HealthCheckResponse_SERVING)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestHealth_EchoesRequestID(t *testing.T) {
	c, cancel, _ := startBufServer(t, &fakePinger{}, time.Second)
	defer cancel()

	waitForStatus(t, c, "", healthpb.HealthCheckResponse_SERVING)

	var header metadata.MD
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.RequestIDHeaderName, "req-42")
	_, err := c.Check(ctx, &healthpb.HealthCheckRequest{}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"req-42"}, header.Get(common.RequestIDHeaderName))
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	id := requestID(context.Background())
	assert.Len(t, id, 36)
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", nopLogger{}, &fakePinger{}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}
