package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dzakcloud/internal/logging"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (p *fakePinger) PingContext(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePinger) set(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func startServer(t *testing.T, db Pinger, interval time.Duration) (healthpb.HealthClient, context.CancelFunc, chan error) {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	srv := NewGRPCServer(l.Addr().String(), logging.Nop(), db, interval)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, l) }()

	conn, err := grpc.NewClient(l.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		cancel()
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn), cancel, done
}

func status(t *testing.T, c healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q): %v", service, err)
	}
	return resp.GetStatus()
}

func TestHealth_FollowsDatabase(t *testing.T) {
	db := &fakePinger{}
	client, cancel, done := startServer(t, db, 20*time.Millisecond)
	defer cancel()

	if got := status(t, client, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("overall status = %v, want SERVING", got)
	}
	if got := status(t, client, ServiceName); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("%s status = %v, want SERVING", ServiceName, got)
	}

	db.set(errors.New("connection refused"))
	require.Eventually(t, func() bool {
		return status(t, client, ServiceName) == healthpb.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	db.set(nil)
	require.Eventually(t, func() bool {
		return status(t, client, "") == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), &fakePinger{}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error for invalid listen address")
	}
}

func TestNewGRPCServer_DefaultInterval(t *testing.T) {
	srv := NewGRPCServer(":0", logging.Nop(), &fakePinger{}, 0)
	if srv.interval != 10*time.Second {
		t.Fatalf("interval = %v, want 10s", srv.interval)
	}
}
