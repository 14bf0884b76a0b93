package grpc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/assetvault/internal/logging"
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

func checkStatus(t *testing.T, s *HealthServer, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q) error: %v", service, err)
	}
	return resp.GetStatus()
}

func TestProbe_FollowsDatabase(t *testing.T) {
	t.Parallel()

	db := &fakePinger{}
	s := NewHealthServer("127.0.0.1:0", db, logging.Nop{})

	s.probe(context.Background())
	if got := checkStatus(t, s, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("overall status = %v, want SERVING", got)
	}
	if got := checkStatus(t, s, ServiceName); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("service status = %v, want SERVING", got)
	}

	db.set(errors.New("connection refused"))
	s.probe(context.Background())
	if got := checkStatus(t, s, ""); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("overall status = %v, want NOT_SERVING", got)
	}
}

func TestProbeLoop_Refreshes(t *testing.T) {
	t.Parallel()

	db := &fakePinger{err: errors.New("down")}
	s := NewHealthServer("127.0.0.1:0", db, logging.Nop{})
	s.probeInterval = 10 * time.Millisecond
	s.probe(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.probeLoop(ctx)

	db.set(nil)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if checkStatus(t, s, "") == healthpb.HealthCheckResponse_SERVING {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("probe loop did not pick up recovered database")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewHealthServer("127.0.0.1:0", &fakePinger{}, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewHealthServer("127.0.0.1:99999", &fakePinger{}, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}
