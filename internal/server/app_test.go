package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/config"
)

type fakeRunner struct {
	err     error
	started atomic.Bool
}

func (f *fakeRunner) Run(ctx context.Context) error {
	f.started.Store(true)
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return nil
}

type countingReaper struct{ n atomic.Int32 }

func (c *countingReaper) ReapAbandonedUploads(context.Context) (int, error) {
	c.n.Add(1)
	return 0, nil
}

func newTestApp(httpErr error, interval time.Duration) (*App, *fakeRunner, *fakeRunner, *countingReaper) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ReapInterval = interval

	h := &fakeRunner{err: httpErr}
	g := &fakeRunner{}
	r := &countingReaper{}
	return &App{config: cfg, logger: logging.Nop{}, reaper: r, http: h, grpc: g}, h, g, r
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, h, g, r := newTestApp(nil, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !h.started.Load() || !g.started.Load() {
		t.Fatal("servers were not started")
	}
	if r.n.Load() == 0 {
		t.Fatal("reaper never ran")
	}
}

func TestRun_ServerFailureStopsApp(t *testing.T) {
	app, _, g, _ := newTestApp(errors.New("bind: address in use"), 0)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after a server failed")
	}
	if !g.started.Load() {
		t.Fatal("grpc server was not started")
	}
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MaxUploadSize = 0

	if _, err := NewApp(context.Background(), cfg); err == nil {
		t.Fatal("expected config validation error")
	}
}
