package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/internal/auth/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// sweepCountingStore satisfies session.Store but only the sweep path is
// expected to run.
type sweepCountingStore struct {
	sweeps atomic.Int64
}

func (s *sweepCountingStore) Create(_ context.Context, _ session.CreateInput) (session.Session, error) {
	return session.Session{}, session.ErrSessionNotFound
}

func (s *sweepCountingStore) GetWithUserByTokenHash(_ context.Context, _ string) (session.Session, identity.User, error) {
	return session.Session{}, identity.User{}, session.ErrSessionNotFound
}

func (s *sweepCountingStore) Refresh(_ context.Context, _, _ string, _ time.Time) error {
	return session.ErrSessionNotFound
}

func (s *sweepCountingStore) ListActive(_ context.Context, _ string, _ time.Time) ([]session.Session, error) {
	return nil, nil
}

func (s *sweepCountingStore) GetForUser(_ context.Context, _, _ string, _ time.Time) (session.Session, error) {
	return session.Session{}, session.ErrSessionNotFound
}

func (s *sweepCountingStore) Terminate(_ context.Context, _, _ string, _ time.Time) error {
	return session.ErrSessionNotFound
}

func (s *sweepCountingStore) TerminateAll(_ context.Context, _ string, _ time.Time) (int64, error) {
	return 0, nil
}

func (s *sweepCountingStore) DeleteExpiredBefore(_ context.Context, _ time.Time) (int64, error) {
	s.sweeps.Add(1)
	return 2, nil
}

func TestRunSweeper_TicksAndStops(t *testing.T) {
	store := &sweepCountingStore{}

	cfg := session.DefaultConfig()
	cfg.SweepInterval = 5 * time.Millisecond
	cfg.SweepRetention = 0

	svc, err := session.NewService(cfg, []byte(testSecret), store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	m := NewMetrics(prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runSweeper(ctx, discardLogger(), svc, m)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.sweeps.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeper never ticked (sweeps=%d)", store.sweeps.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper did not stop on cancellation")
	}

	if got := testutil.ToFloat64(m.SessionsSwept); got < 4 {
		t.Fatalf("swept_total=%v want >= 4", got)
	}
	if got := testutil.ToFloat64(m.SweepRuns); got < 2 {
		t.Fatalf("sweep_runs_total=%v want >= 2", got)
	}
}
