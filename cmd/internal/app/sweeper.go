package app

import (
	"context"
	"time"

	"gatehouse/cmd/internal/auth/session"
)

// runSweeper periodically removes long-expired sessions. It blocks
// until ctx is cancelled; the caller runs it on its own goroutine.
func runSweeper(ctx context.Context, log Logger, sessions *session.Service, m *Metrics) {
	interval := sessions.SweepInterval()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("sweeper.start", "interval", interval.String())

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper.stop")
			return
		case <-ticker.C:
			deleted, err := sessions.SweepExpired(ctx, time.Now())
			if err != nil {
				// Transient store errors are retried on the next tick.
				log.Error("sweeper.fail", "err", err)
				continue
			}
			if m != nil {
				m.SweepRuns.Inc()
				m.SessionsSwept.Add(float64(deleted))
			}
			if deleted > 0 {
				log.Info("sweeper.done", "deleted", deleted)
			}
		}
	}
}
