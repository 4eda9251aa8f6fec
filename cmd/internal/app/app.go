// Package app wires the gatehouse runtime: config, logging, DB pool,
// migrations, HTTP routes, and the session sweeper.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/internal/auth/account"
	"gatehouse/cmd/internal/auth/api"
	"gatehouse/cmd/internal/auth/session"
	"gatehouse/cmd/security/password"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// App is the gatehouse runtime: it owns the HTTP server, the DB pool,
// and the background sweeper.
type App struct {
	cfg Config
	log Logger

	pool *pgxpool.Pool

	auth     *api.Handler
	sessions *session.Service

	metrics *Metrics
}

// New constructs a fully wired App: it validates DB connectivity, runs
// migrations, and assembles the account/session/API services.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		pool.Close()
		return nil, err
	}

	a, err := build(cfg, log, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func build(cfg Config, log Logger, pool *pgxpool.Pool) (*App, error) {
	users, err := identity.NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}

	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	accounts, err := account.NewService(users, pwCfg)
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	sessStore, err := session.NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewService(sessCfg, cfg.SessionKey, sessStore)
	if err != nil {
		return nil, err
	}

	auth, err := api.NewHandler(
		ServiceLogger(log, "auth.api"),
		api.LoadConfigFromEnv(cfg.Environment),
		pool,
		accounts,
		sessions,
		sessCfg.TTL,
	)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		log:      log,
		pool:     pool,
		auth:     auth,
		sessions: sessions,
		metrics:  NewMetrics(prometheus.DefaultRegisterer),
	}, nil
}

// Run starts the HTTP server and the session sweeper, then blocks until
// context cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.pool, a.auth)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, ServiceLogger(a.log, "http"), a.metrics),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go runSweeper(sweepCtx, ServiceLogger(a.log, "sweeper"), a.sessions, a.metrics)

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "environment", a.cfg.Environment)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.pool.Close()

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
