// Package app wires the Arc server runtime: config, logging, the database
// pool, and the auth HTTP surface.
//
// It is intentionally small and deterministic to keep CI gates strict and
// behavior predictable.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"arc/cmd/identity"
	"arc/cmd/internal/auth"
	api "arc/cmd/internal/auth/api"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App is the Arc server runtime: it owns HTTP server wiring and the
// database pool backing every repository.
type App struct {
	cfg Config
	log Logger

	dbPool *pgxpool.Pool

	auth *api.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	identity.ConfigureTokenAudience(cfg.JWTAudience, cfg.JWTIssuer)

	pool, err := NewDBPool(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	svc := auth.NewService(
		pool,
		auth.NewPostgresUserRepository(),
		auth.NewPostgresSessionRepository(),
		auth.NewPostgresKeyPairRepository(),
		auth.SystemClock{},
		auth.CryptoRandomService{},
		cfg.SessionTTL,
		cfg.AccessTokenTTL,
	)

	authCfg := api.LoadConfigFromEnv()
	authHandler := api.NewHandler(log, svc, authCfg)

	return &App{
		cfg:    cfg,
		log:    log,
		dbPool: pool,
		auth:   authHandler,
	}, nil
}

// Run starts the HTTP server (and, if configured, a separate metrics
// listener) and blocks until context cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.auth)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithSecurityHeaders(WithCORS(WithRequestLogging(mux, a.log), a.cfg, a.log)),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	var metricsSrv *http.Server
	if a.cfg.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: a.cfg.MetricsAddr, Handler: metricsMux}
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	errCh := make(chan error, 2)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if metricsSrv != nil {
		a.log.Info("metrics.start", "addr", a.cfg.MetricsAddr)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

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
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("metrics.shutdown.fail", "err", err)
		}
	}

	a.dbPool.Close()

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
