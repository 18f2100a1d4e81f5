package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/listinghub/internal/config"
	"github.com/geocoder89/listinghub/internal/db"
	httpx "github.com/geocoder89/listinghub/internal/http"
	"github.com/geocoder89/listinghub/internal/http/middlewares"
	"github.com/geocoder89/listinghub/internal/observability"
	"github.com/geocoder89/listinghub/internal/redisclient"
	"github.com/geocoder89/listinghub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.WarnInsecureSecret() {
		log.Warn("JWT_SECRET is unset or the development default; tokens are forgeable until it is set")
	}

	if cfg.OTELEnabled {
		shutdownTracer, err := observability.InitTracer(ctx, cfg.Env, cfg.OTELEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(sctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}()
	}

	pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	if cfg.SeedDemo {
		if err := db.SeedDemo(ctx, pool, cfg.BcryptCost); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		log.Info("demo data ready", "email", db.DemoEmail)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	var counter middlewares.Counter
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx); err != nil {
			// the limiter fails open, so keep serving with a per-process counter
			log.Warn("redis unavailable, rate limiting per process", "addr", cfg.RedisAddr, "err", err)
		} else {
			counter = rdb
		}
	}

	router := httpx.NewRouter(log, cfg, httpx.Dependencies{
		Users:       postgres.NewUsersRepo(pool, prom),
		Posts:       postgres.NewPostsRepo(pool, prom),
		Ping:        pool.Ping,
		Prom:        prom,
		Gatherer:    reg,
		RateCounter: counter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "prefix", cfg.APIPrefix)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	sctx, cancel := config.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
