package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	appauth "github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/backend"
	"github.com/jw6ventures/carrental-console/internal/config"
	"github.com/jw6ventures/carrental-console/internal/console"
	httpserver "github.com/jw6ventures/carrental-console/internal/http"
	"github.com/jw6ventures/carrental-console/internal/store"
	"github.com/jw6ventures/carrental-console/internal/tracing"
)

func main() {
	log.Println("Starting car rental console...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	tp, err := tracing.NewProvider(ctx, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Printf("tracer shutdown failed: %v", err)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	var (
		sessionBackend appauth.SessionBackend
		checks         []httpserver.HealthChecker
	)
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		rb := appauth.NewRedisBackend(client)
		sessionBackend, checks = rb, append(checks, rb)
		log.Printf("sessions stored in redis at %s", cfg.Redis.Addr)

	case config.SessionStorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("create db pool: %w", err)
		}
		defer pool.Close()

		if err := store.ApplyMigrations(ctx, pool); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		stor := store.New(pool)
		sessionBackend, checks = stor.Sessions, append(checks, stor)
		g.Go(func() error { return stor.Sessions.PurgeLoop(ctx, 10*time.Minute) })
		log.Println("sessions stored in postgres")
	}

	sessions, err := appauth.NewSessionManager(cfg, sessionBackend)
	if err != nil {
		return fmt.Errorf("init sessions: %w", err)
	}
	api := backend.New(cfg.Backend.URL, backend.NewHTTPClient(cfg.Backend.Timeout))
	authService := appauth.NewService(api, sessions)
	registry := console.NewRegistry(cfg.UI.ViewStateSize, cfg.Session.TTL)

	r := httpserver.NewRouter(cfg, authService, registry, httpserver.LoginLimiter(cfg), checks...)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		log.Printf("server listening on %s, backend %s", cfg.ListenAddr, cfg.Backend.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Printf("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
