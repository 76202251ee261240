package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/cache"
	"staffdesk.io/internal/config"
	"staffdesk.io/internal/hr"
	"staffdesk.io/internal/httpapi"
	"staffdesk.io/internal/migrate"
	"staffdesk.io/internal/obs"
	"staffdesk.io/internal/seed"
	"staffdesk.io/internal/store/pg"
	"staffdesk.io/internal/stream"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx); err != nil {
		obs.Error("fatal", map[string]any{"error": err.Error()})
		log.SetFlags(0)
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var stats hr.StatsCache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		rc, err := cache.Dial(dialCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cache.WithTTL(cfg.Redis.StatsTTL))
		cancel()
		if err != nil {
			obs.Warn("stats_cache_disabled", map[string]any{"error": err.Error()})
		} else {
			defer rc.Close()
			stats = rc
		}
	}

	feed := stream.New()
	svc := hr.NewService(store,
		hr.WithLocation(loc),
		hr.WithStatsCache(stats),
		hr.WithPublisher(feed),
	)

	if cfg.SeedOnStart {
		if _, err := seed.Run(ctx, svc); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret,
		auth.WithIssuer(cfg.Auth.Issuer),
		auth.WithTTL(cfg.Auth.TokenTTL),
	)
	if err != nil {
		return err
	}

	api := httpapi.New(svc, tokens, feed, httpapi.Options{
		Version:      version,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		RateBurst:    cfg.HTTP.RateBurst,
		RatePerSec:   cfg.HTTP.RatePerSec,
		CookieSecure: cfg.Auth.CookieSecure,
		TrustProxy:   cfg.HTTP.TrustProxy,
	})

	// No WriteTimeout: the attendance event stream is long lived.
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
	}
	grpcSrv := grpc.NewServer()
	health := httpapi.NewGRPCHealth(httpapi.ReadyFunc(svc.Ping))
	health.Register(grpcSrv)
	go health.Run(ctx, 15*time.Second)

	errc := make(chan error, 2)
	go func() {
		obs.Info("http_listening", map[string]any{"addr": srv.Addr, "version": version})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		obs.Info("grpc_listening", map[string]any{"addr": cfg.GRPCAddr})
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errc <- fmt.Errorf("grpc: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errc:
	}
	obs.Info("shutting_down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		obs.Warn("http_shutdown", map[string]any{"error": serr.Error()})
	}
	grpcSrv.GracefulStop()
	obs.Info("stopped", nil)
	return err
}

// openStore returns Postgres when a DSN is configured and the in-memory
// store otherwise.
func openStore(ctx context.Context, cfg config.Config) (hr.Store, func(), error) {
	if cfg.Postgres.DSN == "" {
		obs.Warn("using_memory_store", map[string]any{"reason": "DB_DSN is empty"})
		return hr.NewInMemory(), func() {}, nil
	}
	store, err := pg.Open(cfg.Postgres.DSN, cfg.Postgres.MaxOpenConns)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}
	if cfg.Postgres.RunMigrations {
		applied, err := migrate.NewManager(store.DB()).Up(ctx)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		obs.Info("migrations_applied", map[string]any{"applied": applied})
	}
	return store, func() { _ = store.Close() }, nil
}
