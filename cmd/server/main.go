package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jefflewis/archaeopteryx/internal/api/handlers/mastodon"
	"github.com/jefflewis/archaeopteryx/internal/atclient"
	"github.com/jefflewis/archaeopteryx/internal/cache"
	"github.com/jefflewis/archaeopteryx/internal/config"
	"github.com/jefflewis/archaeopteryx/internal/oauth"
	"github.com/jefflewis/archaeopteryx/internal/ratelimit"
)

func main() {
	cfg := config.ConfigFromEnv()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := cfg.Validate(); err != nil {
		slog.Error("[SERVER] invalid configuration", "error", err)
		os.Exit(1)
	}

	c := newCache(cfg)
	if pinger, ok := c.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(context.Background()); err != nil {
			slog.Error("[SERVER] cache backend unreachable", "error", err)
			os.Exit(1)
		}
	}
	defer func() {
		if closer, ok := c.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				slog.Error("[SERVER] failed to close cache", "error", err)
			}
		}
	}()

	if cfg.CookieSecret == "" {
		slog.Error("[SERVER] OAUTH_COOKIE_SECRET not configured")
		os.Exit(1)
	}
	if err := oauth.InitCookieStore(cfg.CookieSecret); err != nil {
		slog.Error("[SERVER] failed to initialize cookie store", "error", err)
		os.Exit(1)
	}

	store := oauth.NewCacheStore(c)
	upstream := atclient.NewUpstreamClient(cfg.ATProtoPDSURL)
	oauthServer := oauth.NewServer(store, store, store, upstream)

	unauthLimiter := ratelimit.New(c, ratelimit.DefaultUnauthLimit, ratelimit.DefaultWindow)
	authLimiter := ratelimit.New(c, ratelimit.DefaultAuthLimit, ratelimit.DefaultWindow)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(ratelimit.Middleware(unauthLimiter, authLimiter))

	r.Get("/health", handleHealth)

	if err := mastodon.Mount(r, oauthServer, cfg.Hostname); err != nil {
		slog.Error("[SERVER] failed to mount Mastodon API", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("[SERVER] listening", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[SERVER] listen failed", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(srv)
}

// waitForShutdown blocks until SIGINT/SIGTERM, then drains in-flight
// requests within config.ShutdownTimeout (spec.md §5's "started before
// the HTTP surface accepts traffic and drained after" lifecycle rule).
func waitForShutdown(srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("[SERVER] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("[SERVER] graceful shutdown failed", "error", err)
	}
}

func newCache(cfg config.Config) cache.Cache {
	if cfg.CacheHost == "" {
		return cache.NewMemoryCache()
	}
	return cache.NewRedisCache(cache.RedisConfig{
		Host:     cfg.CacheHost,
		Port:     cfg.CachePort,
		Password: cfg.CachePassword,
		Database: cfg.CacheDatabase,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("[SERVER] failed to write health check response", "error", err)
	}
}
