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

	"github.com/geocoder89/staffhub/internal/auth"
	"github.com/geocoder89/staffhub/internal/cache"
	"github.com/geocoder89/staffhub/internal/config"
	"github.com/geocoder89/staffhub/internal/db"
	httpx "github.com/geocoder89/staffhub/internal/http"
	"github.com/geocoder89/staffhub/internal/http/handlers"
	"github.com/geocoder89/staffhub/internal/notifications"
	"github.com/geocoder89/staffhub/internal/observability"
	"github.com/geocoder89/staffhub/internal/redisclient"
	"github.com/geocoder89/staffhub/internal/repo/cached"
	"github.com/geocoder89/staffhub/internal/repo/postgres"
	"github.com/geocoder89/staffhub/internal/session"
	"github.com/geocoder89/staffhub/internal/worker"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: "staffhub",
		Env:         cfg.Env,
		Endpoint:    cfg.OTELEndpoint,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	keys, err := auth.NewKeyring(cfg.SessionSecret, cfg.SessionIssuer, cfg.SessionTTL())
	if err != nil {
		log.Error("session keyring", "err", err)
		os.Exit(1)
	}
	codec := auth.NewCodec(keys)

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	usersRepo := postgres.NewUsersRepo(pool, prom)
	employeesRepo := postgres.NewEmployeesRepo(pool, prom)

	seedCtx, cancelSeed := context.WithTimeout(ctx, 5*time.Second)
	created, err := db.EnsureAdminUser(seedCtx, usersRepo, cfg)
	cancelSeed()
	if err != nil {
		log.Error("admin seeding failed", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("bootstrap admin created", "email", cfg.AdminEmail)
	}

	ready := map[string]handlers.Pinger{"postgres": pool}
	sweepTargets := map[string]worker.Sweepable{}

	var revocations auth.RevocationStore
	rc, err := connectRedis(ctx, cfg)
	switch {
	case err == nil && rc != nil:
		defer func() { _ = rc.Close() }()
		revocations = auth.NewRedisRevocations(rc.Raw())
		ready["redis"] = rc
	case err != nil && cfg.IsProd():
		log.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
		os.Exit(1)
	default:
		if err != nil {
			log.Warn("redis unavailable, sign-out revocations kept in memory", "addr", cfg.RedisAddr, "err", err)
		}
		mem := auth.NewMemoryRevocations()
		revocations = mem
		sweepTargets["revocations"] = mem
	}

	userCache := cache.New(30 * time.Second)
	sweepTargets["users"] = userCache

	resolver := session.NewResolver(codec, revocations, session.Observers{
		session.NewLogObserver(log),
		prom,
	})

	router := httpx.NewRouter(httpx.Deps{
		Log:         log,
		Cfg:         cfg,
		Prom:        prom,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Resolver:    resolver,
		Tokens:      codec,
		Revocations: revocations,
		Users:       cached.NewUsers(usersRepo, userCache),
		Employees:   employeesRepo,
		Notifier:    notifications.NewProtectedNotifier(notifications.NewLogNotifier(log), notifications.ProtectedNotifierConfig{}),
		Ready:       ready,
	})

	sweeper := worker.NewSweeper(worker.Config{Interval: time.Minute}, sweepTargets, log)
	go func() {
		_ = sweeper.Run(ctx)
	}()

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	// Graceful shutdown

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctxTimeOut := 10 * time.Second

		ctx, cancel := config.WithTimeout(ctxTimeOut)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// connectRedis returns nil, nil when no redis is configured. config.Load
// already refuses that in prod.
func connectRedis(ctx context.Context, cfg config.Config) (*redisclient.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	var rc *redisclient.Client
	err := worker.Retry(ctx, 3, 500*time.Millisecond, 5*time.Second, func(ctx context.Context) error {
		c, err := redisclient.Connect(ctx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		rc = c
		return nil
	})

	return rc, err
}
