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

	adminAdapters "eventgate/internal/admin/adapters"
	adminHandler "eventgate/internal/admin/handler"
	"eventgate/internal/admin/seed"
	adminService "eventgate/internal/admin/service"
	"eventgate/internal/auth/device"
	authHandler "eventgate/internal/auth/handler"
	"eventgate/internal/auth/password"
	authService "eventgate/internal/auth/service"
	catalogHandler "eventgate/internal/catalog/handler"
	catalogMetrics "eventgate/internal/catalog/metrics"
	catalogService "eventgate/internal/catalog/service"
	checkinHandler "eventgate/internal/checkin/handler"
	checkinMetrics "eventgate/internal/checkin/metrics"
	checkinService "eventgate/internal/checkin/service"
	"eventgate/internal/decision"
	decisionMetrics "eventgate/internal/decision/metrics"
	jwttoken "eventgate/internal/jwt_token"
	"eventgate/internal/platform/config"
	"eventgate/internal/platform/httpserver"
	"eventgate/internal/platform/logger"
	"eventgate/internal/platform/metrics"
	platformRedis "eventgate/internal/platform/redis"
	"eventgate/internal/ratelimit"
	rateLimitMetrics "eventgate/internal/ratelimit/metrics"
	rateLimitMiddleware "eventgate/internal/ratelimit/middleware"
	"eventgate/internal/ratelimit/store/bucket"
	"eventgate/internal/storage"
	"eventgate/internal/storage/memory"
	"eventgate/internal/storage/postgres"
	redisStore "eventgate/internal/storage/redis"
	httptransport "eventgate/internal/transport/http"
	"eventgate/pkg/platform/audit"
	auditKafka "eventgate/pkg/platform/audit/kafka"
	auditPublisher "eventgate/pkg/platform/audit/publisher"
	auditMemory "eventgate/pkg/platform/audit/store/memory"
	auditPostgres "eventgate/pkg/platform/audit/store/postgres"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// infra is the set of connections opened at start-up.
type infra struct {
	docs    storage.DocumentStore
	audit   audit.Store
	redis   *platformRedis.Client
	health  map[string]httptransport.HealthCheck
	closers []func()
}

func (i *infra) close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		i.closers[n]()
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	in, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.close()

	sinks := []audit.Sink{}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := auditKafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, auditKafka.WithLogger(log))
		if err != nil {
			return fmt.Errorf("audit kafka sink: %w", err)
		}
		defer sink.Close(context.Background())
		sinks = append(sinks, sink)
		log.Info("audit stream enabled", "topic", cfg.Kafka.Topic)
	}
	publisher := auditPublisher.NewPublisher(in.audit,
		auditPublisher.WithSinks(sinks...),
		auditPublisher.WithAsyncBuffer(1024),
		auditPublisher.WithLogger(log),
	)
	defer publisher.Close()

	users := storage.NewUserRepository(in.docs)
	perks := storage.NewPerkRepository(in.docs)
	events := storage.NewEventRepository(in.docs)
	content := storage.NewContentRepository(in.docs)
	accessLogs := storage.NewAccessLogRepository(in.docs)

	hasher := password.NewHasher(0)
	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	devices := device.NewService(true)
	platformMetrics := metrics.New()
	engine := decision.NewEngine(decision.WithMetrics(decisionMetrics.New()), decision.WithLogger(log))

	authSvc := authService.New(users, tokens, hasher,
		authService.WithLogger(log),
		authService.WithAuditPublisher(publisher),
		authService.WithMetrics(platformMetrics),
		authService.WithAccessLogs(accessLogs),
	)
	catalogSvc := catalogService.New(perks, events, content, engine,
		catalogService.WithLogger(log),
		catalogService.WithAuditPublisher(publisher),
		catalogService.WithMetrics(catalogMetrics.New()),
	)
	checkinSvc := checkinService.New(events, users, accessLogs,
		checkinService.WithLogger(log),
		checkinService.WithAuditPublisher(publisher),
		checkinService.WithMetrics(checkinMetrics.New()),
	)
	adminSvc := adminService.New(users, adminAdapters.NewUserCreatorAdapter(authSvc), hasher,
		adminService.WithLogger(log),
		adminService.WithAuditPublisher(publisher),
		adminService.WithAuditLog(publisher),
	)

	if cfg.SeedDev {
		if err := seed.Run(ctx, authSvc, catalogSvc, log); err != nil {
			return fmt.Errorf("seed development data: %w", err)
		}
	}

	var buckets ratelimit.BucketStore = bucket.NewInMemoryBucketStore()
	if cfg.RateLimit.Backend == config.BackendRedis && in.redis != nil {
		buckets = bucket.NewRedisBucketStore(in.redis.Client)
	}
	limiter := rateLimitMiddleware.New(
		ratelimit.NewSlidingWindow(buckets, cfg.RateLimit.Max, cfg.RateLimit.Window),
		log,
		rateLimitMiddleware.WithDisabled(cfg.RateLimit.Disabled),
		rateLimitMiddleware.WithMetrics(rateLimitMetrics.New()),
	)

	auth := authHandler.New(authSvc, authHandler.CookieConfig{Secure: cfg.Auth.SecureCookies, TTL: cfg.Auth.TokenTTL}, log)
	catalog := catalogHandler.New(catalogSvc, log)
	checkin := checkinHandler.New(checkinSvc, log)
	admin := adminHandler.New(adminSvc, log)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:    log,
		Metrics:   platformMetrics,
		Resolver:  authSvc,
		Devices:   devices,
		RateLimit: limiter.RateLimit,
		Health:    in.health,

		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
		Public:            []httptransport.PublicRoutes{auth, catalog},
		Session:           []httptransport.SessionRoutes{auth, catalog, checkin},
		Admin:             []httptransport.AdminRoutes{catalog, admin},
	})

	srv := httpserver.New(cfg.Server, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting eventgate", "addr", cfg.Server.Addr, "store", cfg.Store.Backend, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{health: map[string]httptransport.HealthCheck{}}

	rc, err := platformRedis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		in.redis = rc
		in.health["redis"] = rc.Health
		in.closers = append(in.closers, func() { _ = rc.Close() })
	}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		if err := postgres.Migrate(cfg.Store.PostgresDSN, log); err != nil {
			in.close()
			return nil, err
		}
		pool, err := postgres.Connect(ctx, cfg.Store.PostgresDSN, cfg.Store.PostgresMaxConns, log)
		if err != nil {
			in.close()
			return nil, err
		}
		in.closers = append(in.closers, pool.Close)
		store := postgres.New(pool)
		in.docs = store
		in.audit = auditPostgres.New(pool)
		in.health["postgres"] = store.Ping
	case config.BackendRedis:
		in.docs = redisStore.New(rc.Client)
		in.audit = auditMemory.NewInMemoryStore()
	default:
		in.docs = memory.New()
		in.audit = auditMemory.NewInMemoryStore()
	}
	return in, nil
}
