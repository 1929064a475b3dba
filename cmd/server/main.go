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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"rolegate/internal/access"
	accessmetrics "rolegate/internal/access/metrics"
	"rolegate/internal/botops"
	botopshandler "rolegate/internal/botops/handler"
	httpapi "rolegate/internal/http"
	"rolegate/internal/issuer"
	issuerhandler "rolegate/internal/issuer/handler"
	issuermetrics "rolegate/internal/issuer/metrics"
	jwttoken "rolegate/internal/jwt_token"
	"rolegate/internal/platform/config"
	"rolegate/internal/platform/httpserver"
	"rolegate/internal/platform/logger"
	"rolegate/internal/platform/metrics"
	"rolegate/internal/platform/postgres"
	redisplatform "rolegate/internal/platform/redis"
	"rolegate/internal/roles"
	"rolegate/pkg/platform/audit"
	"rolegate/pkg/platform/audit/publisher"
	"rolegate/pkg/platform/audit/store/kafka"
	"rolegate/pkg/platform/audit/store/memory"
	pgstore "rolegate/pkg/platform/audit/store/postgres"
	redisstore "rolegate/pkg/platform/audit/store/redis"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in internal packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	if cfg.UsingDevSigningKey {
		log.Warn("JWT_SECRET not set, using the built-in development secret; credentials are forgeable")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry, err := buildRegistry(cfg.RoleRegistry)
	if err != nil {
		return err
	}
	log.Info("role registry loaded", "entries", registry.Len())

	store, closeStore, err := buildAuditStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	pub := publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
	)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	iss, err := issuer.New(registry, tokens,
		issuer.WithAuditPublisher(pub),
		issuer.WithMetrics(issuermetrics.New(reg)),
		issuer.WithLogger(log),
	)
	if err != nil {
		return err
	}
	engine, err := access.NewEngine(tokens, access.WithMetrics(accessmetrics.New(reg)))
	if err != nil {
		return err
	}
	guard, err := access.NewGuard(engine, log, access.WithAuditPublisher(pub))
	if err != nil {
		return err
	}
	ops, err := botops.New(botops.NewActivityLog(botops.DefaultActivityCapacity),
		botops.WithAuditPublisher(pub),
		botops.WithLogger(log),
	)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
	},
		issuerhandler.New(iss, log),
		botopshandler.New(ops, guard, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("backend listening", "addr", cfg.Addr, "audit_sink", cfg.Audit.Sink)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// drain buffered audit events once no request can emit more
		pub.Close()
		if err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func buildRegistry(raw string) (*roles.Registry, error) {
	entries := roles.DefaultEntries()
	if raw != "" {
		parsed, err := roles.ParseEntries(raw)
		if err != nil {
			return nil, fmt.Errorf("parse ROLE_REGISTRY: %w", err)
		}
		entries = parsed
	}
	return roles.NewRegistry(entries)
}

// buildAuditStore selects the configured sink. The returned func releases
// its connections and is always non-nil.
func buildAuditStore(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Store, func(), error) {
	noop := func() {}
	switch cfg.Audit.Sink {
	case config.AuditSinkRedis:
		client, err := redisplatform.New(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.New(client.Client), func() { _ = client.Close() }, nil

	case config.AuditSinkPostgres:
		db, err := postgres.Open(ctx, cfg.Audit.DatabaseDriver, cfg.Audit.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		store := pgstore.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return store, func() { _ = db.Close() }, nil

	case config.AuditSinkKafka:
		store, err := kafka.New(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			return nil, noop, err
		}
		if err := store.EnsureTopic(ctx, 3, 1); err != nil {
			// brokers may forbid topic creation; producing still works if the topic exists
			log.Warn("could not ensure audit topic", "topic", cfg.Audit.KafkaTopic, "error", err)
		}
		return store, store.Close, nil

	default:
		return memory.NewInMemoryStore(), noop, nil
	}
}
