package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	biomarkerHandler "healthhub/internal/biomarker/handler"
	"healthhub/internal/biomarker/ingest"
	biomarkerMetrics "healthhub/internal/biomarker/metrics"
	"healthhub/internal/biomarker/service"
	"healthhub/internal/biomarker/store"
	jwttoken "healthhub/internal/jwt_token"
	"healthhub/internal/platform/config"
	"healthhub/internal/platform/httpserver"
	"healthhub/internal/platform/kafka"
	"healthhub/internal/platform/logger"
	"healthhub/internal/platform/metrics"
	"healthhub/internal/platform/postgres"
	platformRedis "healthhub/internal/platform/redis"
	httptransport "healthhub/internal/transport/http"
	"healthhub/pkg/platform/audit"
	"healthhub/pkg/platform/audit/publishers/compliance"
	auditmemory "healthhub/pkg/platform/audit/store/memory"
	auditpostgres "healthhub/pkg/platform/audit/store/postgres"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

type infra struct {
	db       *sql.DB
	redis    *platformRedis.Client
	consumer *kgo.Client
}

func (i *infra) close(log *slog.Logger) {
	if i.consumer != nil {
		i.consumer.Close()
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("closing postgres", "error", err)
		}
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	deps := &infra{}
	defer deps.close(log)

	appMetrics := metrics.New()
	bioMetrics := biomarkerMetrics.New(appMetrics.Registry)
	health := map[string]httptransport.HealthCheck{}

	var err error
	deps.db, err = postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}

	var (
		records service.RecordStore
		tx      service.TxRunner
		events  audit.Store
	)
	if deps.db != nil {
		pg := store.NewPostgres(deps.db)
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate record store: %w", err)
		}
		auditStore := auditpostgres.New(deps.db)
		if err := auditStore.Migrate(ctx); err != nil {
			return err
		}
		records, tx, events = pg, store.NewPostgresTx(deps.db), auditStore
		health["postgres"] = deps.db.PingContext
		log.Info("using postgres record store")
	} else {
		records, tx, events = store.NewInMemory(), store.NewInMemoryTx(), auditmemory.NewInMemoryStore()
		log.Warn("HEALTHHUB_POSTGRES_DSN not set, records are kept in memory")
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(bioMetrics),
		service.WithTx(tx),
		service.WithAuditor(compliance.New(events, compliance.WithLogger(log))),
	}

	deps.redis, err = platformRedis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if deps.redis != nil {
		opts = append(opts, service.WithCache(store.NewRedisCache(deps.redis.Client, cfg.CacheTTL)))
		health["redis"] = deps.redis.Health
		log.Info("record cache enabled", "ttl", cfg.CacheTTL)
	}

	svc, err := service.New(records, opts...)
	if err != nil {
		return err
	}

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Metrics:    appMetrics,
		Validator:  jwttoken.NewJWTServiceAdapter(tokens),
		Biomarkers: biomarkerHandler.New(svc, log),
		Health:     health,
	})

	deps.consumer, err = kafka.NewConsumer(cfg.Kafka)
	if err != nil {
		return err
	}
	if deps.consumer != nil {
		if err := kafka.EnsureTopic(ctx, deps.consumer, cfg.Kafka); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	srv := httpserver.New(cfg.Addr, router)
	g.Go(func() error {
		log.Info("starting healthhub", "addr", cfg.Addr)
		return httpserver.Run(ctx, srv, cfg.ShutdownTimeout)
	})

	if deps.consumer != nil {
		consumer := ingest.New(deps.consumer, svc,
			ingest.WithLogger(log),
			ingest.WithMetrics(bioMetrics),
		)
		g.Go(func() error {
			return consumer.Run(ctx)
		})
	} else {
		log.Info("HEALTHHUB_KAFKA_BROKERS not set, ingest consumer disabled")
	}

	return g.Wait()
}
