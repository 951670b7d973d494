package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"hipservice/internal/discovery/linkage"
	"hipservice/internal/discovery/matcher"
	discoverymetrics "hipservice/internal/discovery/metrics"
	"hipservice/internal/discovery/ports"
	discoveryservice "hipservice/internal/discovery/service"
	"hipservice/internal/discovery/store/request"
	linkservice "hipservice/internal/link/service"
	linkstore "hipservice/internal/link/store"
	"hipservice/internal/openmrs"
	"hipservice/internal/platform/config"
	"hipservice/internal/platform/httpserver"
	"hipservice/internal/platform/logger"
	"hipservice/internal/platform/metrics"
	"hipservice/internal/platform/middleware"
	"hipservice/internal/platform/postgres"
	platformredis "hipservice/internal/platform/redis"
	"hipservice/internal/userauth"
	userauthstore "hipservice/internal/userauth/store"
	"hipservice/pkg/platform/audit"
	"hipservice/pkg/platform/audit/outbox"
	"hipservice/pkg/platform/audit/publisher"
	auditmemory "hipservice/pkg/platform/audit/store/memory"
	auditpostgres "hipservice/pkg/platform/audit/store/postgres"
)

const shutdownGrace = 15 * time.Second

// linkStore is read by discovery and written by the add-contexts flow.
type linkStore interface {
	ports.LinkageStore
	linkservice.LinkStore
}

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gateway API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations before serving")
	return cmd
}

// application holds the wired components and what must be released on exit.
type application struct {
	logger    *slog.Logger
	registry  *prometheus.Registry
	db        *sql.DB
	redis     *platformredis.Client
	kafka     *kgo.Client
	publisher *publisher.Publisher
	routes    routerDeps
}

func (a *application) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	app, err := wire(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	if migrate && app.db != nil {
		applied, err := postgres.Migrate(ctx, app.db)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "migrations applied", "count", len(applied))
	}

	srv := httpserver.New(cfg.Server.Addr, newRouter(app.routes))
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.InfoContext(ctx, "starting hipservice", "addr", cfg.Server.Addr, "durable", app.db != nil)
		return httpserver.Serve(ctx, srv, shutdownGrace)
	})
	if app.kafka != nil {
		relay := outbox.NewRelay(app.db, app.kafka, cfg.Kafka.AuditTopic,
			outbox.WithBatchSize(cfg.Outbox.BatchSize),
			outbox.WithInterval(cfg.Outbox.PollInterval),
			outbox.WithLogger(log),
		)
		group.Go(func() error {
			log.InfoContext(ctx, "starting audit outbox relay", "topic", cfg.Kafka.AuditTopic)
			return relay.Run(ctx)
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("hipservice stopped")
	return nil
}

// wire builds every component from cfg. Without a Postgres DSN the stores are
// in memory; without a Redis URL handshake state is in process.
func wire(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{logger: log, registry: prometheus.NewRegistry()}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	fail := func(err error) (*application, error) {
		app.Close()
		return nil, err
	}

	var (
		requests   ports.AuditStore
		links      linkStore
		auditStore audit.Store
	)
	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return fail(err)
		}
		app.db = db
		requests = request.NewPostgres(db)
		links = linkstore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
	} else {
		log.WarnContext(ctx, "HIP_POSTGRES_DSN not set, using in-memory stores")
		requests = request.NewInMemory()
		links = linkstore.NewInMemory()
		auditStore = auditmemory.NewInMemoryStore()
	}

	if len(cfg.Kafka.Brokers) > 0 {
		client, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.Kafka.Brokers...),
			kgo.DefaultProduceTopic(cfg.Kafka.AuditTopic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
		)
		if err != nil {
			return fail(fmt.Errorf("kafka client: %w", err))
		}
		app.kafka = client
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	app.redis = redisClient
	var sessions userauth.Store
	if redisClient != nil {
		sessions = userauthstore.NewRedis(redisClient.Client)
	} else {
		sessions = userauthstore.NewInMemory(time.Minute)
	}

	app.publisher = publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(1024),
		publisher.WithLogger(log),
	)

	openmrsClient := openmrs.NewClient(cfg.OpenMRS,
		openmrs.WithLogger(log),
		openmrs.WithMetrics(openmrs.NewMetrics(app.registry)),
	)
	discovery := discoveryservice.New(
		requests,
		matcher.New(openmrs.NewPatientLookup(openmrsClient), matcher.WithLogger(log)),
		linkage.New(links, openmrs.NewCareContextRepository(openmrsClient)),
		discoveryservice.WithLogger(log),
		discoveryservice.WithMetrics(discoverymetrics.New(app.registry)),
		discoveryservice.WithAuditPublisher(app.publisher),
	)
	auth := userauth.New(sessions, cfg.Session.TransactionTTL, cfg.Session.MaxTokenTTL,
		userauth.WithLogger(log),
		userauth.WithAuditPublisher(app.publisher),
	)

	linking := linkservice.New(auth, links,
		linkservice.WithLogger(log),
		linkservice.WithAuditPublisher(app.publisher),
	)

	var validator middleware.GatewayValidator
	if cfg.Server.GatewaySigningKey != "" {
		validator = middleware.NewHMACValidator([]byte(cfg.Server.GatewaySigningKey))
	} else {
		log.WarnContext(ctx, "HIP_GATEWAY_SIGNING_KEY not set, gateway token check disabled")
	}

	app.routes = routerDeps{
		logger:         log,
		registry:       app.registry,
		httpMetrics:    metrics.New(app.registry),
		requestTimeout: cfg.Server.RequestTimeout,
		validator:      validator,
		discovery:      discovery,
		userAuth:       auth,
		links:          linking,
		health:         healthChecks(app),
	}
	return app, nil
}

func healthChecks(app *application) map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if app.db != nil {
		db := app.db
		checks["postgres"] = func(ctx context.Context) error { return postgres.Health(ctx, db) }
	}
	if app.redis != nil {
		checks["redis"] = app.redis.Health
	}
	return checks
}
