package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/exaring/otelpgx"
	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/automaxprocs/maxprocs"

	appErasure "github.com/ecomops/privacy-engine/internal/app/erasure"
	appExport "github.com/ecomops/privacy-engine/internal/app/export"
	"github.com/ecomops/privacy-engine/internal/config"
	"github.com/ecomops/privacy-engine/internal/domain/erasure"
	"github.com/ecomops/privacy-engine/internal/domain/events"
	exportdomain "github.com/ecomops/privacy-engine/internal/domain/export"
	"github.com/ecomops/privacy-engine/internal/infra/eventbus/kafka"
	"github.com/ecomops/privacy-engine/internal/infra/export/render"
	"github.com/ecomops/privacy-engine/internal/infra/exporters"
	"github.com/ecomops/privacy-engine/internal/infra/processors/anonymize"
	"github.com/ecomops/privacy-engine/internal/infra/processors/deletion"
	erasurestore "github.com/ecomops/privacy-engine/internal/infra/storage/erasure/postgres"
	"github.com/ecomops/privacy-engine/pkg/common"
	"github.com/ecomops/privacy-engine/pkg/common/logger"
	"github.com/ecomops/privacy-engine/pkg/common/otel"
)

const serviceType = "erasured"

func main() {
	_, _ = maxprocs.Set()

	hostname, err := os.Hostname()
	if err != nil {
		log.Fatalf("failed to get hostname: %v", err)
	}

	logEvents := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			errorAttrs := map[string]any{
				"error_message": r.Message,
				"error_time":    r.Time.UTC().Format(time.RFC3339),
				"trace_id":      otel.GetTraceID(ctx),
			}
			for k, v := range r.Attributes {
				errorAttrs[k] = v
			}

			errorAttrsJSON, err := json.Marshal(errorAttrs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to marshal error attributes: %v\n", err)
				return
			}

			fmt.Fprintf(os.Stderr, "Error event: %s, details: %s\n", r.Message, errorAttrsJSON)
		},
	}

	traceIDFn := func(ctx context.Context) string {
		return otel.GetTraceID(ctx)
	}

	svcName := fmt.Sprintf("ERASURED-%s", hostname)
	metadata := map[string]string{
		"service":  svcName,
		"hostname": hostname,
		"app":      serviceType,
	}

	logg := logger.NewWithMetadata(os.Stdout, logger.LevelInfo, svcName, traceIDFn, logEvents, metadata)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("PRIVACY_CONFIG"))
	if err != nil {
		logg.Error(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	tracer := trace.Tracer(noop.NewTracerProvider().Tracer(serviceType))
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		prob, err := strconv.ParseFloat(os.Getenv("OTEL_SAMPLING_RATIO"), 64)
		if err != nil {
			prob = 1
		}
		tp, telemetryTeardown, err := otel.InitTelemetry(logg, otel.Config{
			ServiceName:      svcName,
			ExporterEndpoint: endpoint,
			Probability:      prob,
			ResourceAttributes: map[string]string{
				"library.language": "go",
				"service.type":     serviceType,
			},
		})
		if err != nil {
			logg.Error(ctx, "failed to initialize telemetry", "error", err)
			os.Exit(1)
		}
		defer telemetryTeardown(context.Background())
		tracer = tp.Tracer(serviceType)
	}

	pool, err := connectDB(ctx, cfg.Database, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := runMigrations(pool, cfg.Database.MigrationsDir); err != nil {
		logg.Error(ctx, "failed to run migrations", "error", err)
		os.Exit(1)
	}

	var publisher events.DomainEventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := kafka.NewDomainEventPublisher(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, logg, tracer)
		if err != nil {
			logg.Error(ctx, "failed to create kafka publisher", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	anonymizePool := appErasure.NewProcessorPool(erasure.StrategyAnonymize, logg, tracer)
	anonymizePool.Register("customer", anonymize.NewCustomerProcessor(pool, cfg.Erasure.RemoveCustomerNoOrders, tracer))
	anonymizePool.Register("order", anonymize.NewOrderProcessor(pool, tracer))
	anonymizePool.Register("subscriber", anonymize.NewSubscriberProcessor(pool, tracer))

	deletePool := appErasure.NewProcessorPool(erasure.StrategyDelete, logg, tracer)
	deletePool.Register("customer", deletion.NewCustomerProcessor(pool, tracer))
	deletePool.Register("order", deletion.NewOrderProcessor(pool, tracer))
	deletePool.Register("subscriber", deletion.NewSubscriberProcessor(pool, tracer))

	registry := appErasure.NewComponentStrategyRegistry(
		erasure.ParseStrategy(cfg.Erasure.DefaultStrategy),
		cfg.Erasure.AnonymizeComponents,
		cfg.Erasure.DeleteComponents,
		anonymizePool,
		deletePool,
	)
	if err := registry.Validate(); err != nil {
		logg.Error(ctx, "invalid erasure strategy configuration", "error", err)
		os.Exit(1)
	}

	dispatcher := appErasure.NewStrategyDispatcher(registry, anonymizePool, deletePool, logg, tracer)
	repo := erasurestore.NewRequestStore(pool, tracer)
	clock := erasure.SystemTimeProvider()
	manager := appErasure.NewLifecycleManager(repo, dispatcher, cfg.Erasure.TimeLapse, clock, publisher, logg, tracer)

	limiter := common.NewRateLimiter(cfg.Scheduler.RatePerSecond, cfg.Scheduler.Burst)
	scheduler := appErasure.NewScheduler(
		cfg.Enabled, cfg.Erasure.Enabled, manager, repo, clock, limiter, logg, tracer,
	)

	// The export pipeline is wired for completeness; the download surface
	// that consumes it lives outside this service.
	exportMgmt := appExport.NewManagement(
		appExport.NewRendererStrategy(cfg.Export.Renderer, map[string]exportdomain.Renderer{
			"json": render.JSON{},
			"yaml": render.YAML{},
			"csv":  render.CSV{},
		}),
		cfg.Export.Directory,
		logg,
		tracer,
	)
	exportMgmt.Register("customer", exporters.NewCustomerExporter(pool, cfg.Export.CustomerAttributes, cfg.Export.AddressAttributes, tracer))
	exportMgmt.Register("order", exporters.NewOrderExporter(pool, tracer))
	exportMgmt.Register("subscriber", exporters.NewSubscriberExporter(pool, tracer))

	logg.Info(ctx, "Erasure scheduler starting",
		"interval", cfg.Scheduler.Interval.String(),
		"grace_period", cfg.Erasure.TimeLapse.String())

	ticker := time.NewTicker(cfg.Scheduler.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			logg.Info(ctx, "Shutdown signal received")
			return
		case <-ticker.C:
			if err := scheduler.Run(ctx); err != nil {
				logg.Error(ctx, "erasure batch run interrupted", "error", err)
			}
		}
	}
}

// connectDB opens the pgx pool with tracing enabled and waits for the
// database to come up, retrying with exponential backoff.
func connectDB(ctx context.Context, cfg config.DatabaseConfig, logg *logger.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			logg.Warn(ctx, "database not ready, retrying", "error", err)
			return err
		}
		return nil
	}
	if err := backoff.Retry(ping, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// runMigrations applies any pending schema migrations.
func runMigrations(pool *pgxpool.Pool, migrationsDir string) error {
	db := stdlib.OpenDBFromPool(pool)

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	migrations, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := migrations.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
