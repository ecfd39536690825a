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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"chainid/internal/contract/identityregistry"
	"chainid/internal/contract/paymentprocessor"
	jwttoken "chainid/internal/jwt_token"
	"chainid/internal/ledger"
	ledgermetrics "chainid/internal/ledger/metrics"
	"chainid/internal/outbox"
	outboxmetrics "chainid/internal/outbox/metrics"
	"chainid/internal/outbox/worker"
	"chainid/internal/platform/config"
	"chainid/internal/platform/health"
	"chainid/internal/platform/httpserver"
	"chainid/internal/platform/kafka/producer"
	"chainid/internal/platform/logger"
	"chainid/internal/seeder"
	httptransport "chainid/internal/transport/http"
	id "chainid/pkg/domain"
	"chainid/pkg/platform/middleware/request"
	"chainid/pkg/platform/tracer"
)

const (
	shutdownTimeout    = 10 * time.Second
	housekeepingPeriod = 5 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Contract logic lives in internal/contract.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "chainid:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing chainid",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"state_backend", cfg.StateBackend,
		"kafka_enabled", cfg.Kafka.Enabled(),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	healthHandler := health.New(cfg.Environment)

	store, err := openBackends(ctx, cfg, healthHandler, log)
	if err != nil {
		return err
	}
	defer store.Close(log)

	ledgerOpts := []ledger.Option{
		ledger.WithLogger(log),
		ledger.WithMetrics(ledgermetrics.New(reg)),
		ledger.WithTracer(tracer.NewOTel()),
	}
	if store.outbox != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithEventSink(outbox.NewSink(store.outbox)))
	}
	l := ledger.New(store.state, ledgerOpts...)
	registry := identityregistry.NewService(l)
	processor := paymentprocessor.NewService(l)

	if cfg.GenesisDeployer != "" {
		deployer, err := id.ParseAddress(cfg.GenesisDeployer)
		if err != nil {
			return fmt.Errorf("GENESIS_DEPLOYER: %w", err)
		}
		if _, err := seeder.New(l, registry, processor, log).Seed(ctx, deployer); err != nil {
			return fmt.Errorf("seed genesis contracts: %w", err)
		}
	}

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	deps := httptransport.Deps{
		Logger:            log,
		Registry:          registry,
		Processor:         processor,
		Apps:              l,
		Outbox:            store.outbox,
		Tokens:            jwttoken.NewJWTServiceAdapter(jwtService),
		OperatorTokenHash: cfg.Auth.OperatorTokenHash,
		Health:            healthHandler,
		Metrics:           request.NewMetrics(reg),
		Gatherer:          reg,
	}
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled() {
		prod, err := producer.New(producer.Config{
			Brokers:         cfg.Kafka.Brokers,
			Acks:            cfg.Kafka.Acks,
			Retries:         cfg.Kafka.Retries,
			DeliveryTimeout: cfg.Kafka.DeliveryTimeout,
		}, log)
		if err != nil {
			return err
		}
		defer prod.Close() //nolint:errcheck // flushes and logs on its own
		if err := prod.EnsureTopic(ctx, cfg.Kafka.Topic, 1, 1); err != nil {
			log.Warn("could not provision kafka topic; relying on auto-creation", "topic", cfg.Kafka.Topic, "error", err)
		}
		healthHandler.RegisterCheck("kafka", func(ctx context.Context) error {
			if !prod.Healthy(ctx) {
				return errors.New("brokers unreachable")
			}
			return nil
		})

		w := worker.New(store.outbox, prod,
			worker.WithTopic(cfg.Kafka.Topic),
			worker.WithBatchSize(cfg.Outbox.BatchSize),
			worker.WithPollInterval(cfg.Outbox.PollInterval),
			worker.WithMetrics(outboxmetrics.New(reg)),
			worker.WithLogger(log),
		)
		g.Go(func() error { return w.Run(gctx) })
		g.Go(func() error { return outboxHousekeeping(gctx, w, cfg.Outbox.Retention, log) })
	}

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(deps))
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// outboxHousekeeping refreshes the pending depth gauge and prunes published
// entries older than retention.
func outboxHousekeeping(ctx context.Context, w *worker.Worker, retention time.Duration, log *slog.Logger) error {
	ticker := time.NewTicker(housekeepingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.UpdateMetrics(ctx); err != nil && ctx.Err() == nil {
				log.Warn("failed to refresh outbox depth", "error", err)
			}
			if retention <= 0 {
				continue
			}
			if _, err := w.Prune(ctx, retention); err != nil && ctx.Err() == nil {
				log.Warn("failed to prune outbox", "error", err)
			}
		}
	}
}
