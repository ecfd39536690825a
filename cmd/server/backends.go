package main

import (
	"context"
	"fmt"
	"log/slog"

	"chainid/internal/ledger/state"
	statememory "chainid/internal/ledger/state/memory"
	statepostgres "chainid/internal/ledger/state/postgres"
	stateredis "chainid/internal/ledger/state/redis"
	"chainid/internal/outbox"
	outboxmemory "chainid/internal/outbox/store/memory"
	outboxpostgres "chainid/internal/outbox/store/postgres"
	"chainid/internal/platform/config"
	"chainid/internal/platform/database"
	"chainid/internal/platform/health"
	"chainid/internal/platform/redis"
	"chainid/migrations"
)

// backends holds the storage the ledger and outbox run on.
type backends struct {
	state  state.Store
	outbox outbox.Store // nil when events are only logged
	close  []func() error
}

func (b *backends) Close(log *slog.Logger) {
	for i := len(b.close) - 1; i >= 0; i-- {
		if err := b.close[i](); err != nil {
			log.Warn("failed to close backend", "error", err)
		}
	}
}

// openBackends selects the state store from STATE_BACKEND. The outbox is
// durable whenever a database is configured; otherwise it lives in memory
// and only exists when Kafka will drain it.
func openBackends(ctx context.Context, cfg config.Server, h *health.Handler, log *slog.Logger) (*backends, error) {
	b := &backends{}

	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		b.close = append(b.close, pool.Close)
		h.RegisterCheck("postgres", pool.Health)
		if err := migrations.Up(ctx, pool.DB()); err != nil {
			b.Close(log)
			return nil, err
		}
		b.outbox = outboxpostgres.New(pool.DB())
	} else if cfg.Kafka.Enabled() {
		b.outbox = outboxmemory.New()
	}

	switch cfg.StateBackend {
	case config.BackendMemory:
		b.state = statememory.New()
	case config.BackendPostgres:
		b.state = statepostgres.New(pool.DB())
	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			b.Close(log)
			return nil, err
		}
		b.close = append(b.close, client.Close)
		h.RegisterCheck("redis", client.Health)
		b.state = stateredis.New(client.Client)
	default:
		b.Close(log)
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}

	log.Info("storage ready",
		"state_backend", cfg.StateBackend,
		"durable_outbox", pool != nil,
		"outbox_enabled", b.outbox != nil,
	)
	return b, nil
}
