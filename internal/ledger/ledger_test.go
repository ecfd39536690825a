package ledger_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"chainid/internal/contract"
	"chainid/internal/ledger"
	"chainid/internal/ledger/metrics"
	"chainid/internal/ledger/state"
	"chainid/internal/ledger/state/memory"
	id "chainid/pkg/domain"
	dErrors "chainid/pkg/domain-errors"
	"chainid/pkg/requestcontext"
	"chainid/pkg/testutil"
)

type recordingSink struct {
	mu     sync.Mutex
	events []ledger.Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, events []ledger.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, events...)
	return nil
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Name)
	}
	return out
}

const slot = "value"

var creator = testutil.Address(1)

type LedgerSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	sink    *recordingSink
	metrics *metrics.Metrics
	ledger  *ledger.Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.sink = &recordingSink{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.ledger = ledger.New(s.store,
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ledger.WithMetrics(s.metrics),
		ledger.WithEventSink(s.sink),
	)
}

func (s *LedgerSuite) deploy(kind id.ContractKind) *ledger.Meta {
	meta, err := s.ledger.Deploy(s.ctx, kind, creator, func(ctx context.Context, tx *ledger.Tx) error {
		return tx.State().Insert(ctx, state.AppKey(tx.App(), slot), state.EncodeUint64(0))
	})
	s.Require().NoError(err)
	return meta
}

func (s *LedgerSuite) read(app id.AppID) uint64 {
	var v uint64
	s.Require().NoError(s.ledger.Query(s.ctx, app, id.KindIdentityRegistry, "read", func(ctx context.Context, tx *ledger.ReadTx) error {
		var err error
		v, err = state.GetUint64(ctx, tx.State(), state.AppKey(tx.App(), slot))
		return err
	}))
	return v
}

func (s *LedgerSuite) TestDeploy() {
	s.Run("assigns sequential ids starting at one", func() {
		first := s.deploy(id.KindIdentityRegistry)
		second := s.deploy(id.KindPaymentProcessor)
		s.Equal(id.AppID(1), first.AppID)
		s.Equal(id.AppID(2), second.AppID)
		s.Equal(creator, first.Creator)
		s.Equal(id.KindPaymentProcessor, second.Kind)
	})

	s.Run("failed init leaves no app behind", func() {
		before, err := s.ledger.Apps(s.ctx)
		s.Require().NoError(err)

		_, err = s.ledger.Deploy(s.ctx, id.KindIdentityRegistry, creator, func(context.Context, *ledger.Tx) error {
			return errors.New("init failed")
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))

		after, err := s.ledger.Apps(s.ctx)
		s.Require().NoError(err)
		s.Len(after, len(before))
	})

	s.Run("rejects unknown kind", func() {
		_, err := s.ledger.Deploy(s.ctx, id.ContractKind("vault"), creator, func(context.Context, *ledger.Tx) error { return nil })
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Equal(2.0, promtestutil.ToFloat64(s.metrics.Calls.WithLabelValues("identity_registry", contract.MethodCreate, metrics.OutcomeOK))+
		promtestutil.ToFloat64(s.metrics.Calls.WithLabelValues("payment_processor", contract.MethodCreate, metrics.OutcomeOK)))
}

func (s *LedgerSuite) TestAppLookup() {
	meta := s.deploy(id.KindIdentityRegistry)

	got, err := s.ledger.App(s.ctx, meta.AppID)
	s.Require().NoError(err)
	s.Equal(meta.Kind, got.Kind)
	s.Equal(meta.Creator, got.Creator)

	_, err = s.ledger.App(s.ctx, id.AppID(42))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	apps, err := s.ledger.Apps(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(apps, 1)
	s.Equal(meta.AppID, apps[0].AppID)
}

func (s *LedgerSuite) TestAppsEmpty() {
	apps, err := s.ledger.Apps(s.ctx)
	s.Require().NoError(err)
	s.Empty(apps)
}

func (s *LedgerSuite) TestInvoke() {
	meta := s.deploy(id.KindIdentityRegistry)
	increment := func(ctx context.Context, tx *ledger.Tx) error {
		if _, err := state.IncrementUint64(ctx, tx.State(), state.AppKey(tx.App(), slot)); err != nil {
			return err
		}
		tx.Emit("Incremented", ledger.Attr("by", "1"))
		return nil
	}

	s.Run("commits writes and publishes events", func() {
		s.Require().NoError(s.ledger.Invoke(s.ctx, meta.AppID, id.KindIdentityRegistry, "inc", creator, increment))
		s.Equal(uint64(1), s.read(meta.AppID))
		s.Equal([]string{ledger.EventAppCreated, "Incremented"}, s.sink.names())
	})

	s.Run("failed call discards writes and events", func() {
		err := s.ledger.Invoke(s.ctx, meta.AppID, id.KindIdentityRegistry, "inc", creator, func(ctx context.Context, tx *ledger.Tx) error {
			if err := increment(ctx, tx); err != nil {
				return err
			}
			return contract.ErrContractPaused
		})
		s.ErrorIs(err, contract.ErrContractPaused)
		s.Equal(uint64(1), s.read(meta.AppID))
		s.Len(s.sink.names(), 2)
		s.Equal(1.0, promtestutil.ToFloat64(s.metrics.GuardFailures.WithLabelValues("identity_registry", "inc", contract.GuardContractPaused)))
	})

	s.Run("unknown app is not found", func() {
		err := s.ledger.Invoke(s.ctx, id.AppID(99), id.KindIdentityRegistry, "inc", creator, increment)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("kind mismatch is not found", func() {
		err := s.ledger.Invoke(s.ctx, meta.AppID, id.KindPaymentProcessor, "inc", creator, increment)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(uint64(1), s.read(meta.AppID))
	})
}

// Justification: events carry the call's identity and request metadata.
func (s *LedgerSuite) TestEventMetadata() {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(requestcontext.WithRequestID(s.ctx, "req-1"), at)
	meta := s.deploy(id.KindIdentityRegistry)
	caller := testutil.Address(9)

	s.Require().NoError(s.ledger.Invoke(ctx, meta.AppID, id.KindIdentityRegistry, "ping", caller, func(_ context.Context, tx *ledger.Tx) error {
		tx.Emit("Pinged", ledger.Attr("k", "v"))
		return nil
	}))

	s.sink.mu.Lock()
	defer s.sink.mu.Unlock()
	e := s.sink.events[len(s.sink.events)-1]
	s.Equal("Pinged", e.Name)
	s.Equal(meta.AppID, e.AppID)
	s.Equal(id.KindIdentityRegistry, e.Kind)
	s.Equal("ping", e.Method)
	s.Equal(caller, e.Caller)
	s.NotEmpty(e.CallID)
	s.Equal("req-1", e.RequestID)
	s.Equal(at, e.Timestamp)
	s.Equal(map[string]string{"k": "v"}, e.Attributes)
}

// Justification: the call has committed before the sink is asked, so a sink failure must not fail it.
func (s *LedgerSuite) TestSinkFailureDoesNotFailCall() {
	meta := s.deploy(id.KindIdentityRegistry)
	s.sink.err = errors.New("sink down")

	err := s.ledger.Invoke(s.ctx, meta.AppID, id.KindIdentityRegistry, "inc", creator, func(ctx context.Context, tx *ledger.Tx) error {
		_, err := state.IncrementUint64(ctx, tx.State(), state.AppKey(tx.App(), slot))
		tx.Emit("Incremented")
		return err
	})
	s.Require().NoError(err)
	s.Equal(uint64(1), s.read(meta.AppID))
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.EventPublishFailures))
}

func (s *LedgerSuite) TestQueryDoesNotWrite() {
	meta := s.deploy(id.KindIdentityRegistry)
	err := s.ledger.Query(s.ctx, meta.AppID, id.KindPaymentProcessor, "read", func(context.Context, *ledger.ReadTx) error {
		return nil
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// Justification: calls to one app never interleave, so concurrent increments are all kept.
func (s *LedgerSuite) TestConcurrentInvokes() {
	meta := s.deploy(id.KindIdentityRegistry)
	const workers = 32

	result := testutil.RunConcurrent(workers, func(int) error {
		return s.ledger.Invoke(s.ctx, meta.AppID, id.KindIdentityRegistry, "inc", creator, func(ctx context.Context, tx *ledger.Tx) error {
			_, err := state.IncrementUint64(ctx, tx.State(), state.AppKey(tx.App(), slot))
			return err
		})
	})
	s.Equal(int32(workers), result.Successes)
	s.Equal(uint64(workers), s.read(meta.AppID))
}

func TestLedgerWithoutSinkLogsEvents(t *testing.T) {
	l := ledger.New(memory.New(), ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err := l.Deploy(context.Background(), id.KindPaymentProcessor, creator, func(context.Context, *ledger.Tx) error { return nil })
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
}
