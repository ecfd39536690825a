//go:build integration

package worker_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"chainid/internal/contract/identityregistry"
	"chainid/internal/ledger"
	statepostgres "chainid/internal/ledger/state/postgres"
	"chainid/internal/outbox"
	outboxpostgres "chainid/internal/outbox/store/postgres"
	"chainid/internal/outbox/worker"
	"chainid/internal/platform/kafka/producer"
	"chainid/pkg/testutil"
	"chainid/pkg/testutil/containers"
)

type WorkerIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	kafka    *containers.KafkaContainer
	store    *outboxpostgres.Store
	producer *producer.Producer
}

func TestWorkerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(WorkerIntegrationSuite))
}

func (s *WorkerIntegrationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.kafka = mgr.GetKafka(s.T())
	s.store = outboxpostgres.New(s.postgres.DB)

	prod, err := producer.New(producer.Config{
		Brokers:         s.kafka.Brokers,
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *WorkerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

func (s *WorkerIntegrationSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

// Justification: a registration committed on the ledger must reach Kafka
// through the outbox and leave no pending entry behind.
func (s *WorkerIntegrationSuite) TestLedgerEventReachesKafka() {
	ctx := context.Background()
	topic := "test-ledger-events"
	s.Require().NoError(s.producer.EnsureTopic(ctx, topic, 1, 1))

	l := ledger.New(statepostgres.New(s.postgres.DB),
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ledger.WithEventSink(outbox.NewSink(s.store)),
	)
	registry := identityregistry.NewService(l)
	admin, user := testutil.Address(1), testutil.Address(2)

	meta, err := registry.Deploy(ctx, admin)
	s.Require().NoError(err)
	_, err = registry.RegisterIdentity(ctx, meta.AppID, admin, user, 2)
	s.Require().NoError(err)

	w := worker.New(s.store, s.producer, worker.WithTopic(topic))
	n, err := w.Poll(ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	pending, err := s.store.CountPending(ctx)
	s.Require().NoError(err)
	s.Zero(pending)

	consumer, err := s.kafka.NewConsumer("test-ledger-events-group", topic)
	s.Require().NoError(err)
	defer consumer.Close()

	record := s.kafka.WaitForMessage(ctx, consumer, 10*time.Second, func(r *kgo.Record) bool {
		for _, h := range r.Headers {
			if h.Key == "event_type" && string(h.Value) == ledger.EventIdentityRegistered {
				return true
			}
		}
		return false
	})
	s.Require().NotNil(record)

	var event ledger.Event
	s.Require().NoError(json.Unmarshal(record.Value, &event))
	s.Equal(meta.AppID, event.AppID)
	s.Equal(user.String(), event.Attributes["user_address"])
	s.Equal("2", event.Attributes["verification_level"])
}
