//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"chainid/internal/platform/kafka/producer"
	"chainid/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	prod, err := producer.New(producer.Config{
		Brokers:         s.kafka.Brokers,
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

// Justification: Produce only returns after the broker acknowledged the
// record, so a consumer started afterwards must see it with its headers.
func (s *ProducerIntegrationSuite) TestProduceDeliversMessage() {
	ctx := context.Background()
	topic := "test-produce-sync"
	s.Require().NoError(s.producer.EnsureTopic(ctx, topic, 1, 1))

	err := s.producer.Produce(ctx, &producer.Message{
		Topic: topic,
		Key:   []byte("k1"),
		Value: []byte(`{"name":"IdentityRegistered"}`),
		Headers: map[string]string{
			"aggregate_type": "app",
			"event_type":     "IdentityRegistered",
		},
	})
	s.Require().NoError(err)

	consumer, err := s.kafka.NewConsumer("test-produce-sync-group", topic)
	s.Require().NoError(err)
	defer consumer.Close()

	record := s.kafka.WaitForMessage(ctx, consumer, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "k1"
	})
	s.Require().NotNil(record)
	s.JSONEq(`{"name":"IdentityRegistered"}`, string(record.Value))

	headers := make(map[string]string)
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	s.Equal("app", headers["aggregate_type"])
	s.Equal("IdentityRegistered", headers["event_type"])
}

// Justification: provisioning runs on every boot, so creating an existing
// topic must succeed.
func (s *ProducerIntegrationSuite) TestEnsureTopicIsIdempotent() {
	ctx := context.Background()
	s.Require().NoError(s.producer.EnsureTopic(ctx, "test-ensure-topic", 1, 1))
	s.Require().NoError(s.producer.EnsureTopic(ctx, "test-ensure-topic", 1, 1))
}

func (s *ProducerIntegrationSuite) TestHealthy() {
	s.True(s.producer.Healthy(context.Background()))
}
