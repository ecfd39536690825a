package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"chainid/internal/outbox"
	"chainid/internal/outbox/metrics"
	"chainid/internal/outbox/store/memory"
	"chainid/internal/outbox/worker"
	"chainid/internal/outbox/worker/mocks"
	"chainid/internal/platform/kafka/producer"
)

type WorkerSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	store     *memory.Store
	publisher *mocks.MockPublisher
	metrics   *metrics.Metrics
	worker    *worker.Worker
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.store = memory.New()
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.worker = worker.New(s.store, s.publisher,
		worker.WithBatchSize(2),
		worker.WithPollInterval(5*time.Millisecond),
		worker.WithMetrics(s.metrics),
		worker.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *WorkerSuite) appendEntry(eventType string) *outbox.Entry {
	e := outbox.NewEntry(outbox.AggregateApp, "1", eventType, []byte(`{"name":"`+eventType+`"}`))
	s.Require().NoError(s.store.Append(s.ctx, e))
	return e
}

func (s *WorkerSuite) pending() int64 {
	n, err := s.store.CountPending(s.ctx)
	s.Require().NoError(err)
	return n
}

// Justification: the message key is the entry id and the headers carry the
// aggregate and event type consumers route on.
func (s *WorkerSuite) TestPollPublishesAndMarks() {
	entry := s.appendEntry("IdentityRegistered")

	var got *producer.Message
	s.publisher.EXPECT().Produce(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg *producer.Message) error {
			got = msg
			return nil
		})

	n, err := s.worker.Poll(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Zero(s.pending())

	s.Require().NotNil(got)
	s.Equal(worker.DefaultTopic, got.Topic)
	s.Equal(entry.ID.String(), string(got.Key))
	s.JSONEq(`{"name":"IdentityRegistered"}`, string(got.Value))
	s.Equal(map[string]string{
		"aggregate_type": outbox.AggregateApp,
		"aggregate_id":   "1",
		"event_type":     "IdentityRegistered",
	}, got.Headers)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.PublishedTotal))
}

func (s *WorkerSuite) TestPollRespectsBatchSize() {
	for range 3 {
		s.appendEntry("PaymentProcessed")
	}
	s.publisher.EXPECT().Produce(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	n, err := s.worker.Poll(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal(int64(1), s.pending())
}

// Justification: a failed publish must leave only that entry pending so it
// is retried on the next poll.
func (s *WorkerSuite) TestFailedPublishStaysPending() {
	ok := s.appendEntry("AppCreated")
	failing := s.appendEntry("AdminChanged")

	s.publisher.EXPECT().Produce(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg *producer.Message) error {
			if string(msg.Key) == failing.ID.String() {
				return errors.New("broker unavailable")
			}
			return nil
		}).Times(2)

	n, err := s.worker.Poll(s.ctx)
	s.Require().Error(err)
	s.Equal(1, n)

	remaining, err := s.store.FetchUnprocessed(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(failing.ID, remaining[0].ID)
	s.NotEqual(ok.ID, remaining[0].ID)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.PublishFailures))
}

func (s *WorkerSuite) TestPollEmpty() {
	n, err := s.worker.Poll(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

// Justification: entries committed just before shutdown are flushed by the
// drain instead of waiting for the next process start.
func (s *WorkerSuite) TestRunDrainsOnCancel() {
	for range 5 {
		s.appendEntry("PaymentProcessed")
	}
	s.publisher.EXPECT().Produce(gomock.Any(), gomock.Any()).Return(nil).Times(5)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.Require().NoError(s.worker.Run(ctx))
	s.Zero(s.pending())
}

func (s *WorkerSuite) TestDrainStopsWhenPublisherDown() {
	s.appendEntry("PaymentProcessed")
	s.publisher.EXPECT().Produce(gomock.Any(), gomock.Any()).Return(errors.New("down")).Times(1)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.Require().NoError(s.worker.Run(ctx))
	s.Equal(int64(1), s.pending())
}

func (s *WorkerSuite) TestPrune() {
	s.appendEntry("AppCreated")
	s.appendEntry("IdentityRegistered")
	s.publisher.EXPECT().Produce(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	_, err := s.worker.Poll(s.ctx)
	s.Require().NoError(err)
	pending := s.appendEntry("ContractPaused")

	s.Run("keeps entries inside the retention window", func() {
		removed, err := s.worker.Prune(s.ctx, time.Hour)
		s.Require().NoError(err)
		s.Zero(removed)
	})

	s.Run("removes published entries only", func() {
		removed, err := s.worker.Prune(s.ctx, -time.Minute)
		s.Require().NoError(err)
		s.Equal(int64(2), removed)

		left, err := s.store.ListRecent(s.ctx, 10)
		s.Require().NoError(err)
		s.Require().Len(left, 1)
		s.Equal(pending.ID, left[0].ID)
	})
}

func (s *WorkerSuite) TestUpdateMetrics() {
	s.appendEntry("AppCreated")
	s.appendEntry("AppCreated")

	s.Require().NoError(s.worker.UpdateMetrics(s.ctx))
	s.Equal(2.0, promtestutil.ToFloat64(s.metrics.PendingDepth))
}
