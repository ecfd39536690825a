// Package worker publishes outbox entries to Kafka.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chainid/internal/outbox"
	"chainid/internal/outbox/metrics"
	"chainid/internal/platform/kafka/producer"
)

// DefaultTopic receives every ledger event.
const DefaultTopic = "chainid.ledger.events"

//go:generate mockgen -source=worker.go -destination=mocks/mocks.go -package=mocks Publisher

// Publisher delivers one message and returns once it is acknowledged.
type Publisher interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Worker polls the outbox store and publishes pending entries.
type Worker struct {
	store        outbox.Store
	publisher    Publisher
	topic        string
	batchSize    int
	pollInterval time.Duration
	drainTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures the Worker.
type Option func(*Worker)

func WithTopic(topic string) Option {
	return func(w *Worker) {
		if topic != "" {
			w.topic = topic
		}
	}
}

// WithBatchSize sets the maximum number of entries fetched per poll.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates an outbox worker.
func New(store outbox.Store, publisher Publisher, opts ...Option) *Worker {
	w := &Worker{
		store:        store,
		publisher:    publisher,
		topic:        DefaultTopic,
		batchSize:    100,
		pollInterval: 100 * time.Millisecond,
		drainTimeout: 10 * time.Second,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled, then drains what is left within the
// drain timeout. It always returns nil so it can sit in an errgroup.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("outbox worker started", "topic", w.topic, "batch_size", w.batchSize)
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("outbox poll failed", "error", err)
			}
		}
	}
}

// Poll publishes one batch and returns how many entries were marked
// processed. Entries that fail to publish stay pending for the next poll.
func (w *Worker) Poll(ctx context.Context) (int, error) {
	start := time.Now()

	entries, err := w.store.FetchUnprocessed(ctx, w.batchSize)
	if err != nil {
		w.metrics.IncPublishFailures()
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	w.metrics.ObserveBatchSize(len(entries))

	published := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		if err := w.publish(ctx, entry); err != nil {
			w.metrics.IncPublishFailures()
			w.logger.Error("failed to publish outbox entry",
				"id", entry.ID,
				"event_type", entry.EventType,
				"error", err,
			)
			continue
		}
		published = append(published, entry.ID)
	}

	if len(published) > 0 {
		// published but unmarked entries are re-sent; consumers dedupe on key
		if err := w.store.MarkProcessed(ctx, published, w.now().UTC()); err != nil {
			return 0, err
		}
		w.metrics.IncPublished(len(published))
	}
	w.metrics.ObservePollDuration(time.Since(start).Seconds())

	if len(published) < len(entries) {
		return len(published), errors.New("some outbox entries were not published")
	}
	return len(published), nil
}

// UpdateMetrics refreshes the pending depth gauge.
func (w *Worker) UpdateMetrics(ctx context.Context) error {
	if w.metrics == nil {
		return nil
	}
	count, err := w.store.CountPending(ctx)
	if err != nil {
		return err
	}
	w.metrics.SetPendingDepth(count)
	return nil
}

// Prune deletes entries published more than retention ago.
func (w *Worker) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	removed, err := w.store.DeleteProcessedBefore(ctx, w.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		w.logger.InfoContext(ctx, "pruned published outbox entries", "removed", removed)
	}
	return removed, nil
}

func (w *Worker) publish(ctx context.Context, entry *outbox.Entry) error {
	start := time.Now()
	err := w.publisher.Produce(ctx, &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.ID.String()),
		Value: entry.Payload,
		Headers: map[string]string{
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
			"event_type":     entry.EventType,
		},
	})
	if err != nil {
		return err
	}
	w.metrics.ObservePublishDuration(time.Since(start).Seconds())
	return nil
}

// drain stops at the first batch that makes no progress.
func (w *Worker) drain() {
	w.logger.Info("draining outbox worker")

	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()

	for ctx.Err() == nil {
		n, err := w.Poll(ctx)
		if err != nil {
			w.logger.Error("outbox drain stopped", "error", err)
			return
		}
		if n == 0 {
			return
		}
	}
}
