// Package outbox stores committed ledger events until a worker has published
// them to Kafka.
package outbox

import (
	"time"

	"github.com/google/uuid"
)

// AggregateApp is the aggregate type of every ledger event; the aggregate id
// is the app id.
const AggregateApp = "app"

// Entry is one event awaiting publication.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte     // JSON-encoded ledger.Event
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil while pending
}

func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry creates an entry with a generated id.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}
