package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"chainid/internal/ledger"
)

// Sink appends ledger events to an outbox store.
type Sink struct {
	store Store
}

func NewSink(store Store) *Sink {
	return &Sink{store: store}
}

// Publish implements ledger.EventSink.
func (s *Sink) Publish(ctx context.Context, events []ledger.Event) error {
	entries := make([]*Entry, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", e.Name, err)
		}
		entries = append(entries, NewEntry(AggregateApp, e.AppID.String(), e.Name, payload))
	}
	return s.store.Append(ctx, entries...)
}

var _ ledger.EventSink = (*Sink)(nil)
