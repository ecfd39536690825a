// Package memory is an in-process outbox store for development and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"chainid/internal/outbox"
)

// Store keeps entries in insertion order.
type Store struct {
	mu      sync.RWMutex
	entries []*outbox.Entry
	index   map[uuid.UUID]*outbox.Entry
}

func New() *Store {
	return &Store{index: make(map[uuid.UUID]*outbox.Entry)}
}

func (s *Store) Append(_ context.Context, entries ...*outbox.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		stored := clone(e)
		s.entries = append(s.entries, stored)
		s.index[stored.ID] = stored
	}
	return nil
}

func (s *Store) FetchUnprocessed(_ context.Context, limit int) ([]*outbox.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*outbox.Entry
	for _, e := range s.entries {
		if !e.IsPending() {
			continue
		}
		out = append(out, clone(e))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkProcessed(_ context.Context, ids []uuid.UUID, processedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if e, ok := s.index[id]; ok && e.IsPending() {
			at := processedAt
			e.ProcessedAt = &at
		}
	}
	return nil
}

func (s *Store) CountPending(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.entries {
		if e.IsPending() {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListRecent(_ context.Context, limit int) ([]*outbox.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*outbox.Entry, 0, min(limit, len(s.entries)))
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, clone(s.entries[i]))
	}
	return out, nil
}

func (s *Store) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	s.entries = slices.DeleteFunc(s.entries, func(e *outbox.Entry) bool {
		if e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(s.index, e.ID)
			removed++
			return true
		}
		return false
	})
	return removed, nil
}

func clone(e *outbox.Entry) *outbox.Entry {
	c := *e
	c.Payload = slices.Clone(e.Payload)
	if e.ProcessedAt != nil {
		at := *e.ProcessedAt
		c.ProcessedAt = &at
	}
	return &c
}

var _ outbox.Store = (*Store)(nil)
