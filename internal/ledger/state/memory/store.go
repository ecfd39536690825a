// Package memory is the in-process state backend used by default and in tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"chainid/internal/ledger/state"
	"chainid/pkg/platform/sentinel"
)

// Store keeps committed slots in a map. Updates in the same scope are
// serialized by a per-scope mutex; commits take the write lock briefly.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	scopesMu sync.Mutex
	scopes   map[string]*sync.Mutex
}

func New() *Store {
	return &Store{
		data:   make(map[string][]byte),
		scopes: make(map[string]*sync.Mutex),
	}
}

func (s *Store) View(ctx context.Context, fn state.ReadFunc) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, lockedReader{s})
}

func (s *Store) Update(ctx context.Context, scope string, fn state.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	cs := state.NewChangeSet(reader{s})
	if err := fn(ctx, cs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range cs.Changes() {
		if ch.Deleted {
			delete(s.data, ch.Key)
			continue
		}
		s.data[ch.Key] = ch.Value
	}
	return nil
}

func (s *Store) scopeLock(scope string) *sync.Mutex {
	s.scopesMu.Lock()
	defer s.scopesMu.Unlock()
	lock, ok := s.scopes[scope]
	if !ok {
		lock = &sync.Mutex{}
		s.scopes[scope] = lock
	}
	return lock
}

// reader takes the read lock per access; used under a scope lock.
type reader struct{ s *Store }

func (r reader) GetValue(_ context.Context, key string) ([]byte, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.get(key)
}

// lockedReader is used inside View, which already holds the read lock.
type lockedReader struct{ s *Store }

func (r lockedReader) GetValue(_ context.Context, key string) ([]byte, error) {
	return r.s.get(key)
}

func (s *Store) get(key string) ([]byte, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return slices.Clone(v), nil
}

var _ state.Store = (*Store)(nil)
