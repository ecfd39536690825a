// Package state defines the key-value slot model contracts run against.
//
// Every contract call reads and writes through a Mutable obtained from
// Store.Update. Writes are buffered in a ChangeSet and reach the backend only
// when the call's function returns nil, so a failed call leaves no trace.
package state

import "context"

// Immutable reads committed slots. GetValue returns sentinel.ErrNotFound for
// keys that were never written or have been removed.
type Immutable interface {
	GetValue(ctx context.Context, key string) ([]byte, error)
}

// Mutable is a buffered view over Immutable. Reads observe the caller's
// own pending writes.
type Mutable interface {
	Immutable
	Insert(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// ReadFunc runs against a read-only view.
type ReadFunc func(ctx context.Context, r Immutable) error

// UpdateFunc runs against a buffered view. Optimistic backends may call it
// more than once, so it must not have side effects outside m.
type UpdateFunc func(ctx context.Context, m Mutable) error

// Store is the persistence contract every backend satisfies.
//
// Update applies every write made by fn atomically when fn returns nil and
// discards all of them otherwise. Updates sharing a scope never interleave.
type Store interface {
	View(ctx context.Context, fn ReadFunc) error
	Update(ctx context.Context, scope string, fn UpdateFunc) error
}
