// Package redis stores ledger slots as plain Redis strings and commits
// updates with WATCH/MULTI/EXEC.
package redis

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"chainid/internal/ledger/state"
	"chainid/pkg/platform/sentinel"
)

const (
	defaultKeyPrefix  = "chainid:state:"
	versionKeyPrefix  = "scope:"
	defaultMaxRetries = 100
)

// Store implements state.Store on Redis. Every scope owns a version key;
// updates WATCH it and bump it inside MULTI, so two updates in one scope
// cannot both commit against the same reads.
type Store struct {
	client     redis.UniversalClient
	prefix     string
	maxRetries int
}

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix namespaces slot keys, useful when tests share a database.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithMaxRetries bounds optimistic retries before an update fails with
// sentinel.ErrConflict.
func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client:     client,
		prefix:     defaultKeyPrefix,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) View(ctx context.Context, fn state.ReadFunc) error {
	return fn(ctx, reader{cmd: s.client, prefix: s.prefix})
}

func (s *Store) Update(ctx context.Context, scope string, fn state.UpdateFunc) error {
	versionKey := s.prefix + versionKeyPrefix + scope

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			cs := state.NewChangeSet(reader{cmd: rtx, prefix: s.prefix})
			if err := fn(ctx, cs); err != nil {
				return err
			}
			changes := cs.Changes()
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, ch := range changes {
					if ch.Deleted {
						pipe.Del(ctx, s.prefix+ch.Key)
						continue
					}
					pipe.Set(ctx, s.prefix+ch.Key, ch.Value, 0)
				}
				pipe.Incr(ctx, versionKey)
				return nil
			})
			return err
		}, versionKey)

		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if err := backoff(ctx, attempt); err != nil {
			return err
		}
	}
	return fmt.Errorf("update scope %s: %w", scope, sentinel.ErrConflict)
}

func backoff(ctx context.Context, attempt int) error {
	step := min(attempt+1, 10)
	d := time.Duration(rand.IntN(step*500)+100) * time.Microsecond
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type reader struct {
	cmd    getter
	prefix string
}

func (r reader) GetValue(ctx context.Context, key string) ([]byte, error) {
	value, err := r.cmd.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", key, err)
	}
	return value, nil
}

var _ state.Store = (*Store)(nil)
