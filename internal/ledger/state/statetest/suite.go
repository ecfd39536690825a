// Package statetest holds the behavioral suite every state backend must pass.
package statetest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stretchr/testify/suite"

	"chainid/internal/ledger/state"
	"chainid/pkg/platform/sentinel"
	"chainid/pkg/testutil"
)

// StoreSuite exercises the Store contract: buffered reads, atomic commit,
// discard on error and serialized updates within a scope.
//
// Backends embed it and set Store in SetupTest.
type StoreSuite struct {
	suite.Suite
	Store state.Store
}

var errAbort = errors.New("abort")

func (s *StoreSuite) read(key string) ([]byte, error) {
	var out []byte
	err := s.Store.View(context.Background(), func(ctx context.Context, r state.Immutable) error {
		v, err := r.GetValue(ctx, key)
		out = v
		return err
	})
	return out, err
}

func (s *StoreSuite) TestMissingKeyIsNotFound() {
	_, err := s.read("absent/key")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestCommitAndDiscard() {
	s.Run("writes apply when fn succeeds", func() {
		err := s.Store.Update(context.Background(), "scope-a", func(ctx context.Context, m state.Mutable) error {
			return m.Insert(ctx, "suite/a", []byte("one"))
		})
		s.Require().NoError(err)

		v, err := s.read("suite/a")
		s.Require().NoError(err)
		s.Equal([]byte("one"), v)
	})

	s.Run("writes are discarded when fn fails", func() {
		err := s.Store.Update(context.Background(), "scope-a", func(ctx context.Context, m state.Mutable) error {
			s.Require().NoError(m.Insert(ctx, "suite/a", []byte("two")))
			s.Require().NoError(m.Insert(ctx, "suite/b", []byte("new")))
			return errAbort
		})
		s.ErrorIs(err, errAbort)

		v, err := s.read("suite/a")
		s.Require().NoError(err)
		s.Equal([]byte("one"), v)

		_, err = s.read("suite/b")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("fn sees its own pending writes and removals", func() {
		err := s.Store.Update(context.Background(), "scope-a", func(ctx context.Context, m state.Mutable) error {
			s.Require().NoError(m.Insert(ctx, "suite/c", []byte("pending")))
			v, err := m.GetValue(ctx, "suite/c")
			s.Require().NoError(err)
			s.Equal([]byte("pending"), v)

			s.Require().NoError(m.Remove(ctx, "suite/a"))
			_, err = m.GetValue(ctx, "suite/a")
			s.ErrorIs(err, sentinel.ErrNotFound)
			return nil
		})
		s.Require().NoError(err)

		_, err = s.read("suite/a")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StoreSuite) TestCountersDoNotLoseUpdates() {
	const key = "suite/counter"
	const workers = 16

	s.Require().NoError(s.Store.Update(context.Background(), "scope-counter", func(ctx context.Context, m state.Mutable) error {
		return m.Insert(ctx, key, state.EncodeUint64(0))
	}))

	result := testutil.RunConcurrent(workers, func(int) error {
		return s.Store.Update(context.Background(), "scope-counter", func(ctx context.Context, m state.Mutable) error {
			_, err := state.IncrementUint64(ctx, m, key)
			return err
		})
	})
	s.Equal(int32(workers), result.Successes, "conflicts=%d errors=%d", result.Conflicts, result.Errors)

	raw, err := s.read(key)
	s.Require().NoError(err)
	n, err := state.DecodeUint64(raw)
	s.Require().NoError(err)
	s.Equal(uint64(workers), n)
}

func (s *StoreSuite) TestIndependentScopes() {
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scope := fmt.Sprintf("scope-%d", i)
			_ = s.Store.Update(context.Background(), scope, func(ctx context.Context, m state.Mutable) error {
				return m.Insert(ctx, "suite/"+scope, []byte(scope))
			})
		}(i)
	}
	wg.Wait()

	for i := range 4 {
		v, err := s.read(fmt.Sprintf("suite/scope-%d", i))
		s.Require().NoError(err)
		s.Equal(fmt.Sprintf("scope-%d", i), string(v))
	}
}
