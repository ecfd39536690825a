package state_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainid/internal/ledger/state"
	"chainid/internal/ledger/state/memory"
	id "chainid/pkg/domain"
	dErrors "chainid/pkg/domain-errors"
	"chainid/pkg/platform/sentinel"
)

func TestChangeSet(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	require.NoError(t, base.Update(ctx, "s", func(ctx context.Context, m state.Mutable) error {
		return m.Insert(ctx, "k/base", []byte("v"))
	}))

	var cs *state.ChangeSet
	require.NoError(t, base.View(ctx, func(ctx context.Context, r state.Immutable) error {
		cs = state.NewChangeSet(r)
		return nil
	}))

	t.Run("falls through to base", func(t *testing.T) {
		got, err := cs.GetValue(ctx, "k/base")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("insert copies the value", func(t *testing.T) {
		buf := []byte("abc")
		require.NoError(t, cs.Insert(ctx, "k/new", buf))
		buf[0] = 'z'
		got, err := cs.GetValue(ctx, "k/new")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
	})

	t.Run("remove hides the key", func(t *testing.T) {
		require.NoError(t, cs.Remove(ctx, "k/base"))
		_, err := cs.GetValue(ctx, "k/base")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("changes are sorted by key", func(t *testing.T) {
		changes := cs.Changes()
		require.Len(t, changes, 2)
		assert.Equal(t, "k/base", changes[0].Key)
		assert.True(t, changes[0].Deleted)
		assert.Equal(t, "k/new", changes[1].Key)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		assert.Error(t, cs.Insert(ctx, "", nil))
		assert.Error(t, cs.Remove(ctx, ""))
	})
}

func TestCodec(t *testing.T) {
	t.Run("uint64 big-endian", func(t *testing.T) {
		assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, state.EncodeUint64(258))
		n, err := state.DecodeUint64([]byte{0, 0, 0, 0, 0, 0, 1, 2})
		require.NoError(t, err)
		assert.Equal(t, uint64(258), n)
		_, err = state.DecodeUint64([]byte{1})
		assert.Error(t, err)
	})

	t.Run("arc4 bool", func(t *testing.T) {
		assert.Equal(t, []byte{0x80}, state.EncodeBool(true))
		assert.Equal(t, []byte{0x00}, state.EncodeBool(false))
		v, err := state.DecodeBool([]byte{0x80})
		require.NoError(t, err)
		assert.True(t, v)
		_, err = state.DecodeBool([]byte{0x01})
		assert.Error(t, err)
	})
}

func TestIncrementUint64(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	t.Run("increments by one", func(t *testing.T) {
		err := store.Update(ctx, "s", func(ctx context.Context, m state.Mutable) error {
			require.NoError(t, m.Insert(ctx, "c", state.EncodeUint64(41)))
			next, err := state.IncrementUint64(ctx, m, "c")
			assert.Equal(t, uint64(42), next)
			return err
		})
		require.NoError(t, err)
	})

	t.Run("refuses to wrap", func(t *testing.T) {
		err := store.Update(ctx, "s", func(ctx context.Context, m state.Mutable) error {
			require.NoError(t, m.Insert(ctx, "c", state.EncodeUint64(math.MaxUint64)))
			_, err := state.IncrementUint64(ctx, m, "c")
			return err
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		// the failed update left the previous committed value
		require.NoError(t, store.View(ctx, func(ctx context.Context, r state.Immutable) error {
			n, err := state.GetUint64(ctx, r, "c")
			assert.Equal(t, uint64(42), n)
			return err
		}))
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "app/7", state.AppScope(id.AppID(7)))
	assert.Equal(t, "app/7/admin", state.AppKey(id.AppID(7), "admin"))
	assert.Equal(t, "app/7/meta", state.MetaKey(id.AppID(7)))
}
