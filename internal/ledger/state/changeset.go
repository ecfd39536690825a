package state

import (
	"context"
	"errors"
	"slices"
	"strings"

	"chainid/pkg/platform/sentinel"
)

// Change is one buffered write. Deleted changes carry no value.
type Change struct {
	Key     string
	Value   []byte
	Deleted bool
}

// ChangeSet buffers writes over a base reader.
// It is not safe for concurrent use; one call owns one ChangeSet.
type ChangeSet struct {
	base    Immutable
	pending map[string]Change
}

// NewChangeSet returns an empty change set over base.
func NewChangeSet(base Immutable) *ChangeSet {
	return &ChangeSet{base: base, pending: make(map[string]Change)}
}

func (c *ChangeSet) GetValue(ctx context.Context, key string) ([]byte, error) {
	if ch, ok := c.pending[key]; ok {
		if ch.Deleted {
			return nil, sentinel.ErrNotFound
		}
		return slices.Clone(ch.Value), nil
	}
	return c.base.GetValue(ctx, key)
}

func (c *ChangeSet) Insert(_ context.Context, key string, value []byte) error {
	if key == "" {
		return errors.New("state: empty key")
	}
	c.pending[key] = Change{Key: key, Value: slices.Clone(value)}
	return nil
}

func (c *ChangeSet) Remove(_ context.Context, key string) error {
	if key == "" {
		return errors.New("state: empty key")
	}
	c.pending[key] = Change{Key: key, Deleted: true}
	return nil
}

// Changes returns the buffered writes ordered by key.
func (c *ChangeSet) Changes() []Change {
	out := make([]Change, 0, len(c.pending))
	for _, ch := range c.pending {
		out = append(out, ch)
	}
	slices.SortFunc(out, func(a, b Change) int { return strings.Compare(a.Key, b.Key) })
	return out
}

var _ Mutable = (*ChangeSet)(nil)
