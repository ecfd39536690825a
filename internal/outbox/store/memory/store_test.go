package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"chainid/internal/outbox"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()
}

func (s *StoreSuite) add(n int) []*outbox.Entry {
	entries := make([]*outbox.Entry, n)
	for i := range entries {
		entries[i] = outbox.NewEntry(outbox.AggregateApp, "1", "AppCreated", []byte(`{}`))
	}
	s.Require().NoError(s.store.Append(s.ctx, entries...))
	return entries
}

func (s *StoreSuite) TestFetchInInsertionOrder() {
	entries := s.add(3)

	got, err := s.store.FetchUnprocessed(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(entries[0].ID, got[0].ID)
	s.Equal(entries[1].ID, got[1].ID)
}

// Justification: callers mutate fetched entries, which must not leak into
// the stored copy.
func (s *StoreSuite) TestFetchReturnsCopies() {
	s.add(1)
	got, err := s.store.FetchUnprocessed(s.ctx, 1)
	s.Require().NoError(err)
	got[0].Payload[0] = 'x'
	now := time.Now()
	got[0].ProcessedAt = &now

	again, err := s.store.FetchUnprocessed(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(again, 1)
	s.Equal(`{}`, string(again[0].Payload))
}

func (s *StoreSuite) TestMarkProcessed() {
	entries := s.add(3)
	at := time.Now().UTC()

	s.Require().NoError(s.store.MarkProcessed(s.ctx, []uuid.UUID{entries[0].ID, entries[2].ID, uuid.New()}, at))

	count, err := s.store.CountPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	s.Run("already processed keeps first timestamp", func() {
		s.Require().NoError(s.store.MarkProcessed(s.ctx, []uuid.UUID{entries[0].ID}, at.Add(time.Hour)))
		recent, err := s.store.ListRecent(s.ctx, 3)
		s.Require().NoError(err)
		s.Equal(entries[0].ID, recent[2].ID)
		s.Equal(at, *recent[2].ProcessedAt)
	})
}

func (s *StoreSuite) TestListRecentNewestFirst() {
	entries := s.add(3)
	recent, err := s.store.ListRecent(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(entries[2].ID, recent[0].ID)
	s.Equal(entries[1].ID, recent[1].ID)
}

func (s *StoreSuite) TestDeleteProcessedBefore() {
	entries := s.add(2)
	old := time.Now().Add(-time.Hour)
	s.Require().NoError(s.store.MarkProcessed(s.ctx, []uuid.UUID{entries[0].ID}, old))

	removed, err := s.store.DeleteProcessedBefore(s.ctx, time.Now())
	s.Require().NoError(err)
	s.Equal(int64(1), removed)

	recent, err := s.store.ListRecent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal(entries[1].ID, recent[0].ID)
}
