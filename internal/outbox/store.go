package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the outbox persistence operations.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds entries atomically: all of them or none.
	Append(ctx context.Context, entries ...*Entry) error

	// FetchUnprocessed returns up to limit pending entries, oldest first.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	// MarkProcessed marks entries as published. Unknown or already processed ids are ignored.
	MarkProcessed(ctx context.Context, ids []uuid.UUID, processedAt time.Time) error

	CountPending(ctx context.Context) (int64, error)

	// ListRecent returns up to limit entries, newest first, processed or not.
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)

	// DeleteProcessedBefore removes processed entries older than before and
	// returns how many it removed.
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
