// Package postgres persists ledger slots in a single key-value table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"chainid/internal/ledger/state"
	"chainid/pkg/platform/sentinel"
	txcontext "chainid/pkg/platform/tx"
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements state.Store on PostgreSQL. Each Update is one SQL
// transaction holding a transaction-scoped advisory lock on its scope.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) View(ctx context.Context, fn state.ReadFunc) error {
	if sqlTx, ok := txcontext.From(ctx); ok {
		return fn(ctx, reader{q: sqlTx})
	}
	return fn(ctx, reader{q: s.db})
}

func (s *Store) Update(ctx context.Context, scope string, fn state.UpdateFunc) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context, sqlTx *sql.Tx) error {
		if _, err := sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, scope); err != nil {
			return fmt.Errorf("lock scope %s: %w", scope, err)
		}

		cs := state.NewChangeSet(reader{q: sqlTx})
		if err := fn(ctx, cs); err != nil {
			return err
		}
		return apply(ctx, sqlTx, cs.Changes())
	})
}

func apply(ctx context.Context, sqlTx *sql.Tx, changes []state.Change) error {
	var deleted []string
	for _, ch := range changes {
		if ch.Deleted {
			deleted = append(deleted, ch.Key)
			continue
		}
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO ledger_state (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = EXCLUDED.updated_at
		`, ch.Key, ch.Value)
		if err != nil {
			return fmt.Errorf("write slot %s: %w", ch.Key, err)
		}
	}
	if len(deleted) > 0 {
		if _, err := sqlTx.ExecContext(ctx, `DELETE FROM ledger_state WHERE key = ANY($1::text[])`, pq.Array(deleted)); err != nil {
			return fmt.Errorf("delete slots: %w", err)
		}
	}
	return nil
}

type reader struct{ q queryer }

func (r reader) GetValue(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.q.QueryRowContext(ctx, `SELECT value FROM ledger_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read slot %s: %w", key, err)
	}
	return value, nil
}

var _ state.Store = (*Store)(nil)
