package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toursights/internal/adapters/storage"
)

// timestampLayout is fixed-width so updated_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// SQLiteBackend implements Backend on the kv_entry table.
type SQLiteBackend struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteBackend creates a backend over a migrated database.
func NewSQLiteBackend(db storage.SQLDB) *SQLiteBackend {
	return &SQLiteBackend{db: db, now: time.Now}
}

// GetRaw returns the stored text for (scope, key).
// POST: ok is false and err nil when the key is absent
// INVARIANT: Store state is not mutated
func (b *SQLiteBackend) GetRaw(ctx context.Context, scope, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv_entry WHERE scope = ? AND key = ?`, scope, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, true, nil
}

// SetRaw inserts or overwrites (scope, key).
// POST: a single-row upsert; updated_at is refreshed
func (b *SQLiteBackend) SetRaw(ctx context.Context, scope, key, value string) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv_entry (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, scope, key, value, b.now().UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// DeleteScope removes every entry of scope.
func (b *SQLiteBackend) DeleteScope(ctx context.Context, scope string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM kv_entry WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("kv delete scope: %w", err)
	}
	return nil
}

// PruneScopes deletes every scope whose newest entry was written before cutoff.
// POST: returns the number of entries removed
func (b *SQLiteBackend) PruneScopes(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := b.db.ExecContext(ctx, `
		DELETE FROM kv_entry WHERE scope IN (
			SELECT scope FROM kv_entry GROUP BY scope HAVING MAX(updated_at) < ?
		)
	`, cutoff.UTC().Format(timestampLayout))
	if err != nil {
		return 0, fmt.Errorf("kv prune: %w", err)
	}
	return res.RowsAffected()
}
