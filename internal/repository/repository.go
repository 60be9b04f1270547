// Package repository is the storage layer: one file per entity, all
// sharing the DB wrapper and the generic helpers in this file.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

// DB wraps the database connection for repositories.
type DB struct {
	*sql.DB
}

// NewDB creates a new DB instance.
func NewDB(conn *sql.DB) *DB {
	return &DB{conn}
}

// BeginTxContext starts a new serializable transaction. SQLite has no
// isolation-level concept beyond its single-writer model, so the level
// argument is accepted for documentation purposes and ignored by the
// driver.
func (db *DB) BeginTxContext(ctx context.Context) (*sql.Tx, error) {
	return db.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// scanRows runs scan over every row returned by rows, closing rows
// before returning. This is the one generic abstraction shared by every
// per-entity List/Filter/Search method, replacing a repeated
// "for rows.Next() { ... }" block in each repository file.
func scanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return results, nil
}

// querier is satisfied by both *DB and *sql.Tx, letting every read
// helper run unchanged whether or not it's inside a caller's transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// checkVersionConflict is called after an optimistic-concurrency UPDATE
// affects zero rows to decide whether the row never existed or existed
// with a different version than the caller expected. SQLite gives no
// way to distinguish the two from RowsAffected alone, so this issues a
// follow-up read against the UPDATE ... WHERE id = ? AND version = ?
// contract every entity's Update method uses.
func checkVersionConflict(ctx context.Context, q querier, table string, entityType models.EntityType, id string, expectedVersion int64) error {
	var actual int64
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT version FROM %s WHERE id = ?", table), id).Scan(&actual)
	switch {
	case err == sql.ErrNoRows:
		return models.NewNotFoundError(string(entityType), id)
	case err != nil:
		return models.NewDatabaseError("check version", err)
	default:
		return models.NewVersionConflictError(string(entityType), id, expectedVersion, actual)
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// sqlPlaceholders returns "?, ?, ..." with n placeholders, used by every
// IN (...) clause built from a caller-supplied slice.
func sqlPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*3-2)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',', ' ')
		}
		out = append(out, '?')
	}
	return string(out)
}

// stringsToAny widens a string slice to []any for variadic SQL args.
func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
