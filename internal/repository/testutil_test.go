package repository

import (
	"testing"

	"github.com/jwwelbor/shark-orchestrator/internal/db"
)

// newTestDB opens a fresh in-memory SQLite database with the production
// schema applied, one per test so tests don't share state. A single
// open connection is enforced so SQLite's per-connection :memory:
// database isn't silently reset under the pool.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	conn, err := db.InitDB(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	return NewDB(conn)
}
