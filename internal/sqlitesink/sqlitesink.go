// Package sqlitesink persists PERIODIC-phase stats snapshots to a local
// SQLite database for offline analysis, grounded on the reference
// project's own database/sql + mattn/go-sqlite3 usage in router/router.go
// (mustDB/addr20's open-then-prepared-statement pattern).
//
// This sink persists observability data only: it never touches path,
// queue, or sample state, so it does not violate spec §1's "persistence
// across restart" non-goal — restarting the gateway still starts every
// path from CREATED.
package sqlitesink

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/villas-go/villasnode/internal/statsjson"
)

const schema = `
CREATE TABLE IF NOT EXISTS path_stats (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	path          TEXT NOT NULL,
	ts            INTEGER NOT NULL,
	queue_depth   INTEGER NOT NULL,
	queue_used    INTEGER NOT NULL,
	pool_capacity INTEGER NOT NULL,
	pool_free     INTEGER NOT NULL,
	pool_inflight INTEGER NOT NULL,
	skipped       INTEGER NOT NULL,
	overrun       INTEGER NOT NULL
);`

// Sink appends stats snapshots to a SQLite database.
type Sink struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// Open opens (creating if necessary) the SQLite database at path and
// prepares its schema and insert statement.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	stmt, err := db.Prepare(`INSERT INTO path_stats
		(path, ts, queue_depth, queue_used, pool_capacity, pool_free, pool_inflight, skipped, overrun)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Sink{db: db, stmt: stmt}, nil
}

// Record appends one snapshot as a row. Failures here are the caller's to
// log-and-continue, matching spec §7's "no crash dialog" rule for
// observability-only failures.
func (s *Sink) Record(snap statsjson.Snapshot) error {
	_, err := s.stmt.Exec(
		snap.Path,
		snap.Timestamp.UnixNano(),
		snap.QueueDepth,
		snap.QueueUsed,
		snap.PoolCapacity,
		snap.PoolFree,
		snap.PoolInFlight,
		snap.Skipped,
		snap.Overrun,
	)
	return err
}

// Close releases the sink's prepared statement and database handle.
func (s *Sink) Close() error {
	s.stmt.Close()
	return s.db.Close()
}

// PruneOlderThan deletes rows older than the given age, used to keep the
// observability database bounded over a long-running gateway process.
func (s *Sink) PruneOlderThan(age time.Duration) error {
	cutoff := time.Now().Add(-age).UnixNano()
	_, err := s.db.Exec(`DELETE FROM path_stats WHERE ts < ?`, cutoff)
	return err
}
