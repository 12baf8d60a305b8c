// Package sqlite implements the repository interfaces on SQLite.
//
// WHY SQLITE?
// The catalog is small and lives next to a single server process. An
// embedded database means nothing to install, and ":memory:" gives every
// test its own throwaway catalog.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, cross
// compilation just works.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB      is a connection pool, not a single connection
//   - sql.Row     is a single result row
//   - sql.Rows    is a cursor over many rows and must be closed
//
// The pattern is always:
//  1. sql.Open(driverName, dataSourceName) creates a pool
//  2. db.QueryContext / db.ExecContext     runs queries
//  3. rows.Scan(&field1, &field2)          reads results into Go variables
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql in its init().
	_ "modernc.org/sqlite"
)

// DB wraps the connection pool. It implements both
// repository.ListingRepository and repository.UserRepository.
type DB struct {
	conn *sql.DB
}

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/campus-market.db"  file-based, survives restarts
//   - ":memory:"               in-memory, gone on Close
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// IN-MEMORY AND THE POOL:
	// Every connection to ":memory:" gets its own empty database. Pin the
	// pool to one connection so the migrated tables are the ones queried.
	if dbPath == MemoryPath {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Defer it right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run
// on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL DEFAULT '',
			tier          TEXT NOT NULL DEFAULT 'free',
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// LISTINGS: ONE TABLE, TWO KINDS
	// Kind-specific columns are nullable and only the active kind's are
	// filled. Price is TEXT so decimal.Decimal round-trips exactly; a REAL
	// column would turn 0.10 into 0.1000000000000000055.
	// owner_id is NULL for listings created without a credential. It is not
	// a foreign key: locally synthesized identities never reach users.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id             TEXT PRIMARY KEY,
			owner_id       TEXT,
			kind           TEXT NOT NULL CHECK (kind IN ('housing', 'marketplace')),
			title          TEXT NOT NULL,
			description    TEXT NOT NULL,
			price          TEXT NOT NULL,
			location       TEXT,
			bedrooms       INTEGER,
			bathrooms      REAL,
			gender         TEXT,
			available_from TEXT,
			available_to   TEXT,
			category       TEXT,
			condition      TEXT,
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at);
		CREATE INDEX IF NOT EXISTS idx_listings_kind ON listings(kind);
	`)
	if err != nil {
		return fmt.Errorf("creating listings table: %w", err)
	}

	return nil
}
