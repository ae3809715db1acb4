// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides durable, versioned storage of chat sessions.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DBName is the versioned storage namespace.
	DBName = "GeminiAppDB"

	// SchemaVersion is the current schema generation. Version 1 stored all
	// sessions as one JSON blob in the kv table; version 2 stores one row
	// per session.
	SchemaVersion = 2

	// LegacySessionsKey is the fixed kv key the version-1 layout kept the
	// whole session array under.
	LegacySessionsKey = "chat_sessions"

	// schemaVersionKey is the metadata key recording the schema generation.
	schemaVersionKey = "schema_version"
)

// Schema creates every table the current layout needs. Tables from older
// generations (kv) are kept so migration can read them and so a downgrade
// never destroys data.
const schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);
`

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrStorageUnavailable indicates the database could not be created or
	// opened at all. Callers degrade to an empty session list.
	ErrStorageUnavailable = errors.New("persistent storage unavailable")

	// ErrStorageIO indicates a single read or write failed after a
	// successful open.
	ErrStorageIO = errors.New("storage i/o error")
)

// =============================================================================
// STORE
// =============================================================================

// Store is a handle to the open session database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the session database under dir and runs any
// pending schema migration. Open is idempotent: opening an already-current
// database changes nothing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrStorageUnavailable, err)
	}

	path := filepath.Join(dir, DBName+".db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorageUnavailable, path, err)
	}

	// Keep sqlite responsive under contention.
	_, _ = db.Exec("PRAGMA busy_timeout = 5000;")
	_, _ = db.Exec("PRAGMA journal_mode = WAL;")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL;")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrStorageUnavailable, err)
	}

	st := &Store{db: db, path: path}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrStorageUnavailable, err)
	}

	return st, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// =============================================================================
// RECORD OPERATIONS
// =============================================================================

// GetAll returns every stored session, in no particular order. Ordering for
// display is the caller's responsibility. Rows that fail to decode are
// skipped rather than failing the whole load.
func (s *Store) GetAll(ctx context.Context) ([]*model.ChatSession, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("%w: query sessions: %v", ErrStorageIO, err)
	}
	defer rows.Close()

	var sessions []*model.ChatSession
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: scan session: %v", ErrStorageIO, err)
		}
		sess, err := decodeSession([]byte(payload))
		if err != nil {
			// Skip corrupted rows
			continue
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate sessions: %v", ErrStorageIO, err)
	}

	return sessions, nil
}

// Put upserts one session record by its ID, silently overwriting any
// existing record with that ID.
func (s *Store) Put(ctx context.Context, sess *model.ChatSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: encode session %s: %v", ErrStorageIO, sess.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		sess.ID, string(payload), sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: put session %s: %v", ErrStorageIO, sess.ID, err)
	}
	return nil
}

// Delete removes one session record. Deleting an absent ID is a no-op, not
// an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: delete session %s: %v", ErrStorageIO, id, err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// decodeSession unmarshals one stored record and upgrades it from older
// schema generations (records written before updatedAt existed).
func decodeSession(payload []byte) (*model.ChatSession, error) {
	var sess model.ChatSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}
	if sess.ID == "" {
		return nil, errors.New("session record missing id")
	}
	sess.UpgradeRecord()
	return &sess, nil
}

// recordedVersion reads the schema version stored in metadata. A fresh
// database has no row and reports 0.
func (s *Store) recordedVersion(ctx context.Context) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = ?`, schemaVersionKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, nil
	}
	return v, nil
}

// setRecordedVersion writes the schema version to metadata.
func (s *Store) setRecordedVersion(ctx context.Context, version int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		schemaVersionKey, strconv.Itoa(version))
	return err
}
