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
)

// =============================================================================
// SCHEMA MIGRATION
// =============================================================================

// migrate brings the database up to the current schema version. Called once
// per Open, after the tables exist.
func (s *Store) migrate(ctx context.Context) error {
	version, err := s.recordedVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= SchemaVersion {
		return nil
	}

	// Version 1 kept every session in one JSON array under a fixed kv key.
	// Copy each entry into the per-session layout. The legacy record stays
	// in place, so rerunning cannot lose data, and keyed upserts make the
	// copy idempotent: rerunning cannot duplicate records either.
	if err := s.importLegacyBlob(ctx); err != nil {
		return fmt.Errorf("import legacy sessions: %w", err)
	}

	return s.setRecordedVersion(ctx, SchemaVersion)
}

// importLegacyBlob copies sessions out of the version-1 single-blob layout.
// Malformed legacy data (not an array, or unparsable entries) is skipped:
// the migration is best-effort and never blocks startup.
func (s *Store) importLegacyBlob(ctx context.Context) error {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, LegacySessionsKey).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		// Not an array, or not JSON. Ignore it.
		return nil
	}

	for _, record := range records {
		sess, err := decodeSession(record)
		if err != nil {
			continue
		}
		if err := s.Put(ctx, sess); err != nil {
			return err
		}
	}
	return nil
}
