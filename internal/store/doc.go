// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides durable, versioned storage of chat sessions.
//
// Sessions are kept in an embedded SQLite database, one record per session
// keyed by session ID. The schema carries an integer version; opening a
// database recorded at an older version runs a one-time migration. The only
// migration today copies the legacy single-blob layout (a JSON array of
// whole sessions under one fixed key) into the per-session layout. The
// legacy record is never deleted, so the migration is safely re-runnable.
//
// # Key Types
//
//   - Store: handle to the open database
//
// # Usage
//
//	st, err := store.Open(dataDir)
//	if err != nil { ... }
//	defer st.Close()
//
//	sessions, err := st.GetAll(ctx)
//	err = st.Put(ctx, sess)
//	err = st.Delete(ctx, sess.ID)
//
// # Error Taxonomy
//
//   - ErrStorageUnavailable: the database cannot be created or opened; the
//     application still boots with an empty in-memory session list.
//   - ErrStorageIO: a single get/put/delete failed; the in-memory state
//     remains authoritative, but that change may not survive a restart.
package store
