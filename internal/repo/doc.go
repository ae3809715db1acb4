// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repo is the thin, typed facade the rest of the application uses
// for session persistence.
//
// It isolates callers from storage mechanics and adds the one policy the
// store itself does not have: display ordering. Sessions load sorted by
// creation time, oldest first.
//
// Failure policy: LoadAll degrades to an empty list so the application
// always boots, even with no usable storage. Upsert and Remove log failures
// instead of returning them; the in-memory state upstream stays the source
// of truth, and the repository never retries on its own.
package repo
