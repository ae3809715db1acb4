// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller owns the in-memory chat state and orchestrates every
// user action against it.
//
// The Controller holds the full session collection, the active session id,
// and the loading flag. No other component mutates this state; callers get
// read-only snapshots. The in-memory copy is the synchronous source of
// truth for the UI; durable writes are write-behind side effects whose
// failures surface only in the log.
//
// The central operation is SendMessage, which implements the send protocol:
// lazily create the session on first send, append the user turn, stream the
// model reply fragment by fragment into a single growing message, and
// persist the final state. A failed stream is substituted with one
// error-flagged message; the loading flag is always cleared on the way out.
//
// There is deliberately no cancellation of an in-flight stream: switching
// sessions, starting a new chat, or deleting the active session leaves the
// stream running, still applying fragments to the now-orphaned session
// record in memory and in storage. Rapid repeated sends to one session are
// likewise not mutually excluded; the loading flag is advisory for the UI.
package controller
