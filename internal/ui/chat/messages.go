// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import "github.com/jeranaias/gemchat-tui/internal/model"

// =============================================================================
// MESSAGES
// =============================================================================

// StateChangedMsg signals that the controller's in-memory state changed
// (new fragment, new session, rename, delete). The view re-reads its
// snapshot and re-renders. Emitted via program.Send from the controller's
// change hook, so fragments arriving on the streaming goroutine reach the
// event loop in order.
type StateChangedMsg struct{}

// SendFinishedMsg signals that a SendMessage call returned, successfully or
// not. Any failure is already represented as an error message inside the
// session, so this carries nothing.
type SendFinishedMsg struct{}

// AttachmentStagedMsg reports the outcome of an /attach command. On
// success it carries the converted attachment for the view to stage.
type AttachmentStagedMsg struct {
	Name       string
	Attachment model.Attachment
	Err        error
}
