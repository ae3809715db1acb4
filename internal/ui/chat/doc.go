// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// The view renders controller snapshots and translates key presses into
// controller commands. Streaming updates reach the event loop as
// StateChangedMsg, sent from the controller's change hook through
// program.Send.
package chat
