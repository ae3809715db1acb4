// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat sessions, messages, and attachments.
//
// # Key Types
//
//   - ChatSession: Container for one conversation thread with messages and metadata
//   - Message: Single message with role, text, attachments, timestamp, and error flag
//   - Attachment: File content in transport-safe base64 form
//   - Role: Message role enumeration (user, model)
//
// # Usage
//
// Create a new session from the first user input:
//
//	sess := model.NewChatSession("Explain goroutines to me")
//	sess.AppendMessage(model.NewUserMessage("Explain goroutines to me", nil))
//
// Stream a model reply:
//
//	msg := model.NewModelMessage()
//	sess.AppendMessage(msg)
//	msg.AppendFragment("Goroutines are")
//	msg.AppendFragment(" lightweight threads.")
//	msg.FinalizeStream()
package model
