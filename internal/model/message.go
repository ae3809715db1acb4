// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Gemini"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a chat session.
//
// A message is append-only once it is part of a session. The one exception is
// the in-progress model message: while a stream is active its text grows
// fragment by fragment, then it is frozen when the stream ends.
type Message struct {
	// Identity
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds

	// Content
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`

	// IsError marks a synthetic message substituted for a failed model turn.
	// Error messages are rendered distinctly and excluded from the history
	// sent on subsequent turns.
	IsError bool `json:"isError,omitempty"`

	// Streaming state (not persisted)
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	Streaming  bool            `json:"-"`
	streamText strings.Builder `json:"-"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, text string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewUserMessage creates a new user message with optional attachments.
func NewUserMessage(text string, attachments []Attachment) *Message {
	msg := NewMessage(RoleUser, text)
	msg.Attachments = attachments
	return msg
}

// NewModelMessage creates a new, initially empty model message in
// streaming state.
func NewModelMessage() *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleModel,
		Timestamp: time.Now().UnixMilli(),
		Streaming: true,
	}
}

// NewErrorMessage creates a synthetic error message carrying the
// human-readable failure text of a broken model turn.
func NewErrorMessage(text string) *Message {
	msg := NewMessage(RoleModel, text)
	msg.IsError = true
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendFragment appends a stream fragment to an in-progress model message.
// Fragments are applied strictly in arrival order; the accumulated text
// grows monotonically and is never reordered or truncated.
func (m *Message) AppendFragment(fragment string) {
	if m.Streaming {
		m.streamText.WriteString(fragment)
	}
}

// FinalizeStream freezes a streaming message. The accumulated fragments
// become the message text and further AppendFragment calls are no-ops.
func (m *Message) FinalizeStream() {
	if !m.Streaming {
		return
	}
	m.Text = m.streamText.String()
	m.streamText.Reset()
	m.Streaming = false
}

// DisplayText returns the text to display (accumulated or final).
func (m *Message) DisplayText() string {
	if m.Streaming {
		return m.streamText.String()
	}
	return m.Text
}

// Preview returns a truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	text := m.DisplayText()
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no text and no attachments.
func (m *Message) IsEmpty() bool {
	return len(m.Text) == 0 && m.streamText.Len() == 0 && len(m.Attachments) == 0
}

// Time returns the message timestamp as a time.Time.
func (m *Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateMessageID creates a unique message ID. IDs are assigned at
// creation and never reused.
func generateMessageID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
