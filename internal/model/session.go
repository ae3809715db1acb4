// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is used when the first turn of a session carries no text
// (attachment-only prompts).
const DefaultTitle = "New chat"

// maxTitleLen is the maximum derived title length in runes, before the
// ellipsis suffix.
const maxTitleLen = 30

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds one conversation thread with its message history and
// metadata.
//
// Invariants: Messages keeps append order, which is chronological order, and
// is never reordered or deduplicated. ID is immutable after creation. Title
// is independently editable.
type ChatSession struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Messages  []*Message `json:"messages"`
	CreatedAt int64      `json:"createdAt"` // epoch milliseconds
	UpdatedAt int64      `json:"updatedAt"` // epoch milliseconds
}

// NewChatSession creates a session with a fresh ID and a title derived from
// the first user input.
func NewChatSession(firstInput string) *ChatSession {
	now := time.Now().UnixMilli()
	return &ChatSession{
		ID:        uuid.NewString(),
		Title:     DeriveTitle(firstInput),
		Messages:  make([]*Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DeriveTitle builds a display title from the first user input: a prefix of
// at most 30 runes with an ellipsis suffix when truncated, or the fixed
// placeholder when the input is empty (attachment-only first turn).
func DeriveTitle(firstInput string) string {
	trimmed := strings.TrimSpace(firstInput)
	if trimmed == "" {
		return DefaultTitle
	}
	runes := []rune(trimmed)
	if len(runes) <= maxTitleLen {
		return trimmed
	}
	return string(runes[:maxTitleLen]) + "..."
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AppendMessage adds a message to the end of the session.
func (s *ChatSession) AppendMessage(msg *Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now().UnixMilli()
}

// ReplaceMessage swaps the message with the given ID for another message,
// keeping its position. Returns false if no message has that ID.
func (s *ChatSession) ReplaceMessage(id string, msg *Message) bool {
	for i, m := range s.Messages {
		if m.ID == id {
			s.Messages[i] = msg
			s.UpdatedAt = time.Now().UnixMilli()
			return true
		}
	}
	return false
}

// MessageByID returns the message with the given ID, or nil.
func (s *ChatSession) MessageByID(id string) *Message {
	for _, msg := range s.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// LastMessage returns the most recent message, or nil if the session is empty.
func (s *ChatSession) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// MessageCount returns the number of messages.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty returns true if there are no messages.
func (s *ChatSession) IsEmpty() bool {
	return len(s.Messages) == 0
}

// History returns the messages to send as prior turns to the completion
// client: every message in order, excluding error-flagged ones.
func (s *ChatSession) History() []*Message {
	history := make([]*Message, 0, len(s.Messages))
	for _, msg := range s.Messages {
		if msg.IsError {
			continue
		}
		history = append(history, msg)
	}
	return history
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// SetTitle renames the session.
func (s *ChatSession) SetTitle(title string) {
	s.Title = title
	s.UpdatedAt = time.Now().UnixMilli()
}

// GetTitle returns the session title or the placeholder.
func (s *ChatSession) GetTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return DefaultTitle
}

// =============================================================================
// SCHEMA GENERATIONS
// =============================================================================

// UpgradeRecord normalizes a session decoded from an older storage
// generation to the current shape. First-generation records were written
// without updatedAt; the field is backfilled from createdAt so the rest of
// the application never sees a zero value.
func (s *ChatSession) UpgradeRecord() {
	if s.UpdatedAt == 0 {
		s.UpdatedAt = s.CreatedAt
	}
	if s.Messages == nil {
		s.Messages = make([]*Message, 0)
	}
}

// =============================================================================
// COPYING
// =============================================================================

// Clone creates a deep copy of the session. Streaming state is not carried
// over; cloned messages hold whatever text was accumulated at clone time.
func (s *ChatSession) Clone() *ChatSession {
	clone := &ChatSession{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]*Message, len(s.Messages)),
	}
	for i, msg := range s.Messages {
		msgCopy := &Message{
			ID:        msg.ID,
			Role:      msg.Role,
			Timestamp: msg.Timestamp,
			Text:      msg.DisplayText(),
			IsError:   msg.IsError,
		}
		if len(msg.Attachments) > 0 {
			msgCopy.Attachments = make([]Attachment, len(msg.Attachments))
			copy(msgCopy.Attachments, msg.Attachments)
		}
		clone.Messages[i] = msgCopy
	}
	return clone
}

// Preview returns a short preview of the session for listing.
func (s *ChatSession) Preview() string {
	for _, msg := range s.Messages {
		if msg.Role == RoleUser {
			return msg.Preview(80)
		}
	}
	return ""
}
