// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"encoding/base64"
	"strings"
	"testing"
)

// =============================================================================
// TITLE DERIVATION TESTS
// =============================================================================

func TestDeriveTitle_ShortInput(t *testing.T) {
	if got := DeriveTitle("Hello"); got != "Hello" {
		t.Errorf("DeriveTitle = %q, want %q", got, "Hello")
	}
}

func TestDeriveTitle_TruncatesLongInput(t *testing.T) {
	input := strings.Repeat("a", 50)
	got := DeriveTitle(input)

	if !strings.HasSuffix(got, "...") {
		t.Errorf("Truncated title should end with ellipsis, got %q", got)
	}
	if len([]rune(got)) != 33 {
		t.Errorf("Title length = %d runes, want 33 (30 + ellipsis)", len([]rune(got)))
	}
	if !strings.HasPrefix(input, strings.TrimSuffix(got, "...")) {
		t.Errorf("Title %q is not a prefix of the input", got)
	}
}

func TestDeriveTitle_UnicodeSafe(t *testing.T) {
	input := strings.Repeat("日", 40)
	got := DeriveTitle(input)
	if len([]rune(got)) != 33 {
		t.Errorf("Unicode title length = %d runes, want 33", len([]rune(got)))
	}
}

func TestDeriveTitle_AttachmentOnlyUsesPlaceholder(t *testing.T) {
	if got := DeriveTitle(""); got != DefaultTitle {
		t.Errorf("DeriveTitle(\"\") = %q, want %q", got, DefaultTitle)
	}
	if got := DeriveTitle("   "); got != DefaultTitle {
		t.Errorf("DeriveTitle(whitespace) = %q, want %q", got, DefaultTitle)
	}
}

// =============================================================================
// MESSAGE STREAMING TESTS
// =============================================================================

func TestMessage_AppendFragmentMonotonic(t *testing.T) {
	fragments := []string{"Hel", "lo", ", ", "world", "!"}
	msg := NewModelMessage()

	var want string
	for _, f := range fragments {
		msg.AppendFragment(f)
		want += f
		if got := msg.DisplayText(); got != want {
			t.Fatalf("After fragment %q: DisplayText = %q, want %q", f, got, want)
		}
	}

	msg.FinalizeStream()
	if msg.Text != "Hello, world!" {
		t.Errorf("Final Text = %q, want %q", msg.Text, "Hello, world!")
	}
	if msg.Streaming {
		t.Error("Message should not be streaming after FinalizeStream")
	}
}

func TestMessage_AppendAfterFinalizeIsNoOp(t *testing.T) {
	msg := NewModelMessage()
	msg.AppendFragment("done")
	msg.FinalizeStream()
	msg.AppendFragment(" extra")

	if msg.DisplayText() != "done" {
		t.Errorf("DisplayText = %q, want %q", msg.DisplayText(), "done")
	}
}

func TestMessage_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewMessage(RoleUser, "x")
		if seen[msg.ID] {
			t.Fatalf("Duplicate message ID %q", msg.ID)
		}
		seen[msg.ID] = true
		if !strings.HasPrefix(msg.ID, "msg_") {
			t.Fatalf("ID should start with 'msg_', got %q", msg.ID)
		}
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("stream broke")
	if !msg.IsError {
		t.Error("Error message should have IsError set")
	}
	if msg.Role != RoleModel {
		t.Errorf("Error message role = %q, want %q", msg.Role, RoleModel)
	}
	if msg.Text != "stream broke" {
		t.Errorf("Error message text = %q, want %q", msg.Text, "stream broke")
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestChatSession_AppendKeepsOrder(t *testing.T) {
	sess := NewChatSession("first")
	m1 := NewUserMessage("one", nil)
	m2 := NewModelMessage()
	m3 := NewUserMessage("three", nil)

	sess.AppendMessage(m1)
	sess.AppendMessage(m2)
	sess.AppendMessage(m3)

	if sess.MessageCount() != 3 {
		t.Fatalf("MessageCount = %d, want 3", sess.MessageCount())
	}
	for i, want := range []*Message{m1, m2, m3} {
		if sess.Messages[i] != want {
			t.Errorf("Messages[%d] out of order", i)
		}
	}
}

func TestChatSession_HistoryExcludesErrors(t *testing.T) {
	sess := NewChatSession("hi")
	sess.AppendMessage(NewUserMessage("hi", nil))
	sess.AppendMessage(NewErrorMessage("boom"))
	sess.AppendMessage(NewUserMessage("again", nil))

	history := sess.History()
	if len(history) != 2 {
		t.Fatalf("History length = %d, want 2", len(history))
	}
	for _, msg := range history {
		if msg.IsError {
			t.Error("History should not contain error messages")
		}
	}
}

func TestChatSession_ReplaceMessage(t *testing.T) {
	sess := NewChatSession("hi")
	partial := NewModelMessage()
	partial.AppendFragment("par")
	sess.AppendMessage(NewUserMessage("hi", nil))
	sess.AppendMessage(partial)

	errMsg := NewErrorMessage("failed")
	if !sess.ReplaceMessage(partial.ID, errMsg) {
		t.Fatal("ReplaceMessage returned false for existing id")
	}
	if sess.Messages[1] != errMsg {
		t.Error("Replacement should keep the original position")
	}
	if sess.ReplaceMessage("missing", errMsg) {
		t.Error("ReplaceMessage should return false for unknown id")
	}
}

func TestChatSession_UpgradeRecordBackfillsUpdatedAt(t *testing.T) {
	sess := &ChatSession{ID: "a", Title: "Old", CreatedAt: 1}
	sess.UpgradeRecord()

	if sess.UpdatedAt != 1 {
		t.Errorf("UpdatedAt = %d, want backfill from CreatedAt = 1", sess.UpdatedAt)
	}
	if sess.Messages == nil {
		t.Error("UpgradeRecord should initialize nil Messages")
	}

	// A current-generation record is left alone.
	sess2 := &ChatSession{ID: "b", CreatedAt: 1, UpdatedAt: 5}
	sess2.UpgradeRecord()
	if sess2.UpdatedAt != 5 {
		t.Errorf("UpdatedAt = %d, want 5 unchanged", sess2.UpdatedAt)
	}
}

func TestChatSession_CloneIsDeep(t *testing.T) {
	sess := NewChatSession("hi")
	sess.AppendMessage(NewUserMessage("hi", []Attachment{NewAttachment("a.txt", "text/plain", []byte("x"))}))

	clone := sess.Clone()
	clone.Messages[0].Text = "mutated"
	clone.Title = "renamed"

	if sess.Messages[0].Text != "hi" {
		t.Error("Mutating the clone leaked into the original message")
	}
	if sess.Title == "renamed" {
		t.Error("Mutating the clone leaked into the original title")
	}
}

func TestChatSession_CloneCapturesStreamingText(t *testing.T) {
	sess := NewChatSession("hi")
	streaming := NewModelMessage()
	streaming.AppendFragment("partial")
	sess.AppendMessage(streaming)

	clone := sess.Clone()
	if clone.Messages[0].Text != "partial" {
		t.Errorf("Clone text = %q, want accumulated %q", clone.Messages[0].Text, "partial")
	}
}

// =============================================================================
// ATTACHMENT TESTS
// =============================================================================

func TestAttachment_DataIsBase64NotDataURI(t *testing.T) {
	att := NewAttachment("p.png", "image/png", []byte{0x89, 0x50, 0x4e, 0x47})

	if strings.HasPrefix(att.Data, "data:") {
		t.Error("Data must never carry a data-URI prefix")
	}
	raw, err := base64.StdEncoding.DecodeString(att.Data)
	if err != nil {
		t.Fatalf("Data is not valid base64: %v", err)
	}
	if string(raw) != string([]byte{0x89, 0x50, 0x4e, 0x47}) {
		t.Error("Decoded data does not round-trip")
	}
}

func TestAttachment_IsTextLike(t *testing.T) {
	cases := []struct {
		mime string
		want bool
	}{
		{"text/plain", true},
		{"text/csv", true},
		{"application/json", true},
		{"application/xml", true},
		{"application/javascript", true},
		{"application/typescript", true},
		{"image/png", false},
		{"application/pdf", false},
		{"application/octet-stream", false},
	}
	for _, tc := range cases {
		att := Attachment{MimeType: tc.mime}
		if got := att.IsTextLike(); got != tc.want {
			t.Errorf("IsTextLike(%q) = %v, want %v", tc.mime, got, tc.want)
		}
	}
}

func TestAttachment_DecodeText(t *testing.T) {
	att := NewAttachment("a.txt", "text/plain", []byte("hello"))
	text, err := att.DecodeText()
	if err != nil {
		t.Fatalf("DecodeText failed: %v", err)
	}
	if text != "hello" {
		t.Errorf("DecodeText = %q, want %q", text, "hello")
	}
}
