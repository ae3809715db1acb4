// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"encoding/base64"
	"strings"
)

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// Attachment is a file included with a prompt, in transport-safe form.
//
// Data is always the base64 encoding of the file bytes. It is never the raw
// bytes and never a data-URI-prefixed string. An attachment is immutable
// once created.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// NewAttachment creates an attachment from raw bytes, encoding them to base64.
func NewAttachment(name, mimeType string, raw []byte) Attachment {
	return Attachment{
		Name:     name,
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(raw),
	}
}

// IsTextLike reports whether the attachment content should be inlined as
// readable text in the prompt rather than passed as an opaque binary blob.
//
// Text-like mime types are text/*, application/json, application/xml, and
// anything containing "script" (application/javascript and friends).
func (a Attachment) IsTextLike() bool {
	mime := strings.ToLower(a.MimeType)
	switch {
	case strings.HasPrefix(mime, "text/"):
		return true
	case mime == "application/json":
		return true
	case mime == "application/xml":
		return true
	case strings.Contains(mime, "script"):
		return true
	default:
		return false
	}
}

// DecodeText decodes the base64 payload as UTF-8 text. Intended for
// text-like attachments that get inlined into the prompt.
func (a Attachment) DecodeText() (string, error) {
	raw, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Size returns the decoded payload size in bytes.
func (a Attachment) Size() int {
	return base64.StdEncoding.DecodedLen(len(a.Data))
}
