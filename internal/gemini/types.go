// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini generateContent API.
package gemini

import "fmt"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Content is one conversation turn in the wire format.
type Content struct {
	Role  string `json:"role"` // "user" or "model"
	Parts []Part `json:"parts"`
}

// Part is one piece of a turn: either text or an opaque typed blob.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries binary attachment content as base64 with its mime type.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64, no data-URI prefix
}

// ThinkingConfig bounds the model's internal reasoning effort. A budget of
// 0 disables extended reasoning entirely.
type ThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

// GenerationConfig holds per-request model parameters.
type GenerationConfig struct {
	ThinkingConfig *ThinkingConfig `json:"thinkingConfig,omitempty"`
}

// generateRequest is the request body for :streamGenerateContent.
type generateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// streamResponse is one decoded SSE payload from the streaming endpoint.
type streamResponse struct {
	Candidates []struct {
		Content      Content `json:"content"`
		FinishReason string  `json:"finishReason,omitempty"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

// text concatenates the text parts of the first candidate.
func (r *streamResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, part := range r.Candidates[0].Content.Parts {
		out += part.Text
	}
	return out
}

// apiError is the error object the API embeds in failure responses.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// CompletionError is the terminal failure of a completion stream. It is
// surfaced to the user as a visually distinguished chat message, never a
// crash.
type CompletionError struct {
	Message string
	Status  int // HTTP status, 0 when the failure was not an HTTP error
}

// Error implements the error interface.
func (e *CompletionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("completion failed (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("completion failed: %s", e.Message)
}
