// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini generateContent API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// sseEvent formats one SSE data line for a scripted server.
func sseEvent(payload string) string {
	return "data: " + payload + "\n\n"
}

// newTestClient points a client at a scripted handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", "test-model")
	c.SetBaseURL(srv.URL)
	return c
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

func TestStreamMessage_DeliversFragmentsInOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "test-model") {
			t.Errorf("URL %q should address the configured model", r.URL.Path)
		}
		if got := r.URL.Query().Get("alt"); got != "sse" {
			t.Errorf("alt = %q, want sse", got)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q, want test-key", got)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseEvent(`{"candidates":[{"content":{"parts":[{"text":"Hi"}]}}]}`))
		io.WriteString(w, sseEvent(`{"candidates":[{"content":{"parts":[{"text":" there"}]},"finishReason":"STOP"}]}`))
	})

	var fragments []string
	err := c.StreamMessage(context.Background(), StreamRequest{Prompt: "Hello"}, func(f string) {
		fragments = append(fragments, f)
	})
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}
	if len(fragments) != 2 || fragments[0] != "Hi" || fragments[1] != " there" {
		t.Errorf("fragments = %v, want [Hi,  there] in order", fragments)
	}
}

func TestStreamMessage_SkipsNoiseLines(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, ": comment line\n")
		io.WriteString(w, "event: message\n")
		io.WriteString(w, sseEvent(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
		io.WriteString(w, "data: not json at all\n\n")
		io.WriteString(w, sseEvent("[DONE]"))
	})

	var fragments []string
	err := c.StreamMessage(context.Background(), StreamRequest{Prompt: "x"}, func(f string) {
		fragments = append(fragments, f)
	})
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}
	if len(fragments) != 1 || fragments[0] != "ok" {
		t.Errorf("fragments = %v, want exactly [ok]", fragments)
	}
}

func TestStreamMessage_SendsThinkingBudget(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.ThinkingConfig == nil {
			t.Fatal("request should carry a thinking config")
		}
		if got := req.GenerationConfig.ThinkingConfig.ThinkingBudget; got != 2048 {
			t.Errorf("thinkingBudget = %d, want 2048", got)
		}
	})

	_ = c.StreamMessage(context.Background(), StreamRequest{Prompt: "x", ThinkingBudget: 2048}, func(string) {})
}

func TestStreamMessage_EmptyKeyFailsFast(t *testing.T) {
	c := NewClient("", "")
	err := c.StreamMessage(context.Background(), StreamRequest{Prompt: "x"}, func(string) {})

	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *CompletionError", err)
	}
	if !strings.Contains(ce.Message, "not configured") {
		t.Errorf("message = %q, want a configuration hint", ce.Message)
	}
}

// =============================================================================
// ERROR HANDLING TESTS
// =============================================================================

func TestStreamMessage_HTTPErrorBecomesCompletionError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	})

	err := c.StreamMessage(context.Background(), StreamRequest{Prompt: "x"}, func(string) {
		t.Error("no fragment should arrive on an HTTP error")
	})

	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *CompletionError", err)
	}
	if ce.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", ce.Status)
	}
	if ce.Message != "API key not valid" {
		t.Errorf("Message = %q, want the API's own message", ce.Message)
	}
}

func TestStreamMessage_HTTPErrorWithUnparsableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "<html>overloaded</html>")
	})

	err := c.StreamMessage(context.Background(), StreamRequest{Prompt: "x"}, func(string) {})

	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *CompletionError", err)
	}
	if ce.Status != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", ce.Status)
	}
}

func TestStreamMessage_MidStreamErrorPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseEvent(`{"candidates":[{"content":{"parts":[{"text":"part"}]}}]}`))
		io.WriteString(w, sseEvent(`{"error":{"code":429,"message":"quota exceeded"}}`))
	})

	var fragments []string
	err := c.StreamMessage(context.Background(), StreamRequest{Prompt: "x"}, func(f string) {
		fragments = append(fragments, f)
	})

	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *CompletionError", err)
	}
	if ce.Status != 429 || ce.Message != "quota exceeded" {
		t.Errorf("error = %+v, want the embedded API error", ce)
	}
	// Fragments before the failure were already delivered; the caller
	// decides what to do with the partial turn.
	if len(fragments) != 1 || fragments[0] != "part" {
		t.Errorf("fragments = %v, want [part]", fragments)
	}
}

func TestCompletionError_Formatting(t *testing.T) {
	withStatus := &CompletionError{Message: "bad key", Status: 400}
	if got := withStatus.Error(); !strings.Contains(got, "400") || !strings.Contains(got, "bad key") {
		t.Errorf("Error() = %q, want status and message", got)
	}

	withoutStatus := &CompletionError{Message: "network down"}
	if got := withoutStatus.Error(); strings.Contains(got, "HTTP") {
		t.Errorf("Error() = %q, should not mention HTTP without a status", got)
	}
}

// =============================================================================
// HISTORY TRANSLATION TESTS
// =============================================================================

func TestBuildContents_PromptLastHistoryInOrder(t *testing.T) {
	c := NewClient("k", "")
	history := []*model.Message{
		model.NewMessage(model.RoleUser, "first question"),
		model.NewMessage(model.RoleModel, "first answer"),
	}

	contents := c.buildContents(StreamRequest{Prompt: "second question", History: history})

	if len(contents) != 3 {
		t.Fatalf("contents = %d turns, want 3", len(contents))
	}
	wantRoles := []string{"user", "model", "user"}
	wantTexts := []string{"first question", "first answer", "second question"}
	for i := range contents {
		if contents[i].Role != wantRoles[i] {
			t.Errorf("contents[%d].Role = %q, want %q", i, contents[i].Role, wantRoles[i])
		}
		if contents[i].Parts[0].Text != wantTexts[i] {
			t.Errorf("contents[%d] text = %q, want %q", i, contents[i].Parts[0].Text, wantTexts[i])
		}
	}
}

func TestBuildParts_TextLikeAttachmentInlined(t *testing.T) {
	att := model.NewAttachment("main.go", "text/x-go", []byte("package main"))
	parts := buildParts("review this", []model.Attachment{att})

	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	if parts[0].Text != "review this" {
		t.Errorf("parts[0] = %q, want the prompt text", parts[0].Text)
	}
	if parts[1].InlineData != nil {
		t.Error("text-like attachment should be inlined as text, not a blob")
	}
	if !strings.Contains(parts[1].Text, "Attached file: main.go") {
		t.Errorf("inlined attachment should be annotated with its name, got %q", parts[1].Text)
	}
	if !strings.Contains(parts[1].Text, "package main") {
		t.Errorf("inlined attachment should carry the decoded content, got %q", parts[1].Text)
	}
}

func TestBuildParts_BinaryAttachmentAsBlob(t *testing.T) {
	att := model.NewAttachment("photo.png", "image/png", []byte{0x89, 0x50})
	parts := buildParts("", []model.Attachment{att})

	if len(parts) != 1 {
		t.Fatalf("parts = %d, want 1", len(parts))
	}
	blob := parts[0].InlineData
	if blob == nil {
		t.Fatal("binary attachment should ride as inlineData")
	}
	if blob.MimeType != "image/png" {
		t.Errorf("MimeType = %q, want image/png", blob.MimeType)
	}
	if strings.HasPrefix(blob.Data, "data:") {
		t.Error("blob data must be bare base64, never a data URI")
	}
}

func TestBuildParts_AttachmentOnlyTurn(t *testing.T) {
	att := model.NewAttachment("data.bin", "application/octet-stream", []byte{1, 2, 3})
	parts := buildParts("", []model.Attachment{att})

	if len(parts) != 1 {
		t.Fatalf("parts = %d, want 1 (no empty text part)", len(parts))
	}
	if parts[0].InlineData == nil {
		t.Error("the single part should be the attachment blob")
	}
}

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReader_Accumulates(t *testing.T) {
	input := sseEvent(`{"candidates":[{"content":{"parts":[{"text":"a"}]}}]}`) +
		sseEvent(`{"candidates":[{"content":{"parts":[{"text":"b"},{"text":"c"}]}}]}`)

	r := newStreamReader(strings.NewReader(input))
	var fragments []string
	if err := r.Process(func(f string) { fragments = append(fragments, f) }); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if r.Accumulated() != "abc" {
		t.Errorf("Accumulated = %q, want %q", r.Accumulated(), "abc")
	}
	// Multiple parts in one event arrive as one fragment.
	if len(fragments) != 2 || fragments[1] != "bc" {
		t.Errorf("fragments = %v, want [a bc]", fragments)
	}
}

func TestStreamReader_EmptyStream(t *testing.T) {
	r := newStreamReader(strings.NewReader(""))
	err := r.Process(func(string) { t.Error("no fragments expected") })
	if err != nil {
		t.Fatalf("empty stream should finish cleanly, got %v", err)
	}
}
