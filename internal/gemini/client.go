// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// Configuration constants for the Gemini API.
const (
	// DefaultBaseURL is the base URL for the Gemini API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	// MaxErrorBodySize caps how much of an error response body is read.
	MaxErrorBodySize = 64 * 1024

	// requestsPerMinute is the client-side rate limit. The free tier
	// rejects bursts well below this; limiting here turns those into
	// waits instead of errors.
	requestsPerMinute = 10
)

// sharedStreamingClient is used for streaming requests. No client timeout:
// stream lifetime is controlled via context.
// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// ErrNotConfigured indicates the API key is not set.
var ErrNotConfigured = errors.New("gemini API key not configured")

// =============================================================================
// CLIENT
// =============================================================================

// Client communicates with the Gemini streaming API.
type Client struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the given API key and model. An empty
// model falls back to DefaultModel.
func NewClient(apiKey, modelName string) *Client {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Client{
		apiKey:     apiKey,
		modelName:  modelName,
		baseURL:    DefaultBaseURL,
		httpClient: sharedStreamingClient,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), requestsPerMinute),
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.modelName
}

// =============================================================================
// STREAMING
// =============================================================================

// StreamRequest is one completion call: the new prompt plus everything the
// model needs to continue the conversation.
type StreamRequest struct {
	// Prompt is the user's new input. Never duplicated into History.
	Prompt string

	// Attachments accompany the prompt.
	Attachments []model.Attachment

	// History holds the prior turns, in order, excluding error-flagged
	// messages (the caller filters via ChatSession.History).
	History []*model.Message

	// ThinkingBudget bounds internal reasoning. 0 disables it.
	ThinkingBudget int
}

// StreamMessage sends the request and invokes onFragment for each text
// fragment as it arrives, strictly in arrival order. It returns nil when
// the model finishes normally, or a *CompletionError when the stream fails.
func (c *Client) StreamMessage(ctx context.Context, req StreamRequest, onFragment func(string)) error {
	if c.apiKey == "" {
		return &CompletionError{Message: ErrNotConfigured.Error()}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &CompletionError{Message: err.Error()}
	}

	body, err := json.Marshal(generateRequest{
		Contents:         c.buildContents(req),
		GenerationConfig: &GenerationConfig{ThinkingConfig: &ThinkingConfig{ThinkingBudget: req.ThinkingBudget}},
	})
	if err != nil {
		return &CompletionError{Message: "encode request: " + err.Error()}
	}

	endpoint := c.baseURL + "/models/" + url.PathEscape(c.modelName) + ":streamGenerateContent?alt=sse"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &CompletionError{Message: "build request: " + err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &CompletionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.errorFromResponse(resp)
	}

	reader := newStreamReader(resp.Body)
	return reader.Process(onFragment)
}

// errorFromResponse converts a non-200 response into a *CompletionError,
// preferring the API's own error message when the body parses.
func (c *Client) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))

	var payload struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil && payload.Error.Message != "" {
		return &CompletionError{Message: payload.Error.Message, Status: resp.StatusCode}
	}
	return &CompletionError{Message: resp.Status, Status: resp.StatusCode}
}

// =============================================================================
// HISTORY TRANSLATION
// =============================================================================

// buildContents translates prior turns plus the new prompt into wire
// contents. Turn order is preserved; the prompt always comes last and is
// never also present in the history.
func (c *Client) buildContents(req StreamRequest) []Content {
	contents := make([]Content, 0, len(req.History)+1)

	for _, msg := range req.History {
		role := "user"
		if msg.Role == model.RoleModel {
			role = "model"
		}
		parts := buildParts(msg.DisplayText(), msg.Attachments)
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, Content{Role: role, Parts: parts})
	}

	contents = append(contents, Content{
		Role:  "user",
		Parts: buildParts(req.Prompt, req.Attachments),
	})
	return contents
}

// buildParts assembles the parts of one turn: the text (if any), then each
// attachment. Text-like attachments are decoded and inlined as annotated
// text; binary ones ride along as typed blobs.
func buildParts(text string, attachments []model.Attachment) []Part {
	var parts []Part
	if text != "" {
		parts = append(parts, Part{Text: text})
	}

	for _, att := range attachments {
		if att.IsTextLike() {
			decoded, err := att.DecodeText()
			if err != nil {
				// Unreadable text attachment: fall back to the blob form.
				parts = append(parts, Part{InlineData: &InlineData{MimeType: att.MimeType, Data: att.Data}})
				continue
			}
			parts = append(parts, Part{Text: "Attached file: " + att.Name + "\n\n" + decoded})
			continue
		}
		parts = append(parts, Part{InlineData: &InlineData{MimeType: att.MimeType, Data: att.Data}})
	}
	return parts
}
