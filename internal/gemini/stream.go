// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini generateContent API.
package gemini

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// streamReader parses the SSE-framed streaming response line by line.
type streamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulated strings.Builder
}

// newStreamReader creates a stream reader over an SSE response body.
func newStreamReader(r io.Reader) *streamReader {
	return &streamReader{reader: bufio.NewReader(r)}
}

// Process consumes the stream serially, one event at a time, invoking
// onFragment for each non-empty text delta. Blocks until the stream ends.
// Returns nil on a normal finish, *CompletionError when the stream carries
// an error payload or breaks before finishing cleanly.
func (s *streamReader) Process(onFragment func(string)) error {
	for {
		line, err := s.reader.ReadBytes('\n')
		if len(line) > 0 {
			if perr := s.processLine(line, onFragment); perr != nil {
				return perr
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return &CompletionError{Message: err.Error()}
		}
	}
}

// processLine handles a single SSE line. Non-data lines and malformed
// payloads are skipped; the fragment order of well-formed payloads is
// preserved exactly.
func (s *streamReader) processLine(line []byte, onFragment func(string)) error {
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, []byte("data:")) {
		return nil
	}
	payload := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
	if len(payload) == 0 || bytes.Equal(payload, []byte("[DONE]")) {
		return nil
	}

	var response streamResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		// Skip malformed lines
		return nil
	}

	if response.Error != nil {
		return &CompletionError{Message: response.Error.Message, Status: response.Error.Code}
	}

	if text := response.text(); text != "" {
		s.accumulated.WriteString(text)
		onFragment(text)
	}
	return nil
}

// Accumulated returns all content received so far.
func (s *streamReader) Accumulated() string {
	return s.accumulated.String()
}
