// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attach turns local files into transport-ready attachments.
package attach

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// MaxFileSize caps ingested files at 20MB, matching the API's inline
// payload limit.
const MaxFileSize = 20 * 1024 * 1024

// textMimes maps code/text/markup extensions to their mime types.
var textMimes = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".xml":  "application/xml",
	".json": "application/json",
	".js":   "application/javascript",
	".ts":   "application/typescript",
	".go":   "text/x-go",
	".py":   "text/x-python",
	".rb":   "text/x-ruby",
	".rs":   "text/x-rust",
	".java": "text/x-java",
	".c":    "text/x-c",
	".h":    "text/x-c",
	".cpp":  "text/x-c++",
	".sh":   "text/x-shellscript",
	".sql":  "text/x-sql",
	".toml": "text/plain",
	".yaml": "text/plain",
	".yml":  "text/plain",
}

// binaryMimes maps well-known binary extensions to their mime types.
var binaryMimes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// =============================================================================
// INGESTION
// =============================================================================

// FromFile reads a file from disk and converts it to an attachment.
func FromFile(path string) (model.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Attachment{}, err
	}
	if info.Size() > MaxFileSize {
		return model.Attachment{}, fmt.Errorf("file %s exceeds %d byte limit", path, MaxFileSize)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Attachment{}, err
	}
	return FromBytes(filepath.Base(path), raw)
}

// FromBytes classifies and converts in-memory file content.
func FromBytes(name string, raw []byte) (model.Attachment, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".csv":
		return spreadsheetAttachment(name, raw, ',')
	case ".tsv":
		return spreadsheetAttachment(name, raw, '\t')
	}

	if mime, ok := textMimes[ext]; ok {
		return model.NewAttachment(name, mime, raw), nil
	}
	if mime, ok := binaryMimes[ext]; ok {
		return model.NewAttachment(name, mime, raw), nil
	}

	// Unknown extension: sniff. Sniffed text stays inline-able, anything
	// else rides as an opaque blob.
	mime := http.DetectContentType(raw)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return model.NewAttachment(name, mime, raw), nil
}

// spreadsheetAttachment normalizes tabular input to newline-delimited CSV
// text so the model receives it as readable text rather than a blob.
func spreadsheetAttachment(name string, raw []byte, comma rune) (model.Attachment, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // Ragged rows are common in real exports
	records, err := reader.ReadAll()
	if err != nil {
		return model.Attachment{}, fmt.Errorf("parse %s: %w", name, err)
	}

	var out bytes.Buffer
	writer := csv.NewWriter(&out)
	if err := writer.WriteAll(records); err != nil {
		return model.Attachment{}, fmt.Errorf("convert %s: %w", name, err)
	}
	writer.Flush()

	return model.NewAttachment(name, "text/csv", out.Bytes()), nil
}
