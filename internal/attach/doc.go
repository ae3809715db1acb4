// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attach turns local files into transport-ready attachments.
//
// Each file is classified by extension (with content sniffing as fallback):
// spreadsheet formats are converted to newline-delimited CSV text, code and
// markup files are read as text, and everything else (images, PDFs, unknown
// binaries) is carried as base64 with its original mime type. Whatever the
// classification, the resulting Attachment.Data is always base64 text,
// never raw bytes and never a data-URI string.
package attach
