// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini generateContent
// API.
//
// The client exposes one capability to the rest of the application: given a
// prompt, an attachment list, prior turns, and a thinking budget, produce a
// sequence of text fragments delivered as they arrive. The sequence ends
// normally when the model finishes, or ends by failing with a
// *CompletionError.
//
// History is translated turn by turn, preserving order. Each attachment is
// classified by mime type: text-like attachments are decoded and inlined as
// annotated text in the same turn, everything else is passed as an opaque
// typed blob. A thinking budget of 0 disables extended reasoning; values
// above 0 bound it.
package gemini
