// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repo is the thin, typed facade the rest of the application uses
// for session persistence.
package repo

import (
	"context"
	"log"
	"sort"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// SessionStore is the storage capability the repository wraps. *store.Store
// satisfies it; tests substitute failing stores.
type SessionStore interface {
	GetAll(ctx context.Context) ([]*model.ChatSession, error)
	Put(ctx context.Context, sess *model.ChatSession) error
	Delete(ctx context.Context, id string) error
}

// =============================================================================
// REPOSITORY
// =============================================================================

// Repository loads, upserts, and removes session records.
type Repository struct {
	store  SessionStore
	logger *log.Logger
}

// New creates a repository over the given store. A nil logger falls back to
// the standard logger.
func New(store SessionStore, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.Default()
	}
	return &Repository{store: store, logger: logger}
}

// LoadAll returns every stored session sorted by creation time ascending
// (oldest first), for stable display grouping. Any store failure degrades
// to an empty slice: the application boots with zero history rather than
// crashing.
func (r *Repository) LoadAll(ctx context.Context) []*model.ChatSession {
	sessions, err := r.store.GetAll(ctx)
	if err != nil {
		r.logger.Printf("repo: load sessions failed: %v", err)
		return []*model.ChatSession{}
	}
	if sessions == nil {
		sessions = []*model.ChatSession{}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt < sessions[j].CreatedAt
	})
	return sessions
}

// Upsert writes one session record. Failures are logged, not returned; the
// caller decides whether an unsaved change matters.
func (r *Repository) Upsert(ctx context.Context, sess *model.ChatSession) {
	if err := r.store.Put(ctx, sess); err != nil {
		r.logger.Printf("repo: upsert session %s failed: %v", sess.ID, err)
	}
}

// Remove deletes one session record. Failures are logged, not returned.
func (r *Repository) Remove(ctx context.Context, id string) {
	if err := r.store.Delete(ctx, id); err != nil {
		r.logger.Printf("repo: remove session %s failed: %v", id, err)
	}
}
