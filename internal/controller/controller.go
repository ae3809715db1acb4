// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller owns the in-memory chat state and orchestrates every
// user action against it.
package controller

import (
	"context"
	"log"
	"sync"

	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/repo"
)

// Completer is the completion capability the controller consumes. The
// gemini client satisfies it; tests substitute scripted streams.
type Completer interface {
	StreamMessage(ctx context.Context, req gemini.StreamRequest, onFragment func(string)) error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller holds the session collection and drives the send protocol.
//
// The mutex serializes state mutation: the UI event loop and the streaming
// goroutine interleave on it the same way tasks interleave on a
// single-threaded event loop.
type Controller struct {
	mu sync.Mutex

	sessions       []*model.ChatSession
	activeID       string // "" means no session yet; next send creates one
	loading        bool
	thinkingBudget int

	repo      *repo.Repository
	completer Completer
	logger    *log.Logger

	// onChange, when set, is invoked after every in-memory mutation so the
	// presentation layer can re-render. Called outside the lock.
	onChange func()
}

// New creates a controller over the given repository and completer. A nil
// logger falls back to the standard logger.
func New(r *repo.Repository, completer Completer, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		sessions:  make([]*model.ChatSession, 0),
		repo:      r,
		completer: completer,
		logger:    logger,
	}
}

// Load populates the in-memory collection from storage. Called once at
// startup; a failed load leaves the collection empty.
func (c *Controller) Load(ctx context.Context) {
	sessions := c.repo.LoadAll(ctx)
	c.mu.Lock()
	c.sessions = sessions
	c.mu.Unlock()
}

// SetOnChange registers the re-render hook.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// SetThinkingBudget updates the reasoning bound passed on each completion.
// Values below zero are clamped to zero.
func (c *Controller) SetThinkingBudget(budget int) {
	if budget < 0 {
		budget = 0
	}
	c.mu.Lock()
	c.thinkingBudget = budget
	c.mu.Unlock()
}

// ThinkingBudget returns the current reasoning bound.
func (c *Controller) ThinkingBudget() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thinkingBudget
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Sessions returns a deep copy of the session collection in display order.
func (c *Controller) Sessions() []*model.ChatSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*model.ChatSession, len(c.sessions))
	for i, sess := range c.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// ActiveID returns the id of the active session, or "" when none is active.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// ActiveSession returns a deep copy of the active session, or nil.
func (c *Controller) ActiveSession() *model.ChatSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sess := c.sessionByIDLocked(c.activeID); sess != nil {
		return sess.Clone()
	}
	return nil
}

// Loading reports whether a send is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// =============================================================================
// SEND PROTOCOL
// =============================================================================

// SendMessage runs one full send: session creation if needed, user turn,
// stream consumption, and final persistence. It blocks until the stream
// ends, so callers run it off the UI loop. It never returns an error; a
// failed stream becomes an error-flagged message in the session.
func (c *Controller) SendMessage(ctx context.Context, text string, attachments []model.Attachment) {
	c.mu.Lock()

	// Step 1: lazily create the session. This runs synchronously before
	// any suspension point, so two rapid sends cannot both create one.
	sess := c.sessionByIDLocked(c.activeID)
	if sess == nil {
		sess = model.NewChatSession(text)
		c.sessions = append(c.sessions, sess)
		c.activeID = sess.ID
		// Persist immediately: the row must exist even if the model call
		// never completes.
		c.repo.Upsert(ctx, sess.Clone())
	}

	// Fallbacks for the final write, in case the session is evicted from
	// memory while the stream is in flight.
	sessionID := sess.ID
	createdTitle := sess.Title
	createdAt := sess.CreatedAt

	// Step 2: append the user turn. The history handed to the completer is
	// captured before this append; the new input travels separately as the
	// prompt and is never duplicated into history.
	history := sess.History()
	userMsg := model.NewUserMessage(text, attachments)
	sess.AppendMessage(userMsg)
	c.repo.Upsert(ctx, sess.Clone())

	// Step 3: mark loading and start consuming.
	c.loading = true
	budget := c.thinkingBudget
	c.mu.Unlock()
	c.notify()

	// Step 8: the loading flag always clears, success or failure.
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		c.notify()
	}()

	var modelMsg *model.Message
	streamErr := c.completer.StreamMessage(ctx, gemini.StreamRequest{
		Prompt:         text,
		Attachments:    attachments,
		History:        history,
		ThinkingBudget: budget,
	}, func(fragment string) {
		c.mu.Lock()
		if modelMsg == nil {
			// Step 4: first fragment creates the model message. In memory
			// only; persistence waits for the end of the stream.
			modelMsg = model.NewModelMessage()
			modelMsg.AppendFragment(fragment)
			sess.AppendMessage(modelMsg)
		} else {
			// Step 5: later fragments grow the same message, in arrival
			// order. Deleting or leaving the session does not stop this;
			// the orphaned record keeps accumulating until the stream ends.
			modelMsg.AppendFragment(fragment)
		}
		c.mu.Unlock()
		c.notify()
	})

	if streamErr != nil {
		// Step 7: substitute one error-flagged message for the (possibly
		// partial) model turn and persist best-effort.
		c.mu.Lock()
		errMsg := model.NewErrorMessage(streamErr.Error())
		if modelMsg != nil {
			sess.ReplaceMessage(modelMsg.ID, errMsg)
		} else {
			sess.AppendMessage(errMsg)
		}
		c.repo.Upsert(ctx, c.finalRecordLocked(sess, sessionID, createdTitle, createdAt))
		c.mu.Unlock()
		c.logger.Printf("controller: stream for session %s failed: %v", sessionID, streamErr)
		c.notify()
		return
	}

	// Step 6: freeze the model turn and persist the full message list in
	// one write.
	c.mu.Lock()
	if modelMsg != nil {
		modelMsg.FinalizeStream()
	}
	c.repo.Upsert(ctx, c.finalRecordLocked(sess, sessionID, createdTitle, createdAt))
	c.mu.Unlock()
	c.notify()
}

// finalRecordLocked builds the session record for the final durable write.
// Title and creation time are carried over from whatever is currently known
// for the id, falling back to the values captured at creation if the
// session was evicted from memory mid-stream.
func (c *Controller) finalRecordLocked(sess *model.ChatSession, id, fallbackTitle string, fallbackCreatedAt int64) *model.ChatSession {
	record := sess.Clone()
	record.Title = fallbackTitle
	record.CreatedAt = fallbackCreatedAt
	if current := c.sessionByIDLocked(id); current != nil {
		record.Title = current.Title
		record.CreatedAt = current.CreatedAt
	}
	return record
}

// =============================================================================
// OTHER OPERATIONS
// =============================================================================

// NewChat clears the active session pointer. No session row is created;
// that happens lazily on the next send.
func (c *Controller) NewChat() {
	c.mu.Lock()
	c.activeID = ""
	c.loading = false
	c.mu.Unlock()
	c.notify()
}

// DeleteSession removes a session from memory immediately and issues the
// durable delete. Deleting the active session clears the active pointer.
func (c *Controller) DeleteSession(ctx context.Context, id string) {
	c.mu.Lock()
	for i, sess := range c.sessions {
		if sess.ID == id {
			c.sessions = append(c.sessions[:i], c.sessions[i+1:]...)
			break
		}
	}
	if c.activeID == id {
		c.activeID = ""
	}
	c.mu.Unlock()

	c.repo.Remove(ctx, id)
	c.notify()
}

// RenameSession updates the title in memory, then persists the full record.
func (c *Controller) RenameSession(ctx context.Context, id, newTitle string) {
	c.mu.Lock()
	sess := c.sessionByIDLocked(id)
	if sess == nil {
		c.mu.Unlock()
		return
	}
	sess.SetTitle(newTitle)
	record := sess.Clone()
	c.mu.Unlock()

	c.repo.Upsert(ctx, record)
	c.notify()
}

// SelectSession switches the active session. Storage is not touched.
func (c *Controller) SelectSession(id string) {
	c.mu.Lock()
	if c.sessionByIDLocked(id) != nil {
		c.activeID = id
	}
	c.mu.Unlock()
	c.notify()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sessionByIDLocked finds a session in the collection. Caller holds the lock.
func (c *Controller) sessionByIDLocked(id string) *model.ChatSession {
	if id == "" {
		return nil
	}
	for _, sess := range c.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// notify invokes the re-render hook, if any, outside the lock.
func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
