// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// The view is stateless with respect to chat data: every render works from
// a fresh read-only snapshot of the controller, and every user action is a
// controller command. The only state owned here is presentation state
// (focus, scroll position, staged attachments, the text being typed).
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/gemchat-tui/internal/controller"
	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/ui/styles"
)

// focusArea identifies which pane receives key input.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// sidebarWidth is the fixed width of the session list pane.
const sidebarWidth = 28

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctrl  *controller.Controller
	theme *styles.Theme

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	focus    focusArea
	cursor   int // sidebar selection index
	renaming bool

	// staged holds attachments queued by /attach for the next send.
	staged []model.Attachment

	status string
}

// New creates the chat model over a controller.
func New(ctrl *controller.Controller, theme *styles.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message, or /attach <path>"
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return Model{
		ctrl:     ctrl,
		theme:    theme,
		input:    ti,
		spin:     sp,
		renderer: renderer,
	}
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// =============================================================================
// COMMANDS
// =============================================================================

// sendCmd runs one full send off the event loop. The controller blocks
// until the stream ends; fragment-by-fragment updates arrive separately as
// StateChangedMsg via the controller's change hook.
func (m Model) sendCmd(text string, attachments []model.Attachment) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.SendMessage(context.Background(), text, attachments)
		return SendFinishedMsg{}
	}
}
