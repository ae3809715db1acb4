// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemchat-tui/internal/attach"
)

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshTranscript()

	case tea.KeyMsg:
		model, cmd, handled := m.handleKey(msg)
		if handled {
			return model, cmd
		}

	case StateChangedMsg:
		m.refreshTranscript()

	case SendFinishedMsg:
		m.refreshTranscript()

	case AttachmentStagedMsg:
		if msg.Err != nil {
			m.status = "attach failed: " + msg.Err.Error()
		} else {
			m.staged = append(m.staged, msg.Attachment)
			m.status = "attached " + msg.Name
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes key bindings. Returns handled=false for keys that
// should fall through to the focused component.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true

	case "ctrl+n":
		m.ctrl.NewChat()
		m.renaming = false
		m.status = ""
		m.refreshTranscript()
		return m, nil, true

	case "tab":
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil, true

	case "enter":
		if m.renaming {
			return m.finishRename()
		}
		if m.focus == focusSidebar {
			return m.selectUnderCursor()
		}
		return m.submitInput()

	case "esc":
		if m.renaming {
			m.renaming = false
			m.input.Reset()
			m.input.Placeholder = "Type a message, or /attach <path>"
			return m, nil, true
		}

	case "up", "down":
		if m.focus == focusSidebar {
			count := len(m.ctrl.Sessions())
			if msg.String() == "up" && m.cursor > 0 {
				m.cursor--
			}
			if msg.String() == "down" && m.cursor < count-1 {
				m.cursor++
			}
			return m, nil, true
		}

	case "ctrl+d":
		if m.focus == focusSidebar {
			sessions := m.ctrl.Sessions()
			if m.cursor < len(sessions) {
				m.ctrl.DeleteSession(context.Background(), sessions[m.cursor].ID)
				if m.cursor > 0 {
					m.cursor--
				}
				m.refreshTranscript()
			}
			return m, nil, true
		}

	case "f2":
		if active := m.ctrl.ActiveSession(); active != nil {
			m.renaming = true
			m.focus = focusInput
			m.input.Focus()
			m.input.SetValue(active.Title)
			m.input.Placeholder = "New title"
			return m, nil, true
		}
	}

	return m, nil, false
}

// submitInput sends the typed text, or runs a slash command.
func (m Model) submitInput() (tea.Model, tea.Cmd, bool) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" && len(m.staged) == 0 {
		return m, nil, true
	}

	if path, ok := strings.CutPrefix(text, "/attach "); ok {
		m.input.Reset()
		return m, m.attachCmd(strings.TrimSpace(path)), true
	}

	attachments := m.staged
	m.staged = nil
	m.input.Reset()
	m.status = ""
	return m, m.sendCmd(text, attachments), true
}

// attachCmd converts a file off the event loop; the resulting message is
// what actually stages it.
func (m Model) attachCmd(path string) tea.Cmd {
	return func() tea.Msg {
		att, err := attach.FromFile(path)
		if err != nil {
			return AttachmentStagedMsg{Name: path, Err: err}
		}
		return AttachmentStagedMsg{Name: att.Name, Attachment: att}
	}
}

// selectUnderCursor activates the highlighted session.
func (m Model) selectUnderCursor() (tea.Model, tea.Cmd, bool) {
	sessions := m.ctrl.Sessions()
	if m.cursor < len(sessions) {
		m.ctrl.SelectSession(sessions[m.cursor].ID)
		m.focus = focusInput
		m.input.Focus()
		m.refreshTranscript()
	}
	return m, nil, true
}

// finishRename commits the rename typed into the input.
func (m Model) finishRename() (tea.Model, tea.Cmd, bool) {
	title := strings.TrimSpace(m.input.Value())
	m.renaming = false
	m.input.Reset()
	m.input.Placeholder = "Type a message, or /attach <path>"
	if title != "" {
		if active := m.ctrl.ActiveSession(); active != nil {
			m.ctrl.RenameSession(context.Background(), active.ID, title)
		}
	}
	return m, nil, true
}

// layout resizes the panes after a window change.
func (m *Model) layout() {
	transcriptWidth := m.width - sidebarWidth - 2
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	transcriptHeight := m.height - 5
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(transcriptWidth, transcriptHeight)
		m.ready = true
	} else {
		m.viewport.Width = transcriptWidth
		m.viewport.Height = transcriptHeight
	}
	m.input.Width = m.width - 6
}
