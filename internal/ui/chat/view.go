// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/util"
)

// View renders the whole screen: sidebar, transcript, input, status bar.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	sidebar := m.renderSidebar()
	transcript := m.viewport.View()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, transcript)

	input := m.theme.InputContainer.Width(m.width - 4).Render(m.input.View())

	var status string
	if m.ctrl.Loading() {
		status = m.spin.View() + " thinking..."
	} else {
		status = m.statusLine()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, input, m.theme.StatusBar.Render(status))
}

// renderSidebar draws the session list, newest last, with the active
// session highlighted and the cursor marking the sidebar selection.
func (m Model) renderSidebar() string {
	sessions := m.ctrl.Sessions()
	activeID := m.ctrl.ActiveID()

	var sb strings.Builder
	sb.WriteString(m.theme.SessionTitle.Render("Chats"))
	sb.WriteString("\n")

	if len(sessions) == 0 {
		sb.WriteString(m.theme.SessionItem.Render("(no chats yet)"))
	}

	for i, sess := range sessions {
		title := util.TruncateString(sess.GetTitle(), sidebarWidth-4)
		line := util.PadRight(title, sidebarWidth-4)

		marker := "  "
		if m.focus == focusSidebar && i == m.cursor {
			marker = "> "
		}

		style := m.theme.SessionItem
		if sess.ID == activeID {
			style = m.theme.SessionActive
		}
		sb.WriteString(marker + style.Render(line) + "\n")
	}

	return m.theme.Sidebar.Width(sidebarWidth).Height(m.viewport.Height).Render(sb.String())
}

// refreshTranscript rebuilds the viewport content from a fresh controller
// snapshot and keeps the view pinned to the bottom while streaming.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	sess := m.ctrl.ActiveSession()
	if sess == nil {
		m.viewport.SetContent(m.theme.SessionItem.Render("New conversation. Type a message to begin."))
		return
	}

	wasAtBottom := m.viewport.AtBottom()

	var sb strings.Builder
	for _, msg := range sess.Messages {
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}
	m.viewport.SetContent(sb.String())

	if wasAtBottom {
		m.viewport.GotoBottom()
	}
}

// renderMessage formats one message: role label, attachment notes, and the
// body. Model turns go through glamour; user turns and errors stay plain.
func (m Model) renderMessage(msg *model.Message) string {
	var sb strings.Builder

	switch {
	case msg.IsError:
		sb.WriteString(m.theme.ErrorText.Render("Error"))
		sb.WriteString("\n")
		sb.WriteString(m.theme.ErrorText.Render(msg.DisplayText()))
		sb.WriteString("\n")
		return sb.String()
	case msg.Role == model.RoleUser:
		sb.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()))
	default:
		sb.WriteString(m.theme.ModelLabel.Render(msg.Role.DisplayName()))
	}
	sb.WriteString("\n")

	for _, att := range msg.Attachments {
		sb.WriteString(m.theme.Attachment.Render("[" + att.Name + " " + att.MimeType + "]"))
		sb.WriteString("\n")
	}

	text := msg.DisplayText()
	if msg.Role == model.RoleModel && m.renderer != nil {
		if rendered, err := m.renderer.Render(text); err == nil {
			sb.WriteString(rendered)
			return sb.String()
		}
	}
	sb.WriteString(text)
	sb.WriteString("\n")
	return sb.String()
}

// statusLine summarizes staged attachments and key hints.
func (m Model) statusLine() string {
	if m.status != "" {
		return m.status
	}
	var parts []string
	if n := len(m.staged); n == 1 {
		parts = append(parts, "1 file staged")
	} else if n > 1 {
		parts = append(parts, util.TruncateString(m.staged[0].Name, 20)+" +more staged")
	}
	parts = append(parts, "enter: send | tab: chats | ctrl+n: new | f2: rename | ctrl+c: quit")
	return strings.Join(parts, "  ")
}
