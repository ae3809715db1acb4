// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the gemchat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability and adjusts accordingly.
type Theme struct {
	ColorProfile termenv.Profile
	IsDark       bool

	// Sidebar
	Sidebar        lipgloss.Style
	SessionItem    lipgloss.Style
	SessionActive  lipgloss.Style
	SessionTitle   lipgloss.Style

	// Transcript
	UserLabel  lipgloss.Style
	ModelLabel lipgloss.Style
	ErrorText  lipgloss.Style
	Attachment lipgloss.Style

	// Input
	InputContainer lipgloss.Style
	StatusBar      lipgloss.Style
	Spinner        lipgloss.Style
}

// NewTheme builds the theme for the current terminal.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()

	accent := lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	dim := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	errRed := lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF6B6B"}

	return &Theme{
		ColorProfile: profile,
		IsDark:       isDark,

		Sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(dim).
			PaddingRight(1),
		SessionItem:   lipgloss.NewStyle().Foreground(dim),
		SessionActive: lipgloss.NewStyle().Foreground(accent).Bold(true),
		SessionTitle:  lipgloss.NewStyle().Bold(true),

		UserLabel:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		ModelLabel: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00796B", Dark: "#4DB6AC"}).Bold(true),
		ErrorText:  lipgloss.NewStyle().Foreground(errRed),
		Attachment: lipgloss.NewStyle().Foreground(dim).Italic(true),

		InputContainer: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().Foreground(dim),
		Spinner:   lipgloss.NewStyle().Foreground(accent),
	}
}
