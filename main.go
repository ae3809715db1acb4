// gemchat TUI - a terminal chat client for the Gemini API.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/controller"
	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/repo"
	"github.com/jeranaias/gemchat-tui/internal/store"
	"github.com/jeranaias/gemchat-tui/internal/ui/chat"
	"github.com/jeranaias/gemchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("gemchat %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "gemchat: stdout is not a terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gemchat: %v\n", err)
		os.Exit(1)
	}

	logger := openLogger(cfg.DataDir)

	// Storage degrades, never blocks boot: with no usable database the
	// session list is simply empty and nothing persists.
	var sessionStore repo.SessionStore
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		logger.Printf("main: %v; running without persistence", err)
		sessionStore = unavailableStore{err: err}
	} else {
		defer st.Close()
		sessionStore = st
	}

	repository := repo.New(sessionStore, logger)
	client := gemini.NewClient(cfg.APIKey, cfg.Model)

	ctrl := controller.New(repository, client, logger)
	ctrl.SetThinkingBudget(cfg.ThinkingBudget)
	ctrl.Load(context.Background())

	theme := styles.NewTheme()
	program := tea.NewProgram(chat.New(ctrl, theme), tea.WithAltScreen())

	// Fragments arrive on the streaming goroutine; program.Send hands them
	// to the event loop in order.
	ctrl.SetOnChange(func() {
		program.Send(chat.StateChangedMsg{})
	})

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "gemchat: %v\n", err)
		os.Exit(1)
	}
}

// openLogger routes diagnostics to a file; the TUI owns stdout.
func openLogger(dataDir string) *log.Logger {
	_ = os.MkdirAll(dataDir, 0755)
	f, err := os.OpenFile(filepath.Join(dataDir, "gemchat.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	logger := log.New(f, "", log.LstdFlags)
	log.SetOutput(f)
	return logger
}

// unavailableStore stands in when the database cannot be opened. Reads and
// writes fail with the original open error, which the repository logs.
type unavailableStore struct {
	err error
}

func (u unavailableStore) GetAll(context.Context) ([]*model.ChatSession, error) { return nil, u.err }
func (u unavailableStore) Put(context.Context, *model.ChatSession) error        { return u.err }
func (u unavailableStore) Delete(context.Context, string) error                 { return u.err }
