// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/assistant"
	"github.com/jeranaias/compass-tui/internal/config"
	"github.com/jeranaias/compass-tui/internal/markdown"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/newsletter"
	"github.com/jeranaias/compass-tui/internal/patterns"
	"github.com/jeranaias/compass-tui/internal/reference"
	"github.com/jeranaias/compass-tui/internal/search"
	"github.com/jeranaias/compass-tui/internal/session"
	"github.com/jeranaias/compass-tui/internal/ui/components"
	"github.com/jeranaias/compass-tui/internal/ui/styles"
)

// Deps is the component set the TUI is built from.
type Deps struct {
	Ctx        context.Context
	Config     *config.Config
	Log        *zap.Logger
	Session    *session.Manager
	Patterns   *patterns.Store
	Search     *search.Engine
	Assistant  *assistant.Session
	Reference  *reference.Service
	Newsletter *newsletter.Service
	// Expired receives a value each time the session expires.
	Expired <-chan struct{}
	Version string
	// StartPath is the first route shown ("/" when empty).
	StartPath string
}

// env is shared by the root model and every screen.
type env struct {
	Deps
	theme *styles.Theme
	md    *markdown.Renderer
	// width/height of the content area
	width  int
	height int
}

func (e *env) ctx() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}

func (e *env) log() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// =============================================================================
// MESSAGES
// =============================================================================

// NavigateMsg asks the root model to move to Path.
type NavigateMsg struct {
	Path string
}

// BackMsg asks the root model to go back.
type BackMsg struct{}

// loggedInMsg is sent by the login screen after a successful login.
type loggedInMsg struct{}

// ConfigReloadedMsg carries a configuration re-read from disk. The root
// model re-applies the ui section (theme, word wrap, help line).
type ConfigReloadedMsg struct {
	Config *config.Config
}

// sessionExpiredMsg is produced when the client gives up on a refresh.
type sessionExpiredMsg struct{}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

func back() tea.Msg { return BackMsg{} }

func toast(kind components.ToastKind, message string) tea.Cmd {
	return components.ShowToast(kind, message)
}

// errorToast turns a failed call into an error toast. Cancelled and stale
// calls are silent.
func errorToast(err error) tea.Cmd {
	if err == nil || api.IsCanceled(err) || isStale(err) {
		return nil
	}
	return toast(components.ToastKindError, api.UserMessage(err))
}

func isStale(err error) bool {
	return errors.Is(err, patterns.ErrStale) || errors.Is(err, search.ErrStale)
}

// waitExpired blocks until the session expires or ctx ends.
func waitExpired(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ch:
			return sessionExpiredMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// cardExcerpt is the description length shown on pattern cards.
func (e *env) cardExcerpt() int {
	if e.Config != nil && e.Config.Search.CardExcerptLength > 0 {
		return e.Config.Search.CardExcerptLength
	}
	return 150
}

// resultExcerpt is the description length shown on search results.
func (e *env) resultExcerpt() int {
	if e.Config != nil && e.Config.Search.ExcerptLength > 0 {
		return e.Config.Search.ExcerptLength
	}
	return 200
}

func (e *env) trendingLimit() int {
	if e.Config != nil && e.Config.Search.TrendingLimit > 0 {
		return e.Config.Search.TrendingLimit
	}
	return 5
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, api.ErrNotFound)
}

// fieldErrorsOf extracts per-field messages from a local validation error
// or a backend 422.
func fieldErrorsOf(err error) map[string]string {
	var fe model.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return api.FieldErrors(err)
}
