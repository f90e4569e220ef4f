// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/model"
)

// DefaultWarnBefore is how long before access-token expiry the warning fires.
const DefaultWarnBefore = 2 * time.Minute

// TickInterval is the period of TickCmd.
const TickInterval = 15 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// TickMsg is sent periodically to check the token lifetime.
type TickMsg struct {
	Time time.Time
}

// ExpiryWarningMsg signals that the access token expires soon. Any request
// after expiry refreshes it transparently; the UI only shows a hint.
type ExpiryWarningMsg struct {
	Remaining time.Duration
}

// UserChangedMsg carries the new current user (nil after logout or expiry).
type UserChangedMsg struct {
	User *model.User
}

// TickCmd returns a command that ticks every TickInterval.
func TickCmd() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// =============================================================================
// EXPIRY WATCHER
// =============================================================================

// ExpiryWatcher turns ticks into at most one warning per access token.
type ExpiryWatcher struct {
	mu         sync.Mutex
	mgr        *Manager
	warnBefore time.Duration
	warnedFor  time.Time
	now        func() time.Time
}

// NewExpiryWatcher creates a watcher. warnBefore <= 0 uses DefaultWarnBefore.
func NewExpiryWatcher(mgr *Manager, warnBefore time.Duration) *ExpiryWatcher {
	if warnBefore <= 0 {
		warnBefore = DefaultWarnBefore
	}
	return &ExpiryWatcher{mgr: mgr, warnBefore: warnBefore, now: time.Now}
}

// Check returns a warning when the current token is within the warning
// window and has not been warned about yet.
func (w *ExpiryWatcher) Check() (ExpiryWarningMsg, bool) {
	exp, ok := w.mgr.TokenExpiry()
	if !ok {
		return ExpiryWarningMsg{}, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	remaining := exp.Sub(w.now())
	if remaining <= 0 || remaining > w.warnBefore || exp.Equal(w.warnedFor) {
		return ExpiryWarningMsg{}, false
	}
	w.warnedFor = exp
	return ExpiryWarningMsg{Remaining: remaining}, true
}

// HandleTick processes a tick and schedules the next one.
func (w *ExpiryWatcher) HandleTick() tea.Cmd {
	cmds := []tea.Cmd{TickCmd()}
	if msg, ok := w.Check(); ok {
		cmds = append(cmds, func() tea.Msg { return msg })
	}
	return tea.Batch(cmds...)
}

// FormatDuration returns a short human-readable duration ("45s", "2m 5s").
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
