// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/compass-tui/internal/ui/styles"
)

// =============================================================================
// CONFIRMATION MODAL
// =============================================================================

// ModalResultMsg reports the user's choice. ID is the value passed to Show.
type ModalResultMsg struct {
	ID        string
	Confirmed bool
}

// Modal is a yes/no confirmation dialog for destructive actions.
type Modal struct {
	theme *styles.Theme

	id      string
	title   string
	body    string
	confirm string
	cancel  string

	visible  bool
	selected int // 0=cancel, 1=confirm
	width    int
	height   int
}

// NewModal creates a hidden modal.
func NewModal(theme *styles.Theme) *Modal {
	return &Modal{theme: theme, confirm: "Conferma", cancel: "Annulla"}
}

// Show opens the modal. Cancel is preselected.
func (m *Modal) Show(id, title, body string) {
	m.id, m.title, m.body = id, title, body
	m.visible = true
	m.selected = 0
}

// SetLabels overrides the button labels.
func (m *Modal) SetLabels(confirm, cancel string) {
	m.confirm, m.cancel = confirm, cancel
}

// Hide closes the modal without a result.
func (m *Modal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is open.
func (m *Modal) IsVisible() bool {
	return m.visible
}

// SetSize updates the area the modal is centered in.
func (m *Modal) SetSize(width, height int) {
	m.width, m.height = width, height
}

func (m *Modal) resolve(confirmed bool) tea.Cmd {
	id := m.id
	m.visible = false
	return func() tea.Msg { return ModalResultMsg{ID: id, Confirmed: confirmed} }
}

// Update handles keys while the modal is open. The bool reports whether the
// modal consumed the message.
func (m *Modal) Update(msg tea.Msg) (tea.Cmd, bool) {
	if !m.visible {
		return nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	switch key.String() {
	case "left", "right", "tab", "shift+tab", "h", "l":
		m.selected = 1 - m.selected
	case "enter", " ":
		return m.resolve(m.selected == 1), true
	case "y":
		return m.resolve(true), true
	case "n", "esc":
		return m.resolve(false), true
	}
	// Swallow everything else so keys don't leak to the screen behind.
	return nil, true
}

// View renders the modal centered in its area, or "" when hidden.
func (m *Modal) View() string {
	if !m.visible {
		return ""
	}
	t := m.theme
	cancel, confirm := t.Button, t.ButtonDanger.Faint(true)
	if m.selected == 0 {
		cancel = t.ButtonActive
	} else {
		confirm = t.ButtonDanger
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		cancel.Render(m.cancel),
		confirm.Render(m.confirm),
	)

	width := 50
	if m.width > 0 && m.width-4 < width {
		width = m.width - 4
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		t.ModalTitle.Render(m.title),
		"",
		wrapText(m.body, width-6),
		"",
		buttons,
		t.Muted.Render("y/n  ←/→  enter"),
	)
	box := t.ModalBox.Width(width).Render(body)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
