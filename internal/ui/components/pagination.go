// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/ui/styles"
)

// PageChangedMsg is emitted when the user moves to another page or picks
// another page size. Size changes always land on page 1.
type PageChangedMsg struct {
	Page int
	Size int
}

// Pagination renders the "1–10 of 42" summary and handles paging keys.
type Pagination struct {
	Page     int
	Size     int
	Total    int
	Shown    int // items on the current page
	disabled bool
}

// NewPagination creates a Pagination on page 1.
func NewPagination(size int) Pagination {
	if !model.ValidPageSize(size) {
		size = model.DefaultPageSize
	}
	return Pagination{Page: 1, Size: size}
}

// Set updates the pagination after a list response.
func (p *Pagination) Set(page, size, total, shown int) {
	p.Page, p.Size, p.Total, p.Shown = page, size, total, shown
}

// SetDisabled ignores key input while a request is in flight.
func (p *Pagination) SetDisabled(disabled bool) {
	p.disabled = disabled
}

// TotalPages returns the number of pages, at least 1.
func (p Pagination) TotalPages() int {
	return model.TotalPages(p.Total, p.Size)
}

// From returns the 1-based index of the first shown item, or 0.
func (p Pagination) From() int {
	if p.Total == 0 || p.Shown == 0 {
		return 0
	}
	return (p.Page-1)*p.Size + 1
}

// To returns the 1-based index of the last shown item, or 0.
func (p Pagination) To() int {
	if p.From() == 0 {
		return 0
	}
	return p.From() + p.Shown - 1
}

// Summary returns "1–10 of 42", or "0 of 0" for an empty list.
func (p Pagination) Summary() string {
	if p.From() == 0 {
		return "0 of " + strconv.Itoa(p.Total)
	}
	return strconv.Itoa(p.From()) + "–" + strconv.Itoa(p.To()) + " of " + strconv.Itoa(p.Total)
}

func (p Pagination) changed(page, size int) tea.Cmd {
	return func() tea.Msg { return PageChangedMsg{Page: page, Size: size} }
}

// Update handles paging keys. The bool reports whether the key was used.
func (p Pagination) Update(msg tea.Msg) (tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || p.disabled {
		return nil, false
	}
	switch key.String() {
	case "right", "pgdown", "]":
		if p.Page < p.TotalPages() {
			return p.changed(p.Page+1, p.Size), true
		}
		return nil, true
	case "left", "pgup", "[":
		if p.Page > 1 {
			return p.changed(p.Page-1, p.Size), true
		}
		return nil, true
	case "home":
		if p.Page != 1 {
			return p.changed(1, p.Size), true
		}
		return nil, true
	case "end":
		if last := p.TotalPages(); p.Page != last {
			return p.changed(last, p.Size), true
		}
		return nil, true
	case "s":
		return p.changed(1, p.nextSize()), true
	}
	return nil, false
}

// nextSize cycles through model.PageSizes.
func (p Pagination) nextSize() int {
	for i, s := range model.PageSizes {
		if s == p.Size {
			return model.PageSizes[(i+1)%len(model.PageSizes)]
		}
	}
	return model.PageSizes[0]
}

// View renders the summary, a page indicator and the key hints.
func (p Pagination) View(theme *styles.Theme) string {
	var b strings.Builder
	b.WriteString(p.Summary())
	b.WriteString("   ")
	b.WriteString("pagina " + strconv.Itoa(p.Page) + "/" + strconv.Itoa(p.TotalPages()))
	b.WriteString("   ")
	b.WriteString(strconv.Itoa(p.Size) + " per pagina")
	hints := theme.ShortcutKey.Render("[ ]") + theme.ShortcutDesc.Render(" pagina  ") +
		theme.ShortcutKey.Render("s") + theme.ShortcutDesc.Render(" dimensione")
	return theme.Pagination.Render(b.String()) + "   " + hints
}
