// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Styles accepted by NewRenderer. "auto" picks dark or light from the
// terminal background; "notty" emits no escape codes.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

// Renderer renders markdown for the terminal. When glamour cannot be
// initialised or fails on an input, the source text is returned unchanged.
type Renderer struct {
	mu    sync.Mutex
	width int
	style string
	term  *glamour.TermRenderer
}

// NewRenderer creates a renderer wrapping at width columns.
func NewRenderer(width int, style string) *Renderer {
	r := &Renderer{style: style}
	r.SetWidth(width)
	return r
}

// SetWidth rebuilds the renderer for a new wrap width. Widths below 20 are
// raised to 20.
func (r *Renderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.term != nil && width == r.width {
		return
	}
	r.width = width

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch r.style {
	case "", StyleAuto:
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStandardStyle(r.style))
	}
	term, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		r.term = nil
		return
	}
	r.term = term
}

// Width returns the wrap width.
func (r *Renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

// Render renders src, trimming the blank lines glamour adds around the
// document.
func (r *Renderer) Render(src string) string {
	r.mu.Lock()
	term := r.term
	r.mu.Unlock()

	if term == nil {
		return src
	}
	out, err := term.Render(src)
	if err != nil {
		return src
	}
	return strings.Trim(out, "\n")
}
