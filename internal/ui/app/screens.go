// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/search"
	"github.com/jeranaias/compass-tui/internal/ui/router"
	"github.com/jeranaias/compass-tui/internal/ui/styles"
)

// newScreen builds the screen for a resolved route.
func newScreen(e *env, m router.Match) Screen {
	switch m.Name {
	case router.Home:
		return newHomeScreen(e)
	case router.Login:
		return newLoginScreen(e)
	case router.Register:
		return newRegisterScreen(e)
	case router.ForgotPassword:
		return newForgotScreen(e, m.Query["token"])
	case router.PatternList:
		return newPatternListScreen(e)
	case router.PatternDetail:
		return newPatternDetailScreen(e, m.IntParam("id"))
	case router.PatternCreate:
		return newPatternFormScreen(e, 0)
	case router.PatternEdit:
		return newPatternFormScreen(e, m.IntParam("id"))
	case router.Search:
		return newSearchScreen(e, m.Query["q"])
	case router.GdprList:
		return newGdprListScreen(e)
	case router.GdprDetail:
		return newGdprDetailScreen(e, m.Param("number"))
	case router.PrivacyByDesign:
		return newPbdScreen(e)
	case router.Newsletter:
		return newNewsletterScreen(e, m.Query["email"], m.Query["token"], m.Query["action"])
	case router.About:
		return newAboutScreen(e)
	case router.Dashboard:
		return newDashboardScreen(e)
	case router.Chatbot:
		return newChatScreen(e)
	case router.Profile:
		return newProfileScreen(e)
	}
	return newNotFoundScreen(e, m.Requested)
}

// base carries what every screen needs.
type base struct {
	env    *env
	width  int
	height int
}

func (b *base) SetSize(width, height int) {
	b.width, b.height = width, height
}

func (b *base) CapturesInput() bool { return false }

func (b *base) theme() *styles.Theme { return b.env.theme }

// =============================================================================
// SHARED WIDGETS
// =============================================================================

// cursor is a bounded list selection.
type cursor struct {
	pos int
}

// move handles up/down/j/k against a list of n items. The bool reports
// whether the key was used.
func (c *cursor) move(key string, n int) bool {
	switch key {
	case "up", "k":
		if c.pos > 0 {
			c.pos--
		}
		return true
	case "down", "j":
		if c.pos < n-1 {
			c.pos++
		}
		return true
	}
	return false
}

func (c *cursor) clamp(n int) {
	if c.pos >= n {
		c.pos = n - 1
	}
	if c.pos < 0 {
		c.pos = 0
	}
}

// window returns the slice bounds that keep the cursor visible in rows
// lines.
func (c cursor) window(n, rows int) (int, int) {
	if rows < 1 {
		rows = 1
	}
	start := 0
	if c.pos >= rows {
		start = c.pos - rows + 1
	}
	end := start + rows
	if end > n {
		end = n
	}
	return start, end
}

// patternCard renders one pattern as a list card.
func patternCard(t *styles.Theme, p model.Pattern, selected bool, width, excerpt int, term string) string {
	style := t.Card
	if selected {
		style = t.CardSelected
	}
	mark := func(s string) string { return t.Mark.Render(s) }
	plain := func(s string) string { return s }

	title := t.CardTitle.Render(search.HighlightFunc(p.Title, term, mark, plain))
	tags := t.StrategyTag(p.Strategy)
	if p.MVCComponent != "" {
		tags += " " + t.Tag.Render(string(p.MVCComponent))
	}
	desc := search.HighlightFunc(search.Excerpt(p.Description, excerpt), term, mark, plain)
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	return style.Width(inner).Render(title + "  " + tags + "\n" + t.Muted.Render(desc))
}

// =============================================================================
// FILTER PANEL
// =============================================================================

// filterPanel edits a model.Filters value one section at a time.
type filterPanel struct {
	opts    search.FilterOptions
	filters model.Filters
	keys    []model.FilterKey
	section int
	// choice is the option index per section; -1 means "any".
	choice map[model.FilterKey]int
	open   bool
}

func newFilterPanel(keys []model.FilterKey) *filterPanel {
	return &filterPanel{keys: keys, choice: map[model.FilterKey]int{}}
}

// Load replaces the options, keeping the current selection.
func (p *filterPanel) Load(opts search.FilterOptions, f model.Filters) {
	p.opts = opts
	p.Reset(f)
}

// Reset syncs the panel with f.
func (p *filterPanel) Reset(f model.Filters) {
	p.filters = f
	for _, k := range p.keys {
		p.choice[k] = -1
		for i, o := range p.opts.Options(k) {
			if o.Value == f.Get(k) {
				p.choice[k] = i
			}
		}
	}
}

// Filters returns the selection applied on top of base.
func (p *filterPanel) Filters(base model.Filters) model.Filters {
	f := base
	for _, k := range p.keys {
		opts := p.opts.Options(k)
		i := p.choice[k]
		if i < 0 || i >= len(opts) {
			f = f.Unset(k)
			continue
		}
		if next, err := f.Set(k, opts[i].Value); err == nil {
			f = next
		}
	}
	return f
}

// Update handles panel keys. The bool reports an apply request.
func (p *filterPanel) Update(key string) bool {
	if len(p.keys) == 0 {
		return false
	}
	k := p.keys[p.section]
	n := len(p.opts.Options(k))
	switch key {
	case "up", "k", "shift+tab":
		p.section = (p.section - 1 + len(p.keys)) % len(p.keys)
	case "down", "j", "tab":
		p.section = (p.section + 1) % len(p.keys)
	case "right", "l":
		if n > 0 {
			p.choice[k] = (p.choice[k]+2)%(n+1) - 1
		}
	case "left", "h":
		if n > 0 {
			p.choice[k] = (p.choice[k]+n+1)%(n+1) - 1
		}
	case "backspace", "delete":
		p.choice[k] = -1
	case "enter":
		return true
	}
	return false
}

func (p *filterPanel) View(t *styles.Theme) string {
	var b strings.Builder
	b.WriteString(t.SectionTitle.Render("Filtri"))
	b.WriteString("\n")
	for i, k := range p.keys {
		label := "Tutti"
		opts := p.opts.Options(k)
		if c := p.choice[k]; c >= 0 && c < len(opts) {
			label = opts[c].Label
		}
		line := search.SectionTitle(k) + ": < " + label + " >"
		if i == p.section {
			b.WriteString(t.NavActive.Render("> " + line))
		} else {
			b.WriteString(t.NavItem.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString(t.Muted.Render("↑/↓ sezione  ←/→ valore  enter applica  esc chiudi"))
	return b.String()
}

// tagLine renders active filter tags.
func tagLine(t *styles.Theme, tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = t.Tag.Render(tag)
	}
	return strings.Join(parts, " ")
}

// keyString returns the key of msg, or "".
func keyString(msg tea.Msg) string {
	if k, ok := msg.(tea.KeyMsg); ok {
		return k.String()
	}
	return ""
}
