// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/patterns"
	"github.com/jeranaias/compass-tui/internal/ui/components"
	"github.com/jeranaias/compass-tui/internal/ui/router"
)

// =============================================================================
// PATTERN DETAIL
// =============================================================================

const deletePatternModal = "delete-pattern"

type patternLoadedMsg struct {
	pattern *model.Pattern
	related []model.Pattern
	err     error
}

type patternDeletedMsg struct {
	err error
}

type patternDetailScreen struct {
	base
	id       int
	pattern  *model.Pattern
	related  []model.Pattern
	selected int // related pattern cursor
	err      error
	loading  bool
	vp       viewport.Model
	modal    *components.Modal
	busy     bool
}

func newPatternDetailScreen(e *env, id int) *patternDetailScreen {
	return &patternDetailScreen{
		base:    base{env: e},
		id:      id,
		loading: true,
		vp:      viewport.New(80, 20),
		modal:   components.NewModal(e.theme),
	}
}

func (s *patternDetailScreen) Init() tea.Cmd {
	if s.id <= 0 {
		s.loading = false
		s.err = fmt.Errorf("%w: pattern non trovato", api.ErrNotFound)
		return nil
	}
	ctx, store, id := s.env.ctx(), s.env.Patterns, s.id
	return func() tea.Msg {
		p, err := store.Get(ctx, id)
		if err != nil {
			return patternLoadedMsg{err: err}
		}
		// Related patterns are a bonus; a failure leaves the section empty.
		related, _ := store.Related(ctx, id, patterns.DefaultRelatedLimit)
		return patternLoadedMsg{pattern: p, related: related}
	}
}

func (s *patternDetailScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.vp.Width = width
	s.vp.Height = height - 2
	s.modal.SetSize(width, height)
	s.refresh()
}

func (s *patternDetailScreen) CapturesInput() bool { return s.modal.IsVisible() }

func (s *patternDetailScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if cmd, used := s.modal.Update(msg); used {
		return s, cmd
	}
	switch msg := msg.(type) {
	case patternLoadedMsg:
		s.loading = false
		s.err = msg.err
		s.pattern, s.related = msg.pattern, msg.related
		s.refresh()
		if msg.err != nil && !errorsIsNotFound(msg.err) {
			return s, errorToast(msg.err)
		}
		return s, nil

	case components.ModalResultMsg:
		if msg.ID != deletePatternModal || !msg.Confirmed || s.pattern == nil {
			return s, nil
		}
		s.busy = true
		ctx, store, id := s.env.ctx(), s.env.Patterns, s.pattern.ID
		return s, func() tea.Msg { return patternDeletedMsg{err: store.Remove(ctx, id)} }

	case patternDeletedMsg:
		s.busy = false
		if msg.err != nil {
			return s, errorToast(msg.err)
		}
		return s, tea.Batch(
			toast(components.ToastKindSuccess, "Pattern eliminato"),
			navigate("/patterns"),
		)

	case tea.KeyMsg:
		if s.pattern != nil {
			switch msg.String() {
			case "e":
				if s.env.Session.CanEdit(s.pattern) {
					return s, navigate(router.Path("/patterns/:id/edit", s.pattern.ID))
				}
				return s, nil
			case "ctrl+d":
				if s.env.Session.CanEdit(s.pattern) && !s.busy {
					s.modal.SetLabels("Elimina", "Annulla")
					s.modal.Show(deletePatternModal, "Eliminare il pattern?",
						"\""+s.pattern.Title+"\" verrà eliminato definitivamente.")
				}
				return s, nil
			case "tab":
				if len(s.related) > 0 {
					s.selected = (s.selected + 1) % len(s.related)
					s.refresh()
				}
				return s, nil
			case "enter":
				if len(s.related) > 0 {
					return s, navigate(router.Path("/patterns/:id", s.related[s.selected].ID))
				}
			case "g":
				if len(s.pattern.GdprArticles) > 0 {
					return s, navigate(router.Path("/gdpr/:number", s.pattern.GdprArticles[0].Number))
				}
			}
		}
	}
	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return s, cmd
}

// refresh re-renders the pattern into the viewport.
func (s *patternDetailScreen) refresh() {
	if s.pattern == nil {
		return
	}
	s.vp.SetContent(s.render())
}

func (s *patternDetailScreen) render() string {
	t := s.theme()
	p := s.pattern
	var b strings.Builder

	b.WriteString(t.Title.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(t.StrategyTag(p.Strategy))
	if p.MVCComponent != "" {
		b.WriteString(" " + t.Tag.Render(string(p.MVCComponent)))
	}
	b.WriteString("\n")
	meta := "Aggiornato " + p.UpdatedAt.Display()
	b.WriteString(t.Muted.Render(meta))
	b.WriteString("\n\n")

	sections := []struct{ title, body string }{
		{"Descrizione", p.Description},
		{"Contesto", p.Context},
		{"Problema", p.Problem},
		{"Soluzione", p.Solution},
		{"Conseguenze", p.Consequences},
	}
	for _, sec := range sections {
		if strings.TrimSpace(sec.body) == "" {
			continue
		}
		b.WriteString(t.SectionTitle.Render(sec.title))
		b.WriteString("\n")
		b.WriteString(s.env.md.Render(sec.body))
		b.WriteString("\n\n")
	}

	var refs []string
	for _, a := range p.GdprArticles {
		refs = append(refs, t.Tag.Render("GDPR Art. "+a.Number))
	}
	for _, pr := range p.PbdPrinciples {
		refs = append(refs, t.Tag.Render("PbD "+pr.Name))
	}
	for _, ph := range p.IsoPhases {
		refs = append(refs, t.Tag.Render("ISO "+ph.Name))
	}
	for _, v := range p.Vulnerabilities {
		refs = append(refs, t.Tag.Render(v.Name))
	}
	if len(refs) > 0 {
		b.WriteString(t.SectionTitle.Render("Riferimenti"))
		b.WriteString("\n")
		b.WriteString(strings.Join(refs, " "))
		b.WriteString("\n\n")
	}

	if len(p.Examples) > 0 {
		b.WriteString(t.SectionTitle.Render("Esempi"))
		b.WriteString("\n")
		for _, ex := range p.Examples {
			cb := components.NewCodeBlock(ex)
			cb.MaxWidth = s.width - 2
			b.WriteString(cb.Render(t, t.IsDark))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(s.related) > 0 {
		b.WriteString(t.SectionTitle.Render("Pattern correlati"))
		b.WriteString("\n")
		for i, r := range s.related {
			line := r.Title + "  " + t.StrategyTag(r.Strategy)
			if i == s.selected {
				b.WriteString(t.NavActive.Render("> " + line))
			} else {
				b.WriteString(t.NavItem.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (s *patternDetailScreen) View() string {
	t := s.theme()
	if s.modal.IsVisible() {
		return s.modal.View()
	}
	switch {
	case s.loading:
		return t.LoadingText.Render("Caricamento pattern...")
	case s.err != nil:
		msg := api.UserMessage(s.err)
		if errorsIsNotFound(s.err) {
			msg = "Pattern non trovato."
		}
		return t.FieldError.Render(msg) + "\n" + t.Muted.Render("esc per tornare indietro")
	}
	hints := "↑/↓ scorri · tab correlato · enter apri"
	if len(s.pattern.GdprArticles) > 0 {
		hints += " · g articolo GDPR"
	}
	if s.env.Session.CanEdit(s.pattern) {
		hints += " · e modifica · ctrl+d elimina"
	}
	return s.vp.View() + "\n" + t.Muted.Render(hints)
}
