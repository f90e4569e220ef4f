// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/reference"
	"github.com/jeranaias/compass-tui/internal/search"
	"github.com/jeranaias/compass-tui/internal/ui/router"
)

// =============================================================================
// GDPR LIST
// =============================================================================

type gdprLoadedMsg struct {
	articles []model.GdprArticle
	err      error
}

type gdprListScreen struct {
	base
	all        []model.GdprArticle
	shown      []model.GdprArticle
	categories []string
	category   int // 0 is "all"
	term       textinput.Model
	loading    bool
	err        error
	cur        cursor
}

func newGdprListScreen(e *env) *gdprListScreen {
	in := textinput.New()
	in.Placeholder = "Filtra per numero, titolo o testo"
	in.Prompt = "filtro: "
	return &gdprListScreen{base: base{env: e}, term: in, loading: true}
}

func (s *gdprListScreen) Init() tea.Cmd {
	ctx, ref := s.env.ctx(), s.env.Reference
	return func() tea.Msg {
		articles, err := ref.GdprArticles(ctx)
		return gdprLoadedMsg{articles: articles, err: err}
	}
}

func (s *gdprListScreen) CapturesInput() bool { return s.term.Focused() }

func (s *gdprListScreen) apply() {
	cat := "all"
	if s.category > 0 {
		cat = s.categories[s.category-1]
	}
	s.shown = reference.FilterArticles(s.all, cat, s.term.Value())
	s.cur.clamp(len(s.shown))
}

func (s *gdprListScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gdprLoadedMsg:
		s.loading = false
		s.err = msg.err
		if msg.err == nil {
			s.all = msg.articles
			reference.SortByNumber(s.all)
			s.categories = reference.Categories(s.all)
			s.apply()
		}
		return s, nil

	case tea.KeyMsg:
		if s.term.Focused() {
			switch msg.String() {
			case "esc", "enter", "tab":
				s.term.Blur()
				return s, nil
			}
			var cmd tea.Cmd
			s.term, cmd = s.term.Update(msg)
			s.apply()
			return s, cmd
		}
		if s.cur.move(msg.String(), len(s.shown)) {
			return s, nil
		}
		switch msg.String() {
		case "f":
			return s, s.term.Focus()
		case "c", "right":
			s.category = (s.category + 1) % (len(s.categories) + 1)
			s.apply()
		case "left":
			s.category = (s.category + len(s.categories)) % (len(s.categories) + 1)
			s.apply()
		case "r":
			s.env.Reference.Invalidate()
			s.loading = true
			return s, s.Init()
		case "enter":
			if len(s.shown) > 0 {
				return s, navigate(router.Path("/gdpr/:number", s.shown[s.cur.pos].Number))
			}
		}
	}
	return s, nil
}

func (s *gdprListScreen) View() string {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Articoli GDPR"))
	b.WriteString("\n")

	switch {
	case s.loading:
		b.WriteString(t.LoadingText.Render("Caricamento articoli..."))
		return b.String()
	case s.err != nil:
		b.WriteString(t.FieldError.Render(reference.LoadErrorMessage))
		b.WriteString("\n")
		b.WriteString(t.Muted.Render("Premi r per riprovare."))
		return b.String()
	}

	cat := "Tutte"
	if s.category > 0 {
		cat = s.categories[s.category-1]
	}
	b.WriteString(t.Tag.Render("Categoria: " + cat))
	b.WriteString("  ")
	b.WriteString(s.term.View())
	b.WriteString("\n\n")

	if len(s.shown) == 0 {
		b.WriteString(t.Muted.Render("Nessun articolo corrisponde ai filtri."))
	}
	rows := s.height - 6
	start, end := s.cur.window(len(s.shown), rows)
	lastCat := ""
	for i := start; i < end; i++ {
		a := s.shown[i]
		if a.Category != lastCat {
			b.WriteString(t.SectionTitle.Render(a.Category))
			b.WriteString("\n")
			lastCat = a.Category
		}
		title := search.HighlightFunc(a.Title, s.term.Value(),
			func(x string) string { return t.Mark.Render(x) }, func(x string) string { return x })
		line := "Art. " + a.Number + "  " + title
		if i == s.cur.pos {
			b.WriteString(t.NavActive.Render("> " + line))
		} else {
			b.WriteString(t.NavItem.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("enter apri · f filtra · ←/→ categoria · r ricarica"))
	return b.String()
}

// =============================================================================
// GDPR DETAIL
// =============================================================================

type gdprArticleMsg struct {
	article  model.GdprArticle
	patterns []model.Pattern
	err      error
}

type gdprDetailScreen struct {
	base
	number   string
	article  model.GdprArticle
	patterns []model.Pattern
	loading  bool
	err      error
	vp       viewport.Model
	cur      cursor
}

func newGdprDetailScreen(e *env, number string) *gdprDetailScreen {
	return &gdprDetailScreen{base: base{env: e}, number: number, loading: true, vp: viewport.New(80, 20)}
}

func (s *gdprDetailScreen) Init() tea.Cmd {
	ctx, ref, engine, number := s.env.ctx(), s.env.Reference, s.env.Search, s.number
	return func() tea.Msg {
		a, err := ref.GdprByNumber(ctx, number)
		if err != nil {
			return gdprArticleMsg{err: err}
		}
		// Patterns implementing the article; optional.
		res, _ := engine.Search(ctx, "", 1, model.DefaultPageSize, model.Filters{GdprID: a.ID})
		return gdprArticleMsg{article: a, patterns: res.Items}
	}
}

func (s *gdprDetailScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.vp.Width, s.vp.Height = width, height-2
	s.refresh()
}

func (s *gdprDetailScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gdprArticleMsg:
		s.loading = false
		s.err = msg.err
		s.article, s.patterns = msg.article, msg.patterns
		s.refresh()
		if msg.err != nil && !errorsIsNotFound(msg.err) {
			return s, errorToast(msg.err)
		}
		return s, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			if len(s.patterns) > 0 {
				s.cur.pos = (s.cur.pos + 1) % len(s.patterns)
				s.refresh()
			}
			return s, nil
		case "enter":
			if len(s.patterns) > 0 {
				return s, navigate(router.Path("/patterns/:id", s.patterns[s.cur.pos].ID))
			}
		}
	}
	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return s, cmd
}

func (s *gdprDetailScreen) refresh() {
	if s.loading || s.err != nil {
		return
	}
	t := s.theme()
	a := s.article
	var b strings.Builder
	b.WriteString(t.Title.Render("Articolo " + a.Number + " - " + a.Title))
	b.WriteString("\n")
	if a.Category != "" {
		b.WriteString(t.Tag.Render(a.Category))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if a.Summary != "" {
		b.WriteString(t.SectionTitle.Render("In sintesi"))
		b.WriteString("\n")
		b.WriteString(s.env.md.Render(a.Summary))
		b.WriteString("\n\n")
	}
	if a.Content != "" {
		b.WriteString(t.SectionTitle.Render("Testo"))
		b.WriteString("\n")
		b.WriteString(s.env.md.Render(a.Content))
		b.WriteString("\n\n")
	}
	if len(s.patterns) > 0 {
		b.WriteString(t.SectionTitle.Render("Pattern collegati"))
		b.WriteString("\n")
		for i, p := range s.patterns {
			line := p.Title + "  " + t.StrategyTag(p.Strategy)
			if i == s.cur.pos {
				b.WriteString(t.NavActive.Render("> " + line))
			} else {
				b.WriteString(t.NavItem.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}
	s.vp.SetContent(b.String())
}

func (s *gdprDetailScreen) View() string {
	t := s.theme()
	switch {
	case s.loading:
		return t.LoadingText.Render("Caricamento articolo...")
	case errorsIsNotFound(s.err):
		return t.FieldError.Render("Articolo GDPR "+s.number+" non trovato.") + "\n" + t.Muted.Render("esc per tornare indietro")
	case s.err != nil:
		return t.FieldError.Render(reference.LoadErrorMessage) + "\n" + t.Muted.Render("esc per tornare indietro")
	}
	return s.vp.View() + "\n" + t.Muted.Render("↑/↓ scorri · tab pattern · enter apri")
}
