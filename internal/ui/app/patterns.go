// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/patterns"
	"github.com/jeranaias/compass-tui/internal/search"
	"github.com/jeranaias/compass-tui/internal/ui/components"
	"github.com/jeranaias/compass-tui/internal/ui/router"
)

// =============================================================================
// PATTERN LIST
// =============================================================================

type pageLoadedMsg struct {
	page patterns.Page
	err  error
}

type filterOptionsMsg struct {
	opts search.FilterOptions
	err  error
}

// listFilterKeys are the sections of the list filter panel.
var listFilterKeys = []model.FilterKey{
	model.FilterStrategy, model.FilterMVCComponent, model.FilterGdpr,
	model.FilterPbd, model.FilterIso, model.FilterVulnerability,
}

type patternListScreen struct {
	base
	page    patterns.Page
	pager   components.Pagination
	panel   *filterPanel
	opts    search.FilterOptions
	loading bool
	err     error
	cur     cursor
}

func newPatternListScreen(e *env) *patternListScreen {
	req := e.Patterns.Request()
	s := &patternListScreen{
		base:    base{env: e},
		pager:   components.NewPagination(req.Size),
		panel:   newFilterPanel(listFilterKeys),
		loading: true,
	}
	s.pager.Page = req.Page
	return s
}

func (s *patternListScreen) Init() tea.Cmd {
	ctx, ref := s.env.ctx(), s.env.Reference
	return tea.Batch(
		s.load(func(st *patterns.Store) (patterns.Page, error) { return st.Reload(ctx) }),
		func() tea.Msg {
			opts, err := ref.FilterOptions(ctx)
			return filterOptionsMsg{opts: opts, err: err}
		},
	)
}

// load runs a store call off the update loop.
func (s *patternListScreen) load(fn func(*patterns.Store) (patterns.Page, error)) tea.Cmd {
	s.loading = true
	s.pager.SetDisabled(true)
	store := s.env.Patterns
	return func() tea.Msg {
		pg, err := fn(store)
		return pageLoadedMsg{page: pg, err: err}
	}
}

func (s *patternListScreen) CapturesInput() bool { return s.panel.open }

func (s *patternListScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	ctx := s.env.ctx()
	switch msg := msg.(type) {
	case pageLoadedMsg:
		if isStale(msg.err) {
			return s, nil
		}
		s.loading = false
		s.pager.SetDisabled(false)
		s.err = msg.err
		if msg.err != nil {
			return s, errorToast(msg.err)
		}
		s.page = msg.page
		s.pager.Set(msg.page.Page, msg.page.PageSize, msg.page.Total, len(msg.page.Items))
		s.cur.clamp(len(msg.page.Items))
		if len(s.opts.GdprArticles) == 0 && len(msg.page.Items) > 0 {
			// Reference endpoints failed or are still loading.
			s.opts = search.FromPatterns(msg.page.Items)
			s.panel.Load(s.opts, s.env.Patterns.Filters())
		}
		return s, nil

	case filterOptionsMsg:
		if msg.err == nil {
			s.opts = msg.opts
			s.panel.Load(s.opts, s.env.Patterns.Filters())
		} else {
			s.env.log().Debug("filter options unavailable, using page entries")
		}
		return s, nil

	case components.PageChangedMsg:
		if msg.Size != s.pager.Size {
			size := msg.Size
			return s, s.load(func(st *patterns.Store) (patterns.Page, error) { return st.ChangePageSize(ctx, size) })
		}
		page := msg.Page
		return s, s.load(func(st *patterns.Store) (patterns.Page, error) { return st.ChangePage(ctx, page) })

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *patternListScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	ctx := s.env.ctx()
	key := msg.String()
	if s.panel.open {
		if key == "esc" {
			s.panel.open = false
			s.panel.Reset(s.env.Patterns.Filters())
			return nil
		}
		if s.panel.Update(key) {
			s.panel.open = false
			f := s.panel.Filters(s.env.Patterns.Filters())
			return s.load(func(st *patterns.Store) (patterns.Page, error) { return st.ApplyFilters(ctx, f) })
		}
		return nil
	}
	if s.cur.move(key, len(s.page.Items)) {
		return nil
	}
	if cmd, used := s.pager.Update(msg); used {
		return cmd
	}
	switch key {
	case "enter":
		if len(s.page.Items) > 0 {
			return navigate(router.Path("/patterns/:id", s.page.Items[s.cur.pos].ID))
		}
	case "f":
		s.panel.open = true
	case "c":
		s.panel.Reset(model.Filters{})
		return s.load(func(st *patterns.Store) (patterns.Page, error) { return st.ResetFilters(ctx) })
	case "r":
		s.env.Patterns.ClearError()
		return s.load(func(st *patterns.Store) (patterns.Page, error) { return st.Reload(ctx) })
	case "n":
		if s.env.Session.CanCreate() {
			return navigate("/patterns/create")
		}
		return toast(components.ToastKindWarning, "Il tuo ruolo non consente di creare pattern")
	}
	return nil
}

func (s *patternListScreen) View() string {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Privacy pattern"))
	b.WriteString("\n")
	if tags := tagLine(t, s.opts.ActiveTags(s.env.Patterns.Filters())); tags != "" {
		b.WriteString(tags)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.panel.open {
		b.WriteString(s.panel.View(t))
		return b.String()
	}

	switch {
	case s.loading && len(s.page.Items) == 0:
		b.WriteString(t.LoadingText.Render("Caricamento pattern..."))
	case s.err != nil:
		b.WriteString(t.FieldError.Render(api.UserMessage(s.err)))
		b.WriteString("\n")
		b.WriteString(t.Muted.Render("Premi r per riprovare."))
	case len(s.page.Items) == 0:
		b.WriteString(t.Muted.Render("Nessun pattern trovato con i filtri selezionati."))
	default:
		rows := (s.height - 6) / 4
		start, end := s.cur.window(len(s.page.Items), rows)
		for i := start; i < end; i++ {
			b.WriteString(patternCard(t, s.page.Items[i], i == s.cur.pos, s.width, s.env.cardExcerpt(), ""))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(s.pager.View(t))
	b.WriteString("\n")
	hints := "enter apri · f filtri · c azzera · r ricarica"
	if s.env.Session.CanCreate() {
		hints += " · n nuovo"
	}
	b.WriteString(t.Muted.Render(hints))
	return b.String()
}
