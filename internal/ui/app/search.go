// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/search"
	"github.com/jeranaias/compass-tui/internal/ui/components"
	"github.com/jeranaias/compass-tui/internal/ui/router"
)

// =============================================================================
// SEARCH
// =============================================================================

// autocompleteDueMsg fires after the debounce interval.
type autocompleteDueMsg struct {
	partial string
}

type suggestionsMsg struct {
	partial     string
	suggestions []model.AutocompleteSuggestion
}

type searchResultsMsg struct {
	results search.Results
	err     error
}

type searchScreen struct {
	base
	input       textinput.Model
	debounce    *search.Debouncer
	suggestions []model.AutocompleteSuggestion
	sugCur      int // -1 when no suggestion is highlighted
	results     search.Results
	searched    bool
	loading     bool
	err         error
	filters     model.Filters
	panel       *filterPanel
	pager       components.Pagination
	cur         cursor
}

func newSearchScreen(e *env, query string) *searchScreen {
	in := textinput.New()
	in.Placeholder = "Cerca pattern, articoli, strategie..."
	in.Prompt = "/ "
	in.CharLimit = 200
	in.SetValue(query)
	in.Focus()
	size := e.Patterns.Request().Size
	return &searchScreen{
		base:     base{env: e},
		input:    in,
		debounce: e.Search.NewDebouncer(),
		sugCur:   -1,
		panel:    newFilterPanel(listFilterKeys),
		pager:    components.NewPagination(size),
	}
}

func (s *searchScreen) Init() tea.Cmd {
	ctx, ref := s.env.ctx(), s.env.Reference
	cmds := []tea.Cmd{
		textinput.Blink,
		func() tea.Msg {
			opts, err := ref.FilterOptions(ctx)
			return filterOptionsMsg{opts: opts, err: err}
		},
	}
	if strings.TrimSpace(s.input.Value()) != "" {
		cmds = append(cmds, s.run(1, s.pager.Size))
	}
	return tea.Batch(cmds...)
}

func (s *searchScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.input.Width = width - 6
}

func (s *searchScreen) CapturesInput() bool { return s.input.Focused() || s.panel.open }

// run starts a search for the current input.
func (s *searchScreen) run(page, size int) tea.Cmd {
	s.debounce.Cancel()
	s.env.Search.CancelAutocomplete()
	s.suggestions, s.sugCur = nil, -1
	s.loading = true
	s.pager.SetDisabled(true)
	ctx, engine, query, filters := s.env.ctx(), s.env.Search, s.input.Value(), s.filters
	return func() tea.Msg {
		res, err := engine.Search(ctx, query, page, size, filters)
		return searchResultsMsg{results: res, err: err}
	}
}

func (s *searchScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case filterOptionsMsg:
		if msg.err == nil {
			s.panel.Load(msg.opts, s.filters)
		}
		return s, nil

	case autocompleteDueMsg:
		if msg.partial != s.input.Value() {
			return s, nil
		}
		ctx, engine := s.env.ctx(), s.env.Search
		return s, func() tea.Msg {
			return suggestionsMsg{partial: msg.partial, suggestions: engine.Autocomplete(ctx, msg.partial, 0)}
		}

	case suggestionsMsg:
		if msg.partial == s.input.Value() && s.input.Focused() {
			s.suggestions, s.sugCur = msg.suggestions, -1
		}
		return s, nil

	case searchResultsMsg:
		if isStale(msg.err) {
			return s, nil
		}
		s.loading = false
		s.pager.SetDisabled(false)
		s.searched = true
		s.err = msg.err
		if msg.err != nil {
			return s, toast(components.ToastKindError, search.ErrorMessage)
		}
		s.results = msg.results
		s.pager.Set(msg.results.Page, msg.results.PageSize, msg.results.Total, len(msg.results.Items))
		s.cur = cursor{}
		if len(msg.results.Items) > 0 {
			s.input.Blur()
		}
		return s, nil

	case components.PageChangedMsg:
		return s, s.run(msg.Page, msg.Size)

	case tea.KeyMsg:
		if s.panel.open {
			return s, s.panelKey(msg.String())
		}
		if s.input.Focused() {
			return s, s.inputKey(msg)
		}
		return s, s.resultsKey(msg)
	}

	if s.input.Focused() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *searchScreen) panelKey(key string) tea.Cmd {
	if key == "esc" {
		s.panel.open = false
		s.panel.Reset(s.filters)
		return nil
	}
	if s.panel.Update(key) {
		s.panel.open = false
		s.filters = s.panel.Filters(s.filters)
		if s.searched || strings.TrimSpace(s.input.Value()) != "" || !s.filters.IsZero() {
			return s.run(1, s.pager.Size)
		}
	}
	return nil
}

func (s *searchScreen) inputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		if len(s.suggestions) > 0 {
			s.suggestions, s.sugCur = nil, -1
			return nil
		}
		s.input.Blur()
		if !s.searched {
			return back
		}
		return nil
	case "enter":
		if s.sugCur >= 0 && s.sugCur < len(s.suggestions) {
			s.input.SetValue(s.suggestions[s.sugCur].Text())
			s.input.CursorEnd()
		}
		return s.run(1, s.pager.Size)
	case "down":
		if len(s.suggestions) > 0 {
			s.sugCur = min(s.sugCur+1, len(s.suggestions)-1)
			return nil
		}
		if len(s.results.Items) > 0 {
			s.input.Blur()
		}
		return nil
	case "up":
		if s.sugCur >= 0 {
			s.sugCur--
		}
		return nil
	case "tab":
		s.input.Blur()
		return nil
	case "ctrl+f":
		s.panel.open = true
		return nil
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	after := s.input.Value()
	if after == before {
		return cmd
	}
	if !s.env.Search.ShouldAutocomplete(after) {
		s.debounce.Cancel()
		s.env.Search.CancelAutocomplete()
		s.suggestions, s.sugCur = nil, -1
		return cmd
	}
	return tea.Batch(cmd, s.debounce.Cmd(autocompleteDueMsg{partial: after}))
}

func (s *searchScreen) resultsKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if s.cur.move(key, len(s.results.Items)) {
		return nil
	}
	if cmd, used := s.pager.Update(msg); used {
		return cmd
	}
	switch key {
	case "enter":
		if len(s.results.Items) > 0 {
			return navigate(router.Path("/patterns/:id", s.results.Items[s.cur.pos].ID))
		}
	case "i", "tab":
		return s.input.Focus()
	case "f":
		s.panel.open = true
	case "c":
		s.filters = model.Filters{}
		s.panel.Reset(s.filters)
		return s.run(1, s.pager.Size)
	case "esc":
		return back
	}
	return nil
}

func (s *searchScreen) View() string {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Ricerca"))
	b.WriteString("\n")
	box := t.Input
	if s.input.Focused() {
		box = t.InputFocused
	}
	b.WriteString(box.Width(s.width - 2).Render(s.input.View()))
	b.WriteString("\n")

	for i, sug := range s.suggestions {
		line := search.HighlightFunc(sug.Title, s.input.Value(),
			func(x string) string { return t.Mark.Render(x) }, func(x string) string { return x })
		if sug.Strategy != "" {
			line += "  " + t.Muted.Render(sug.Strategy)
		}
		if i == s.sugCur {
			b.WriteString(t.SuggestionSelected.Render(line))
		} else {
			b.WriteString(t.Suggestion.Render(line))
		}
		b.WriteString("\n")
	}

	if tags := tagLine(t, s.panel.opts.ActiveTags(s.filters)); tags != "" {
		b.WriteString(tags)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.panel.open {
		b.WriteString(s.panel.View(t))
		return b.String()
	}

	switch {
	case s.loading:
		b.WriteString(t.LoadingText.Render("Ricerca in corso..."))
	case s.err != nil:
		b.WriteString(t.FieldError.Render(search.ErrorMessage))
	case !s.searched:
		b.WriteString(t.Muted.Render("Scrivi almeno qualche carattere per i suggerimenti, enter per cercare."))
	case len(s.results.Items) == 0:
		b.WriteString(t.Muted.Render("Nessun risultato per \"" + s.results.Query + "\"."))
	default:
		rows := (s.height - 8 - len(s.suggestions)) / 4
		start, end := s.cur.window(len(s.results.Items), rows)
		for i := start; i < end; i++ {
			selected := i == s.cur.pos && !s.input.Focused()
			b.WriteString(patternCard(t, s.results.Items[i], selected, s.width, s.env.resultExcerpt(), s.results.Query))
			b.WriteString("\n")
		}
		b.WriteString(s.pager.View(t))
	}
	b.WriteString("\n")
	if s.input.Focused() {
		b.WriteString(t.Muted.Render("enter cerca · ↑/↓ suggerimenti · ctrl+f filtri · tab risultati"))
	} else {
		b.WriteString(t.Muted.Render("enter apri · i modifica ricerca · f filtri · c azzera filtri"))
	}
	return b.String()
}
