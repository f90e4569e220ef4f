// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/ui/components"
	"github.com/jeranaias/compass-tui/internal/ui/router"
)

// =============================================================================
// PATTERN FORM
// =============================================================================

type patternFormLoadedMsg struct {
	pattern  *model.Pattern
	articles []model.GdprArticle
	err      error
}

type patternSavedMsg struct {
	pattern *model.Pattern
	err     error
}

type patternFormScreen struct {
	base
	id       int // 0 when creating
	form     *form
	original *model.Pattern
	articles []model.GdprArticle
	loading  bool
	saving   bool
	err      error
}

func newPatternFormScreen(e *env, id int) *patternFormScreen {
	strategies := make([]string, len(model.Strategies))
	for i, st := range model.Strategies {
		strategies[i] = string(st)
	}
	mvc := make([]string, len(model.MVCComponents))
	for i, c := range model.MVCComponents {
		mvc[i] = string(c)
	}
	f := newForm().
		addText("title", "Titolo", "Nome del pattern", 255).
		addChoice("strategy", "Strategia", strategies).
		addChoice("mvc_component", "Componente MVC", mvc).
		addArea("description", "Descrizione", "Almeno 10 caratteri").
		addArea("context", "Contesto", "Quando si applica").
		addArea("problem", "Problema", "Il problema di privacy").
		addArea("solution", "Soluzione", "Come lo risolve").
		addArea("consequences", "Conseguenze", "Benefici e limiti").
		addText("gdpr", "Articoli GDPR", "es. 5, 25, 32", 200)
	return &patternFormScreen{base: base{env: e}, id: id, form: f, loading: true}
}

func (s *patternFormScreen) editing() bool { return s.id > 0 }

func (s *patternFormScreen) Init() tea.Cmd {
	ctx, store, ref, id := s.env.ctx(), s.env.Patterns, s.env.Reference, s.id
	return tea.Batch(s.form.init(), func() tea.Msg {
		var msg patternFormLoadedMsg
		// The article list only powers the number lookup; without it the
		// field keeps the pattern's current relations.
		msg.articles, _ = ref.GdprArticles(ctx)
		if id > 0 {
			msg.pattern, msg.err = store.Get(ctx, id)
		}
		return msg
	})
}

func (s *patternFormScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.form.SetWidth(min(width-4, 90))
}

func (s *patternFormScreen) CapturesInput() bool { return true }

func (s *patternFormScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case patternFormLoadedMsg:
		s.loading = false
		s.articles = msg.articles
		if msg.err != nil {
			s.err = msg.err
			return s, errorToast(msg.err)
		}
		if msg.pattern != nil {
			if !s.env.Session.CanEdit(msg.pattern) {
				return s, tea.Batch(
					toast(components.ToastKindWarning, "Non puoi modificare questo pattern"),
					navigate(router.Path("/patterns/:id", msg.pattern.ID)),
				)
			}
			s.seed(msg.pattern)
		}
		return s, nil

	case patternSavedMsg:
		s.saving = false
		if msg.err != nil {
			if fields := fieldErrorsOf(msg.err); len(fields) > 0 {
				return s, s.form.SetErrors(fields)
			}
			return s, errorToast(msg.err)
		}
		text := "Pattern creato"
		if s.editing() {
			text = "Pattern aggiornato"
		}
		return s, tea.Batch(
			toast(components.ToastKindSuccess, text),
			navigate(router.Path("/patterns/:id", msg.pattern.ID)),
		)

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, back
		}
		if s.loading || s.saving || s.err != nil {
			return s, nil
		}
	}

	cmd, submit := s.form.Update(msg)
	if submit {
		return s, s.submit()
	}
	return s, cmd
}

// seed fills the form from an existing pattern.
func (s *patternFormScreen) seed(p *model.Pattern) {
	s.original = p
	in := p.Input()
	s.form.SetValue("title", in.Title)
	s.form.SetValue("strategy", string(in.Strategy))
	s.form.SetValue("mvc_component", string(in.MVCComponent))
	s.form.SetValue("description", in.Description)
	s.form.SetValue("context", in.Context)
	s.form.SetValue("problem", in.Problem)
	s.form.SetValue("solution", in.Solution)
	s.form.SetValue("consequences", in.Consequences)
	numbers := make([]string, 0, len(p.GdprArticles))
	for _, a := range p.GdprArticles {
		numbers = append(numbers, a.Number)
	}
	s.form.SetValue("gdpr", strings.Join(numbers, ", "))
}

// input collects the payload. Relations other than GDPR are kept from the
// pattern being edited.
func (s *patternFormScreen) input() (model.PatternInput, error) {
	in := model.PatternInput{}
	if s.original != nil {
		in = s.original.Input()
	}
	in.Title = s.form.Value("title")
	in.Strategy = model.Strategy(s.form.Value("strategy"))
	in.MVCComponent = model.MVCComponent(s.form.Value("mvc_component"))
	in.Description = s.form.Value("description")
	in.Context = s.form.Value("context")
	in.Problem = s.form.Value("problem")
	in.Solution = s.form.Value("solution")
	in.Consequences = s.form.Value("consequences")

	ids, err := s.gdprIDs(s.form.Value("gdpr"))
	if err != nil {
		return in, err
	}
	if ids != nil || s.form.Value("gdpr") == "" {
		in.GdprIDs = ids
	}
	return in, nil
}

// gdprIDs maps "5, 25" to article ids. It returns nil, nil when the article
// list is unavailable.
func (s *patternFormScreen) gdprIDs(raw string) ([]int, error) {
	if len(s.articles) == 0 {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		n := strings.TrimSpace(part)
		if n == "" {
			continue
		}
		found := false
		for _, a := range s.articles {
			if a.Number == n {
				ids = append(ids, a.ID)
				found = true
				break
			}
		}
		if !found {
			return nil, model.FieldErrors{"gdpr": fmt.Sprintf("Articolo GDPR %s non trovato", n)}
		}
	}
	return ids, nil
}

func (s *patternFormScreen) submit() tea.Cmd {
	in, err := s.input()
	if err != nil {
		return s.form.SetErrors(fieldErrorsOf(err))
	}
	if err := in.Validate(); err != nil {
		return s.form.SetErrors(fieldErrorsOf(err))
	}
	s.form.ClearErrors()
	s.saving = true
	ctx, store, id := s.env.ctx(), s.env.Patterns, s.id
	return func() tea.Msg {
		var (
			p   *model.Pattern
			err error
		)
		if id > 0 {
			p, err = store.Update(ctx, id, in)
		} else {
			p, err = store.Create(ctx, in)
		}
		return patternSavedMsg{pattern: p, err: err}
	}
}

func (s *patternFormScreen) View() string {
	t := s.theme()
	title := "Nuovo pattern"
	if s.editing() {
		title = "Modifica pattern"
	}
	var b strings.Builder
	b.WriteString(t.Title.Render(title))
	b.WriteString("\n\n")
	switch {
	case s.loading:
		b.WriteString(t.LoadingText.Render("Caricamento..."))
		return b.String()
	case s.err != nil:
		b.WriteString(t.FieldError.Render(api.UserMessage(s.err)))
		b.WriteString("\n")
		b.WriteString(t.Muted.Render("esc per tornare indietro"))
		return b.String()
	}
	b.WriteString(s.form.ViewHeight(t, s.height-5))
	b.WriteString("\n\n")
	if s.saving {
		b.WriteString(t.LoadingText.Render("Salvataggio..."))
	} else {
		b.WriteString(t.Muted.Render("tab campo · ←/→ scelta · ctrl+s salva · esc annulla"))
	}
	return b.String()
}
