// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/ui/router"
)

// =============================================================================
// HOME
// =============================================================================

type homeLoadedMsg struct {
	trending []model.Pattern
	stats    model.PatternStats
	err      error
}

type homeScreen struct {
	base
	trending []model.Pattern
	stats    model.PatternStats
	loaded   bool
	err      error
	cur      cursor
}

func newHomeScreen(e *env) *homeScreen {
	return &homeScreen{base: base{env: e}}
}

func (s *homeScreen) Init() tea.Cmd {
	ctx, limit := s.env.ctx(), s.env.trendingLimit()
	patterns, engine := s.env.Patterns, s.env.Search
	return func() tea.Msg {
		var msg homeLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			msg.trending, err = engine.Trending(gctx, limit)
			return err
		})
		g.Go(func() error {
			var err error
			msg.stats, err = patterns.Stats(gctx)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (s *homeScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case homeLoadedMsg:
		s.loaded = true
		s.trending, s.stats, s.err = msg.trending, msg.stats, msg.err
		return s, errorToast(msg.err)
	case tea.KeyMsg:
		if s.cur.move(msg.String(), len(s.trending)) {
			return s, nil
		}
		switch msg.String() {
		case "enter":
			if len(s.trending) > 0 {
				return s, navigate(router.Path("/patterns/:id", s.trending[s.cur.pos].ID))
			}
		case "r":
			s.loaded = false
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *homeScreen) View() string {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Compliance Compass"))
	b.WriteString("\n")
	b.WriteString(t.Body.Render("Il catalogo dei privacy pattern, collegati agli articoli GDPR, ai principi di Privacy by Design e alle fasi ISO."))
	b.WriteString("\n\n")

	if !s.loaded {
		b.WriteString(t.LoadingText.Render("Caricamento..."))
		return b.String()
	}
	if s.err != nil && len(s.trending) == 0 {
		b.WriteString(t.FieldError.Render("Impossibile caricare i contenuti. Premi r per riprovare."))
		return b.String()
	}

	if s.stats.Total > 0 {
		b.WriteString(t.SectionTitle.Render("Il catalogo"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d pattern · %d strategie · %d componenti MVC\n\n",
			s.stats.Total, len(s.stats.Strategies), len(s.stats.MVCComponents))
	}

	b.WriteString(t.SectionTitle.Render("Pattern più consultati"))
	b.WriteString("\n")
	if len(s.trending) == 0 {
		b.WriteString(t.Muted.Render("Nessun pattern disponibile."))
	}
	for i, p := range s.trending {
		b.WriteString(patternCard(t, p, i == s.cur.pos, s.width, s.env.cardExcerpt(), ""))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("enter apri · 2 tutti i pattern · / cerca · 5 assistente"))
	return b.String()
}
