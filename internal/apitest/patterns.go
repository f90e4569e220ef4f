// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apitest

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeranaias/compass-tui/internal/model"
)

// AddPattern stores p (assigning an id when zero) and returns the copy.
func (s *Server) AddPattern(p model.Pattern) model.Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPatternLocked(p)
}

func (s *Server) addPatternLocked(p model.Pattern) model.Pattern {
	if p.ID == 0 {
		p.ID = s.nextPattern
	}
	if p.ID >= s.nextPattern {
		s.nextPattern = p.ID + 1
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = model.Time{Time: time.Now().UTC()}
		p.UpdatedAt = p.CreatedAt
	}
	cp := p
	s.patterns[p.ID] = &cp
	return cp
}

// SeedPatterns adds n patterns cycling through strategies and components.
func (s *Server) SeedPatterns(n int) []model.Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Pattern, 0, n)
	mvc := []model.MVCComponent{model.MVCModel, model.MVCView, model.MVCController}
	for i := 0; i < n; i++ {
		st := model.Strategies[i%len(model.Strategies)]
		p := model.Pattern{
			Title:        fmt.Sprintf("Pattern %d %s", i+1, st),
			Description:  fmt.Sprintf("Descrizione del pattern numero %d per la strategia %s.", i+1, st),
			Context:      "Contesto applicativo di esempio.",
			Problem:      "Problema di privacy da risolvere.",
			Solution:     "Soluzione proposta dal pattern.",
			Consequences: "Conseguenze dell'adozione.",
			Strategy:     st,
			MVCComponent: mvc[i%len(mvc)],
			GdprArticles: []model.GdprArticle{s.gdpr[i%len(s.gdpr)]},
		}
		out = append(out, s.addPatternLocked(p))
	}
	return out
}

// Pattern returns the stored pattern with id.
func (s *Server) Pattern(id int) (model.Pattern, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patterns[id]
	if !ok {
		return model.Pattern{}, false
	}
	return *p, true
}

// sortedPatterns returns patterns by ascending id. Callers hold s.mu.
func (s *Server) sortedPatterns() []model.Pattern {
	out := make([]model.Pattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matchesFilters(p model.Pattern, q url.Values, text string) bool {
	if v := q.Get("strategy"); v != "" && string(p.Strategy) != v {
		return false
	}
	if v := q.Get("mvc_component"); v != "" && string(p.MVCComponent) != v {
		return false
	}
	if v := q.Get("gdpr_id"); v != "" && !hasID(v, len(p.GdprArticles), func(i int) int { return p.GdprArticles[i].ID }) {
		return false
	}
	if v := q.Get("pbd_id"); v != "" && !hasID(v, len(p.PbdPrinciples), func(i int) int { return p.PbdPrinciples[i].ID }) {
		return false
	}
	if v := q.Get("iso_id"); v != "" && !hasID(v, len(p.IsoPhases), func(i int) int { return p.IsoPhases[i].ID }) {
		return false
	}
	if v := q.Get("vulnerability_id"); v != "" && !hasID(v, len(p.Vulnerabilities), func(i int) int { return p.Vulnerabilities[i].ID }) {
		return false
	}
	if text != "" {
		t := strings.ToLower(text)
		if !strings.Contains(strings.ToLower(p.Title), t) && !strings.Contains(strings.ToLower(p.Description), t) {
			return false
		}
	}
	return true
}

func hasID(raw string, n int, at func(int) int) bool {
	want, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	for i := 0; i < n; i++ {
		if at(i) == want {
			return true
		}
	}
	return false
}

func intParam(q url.Values, key string, def int) int {
	if v, err := strconv.Atoi(q.Get(key)); err == nil {
		return v
	}
	return def
}

// page slices all by skip/limit into a PatternList.
func page(all []model.Pattern, q url.Values) model.PatternList {
	skip := intParam(q, "skip", 0)
	limit := intParam(q, "limit", 10)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 10
	}
	end := skip + limit
	if skip > len(all) {
		skip = len(all)
	}
	if end > len(all) {
		end = len(all)
	}
	return model.PatternList{
		Patterns: append([]model.Pattern{}, all[skip:end]...),
		Total:    len(all),
		Page:     skip/limit + 1,
		Pages:    model.TotalPages(len(all), limit),
		Size:     limit,
	}
}

func (s *Server) filtered(q url.Values, text string) []model.Pattern {
	var out []model.Pattern
	for _, p := range s.sortedPatterns() {
		if matchesFilters(p, q, text) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(s.filtered(q, q.Get("search")), q))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := model.PatternStats{
		Total:         len(s.patterns),
		Strategies:    map[string]int{},
		MVCComponents: map[string]int{},
	}
	for _, p := range s.patterns {
		stats.Strategies[string(p.Strategy)]++
		stats.MVCComponents[string(p.MVCComponent)]++
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleByStrategy(w http.ResponseWriter, r *http.Request) {
	st := chi.URLParam(r, "strategy")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Pattern{}
	for _, p := range s.sortedPatterns() {
		if strings.EqualFold(string(p.Strategy), st) {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleByMVC(w http.ResponseWriter, r *http.Request) {
	c := chi.URLParam(r, "component")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Pattern{}
	for _, p := range s.sortedPatterns() {
		if strings.EqualFold(string(p.MVCComponent), c) {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "id non valido")
		return
	}
	limit := intParam(r.URL.Query(), "limit", 5)

	s.mu.Lock()
	defer s.mu.Unlock()
	base, ok := s.patterns[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Pattern non trovato")
		return
	}
	out := []model.Pattern{}
	for _, p := range s.sortedPatterns() {
		if p.ID == id {
			continue
		}
		if p.Strategy == base.Strategy || p.MVCComponent == base.MVCComponent {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) patternFromPath(w http.ResponseWriter, r *http.Request) (*model.Pattern, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeFieldErrors(w, map[string]string{"pattern_id": "value is not a valid integer"})
		return nil, false
	}
	p, ok := s.patterns[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Pattern non trovato")
		return nil, false
	}
	return p, true
}

func (s *Server) handleGetPattern(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.patternFromPath(w, r); ok {
		writeJSON(w, http.StatusOK, p)
	}
}

func validateInput(in model.PatternInput) map[string]string {
	fields := map[string]string{}
	if len(in.Title) < 3 {
		fields["title"] = "ensure this value has at least 3 characters"
	}
	if !in.Strategy.Valid() {
		fields["strategy"] = "value is not a valid enumeration member"
	}
	if !in.MVCComponent.Valid() {
		fields["mvc_component"] = "value is not a valid enumeration member"
	}
	return fields
}

// applyInput copies in onto p, resolving reference ids. Callers hold s.mu.
func (s *Server) applyInput(p *model.Pattern, in model.PatternInput) {
	p.Title = in.Title
	p.Description = in.Description
	p.Context = in.Context
	p.Problem = in.Problem
	p.Solution = in.Solution
	p.Consequences = in.Consequences
	p.Strategy = in.Strategy
	p.MVCComponent = in.MVCComponent
	p.GdprArticles = nil
	for _, id := range in.GdprIDs {
		for _, a := range s.gdpr {
			if a.ID == id {
				p.GdprArticles = append(p.GdprArticles, model.GdprArticle{ID: a.ID, Number: a.Number, Title: a.Title})
			}
		}
	}
	p.PbdPrinciples = nil
	for _, id := range in.PbdIDs {
		for _, pr := range s.pbd {
			if pr.ID == id {
				p.PbdPrinciples = append(p.PbdPrinciples, pr)
			}
		}
	}
	p.IsoPhases = nil
	for _, id := range in.IsoIDs {
		for _, ph := range s.iso {
			if ph.ID == id {
				p.IsoPhases = append(p.IsoPhases, ph)
			}
		}
	}
	p.Vulnerabilities = nil
	for _, id := range in.VulnerabilityIDs {
		for _, v := range s.vulns {
			if v.ID == id {
				p.Vulnerabilities = append(p.Vulnerabilities, v)
			}
		}
	}
	p.UpdatedAt = model.Time{Time: time.Now().UTC()}
}

// canWrite mirrors the backend's role rules. Callers hold s.mu.
func (s *Server) canWrite(r *http.Request, p *model.Pattern) bool {
	a := s.accountByID(userID(r))
	if a == nil {
		return false
	}
	switch a.user.Role {
	case model.RoleAdmin:
		return true
	case model.RoleEditor:
		return p == nil || (p.CreatedByID != nil && *p.CreatedByID == a.user.ID)
	}
	return false
}

func (s *Server) handleCreatePattern(w http.ResponseWriter, r *http.Request) {
	var in model.PatternInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Richiesta non valida")
		return
	}
	if fields := validateInput(in); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canWrite(r, nil) {
		writeDetail(w, http.StatusForbidden, "Permessi insufficienti")
		return
	}
	for _, p := range s.patterns {
		if strings.EqualFold(p.Title, in.Title) {
			writeDetail(w, http.StatusBadRequest, "Esiste già un pattern con questo titolo")
			return
		}
	}
	uid := userID(r)
	p := model.Pattern{CreatedByID: &uid}
	s.applyInput(&p, in)
	stored := s.addPatternLocked(p)
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUpdatePattern(w http.ResponseWriter, r *http.Request) {
	var in model.PatternInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Richiesta non valida")
		return
	}
	if fields := validateInput(in); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patternFromPath(w, r)
	if !ok {
		return
	}
	if !s.canWrite(r, p) {
		writeDetail(w, http.StatusForbidden, "Permessi insufficienti")
		return
	}
	s.applyInput(p, in)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePattern(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patternFromPath(w, r)
	if !ok {
		return
	}
	if !s.canWrite(r, p) {
		writeDetail(w, http.StatusForbidden, "Permessi insufficienti")
		return
	}
	delete(s.patterns, p.ID)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SEARCH
// =============================================================================

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(s.filtered(q, q.Get("q")), q))
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := strings.ToLower(q.Get("q"))
	limit := intParam(q, "limit", 10)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.AutocompleteSuggestion{}
	for _, p := range s.sortedPatterns() {
		if term != "" && strings.Contains(strings.ToLower(p.Title), term) {
			out = append(out, model.AutocompleteSuggestion{
				ID:          p.ID,
				Title:       p.Title,
				Strategy:    string(p.Strategy),
				Description: p.Description,
				Score:       1,
			})
		}
		if len(out) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": out})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r.URL.Query(), "limit", 5)
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedPatterns()
	// Newest first.
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if len(all) > limit {
		all = all[:limit]
	}
	writeJSON(w, http.StatusOK, all)
}
