// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jeranaias/compass-tui/internal/model"
)

// Option is one selectable value of a filter.
type Option struct {
	Value string
	Label string
}

// FilterOptions holds the values offered by the filter panel. Taxonomy
// lists are deduplicated by id.
type FilterOptions struct {
	Strategies      []model.Strategy
	MVCComponents   []model.MVCComponent
	GdprArticles    []model.GdprArticle
	PbdPrinciples   []model.PbdPrinciple
	IsoPhases       []model.IsoPhase
	Vulnerabilities []model.Vulnerability
}

// NewFilterOptions builds FilterOptions from raw taxonomy lists. The first
// entry with a given id wins; GDPR articles are ordered by article number.
func NewFilterOptions(gdpr []model.GdprArticle, pbd []model.PbdPrinciple, iso []model.IsoPhase, vulns []model.Vulnerability) FilterOptions {
	o := FilterOptions{
		Strategies:      append([]model.Strategy(nil), model.Strategies...),
		MVCComponents:   append([]model.MVCComponent(nil), model.MVCComponents...),
		GdprArticles:    dedup(gdpr, func(a model.GdprArticle) int { return a.ID }),
		PbdPrinciples:   dedup(pbd, func(p model.PbdPrinciple) int { return p.ID }),
		IsoPhases:       dedup(iso, func(p model.IsoPhase) int { return p.ID }),
		Vulnerabilities: dedup(vulns, func(v model.Vulnerability) int { return v.ID }),
	}
	sort.SliceStable(o.GdprArticles, func(i, j int) bool {
		return articleLess(o.GdprArticles[i].Number, o.GdprArticles[j].Number)
	})
	return o
}

// FromPatterns collects the taxonomy entries referenced by patterns. It
// is the fallback when the reference endpoints are unavailable.
func FromPatterns(patterns []model.Pattern) FilterOptions {
	var (
		gdpr  []model.GdprArticle
		pbd   []model.PbdPrinciple
		iso   []model.IsoPhase
		vulns []model.Vulnerability
	)
	for _, p := range patterns {
		gdpr = append(gdpr, p.GdprArticles...)
		pbd = append(pbd, p.PbdPrinciples...)
		iso = append(iso, p.IsoPhases...)
		vulns = append(vulns, p.Vulnerabilities...)
	}
	return NewFilterOptions(gdpr, pbd, iso, vulns)
}

// articleLess orders article numbers numerically, falling back to string
// order for non-numeric numbers.
func articleLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

func dedup[T any](items []T, id func(T) int) []T {
	seen := make(map[int]bool, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := id(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

// Options returns the selectable values for key, labelled the way the
// filter panel shows them.
func (o FilterOptions) Options(key model.FilterKey) []Option {
	var out []Option
	switch key {
	case model.FilterStrategy:
		for _, s := range o.Strategies {
			out = append(out, Option{Value: string(s), Label: string(s)})
		}
	case model.FilterMVCComponent:
		for _, c := range o.MVCComponents {
			out = append(out, Option{Value: string(c), Label: string(c)})
		}
	case model.FilterGdpr:
		for _, a := range o.GdprArticles {
			out = append(out, Option{Value: strconv.Itoa(a.ID), Label: fmt.Sprintf("Art. %s - %s", a.Number, a.Title)})
		}
	case model.FilterPbd:
		for _, p := range o.PbdPrinciples {
			out = append(out, Option{Value: strconv.Itoa(p.ID), Label: p.Name})
		}
	case model.FilterIso:
		for _, p := range o.IsoPhases {
			out = append(out, Option{Value: strconv.Itoa(p.ID), Label: p.Name})
		}
	case model.FilterVulnerability:
		for _, v := range o.Vulnerabilities {
			label := v.Name
			if v.Severity != "" {
				label += " (" + v.Severity + ")"
			}
			out = append(out, Option{Value: strconv.Itoa(v.ID), Label: label})
		}
	}
	return out
}

// Label returns the label of value under key, or value itself when unknown.
func (o FilterOptions) Label(key model.FilterKey, value string) string {
	for _, opt := range o.Options(key) {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// SectionTitle is the heading of a filter section.
func SectionTitle(key model.FilterKey) string {
	switch key {
	case model.FilterStrategy:
		return "Strategia"
	case model.FilterMVCComponent:
		return "Componente MVC"
	case model.FilterGdpr:
		return "Articoli GDPR"
	case model.FilterPbd:
		return "Principi Privacy by Design"
	case model.FilterIso:
		return "Fasi ISO"
	case model.FilterVulnerability:
		return "Vulnerabilità"
	case model.FilterSearch:
		return "Testo"
	}
	return string(key)
}

// ActiveTags renders the active filters as "Section: Label" tags.
func (o FilterOptions) ActiveTags(f model.Filters) []string {
	var tags []string
	for _, k := range f.Active() {
		tags = append(tags, SectionTitle(k)+": "+o.Label(k, f.Get(k)))
	}
	return tags
}
