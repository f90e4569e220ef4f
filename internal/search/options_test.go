// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"testing"

	"github.com/jeranaias/compass-tui/internal/model"
)

func TestNewFilterOptionsDedup(t *testing.T) {
	o := NewFilterOptions(
		[]model.GdprArticle{{ID: 2, Number: "25", Title: "B"}, {ID: 1, Number: "5", Title: "A"}, {ID: 2, Number: "25", Title: "dup"}},
		[]model.PbdPrinciple{{ID: 1, Name: "Proattivo"}, {ID: 1, Name: "dup"}},
		nil,
		[]model.Vulnerability{{ID: 3, Name: "Leak", Severity: "HIGH"}},
	)

	if len(o.GdprArticles) != 2 || o.GdprArticles[0].Number != "5" {
		t.Errorf("GdprArticles = %+v", o.GdprArticles)
	}
	if len(o.PbdPrinciples) != 1 || o.PbdPrinciples[0].Name != "Proattivo" {
		t.Errorf("PbdPrinciples = %+v", o.PbdPrinciples)
	}
	if len(o.Strategies) != 8 || len(o.MVCComponents) != 3 {
		t.Errorf("enum options = %d/%d", len(o.Strategies), len(o.MVCComponents))
	}

	if got := o.Label(model.FilterGdpr, "1"); got != "Art. 5 - A" {
		t.Errorf("gdpr label = %q", got)
	}
	if got := o.Label(model.FilterVulnerability, "3"); got != "Leak (HIGH)" {
		t.Errorf("vuln label = %q", got)
	}
	if got := o.Label(model.FilterIso, "9"); got != "9" {
		t.Errorf("unknown label = %q", got)
	}
}

func TestFromPatterns(t *testing.T) {
	ps := []model.Pattern{
		{GdprArticles: []model.GdprArticle{{ID: 1, Number: "5"}}},
		{GdprArticles: []model.GdprArticle{{ID: 1, Number: "5"}, {ID: 4, Number: "32"}}},
	}
	if got := FromPatterns(ps); len(got.GdprArticles) != 2 {
		t.Errorf("GdprArticles = %+v", got.GdprArticles)
	}
}

func TestActiveTags(t *testing.T) {
	o := NewFilterOptions([]model.GdprArticle{{ID: 1, Number: "5", Title: "Principi"}}, nil, nil, nil)
	f := model.Filters{Strategy: model.StrategyHide, GdprID: 1}
	tags := o.ActiveTags(f)
	want := []string{"Strategia: Hide", "Articoli GDPR: Art. 5 - Principi"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v", tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tag %d = %q, want %q", i, tags[i], want[i])
		}
	}
}
