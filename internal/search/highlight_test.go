// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"strings"
	"testing"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
		want string
	}{
		{"case insensitive", "Data Minimization and data", "data", "<mark>Data</mark> Minimization and <mark>data</mark>"},
		{"short term", "Data", "d", "Data"},
		{"empty term", "Data", "", "Data"},
		{"escapes text", "<b>x</b> xy", "xy", "&lt;b&gt;x&lt;/b&gt; <mark>xy</mark>"},
		{"regex chars", "a+b (a+b)", "a+b", "<mark>a+b</mark> (<mark>a+b</mark>)"},
		{"escapes match", "<script>", "<scr", "<mark>&lt;scr</mark>ipt&gt;"},
		{"accents", "Privacy è importante", "È i", "Privacy <mark>è i</mark>mportante"},
		{"single accented rune", "Privacy è importante", "È", "Privacy è importante"},
		{"no match", "abc", "zz", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(tt.text, tt.term); got != tt.want {
				t.Errorf("Highlight(%q, %q) = %q, want %q", tt.text, tt.term, got, tt.want)
			}
		})
	}
}

func TestHighlightDecomposedAccent(t *testing.T) {
	// "e" + combining grave matches the precomposed form.
	text := "perchè"
	if !HasMatch(text, "chè") {
		t.Error("decomposed accent did not match precomposed term")
	}
}

func TestHighlightFunc(t *testing.T) {
	got := HighlightFunc("Hide and hide", "hide", strings.ToUpper, nil)
	if got != "HIDE and HIDE" {
		t.Errorf("HighlightFunc = %q", got)
	}
}

func TestSegments(t *testing.T) {
	segs := Segments("abcabc", "bc")
	want := []Segment{{"a", false}, {"bc", true}, {"a", false}, {"bc", true}}
	if len(segs) != len(want) {
		t.Fatalf("Segments = %v", segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, segs[i], want[i])
		}
	}
	if Segments("", "x") != nil {
		t.Error("Segments of empty text not nil")
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("à", 250)
	got := Excerpt(long, ResultExcerptLength)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != ResultExcerptLength+3 {
		t.Errorf("Excerpt length = %d", len([]rune(got)))
	}
	if Excerpt("short", CardExcerptLength) != "short" {
		t.Error("short text changed")
	}
}
