// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"html"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/compass-tui/internal/util"
)

// Excerpt lengths.
const (
	ResultExcerptLength = 200
	CardExcerptLength   = 150
)

// MinHighlightRunes is the shortest term that is highlighted.
const MinHighlightRunes = 2

// Segment is a run of text. Match is set when the run equals the search
// term under case folding.
type Segment struct {
	Text  string
	Match bool
}

// Excerpt keeps the first n runes of text, appending "..." when cut.
func Excerpt(text string, n int) string {
	return util.Ellipsis(text, n)
}

// Segments splits text around case-insensitive occurrences of term. Both
// are NFC-normalized first so composed and decomposed accents match. A term
// shorter than MinHighlightRunes yields a single unmatched segment.
func Segments(text, term string) []Segment {
	if text == "" {
		return nil
	}
	text = norm.NFC.String(text)
	term = norm.NFC.String(term)

	needle := []rune(term)
	if len(needle) < MinHighlightRunes {
		return []Segment{{Text: text}}
	}

	hay := []rune(text)
	var out []Segment
	start := 0
	for i := 0; i+len(needle) <= len(hay); {
		if strings.EqualFold(string(hay[i:i+len(needle)]), term) {
			if i > start {
				out = append(out, Segment{Text: string(hay[start:i])})
			}
			out = append(out, Segment{Text: string(hay[i : i+len(needle)]), Match: true})
			i += len(needle)
			start = i
			continue
		}
		i++
	}
	if start < len(hay) {
		out = append(out, Segment{Text: string(hay[start:])})
	}
	return out
}

// HighlightFunc rebuilds text with every match passed through mark and
// every other run through plain. A nil plain leaves runs unchanged.
func HighlightFunc(text, term string, mark, plain func(string) string) string {
	var b strings.Builder
	for _, seg := range Segments(text, term) {
		switch {
		case seg.Match:
			b.WriteString(mark(seg.Text))
		case plain != nil:
			b.WriteString(plain(seg.Text))
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// Highlight returns text HTML-escaped with matches of term wrapped in
// <mark>. Original casing is preserved.
func Highlight(text, term string) string {
	return HighlightFunc(text, term,
		func(s string) string { return "<mark>" + html.EscapeString(s) + "</mark>" },
		html.EscapeString,
	)
}

// HasMatch reports whether term occurs in text under the Highlight rules.
func HasMatch(text, term string) bool {
	for _, seg := range Segments(text, term) {
		if seg.Match {
			return true
		}
	}
	return false
}
