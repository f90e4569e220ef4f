// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"bytes"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	converter = goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify, extension.Table),
		// Raw HTML in the source is dropped by goldmark before sanitising.
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// AllowedTags is the element allow-list applied to rendered HTML.
var AllowedTags = []string{
	"p", "br", "strong", "em", "del", "code", "pre", "blockquote",
	"ul", "ol", "li", "h1", "h2", "h3", "h4", "h5", "h6", "hr",
	"table", "thead", "tbody", "tr", "th", "td", "a",
}

var languageClass = regexp.MustCompile(`^language-[a-zA-Z0-9_+-]+$`)

// Policy returns the shared sanitising policy.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements(AllowedTags...)
		p.AllowAttrs("href").OnElements("a")
		p.AllowURLSchemes("http", "https", "mailto")
		p.RequireParseableURLs(true)
		p.RequireNoFollowOnLinks(true)
		p.RequireNoReferrerOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		p.AllowAttrs("class").Matching(languageClass).OnElements("code")
		p.AllowAttrs("align").Matching(regexp.MustCompile(`^(left|right|center)$`)).OnElements("th", "td")
		policy = p
	})
	return policy
}

// ToHTML converts markdown to sanitised HTML.
func ToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return Policy().Sanitize(buf.String()), nil
}

// Sanitize applies the allow-list to an HTML fragment.
func Sanitize(fragment string) string {
	return Policy().Sanitize(fragment)
}
