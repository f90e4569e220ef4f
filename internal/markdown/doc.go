// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown renders the restricted markdown used in chat replies and
// pattern text.
//
// HTML output goes through goldmark and is then sanitised against a fixed
// allow-list (bluemonday), so model or user supplied content cannot inject
// markup. Terminal output goes through glamour.
//
// # Key Types
//
//   - Renderer: terminal renderer with a plain-text fallback
//
// # Usage
//
//	html, err := markdown.ToHTML(reply)
//	r := markdown.NewRenderer(80, "dark")
//	fmt.Print(r.Render(reply))
package markdown
