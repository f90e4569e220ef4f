// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search implements full-text search, autocomplete and the text
// helpers used to render results.
//
// # Key Types
//
//   - Engine: search, autocomplete and trending against the backend
//   - Results: one page of search results
//   - Debouncer: resettable quiet-interval timer
//   - FilterOptions: deduplicated taxonomy lists for the filter panel
//   - Segment: a run of text, flagged when it matches the search term
//
// # Usage
//
//	eng := search.NewEngine(client, search.OptionsFromConfig(cfg.Search), log)
//	res, err := eng.Search(ctx, "pseudonym", 1, 10, model.Filters{})
//	sugg := eng.Autocomplete(ctx, "pseu", 0)
//
//	html := search.Highlight(search.Excerpt(p.Description, 200), "pseu")
//
// # Stale Responses
//
// Search results are applied only for the newest request. Autocomplete
// cancels the previous in-flight request when a new one starts, and a late
// response from a superseded request yields no suggestions.
package search
