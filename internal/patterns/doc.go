// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package patterns is the client-side content store for privacy patterns.
//
// The Store keeps the page currently on screen (page number, size, filter
// set and items) plus the "current pattern" shown by the detail view. Only
// the newest list request may replace the page; older responses are
// dropped by sequence tag.
//
// # Key Types
//
//   - Store: paginated, filterable pattern cache with CRUD
//   - Page: one page of results with totals
//
// # Usage
//
//	st := patterns.NewStore(client, log)
//	page, err := st.List(ctx, 1, 10, model.Filters{Strategy: model.StrategyHide})
//	p, err := st.Get(ctx, 42)
//	created, err := st.Create(ctx, input)
//
// # Errors
//
// Validation failures (client-side or 4xx) are returned for inline display
// and leave Err untouched. Network and server failures are also recorded in
// Err so the list view can offer a retry.
package patterns
