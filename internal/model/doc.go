// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the records exchanged with the privacy-pattern
// wiki API and the client-only state that travels with them.
//
// Records mirror the backend JSON shapes; the client never owns their
// lifecycle. Filters and PageRequest are client-side only and encode
// themselves into query strings.
//
// # Key Types
//
//   - Pattern, PatternInput: pattern records and the create/update payload
//   - User, Role: the authenticated account
//   - Filters, PageRequest: list/search parameters
//   - ChatMessage: one entry of the assistant transcript
//
// # Usage
//
//	f, err := model.Filters{}.Set(model.FilterStrategy, "Minimize")
//	page, err := model.NewPageRequest(1, 10)
//	q := url.Values{}
//	page.Encode(q)
//	f.Encode(q)
package model
