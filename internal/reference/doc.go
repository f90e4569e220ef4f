// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reference reads the read-only reference tables: GDPR articles,
// Privacy-by-Design principles, ISO phases and vulnerabilities.
//
// Responses arrive either bare or wrapped by the backend's response
// formatter ({"status": ..., "data": {"items": [...]}}); both are accepted.
// Lists are cached after the first successful load.
//
// # Key Types
//
//   - Service: cached access to the reference endpoints
//
// # Usage
//
//	ref := reference.NewService(client, log)
//	arts, err := ref.GdprArticles(ctx)
//	opts, err := ref.FilterOptions(ctx) // all four tables in parallel
package reference
