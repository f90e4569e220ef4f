// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the shared request client for the pattern wiki backend.
//
// Every component reaches the backend through one Client, which attaches
// the bearer token, bounds each attempt with a timeout, maps failures onto a
// small error taxonomy and transparently refreshes an expired session.
//
// # Key Types
//
//   - Client: concurrent-safe HTTP client (token, timeout, refresh, rate limit)
//   - Request: method, path, query and JSON or form body of one call
//   - Error: failed request with status, backend detail and field messages
//   - Sequence: request tags for discarding stale responses
//
// # Errors
//
// Every error from Client wraps one of ErrValidation, ErrAuth, ErrNotFound,
// ErrNetwork or ErrServer:
//
//	if errors.Is(err, api.ErrNotFound) { ... }
//
// # Session Refresh
//
// A 401 on any endpoint other than login, register or refresh triggers one
// exchange of the stored refresh token followed by a single replay. If the
// exchange fails the tokens are cleared and OnSessionExpired runs.
// Concurrent 401s share one exchange.
//
// # Usage
//
//	c := api.New(tokens, api.OptionsFromConfig(cfg.API, version))
//	var user model.User
//	err := c.Get(ctx, "/auth/me", nil, &user)
package api
