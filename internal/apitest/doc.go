// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest runs an in-process fake of the pattern wiki backend for
// package tests.
//
// The fake speaks the same routes and payload shapes as the real backend
// (FastAPI detail errors, format_response envelopes on GDPR routes, signed
// JWT access tokens) and records every call so tests can assert what was,
// or was not, sent.
//
// # Usage
//
//	srv := apitest.New(t)
//	user := srv.AddUser("mario@example.it", "mario", "Password1", model.RoleEditor)
//	srv.SeedPatterns(42)
//
//	client := api.New(tokens, api.Options{BaseURL: srv.APIURL()})
//	...
//	if srv.Calls("GET", "/api/search/autocomplete") != 1 { ... }
package apitest
