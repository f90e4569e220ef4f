// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router maps TUI paths such as "/patterns/12/edit" to screens and
// guards the protected ones.
//
// Unauthenticated access to a protected path redirects to /login and the
// requested path is remembered; after a successful login Router.AfterLogin
// returns it.
//
// # Key Types
//
//   - Name: screen identifier
//   - Route: a path template with its screen and protection flag
//   - Match: a resolved path with its parameters
//   - Router: navigation history plus the guard
//
// # Usage
//
//	r := router.New()
//	m := r.Navigate("/patterns/create", sess.IsAuthenticated())
//	// m.Name == router.Login when signed out
package router
