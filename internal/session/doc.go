// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the signed-in identity.
//
// The Manager owns the current user and the persisted token pair. It logs
// in and out, restores a stored session on startup, runs the password and
// profile flows and answers the role questions the UI uses to show or hide
// editing affordances.
//
// # Key Types
//
//   - Manager: current user, login/register/logout, profile and passwords
//   - LoginResult: outcome of Login, carrying the backend detail on failure
//   - ExpiryWarningMsg: Bubble Tea message sent before the access token expires
//
// # Usage
//
//	mgr := session.NewManager(client, tokens, log)
//	res := mgr.Login(ctx, email, password)
//	if !res.Success {
//	    banner = res.Error
//	}
//
// # Authorization
//
// Role checks (CanCreate, CanEdit) only decide what the UI offers. The
// backend enforces the same rules on every write.
package session
