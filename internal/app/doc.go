// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the composition root. It turns a loaded configuration into
// the full component graph (logger, local storage, request client, session,
// content stores) shared by the TUI and the CLI commands.
//
// # Key Types
//
//   - App: the wired component set plus its cleanup
//   - Options: version string and overrides used by tests
//
// # Usage
//
//	a, err := app.New(ctx, cfg, app.Options{Version: Version})
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	a.Restore(ctx)
//	return a.RunTUI(ctx, "/")
package app
