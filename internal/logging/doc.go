// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger shared by every compass package.
//
// The TUI owns the terminal, so log output goes to a rotating file managed
// by lumberjack. CLI commands may additionally echo warnings to stderr.
//
// # Usage
//
//	log, cleanup, err := logging.New(logging.Options{
//		Level: "info",
//		File:  cfg.LogPath(),
//	})
//	defer cleanup()
//
// Tests that do not care about output use logging.Nop().
package logging
