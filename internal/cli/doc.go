// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the compass command line.
//
// The root command starts the TUI; every other command is a one-shot call
// against the same component graph (internal/app). Read commands accept
// --json and print a JSONResponse envelope instead of styled text.
//
// # Key Types
//
//   - JSONResponse: the --json envelope
//   - CommandError: a failure with a user-facing reason
//   - ChatCLI: line editing and history for the chat REPL
//
// # Usage
//
//	os.Exit(cli.Execute(Version, os.Args[1:]))
//
// Commands:
//
//	compass                          Start the TUI
//	compass login [EMAIL]            Sign in (password prompted)
//	compass patterns list --strategy Minimize
//	compass patterns show 12
//	compass search "consenso" --mvc Model
//	compass chat                     Interactive assistant
//	compass gdpr show 25
//	compass newsletter subscribe me@example.com
package cli
