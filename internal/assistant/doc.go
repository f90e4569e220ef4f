// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant holds the chat assistant session.
//
// The transcript is append-only: every user message, bot reply and inline
// error entry is added at the end and never edited. The whole transcript is
// written to local storage after each change and restored on start.
//
// # Key Types
//
//   - Session: transcript, send, suggestions, clear and export
//   - Pending: a user message awaiting its reply
//   - Format: export format (Markdown or HTML)
//
// # Usage
//
//	s := assistant.NewSession(client, kv, assistant.Options{}, log)
//	reply, err := s.Send(ctx, "Cos'è la pseudonimizzazione?")
//
//	// Bubble Tea: show the user line at once, fetch the reply in a Cmd.
//	pending, err := s.Begin(text)
//	cmd := func() tea.Msg { m, err := s.Reply(ctx, pending); return replyMsg{m, err} }
package assistant
