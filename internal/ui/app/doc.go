// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package app is the Bubble Tea program of the compass TUI.

The root Model owns the router, the toast stack and the layout (header,
sidebar, footer). Each route renders through a Screen built from the
injected Deps; screens never talk to the network directly but through the
session, patterns, search, assistant, reference and newsletter components.

Network calls run inside tea.Cmd functions and come back as messages, so
the Update loop stays single-threaded.

# Key Types

  - Deps: the component set the screens are built from
  - Model: root tea.Model (router, layout, toasts, session expiry)
  - Screen: one routed page

# Global Keys

	ctrl+c      quit
	q           quit (when no input is focused)
	esc         back
	/           search
	1-8         home, patterns, search, gdpr, chatbot, newsletter, pbd, about
	d p         dashboard, profile
	L           login / logout
	x           dismiss the newest toast
	?           toggle help

# Usage

	m := app.New(deps)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
*/
package app
