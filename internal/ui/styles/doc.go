// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the compass TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The theme can be forced with the ui.theme config key.

# Color System (colors.go)

## Primary Accent Colors

  - Teal - Brand color, header, focused inputs
  - Indigo - Selections, links, assistant messages
  - Emerald - Success toasts, verified states
  - Amber - Warnings, session expiry notice
  - Rose - Errors, destructive actions

## Strategy Colors

Each privacy strategy has a tag color (StrategyColor) so pattern cards can
be scanned by strategy at a glance.

# Theme System (theme.go)

	theme := styles.NewTheme("auto")
	card := theme.Card.Render(body)

# Key Types

  - Theme: every lipgloss style used by screens and widgets
  - LayoutMode: narrow/medium/wide breakpoints
  - SpinnerConfig: frame sets for the loading spinner

# Usage

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(msg.Width, msg.Height)
	if theme.GetLayoutMode() == styles.LayoutNarrow {
		// hide the sidebar
	}
*/
package styles
