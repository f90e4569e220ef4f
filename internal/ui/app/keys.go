// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap holds the global bindings. They apply only while the screen has no
// focused input, except ForceQuit.
type KeyMap struct {
	ForceQuit key.Binding
	Quit      key.Binding
	Back      key.Binding
	Search    key.Binding
	Help      key.Binding
	Dismiss   key.Binding
	Account   key.Binding
	Sections  key.Binding
}

// DefaultKeyMap returns the default global bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "esci"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "esci"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "indietro"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "cerca"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "aiuto"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "chiudi notifica"),
		),
		Account: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "accedi/esci"),
		),
		// Sections is help-only; the sidebar entries carry the real keys.
		Sections: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"),
			key.WithHelp("1-8", "sezioni"),
		),
	}
}

// ShortHelp returns the bindings shown in the help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Search, k.Sections, k.Account, k.Dismiss, k.Help, k.Quit}
}
