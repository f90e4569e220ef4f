// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/compass-tui/internal/ui/styles"
)

// =============================================================================
// FORM
// =============================================================================

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldPassword
	fieldArea
	fieldChoice
)

// field is one form row. Choice fields cycle through options with
// left/right.
type field struct {
	key     string
	label   string
	kind    fieldKind
	input   textinput.Model
	area    textarea.Model
	options []string
	choice  int
}

// form is a vertical list of fields with tab navigation and inline errors.
type form struct {
	fields []field
	focus  int
	errors map[string]string
	width  int
}

func newForm() *form {
	return &form{errors: map[string]string{}, width: 60}
}

func (f *form) addText(key, label, placeholder string, limit int) *form {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = ""
	f.fields = append(f.fields, field{key: key, label: label, kind: fieldText, input: in})
	return f
}

func (f *form) addPassword(key, label string) *form {
	in := textinput.New()
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '*'
	in.CharLimit = 128
	in.Prompt = ""
	f.fields = append(f.fields, field{key: key, label: label, kind: fieldPassword, input: in})
	return f
}

func (f *form) addArea(key, label, placeholder string) *form {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 5000
	f.fields = append(f.fields, field{key: key, label: label, kind: fieldArea, area: ta})
	return f
}

func (f *form) addChoice(key, label string, options []string) *form {
	f.fields = append(f.fields, field{key: key, label: label, kind: fieldChoice, options: options})
	return f
}

// init focuses the first field.
func (f *form) init() tea.Cmd {
	f.SetWidth(f.width)
	return f.setFocus(0)
}

// SetWidth resizes the inputs.
func (f *form) SetWidth(w int) {
	if w < 20 {
		w = 20
	}
	f.width = w
	for i := range f.fields {
		switch fl := &f.fields[i]; fl.kind {
		case fieldText, fieldPassword:
			fl.input.Width = w - 4
		case fieldArea:
			fl.area.SetWidth(w - 4)
		}
	}
}

func (f *form) setFocus(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	i = (i + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		switch fl := &f.fields[j]; fl.kind {
		case fieldText, fieldPassword:
			fl.input.Blur()
		case fieldArea:
			fl.area.Blur()
		}
	}
	f.focus = i
	switch fl := &f.fields[i]; fl.kind {
	case fieldText, fieldPassword:
		return fl.input.Focus()
	case fieldArea:
		return fl.area.Focus()
	}
	return nil
}

func (f *form) index(key string) int {
	for i, fl := range f.fields {
		if fl.key == key {
			return i
		}
	}
	return -1
}

// Value returns the trimmed value of a field.
func (f *form) Value(key string) string {
	i := f.index(key)
	if i < 0 {
		return ""
	}
	fl := f.fields[i]
	switch fl.kind {
	case fieldArea:
		return strings.TrimSpace(fl.area.Value())
	case fieldChoice:
		if len(fl.options) == 0 {
			return ""
		}
		return fl.options[fl.choice]
	case fieldPassword:
		return fl.input.Value()
	}
	return strings.TrimSpace(fl.input.Value())
}

// SetValue seeds a field.
func (f *form) SetValue(key, value string) {
	i := f.index(key)
	if i < 0 {
		return
	}
	fl := &f.fields[i]
	switch fl.kind {
	case fieldArea:
		fl.area.SetValue(value)
	case fieldChoice:
		for j, o := range fl.options {
			if o == value {
				fl.choice = j
			}
		}
	default:
		fl.input.SetValue(value)
	}
}

// SetErrors replaces the inline errors. Focus moves to the first field in
// error.
func (f *form) SetErrors(errs map[string]string) tea.Cmd {
	f.errors = map[string]string{}
	for k, v := range errs {
		f.errors[k] = v
	}
	for i, fl := range f.fields {
		if _, bad := f.errors[fl.key]; bad {
			return f.setFocus(i)
		}
	}
	return nil
}

// Error returns the inline error of a field.
func (f *form) Error(key string) string {
	return f.errors[key]
}

// ClearErrors drops every inline error.
func (f *form) ClearErrors() {
	f.errors = map[string]string{}
}

// OnLast reports whether the focused field is the last one.
func (f *form) OnLast() bool {
	return f.focus == len(f.fields)-1
}

// Update handles navigation keys and forwards the rest to the focused field.
// Enter on a single-line field moves on; the bool reports a submit request
// (enter on the last field, or ctrl+s anywhere).
func (f *form) Update(msg tea.Msg) (tea.Cmd, bool) {
	if len(f.fields) == 0 {
		return nil, false
	}
	fl := &f.fields[f.focus]
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+s":
			return nil, true
		case "tab", "down":
			if key.String() == "down" && fl.kind == fieldArea {
				break
			}
			return f.setFocus(f.focus + 1), false
		case "shift+tab", "up":
			if key.String() == "up" && fl.kind == fieldArea {
				break
			}
			return f.setFocus(f.focus - 1), false
		case "enter":
			if fl.kind != fieldArea {
				if f.OnLast() {
					return nil, true
				}
				return f.setFocus(f.focus + 1), false
			}
		case "left", "right":
			if fl.kind == fieldChoice && len(fl.options) > 0 {
				step := 1
				if key.String() == "left" {
					step = -1
				}
				fl.choice = (fl.choice + step + len(fl.options)) % len(fl.options)
				delete(f.errors, fl.key)
				return nil, false
			}
		}
	}

	var cmd tea.Cmd
	switch fl.kind {
	case fieldText, fieldPassword:
		before := fl.input.Value()
		fl.input, cmd = fl.input.Update(msg)
		if fl.input.Value() != before {
			delete(f.errors, fl.key)
		}
	case fieldArea:
		before := fl.area.Value()
		fl.area, cmd = fl.area.Update(msg)
		if fl.area.Value() != before {
			delete(f.errors, fl.key)
		}
	}
	return cmd, false
}

// View renders every field with its label and error.
func (f *form) View(theme *styles.Theme) string {
	return f.ViewHeight(theme, 0)
}

// ViewHeight renders the fields, dropping leading ones until the focused
// field fits in height lines. height <= 0 renders everything.
func (f *form) ViewHeight(theme *styles.Theme, height int) string {
	blocks := make([]string, len(f.fields))
	for i := range f.fields {
		blocks[i] = f.fieldView(theme, i)
	}
	start := 0
	if height > 0 {
		for start < f.focus {
			used := 0
			for _, b := range blocks[start : f.focus+1] {
				used += lipgloss.Height(b)
			}
			if used <= height {
				break
			}
			start++
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks[start:]...)
}

func (f *form) fieldView(theme *styles.Theme, i int) string {
	fl := f.fields[i]
	label := theme.Label.Render(fl.label)
	if i == f.focus {
		label = theme.ShortcutKey.Render("> ") + label
	} else {
		label = "  " + label
	}
	rows := []string{label}

	box := theme.Input
	if i == f.focus {
		box = theme.InputFocused
	}
	var body string
	switch fl.kind {
	case fieldArea:
		body = fl.area.View()
	case fieldChoice:
		val := "-"
		if len(fl.options) > 0 {
			val = fl.options[fl.choice]
		}
		body = "< " + val + " >"
	default:
		body = fl.input.View()
	}
	rows = append(rows, box.Width(f.width).Render(body))
	if msg := f.errors[fl.key]; msg != "" {
		rows = append(rows, "  "+theme.FieldError.Render(msg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
