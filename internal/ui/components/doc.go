// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable widgets of the compass TUI.
//
// Widgets follow the Bubble Tea pattern: they keep their own state, handle
// key messages in Update and render in View. Results flow back to the owning
// screen as messages.
//
// # Key Types
//
//   - ToastManager: auto-dismissing notifications (success, error, warning, info)
//   - Pagination: page/page-size navigation with the "1–10 of 42" summary
//   - Modal: confirmation dialog for destructive actions
//   - Spinner: loading indicator with message
//   - CodeBlock: syntax-highlighted implementation examples
//
// # Usage
//
//	toasts := components.NewToastManager()
//	toasts.AddError(api.UserMessage(err))
//
//	modal := components.NewModal(theme)
//	modal.Show("delete", "Eliminare il pattern?", "L'operazione non è reversibile.")
package components
