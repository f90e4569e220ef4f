// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared by the
// compass packages.
//
// # Key Functions
//
//   - Ellipsis: rune-safe cut with a trailing "..." (excerpts, cards)
//   - TruncateWidth: display-width aware truncation for table columns
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	excerpt := util.Ellipsis(pattern.Description, 200)
//	cell := util.TruncateWidth(pattern.Title, 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
