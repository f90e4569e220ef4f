// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage is the local persistence layer for compass.
//
// Everything the client keeps between runs (access and refresh tokens, the
// chat transcript) lives in a single SQLite key/value table. Writes are
// atomic per key; there is no cross-key transaction.
//
// # Key Types
//
//   - KV: the key/value contract used by the rest of the module
//   - Store: SQLite implementation (modernc.org/sqlite, goose schema)
//   - Memory: in-process implementation for tests
//   - Sealer: XChaCha20-Poly1305 sealing of secret values
//   - TokenStore: access/refresh token persistence on top of a KV
//
// # Usage
//
//	st, err := storage.Open(path)
//	defer st.Close()
//
//	sealer, err := storage.LoadOrCreateSealer(filepath.Join(dir, "storage.key"))
//	tokens := storage.NewTokenStore(st, sealer)
//	tokens.Save(pair)
//
// # Storage Location
//
// The database defaults to ~/.compass/compass.db; the sealing key sits next
// to it as storage.key with 0600 permissions.
package storage
