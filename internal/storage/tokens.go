// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"sync"

	"github.com/jeranaias/compass-tui/internal/model"
)

// TokenStore persists the access/refresh token pair. Values are cached in
// memory after the first read so every outgoing request does not hit disk.
// A nil Sealer stores tokens in clear text.
type TokenStore struct {
	mu     sync.RWMutex
	kv     KV
	sealer *Sealer
	loaded bool
	access string
	fresh  string
}

// NewTokenStore wraps kv.
func NewTokenStore(kv KV, sealer *Sealer) *TokenStore {
	return &TokenStore{kv: kv, sealer: sealer}
}

func (t *TokenStore) load() {
	t.mu.RLock()
	loaded := t.loaded
	t.mu.RUnlock()
	if loaded {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded {
		return
	}
	t.access = t.read(KeyAccessToken)
	t.fresh = t.read(KeyRefreshToken)
	t.loaded = true
}

// read returns "" for missing or undecryptable values; a token sealed with a
// lost key is as good as no token.
func (t *TokenStore) read(key string) string {
	v, err := t.kv.Get(key)
	if err != nil {
		return ""
	}
	if t.sealer != nil {
		plain, err := t.sealer.Open(v)
		if err != nil {
			return ""
		}
		return plain
	}
	if IsSealed(v) {
		return ""
	}
	return v
}

func (t *TokenStore) write(key, value string) error {
	if value == "" {
		return t.kv.Delete(key)
	}
	if t.sealer != nil {
		sealed, err := t.sealer.Seal(value)
		if err != nil {
			return err
		}
		value = sealed
	}
	return t.kv.Set(key, value)
}

// AccessToken returns the stored access token or "".
func (t *TokenStore) AccessToken() string {
	t.load()
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.access
}

// RefreshToken returns the stored refresh token or "".
func (t *TokenStore) RefreshToken() string {
	t.load()
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fresh
}

// HasToken reports whether an access token is stored.
func (t *TokenStore) HasToken() bool {
	return t.AccessToken() != ""
}

// Save stores a token pair. An empty refresh token keeps the previous one,
// since the refresh endpoint may return only a new access token.
func (t *TokenStore) Save(pair model.TokenPair) error {
	if pair.AccessToken == "" {
		return errors.New("storage: empty access token")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.write(KeyAccessToken, pair.AccessToken); err != nil {
		return err
	}
	t.access = pair.AccessToken
	if pair.RefreshToken != "" {
		if err := t.write(KeyRefreshToken, pair.RefreshToken); err != nil {
			return err
		}
		t.fresh = pair.RefreshToken
	} else if !t.loaded {
		t.fresh = t.read(KeyRefreshToken)
	}
	t.loaded = true
	return nil
}

// Clear removes both tokens.
func (t *TokenStore) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.access, t.fresh = "", ""
	t.loaded = true
	return errors.Join(t.kv.Delete(KeyAccessToken), t.kv.Delete(KeyRefreshToken))
}
