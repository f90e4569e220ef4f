// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compass.db")
	st, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, path
}

// =============================================================================
// SQLITE STORE TESTS
// =============================================================================

func TestStore_SetGetDelete(t *testing.T) {
	st, _ := openTemp(t)

	_, err := st.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Set(KeyChatConversation, `[{"id":1}]`))
	v, err := st.Get(KeyChatConversation)
	require.NoError(t, err)
	require.Equal(t, `[{"id":1}]`, v)

	// Overwrite replaces.
	require.NoError(t, st.Set(KeyChatConversation, `[]`))
	v, err = st.Get(KeyChatConversation)
	require.NoError(t, err)
	require.Equal(t, `[]`, v)

	require.NoError(t, st.Delete(KeyChatConversation))
	_, err = st.Get(KeyChatConversation)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine.
	require.NoError(t, st.Delete(KeyChatConversation))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "compass.db")

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Set("a", "1"))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()

	v, err := st.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStore_Keys(t *testing.T) {
	st, _ := openTemp(t)
	require.NoError(t, st.Set("b", "2"))
	require.NoError(t, st.Set("a", "1"))

	keys, err := st.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)
}

func TestStore_Closed(t *testing.T) {
	st, _ := openTemp(t)
	require.NoError(t, st.Close())
	require.NoError(t, st.Close())

	_, err := st.Get("a")
	require.True(t, errors.Is(err, ErrClosed))
	require.ErrorIs(t, st.Set("a", "1"), ErrClosed)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	st, _ := openTemp(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Set("counter", "x")
			_, _ = st.Get("counter")
		}()
	}
	wg.Wait()

	v, err := st.Get("counter")
	require.NoError(t, err)
	require.Equal(t, "x", v)
}

// =============================================================================
// MEMORY STORE TESTS
// =============================================================================

func TestMemory(t *testing.T) {
	m := NewMemory()
	_, err := m.Get("x")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set("x", "1"))
	require.NoError(t, m.Set("a", "2"))
	v, err := m.Get("x")
	require.NoError(t, err)
	require.Equal(t, "1", v)
	require.Equal(t, []string{"a", "x"}, m.Keys())

	require.NoError(t, m.Delete("x"))
	_, err = m.Get("x")
	require.ErrorIs(t, err, ErrNotFound)
}
