// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/compass-tui/internal/apitest"
	"github.com/jeranaias/compass-tui/internal/config"
	"github.com/jeranaias/compass-tui/internal/logging"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/storage"
	uiapp "github.com/jeranaias/compass-tui/internal/ui/app"
)

func testConfig(t *testing.T, srv *apitest.Server) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.API.BaseURL = srv.APIURL()
	cfg.Storage.Path = filepath.Join(dir, "compass.db")
	cfg.Logging.File = filepath.Join(dir, "compass.log")
	return cfg
}

func TestNew_WiresComponents(t *testing.T) {
	srv := apitest.New(t)
	a, err := New(context.Background(), testConfig(t, srv), Options{Version: "1.2.3", Logger: logging.Nop()})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Session)
	assert.NotNil(t, a.Patterns)
	assert.NotNil(t, a.Search)
	assert.NotNil(t, a.Assistant)
	assert.NotNil(t, a.Reference)
	assert.NotNil(t, a.Newsletter)
	assert.Equal(t, srv.APIURL(), a.Client.BaseURL())
	assert.Equal(t, "1.2.3", a.TUIDeps(context.Background(), "/").Version)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	srv := apitest.New(t)
	cfg := testConfig(t, srv)
	cfg.API.BaseURL = "not a url"
	_, err := New(context.Background(), cfg, Options{Logger: logging.Nop()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestSessionSurvivesRestart(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleEditor)
	cfg := testConfig(t, srv)
	ctx := context.Background()

	first, err := New(ctx, cfg, Options{Logger: logging.Nop()})
	require.NoError(t, err)
	res := first.Session.Login(ctx, "anna@example.com", "secret123")
	require.True(t, res.Success, res.Error)
	require.NoError(t, first.Close())

	// Tokens are sealed on disk.
	store, err := storage.Open(cfg.Storage.Path)
	require.NoError(t, err)
	raw, err := store.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, storage.IsSealed(raw))
	require.NoError(t, store.Close())

	second, err := New(ctx, cfg, Options{Logger: logging.Nop()})
	require.NoError(t, err)
	defer second.Close()
	user := second.Restore(ctx)
	require.NotNil(t, user)
	assert.Equal(t, "anna", user.Username)
}

func TestRestoreWithoutTokens(t *testing.T) {
	srv := apitest.New(t)
	a, err := New(context.Background(), testConfig(t, srv), Options{Logger: logging.Nop()})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Restore(context.Background()))
	assert.Zero(t, srv.TotalCalls("/api/auth"))
}

func TestSessionExpiredSignalsTUI(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleViewer)
	a, err := New(context.Background(), testConfig(t, srv), Options{Logger: logging.Nop()})
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	require.True(t, a.Session.Login(ctx, "anna@example.com", "secret123").Success)
	// A token pair the backend does not know forces a failed refresh.
	require.NoError(t, a.Tokens.Save(model.TokenPair{AccessToken: "stale", RefreshToken: "stale"}))

	_, err = a.Session.Refresh(ctx)
	require.Error(t, err)

	select {
	case <-a.expired:
	case <-time.After(time.Second):
		t.Fatal("no expiry signal")
	}
	assert.False(t, a.Session.IsAuthenticated())
}

func TestNew_WritesLogFile(t *testing.T) {
	srv := apitest.New(t)
	cfg := testConfig(t, srv)
	cfg.Logging.Level = "debug"
	a, err := New(context.Background(), cfg, Options{})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "components ready"))
}

func TestWatchConfigForwardsEdits(t *testing.T) {
	srv := apitest.New(t)
	cfg := testConfig(t, srv)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.SaveTOML(cfg, path))

	a, err := New(context.Background(), cfg, Options{Logger: logging.Nop(), ConfigPath: path})
	require.NoError(t, err)
	defer a.Close()

	watched, err := a.configFile()
	require.NoError(t, err)
	assert.Equal(t, path, watched)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs := make(chan tea.Msg, 8)
	go a.watchConfig(ctx, path, func(msg tea.Msg) { msgs <- msg })

	edited := cfg.Clone()
	edited.UI.Theme = "light"
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case msg := <-msgs:
			reloaded, ok := msg.(uiapp.ConfigReloadedMsg)
			require.True(t, ok, "unexpected message %T", msg)
			assert.Equal(t, "light", reloaded.Config.UI.Theme)
			return
		case <-tick.C:
			// The watcher may not be registered yet; keep touching the file.
			require.NoError(t, config.SaveTOML(edited, path))
		case <-deadline:
			t.Fatal("no reload forwarded within 5s")
		}
	}
}
