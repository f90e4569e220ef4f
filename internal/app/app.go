// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/assistant"
	"github.com/jeranaias/compass-tui/internal/config"
	"github.com/jeranaias/compass-tui/internal/logging"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/newsletter"
	"github.com/jeranaias/compass-tui/internal/patterns"
	"github.com/jeranaias/compass-tui/internal/reference"
	"github.com/jeranaias/compass-tui/internal/search"
	"github.com/jeranaias/compass-tui/internal/session"
	"github.com/jeranaias/compass-tui/internal/storage"
	uiapp "github.com/jeranaias/compass-tui/internal/ui/app"
)

// keyFile is the name of the token sealing key next to the database.
const keyFile = "storage.key"

// Options tunes New.
type Options struct {
	Version string
	// Stderr mirrors warnings to stderr. The TUI leaves it off because it
	// owns the terminal.
	Stderr bool
	// Logger replaces the configured logger.
	Logger *zap.Logger
	// ConfigPath is the file cfg was loaded from. The TUI watches it for
	// edits; empty means the default config.toml.
	ConfigPath string
}

// App holds every long-lived component.
type App struct {
	Config *config.Config
	Log    *zap.Logger

	Store  *storage.Store
	Tokens *storage.TokenStore
	Client *api.Client

	Session    *session.Manager
	Patterns   *patterns.Store
	Search     *search.Engine
	Assistant  *assistant.Session
	Reference  *reference.Service
	Newsletter *newsletter.Service

	version    string
	configPath string
	expired    chan struct{}
	closeLog   func()
}

// New wires the component graph from cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		Config:     cfg,
		version:    opts.Version,
		configPath: opts.ConfigPath,
		expired:    make(chan struct{}, 1),
		closeLog:   func() {},
	}

	if opts.Logger != nil {
		a.Log = opts.Logger
	} else {
		logPath, err := cfg.LogPath()
		if err != nil {
			return nil, err
		}
		lopts := logging.FromConfig(cfg.Logging, logPath)
		lopts.Stderr = opts.Stderr
		log, cleanup, err := logging.New(lopts)
		if err != nil {
			return nil, fmt.Errorf("failed to open log: %w", err)
		}
		a.Log, a.closeLog = log, cleanup
	}

	dbPath, err := cfg.StoragePath()
	if err != nil {
		a.closeLog()
		return nil, err
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		a.closeLog()
		return nil, err
	}
	a.Store = store
	var sealer *storage.Sealer
	if cfg.Storage.SealSecrets {
		sealer, err = storage.LoadOrCreateSealer(filepath.Join(filepath.Dir(dbPath), keyFile))
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	a.Tokens = storage.NewTokenStore(store, sealer)

	apiOpts := api.OptionsFromConfig(cfg.API, opts.Version)
	apiOpts.Logger = a.Log.Named("api")
	a.Client = api.New(a.Tokens, apiOpts)

	a.Session = session.NewManager(a.Client, a.Tokens, a.Log.Named("session"))
	a.Client.SetSessionExpiredHook(a.onSessionExpired)

	a.Patterns = patterns.NewStore(a.Client, a.Log.Named("patterns"))
	a.Patterns.SetDefaultPageSize(cfg.Search.DefaultPageSize)
	a.Search = search.NewEngine(a.Client, search.OptionsFromConfig(cfg.Search), a.Log.Named("search"))
	a.Assistant = assistant.NewSession(a.Client, store, assistant.OptionsFromConfig(cfg.Assistant), a.Log.Named("assistant"))
	a.Reference = reference.NewService(a.Client, a.Log.Named("reference"))
	a.Newsletter = newsletter.NewService(a.Client, a.Log.Named("newsletter"))

	a.Log.Debug("components ready",
		zap.String("api", a.Client.BaseURL()),
		zap.String("db", store.Path()),
	)
	return a, nil
}

// onSessionExpired runs on the request goroutine that saw the failed refresh.
func (a *App) onSessionExpired() {
	a.Session.HandleSessionExpired()
	select {
	case a.expired <- struct{}{}:
	default:
	}
}

// Restore loads the stored session. A network failure keeps the tokens so
// the next start can try again.
func (a *App) Restore(ctx context.Context) *model.User {
	user, err := a.Session.Restore(ctx)
	if err != nil {
		a.Log.Warn("session restore failed", zap.Error(err))
		return nil
	}
	return user
}

// Version returns the build version passed to New.
func (a *App) Version() string { return a.version }

// TUIDeps returns the dependency set for the TUI root model.
func (a *App) TUIDeps(ctx context.Context, start string) uiapp.Deps {
	return uiapp.Deps{
		Ctx:        ctx,
		Config:     a.Config,
		Log:        a.Log.Named("ui"),
		Session:    a.Session,
		Patterns:   a.Patterns,
		Search:     a.Search,
		Assistant:  a.Assistant,
		Reference:  a.Reference,
		Newsletter: a.Newsletter,
		Expired:    a.expired,
		Version:    a.version,
		StartPath:  start,
	}
}

// RunTUI runs the full-screen interface until the user quits. Edits of the
// config file are re-applied to the running interface.
func (a *App) RunTUI(ctx context.Context, start string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := uiapp.New(a.TUIDeps(ctx, start))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if path, err := a.configFile(); err == nil {
		go a.watchConfig(ctx, path, p.Send)
	}
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// configFile returns the file to watch for configuration edits.
func (a *App) configFile() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.ConfigPathTOML()
}

// watchConfig forwards every valid edit of path to send as a
// ConfigReloadedMsg until ctx ends.
func (a *App) watchConfig(ctx context.Context, path string, send func(tea.Msg)) {
	err := config.Watch(ctx, path,
		func(cfg *config.Config) {
			a.Log.Info("configuration reloaded", zap.String("path", path))
			send(uiapp.ConfigReloadedMsg{Config: cfg})
		},
		func(err error) {
			a.Log.Warn("configuration reload failed", zap.Error(err))
		},
	)
	if err != nil {
		a.Log.Debug("config watch disabled", zap.Error(err))
	}
}

// Close releases storage and flushes the log.
func (a *App) Close() error {
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	a.closeLog()
	return err
}
