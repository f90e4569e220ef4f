// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for compass.
//
// # Key Types
//
//   - Config: the complete configuration (api, search, assistant, storage,
//     logging, ui sections)
//   - ValidationError, ValidateErrors: per-field validation failures
//
// # Usage
//
// Load configuration with defaults and environment overrides:
//
//	cfg, err := config.Load()
//	client := api.New(tokens, api.OptionsFromConfig(cfg.API, version))
//
// Read or change a single key:
//
//	v, _ := cfg.Get("search.debounce_ms")
//	_ = cfg.Set("ui.theme", "dark")
//
// Follow edits to the file while the TUI runs:
//
//	go config.Watch(ctx, path, func(c *config.Config) {
//		p.Send(uiapp.ConfigReloadedMsg{Config: c})
//	}, nil)
package config
