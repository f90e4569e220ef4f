// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for compass.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.compass/config.toml
//   - ~/.compass/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete compass configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend API connection
	API APIConfig `toml:"api" json:"api"`

	// Search and autocomplete behaviour
	Search SearchConfig `toml:"search" json:"search"`

	// Chat assistant behaviour
	Assistant AssistantConfig `toml:"assistant" json:"assistant"`

	// Local storage (tokens, transcript)
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Log output
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the API root, including the /api prefix
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds every request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RateLimitRPS caps outgoing requests per second (0 = unlimited)
	RateLimitRPS float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
	// RateBurst is the token bucket size when RateLimitRPS > 0
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
}

// Timeout returns TimeoutSecs as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// SearchConfig contains search engine settings.
type SearchConfig struct {
	DebounceMs           int `toml:"debounce_ms" json:"debounce_ms"`
	AutocompleteMinChars int `toml:"autocomplete_min_chars" json:"autocomplete_min_chars"`
	AutocompleteLimit    int `toml:"autocomplete_limit" json:"autocomplete_limit"`
	DefaultPageSize      int `toml:"default_page_size" json:"default_page_size"`
	ExcerptLength        int `toml:"excerpt_length" json:"excerpt_length"`
	CardExcerptLength    int `toml:"card_excerpt_length" json:"card_excerpt_length"`
	TrendingLimit        int `toml:"trending_limit" json:"trending_limit"`
}

// Debounce returns DebounceMs as a duration.
func (c SearchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// AssistantConfig contains chat assistant settings.
type AssistantConfig struct {
	SuggestionMinChars int `toml:"suggestion_min_chars" json:"suggestion_min_chars"`
	DebounceMs         int `toml:"debounce_ms" json:"debounce_ms"`
}

// Debounce returns DebounceMs as a duration.
func (c AssistantConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// StorageConfig contains local storage settings.
type StorageConfig struct {
	// Path is the SQLite file (empty = ~/.compass/compass.db)
	Path string `toml:"path" json:"path"`
	// SealSecrets encrypts tokens at rest with a per-install key
	SealSecrets bool `toml:"seal_secrets" json:"seal_secrets"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// Format is console or json
	Format string `toml:"format" json:"format"`
	// File is the log path (empty = ~/.compass/compass.log)
	File       string `toml:"file" json:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days"`
	Compress   bool   `toml:"compress" json:"compress"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is auto, dark or light
	Theme    string `toml:"theme" json:"theme"`
	WordWrap int    `toml:"word_wrap" json:"word_wrap"`
	ShowHelp bool   `toml:"show_help" json:"show_help"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:     "http://localhost:8000/api",
			TimeoutSecs: 10,
			RateBurst:   10,
		},
		Search: SearchConfig{
			DebounceMs:           500,
			AutocompleteMinChars: 3,
			AutocompleteLimit:    10,
			DefaultPageSize:      model.DefaultPageSize,
			ExcerptLength:        200,
			CardExcerptLength:    150,
			TrendingLimit:        5,
		},
		Assistant: AssistantConfig{
			SuggestionMinChars: 3,
			DebounceMs:         500,
		},
		Storage: StorageConfig{
			SealSecrets: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		UI: UIConfig{
			Theme:    "auto",
			WordWrap: 80,
			ShowHelp: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the compass configuration directory path.
// COMPASS_HOME overrides the default ~/.compass.
func ConfigDir() (string, error) {
	if dir := os.Getenv("COMPASS_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".compass"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// StoragePath resolves the local storage file.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "compass.db"), nil
}

// LogPath resolves the log file.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "compass.log"), nil
}

// ensureSecurePermissions narrows a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads KEY=VALUE pairs from .env in the config directory and in
// the working directory. Variables already set in the environment win.
func LoadDotEnv() error {
	var candidates []string
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	candidates = append(candidates, ".env")

	var present []string
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}

	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	// Defaults, possibly with a load error for informational purposes
	cfg = Default()
	finished, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	return finished, loadErr
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file on top of cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# compass configuration file\n")
	b.WriteString("# Generated by compass - edit with care\n\n")
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// API
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", c.API.BaseURL),
		})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be 1-300, got %d", c.API.TimeoutSecs),
		})
	}
	if c.API.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{Field: "api.rate_limit_rps", Message: "cannot be negative"})
	}

	// Search
	if !model.ValidPageSize(c.Search.DefaultPageSize) {
		errs = append(errs, ValidationError{
			Field:   "search.default_page_size",
			Message: fmt.Sprintf("must be one of %v, got %d", model.PageSizes, c.Search.DefaultPageSize),
		})
	}
	if c.Search.AutocompleteMinChars < 1 {
		errs = append(errs, ValidationError{Field: "search.autocomplete_min_chars", Message: "must be at least 1"})
	}
	if c.Search.AutocompleteLimit < 1 || c.Search.AutocompleteLimit > 20 {
		errs = append(errs, ValidationError{
			Field:   "search.autocomplete_limit",
			Message: fmt.Sprintf("must be 1-20, got %d", c.Search.AutocompleteLimit),
		})
	}
	if c.Search.DebounceMs < 0 || c.Search.DebounceMs > 5000 {
		errs = append(errs, ValidationError{
			Field:   "search.debounce_ms",
			Message: fmt.Sprintf("must be 0-5000, got %d", c.Search.DebounceMs),
		})
	}

	// Assistant
	if c.Assistant.SuggestionMinChars < 1 {
		errs = append(errs, ValidationError{Field: "assistant.suggestion_min_chars", Message: "must be at least 1"})
	}
	if c.Assistant.DebounceMs < 0 || c.Assistant.DebounceMs > 5000 {
		errs = append(errs, ValidationError{
			Field:   "assistant.debounce_ms",
			Message: fmt.Sprintf("must be 0-5000, got %d", c.Assistant.DebounceMs),
		})
	}

	// Logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}
	if f := strings.ToLower(c.Logging.Format); f != "console" && f != "json" {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format '%s', must be console or json", c.Logging.Format),
		})
	}

	// UI
	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values that have no meaningful zero.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.API.RateBurst <= 0 {
		c.API.RateBurst = d.API.RateBurst
	}
	if c.Search.AutocompleteMinChars == 0 {
		c.Search.AutocompleteMinChars = d.Search.AutocompleteMinChars
	}
	if c.Search.AutocompleteLimit == 0 {
		c.Search.AutocompleteLimit = d.Search.AutocompleteLimit
	}
	if c.Search.DefaultPageSize == 0 {
		c.Search.DefaultPageSize = d.Search.DefaultPageSize
	}
	if c.Search.ExcerptLength <= 0 {
		c.Search.ExcerptLength = d.Search.ExcerptLength
	}
	if c.Search.CardExcerptLength <= 0 {
		c.Search.CardExcerptLength = d.Search.CardExcerptLength
	}
	if c.Search.TrendingLimit <= 0 {
		c.Search.TrendingLimit = d.Search.TrendingLimit
	}
	if c.Assistant.SuggestionMinChars == 0 {
		c.Assistant.SuggestionMinChars = d.Assistant.SuggestionMinChars
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.WordWrap <= 0 {
		c.UI.WordWrap = d.UI.WordWrap
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//   - COMPASS_API_URL: overrides api.base_url
//   - COMPASS_TIMEOUT: overrides api.timeout_secs
//   - COMPASS_LOG_LEVEL: overrides logging.level
//   - COMPASS_STORAGE_PATH: overrides storage.path
//   - COMPASS_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("COMPASS_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("COMPASS_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("COMPASS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("COMPASS_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("COMPASS_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// setting binds one dot-notation key to the field it addresses. ptr
// returns a *string, *int, *float64 or *bool into c.
type setting struct {
	key string
	ptr func(c *Config) any
}

// settings lists every key reachable through Get and Set, in display order.
var settings = []setting{
	{"version", func(c *Config) any { return &c.Version }},
	{"api.base_url", func(c *Config) any { return &c.API.BaseURL }},
	{"api.timeout_secs", func(c *Config) any { return &c.API.TimeoutSecs }},
	{"api.rate_limit_rps", func(c *Config) any { return &c.API.RateLimitRPS }},
	{"api.rate_burst", func(c *Config) any { return &c.API.RateBurst }},
	{"search.debounce_ms", func(c *Config) any { return &c.Search.DebounceMs }},
	{"search.autocomplete_min_chars", func(c *Config) any { return &c.Search.AutocompleteMinChars }},
	{"search.autocomplete_limit", func(c *Config) any { return &c.Search.AutocompleteLimit }},
	{"search.default_page_size", func(c *Config) any { return &c.Search.DefaultPageSize }},
	{"search.excerpt_length", func(c *Config) any { return &c.Search.ExcerptLength }},
	{"search.card_excerpt_length", func(c *Config) any { return &c.Search.CardExcerptLength }},
	{"search.trending_limit", func(c *Config) any { return &c.Search.TrendingLimit }},
	{"assistant.suggestion_min_chars", func(c *Config) any { return &c.Assistant.SuggestionMinChars }},
	{"assistant.debounce_ms", func(c *Config) any { return &c.Assistant.DebounceMs }},
	{"storage.path", func(c *Config) any { return &c.Storage.Path }},
	{"storage.seal_secrets", func(c *Config) any { return &c.Storage.SealSecrets }},
	{"logging.level", func(c *Config) any { return &c.Logging.Level }},
	{"logging.format", func(c *Config) any { return &c.Logging.Format }},
	{"logging.file", func(c *Config) any { return &c.Logging.File }},
	{"logging.max_size_mb", func(c *Config) any { return &c.Logging.MaxSizeMB }},
	{"logging.max_backups", func(c *Config) any { return &c.Logging.MaxBackups }},
	{"logging.max_age_days", func(c *Config) any { return &c.Logging.MaxAgeDays }},
	{"logging.compress", func(c *Config) any { return &c.Logging.Compress }},
	{"ui.theme", func(c *Config) any { return &c.UI.Theme }},
	{"ui.word_wrap", func(c *Config) any { return &c.UI.WordWrap }},
	{"ui.show_help", func(c *Config) any { return &c.UI.ShowHelp }},
}

func (c *Config) field(key string) (any, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil, errors.New("empty key")
	}
	for _, s := range settings {
		if s.key == key {
			return s.ptr(c), nil
		}
	}
	return nil, fmt.Errorf("unknown key: %s", key)
}

// Get returns the value stored under a dot-notation key such as
// "api.base_url".
func (c *Config) Get(key string) (interface{}, error) {
	p, err := c.field(key)
	if err != nil {
		return nil, err
	}
	switch p := p.(type) {
	case *string:
		return *p, nil
	case *int:
		return *p, nil
	case *float64:
		return *p, nil
	case *bool:
		return *p, nil
	}
	return nil, fmt.Errorf("unsupported key: %s", key)
}

// Set parses value for the type of key and stores it. The result is not
// validated; call Validate before saving.
func (c *Config) Set(key, value string) error {
	p, err := c.field(key)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	switch p := p.(type) {
	case *string:
		*p = value
	case *int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", key, value)
		}
		*p = n
	case *float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", key, value)
		}
		*p = f
	case *bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", key, value)
		}
		*p = b
	default:
		return fmt.Errorf("unsupported key: %s", key)
	}
	return nil
}

// GetAllKeys returns every key accepted by Get and Set.
func GetAllKeys() []string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.key
	}
	return keys
}

// Clone returns a copy of the configuration. Config holds no reference
// types, so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
