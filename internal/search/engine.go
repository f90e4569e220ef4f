// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/config"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/util"
)

// ErrStale is returned by Search when a newer search was issued before the
// response arrived.
var ErrStale = errors.New("search: response superseded by a newer request")

// ErrorMessage is shown in place of results when a search fails.
const ErrorMessage = "Si è verificato un errore durante la ricerca. Riprova più tardi."

// Defaults.
const (
	DefaultMinChars      = 3
	DefaultLimit         = 10
	DefaultTrendingLimit = 5
	DefaultDebounce      = 500 * time.Millisecond
)

// Options configures an Engine.
type Options struct {
	// MinChars is the trimmed input length (in runes) that enables
	// autocomplete.
	MinChars int
	// Limit is the default number of autocomplete suggestions.
	Limit    int
	Debounce time.Duration
}

// OptionsFromConfig maps the search config section onto Options.
func OptionsFromConfig(c config.SearchConfig) Options {
	return Options{
		MinChars: c.AutocompleteMinChars,
		Limit:    c.AutocompleteLimit,
		Debounce: c.Debounce(),
	}
}

// Results is one page of search results.
type Results struct {
	Query      string
	Items      []model.Pattern
	Total      int
	TotalPages int
	Page       int
	PageSize   int
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs searches against the backend. It is safe for concurrent use.
type Engine struct {
	client *api.Client
	log    *zap.Logger
	opts   Options

	searchSeq api.Sequence
	autoSeq   api.Sequence

	mu         sync.Mutex
	autoCancel context.CancelFunc
}

// NewEngine creates an Engine. Zero option fields take the defaults.
func NewEngine(client *api.Client, opts Options, log *zap.Logger) *Engine {
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultMinChars
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{client: client, log: log, opts: opts}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// NewDebouncer returns a Debouncer using the engine's quiet interval.
func (e *Engine) NewDebouncer() *Debouncer {
	return NewDebouncer(e.opts.Debounce)
}

// Search runs a full-text search. The filters' own Search field is ignored;
// query is sent as q.
func (e *Engine) Search(ctx context.Context, query string, page, size int, filters model.Filters) (Results, error) {
	req, err := model.NewPageRequest(page, size)
	if err != nil {
		return Results{}, err
	}
	query = strings.TrimSpace(query)

	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	req.Encode(q)
	filters.Unset(model.FilterSearch).Encode(q)

	tag := e.searchSeq.Next()
	var list model.PatternList
	err = e.client.Get(ctx, "/search/patterns", q, &list)
	if !e.searchSeq.Latest(tag) {
		return Results{}, ErrStale
	}
	if err != nil {
		if !api.IsCanceled(err) {
			e.log.Warn("search failed", zap.String("query", query), zap.Error(err))
		}
		return Results{}, err
	}

	res := Results{
		Query:      query,
		Items:      list.Patterns,
		Total:      list.Total,
		TotalPages: list.Pages,
		Page:       req.Page,
		PageSize:   req.Size,
	}
	if res.Items == nil {
		res.Items = []model.Pattern{}
	}
	if res.TotalPages <= 0 {
		res.TotalPages = model.TotalPages(res.Total, req.Size)
	}
	return res, nil
}

// =============================================================================
// AUTOCOMPLETE
// =============================================================================

// ShouldAutocomplete reports whether partial is long enough to query.
func (e *Engine) ShouldAutocomplete(partial string) bool {
	return util.RuneLen(strings.TrimSpace(partial)) >= e.opts.MinChars
}

// Autocomplete returns suggestions for partial. Input shorter than MinChars
// returns nil without a request. A call cancels any autocomplete still in
// flight. Errors are logged and yield nil.
func (e *Engine) Autocomplete(ctx context.Context, partial string, limit int) []model.AutocompleteSuggestion {
	partial = strings.TrimSpace(partial)
	if !e.ShouldAutocomplete(partial) {
		e.CancelAutocomplete()
		return nil
	}
	if limit <= 0 {
		limit = e.opts.Limit
	}

	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	if e.autoCancel != nil {
		e.autoCancel()
	}
	e.autoCancel = cancel
	tag := e.autoSeq.Next()
	e.mu.Unlock()
	defer cancel()

	q := url.Values{}
	q.Set("q", partial)
	q.Set("limit", strconv.Itoa(limit))

	var body []byte
	err := e.client.Get(ctx, "/search/autocomplete", q, &body)
	if !e.autoSeq.Latest(tag) {
		return nil
	}
	if err != nil {
		if !api.IsCanceled(err) {
			e.log.Debug("autocomplete failed", zap.String("partial", partial), zap.Error(err))
		}
		return nil
	}
	return parseSuggestions(body)
}

// CancelAutocomplete aborts the in-flight autocomplete request, if any.
func (e *Engine) CancelAutocomplete() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.autoCancel != nil {
		e.autoCancel()
		e.autoCancel = nil
	}
	e.autoSeq.Next()
}

// parseSuggestions accepts {"suggestions": [...]} or a bare array.
func parseSuggestions(body []byte) []model.AutocompleteSuggestion {
	root := gjson.ParseBytes(body)
	list := root.Get("suggestions")
	if root.IsArray() {
		list = root
	}
	var out []model.AutocompleteSuggestion
	list.ForEach(func(_, v gjson.Result) bool {
		title := v.Get("title").String()
		if title == "" {
			title = v.Get("text").String()
		}
		if title == "" {
			return true
		}
		out = append(out, model.AutocompleteSuggestion{
			ID:          int(v.Get("id").Int()),
			Title:       title,
			Strategy:    v.Get("strategy").String(),
			Description: v.Get("description").String(),
			Score:       v.Get("score").Float(),
		})
		return true
	})
	return out
}

// =============================================================================
// TRENDING
// =============================================================================

// Trending returns the trending patterns. The backend may answer with a
// bare array or with {"patterns": [...]}.
func (e *Engine) Trending(ctx context.Context, limit int) ([]model.Pattern, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var body []byte
	if err := e.client.Get(ctx, "/search/trending", q, &body); err != nil {
		return nil, err
	}
	return decodePatterns(body)
}

func decodePatterns(body []byte) ([]model.Pattern, error) {
	root := gjson.ParseBytes(body)
	raw := root.Raw
	if !root.IsArray() {
		raw = root.Get("patterns").Raw
	}
	if raw == "" {
		return []model.Pattern{}, nil
	}
	var out []model.Pattern
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &api.Error{Kind: api.ErrServer, Method: "GET", Path: "/search/trending",
			Detail: "malformed response", Err: err}
	}
	return out, nil
}
