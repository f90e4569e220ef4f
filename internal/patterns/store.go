// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package patterns

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/model"
)

// ErrStale is returned by list calls whose response arrived after a newer
// request was issued. The store state was not changed.
var ErrStale = errors.New("patterns: response superseded by a newer request")

// DefaultRelatedLimit is the number of related patterns requested by default.
const DefaultRelatedLimit = 5

// Page is one page of patterns.
type Page struct {
	Items      []model.Pattern
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// From returns the 1-based index of the first item on the page, or 0.
func (p Page) From() int {
	if p.Total == 0 || len(p.Items) == 0 {
		return 0
	}
	return (p.Page-1)*p.PageSize + 1
}

// To returns the 1-based index of the last item on the page, or 0.
func (p Page) To() int {
	if p.From() == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}

func pageFromList(list model.PatternList, req model.PageRequest) Page {
	pg := Page{
		Items:      list.Patterns,
		Total:      list.Total,
		Page:       req.Page,
		PageSize:   req.Size,
		TotalPages: list.Pages,
	}
	if pg.Items == nil {
		pg.Items = []model.Pattern{}
	}
	if pg.TotalPages <= 0 {
		pg.TotalPages = model.TotalPages(pg.Total, req.Size)
	}
	return pg
}

// =============================================================================
// STORE
// =============================================================================

// Store caches the displayed pattern page and the current pattern. It is
// safe for concurrent use.
type Store struct {
	client *api.Client
	log    *zap.Logger
	seq    api.Sequence

	mu      sync.RWMutex
	req     model.PageRequest
	filters model.Filters
	page    Page
	loaded  bool
	loading bool
	current *model.Pattern
	err     error
}

// NewStore creates a Store showing the first page of DefaultPageSize.
func NewStore(client *api.Client, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		client: client,
		log:    log,
		req:    model.PageRequest{Page: 1, Size: model.DefaultPageSize},
	}
}

// SetDefaultPageSize changes the page size used before the first List.
func (s *Store) SetDefaultPageSize(size int) {
	if !model.ValidPageSize(size) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.req.Size = size
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Page returns the page currently displayed.
func (s *Store) Page() Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pg := s.page
	pg.Items = append([]model.Pattern(nil), s.page.Items...)
	return pg
}

// Request returns the page request of the displayed page.
func (s *Store) Request() model.PageRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.req
}

// Filters returns the displayed filter set.
func (s *Store) Filters() model.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// Current returns the pattern loaded by the last Get, or nil.
func (s *Store) Current() *model.Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	p := *s.current
	return &p
}

// Loading reports whether a list request is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last network or server error, or nil.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ClearError resets Err.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
}

// record keeps network and server failures in Err.
func (s *Store) record(err error) error {
	if err == nil || api.IsCanceled(err) {
		return err
	}
	if errors.Is(err, api.ErrNetwork) || errors.Is(err, api.ErrServer) {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.log.Warn("pattern request failed", zap.Error(err))
	}
	return err
}

// =============================================================================
// LISTING
// =============================================================================

// List fetches one page. page < 1 is clamped to 1; a size outside
// model.PageSizes is rejected before any request. The page, size and
// filters become the displayed set even if the request fails, so Reload
// retries the same view.
func (s *Store) List(ctx context.Context, page, size int, filters model.Filters) (Page, error) {
	req, err := model.NewPageRequest(page, size)
	if err != nil {
		return Page{}, err
	}

	tag := s.seq.Next()
	s.mu.Lock()
	s.req = req
	s.filters = filters
	s.loading = true
	s.mu.Unlock()

	q := url.Values{}
	req.Encode(q)
	filters.Encode(q)

	var list model.PatternList
	err = s.client.Get(ctx, "/patterns/", q, &list)

	if !s.seq.Latest(tag) {
		return Page{}, ErrStale
	}

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.page = pageFromList(list, req)
		s.loaded = true
		s.err = nil
	}
	pg := s.page
	s.mu.Unlock()

	if err != nil {
		return Page{}, s.record(err)
	}
	s.log.Debug("pattern page loaded",
		zap.Int("page", req.Page), zap.Int("size", req.Size), zap.Int("total", pg.Total))
	return pg, nil
}

// Reload repeats the displayed request.
func (s *Store) Reload(ctx context.Context) (Page, error) {
	s.mu.RLock()
	req, filters := s.req, s.filters
	s.mu.RUnlock()
	return s.List(ctx, req.Page, req.Size, filters)
}

// ChangePage moves to page keeping size and filters.
func (s *Store) ChangePage(ctx context.Context, page int) (Page, error) {
	s.mu.RLock()
	req, filters := s.req, s.filters
	s.mu.RUnlock()
	return s.List(ctx, page, req.Size, filters)
}

// ChangePageSize switches size and returns to page 1.
func (s *Store) ChangePageSize(ctx context.Context, size int) (Page, error) {
	return s.List(ctx, 1, size, s.Filters())
}

// ApplyFilters replaces the filter set and returns to page 1.
func (s *Store) ApplyFilters(ctx context.Context, filters model.Filters) (Page, error) {
	return s.List(ctx, 1, s.Request().Size, filters)
}

// ResetFilters clears every filter and returns to page 1.
func (s *Store) ResetFilters(ctx context.Context) (Page, error) {
	return s.ApplyFilters(ctx, model.Filters{})
}

// refreshAfterWrite reloads the displayed page after a mutation. Failures
// are logged; the mutation itself already succeeded.
func (s *Store) refreshAfterWrite(ctx context.Context) {
	if _, err := s.Reload(ctx); err != nil && !errors.Is(err, ErrStale) {
		s.log.Warn("refresh after write failed", zap.Error(err))
	}
}

// =============================================================================
// SINGLE PATTERN
// =============================================================================

func patternPath(id int) string {
	return "/patterns/" + strconv.Itoa(id)
}

// Get fetches a pattern and makes it the current pattern.
func (s *Store) Get(ctx context.Context, id int) (*model.Pattern, error) {
	var p model.Pattern
	if err := s.client.Get(ctx, patternPath(id), nil, &p); err != nil {
		return nil, s.record(err)
	}
	s.mu.Lock()
	s.current = &p
	s.mu.Unlock()
	out := p
	return &out, nil
}

// Create validates in, posts it and refreshes the displayed page.
func (s *Store) Create(ctx context.Context, in model.PatternInput) (*model.Pattern, error) {
	in = in.Normalized()
	if err := model.Validate(in); err != nil {
		return nil, err
	}
	var p model.Pattern
	if err := s.client.Post(ctx, "/patterns/", in, &p); err != nil {
		return nil, s.record(err)
	}
	s.log.Info("pattern created", zap.Int("id", p.ID), zap.String("title", p.Title))
	s.refreshAfterWrite(ctx)
	return &p, nil
}

// Update validates in, puts it and refreshes the displayed page. The
// current pattern is replaced when it is the one updated.
func (s *Store) Update(ctx context.Context, id int, in model.PatternInput) (*model.Pattern, error) {
	in = in.Normalized()
	if err := model.Validate(in); err != nil {
		return nil, err
	}
	var p model.Pattern
	if err := s.client.Put(ctx, patternPath(id), in, &p); err != nil {
		return nil, s.record(err)
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		cur := p
		s.current = &cur
	}
	s.mu.Unlock()

	s.log.Info("pattern updated", zap.Int("id", id))
	s.refreshAfterWrite(ctx)
	return &p, nil
}

// Remove deletes a pattern, clears it from the current slot and refreshes
// the displayed page.
func (s *Store) Remove(ctx context.Context, id int) error {
	if err := s.client.Delete(ctx, patternPath(id), nil, nil); err != nil {
		return s.record(err)
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()

	s.log.Info("pattern deleted", zap.Int("id", id))
	s.refreshAfterWrite(ctx)
	return nil
}

// =============================================================================
// AGGREGATES
// =============================================================================

// Stats returns totals per strategy and MVC component.
func (s *Store) Stats(ctx context.Context) (model.PatternStats, error) {
	var st model.PatternStats
	if err := s.client.Get(ctx, "/patterns/stats", nil, &st); err != nil {
		return model.PatternStats{}, s.record(err)
	}
	return st, nil
}

// ByStrategy returns every pattern of a strategy.
func (s *Store) ByStrategy(ctx context.Context, st model.Strategy) ([]model.Pattern, error) {
	if !st.Valid() {
		return nil, fmt.Errorf("%w: unknown strategy %q", api.ErrValidation, st)
	}
	var out []model.Pattern
	if err := s.client.Get(ctx, "/patterns/by-strategy/"+url.PathEscape(string(st)), nil, &out); err != nil {
		return nil, s.record(err)
	}
	return out, nil
}

// ByMVC returns every pattern of an MVC component.
func (s *Store) ByMVC(ctx context.Context, c model.MVCComponent) ([]model.Pattern, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: unknown MVC component %q", api.ErrValidation, c)
	}
	var out []model.Pattern
	if err := s.client.Get(ctx, "/patterns/by-mvc/"+url.PathEscape(string(c)), nil, &out); err != nil {
		return nil, s.record(err)
	}
	return out, nil
}

// Related returns patterns sharing a strategy or component with id.
// limit <= 0 uses DefaultRelatedLimit.
func (s *Store) Related(ctx context.Context, id, limit int) ([]model.Pattern, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var out []model.Pattern
	if err := s.client.Get(ctx, "/patterns/related/"+strconv.Itoa(id), q, &out); err != nil {
		return nil, s.record(err)
	}
	return out, nil
}
