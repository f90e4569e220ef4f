// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/search"
)

// gdprPageLimit is the page size used to fetch the whole GDPR table.
const gdprPageLimit = 100

// LoadErrorMessage is shown when the GDPR list cannot be loaded.
const LoadErrorMessage = "Si è verificato un errore nel caricamento degli articoli GDPR. Riprova più tardi."

// Service gives cached access to the reference tables.
type Service struct {
	client *api.Client
	log    *zap.Logger

	mu    sync.Mutex
	gdpr  []model.GdprArticle
	pbd   []model.PbdPrinciple
	iso   []model.IsoPhase
	vulns []model.Vulnerability
}

// NewService creates a Service.
func NewService(client *api.Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, log: log}
}

// Invalidate drops every cached table.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gdpr, s.pbd, s.iso, s.vulns = nil, nil, nil, nil
}

// =============================================================================
// ENVELOPES
// =============================================================================

// unwrapList finds the item array in body: bare, {"items"}, {"data"} or
// {"data": {"items"}}.
func unwrapList(body []byte) (gjson.Result, bool) {
	root := gjson.ParseBytes(body)
	for _, r := range []gjson.Result{
		root,
		root.Get("data.items"),
		root.Get("items"),
		root.Get("data"),
	} {
		if r.IsArray() {
			return r, true
		}
	}
	return gjson.Result{}, false
}

// unwrapObject returns the "data" member when present, otherwise body.
func unwrapObject(body []byte) gjson.Result {
	root := gjson.ParseBytes(body)
	if d := root.Get("data"); d.IsObject() {
		return d
	}
	return root
}

func decodeList[T any](method, path string, body []byte) ([]T, error) {
	list, ok := unwrapList(body)
	if !ok {
		return nil, malformed(method, path, fmt.Errorf("no item list in response"))
	}
	out := []T{}
	if err := json.Unmarshal([]byte(list.Raw), &out); err != nil {
		return nil, malformed(method, path, err)
	}
	return out, nil
}

func decodeObject[T any](method, path string, body []byte) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(unwrapObject(body).Raw), &out); err != nil {
		return out, malformed(method, path, err)
	}
	return out, nil
}

func malformed(method, path string, err error) error {
	return &api.Error{Kind: api.ErrServer, Method: method, Path: path, Detail: "malformed response", Err: err}
}

// fetchList loads path into the cache slot guarded by s.mu.
func fetchList[T any](ctx context.Context, s *Service, path string, query url.Values, slot *[]T) ([]T, error) {
	s.mu.Lock()
	cached := *slot
	s.mu.Unlock()
	if cached != nil {
		return append([]T(nil), cached...), nil
	}

	var body []byte
	if err := s.client.Get(ctx, path, query, &body); err != nil {
		return nil, err
	}
	items, err := decodeList[T]("GET", path, body)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	*slot = items
	s.mu.Unlock()
	s.log.Debug("reference table loaded", zap.String("path", path), zap.Int("items", len(items)))
	return append([]T(nil), items...), nil
}

// =============================================================================
// GDPR
// =============================================================================

// GdprArticles returns every GDPR article.
func (s *Service) GdprArticles(ctx context.Context) ([]model.GdprArticle, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(gdprPageLimit))
	return fetchList(ctx, s, "/gdpr/articles", q, &s.gdpr)
}

// GdprArticle returns one article by id.
func (s *Service) GdprArticle(ctx context.Context, id int) (model.GdprArticle, error) {
	path := "/gdpr/articles/" + strconv.Itoa(id)
	var body []byte
	if err := s.client.Get(ctx, path, nil, &body); err != nil {
		return model.GdprArticle{}, err
	}
	return decodeObject[model.GdprArticle]("GET", path, body)
}

// GdprByNumber returns one article by its article number ("25").
func (s *Service) GdprByNumber(ctx context.Context, number string) (model.GdprArticle, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return model.GdprArticle{}, fmt.Errorf("%w: empty article number", api.ErrValidation)
	}
	path := "/gdpr/articles/number/" + url.PathEscape(number)
	var body []byte
	if err := s.client.Get(ctx, path, nil, &body); err != nil {
		return model.GdprArticle{}, err
	}
	return decodeObject[model.GdprArticle]("GET", path, body)
}

// Categories returns the distinct article categories in first-seen order.
func Categories(articles []model.GdprArticle) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range articles {
		if a.Category == "" || seen[a.Category] {
			continue
		}
		seen[a.Category] = true
		out = append(out, a.Category)
	}
	return out
}

// FilterArticles keeps articles in category ("" or "all" for any) whose
// title, content or number contains term, case-insensitively.
func FilterArticles(articles []model.GdprArticle, category, term string) []model.GdprArticle {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []model.GdprArticle
	for _, a := range articles {
		if category != "" && category != "all" && a.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(a.Title), term) &&
			!strings.Contains(strings.ToLower(a.Content), term) &&
			!strings.Contains(strings.ToLower(a.Number), term) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SortByNumber orders articles by numeric article number.
func SortByNumber(articles []model.GdprArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, errA := strconv.Atoi(articles[i].Number)
		b, errB := strconv.Atoi(articles[j].Number)
		if errA != nil || errB != nil {
			return articles[i].Number < articles[j].Number
		}
		return a < b
	})
}

// =============================================================================
// OTHER TABLES
// =============================================================================

// PbdPrinciples returns the Privacy-by-Design principles.
func (s *Service) PbdPrinciples(ctx context.Context) ([]model.PbdPrinciple, error) {
	return fetchList(ctx, s, "/pbd/principles", nil, &s.pbd)
}

// IsoPhases returns the ISO phases.
func (s *Service) IsoPhases(ctx context.Context) ([]model.IsoPhase, error) {
	return fetchList(ctx, s, "/iso/phases", nil, &s.iso)
}

// Vulnerabilities returns the known vulnerabilities.
func (s *Service) Vulnerabilities(ctx context.Context) ([]model.Vulnerability, error) {
	return fetchList(ctx, s, "/vulnerabilities", nil, &s.vulns)
}

// FilterOptions loads the four tables in parallel and builds the filter
// panel options. The first failure cancels the other requests.
func (s *Service) FilterOptions(ctx context.Context) (search.FilterOptions, error) {
	var (
		gdpr  []model.GdprArticle
		pbd   []model.PbdPrinciple
		iso   []model.IsoPhase
		vulns []model.Vulnerability
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { gdpr, err = s.GdprArticles(gctx); return })
	g.Go(func() (err error) { pbd, err = s.PbdPrinciples(gctx); return })
	g.Go(func() (err error) { iso, err = s.IsoPhases(gctx); return })
	g.Go(func() (err error) { vulns, err = s.Vulnerabilities(gctx); return })
	if err := g.Wait(); err != nil {
		s.log.Warn("failed to load filter options", zap.Error(err))
		return search.FilterOptions{}, err
	}
	return search.NewFilterOptions(gdpr, pbd, iso, vulns), nil
}
