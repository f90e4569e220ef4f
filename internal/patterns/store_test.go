// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package patterns

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/apitest"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/storage"
)

type fixture struct {
	srv    *apitest.Server
	store  *Store
	tokens *storage.TokenStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.New(t)
	tokens := storage.NewTokenStore(storage.NewMemory(), nil)
	client := api.New(tokens, api.Options{BaseURL: srv.APIURL(), Timeout: 2 * time.Second})
	return &fixture{srv: srv, store: NewStore(client, nil), tokens: tokens}
}

func (f *fixture) signIn(t *testing.T, role model.Role) model.User {
	t.Helper()
	u := f.srv.AddUser(string(role)+"@example.com", string(role), "secret123", role)
	if err := f.tokens.Save(f.srv.IssueTokens(u.Email)); err != nil {
		t.Fatal(err)
	}
	return u
}

func validInput(title string) model.PatternInput {
	return model.PatternInput{
		Title:        title,
		Description:  "Descrizione sufficientemente lunga.",
		Context:      "Contesto sufficientemente lungo.",
		Problem:      "Problema sufficientemente lungo.",
		Solution:     "Soluzione sufficientemente lunga.",
		Consequences: "Conseguenze sufficientemente lunghe.",
		Strategy:     model.StrategyMinimize,
		MVCComponent: model.MVCModel,
	}
}

func TestListFirstPage(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedPatterns(42)

	pg, err := f.store.List(context.Background(), 1, 10, model.Filters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	q := f.srv.LastQuery("GET", "/api/patterns/")
	if q.Get("skip") != "0" || q.Get("limit") != "10" {
		t.Errorf("query = %v, want skip=0 limit=10", q)
	}
	for _, k := range model.FilterKeys {
		if q.Has(string(k)) {
			t.Errorf("query carries empty filter %s", k)
		}
	}
	if len(pg.Items) != 10 || pg.Total != 42 || pg.TotalPages != 5 {
		t.Errorf("page = %d items, total %d, pages %d", len(pg.Items), pg.Total, pg.TotalPages)
	}
	if pg.From() != 1 || pg.To() != 10 {
		t.Errorf("From/To = %d/%d, want 1/10", pg.From(), pg.To())
	}
}

func TestListLastPartialPage(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedPatterns(42)

	pg, err := f.store.List(context.Background(), 5, 10, model.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if q := f.srv.LastQuery("GET", "/api/patterns/"); q.Get("skip") != "40" {
		t.Errorf("skip = %s, want 40", q.Get("skip"))
	}
	if pg.From() != 41 || pg.To() != 42 {
		t.Errorf("From/To = %d/%d, want 41/42", pg.From(), pg.To())
	}
}

func TestListClampsPageAndRejectsSize(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedPatterns(3)

	pg, err := f.store.List(context.Background(), 0, 25, model.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if pg.Page != 1 {
		t.Errorf("Page = %d, want 1", pg.Page)
	}

	before := f.srv.TotalCalls("/api/patterns")
	if _, err := f.store.List(context.Background(), 1, 7, model.Filters{}); !errors.Is(err, model.ErrInvalidPageSize) {
		t.Errorf("List size 7 err = %v, want ErrInvalidPageSize", err)
	}
	if f.srv.TotalCalls("/api/patterns") != before {
		t.Error("invalid page size reached the network")
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedPatterns(16)

	filters, err := model.Filters{}.Set(model.FilterStrategy, "Hide")
	if err != nil {
		t.Fatal(err)
	}
	pg, err := f.store.ApplyFilters(context.Background(), filters)
	if err != nil {
		t.Fatal(err)
	}
	q := f.srv.LastQuery("GET", "/api/patterns/")
	if q.Get("strategy") != "Hide" {
		t.Errorf("strategy = %q", q.Get("strategy"))
	}
	for _, p := range pg.Items {
		if p.Strategy != model.StrategyHide {
			t.Errorf("got %s pattern under Hide filter", p.Strategy)
		}
	}

	if _, err := f.store.ResetFilters(context.Background()); err != nil {
		t.Fatal(err)
	}
	if q := f.srv.LastQuery("GET", "/api/patterns/"); q.Has("strategy") {
		t.Error("strategy still sent after ResetFilters")
	}
}

func TestNavigationHelpers(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedPatterns(60)
	ctx := context.Background()

	if _, err := f.store.ChangePage(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if r := f.store.Request(); r.Page != 3 || r.Size != model.DefaultPageSize {
		t.Errorf("Request = %+v", r)
	}

	if _, err := f.store.ChangePageSize(ctx, 25); err != nil {
		t.Fatal(err)
	}
	if r := f.store.Request(); r.Page != 1 || r.Size != 25 {
		t.Errorf("after ChangePageSize Request = %+v, want page 1 size 25", r)
	}

	f.store.ChangePage(ctx, 2)
	if _, err := f.store.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if q := f.srv.LastQuery("GET", "/api/patterns/"); q.Get("skip") != "25" || q.Get("limit") != "25" {
		t.Errorf("Reload query = %v", q)
	}
}

func TestListDropsStaleResponse(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedPatterns(30)
	f.srv.SetDelay(func(r *http.Request) time.Duration {
		if r.URL.Query().Get("skip") == "0" {
			return 300 * time.Millisecond
		}
		return 0
	})

	done := make(chan error, 1)
	go func() {
		_, err := f.store.List(context.Background(), 1, 10, model.Filters{})
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)

	if _, err := f.store.List(context.Background(), 2, 10, model.Filters{}); err != nil {
		t.Fatalf("second List: %v", err)
	}
	if err := <-done; !errors.Is(err, ErrStale) {
		t.Errorf("first List err = %v, want ErrStale", err)
	}
	if pg := f.store.Page(); pg.Page != 2 || pg.Items[0].ID != 11 {
		t.Errorf("displayed page = %d first id %d, want page 2 id 11", pg.Page, pg.Items[0].ID)
	}
}

func TestListServerErrorSetsErr(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail("GET", "/api/patterns/", http.StatusInternalServerError)

	if _, err := f.store.List(context.Background(), 1, 10, model.Filters{}); !errors.Is(err, api.ErrServer) {
		t.Fatalf("err = %v, want ErrServer", err)
	}
	if !errors.Is(f.store.Err(), api.ErrServer) {
		t.Errorf("Err() = %v", f.store.Err())
	}

	f.srv.Fail("GET", "/api/patterns/", 0)
	if _, err := f.store.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if f.store.Err() != nil {
		t.Errorf("Err() = %v after successful reload", f.store.Err())
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	seeded := f.srv.SeedPatterns(2)

	p, err := f.store.Get(context.Background(), seeded[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != seeded[1].Title || f.store.Current().ID != seeded[1].ID {
		t.Errorf("Get = %q, current %+v", p.Title, f.store.Current())
	}

	_, err = f.store.Get(context.Background(), 999)
	if !errors.Is(err, api.ErrNotFound) {
		t.Errorf("Get(999) err = %v, want ErrNotFound", err)
	}
	if f.store.Err() != nil {
		t.Error("not found must not set the generic error")
	}
}

func TestCreateMissingTitleMakesNoRequest(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, model.RoleEditor)

	in := validInput("")
	_, err := f.store.Create(context.Background(), in)

	var fe model.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FieldErrors", err)
	}
	if fe["title"] != "Il titolo è obbligatorio" {
		t.Errorf("title error = %q", fe["title"])
	}
	if n := f.srv.TotalCalls("/api/patterns"); n != 0 {
		t.Errorf("patterns calls = %d, want 0", n)
	}
}

func TestCreateRefreshesPage(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, model.RoleEditor)
	f.srv.SeedPatterns(3)
	ctx := context.Background()

	if _, err := f.store.List(ctx, 1, 10, model.Filters{}); err != nil {
		t.Fatal(err)
	}
	p, err := f.store.Create(ctx, validInput("  Nuovo pattern  "))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Title != "Nuovo pattern" {
		t.Errorf("Title = %q, want trimmed", p.Title)
	}
	if pg := f.store.Page(); pg.Total != 4 {
		t.Errorf("page total = %d after create, want 4", pg.Total)
	}
	if n := f.srv.Calls("GET", "/api/patterns/"); n != 2 {
		t.Errorf("list calls = %d, want 2", n)
	}
}

func TestCreateDuplicateTitle(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, model.RoleAdmin)
	seeded := f.srv.SeedPatterns(1)

	_, err := f.store.Create(context.Background(), validInput(seeded[0].Title))
	if !errors.Is(err, api.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if f.store.Err() != nil {
		t.Error("validation error leaked into Err()")
	}
}

func TestViewerCannotCreate(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, model.RoleViewer)

	_, err := f.store.Create(context.Background(), validInput("Pattern vietato"))
	if !errors.Is(err, api.ErrAuth) || api.Status(err) != http.StatusForbidden {
		t.Errorf("err = %v, want 403 ErrAuth", err)
	}
}

func TestUpdateReplacesCurrent(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, model.RoleAdmin)
	seeded := f.srv.SeedPatterns(2)
	ctx := context.Background()

	if _, err := f.store.Get(ctx, seeded[0].ID); err != nil {
		t.Fatal(err)
	}
	in := seeded[0].Input()
	in.Title = "Titolo aggiornato"
	if _, err := f.store.Update(ctx, seeded[0].ID, in); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := f.store.Current().Title; got != "Titolo aggiornato" {
		t.Errorf("current title = %q", got)
	}

	// Updating another pattern leaves the current slot alone.
	in2 := seeded[1].Input()
	in2.Title = "Altro titolo"
	if _, err := f.store.Update(ctx, seeded[1].ID, in2); err != nil {
		t.Fatal(err)
	}
	if f.store.Current().ID != seeded[0].ID {
		t.Error("current pattern replaced by unrelated update")
	}
}

func TestRemoveClearsCurrent(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, model.RoleAdmin)
	seeded := f.srv.SeedPatterns(3)
	ctx := context.Background()

	f.store.List(ctx, 1, 10, model.Filters{})
	f.store.Get(ctx, seeded[2].ID)

	if err := f.store.Remove(ctx, seeded[2].ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if f.store.Current() != nil {
		t.Error("current pattern kept after delete")
	}
	if pg := f.store.Page(); pg.Total != 2 {
		t.Errorf("total = %d after delete, want 2", pg.Total)
	}
	if _, ok := f.srv.Pattern(seeded[2].ID); ok {
		t.Error("pattern still on server")
	}
}

func TestEditorLimitedToOwnPatterns(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, model.RoleEditor)
	other := 999
	p := f.srv.AddPattern(model.Pattern{Title: "Altrui", Strategy: model.StrategyHide, MVCComponent: model.MVCView, CreatedByID: &other})

	err := f.store.Remove(context.Background(), p.ID)
	if !errors.Is(err, api.ErrAuth) {
		t.Errorf("err = %v, want ErrAuth", err)
	}
}

func TestAggregates(t *testing.T) {
	f := newFixture(t)
	seeded := f.srv.SeedPatterns(16)
	ctx := context.Background()

	st, err := f.store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 16 || st.Strategies["Minimize"] != 2 {
		t.Errorf("Stats = %+v", st)
	}

	hide, err := f.store.ByStrategy(ctx, model.StrategyHide)
	if err != nil || len(hide) != 2 {
		t.Errorf("ByStrategy = %d, %v", len(hide), err)
	}
	if _, err := f.store.ByStrategy(ctx, "Nope"); !errors.Is(err, api.ErrValidation) {
		t.Errorf("ByStrategy(Nope) err = %v", err)
	}

	views, err := f.store.ByMVC(ctx, model.MVCView)
	if err != nil || len(views) == 0 {
		t.Errorf("ByMVC = %d, %v", len(views), err)
	}

	rel, err := f.store.Related(ctx, seeded[0].ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rel) > DefaultRelatedLimit {
		t.Errorf("Related returned %d, limit %d", len(rel), DefaultRelatedLimit)
	}
	if q := f.srv.LastQuery("GET", "/api/patterns/related/1"); q.Get("limit") != "5" {
		t.Errorf("related limit = %q", q.Get("limit"))
	}
	for _, p := range rel {
		if p.ID == seeded[0].ID {
			t.Error("Related includes the pattern itself")
		}
	}
}
