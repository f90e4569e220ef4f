// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reference

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/apitest"
	"github.com/jeranaias/compass-tui/internal/model"
)

func newTestService(t *testing.T) (*Service, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	client := api.New(nil, api.Options{BaseURL: srv.APIURL(), Timeout: 2 * time.Second})
	return NewService(client, nil), srv
}

func TestGdprArticlesUnwrapsEnvelope(t *testing.T) {
	svc, srv := newTestService(t)

	arts, err := svc.GdprArticles(context.Background())
	if err != nil {
		t.Fatalf("GdprArticles: %v", err)
	}
	if len(arts) != 3 || arts[1].Number != "25" {
		t.Errorf("articles = %+v", arts)
	}
	if q := srv.LastQuery("GET", "/api/gdpr/articles"); q.Get("limit") != "100" {
		t.Errorf("limit = %q", q.Get("limit"))
	}

	// Cached.
	if _, err := svc.GdprArticles(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := srv.Calls("GET", "/api/gdpr/articles"); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}

	svc.Invalidate()
	svc.GdprArticles(context.Background())
	if n := srv.Calls("GET", "/api/gdpr/articles"); n != 2 {
		t.Errorf("calls after Invalidate = %d, want 2", n)
	}
}

func TestUnwrapList(t *testing.T) {
	tests := []struct {
		name string
		body string
		n    int
		ok   bool
	}{
		{"bare", `[{"id":1},{"id":2}]`, 2, true},
		{"items", `{"items":[{"id":1}]}`, 1, true},
		{"data", `{"data":[{"id":1}]}`, 1, true},
		{"data items", `{"status":"success","data":{"items":[{"id":1},{"id":2},{"id":3}],"total":3}}`, 3, true},
		{"none", `{"status":"success"}`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, ok := unwrapList([]byte(tt.body))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && len(list.Array()) != tt.n {
				t.Errorf("len = %d, want %d", len(list.Array()), tt.n)
			}
		})
	}
}

func TestGdprArticleByIDAndNumber(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.GdprArticle(ctx, 3)
	if err != nil || a.Number != "32" {
		t.Errorf("GdprArticle(3) = %+v, %v", a, err)
	}
	if _, err := svc.GdprArticle(ctx, 99); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("GdprArticle(99) err = %v", err)
	}

	a, err = svc.GdprByNumber(ctx, " 25 ")
	if err != nil || a.ID != 2 || a.Content == "" {
		t.Errorf("GdprByNumber(25) = %+v, %v", a, err)
	}
	_, err = svc.GdprByNumber(ctx, "999")
	if !errors.Is(err, api.ErrNotFound) || api.Detail(err) != "Articolo GDPR 999 non trovato" {
		t.Errorf("GdprByNumber(999) err = %v", err)
	}
	if _, err := svc.GdprByNumber(ctx, ""); !errors.Is(err, api.ErrValidation) {
		t.Errorf("empty number err = %v", err)
	}
}

func TestOtherTables(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pbd, err := svc.PbdPrinciples(ctx)
	if err != nil || len(pbd) != 2 {
		t.Errorf("PbdPrinciples = %v, %v", pbd, err)
	}
	iso, err := svc.IsoPhases(ctx)
	if err != nil || len(iso) != 2 {
		t.Errorf("IsoPhases = %v, %v", iso, err)
	}
	vulns, err := svc.Vulnerabilities(ctx)
	if err != nil || len(vulns) != 2 || vulns[0].Severity != "High" {
		t.Errorf("Vulnerabilities = %v, %v", vulns, err)
	}
}

func TestFilterOptions(t *testing.T) {
	svc, srv := newTestService(t)
	srv.SetGdprArticles([]model.GdprArticle{
		{ID: 2, Number: "25", Title: "B"},
		{ID: 1, Number: "5", Title: "A"},
		{ID: 2, Number: "25", Title: "B"},
	})

	opts, err := svc.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("FilterOptions: %v", err)
	}
	if len(opts.GdprArticles) != 2 || opts.GdprArticles[0].Number != "5" {
		t.Errorf("GdprArticles = %+v", opts.GdprArticles)
	}
	if len(opts.PbdPrinciples) != 2 || len(opts.IsoPhases) != 2 || len(opts.Vulnerabilities) != 2 {
		t.Errorf("opts = %+v", opts)
	}
}

func TestFilterOptionsFailure(t *testing.T) {
	svc, srv := newTestService(t)
	srv.Fail("GET", "/api/iso/phases", http.StatusServiceUnavailable)

	if _, err := svc.FilterOptions(context.Background()); !errors.Is(err, api.ErrServer) {
		t.Errorf("err = %v, want ErrServer", err)
	}
}

func TestFilterArticles(t *testing.T) {
	arts := []model.GdprArticle{
		{Number: "5", Title: "Principi", Category: "Principi", Content: "liceità"},
		{Number: "25", Title: "Privacy by design", Category: "Obblighi", Content: "misure tecniche"},
		{Number: "32", Title: "Sicurezza", Category: "Sicurezza", Content: "cifratura"},
	}

	if got := Categories(arts); len(got) != 3 || got[0] != "Principi" {
		t.Errorf("Categories = %v", got)
	}
	if got := FilterArticles(arts, "all", "CIFRA"); len(got) != 1 || got[0].Number != "32" {
		t.Errorf("term filter = %+v", got)
	}
	if got := FilterArticles(arts, "Obblighi", ""); len(got) != 1 || got[0].Number != "25" {
		t.Errorf("category filter = %+v", got)
	}
	if got := FilterArticles(arts, "", "2"); len(got) != 2 {
		t.Errorf("number filter = %d results, want 2", len(got))
	}
}

func TestSortByNumber(t *testing.T) {
	arts := []model.GdprArticle{{Number: "32"}, {Number: "5"}, {Number: "25"}}
	SortByNumber(arts)
	if arts[0].Number != "5" || arts[2].Number != "32" {
		t.Errorf("order = %v", arts)
	}
}
