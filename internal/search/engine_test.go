// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

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

func newTestEngine(t *testing.T, opts Options) (*Engine, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	client := api.New(nil, api.Options{BaseURL: srv.APIURL(), Timeout: 2 * time.Second})
	return NewEngine(client, opts, nil), srv
}

func TestSearch(t *testing.T) {
	eng, srv := newTestEngine(t, Options{})
	srv.SeedPatterns(24)

	filters := model.Filters{Strategy: model.StrategyHide, Search: "ignored"}
	res, err := eng.Search(context.Background(), "  Pattern  ", 1, 10, filters)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := srv.LastQuery("GET", "/api/search/patterns")
	if q.Get("q") != "Pattern" || q.Get("skip") != "0" || q.Get("limit") != "10" || q.Get("strategy") != "Hide" {
		t.Errorf("query = %v", q)
	}
	if q.Has("search") {
		t.Error("search filter leaked into the search request")
	}
	if res.Total != 3 || len(res.Items) != 3 || res.TotalPages != 1 {
		t.Errorf("results = %+v", res)
	}
	if res.Query != "Pattern" {
		t.Errorf("Query = %q", res.Query)
	}
}

func TestSearchEmptyQueryOmitsQ(t *testing.T) {
	eng, srv := newTestEngine(t, Options{})
	srv.SeedPatterns(2)

	if _, err := eng.Search(context.Background(), "", 1, 10, model.Filters{}); err != nil {
		t.Fatal(err)
	}
	if srv.LastQuery("GET", "/api/search/patterns").Has("q") {
		t.Error("empty q sent")
	}
}

func TestSearchRejectsPageSize(t *testing.T) {
	eng, srv := newTestEngine(t, Options{})
	if _, err := eng.Search(context.Background(), "x", 1, 11, model.Filters{}); !errors.Is(err, model.ErrInvalidPageSize) {
		t.Errorf("err = %v", err)
	}
	if srv.TotalCalls("/api/search") != 0 {
		t.Error("request sent for invalid page size")
	}
}

func TestSearchDropsStale(t *testing.T) {
	eng, srv := newTestEngine(t, Options{})
	srv.SeedPatterns(5)
	srv.SetDelay(func(r *http.Request) time.Duration {
		if r.URL.Query().Get("q") == "slow" {
			return 300 * time.Millisecond
		}
		return 0
	})

	done := make(chan error, 1)
	go func() {
		_, err := eng.Search(context.Background(), "slow", 1, 10, model.Filters{})
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)

	if _, err := eng.Search(context.Background(), "Pattern", 1, 10, model.Filters{}); err != nil {
		t.Fatal(err)
	}
	if err := <-done; !errors.Is(err, ErrStale) {
		t.Errorf("slow search err = %v, want ErrStale", err)
	}
}

func TestSearchServerError(t *testing.T) {
	eng, srv := newTestEngine(t, Options{})
	srv.Fail("GET", "/api/search/patterns", http.StatusBadGateway)

	_, err := eng.Search(context.Background(), "x", 1, 10, model.Filters{})
	if !errors.Is(err, api.ErrServer) {
		t.Errorf("err = %v, want ErrServer", err)
	}
}

func TestAutocompleteMinChars(t *testing.T) {
	eng, srv := newTestEngine(t, Options{})
	srv.SeedPatterns(5)

	for _, in := range []string{"", "Pa", "  Pa  "} {
		if got := eng.Autocomplete(context.Background(), in, 0); got != nil {
			t.Errorf("Autocomplete(%q) = %v, want nil", in, got)
		}
	}
	if srv.TotalCalls("/api/search/autocomplete") != 0 {
		t.Error("short input reached the network")
	}

	got := eng.Autocomplete(context.Background(), "pat", 2)
	if len(got) != 2 {
		t.Fatalf("Autocomplete(pat) = %d suggestions, want 2", len(got))
	}
	if got[0].Text() != "Pattern 1 Minimize" {
		t.Errorf("first suggestion = %q", got[0].Text())
	}
	if q := srv.LastQuery("GET", "/api/search/autocomplete"); q.Get("q") != "pat" || q.Get("limit") != "2" {
		t.Errorf("query = %v", q)
	}
}

func TestAutocompleteConfigurableMin(t *testing.T) {
	eng, srv := newTestEngine(t, Options{MinChars: 2})
	srv.SeedPatterns(1)

	if got := eng.Autocomplete(context.Background(), "pa", 0); len(got) != 1 {
		t.Errorf("got %d suggestions with MinChars 2", len(got))
	}
}

func TestAutocompleteSwallowsErrors(t *testing.T) {
	eng, srv := newTestEngine(t, Options{})
	srv.Fail("GET", "/api/search/autocomplete", http.StatusInternalServerError)

	if got := eng.Autocomplete(context.Background(), "pattern", 0); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestAutocompleteCancelsSuperseded(t *testing.T) {
	eng, srv := newTestEngine(t, Options{})
	srv.SeedPatterns(3)
	srv.SetDelay(func(r *http.Request) time.Duration {
		if r.URL.Query().Get("q") == "patt" {
			return time.Second
		}
		return 0
	})

	done := make(chan []model.AutocompleteSuggestion, 1)
	start := time.Now()
	go func() {
		done <- eng.Autocomplete(context.Background(), "patt", 0)
	}()
	time.Sleep(50 * time.Millisecond)

	latest := eng.Autocomplete(context.Background(), "patte", 0)
	if len(latest) != 3 {
		t.Errorf("latest = %d suggestions, want 3", len(latest))
	}
	if old := <-done; old != nil {
		t.Errorf("superseded autocomplete returned %v", old)
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Error("superseded request was not cancelled")
	}
}

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"wrapped", `{"suggestions":[{"id":1,"title":"A"},{"id":2,"title":"B"}]}`, []string{"A", "B"}},
		{"bare", `[{"id":1,"title":"A"}]`, []string{"A"}},
		{"text field", `{"suggestions":[{"id":1,"text":"T"}]}`, []string{"T"}},
		{"empty", `{}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSuggestions([]byte(tt.body))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Text() != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, got[i].Text(), tt.want[i])
				}
			}
		})
	}
}

func TestTrending(t *testing.T) {
	eng, srv := newTestEngine(t, Options{})
	srv.SeedPatterns(8)

	got, err := eng.Trending(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != DefaultTrendingLimit || got[0].ID != 8 {
		t.Errorf("Trending = %d items, first id %d", len(got), got[0].ID)
	}
}

func TestDecodePatternsWrapped(t *testing.T) {
	got, err := decodePatterns([]byte(`{"patterns":[{"id":4,"title":"X"}]}`))
	if err != nil || len(got) != 1 || got[0].ID != 4 {
		t.Errorf("decodePatterns = %v, %v", got, err)
	}
	if _, err := decodePatterns([]byte(`{"patterns":"nope"}`)); !errors.Is(err, api.ErrServer) {
		t.Errorf("malformed err = %v", err)
	}
}
