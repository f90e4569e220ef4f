// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/compass-tui/internal/model"
)

// memTokens is a TokenSource for tests.
type memTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	cleared int
}

func (m *memTokens) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *memTokens) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

func (m *memTokens) Save(p model.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = p.AccessToken
	if p.RefreshToken != "" {
		m.refresh = p.RefreshToken
	}
	return nil
}

func (m *memTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = "", ""
	m.cleared++
	return nil
}

func newTestClient(srv *httptest.Server, tokens TokenSource) *Client {
	return New(tokens, Options{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
}

// =============================================================================
// HEADERS AND ENCODING
// =============================================================================

func TestClient_AttachesHeaders(t *testing.T) {
	var got http.Header
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.Path
		w.Write([]byte(`{"id": 7, "username": "mario"}`))
	}))
	defer srv.Close()

	c := New(&memTokens{access: "tok"}, Options{BaseURL: srv.URL + "/api/", UserAgent: "compass/test"})

	var user model.User
	if err := c.Get(context.Background(), "/auth/me", nil, &user); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if path != "/api/auth/me" {
		t.Errorf("path = %q, want /api/auth/me", path)
	}
	if got.Get("Authorization") != "Bearer tok" {
		t.Errorf("Authorization = %q", got.Get("Authorization"))
	}
	if got.Get("User-Agent") != "compass/test" {
		t.Errorf("User-Agent = %q", got.Get("User-Agent"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID missing")
	}
	if user.ID != 7 || user.Username != "mario" {
		t.Errorf("user = %+v", user)
	}
}

func TestClient_NoTokenNoAuthHeader(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := newTestClient(srv, &memTokens{}).Get(context.Background(), "/patterns/", nil, nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want empty", auth)
	}
}

func TestClient_FormAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		r.ParseForm()
		if r.PostForm.Get("username") != "a@b.it" {
			t.Errorf("username = %q", r.PostForm.Get("username"))
		}
		if r.URL.Query().Get("x") != "1" {
			t.Errorf("query x = %q", r.URL.Query().Get("x"))
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, nil)
	err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Query:  url.Values{"x": {"1"}},
		Form:   url.Values{"username": {"a@b.it"}, "password": {"pw"}},
	}, nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestClient_JSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.it" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"message": "ok"}`))
	}))
	defer srv.Close()

	var out struct{ Message string }
	if err := newTestClient(srv, nil).Post(context.Background(), "/newsletter/subscribe", map[string]string{"email": "a@b.it"}, &out); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if out.Message != "ok" {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestClient_RawOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"items": []}}`))
	}))
	defer srv.Close()

	var raw []byte
	if err := newTestClient(srv, nil).Get(context.Background(), "/gdpr/articles", nil, &raw); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(raw) != `{"data": {"items": []}}` {
		t.Errorf("raw = %s", raw)
	}
}

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   error
		detail string
	}{
		{400, `{"detail": "Email già registrata"}`, ErrValidation, "Email già registrata"},
		{401, `{"detail": "Credenziali non valide"}`, ErrAuth, "Credenziali non valide"},
		{403, `{"detail": "Permessi insufficienti"}`, ErrAuth, "Permessi insufficienti"},
		{404, `{"detail": "Pattern non trovato"}`, ErrNotFound, "Pattern non trovato"},
		{409, `{"message": "conflict"}`, ErrValidation, "conflict"},
		{500, `boom`, ErrServer, "boom"},
		{503, ``, ErrServer, "Service Unavailable"},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			io.WriteString(w, tt.body)
		}))

		err := newTestClient(srv, nil).Get(context.Background(), "/auth/login", nil, nil)
		srv.Close()

		if !errors.Is(err, tt.kind) {
			t.Errorf("status %d: err = %v, want kind %v", tt.status, err, tt.kind)
		}
		if Status(err) != tt.status {
			t.Errorf("status %d: Status() = %d", tt.status, Status(err))
		}
		if Detail(err) != tt.detail {
			t.Errorf("status %d: Detail() = %q, want %q", tt.status, Detail(err), tt.detail)
		}
	}
}

func TestClient_FieldErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail": [
			{"loc": ["body", "title"], "msg": "field required", "type": "value_error.missing"},
			{"loc": ["body", "gdpr_ids", 0], "msg": "value is not a valid integer"}
		]}`)
	}))
	defer srv.Close()

	err := newTestClient(srv, nil).Post(context.Background(), "/patterns/", map[string]any{}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	fields := FieldErrors(err)
	if fields["title"] != "field required" {
		t.Errorf("fields[title] = %q", fields["title"])
	}
	if fields["gdpr_ids"] != "value is not a valid integer" {
		t.Errorf("fields[gdpr_ids] = %q", fields["gdpr_ids"])
	}
	if got := UserMessage(err); got != "gdpr_ids: value is not a valid integer; title: field required" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := newTestClient(srv, nil).Get(context.Background(), "/patterns/", nil, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if UserMessage(err) != "Cannot reach the server." {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(nil, Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	err := c.Get(context.Background(), "/slow", nil, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want to wrap context.DeadlineExceeded", err)
	}
}

func TestClient_CallerCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := newTestClient(srv, nil).Get(ctx, "/search/autocomplete", nil, nil)
	if !IsCanceled(err) {
		t.Errorf("IsCanceled(%v) = false", err)
	}
}

func TestClient_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{not json`)
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(srv, nil).Get(context.Background(), "/x", nil, &out)
	if !errors.Is(err, ErrServer) {
		t.Errorf("err = %v, want ErrServer", err)
	}
}

// =============================================================================
// TOKEN REFRESH
// =============================================================================

// refreshServer returns 401 for any token other than "fresh" and issues
// "fresh" from /api/auth/refresh when given "r1".
func refreshServer(t *testing.T, refreshes *atomic.Int32, refreshOK bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh":
			refreshes.Add(1)
			if r.Header.Get("Authorization") != "" {
				t.Error("refresh must not carry the expired bearer token")
			}
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if !refreshOK || body["refresh_token"] != "r1" {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"detail": "Refresh token non valido"}`)
				return
			}
			time.Sleep(20 * time.Millisecond)
			io.WriteString(w, `{"access_token": "fresh", "token_type": "bearer"}`)
		case "/api/auth/login":
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail": "Credenziali non valide"}`)
		default:
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"detail": "Token scaduto"}`)
				return
			}
			io.WriteString(w, `{"ok": true}`)
		}
	}))
}

func TestClient_RefreshAndReplay(t *testing.T) {
	var refreshes atomic.Int32
	srv := refreshServer(t, &refreshes, true)
	defer srv.Close()

	tokens := &memTokens{access: "stale", refresh: "r1"}
	c := newTestClient(srv, tokens)

	var out struct{ OK bool }
	if err := c.Get(context.Background(), "/patterns/1", nil, &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !out.OK {
		t.Error("replayed response not decoded")
	}
	if tokens.AccessToken() != "fresh" {
		t.Errorf("access token = %q, want fresh", tokens.AccessToken())
	}
	if tokens.RefreshToken() != "r1" {
		t.Errorf("refresh token = %q, want r1 kept", tokens.RefreshToken())
	}
	if refreshes.Load() != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes.Load())
	}
}

func TestClient_RefreshFailureClearsSession(t *testing.T) {
	var refreshes atomic.Int32
	srv := refreshServer(t, &refreshes, false)
	defer srv.Close()

	tokens := &memTokens{access: "stale", refresh: "r1"}
	c := newTestClient(srv, tokens)

	var expired atomic.Int32
	c.SetSessionExpiredHook(func() { expired.Add(1) })

	err := c.Get(context.Background(), "/auth/me", nil, nil)
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
	if tokens.AccessToken() != "" || tokens.RefreshToken() != "" {
		t.Error("tokens should be cleared after failed refresh")
	}
	if expired.Load() != 1 {
		t.Errorf("OnSessionExpired calls = %d, want 1", expired.Load())
	}
}

func TestClient_NoRefreshTokenExpiresSession(t *testing.T) {
	var refreshes atomic.Int32
	srv := refreshServer(t, &refreshes, true)
	defer srv.Close()

	tokens := &memTokens{access: "stale"}
	var expired atomic.Bool
	c := New(tokens, Options{BaseURL: srv.URL + "/api", OnSessionExpired: func() { expired.Store(true) }})

	if err := c.Get(context.Background(), "/auth/me", nil, nil); !errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
	if refreshes.Load() != 0 {
		t.Errorf("refreshes = %d, want 0", refreshes.Load())
	}
	if !expired.Load() {
		t.Error("OnSessionExpired not called")
	}
}

func TestClient_AuthEndpointsNeverRefresh(t *testing.T) {
	var refreshes atomic.Int32
	srv := refreshServer(t, &refreshes, true)
	defer srv.Close()

	tokens := &memTokens{access: "stale", refresh: "r1"}
	c := newTestClient(srv, tokens)

	err := c.PostForm(context.Background(), "/auth/login", url.Values{"username": {"x"}}, nil)
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
	if Detail(err) != "Credenziali non valide" {
		t.Errorf("Detail = %q", Detail(err))
	}
	if refreshes.Load() != 0 {
		t.Errorf("refreshes = %d, want 0", refreshes.Load())
	}
	if tokens.AccessToken() != "stale" {
		t.Error("login failure must not touch stored tokens")
	}
}

func TestClient_ConcurrentRefreshCoalesced(t *testing.T) {
	var refreshes atomic.Int32
	srv := refreshServer(t, &refreshes, true)
	defer srv.Close()

	tokens := &memTokens{access: "stale", refresh: "r1"}
	c := newTestClient(srv, tokens)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Get(context.Background(), "/patterns/", nil, nil)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Get: %v", err)
		}
	}
	if n := refreshes.Load(); n != 1 {
		t.Errorf("refreshes = %d, want 1", n)
	}
}

func TestClient_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(nil, Options{BaseURL: srv.URL, RateLimitRPS: 20, RateBurst: 1})
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := c.Get(context.Background(), "/x", nil, nil); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	// burst 1 at 20 rps: the 2nd and 3rd calls wait ~50ms each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("elapsed = %v, rate limiter not applied", elapsed)
	}
}
