// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jeranaias/compass-tui/internal/model"
)

// jwtSecret signs fake access tokens.
var jwtSecret = []byte("apitest-secret")

// AccessTTL is the lifetime written into issued access tokens.
const AccessTTL = 30 * time.Minute

type account struct {
	user     model.User
	password string
}

type subscription struct {
	email      string
	token      string
	active     bool
	verified   bool
	subscribed time.Time
}

// ChatHandler computes the chatbot reply. Returning a status >= 400 makes
// the endpoint fail with that status.
type ChatHandler func(req model.ChatRequest) (model.ChatResponse, int)

// Server is the fake backend.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	accounts  map[string]*account // by email
	nextUser  int
	access    map[string]int // token -> user id
	refresh   map[string]int
	tokenSeq  int
	resetCode string

	patterns    map[int]*model.Pattern
	nextPattern int

	gdpr  []model.GdprArticle
	pbd   []model.PbdPrinciple
	iso   []model.IsoPhase
	vulns []model.Vulnerability

	subs map[string]*subscription

	chat     ChatHandler
	lastChat model.ChatRequest

	calls     map[string]int
	queries   map[string]url.Values
	failures  map[string]int
	delay     func(r *http.Request) time.Duration
	lastBody  map[string][]byte
	lastAuthz map[string]string
}

// New starts a fake backend and registers its shutdown with t.
func New(t testing.TB) *Server {
	s := &Server{
		accounts:    make(map[string]*account),
		access:      make(map[string]int),
		refresh:     make(map[string]int),
		patterns:    make(map[int]*model.Pattern),
		subs:        make(map[string]*subscription),
		calls:       make(map[string]int),
		queries:     make(map[string]url.Values),
		failures:    make(map[string]int),
		lastBody:    make(map[string][]byte),
		lastAuthz:   make(map[string]string),
		resetCode:   "reset-token",
		nextUser:    1,
		nextPattern: 1,
	}
	s.seedReference()
	s.Server = httptest.NewServer(s.routes())
	if t != nil {
		t.Cleanup(s.Close)
	}
	return s
}

// APIURL returns the base URL including the /api prefix.
func (s *Server) APIURL() string {
	return s.URL + "/api"
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, s.record)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/register", s.handleRegister)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/request-password-reset", s.handleRequestReset)
			r.Post("/reset-password", s.handleResetPassword)
			r.With(s.requireAuth).Get("/me", s.handleMe)
			r.With(s.requireAuth).Post("/change-password", s.handleChangePassword)
		})
		r.With(s.requireAuth).Put("/users/me", s.handleUpdateMe)

		r.Route("/patterns", func(r chi.Router) {
			r.Get("/", s.handleListPatterns)
			r.Get("/stats", s.handleStats)
			r.Get("/by-strategy/{strategy}", s.handleByStrategy)
			r.Get("/by-mvc/{component}", s.handleByMVC)
			r.Get("/related/{id}", s.handleRelated)
			r.Get("/{id}", s.handleGetPattern)
			r.With(s.requireAuth).Post("/", s.handleCreatePattern)
			r.With(s.requireAuth).Put("/{id}", s.handleUpdatePattern)
			r.With(s.requireAuth).Delete("/{id}", s.handleDeletePattern)
		})

		r.Route("/search", func(r chi.Router) {
			r.Get("/patterns", s.handleSearch)
			r.Get("/autocomplete", s.handleAutocomplete)
			r.Get("/trending", s.handleTrending)
		})

		r.Route("/chatbot", func(r chi.Router) {
			r.Post("/chat", s.handleChat)
			r.Get("/suggestions", s.handleChatSuggestions)
		})

		r.Get("/gdpr/articles", s.handleGdprList)
		r.Get("/gdpr/articles/{id}", s.handleGdprByID)
		r.Get("/gdpr/articles/number/{number}", s.handleGdprByNumber)
		r.Get("/pbd/principles", s.handlePbd)
		r.Get("/iso/phases", s.handleIso)
		r.Get("/vulnerabilities", s.handleVulns)

		r.Route("/newsletter", func(r chi.Router) {
			r.Post("/subscribe", s.handleSubscribe)
			r.Post("/verify", s.handleVerify)
			r.Get("/status", s.handleNewsletterStatus)
			r.Delete("/unsubscribe", s.handleUnsubscribe)
			r.Post("/unsubscribe", s.handleUnsubscribe)
		})
	})
	return r
}

// =============================================================================
// RECORDING AND FAULT INJECTION
// =============================================================================

func callKey(method, path string) string {
	return method + " " + path
}

// record counts calls, applies configured delays and forced failures.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := callKey(r.Method, r.URL.Path)

		var body []byte
		if r.Body != nil && r.Header.Get("Content-Type") == "application/json" {
			body = readAll(r)
		}

		s.mu.Lock()
		s.calls[key]++
		s.queries[key] = r.URL.Query()
		s.lastAuthz[key] = r.Header.Get("Authorization")
		if body != nil {
			s.lastBody[key] = body
		}
		status := s.failures[key]
		delay := s.delay
		s.mu.Unlock()

		if delay != nil {
			if d := delay(r); d > 0 {
				select {
				case <-time.After(d):
				case <-r.Context().Done():
					return
				}
			}
		}

		if status != 0 {
			writeDetail(w, status, "Errore simulato")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Calls returns how many times method+path was hit (path includes /api).
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[callKey(method, path)]
}

// TotalCalls returns the number of requests for any method on paths with
// the given prefix.
func (s *Server) TotalCalls(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, v := range s.calls {
		if _, p, _ := strings.Cut(k, " "); strings.HasPrefix(p, prefix) {
			n += v
		}
	}
	return n
}

// LastQuery returns the query string of the last method+path call.
func (s *Server) LastQuery(method, path string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[callKey(method, path)]
}

// LastBody returns the raw JSON body of the last method+path call.
func (s *Server) LastBody(method, path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody[callKey(method, path)]
}

// LastAuthorization returns the Authorization header of the last call.
func (s *Server) LastAuthorization(method, path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuthz[callKey(method, path)]
}

// Fail makes method+path answer with status until cleared with status 0.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, callKey(method, path))
		return
	}
	s.failures[callKey(method, path)] = status
}

// SetDelay installs a per-request latency function (nil disables).
func (s *Server) SetDelay(fn func(r *http.Request) time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = fn
}

// =============================================================================
// RESPONSES
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeFieldErrors mimics FastAPI's 422 payload.
func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	items := make([]map[string]any, 0, len(names))
	for _, name := range names {
		items = append(items, map[string]any{
			"loc":  []string{"body", name},
			"msg":  fields[name],
			"type": "value_error",
		})
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": items})
}

// formatResponse wraps data the way the backend's response formatter does.
func formatResponse(data any) map[string]any {
	return map[string]any{
		"status":    "success",
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}

func readAll(r *http.Request) []byte {
	data, _ := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// =============================================================================
// TOKENS
// =============================================================================

func (s *Server) signAccess(userID int, email string) string {
	s.tokenSeq++
	claims := jwt.MapClaims{
		"sub": email,
		"uid": userID,
		"jti": fmt.Sprintf("a%d", s.tokenSeq),
		"exp": time.Now().Add(AccessTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		panic(err)
	}
	return token
}

// issue creates a token pair for an account. Callers hold s.mu.
func (s *Server) issue(a *account) model.TokenPair {
	access := s.signAccess(a.user.ID, a.user.Email)
	s.tokenSeq++
	refresh := fmt.Sprintf("refresh-%d-%d", a.user.ID, s.tokenSeq)
	s.access[access] = a.user.ID
	s.refresh[refresh] = a.user.ID
	return model.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
}

// IssueTokens returns a valid token pair for email without a login call.
func (s *Server) IssueTokens(email string) model.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		panic("apitest: unknown user " + email)
	}
	return s.issue(a)
}

// ExpireAccessTokens invalidates every issued access token; refresh tokens
// keep working.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]int)
}

// RevokeRefreshTokens invalidates every issued refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]int)
}

// ResetCode returns the token accepted by /auth/reset-password.
func (s *Server) ResetCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetCode
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		s.mu.Lock()
		uid, valid := s.access[token]
		s.mu.Unlock()
		if !valid {
			writeDetail(w, http.StatusUnauthorized, "Token non valido o scaduto")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), uid)))
	})
}
