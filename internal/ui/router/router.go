// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Name identifies a screen.
type Name string

const (
	Home            Name = "home"
	Login           Name = "login"
	Register        Name = "register"
	ForgotPassword  Name = "forgot-password"
	PatternList     Name = "patterns"
	PatternDetail   Name = "pattern-detail"
	PatternCreate   Name = "pattern-create"
	PatternEdit     Name = "pattern-edit"
	Search          Name = "search"
	GdprList        Name = "gdpr"
	GdprDetail      Name = "gdpr-detail"
	PrivacyByDesign Name = "privacy-by-design"
	Newsletter      Name = "newsletter"
	About           Name = "about"
	Dashboard       Name = "dashboard"
	Chatbot         Name = "chatbot"
	Profile         Name = "profile"
	NotFound        Name = "not-found"
)

// Route is a path template. Segments starting with ":" are parameters.
type Route struct {
	Path      string
	Name      Name
	Protected bool
	Title     string
}

// Routes is the route table. Literal routes come before parameterised ones
// sharing a prefix so "/patterns/create" never matches ":id".
var Routes = []Route{
	{Path: "/", Name: Home, Title: "Home"},
	{Path: "/login", Name: Login, Title: "Accedi"},
	{Path: "/register", Name: Register, Title: "Registrati"},
	{Path: "/forgot-password", Name: ForgotPassword, Title: "Password dimenticata"},
	{Path: "/patterns", Name: PatternList, Title: "Pattern"},
	{Path: "/patterns/create", Name: PatternCreate, Protected: true, Title: "Nuovo pattern"},
	{Path: "/patterns/:id", Name: PatternDetail, Title: "Pattern"},
	{Path: "/patterns/:id/edit", Name: PatternEdit, Protected: true, Title: "Modifica pattern"},
	{Path: "/search", Name: Search, Title: "Ricerca"},
	{Path: "/gdpr", Name: GdprList, Title: "GDPR"},
	{Path: "/gdpr/:number", Name: GdprDetail, Title: "Articolo GDPR"},
	{Path: "/privacy-by-design", Name: PrivacyByDesign, Title: "Privacy by Design"},
	{Path: "/newsletter", Name: Newsletter, Title: "Newsletter"},
	{Path: "/about", Name: About, Title: "Chi siamo"},
	{Path: "/dashboard", Name: Dashboard, Protected: true, Title: "Dashboard"},
	{Path: "/chatbot", Name: Chatbot, Protected: true, Title: "Assistente"},
	{Path: "/profile", Name: Profile, Protected: true, Title: "Profilo"},
}

// Match is a resolved path.
type Match struct {
	Route
	// Requested is the normalised path that was resolved.
	Requested string
	Params    map[string]string
	Query     map[string]string
}

// Param returns a path parameter.
func (m Match) Param(name string) string {
	return m.Params[name]
}

// IntParam returns a numeric path parameter, or 0 when absent or invalid.
func (m Match) IntParam(name string) int {
	n, err := strconv.Atoi(m.Params[name])
	if err != nil {
		return 0
	}
	return n
}

// splitPath normalises p and separates its query string.
func splitPath(p string) (string, map[string]string) {
	p = strings.TrimSpace(p)
	var query map[string]string
	if i := strings.IndexByte(p, '?'); i >= 0 {
		if values, err := url.ParseQuery(p[i+1:]); err == nil && len(values) > 0 {
			query = make(map[string]string, len(values))
			for k := range values {
				query[k] = values.Get(k)
			}
		}
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p, query
}

func segments(p string) []string {
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// Resolve matches p against the route table. Unknown paths resolve to
// NotFound.
func Resolve(p string) Match {
	clean, query := splitPath(p)
	parts := segments(clean)

	for _, r := range Routes {
		tmpl := segments(r.Path)
		if len(tmpl) != len(parts) {
			continue
		}
		var params map[string]string
		ok := true
		for i, seg := range tmpl {
			if strings.HasPrefix(seg, ":") {
				if parts[i] == "" {
					ok = false
					break
				}
				if params == nil {
					params = make(map[string]string)
				}
				params[seg[1:]] = parts[i]
				continue
			}
			if seg != parts[i] {
				ok = false
				break
			}
		}
		if ok {
			return Match{Route: r, Requested: clean, Params: params, Query: query}
		}
	}
	return Match{
		Route:     Route{Path: clean, Name: NotFound, Title: "Pagina non trovata"},
		Requested: clean,
		Query:     query,
	}
}

// Path builds a concrete path from a template: Path("/patterns/:id", 7).
func Path(template string, args ...any) string {
	parts := segments(template)
	i := 0
	for j, seg := range parts {
		if strings.HasPrefix(seg, ":") && i < len(args) {
			switch v := args[i].(type) {
			case int:
				parts[j] = strconv.Itoa(v)
			case string:
				parts[j] = v
			}
			i++
		}
	}
	return "/" + strings.Join(parts, "/")
}

// =============================================================================
// ROUTER
// =============================================================================

// Router tracks the current location, back history and the path to
// return to after login.
type Router struct {
	mu       sync.Mutex
	current  Match
	history  []Match
	redirect string
}

// maxHistory bounds the back stack.
const maxHistory = 50

// New creates a Router at "/".
func New() *Router {
	return &Router{current: Resolve("/")}
}

// Current returns the current location.
func (r *Router) Current() Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Guard applies the protection rule to m. Protected routes resolve to
// Login while signed out; an authenticated user asking for Login or
// Register lands on Home.
func Guard(m Match, authenticated bool) (Match, bool) {
	switch {
	case m.Protected && !authenticated:
		login := Resolve("/login")
		return login, true
	case authenticated && (m.Name == Login || m.Name == Register):
		return Resolve("/"), true
	}
	return m, false
}

// Navigate resolves p, applies the guard and moves there. The returned match
// is where the user actually landed.
func (r *Router) Navigate(p string, authenticated bool) Match {
	m := Resolve(p)
	target, redirected := Guard(m, authenticated)

	r.mu.Lock()
	defer r.mu.Unlock()
	if redirected && target.Name == Login {
		r.redirect = m.Requested
	}
	if r.current.Requested != target.Requested {
		r.history = append(r.history, r.current)
		if len(r.history) > maxHistory {
			r.history = r.history[len(r.history)-maxHistory:]
		}
	}
	r.current = target
	return target
}

// Back returns to the previous location, if any.
func (r *Router) Back() (Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return r.current, false
	}
	r.current = r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	return r.current, true
}

// CanGoBack reports whether Back would move.
func (r *Router) CanGoBack() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history) > 0
}

// PendingRedirect returns the path remembered by the guard.
func (r *Router) PendingRedirect() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirect
}

// AfterLogin returns the remembered path (or "/") and forgets it.
func (r *Router) AfterLogin() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.redirect
	r.redirect = ""
	if p == "" || p == "/login" {
		return "/"
	}
	return p
}

// SessionExpired moves to /login remembering the current protected path.
func (r *Router) SessionExpired() Match {
	r.mu.Lock()
	cur := r.current
	r.mu.Unlock()
	if cur.Protected {
		r.mu.Lock()
		r.redirect = cur.Requested
		r.mu.Unlock()
	}
	return r.Navigate("/login", false)
}
