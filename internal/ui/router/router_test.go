// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		path   string
		want   Name
		params map[string]string
	}{
		{"/", Home, nil},
		{"", Home, nil},
		{"/patterns", PatternList, nil},
		{"/patterns/", PatternList, nil},
		{"/patterns/create", PatternCreate, nil},
		{"/patterns/12", PatternDetail, map[string]string{"id": "12"}},
		{"/patterns/12/edit", PatternEdit, map[string]string{"id": "12"}},
		{"/gdpr/25", GdprDetail, map[string]string{"number": "25"}},
		{"search", Search, nil},
		{"/chatbot", Chatbot, nil},
		{"/nowhere", NotFound, nil},
		{"/patterns/1/2/3", NotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m := Resolve(tt.path)
			if m.Name != tt.want {
				t.Fatalf("Resolve(%q) = %s, want %s", tt.path, m.Name, tt.want)
			}
			for k, v := range tt.params {
				if m.Param(k) != v {
					t.Errorf("param %s = %q, want %q", k, m.Param(k), v)
				}
			}
		})
	}
}

func TestResolveQuery(t *testing.T) {
	m := Resolve("/newsletter?email=anna%40example.it&token=verify-1")
	if m.Name != Newsletter {
		t.Fatalf("name = %s", m.Name)
	}
	if m.Query["email"] != "anna@example.it" || m.Query["token"] != "verify-1" {
		t.Errorf("query = %v", m.Query)
	}
}

func TestIntParam(t *testing.T) {
	if got := Resolve("/patterns/42").IntParam("id"); got != 42 {
		t.Errorf("IntParam = %d, want 42", got)
	}
	if got := Resolve("/patterns/abc").IntParam("id"); got != 0 {
		t.Errorf("IntParam(abc) = %d, want 0", got)
	}
}

func TestProtectedRoutes(t *testing.T) {
	protected := map[Name]bool{
		Dashboard: true, PatternCreate: true, PatternEdit: true, Chatbot: true, Profile: true,
	}
	for _, r := range Routes {
		if r.Protected != protected[r.Name] {
			t.Errorf("%s protected = %v, want %v", r.Path, r.Protected, protected[r.Name])
		}
	}
}

func TestGuardRedirectsAndReturns(t *testing.T) {
	r := New()

	m := r.Navigate("/patterns/3/edit", false)
	if m.Name != Login {
		t.Fatalf("landed on %s, want login", m.Name)
	}
	if r.PendingRedirect() != "/patterns/3/edit" {
		t.Errorf("PendingRedirect = %q", r.PendingRedirect())
	}

	next := r.AfterLogin()
	if next != "/patterns/3/edit" {
		t.Errorf("AfterLogin = %q", next)
	}
	if m := r.Navigate(next, true); m.Name != PatternEdit || m.IntParam("id") != 3 {
		t.Errorf("after login = %+v", m)
	}
	if r.AfterLogin() != "/" {
		t.Error("redirect not forgotten")
	}
}

func TestGuardAuthenticatedSkipsLogin(t *testing.T) {
	r := New()
	if m := r.Navigate("/login", true); m.Name != Home {
		t.Errorf("signed-in /login = %s, want home", m.Name)
	}
	if m := r.Navigate("/patterns", false); m.Name != PatternList {
		t.Errorf("public route = %s", m.Name)
	}
}

func TestBackHistory(t *testing.T) {
	r := New()
	if r.CanGoBack() {
		t.Error("fresh router can go back")
	}
	r.Navigate("/patterns", false)
	r.Navigate("/patterns/4", false)
	r.Navigate("/patterns/4", false) // same place, no history entry

	m, ok := r.Back()
	if !ok || m.Name != PatternList {
		t.Errorf("Back = %s, %v", m.Name, ok)
	}
	m, _ = r.Back()
	if m.Name != Home {
		t.Errorf("Back = %s, want home", m.Name)
	}
	if _, ok := r.Back(); ok {
		t.Error("Back past the start")
	}
}

func TestSessionExpiredRemembersProtectedPath(t *testing.T) {
	r := New()
	r.Navigate("/profile", true)
	if m := r.SessionExpired(); m.Name != Login {
		t.Fatalf("SessionExpired landed on %s", m.Name)
	}
	if r.AfterLogin() != "/profile" {
		t.Error("protected path not remembered")
	}

	r.Navigate("/patterns", false)
	r.SessionExpired()
	if got := r.AfterLogin(); got != "/" {
		t.Errorf("public path remembered: %q", got)
	}
}

func TestPath(t *testing.T) {
	if got := Path("/patterns/:id/edit", 9); got != "/patterns/9/edit" {
		t.Errorf("Path = %q", got)
	}
	if got := Path("/gdpr/:number", "32"); got != "/gdpr/32" {
		t.Errorf("Path = %q", got)
	}
	if got := Path("/"); got != "/" {
		t.Errorf("Path(/) = %q", got)
	}
}
