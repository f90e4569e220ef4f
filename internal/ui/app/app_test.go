// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/apitest"
	"github.com/jeranaias/compass-tui/internal/assistant"
	"github.com/jeranaias/compass-tui/internal/config"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/newsletter"
	"github.com/jeranaias/compass-tui/internal/patterns"
	"github.com/jeranaias/compass-tui/internal/reference"
	"github.com/jeranaias/compass-tui/internal/search"
	"github.com/jeranaias/compass-tui/internal/session"
	"github.com/jeranaias/compass-tui/internal/storage"
	"github.com/jeranaias/compass-tui/internal/ui/components"
	"github.com/jeranaias/compass-tui/internal/ui/router"
)

// =============================================================================
// HELPERS
// =============================================================================

func newTestDeps(t *testing.T) (Deps, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	tokens := storage.NewTokenStore(storage.NewMemory(), nil)
	client := api.New(tokens, api.Options{BaseURL: srv.APIURL(), Timeout: 2 * time.Second})
	mgr := session.NewManager(client, tokens, nil)
	client.SetSessionExpiredHook(mgr.HandleSessionExpired)
	return Deps{
		Ctx:        context.Background(),
		Session:    mgr,
		Patterns:   patterns.NewStore(client, nil),
		Search:     search.NewEngine(client, search.Options{MinChars: 3, Limit: 10, Debounce: 10 * time.Millisecond}, nil),
		Assistant:  assistant.NewSession(client, storage.NewMemory(), assistant.Options{SuggestionMinChars: 3, Debounce: 10 * time.Millisecond}, nil),
		Reference:  reference.NewService(client, nil),
		Newsletter: newsletter.NewService(client, nil),
	}, srv
}

func newTestModel(t *testing.T, start string) (*Model, *apitest.Server) {
	t.Helper()
	deps, srv := newTestDeps(t)
	deps.StartPath = start
	m := New(deps)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, srv
}

func signIn(t *testing.T, m *Model, srv *apitest.Server, role model.Role) {
	t.Helper()
	srv.AddUser("anna@example.com", "anna", "secret123", role)
	if res := m.env.Session.Login(context.Background(), "anna@example.com", "secret123"); !res.Success {
		t.Fatalf("Login failed: %s", res.Error)
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText feeds s one rune at a time.
func typeText(s Screen, text string) Screen {
	for _, r := range text {
		s, _ = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return s
}

// collect runs cmd and returns every message it yields, expanding batches.
// Messages of the given types are kept; everything else is dropped so timer
// commands never run.
func collect(cmd tea.Cmd, keep func(tea.Msg) bool) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c, keep)...)
		}
		return out
	}
	if msg != nil && keep(msg) {
		return []tea.Msg{msg}
	}
	return nil
}

// =============================================================================
// ROOT MODEL
// =============================================================================

func TestNewStartsAtHome(t *testing.T) {
	m, _ := newTestModel(t, "")
	if got := m.Current().Name; got != router.Home {
		t.Errorf("Current() = %v, want %v", got, router.Home)
	}
	if !strings.Contains(m.View(), "Compliance Compass") {
		t.Error("View() missing brand")
	}
}

func TestProtectedStartRedirectsAndReturnsAfterLogin(t *testing.T) {
	m, srv := newTestModel(t, "/dashboard")
	if got := m.Current().Name; got != router.Login {
		t.Fatalf("Current() = %v, want %v", got, router.Login)
	}

	signIn(t, m, srv, model.RoleViewer)
	m.Update(loggedInMsg{})
	if got := m.Current().Name; got != router.Dashboard {
		t.Errorf("after login Current() = %v, want %v", got, router.Dashboard)
	}
}

func TestGlobalKeysNavigateAndBack(t *testing.T) {
	m, _ := newTestModel(t, "/")

	m.Update(keyMsg("4"))
	if got := m.Current().Name; got != router.GdprList {
		t.Fatalf("after 4 Current() = %v, want %v", got, router.GdprList)
	}
	m.Update(keyMsg("8"))
	if got := m.Current().Name; got != router.About {
		t.Fatalf("after 8 Current() = %v, want %v", got, router.About)
	}
	m.Update(keyMsg("esc"))
	if got := m.Current().Name; got != router.GdprList {
		t.Errorf("after esc Current() = %v, want %v", got, router.GdprList)
	}
}

func TestGlobalKeysIgnoredWhileTyping(t *testing.T) {
	m, _ := newTestModel(t, "/login")
	m.Update(keyMsg("4"))
	if got := m.Current().Name; got != router.Login {
		t.Errorf("Current() = %v, want %v (key belongs to the form)", got, router.Login)
	}
}

func TestSessionExpiredReturnsToLogin(t *testing.T) {
	m, srv := newTestModel(t, "/")
	signIn(t, m, srv, model.RoleViewer)
	m.Update(NavigateMsg{Path: "/chatbot"})
	if got := m.Current().Name; got != router.Chatbot {
		t.Fatalf("Current() = %v, want %v", got, router.Chatbot)
	}

	// The client clears the stored tokens when the refresh is rejected,
	// then the hook reaches the model as sessionExpiredMsg.
	srv.ExpireAccessTokens()
	srv.RevokeRefreshTokens()
	if _, err := m.env.Session.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh succeeded with revoked tokens")
	}
	m.Update(sessionExpiredMsg{})
	if got := m.Current().Name; got != router.Login {
		t.Errorf("Current() = %v, want %v", got, router.Login)
	}
	if m.env.Session.IsAuthenticated() {
		t.Error("session still authenticated after expiry")
	}
	if got := m.router.PendingRedirect(); got != "/chatbot" {
		t.Errorf("PendingRedirect() = %q, want /chatbot", got)
	}
	if m.toasts.Len() == 0 {
		t.Error("expected an expiry toast")
	}
}

func TestLogoutKey(t *testing.T) {
	m, srv := newTestModel(t, "/")
	signIn(t, m, srv, model.RoleViewer)
	m.Update(NavigateMsg{Path: "/about"})

	m.Update(keyMsg("L"))
	if m.env.Session.IsAuthenticated() {
		t.Error("L did not log out")
	}
	if got := m.Current().Name; got != router.Home {
		t.Errorf("Current() = %v, want %v", got, router.Home)
	}
}

func TestToastMessages(t *testing.T) {
	m, _ := newTestModel(t, "/")
	m.Update(components.ToastMsg{Kind: components.ToastKindError, Message: "boom"})
	m.Update(components.ToastMsg{Kind: components.ToastKindError, Message: "boom"})
	if got := m.toasts.Len(); got != 1 {
		t.Errorf("toasts = %d, want 1 (duplicates merge)", got)
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("toast not rendered")
	}
	m.Update(keyMsg("x"))
	if got := m.toasts.Len(); got != 0 {
		t.Errorf("toasts after x = %d, want 0", got)
	}
}

func TestSidebarHidesCreateForViewers(t *testing.T) {
	m, srv := newTestModel(t, "/")
	if strings.Contains(m.View(), "Nuovo pattern") {
		t.Error("signed-out sidebar offers Nuovo pattern")
	}
	signIn(t, m, srv, model.RoleEditor)
	if !strings.Contains(m.View(), "Nuovo pattern") {
		t.Error("editor sidebar missing Nuovo pattern")
	}
}

// =============================================================================
// SCREENS
// =============================================================================

func newTestEnv(t *testing.T) (*env, *apitest.Server) {
	t.Helper()
	m, srv := newTestModel(t, "/")
	return m.env, srv
}

func TestLoginScreenFlow(t *testing.T) {
	e, srv := newTestEnv(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleEditor)

	var s Screen = newLoginScreen(e)
	s.Init()
	s = typeText(s, "anna@example.com")
	s, _ = s.Update(keyMsg("tab"))
	s = typeText(s, "secret123")
	s, cmd := s.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter on the last field did not submit")
	}
	msgs := collect(cmd, func(m tea.Msg) bool { _, ok := m.(loginResultMsg); return ok })
	if len(msgs) != 1 {
		t.Fatalf("got %d login results, want 1", len(msgs))
	}
	_, cmd = s.Update(msgs[0])
	done := collect(cmd, func(m tea.Msg) bool { _, ok := m.(loggedInMsg); return ok })
	if len(done) != 1 {
		t.Error("successful login did not emit loggedInMsg")
	}
	if !e.Session.IsAuthenticated() {
		t.Error("session not authenticated")
	}
}

func TestLoginScreenWrongPassword(t *testing.T) {
	e, srv := newTestEnv(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleEditor)

	ls := newLoginScreen(e)
	ls.Init()
	var s Screen = ls
	s = typeText(s, "anna@example.com")
	s, _ = s.Update(keyMsg("tab"))
	s = typeText(s, "nope")
	_, cmd := s.Update(keyMsg("enter"))
	for _, msg := range collect(cmd, func(m tea.Msg) bool { _, ok := m.(loginResultMsg); return ok }) {
		s.Update(msg)
	}
	if ls.banner != "Email o password non corrette" {
		t.Errorf("banner = %q", ls.banner)
	}
}

func TestPatternListLoadsAndPages(t *testing.T) {
	e, srv := newTestEnv(t)
	srv.SeedPatterns(12)

	s := newPatternListScreen(e)
	s.SetSize(100, 40)
	for _, msg := range collect(s.Init(), func(tea.Msg) bool { return true }) {
		s.Update(msg)
	}
	if got := len(s.page.Items); got != 10 {
		t.Fatalf("items = %d, want 10", got)
	}
	if got := s.pager.Summary(); got != "1–10 of 12" {
		t.Errorf("Summary() = %q", got)
	}

	_, cmd := s.Update(keyMsg("]"))
	var next []tea.Msg
	for _, msg := range collect(cmd, func(tea.Msg) bool { return true }) {
		_, c := s.Update(msg)
		next = append(next, collect(c, func(m tea.Msg) bool { _, ok := m.(pageLoadedMsg); return ok })...)
	}
	for _, msg := range next {
		s.Update(msg)
	}
	if s.page.Page != 2 || len(s.page.Items) != 2 {
		t.Errorf("page = %d with %d items, want 2 with 2", s.page.Page, len(s.page.Items))
	}
}

func TestPatternListServerErrorOffersRetry(t *testing.T) {
	e, srv := newTestEnv(t)
	srv.Fail("GET", "/api/patterns/", 503)

	s := newPatternListScreen(e)
	s.SetSize(100, 40)
	for _, msg := range collect(s.Init(), func(m tea.Msg) bool { _, ok := m.(pageLoadedMsg); return ok }) {
		s.Update(msg)
	}
	if s.err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(s.View(), "r per riprovare") {
		t.Error("View() does not offer a retry")
	}
}

func TestPatternFormValidationMakesNoRequest(t *testing.T) {
	e, srv := newTestEnv(t)
	s := newPatternFormScreen(e, 0)
	s.SetSize(100, 60)
	for _, msg := range collect(s.Init(), func(m tea.Msg) bool { _, ok := m.(patternFormLoadedMsg); return ok }) {
		s.Update(msg)
	}
	s.form.SetValue("title", "ab")
	_, cmd := s.Update(keyMsg("ctrl+s"))
	_ = cmd
	if s.form.Error("title") == "" {
		t.Error("short title accepted")
	}
	if s.form.Error("description") == "" {
		t.Error("empty description accepted")
	}
	if n := srv.Calls("POST", "/api/patterns/"); n != 0 {
		t.Errorf("POST /patterns/ calls = %d, want 0", n)
	}
}

func TestPatternFormUnknownGdprNumber(t *testing.T) {
	e, _ := newTestEnv(t)
	s := newPatternFormScreen(e, 0)
	for _, msg := range collect(s.Init(), func(m tea.Msg) bool { _, ok := m.(patternFormLoadedMsg); return ok }) {
		s.Update(msg)
	}
	ids, err := s.gdprIDs("5, 999")
	if err == nil {
		t.Fatalf("gdprIDs = %v, want error", ids)
	}
	ids, err = s.gdprIDs("5, 32")
	if err != nil || len(ids) != 2 {
		t.Errorf("gdprIDs = %v, %v", ids, err)
	}
}

func TestNewsletterVerifyFromLink(t *testing.T) {
	e, srv := newTestEnv(t)
	if _, err := e.Newsletter.Subscribe(context.Background(), "luca@example.com"); err != nil {
		t.Fatal(err)
	}
	token := srv.VerificationToken("luca@example.com")

	s := newNewsletterScreen(e, "luca@example.com", token, "")
	for _, msg := range collect(s.Init(), func(tea.Msg) bool { return true }) {
		s.Update(msg)
	}
	if !s.ok {
		t.Errorf("verification failed: %q", s.notice)
	}
}

func TestNewsletterVerifyMissingToken(t *testing.T) {
	e, srv := newTestEnv(t)
	s := newNewsletterScreen(e, "luca@example.com", "", "verify")
	for _, msg := range collect(s.Init(), func(tea.Msg) bool { return true }) {
		s.Update(msg)
	}
	if s.ok || s.notice != newsletter.InvalidLinkMessage {
		t.Errorf("notice = %q, want %q", s.notice, newsletter.InvalidLinkMessage)
	}
	if n := srv.TotalCalls("/api/newsletter"); n != 0 {
		t.Errorf("newsletter calls = %d, want 0", n)
	}
}

func TestGdprListFilters(t *testing.T) {
	e, _ := newTestEnv(t)
	s := newGdprListScreen(e)
	s.SetSize(100, 40)
	for _, msg := range collect(s.Init(), func(tea.Msg) bool { return true }) {
		s.Update(msg)
	}
	if got := len(s.shown); got != 3 {
		t.Fatalf("shown = %d, want 3", got)
	}
	s.Update(keyMsg("c"))
	if got := len(s.shown); got != 1 {
		t.Errorf("after category shown = %d, want 1", got)
	}
}

func TestChatSendShowsReply(t *testing.T) {
	e, _ := newTestEnv(t)
	s := newChatScreen(e)
	s.SetSize(100, 40)
	s.Init()
	var sc Screen = typeText(s, "cos'è la minimizzazione?")
	_, cmd := sc.Update(keyMsg("enter"))
	if got := e.Assistant.Len(); got != 2 {
		t.Fatalf("transcript = %d entries, want 2 (welcome, user)", got)
	}
	for _, msg := range collect(cmd, func(m tea.Msg) bool { _, ok := m.(chatReplyMsg); return ok }) {
		sc.Update(msg)
	}
	if e.Assistant.Waiting() {
		t.Error("still waiting after reply")
	}
	if got := e.Assistant.Len(); got != 3 {
		t.Errorf("transcript = %d entries, want 3", got)
	}
}

func TestFormNavigation(t *testing.T) {
	f := newForm().
		addText("a", "A", "", 10).
		addChoice("b", "B", []string{"x", "y"}).
		addText("c", "C", "", 10)
	f.init()

	f.Update(keyMsg("tab"))
	f.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := f.Value("b"); got != "y" {
		t.Errorf("choice = %q, want y", got)
	}
	f.Update(keyMsg("tab"))
	if _, submit := f.Update(keyMsg("enter")); !submit {
		t.Error("enter on the last field should submit")
	}

	f.SetErrors(map[string]string{"c": "bad"})
	if f.focus != 2 {
		t.Errorf("focus = %d, want 2 (first field in error)", f.focus)
	}
	f.Update(keyMsg("z"))
	if f.Error("c") != "" {
		t.Error("typing should clear the field error")
	}
}

func TestFormScreensSurviveResize(t *testing.T) {
	for _, path := range []string{"/login", "/register", "/forgot-password", "/patterns/create", "/profile"} {
		t.Run(path, func(t *testing.T) {
			deps, srv := newTestDeps(t)
			deps.StartPath = path
			m := New(deps)
			if path == "/patterns/create" || path == "/profile" {
				signIn(t, m, srv, model.RoleEditor)
				m.Update(NavigateMsg{Path: path})
			}
			m.Init()
			m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
			m.Update(tea.WindowSizeMsg{Width: 30, Height: 12})
			if m.View() == "" {
				t.Error("View() is empty")
			}
		})
	}
}

func TestConfigReloadAppliesUISettings(t *testing.T) {
	deps, _ := newTestDeps(t)
	cfg := config.Default()
	cfg.UI.Theme = "dark"
	cfg.UI.ShowHelp = false
	deps.Config = cfg
	m := New(deps)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if !m.env.theme.IsDark || m.showHelp {
		t.Fatalf("initial theme dark = %v, showHelp = %v", m.env.theme.IsDark, m.showHelp)
	}

	next := cfg.Clone()
	next.UI.Theme = "light"
	next.UI.ShowHelp = true
	next.UI.WordWrap = 60
	m.Update(ConfigReloadedMsg{Config: next})

	if m.env.theme.IsDark {
		t.Error("theme still dark after reload")
	}
	if !m.showHelp {
		t.Error("showHelp = false, want true")
	}
	if m.wrap != 60 {
		t.Errorf("wrap = %d, want 60", m.wrap)
	}
	if m.env.Config != next {
		t.Error("env.Config not replaced")
	}
	if m.env.theme.Width != 120 {
		t.Errorf("theme width = %d, want 120", m.env.theme.Width)
	}
	if m.toasts.Len() == 0 {
		t.Error("expected a reload toast")
	}

	// A nil config is ignored.
	m.Update(ConfigReloadedMsg{})
	if m.env.Config != next {
		t.Error("nil reload replaced the config")
	}
}
