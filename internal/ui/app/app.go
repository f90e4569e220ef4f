// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/compass-tui/internal/config"
	"github.com/jeranaias/compass-tui/internal/markdown"
	"github.com/jeranaias/compass-tui/internal/session"
	"github.com/jeranaias/compass-tui/internal/ui/components"
	"github.com/jeranaias/compass-tui/internal/ui/router"
	"github.com/jeranaias/compass-tui/internal/ui/styles"
)

// Screen is one routed page.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
	// CapturesInput reports whether printable keys belong to the screen
	// (a focused input or an open modal).
	CapturesInput() bool
}

const (
	brand        = "Compliance Compass"
	sidebarWidth = 24
	headerHeight = 2
	footerHeight = 1
)

// navEntry is one sidebar row.
type navEntry struct {
	key   string
	label string
	path  string
	// auth marks entries shown only when signed in.
	auth bool
	// create marks entries shown only to roles that may author patterns.
	create bool
}

var navEntries = []navEntry{
	{key: "1", label: "Home", path: "/"},
	{key: "2", label: "Pattern", path: "/patterns"},
	{key: "3", label: "Ricerca", path: "/search"},
	{key: "4", label: "GDPR", path: "/gdpr"},
	{key: "5", label: "Assistente", path: "/chatbot", auth: true},
	{key: "6", label: "Newsletter", path: "/newsletter"},
	{key: "7", label: "Privacy by Design", path: "/privacy-by-design"},
	{key: "8", label: "Chi siamo", path: "/about"},
	{key: "d", label: "Dashboard", path: "/dashboard", auth: true},
	{key: "p", label: "Profilo", path: "/profile", auth: true},
	{key: "n", label: "Nuovo pattern", path: "/patterns/create", create: true},
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root tea.Model.
type Model struct {
	env      *env
	router   *router.Router
	screen   Screen
	toasts   *components.ToastManager
	watcher  *session.ExpiryWatcher
	keys     KeyMap
	showHelp bool
	wrap     int // caps the markdown width (ui.word_wrap)
	width    int
	height   int
}

// New builds the root model. Deps.Session and the other components must be
// set; Ctx, Log and Config fall back to defaults.
func New(deps Deps) *Model {
	m := &Model{
		env:     &env{Deps: deps},
		router:  router.New(),
		toasts:  components.NewToastManager(),
		watcher: session.NewExpiryWatcher(deps.Session, session.DefaultWarnBefore),
		keys:    DefaultKeyMap(),
	}
	m.applyUI(deps.Config)
	start := deps.StartPath
	if start == "" {
		start = "/"
	}
	m.open(m.router.Navigate(start, m.authenticated()))
	return m
}

// applyUI builds the theme and markdown renderer from the ui section of
// cfg and re-lays out the current screen. A nil cfg means defaults.
func (m *Model) applyUI(cfg *config.Config) {
	mode, wrap, showHelp := "auto", 80, false
	if cfg != nil {
		mode = cfg.UI.Theme
		if cfg.UI.WordWrap > 0 {
			wrap = cfg.UI.WordWrap
		}
		showHelp = cfg.UI.ShowHelp
	}
	theme := styles.NewTheme(mode)
	theme.SetSize(m.width, m.height)
	style := markdown.StyleLight
	if theme.IsDark {
		style = markdown.StyleDark
	}
	m.env.theme = theme
	m.env.md = markdown.NewRenderer(wrap, style)
	m.wrap = wrap
	m.showHelp = showHelp
	m.layoutScreen()
}

func (m *Model) authenticated() bool {
	return m.env.Session != nil && m.env.Session.IsAuthenticated()
}

// Current returns the current route.
func (m *Model) Current() router.Match {
	return m.router.Current()
}

// open builds the screen for match without running its Init.
func (m *Model) open(match router.Match) {
	m.screen = newScreen(m.env, match)
	m.layoutScreen()
}

// navigate moves to path and returns the new screen's Init.
func (m *Model) navigate(path string) tea.Cmd {
	match := m.router.Navigate(path, m.authenticated())
	if match.Name == router.Login && router.Resolve(path).Protected {
		m.toasts.AddInfo("Accedi per continuare")
	}
	m.env.log().Debug("navigate", zap.String("path", path), zap.String("screen", string(match.Name)))
	m.open(match)
	return m.screen.Init()
}

func (m *Model) back() tea.Cmd {
	match, ok := m.router.Back()
	if !ok {
		return nil
	}
	// Re-check the guard: the previous page may need a session we no longer have.
	if guarded, redirected := router.Guard(match, m.authenticated()); redirected {
		return m.navigate(guarded.Requested)
	}
	m.open(match)
	return m.screen.Init()
}

// Init starts the screen, the toast loop, the expiry ticks and the expiry
// listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.screen.Init(),
		components.ToastTickCmd(),
		session.TickCmd(),
		waitExpired(m.env.ctx(), m.env.Expired),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.env.theme.SetSize(msg.Width, msg.Height)
		m.layoutScreen()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case NavigateMsg:
		return m, m.navigate(msg.Path)

	case BackMsg:
		return m, m.back()

	case loggedInMsg:
		user := m.env.Session.CurrentUser()
		m.toasts.AddSuccess("Benvenuto, " + user.DisplayName())
		return m, m.navigate(m.router.AfterLogin())

	case components.ToastMsg:
		m.toasts.Add(msg.Kind, msg.Message)
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	case session.TickMsg:
		return m, m.watcher.HandleTick()

	case session.ExpiryWarningMsg:
		m.toasts.AddWarning("La sessione scade tra " + session.FormatDuration(msg.Remaining))
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config == nil {
			return m, nil
		}
		m.env.Config = msg.Config
		m.applyUI(msg.Config)
		m.toasts.AddInfo("Configurazione ricaricata")
		return m, nil

	case sessionExpiredMsg:
		m.env.Session.HandleSessionExpired()
		m.toasts.AddWarning("Sessione scaduta. Accedi di nuovo.")
		m.open(m.router.SessionExpired())
		return m, tea.Batch(m.screen.Init(), waitExpired(m.env.ctx(), m.env.Expired))
	}

	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

// handleKey processes the global keys. Keys not handled here go to the
// screen.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return tea.Quit, true
	}
	if m.screen.CapturesInput() {
		return nil, false
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.Back):
		return m.back(), true
	case key.Matches(msg, m.keys.Search):
		return m.navigate("/search"), true
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layoutScreen()
		return nil, true
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.DismissNewest()
		return nil, true
	case key.Matches(msg, m.keys.Account):
		if m.authenticated() {
			m.env.Session.Logout()
			m.toasts.AddInfo("Disconnesso")
			return m.navigate("/"), true
		}
		return m.navigate("/login"), true
	}
	// "n" belongs to the screens that offer creation.
	for _, e := range navEntries {
		if e.key == msg.String() && !e.create {
			return m.navigate(e.path), true
		}
	}
	return nil, false
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) showSidebar() bool {
	return m.width > 0 && m.env.theme.GetLayoutMode() != styles.LayoutNarrow
}

// layoutScreen hands the content area to the screen.
func (m *Model) layoutScreen() {
	if m.screen == nil || m.width == 0 {
		return
	}
	w := m.width - 2
	if m.showSidebar() {
		w -= sidebarWidth + 1
	}
	h := m.height - headerHeight - footerHeight
	if m.showHelp {
		h--
	}
	if h < 3 {
		h = 3
	}
	m.env.width, m.env.height = w, h
	mdWidth := w - 4
	if m.wrap > 0 && mdWidth > m.wrap {
		mdWidth = m.wrap
	}
	m.env.md.SetWidth(mdWidth)
	m.screen.SetSize(w, h)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "Caricamento..."
	}
	t := m.env.theme

	body := m.screen.View()
	if stack := components.RenderToastStack(t, m.toasts.Toasts(), min(50, m.env.width)); stack != "" {
		body = lipgloss.JoinVertical(lipgloss.Right,
			lipgloss.PlaceHorizontal(m.env.width, lipgloss.Right, stack),
			body,
		)
	}
	body = fitHeight(body, m.env.height)

	if m.showSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), " ", body)
	}

	rows := []string{m.headerView(), body}
	if m.showHelp {
		rows = append(rows, m.helpView())
	}
	rows = append(rows, m.footerView())
	return t.App.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) headerView() string {
	t := m.env.theme
	left := t.HeaderBrand.Render(brand) + "  " + t.Subtitle.Render(m.router.Current().Title)
	right := t.Muted.Render("L accedi")
	if u := m.env.Session.CurrentUser(); u != nil {
		right = t.HeaderUser.Render(u.DisplayName() + " · " + u.Role.DisplayName())
	}
	gap := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return t.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) sidebarView() string {
	t := m.env.theme
	current := m.router.Current().Requested
	rows := make([]string, 0, len(navEntries))
	for _, e := range navEntries {
		if e.auth && !m.authenticated() {
			continue
		}
		if e.create && !m.env.Session.CanCreate() {
			continue
		}
		style := t.NavItem
		if current == e.path {
			style = t.NavActive
		}
		rows = append(rows, style.Render(t.ShortcutKey.Render(e.key)+" "+e.label))
	}
	return t.Sidebar.Width(sidebarWidth).Height(m.env.height).Render(strings.Join(rows, "\n"))
}

func (m *Model) helpView() string {
	t := m.env.theme
	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, t.ShortcutKey.Render(h.Key)+" "+t.ShortcutDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) footerView() string {
	t := m.env.theme
	text := "6 newsletter · " + time.Now().Format("2006") + " Compliance Compass"
	if m.env.Version != "" {
		text += " " + m.env.Version
	}
	return t.Footer.Width(m.width).Render(text)
}

// fitHeight pads or truncates s to exactly h lines.
func fitHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
