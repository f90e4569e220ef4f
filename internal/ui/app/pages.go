// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/ui/components"
	"github.com/jeranaias/compass-tui/internal/ui/styles"
)

// =============================================================================
// PRIVACY BY DESIGN
// =============================================================================

type pbdLoadedMsg struct {
	principles []model.PbdPrinciple
	phases     []model.IsoPhase
	vulns      []model.Vulnerability
	err        error
}

// strategyDescriptions are the one-line summaries of the eight strategies.
var strategyDescriptions = map[model.Strategy]string{
	model.StrategyMinimize:    "Limitare il trattamento ai dati strettamente necessari.",
	model.StrategyHide:        "Proteggere i dati personali da accessi e osservazioni.",
	model.StrategySeparate:    "Trattare i dati in compartimenti distinti.",
	model.StrategyAggregate:   "Trattare i dati al livello di aggregazione più alto possibile.",
	model.StrategyInform:      "Informare gli interessati sul trattamento.",
	model.StrategyControl:     "Dare agli interessati il controllo sui propri dati.",
	model.StrategyEnforce:     "Applicare una policy di privacy compatibile con la legge.",
	model.StrategyDemonstrate: "Dimostrare la conformità alla policy e alla legge.",
}

type pbdScreen struct {
	base
	msg     pbdLoadedMsg
	loading bool
	vp      viewport.Model
}

func newPbdScreen(e *env) *pbdScreen {
	return &pbdScreen{base: base{env: e}, loading: true, vp: viewport.New(80, 20)}
}

func (s *pbdScreen) Init() tea.Cmd {
	ctx, ref := s.env.ctx(), s.env.Reference
	return func() tea.Msg {
		var msg pbdLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) { msg.principles, err = ref.PbdPrinciples(gctx); return })
		g.Go(func() (err error) { msg.phases, err = ref.IsoPhases(gctx); return })
		g.Go(func() (err error) { msg.vulns, err = ref.Vulnerabilities(gctx); return })
		msg.err = g.Wait()
		return msg
	}
}

func (s *pbdScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.vp.Width, s.vp.Height = width, height-1
	s.refresh()
}

func (s *pbdScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if m, ok := msg.(pbdLoadedMsg); ok {
		s.loading = false
		s.msg = m
		s.refresh()
		return s, errorToast(m.err)
	}
	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return s, cmd
}

func (s *pbdScreen) refresh() {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Privacy by Design"))
	b.WriteString("\n")
	b.WriteString(t.Body.Render("La privacy integrata fin dalla progettazione: strategie, principi e fasi del ciclo di vita."))
	b.WriteString("\n\n")

	b.WriteString(t.SectionTitle.Render("Le otto strategie"))
	b.WriteString("\n")
	for _, st := range model.Strategies {
		b.WriteString(t.StrategyTag(st) + " " + strategyDescriptions[st] + "\n")
	}
	b.WriteString("\n")

	if len(s.msg.principles) > 0 {
		b.WriteString(t.SectionTitle.Render("Principi"))
		b.WriteString("\n")
		for i, p := range s.msg.principles {
			fmt.Fprintf(&b, "%d. %s\n", i+1, t.CardTitle.Render(p.Name))
			if p.Description != "" {
				b.WriteString("   " + t.Muted.Render(p.Description) + "\n")
			}
		}
		b.WriteString("\n")
	}
	if len(s.msg.phases) > 0 {
		b.WriteString(t.SectionTitle.Render("Fasi ISO"))
		b.WriteString("\n")
		for _, p := range s.msg.phases {
			line := "- " + p.Name
			if p.Standard != "" {
				line += " " + t.Muted.Render("("+p.Standard+")")
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}
	if len(s.msg.vulns) > 0 {
		b.WriteString(t.SectionTitle.Render("Vulnerabilità"))
		b.WriteString("\n")
		for _, v := range s.msg.vulns {
			sev := t.Tag.Foreground(styles.SeverityColor(v.Severity)).Render(v.Severity)
			b.WriteString("- " + v.Name + " " + sev + "\n")
		}
	}
	if s.loading {
		b.WriteString(t.LoadingText.Render("Caricamento..."))
	}
	s.vp.SetContent(b.String())
}

func (s *pbdScreen) View() string { return s.vp.View() }

// =============================================================================
// ABOUT
// =============================================================================

type aboutScreen struct {
	base
}

func newAboutScreen(e *env) *aboutScreen { return &aboutScreen{base: base{env: e}} }

func (s *aboutScreen) Init() tea.Cmd { return nil }

func (s *aboutScreen) Update(tea.Msg) (Screen, tea.Cmd) { return s, nil }

const aboutText = `Compliance Compass raccoglie i **privacy pattern**: soluzioni ricorrenti a
problemi di protezione dei dati, descritte con contesto, problema, soluzione e
conseguenze.

Ogni pattern è collegato agli articoli del **GDPR**, ai principi di
**Privacy by Design**, alle fasi **ISO** e alle vulnerabilità che mitiga.

- Sfoglia e filtra il catalogo
- Cerca con suggerimenti in tempo reale
- Chiedi all'assistente
- Iscriviti alla newsletter`

func (s *aboutScreen) View() string {
	t := s.theme()
	out := t.Title.Render("Chi siamo") + "\n\n" + s.env.md.Render(aboutText)
	if s.env.Version != "" {
		out += "\n\n" + t.Muted.Render("Versione "+s.env.Version)
	}
	return out
}

// =============================================================================
// NOT FOUND
// =============================================================================

type notFoundScreen struct {
	base
	path string
}

func newNotFoundScreen(e *env, path string) *notFoundScreen {
	return &notFoundScreen{base: base{env: e}, path: path}
}

func (s *notFoundScreen) Init() tea.Cmd { return nil }

func (s *notFoundScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if keyString(msg) == "enter" {
		return s, navigate("/")
	}
	return s, nil
}

func (s *notFoundScreen) View() string {
	t := s.theme()
	return t.Title.Render("404") + "\n\n" +
		t.Body.Render("La pagina "+s.path+" non esiste.") + "\n\n" +
		t.Muted.Render("enter home · esc indietro")
}

// =============================================================================
// DASHBOARD
// =============================================================================

type statsMsg struct {
	stats model.PatternStats
	err   error
}

type dashboardScreen struct {
	base
	stats   model.PatternStats
	loading bool
	err     error
}

func newDashboardScreen(e *env) *dashboardScreen {
	return &dashboardScreen{base: base{env: e}, loading: true}
}

func (s *dashboardScreen) Init() tea.Cmd {
	ctx, store := s.env.ctx(), s.env.Patterns
	return func() tea.Msg {
		st, err := store.Stats(ctx)
		return statsMsg{stats: st, err: err}
	}
}

func (s *dashboardScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		s.loading = false
		s.stats, s.err = msg.stats, msg.err
		return s, errorToast(msg.err)
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			s.loading = true
			return s, s.Init()
		case "n":
			if s.env.Session.CanCreate() {
				return s, navigate("/patterns/create")
			}
		}
	}
	return s, nil
}

// barRows renders one bar per key, largest first.
func barRows(t *styles.Theme, counts map[string]int, total, width int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%-12s %s %d\n", k, t.Muted.Render(styles.RenderBar(width, counts[k], total)), counts[k])
	}
	return b.String()
}

func (s *dashboardScreen) View() string {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Dashboard"))
	b.WriteString("\n\n")

	if u := s.env.Session.CurrentUser(); u != nil {
		b.WriteString(t.SectionTitle.Render("Account"))
		b.WriteString("\n")
		b.WriteString(t.Label.Render("Utente: ") + u.DisplayName() + " (" + u.Username + ")\n")
		b.WriteString(t.Label.Render("Email: ") + u.Email + "\n")
		b.WriteString(t.Label.Render("Ruolo: ") + u.Role.DisplayName() + "\n")
		b.WriteString(t.Label.Render("Ultimo accesso: ") + u.LastLogin.Display() + "\n\n")
	}

	switch {
	case s.loading:
		b.WriteString(t.LoadingText.Render("Caricamento statistiche..."))
	case s.err != nil:
		b.WriteString(t.FieldError.Render("Statistiche non disponibili. Premi r per riprovare."))
	default:
		barWidth := min(40, max(10, s.width-24))
		fmt.Fprintf(&b, "%s %d\n\n", t.SectionTitle.Render("Pattern totali:"), s.stats.Total)
		b.WriteString(t.SectionTitle.Render("Per strategia"))
		b.WriteString("\n")
		b.WriteString(barRows(t, s.stats.Strategies, s.stats.Total, barWidth))
		b.WriteString("\n")
		b.WriteString(t.SectionTitle.Render("Per componente MVC"))
		b.WriteString("\n")
		b.WriteString(barRows(t, s.stats.MVCComponents, s.stats.Total, barWidth))
	}
	b.WriteString("\n")
	hints := "r aggiorna · p profilo · 2 pattern"
	if s.env.Session.CanCreate() {
		hints += " · n nuovo pattern"
	}
	b.WriteString(t.Muted.Render(hints))
	return b.String()
}

// =============================================================================
// PROFILE
// =============================================================================

type profileSavedMsg struct {
	user *model.User
	err  error
}

type passwordChangedMsg struct {
	message string
	err     error
}

type profileScreen struct {
	base
	profile  *form
	password *form
	// changing shows the password form.
	changing bool
	busy     bool
}

func newProfileScreen(e *env) *profileScreen {
	s := &profileScreen{
		base: base{env: e},
		profile: newForm().
			addText("full_name", "Nome completo", "", 100).
			addText("email", "Email", "", 254).
			addArea("bio", "Bio", "Qualcosa su di te").
			addText("avatar_url", "Avatar URL", "https://...", 500),
		password: newForm().
			addPassword("current_password", "Password attuale").
			addPassword("new_password", "Nuova password").
			addPassword("confirm_password", "Conferma nuova password"),
	}
	if u := e.Session.CurrentUser(); u != nil {
		s.profile.SetValue("full_name", u.FullName)
		s.profile.SetValue("email", u.Email)
		s.profile.SetValue("bio", u.Bio)
		s.profile.SetValue("avatar_url", u.AvatarURL)
	}
	return s
}

func (s *profileScreen) active() *form {
	if s.changing {
		return s.password
	}
	return s.profile
}

func (s *profileScreen) Init() tea.Cmd { return s.active().init() }

func (s *profileScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.profile.SetWidth(min(width-4, 70))
	s.password.SetWidth(min(width-4, 70))
}

func (s *profileScreen) CapturesInput() bool { return true }

func (s *profileScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileSavedMsg:
		s.busy = false
		if msg.err != nil {
			if fields := fieldErrorsOf(msg.err); len(fields) > 0 {
				return s, s.profile.SetErrors(fields)
			}
			return s, errorToast(msg.err)
		}
		return s, toast(components.ToastKindSuccess, "Profilo aggiornato")

	case passwordChangedMsg:
		s.busy = false
		if msg.err != nil {
			if fields := fieldErrorsOf(msg.err); len(fields) > 0 {
				return s, s.password.SetErrors(fields)
			}
			return s, errorToast(msg.err)
		}
		for _, k := range []string{"current_password", "new_password", "confirm_password"} {
			s.password.SetValue(k, "")
		}
		text := msg.message
		if text == "" {
			text = "Password aggiornata"
		}
		return s, toast(components.ToastKindSuccess, text)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, back
		case "ctrl+t":
			s.changing = !s.changing
			return s, s.active().init()
		}
		if s.busy {
			return s, nil
		}
	}

	cmd, submit := s.active().Update(msg)
	if !submit {
		return s, cmd
	}
	s.busy = true
	s.active().ClearErrors()
	ctx, mgr := s.env.ctx(), s.env.Session
	if s.changing {
		in := model.PasswordChange{
			CurrentPassword: s.password.Value("current_password"),
			NewPassword:     s.password.Value("new_password"),
			ConfirmPassword: s.password.Value("confirm_password"),
		}
		return s, func() tea.Msg {
			text, err := mgr.ChangePassword(ctx, in)
			return passwordChangedMsg{message: text, err: err}
		}
	}
	in := model.ProfileUpdate{
		FullName:  s.profile.Value("full_name"),
		Email:     s.profile.Value("email"),
		Bio:       s.profile.Value("bio"),
		AvatarURL: s.profile.Value("avatar_url"),
	}
	return s, func() tea.Msg {
		u, err := mgr.UpdateProfile(ctx, in)
		return profileSavedMsg{user: u, err: err}
	}
}

func (s *profileScreen) View() string {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Profilo"))
	b.WriteString("\n")
	if u := s.env.Session.CurrentUser(); u != nil {
		b.WriteString(t.Muted.Render(u.Username + " · " + u.Role.DisplayName() + " · registrato il " + u.CreatedAt.Display()))
	}
	b.WriteString("\n\n")
	if s.changing {
		b.WriteString(t.SectionTitle.Render("Cambia password"))
	} else {
		b.WriteString(t.SectionTitle.Render("Dati personali"))
	}
	b.WriteString("\n")
	b.WriteString(s.active().ViewHeight(t, s.height-7))
	b.WriteString("\n\n")
	switch {
	case s.busy:
		b.WriteString(t.LoadingText.Render("Salvataggio..."))
	case s.changing:
		b.WriteString(t.Muted.Render("enter conferma · ctrl+t dati personali · esc indietro"))
	default:
		b.WriteString(t.Muted.Render("ctrl+s salva · ctrl+t cambia password · esc indietro"))
	}
	return b.String()
}
