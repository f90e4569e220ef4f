// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/newsletter"
	"github.com/jeranaias/compass-tui/internal/ui/components"
)

// =============================================================================
// NEWSLETTER
// =============================================================================

type newsletterTab int

const (
	tabSubscribe newsletterTab = iota
	tabManage
	tabVerify
)

type subscribedMsg struct {
	res model.NewsletterResult
	err error
}

type verifiedMsg struct {
	res model.NewsletterResult
	err error
}

// manageDoneMsg reports that a Manage transition finished.
type manageDoneMsg struct{}

// newsletterScreen covers subscribe, manage and the verification link.
type newsletterScreen struct {
	base
	tab       newsletterTab
	subscribe *form
	manage    *form
	mgr       *newsletter.Manage
	notice    string
	ok        bool
	busy      bool
	// verifyEmail/verifyToken come from the verification link.
	verifyEmail string
	verifyToken string
}

func newNewsletterScreen(e *env, email, token, action string) *newsletterScreen {
	s := &newsletterScreen{
		base:      base{env: e},
		subscribe: newForm().addText("email", "Email", "nome@esempio.it", 254),
		manage:    newForm().addText("email", "Email", "nome@esempio.it", 254),
		mgr:       newsletter.NewManage(e.Newsletter),
	}
	switch {
	case token != "" || action == "verify":
		s.tab = tabVerify
		s.verifyEmail, s.verifyToken = email, token
	case action == "manage" || action == "unsubscribe":
		s.tab = tabManage
		s.manage.SetValue("email", email)
	default:
		s.subscribe.SetValue("email", email)
	}
	if s.tab != tabVerify && email == "" {
		if u := e.Session.CurrentUser(); u != nil {
			s.subscribe.SetValue("email", u.Email)
			s.manage.SetValue("email", u.Email)
		}
	}
	return s
}

func (s *newsletterScreen) Init() tea.Cmd {
	switch s.tab {
	case tabVerify:
		s.busy = true
		ctx, svc, email, token := s.env.ctx(), s.env.Newsletter, s.verifyEmail, s.verifyToken
		return func() tea.Msg {
			res, err := svc.Verify(ctx, email, token)
			return verifiedMsg{res: res, err: err}
		}
	case tabManage:
		return s.manage.init()
	}
	return s.subscribe.init()
}

func (s *newsletterScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.subscribe.SetWidth(min(width-4, 60))
	s.manage.SetWidth(min(width-4, 60))
}

func (s *newsletterScreen) CapturesInput() bool {
	switch s.tab {
	case tabSubscribe:
		return true
	case tabManage:
		return s.mgr.State().ShowsForm()
	}
	return false
}

func (s *newsletterScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case subscribedMsg:
		s.busy = false
		s.notice = newsletter.SubscribeMessage(msg.res, msg.err)
		s.ok = msg.err == nil
		if fields := fieldErrorsOf(msg.err); len(fields) > 0 {
			s.notice = ""
			return s, s.subscribe.SetErrors(fields)
		}
		if s.ok {
			return s, toast(components.ToastKindSuccess, "Controlla la tua casella di posta")
		}
		return s, nil

	case verifiedMsg:
		s.busy = false
		s.notice = newsletter.VerifyMessage(msg.res, msg.err)
		s.ok = msg.err == nil
		return s, nil

	case manageDoneMsg:
		s.busy = false
		if fields := s.mgr.FieldErrors(); len(fields) > 0 {
			return s, s.manage.SetErrors(fields)
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, back
		case "ctrl+n":
			return s, s.switchTab()
		}
		if s.busy {
			return s, nil
		}
		if s.tab == tabManage {
			if cmd, handled := s.manageKey(msg.String()); handled {
				return s, cmd
			}
		}
	}

	switch s.tab {
	case tabSubscribe:
		cmd, submit := s.subscribe.Update(msg)
		if submit {
			return s, s.doSubscribe()
		}
		return s, cmd
	case tabManage:
		if !s.mgr.State().ShowsForm() {
			return s, nil
		}
		cmd, submit := s.manage.Update(msg)
		if submit {
			return s, s.doCheck()
		}
		return s, cmd
	}
	return s, nil
}

func (s *newsletterScreen) switchTab() tea.Cmd {
	s.notice, s.ok = "", false
	if s.tab == tabSubscribe {
		s.tab = tabManage
		s.mgr.Reset()
		return s.manage.init()
	}
	s.tab = tabSubscribe
	return s.subscribe.init()
}

// manageKey handles the confirmed/cancelled states of the manage flow.
func (s *newsletterScreen) manageKey(key string) (tea.Cmd, bool) {
	switch s.mgr.State() {
	case newsletter.StateConfirmed:
		switch key {
		case "u", "enter":
			s.busy = true
			ctx, mgr := s.env.ctx(), s.mgr
			return func() tea.Msg {
				mgr.Unsubscribe(ctx)
				return manageDoneMsg{}
			}, true
		case "b":
			s.mgr.Reset()
			return s.manage.init(), true
		}
		return nil, true
	case newsletter.StateCancelled:
		if key == "enter" || key == "b" {
			s.mgr.Reset()
			return s.manage.init(), true
		}
		return nil, true
	}
	return nil, false
}

func (s *newsletterScreen) doSubscribe() tea.Cmd {
	s.busy = true
	s.notice = ""
	s.subscribe.ClearErrors()
	ctx, svc, email := s.env.ctx(), s.env.Newsletter, s.subscribe.Value("email")
	return func() tea.Msg {
		res, err := svc.Subscribe(ctx, email)
		return subscribedMsg{res: res, err: err}
	}
}

func (s *newsletterScreen) doCheck() tea.Cmd {
	s.busy = true
	s.manage.ClearErrors()
	ctx, mgr, email := s.env.ctx(), s.mgr, s.manage.Value("email")
	return func() tea.Msg {
		mgr.Check(ctx, email)
		return manageDoneMsg{}
	}
}

func (s *newsletterScreen) View() string {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Newsletter"))
	b.WriteString("\n")

	switch s.tab {
	case tabVerify:
		b.WriteString(t.Subtitle.Render("Verifica iscrizione"))
		b.WriteString("\n\n")
		switch {
		case s.busy:
			b.WriteString(t.LoadingText.Render("Verifica in corso..."))
		case s.ok:
			b.WriteString(t.ToastSuccess.Render(s.notice))
		default:
			b.WriteString(t.ToastError.Render(s.notice))
		}
		b.WriteString("\n\n")
		b.WriteString(t.Muted.Render("esc indietro"))
		return b.String()

	case tabSubscribe:
		b.WriteString(t.Subtitle.Render("Iscriviti per ricevere aggiornamenti su privacy pattern e GDPR"))
		b.WriteString("\n\n")
		b.WriteString(s.subscribe.View(t))
		b.WriteString("\n\n")
		s.writeNotice(&b)
		b.WriteString(t.Muted.Render("enter iscriviti · ctrl+n gestisci iscrizione · esc indietro"))
		return b.String()
	}

	b.WriteString(t.Subtitle.Render("Gestisci iscrizione"))
	b.WriteString("\n\n")
	state := s.mgr.State()
	if state.ShowsForm() {
		b.WriteString(s.manage.View(t))
		b.WriteString("\n\n")
	}
	if msg := s.mgr.Message(); msg != "" {
		switch state {
		case newsletter.StateError, newsletter.StateNotFound:
			b.WriteString(t.ToastWarning.Render(msg))
		case newsletter.StateCancelled, newsletter.StateConfirmed:
			b.WriteString(t.ToastSuccess.Render(msg))
		default:
			b.WriteString(t.LoadingText.Render(msg))
		}
		b.WriteString("\n\n")
	}
	if info := s.mgr.Info(); info != nil && state == newsletter.StateConfirmed {
		b.WriteString(t.Label.Render("Email: ") + info.Email + "\n")
		b.WriteString(t.Label.Render("Iscritto dal: ") + info.SubscribedAt.Display() + "\n")
		status := "in attesa di verifica"
		if info.IsVerified {
			status = "verificata"
		}
		if !info.IsActive {
			status += ", non attiva"
		}
		b.WriteString(t.Label.Render("Stato: ") + status + "\n\n")
	}
	switch state {
	case newsletter.StateConfirmed:
		b.WriteString(t.Muted.Render("u cancella iscrizione · b un'altra email · ctrl+n iscriviti"))
	case newsletter.StateCancelled:
		b.WriteString(t.Muted.Render("enter controlla un'altra email · ctrl+n iscriviti"))
	default:
		b.WriteString(t.Muted.Render("enter verifica · ctrl+n iscriviti · esc indietro"))
	}
	return b.String()
}

func (s *newsletterScreen) writeNotice(b *strings.Builder) {
	t := s.theme()
	switch {
	case s.busy:
		b.WriteString(t.LoadingText.Render("Invio in corso..."))
	case s.notice == "":
		return
	case s.ok:
		b.WriteString(t.ToastSuccess.Render(s.notice))
	default:
		b.WriteString(t.ToastError.Render(s.notice))
	}
	b.WriteString("\n\n")
}
