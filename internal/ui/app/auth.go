// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/session"
	"github.com/jeranaias/compass-tui/internal/ui/components"
)

// =============================================================================
// LOGIN
// =============================================================================

type loginResultMsg struct {
	res session.LoginResult
}

type loginScreen struct {
	base
	form   *form
	banner string
	busy   bool
}

func newLoginScreen(e *env) *loginScreen {
	f := newForm().
		addText("email", "Email", "nome@esempio.it", 254).
		addPassword("password", "Password")
	return &loginScreen{base: base{env: e}, form: f}
}

func (s *loginScreen) Init() tea.Cmd { return s.form.init() }

func (s *loginScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.form.SetWidth(min(width-4, 60))
}

func (s *loginScreen) CapturesInput() bool { return true }

func (s *loginScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		s.busy = false
		if msg.res.Success {
			return s, func() tea.Msg { return loggedInMsg{} }
		}
		s.banner = msg.res.Error
		return s, s.form.SetErrors(fieldErrorsOf(msg.res.Err))
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, back
		case "ctrl+r":
			return s, navigate("/register")
		case "ctrl+p":
			return s, navigate("/forgot-password")
		}
		if s.busy {
			return s, nil
		}
	}
	cmd, submit := s.form.Update(msg)
	if submit {
		s.busy = true
		s.banner = ""
		s.form.ClearErrors()
		ctx, mgr := s.env.ctx(), s.env.Session
		email, password := s.form.Value("email"), s.form.Value("password")
		return s, func() tea.Msg { return loginResultMsg{res: mgr.Login(ctx, email, password)} }
	}
	return s, cmd
}

func (s *loginScreen) View() string {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Accedi"))
	b.WriteString("\n\n")
	if s.banner != "" {
		b.WriteString(t.ToastError.Render(s.banner))
		b.WriteString("\n\n")
	}
	b.WriteString(s.form.View(t))
	b.WriteString("\n\n")
	if s.busy {
		b.WriteString(t.LoadingText.Render("Accesso in corso..."))
	} else {
		b.WriteString(t.Muted.Render("enter accedi · ctrl+r registrati · ctrl+p password dimenticata · esc indietro"))
	}
	return b.String()
}

// =============================================================================
// REGISTER
// =============================================================================

type registerResultMsg struct {
	res session.RegisterResult
}

type registerScreen struct {
	base
	form   *form
	banner string
	busy   bool
}

func newRegisterScreen(e *env) *registerScreen {
	f := newForm().
		addText("email", "Email", "nome@esempio.it", 254).
		addText("username", "Nome utente", "almeno 3 caratteri", 50).
		addText("full_name", "Nome completo", "facoltativo", 100).
		addPassword("password", "Password").
		addPassword("confirm_password", "Conferma password")
	return &registerScreen{base: base{env: e}, form: f}
}

func (s *registerScreen) Init() tea.Cmd { return s.form.init() }

func (s *registerScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.form.SetWidth(min(width-4, 60))
}

func (s *registerScreen) CapturesInput() bool { return true }

func (s *registerScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case registerResultMsg:
		s.busy = false
		if msg.res.Success {
			return s, tea.Batch(
				toast(components.ToastKindSuccess, "Registrazione completata. Ora puoi accedere."),
				navigate("/login"),
			)
		}
		s.banner = msg.res.Error
		if len(msg.res.Fields) > 0 {
			s.banner = ""
		}
		return s, s.form.SetErrors(msg.res.Fields)
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, back
		case "ctrl+l":
			return s, navigate("/login")
		}
		if s.busy {
			return s, nil
		}
	}
	cmd, submit := s.form.Update(msg)
	if submit {
		return s, s.submit()
	}
	return s, cmd
}

func (s *registerScreen) submit() tea.Cmd {
	s.banner = ""
	if s.form.Value("password") != s.form.Value("confirm_password") {
		return s.form.SetErrors(map[string]string{"confirm_password": "Le password non coincidono"})
	}
	s.form.ClearErrors()
	s.busy = true
	in := model.RegisterInput{
		Email:    s.form.Value("email"),
		Username: s.form.Value("username"),
		Password: s.form.Value("password"),
		FullName: s.form.Value("full_name"),
	}
	ctx, mgr := s.env.ctx(), s.env.Session
	return func() tea.Msg { return registerResultMsg{res: mgr.Register(ctx, in)} }
}

func (s *registerScreen) View() string {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Registrati"))
	b.WriteString("\n\n")
	if s.banner != "" {
		b.WriteString(t.ToastError.Render(s.banner))
		b.WriteString("\n\n")
	}
	b.WriteString(s.form.ViewHeight(t, s.height-6))
	b.WriteString("\n\n")
	if s.busy {
		b.WriteString(t.LoadingText.Render("Registrazione in corso..."))
	} else {
		b.WriteString(t.Muted.Render("enter conferma · ctrl+l accedi · esc indietro"))
	}
	return b.String()
}

// =============================================================================
// FORGOT PASSWORD
// =============================================================================

type resetRequestedMsg struct {
	message string
	err     error
}

type resetDoneMsg struct {
	message string
	err     error
}

// forgotScreen requests a reset mail, then accepts the mailed token.
type forgotScreen struct {
	base
	request *form
	reset   *form
	// resetting shows the token form.
	resetting bool
	notice    string
	busy      bool
}

func newForgotScreen(e *env, token string) *forgotScreen {
	s := &forgotScreen{
		base:    base{env: e},
		request: newForm().addText("email", "Email", "nome@esempio.it", 254),
		reset: newForm().
			addText("token", "Codice di reimpostazione", "dal messaggio ricevuto", 200).
			addPassword("new_password", "Nuova password").
			addPassword("confirm_password", "Conferma password"),
	}
	if token != "" {
		s.reset.SetValue("token", token)
		s.resetting = true
	}
	return s
}

func (s *forgotScreen) active() *form {
	if s.resetting {
		return s.reset
	}
	return s.request
}

func (s *forgotScreen) Init() tea.Cmd { return s.active().init() }

func (s *forgotScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.request.SetWidth(min(width-4, 60))
	s.reset.SetWidth(min(width-4, 60))
}

func (s *forgotScreen) CapturesInput() bool { return true }

func (s *forgotScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resetRequestedMsg:
		s.busy = false
		if msg.err != nil {
			if fields := fieldErrorsOf(msg.err); len(fields) > 0 {
				return s, s.request.SetErrors(fields)
			}
			return s, errorToast(msg.err)
		}
		s.notice = msg.message
		s.resetting = true
		return s, s.reset.init()

	case resetDoneMsg:
		s.busy = false
		if msg.err != nil {
			if fields := fieldErrorsOf(msg.err); len(fields) > 0 {
				return s, s.reset.SetErrors(fields)
			}
			s.notice = ""
			return s, toast(components.ToastKindError, api.UserMessage(msg.err))
		}
		return s, tea.Batch(
			toast(components.ToastKindSuccess, msg.message),
			navigate("/login"),
		)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, back
		case "ctrl+t":
			s.resetting = !s.resetting
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
	ctx, mgr := s.env.ctx(), s.env.Session
	if !s.resetting {
		email := s.request.Value("email")
		return s, func() tea.Msg {
			text, err := mgr.RequestPasswordReset(ctx, email)
			return resetRequestedMsg{message: text, err: err}
		}
	}
	in := model.PasswordReset{
		Token:           s.reset.Value("token"),
		NewPassword:     s.reset.Value("new_password"),
		ConfirmPassword: s.reset.Value("confirm_password"),
	}
	return s, func() tea.Msg {
		text, err := mgr.ResetPassword(ctx, in)
		return resetDoneMsg{message: text, err: err}
	}
}

func (s *forgotScreen) View() string {
	t := s.theme()
	var b strings.Builder
	b.WriteString(t.Title.Render("Password dimenticata"))
	b.WriteString("\n\n")
	if s.notice != "" {
		b.WriteString(t.ToastInfo.Render(s.notice))
		b.WriteString("\n\n")
	}
	if s.resetting {
		b.WriteString(t.Body.Render("Inserisci il codice ricevuto e la nuova password."))
	} else {
		b.WriteString(t.Body.Render("Inserisci la tua email: riceverai le istruzioni per reimpostare la password."))
	}
	b.WriteString("\n\n")
	b.WriteString(s.active().View(t))
	b.WriteString("\n\n")
	switch {
	case s.busy:
		b.WriteString(t.LoadingText.Render("Invio in corso..."))
	case s.resetting:
		b.WriteString(t.Muted.Render("enter reimposta · ctrl+t richiedi un nuovo codice · esc indietro"))
	default:
		b.WriteString(t.Muted.Render("enter invia · ctrl+t ho già un codice · esc indietro"))
	}
	return b.String()
}
